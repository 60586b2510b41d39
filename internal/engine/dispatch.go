package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// dispatch starts every controller concurrently and waits for all of them.
// A failing controller does not cancel its siblings; failures are collected
// as DispatchErrors once every dispatch has settled. Results are ordered by
// target name.
func (d *Driver) dispatch(ctx context.Context, styles map[string]target.FinalStyle) ([]model.DispatchResult, error) {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	if missing := d.controllers.Missing(names); len(missing) > 0 {
		return nil, cadenceerrors.NewMissingControllerError(missing[0])
	}

	results := make([]model.DispatchResult, len(names))
	for i, name := range names {
		results[i] = model.DispatchResult{
			Target:      name,
			ActiveState: styles[name].ActiveState,
			Status:      model.StatusPending,
		}
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	if d.parallel > 0 {
		g.SetLimit(d.parallel)
	}

	for i, name := range names {
		i, name := i, name
		ctrl := d.controllers[name]
		final := styles[name]
		g.Go(func() error {
			res := &results[i]
			res.Status = model.StatusRunning
			res.Timestamp = time.Now()

			err := ctrl.Start(ctx, final)
			res.Duration = time.Since(res.Timestamp)

			status := model.StatusSettled
			if err != nil {
				status = model.StatusFailed
				res.Error = err
				res.Message = err.Error()
				d.logger.Error(ctx, "controller failed", "target", name, "state", final.ActiveState, "error", err)

				mu.Lock()
				errs = multierr.Append(errs, cadenceerrors.NewDispatchError(name, err))
				mu.Unlock()
			}
			res.Status = status

			if d.metrics != nil {
				labels := map[string]string{"target": name}
				d.metrics.ObserveHistogram(ctx, ports.MetricDispatchDurationSeconds, res.Duration.Seconds(), labels)
				d.metrics.IncCounter(ctx, ports.MetricDispatchesTotal, map[string]string{"target": name, "status": status})
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, errs
}
