package sequence

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/cadence/internal/controller"
	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	infraconfig "github.com/alexisbeaulieu97/cadence/internal/infrastructure/config"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/session"
	"github.com/alexisbeaulieu97/cadence/internal/model"
)

const chainYAML = `version: "1.0"
name: demo
settings:
  ceiling: 3
abstract:
  - name: bg
    states:
      sync:
        compute:
          opacity: "x"
    default_direction: sync
targets:
  - name: logo
    states:
      sync:
        from: bg
      rest:
        style: {opacity: 0}
    directions: [sync, rest]
    default_direction: rest
`

func newService(t *testing.T) (*Service, string, string) {
	t.Helper()
	dir := t.TempDir()
	chainPath := filepath.Join(dir, "chain.yaml")
	depsPath := filepath.Join(dir, "deps.yaml")
	require.NoError(t, os.WriteFile(chainPath, []byte(chainYAML), 0o644))
	require.NoError(t, os.WriteFile(depsPath, []byte("x: 0.5\n"), 0o644))

	loader := infraconfig.NewFileLoader(nil)
	svc := NewService(Dependencies{
		Loader:     loader,
		DepsLoader: loader,
		Sessions:   session.NewFileStore(filepath.Join(dir, "sessions")),
	})
	return svc, chainPath, depsPath
}

func TestPrepareAndAdvance(t *testing.T) {
	svc, chainPath, depsPath := newService(t)
	ctx := context.Background()

	prepared, err := svc.Prepare(ctx, PrepareRequest{ChainPath: chainPath, DepsPath: depsPath, Overrides: []string{"x=1"}})
	require.NoError(t, err)
	assert.Equal(t, 3, prepared.Settings.Ceiling)
	assert.Equal(t, 1, prepared.Dependencies["x"])

	run, err := svc.Advance(ctx, prepared, "", engine.Request{Direction: engine.Forward})
	require.NoError(t, err)
	assert.Equal(t, model.StopCeiling, run.Stop)
	require.Len(t, run.Keyframes, 3)
	assert.Equal(t, 1, run.Keyframes[0].Styles["logo"].Record["opacity"])
	assert.Equal(t, "rest", run.Keyframes[2].Styles["logo"].ActiveState)
}

func TestAdvancePersistsSession(t *testing.T) {
	svc, chainPath, depsPath := newService(t)
	ctx := context.Background()

	step := func() *model.Run {
		prepared, err := svc.Prepare(ctx, PrepareRequest{ChainPath: chainPath, DepsPath: depsPath})
		require.NoError(t, err)
		run, err := svc.Advance(ctx, prepared, "demo", engine.Request{Direction: engine.Forward, MaxKeyframes: 1})
		require.NoError(t, err)
		return run
	}

	first := step()
	second := step()
	assert.Equal(t, 0, first.StartCursor)
	assert.Equal(t, 1, second.StartCursor)
	assert.Equal(t, 2, second.EndCursor)

	prepared, err := svc.Prepare(ctx, PrepareRequest{ChainPath: chainPath})
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx, prepared, "demo"))

	third := step()
	assert.Equal(t, 0, third.StartCursor)
}

func TestPrepareOverridesSettings(t *testing.T) {
	svc, chainPath, _ := newService(t)
	ceiling, parallel := 2, 1

	prepared, err := svc.Prepare(context.Background(), PrepareRequest{ChainPath: chainPath, Ceiling: &ceiling, Parallel: &parallel})
	require.NoError(t, err)
	assert.Equal(t, 2, prepared.Settings.Ceiling)
	assert.Equal(t, 1, prepared.Settings.Parallel)

	run, err := svc.Advance(context.Background(), prepared, "", engine.Request{Direction: engine.Forward})
	require.NoError(t, err)
	assert.Len(t, run.Keyframes, 2)
}

func TestPrepareSpringControllers(t *testing.T) {
	svc, chainPath, depsPath := newService(t)

	var frames []controller.Frame
	prepared, err := svc.Prepare(context.Background(), PrepareRequest{
		ChainPath:  chainPath,
		DepsPath:   depsPath,
		Controller: ControllerSpring,
		OnFrame:    func(f controller.Frame) { frames = append(frames, f) },
	})
	require.NoError(t, err)
	require.Contains(t, prepared.Springs, "logo")

	_, err = svc.Advance(context.Background(), prepared, "", engine.Request{Direction: engine.Forward, MaxKeyframes: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, frames)
	assert.Equal(t, 0.0, prepared.Springs["logo"].Values()["opacity"])
}

func TestPrepareErrors(t *testing.T) {
	svc, chainPath, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Prepare(ctx, PrepareRequest{ChainPath: chainPath, Controller: "laser"})
	assert.ErrorContains(t, err, "unknown controller")

	_, err = svc.Prepare(ctx, PrepareRequest{ChainPath: chainPath, Overrides: []string{"broken"}})
	assert.Error(t, err)

	_, err = NewService(Dependencies{}).Prepare(ctx, PrepareRequest{ChainPath: chainPath})
	assert.Error(t, err)

	_, err = svc.Advance(ctx, nil, "", engine.Request{})
	assert.Error(t, err)
}

func TestConcurrentSessionAdvancesSerialize(t *testing.T) {
	dir := t.TempDir()
	chainPath := filepath.Join(dir, "chain.yaml")
	require.NoError(t, os.WriteFile(chainPath, []byte(chainYAML), 0o644))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	registry := controller.NewRegistry()
	require.NoError(t, registry.Register("gate", func(string, controller.Settings) (controller.Controller, error) {
		return controller.Func(func(ctx context.Context, _ target.FinalStyle) error {
			once.Do(func() { close(entered) })
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}), nil
	}))

	loader := infraconfig.NewFileLoader(nil)
	svc := NewService(Dependencies{
		Loader:      loader,
		Controllers: registry,
		Sessions:    session.NewFileStore(filepath.Join(dir, "sessions")),
	})
	ctx := context.Background()
	prepared, err := svc.Prepare(ctx, PrepareRequest{ChainPath: chainPath, Controller: "gate"})
	require.NoError(t, err)
	sess := svc.Bind(prepared, "shared")

	var mu sync.Mutex
	var starts []int
	var wg sync.WaitGroup
	advance := func() {
		defer wg.Done()
		run, err := sess.Advance(ctx, engine.Request{Direction: engine.Forward, MaxKeyframes: 1})
		if !assert.NoError(t, err) {
			return
		}
		mu.Lock()
		starts = append(starts, run.StartCursor)
		mu.Unlock()
	}

	wg.Add(2)
	go advance()
	<-entered
	go advance()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.ElementsMatch(t, []int{0, 1}, starts)
	assert.Equal(t, 2, sess.Snapshot().Cursor)

	stored, err := session.NewFileStore(filepath.Join(dir, "sessions")).Load(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Cursor)
}
