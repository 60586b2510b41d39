package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/cadence/internal/config"
	"github.com/alexisbeaulieu97/cadence/internal/controller"
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// Controller kinds accepted by PrepareRequest.Controller.
const (
	ControllerLog    = controller.KindLog
	ControllerSpring = controller.KindSpring
)

// Dependencies wires the service to its adapters. Only Loader is required;
// Controllers defaults to the built-in log and spring kinds.
type Dependencies struct {
	Loader      ports.ChainLoader
	Controllers *controller.Registry
	DepsLoader  ports.DependencyLoader
	Sessions    ports.SessionStore
	Logger      ports.Logger
	Events      ports.EventPublisher
	Metrics     ports.MetricsCollector
}

// Service loads chains, builds drivers with controllers and persists their
// position between calls. It is shared by the CLI and the HTTP server.
type Service struct {
	deps Dependencies
}

// NewService constructs a sequence service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = logging.Discard
	}
	if deps.Controllers == nil {
		deps.Controllers = controller.DefaultRegistry()
	}
	return &Service{deps: deps}
}

// PrepareRequest describes the chain to load and how to drive it.
type PrepareRequest struct {
	ChainPath string
	DepsPath  string
	Overrides []string

	Controller string
	Realtime   bool
	OnFrame    func(controller.Frame)

	// Non-nil values override the chain's settings.
	Parallel  *int
	Ceiling   *int
	Floor     *int
	TimeScale *float64
}

// Prepared is a loaded chain with a ready driver.
type Prepared struct {
	Loaded       *ports.LoadedChain
	Driver       *engine.Driver
	Dependencies style.Dependencies
	Settings     ports.Settings
	Springs      map[string]*controller.Spring

	// held across resume, advance and save
	mu sync.Mutex
}

// Prepare loads the chain and dependency context and builds a driver.
func (s *Service) Prepare(ctx context.Context, req PrepareRequest) (*Prepared, error) {
	if s.deps.Loader == nil {
		return nil, errors.New("sequence service has no chain loader")
	}

	loaded, err := s.deps.Loader.Load(ctx, req.ChainPath)
	if err != nil {
		return nil, err
	}

	var fileDeps style.Dependencies
	if req.DepsPath != "" {
		if s.deps.DepsLoader == nil {
			return nil, errors.New("sequence service has no dependency loader")
		}
		fileDeps, err = s.deps.DepsLoader.LoadDependencies(ctx, req.DepsPath)
		if err != nil {
			return nil, err
		}
	}
	overrides, err := config.ParseOverrides(req.Overrides)
	if err != nil {
		return nil, err
	}
	deps := config.MergeDependencies(fileDeps, overrides)

	settings := loaded.Settings
	if req.Parallel != nil {
		settings.Parallel = *req.Parallel
	}
	if req.Ceiling != nil {
		settings.Ceiling = *req.Ceiling
	}
	if req.Floor != nil {
		settings.Floor = *req.Floor
	}
	if req.TimeScale != nil {
		settings.TimeScale = *req.TimeScale
	}

	prepared := &Prepared{
		Loaded:       loaded,
		Dependencies: deps,
		Settings:     settings,
		Springs:      make(map[string]*controller.Spring),
	}

	controllers, err := s.controllers(req, prepared)
	if err != nil {
		return nil, err
	}

	driver, err := engine.NewDriver(loaded.Chain, controllers,
		engine.WithDependencies(deps),
		engine.WithCeiling(settings.Ceiling),
		engine.WithFloor(settings.Floor),
		engine.WithParallelism(settings.Parallel),
		engine.WithLogger(s.deps.Logger.With("component", "driver", "chain", loaded.Chain.Name)),
		engine.WithEvents(s.deps.Events),
		engine.WithMetrics(s.deps.Metrics),
	)
	if err != nil {
		return nil, err
	}
	prepared.Driver = driver
	return prepared, nil
}

func (s *Service) controllers(req PrepareRequest, prepared *Prepared) (controller.Map, error) {
	kind := req.Controller
	if kind == "" {
		kind = ControllerLog
	}

	controllers, err := s.deps.Controllers.Build(kind, prepared.Loaded.Chain.TargetNames(), controller.Settings{
		Logger:    s.deps.Logger.With("component", "controller"),
		TimeScale: prepared.Settings.TimeScale,
		Spring: controller.SpringOptions{
			FPS:      prepared.Settings.FPS,
			Realtime: req.Realtime,
			OnFrame:  req.OnFrame,
		},
	})
	if err != nil {
		return nil, err
	}
	for name, c := range controllers {
		if spring, ok := c.(*controller.Spring); ok {
			prepared.Springs[name] = spring
		}
	}
	return controllers, nil
}

// Advance runs one Advance call. With a session id and a configured store
// the driver first resumes from the stored snapshot and saves its new
// position afterwards, also when the run failed part way.
func (s *Service) Advance(ctx context.Context, prepared *Prepared, sessionID string, req engine.Request) (*model.Run, error) {
	if prepared == nil || prepared.Driver == nil {
		return nil, errors.New("sequence is not prepared")
	}

	prepared.mu.Lock()
	defer prepared.mu.Unlock()

	if err := s.resume(ctx, prepared, sessionID); err != nil {
		return nil, err
	}

	run, runErr := prepared.Driver.Advance(ctx, req)

	if sessionID != "" && s.deps.Sessions != nil && run != nil {
		// A cancelled ctx must not prevent recording how far the run got.
		if err := s.deps.Sessions.Save(context.WithoutCancel(ctx), sessionID, prepared.Driver.Snapshot()); err != nil {
			s.deps.Logger.Error(ctx, "failed to save session", "session", sessionID, "error", err)
			if runErr == nil {
				return run, fmt.Errorf("save session %s: %w", sessionID, err)
			}
		}
	}

	return run, runErr
}

// Resume restores the driver from a stored session. Unknown sessions start
// from the beginning.
func (s *Service) Resume(ctx context.Context, prepared *Prepared, sessionID string) error {
	prepared.mu.Lock()
	defer prepared.mu.Unlock()
	return s.resume(ctx, prepared, sessionID)
}

func (s *Service) resume(ctx context.Context, prepared *Prepared, sessionID string) error {
	if sessionID == "" || s.deps.Sessions == nil {
		return nil
	}
	snapshot, err := s.deps.Sessions.Load(ctx, sessionID)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return prepared.Driver.Restore(snapshot)
}

// Reset deletes a stored session and rewinds the driver when one is given.
func (s *Service) Reset(ctx context.Context, prepared *Prepared, sessionID string) error {
	if prepared != nil && prepared.Driver != nil {
		prepared.mu.Lock()
		defer prepared.mu.Unlock()
		prepared.Driver.Reset()
	}
	if sessionID == "" || s.deps.Sessions == nil {
		return nil
	}
	return s.deps.Sessions.Delete(ctx, sessionID)
}

// Session binds a prepared chain to a session id so callers can advance it
// without repeating either.
type Session struct {
	service  *Service
	prepared *Prepared
	id       string
}

// Bind returns a Session for prepared and id. An empty id disables persistence.
func (s *Service) Bind(prepared *Prepared, id string) *Session {
	return &Session{service: s, prepared: prepared, id: id}
}

// Advance runs one Advance call against the bound chain.
func (s *Session) Advance(ctx context.Context, req engine.Request) (*model.Run, error) {
	return s.service.Advance(ctx, s.prepared, s.id, req)
}

// Snapshot returns the driver's current position.
func (s *Session) Snapshot() *ports.Snapshot {
	return s.prepared.Driver.Snapshot()
}
