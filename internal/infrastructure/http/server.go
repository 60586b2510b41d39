package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// Sequencer is the part of a driver the API needs.
type Sequencer interface {
	Advance(ctx context.Context, req engine.Request) (*model.Run, error)
	Snapshot() *ports.Snapshot
}

// Options configures the handler. Metrics and Events are optional.
type Options struct {
	Sequencer Sequencer
	Metrics   http.Handler
	Events    ports.EventPublisher
	Logger    ports.Logger
}

// Server exposes a sequencer over HTTP.
type Server struct {
	opts Options
}

// NewHandler creates the router:
//
//	POST /advance   run keyframes
//	GET  /state     cursor and history
//	GET  /events    server-sent domain events
//	GET  /healthz   liveness
//	GET  /metrics   Prometheus exposition
func NewHandler(opts Options) http.Handler {
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.correlate)
	r.Use(middleware.Recoverer)

	r.Post("/advance", s.Advance)
	r.Get("/state", s.State)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Events != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	return r
}

// correlate carries chi's request id into the logging correlation id.
func (s *Server) correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if id == "" {
			id = ports.GenerateCorrelationID()
		}
		next.ServeHTTP(w, r.WithContext(ports.WithCorrelationID(r.Context(), id)))
	})
}

// AdvanceRequest is the POST /advance body.
type AdvanceRequest struct {
	Direction    engine.Direction `json:"direction"`
	State        string           `json:"state,omitempty"`
	MaxKeyframes int              `json:"max_keyframes,omitempty"`
}

// RunResponse is the JSON view of a run.
type RunResponse struct {
	Direction   string             `json:"direction"`
	StartCursor int                `json:"start_cursor"`
	EndCursor   int                `json:"end_cursor"`
	Stop        string             `json:"stop"`
	DurationMS  int64              `json:"duration_ms"`
	Keyframes   []KeyframeResponse `json:"keyframes"`
	Error       string             `json:"error,omitempty"`
}

// KeyframeResponse is the JSON view of one keyframe.
type KeyframeResponse struct {
	Cursor  int                     `json:"cursor"`
	State   string                  `json:"state,omitempty"`
	Styles  map[string]style.Record `json:"styles"`
	Results []ResultResponse        `json:"results"`
}

// ResultResponse is the JSON view of one dispatch.
type ResultResponse struct {
	Target      string `json:"target"`
	ActiveState string `json:"active_state"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// Advance handles POST /advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	if body.MaxKeyframes < 0 {
		writeError(w, http.StatusBadRequest, errors.New("max_keyframes must not be negative"))
		return
	}

	run, err := s.opts.Sequencer.Advance(r.Context(), engine.Request{
		Direction:    body.Direction,
		State:        body.State,
		MaxKeyframes: body.MaxKeyframes,
	})
	if err != nil && s.opts.Logger != nil {
		s.opts.Logger.Warn(r.Context(), "advance failed", "error", err)
	}
	if run == nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := NewRunResponse(run)
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

// State handles GET /state.
func (s *Server) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Sequencer.Snapshot())
}

// SubscribeEvents handles GET /events as a server-sent event stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	queue := make(chan ports.DomainEvent, 64)
	sub, err := s.opts.Events.Subscribe(events.AllEvents, func(_ context.Context, e ports.DomainEvent) error {
		select {
		case queue <- e:
		default:
			// Dropped when the client falls behind.
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-queue:
			data, err := json.Marshal(e.Payload())
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.EventType(), data)
			flusher.Flush()
		}
	}
}

func statusFor(err error) int {
	var (
		unknown  *cadenceerrors.UnknownStateError
		missing  *cadenceerrors.MissingControllerError
		dispatch *cadenceerrors.DispatchError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unknown):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dispatch):
		return http.StatusBadGateway
	case errors.As(err, &missing):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewRunResponse converts a run into its JSON view.
func NewRunResponse(run *model.Run) RunResponse {
	resp := RunResponse{
		Direction:   run.Direction,
		StartCursor: run.StartCursor,
		EndCursor:   run.EndCursor,
		Stop:        string(run.Stop),
		DurationMS:  run.Duration.Milliseconds(),
		Keyframes:   make([]KeyframeResponse, 0, len(run.Keyframes)),
	}
	for _, kf := range run.Keyframes {
		k := KeyframeResponse{
			Cursor:  kf.Cursor,
			State:   kf.State,
			Styles:  make(map[string]style.Record, len(kf.Styles)),
			Results: make([]ResultResponse, 0, len(kf.Results)),
		}
		names := make([]string, 0, len(kf.Styles))
		for name := range kf.Styles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			k.Styles[name] = kf.Styles[name].Record
		}
		for _, res := range kf.Results {
			r := ResultResponse{
				Target:      res.Target,
				ActiveState: res.ActiveState,
				Status:      res.Status,
				DurationMS:  res.Duration.Milliseconds(),
			}
			if res.Error != nil {
				r.Error = res.Error.Error()
			}
			k.Results = append(k.Results, r)
		}
		resp.Keyframes = append(resp.Keyframes, k)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
