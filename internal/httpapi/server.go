// Package httpapi exposes the task sequence services as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/taskseq/internal/service"
	"github.com/gorilla/mux"
)

// Services is the set of use cases the API serves.
type Services struct {
	Sequences  service.SequenceService
	Tasks      service.TaskService
	Next       service.NextTaskService
	Completion service.CompletionService
	Reminders  service.ReminderService
	Delegation service.DelegationService
	Members    service.MemberService
	Imports    service.ImportService
}

// Server routes requests to Services. The acting user is taken from the
// X-User-ID header, falling back to DefaultUserID.
type Server struct {
	svc           Services
	logger        *slog.Logger
	defaultUserID string
	now           func() time.Time
	router        *mux.Router
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithDefaultUser(id string) Option {
	return func(s *Server) { s.defaultUserID = id }
}

// WithClock overrides the time used for reminder evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(svc Services, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer(s.logger), requestLogger(s.logger))

	r.HandleFunc("/families/{familyID}/sequences", s.listSequences).Methods(http.MethodGet)
	r.HandleFunc("/families/{familyID}/sequences", s.createSequence).Methods(http.MethodPost)
	r.HandleFunc("/families/{familyID}/reminders", s.familyReminders).Methods(http.MethodGet)
	r.HandleFunc("/families/{familyID}/recommendations", s.recommend).Methods(http.MethodPost)
	r.HandleFunc("/families/{familyID}/members", s.listMembers).Methods(http.MethodGet)
	r.HandleFunc("/families/{familyID}/members", s.createMember).Methods(http.MethodPost)

	r.HandleFunc("/sequences/{sequenceID}", s.getSequence).Methods(http.MethodGet)
	r.HandleFunc("/sequences/{sequenceID}", s.updateSequence).Methods(http.MethodPatch)
	r.HandleFunc("/sequences/{sequenceID}", s.deleteSequence).Methods(http.MethodDelete)
	r.HandleFunc("/sequences/{sequenceID}/archive", s.archiveSequence).Methods(http.MethodPost)
	r.HandleFunc("/sequences/{sequenceID}/unarchive", s.unarchiveSequence).Methods(http.MethodPost)
	r.HandleFunc("/sequences/{sequenceID}/next", s.nextTask).Methods(http.MethodGet)
	r.HandleFunc("/sequences/{sequenceID}/progress", s.progress).Methods(http.MethodGet)
	r.HandleFunc("/sequences/{sequenceID}/recompute", s.recompute).Methods(http.MethodPost)
	r.HandleFunc("/sequences/{sequenceID}/reminders", s.sequenceReminders).Methods(http.MethodGet)
	r.HandleFunc("/sequences/{sequenceID}/auto-assign", s.autoAssign).Methods(http.MethodPost)
	r.HandleFunc("/sequences/{sequenceID}/order", s.reorder).Methods(http.MethodPut)
	r.HandleFunc("/sequences/{sequenceID}/tasks", s.addTask).Methods(http.MethodPost)
	r.HandleFunc("/sequences/{sequenceID}/tasks/{taskID}", s.removeTask).Methods(http.MethodDelete)

	r.HandleFunc("/tasks/{taskID}", s.getTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{taskID}", s.updateTask).Methods(http.MethodPatch)
	r.HandleFunc("/tasks/{taskID}/completed", s.setCompleted).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{taskID}/subtasks/{index:[0-9]+}", s.setSubTask).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{taskID}/assignee", s.assign).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{taskID}/reminders/ack", s.acknowledge).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{taskID}/reminders/snooze", s.snooze).Methods(http.MethodPost)

	r.HandleFunc("/members/{memberID}", s.getMember).Methods(http.MethodGet)
	r.HandleFunc("/members/{memberID}", s.deleteMember).Methods(http.MethodDelete)
	r.HandleFunc("/members/{memberID}/skills", s.setSkill).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no such route"})
	})
	return r
}

func (s *Server) userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return s.defaultUserID
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
