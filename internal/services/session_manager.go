package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/metrics"
	"travel-map-service/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyUser       = errors.New("user must be non-empty")
)

// DefaultSessionIdleTimeout is how long a session without requests or open streams survives.
const DefaultSessionIdleTimeout = 30 * time.Minute

// ViewportFactory builds the server-side mirror of a new session's map widget.
type ViewportFactory func(center domain.Coordinates, zoom float64) ports.RemoteViewport

// Session is one synchronized map view of a user's journal, as seen by a viewer.
type Session struct {
	ID         string
	User       string
	Viewer     string
	Controller *ViewSyncController
	Viewport   ports.RemoteViewport

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time

	mu       sync.Mutex
	lastSeen time.Time
	streams  int
	closed   bool
}

// Context is canceled when the session closes. It carries the session logger.
func (s *Session) Context() context.Context { return s.ctx }

func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Attach marks a long-lived consumer (an event stream) as connected.
// Sessions with attached consumers are never swept as idle.
func (s *Session) Attach() (detach func()) {
	s.mu.Lock()
	s.streams++
	s.lastSeen = s.now()
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.streams--
			s.lastSeen = s.now()
			s.mu.Unlock()
		})
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams == 0 && s.lastSeen.Before(cutoff)
}

// startRefresh runs a refresh in the background. It is a no-op once the session is closed.
func (s *Session) startRefresh(loader *UserDataLoader, force bool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := loader.Refresh(s.ctx, s.Controller, s.User, force); err != nil {
			zerolog.Ctx(s.ctx).Debug().Err(err).Msg("refresh_ended")
		}
	}()
	return true
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.Controller.Close()
}

type SessionManagerOptions struct {
	// Controller is applied to every session. Rand is ignored; each session seeds its own.
	Controller    ControllerOptions
	InitialCenter *domain.Coordinates
	IdleTimeout   time.Duration
	SweepInterval time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// SessionManager owns the live view sessions.
type SessionManager struct {
	loader      *UserDataLoader
	newViewport ViewportFactory
	opts        SessionManagerOptions
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(loader *UserDataLoader, newViewport ViewportFactory, opts SessionManagerOptions) (*SessionManager, error) {
	if loader == nil {
		return nil, errors.New("session manager: loader is nil")
	}
	if newViewport == nil {
		return nil, errors.New("session manager: viewport factory is nil")
	}

	if opts.InitialCenter == nil {
		c := DefaultCenter
		opts.InitialCenter = &c
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultSessionIdleTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = opts.IdleTimeout / 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Controller = opts.Controller.withDefaults()
	opts.Controller.Rand = nil

	return &SessionManager{
		loader:      loader,
		newViewport: newViewport,
		opts:        opts,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		sessions:    make(map[string]*Session),
	}, nil
}

// Create opens a session on user's journal for viewer and starts the initial load.
// An empty viewer is an anonymous visitor and never gets edit rights.
func (m *SessionManager) Create(user, viewer string) (*Session, error) {
	user = strings.TrimSpace(user)
	viewer = strings.TrimSpace(viewer)
	if user == "" {
		return nil, fmt.Errorf("create session: %w", ErrEmptyUser)
	}

	id := uuid.New().String()
	logger := m.logger.With().Str("session_id", id).Str("user", user).Logger()

	cOpts := m.opts.Controller
	cOpts.AllowEdits = viewer != "" && viewer == user
	cOpts.Logger = logger
	cOpts.Metrics = m.metrics

	vp := m.newViewport(*m.opts.InitialCenter, cOpts.InitialZoom)
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))

	s := &Session{
		ID:         id,
		User:       user,
		Viewer:     viewer,
		Controller: NewViewSyncController(vp, cOpts),
		Viewport:   vp,
		ctx:        ctx,
		cancel:     cancel,
		now:        m.opts.Now,
		lastSeen:   m.opts.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
	logger.Info().Str("viewer", viewer).Bool("allow_edits", cOpts.AllowEdits).Msg("session_created")

	s.startRefresh(m.loader, false)
	return s, nil
}

// Get returns the session and marks it as recently used.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, ErrSessionNotFound)
	}

	s.touch(m.opts.Now())
	return s, nil
}

// Refresh re-fetches the session's journal in the background.
// force bypasses cached copies, as after the owner edits an entry.
func (m *SessionManager) Refresh(id string, force bool) error {
	s, err := m.Get(id)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if !s.startRefresh(m.loader, force) {
		return fmt.Errorf("refresh session %q: %w", id, ErrSessionNotFound)
	}
	return nil
}

func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("close session %q: %w", id, ErrSessionNotFound)
	}

	s.close()
	m.metrics.SetActiveSessions(n)
	zerolog.Ctx(s.ctx).Info().Msg("session_closed")
	return nil
}

// SweepIdle closes sessions idle for longer than the idle timeout and returns how many it closed.
func (m *SessionManager) SweepIdle() int {
	cutoff := m.opts.Now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		s.close()
		zerolog.Ctx(s.ctx).Info().Msg("session_expired")
	}
	if len(idle) > 0 {
		m.metrics.SetActiveSessions(n)
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is done, then closes every session.
func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			if n := m.SweepIdle(); n > 0 {
				m.logger.Info().Int("closed", n).Msg("idle_sessions_swept")
			}
		}
	}
}

func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	m.metrics.SetActiveSessions(0)
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
