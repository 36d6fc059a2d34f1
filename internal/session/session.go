package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/aura/internal/storage"
)

// CookieName is the cookie carrying the session id.
const CookieName = "aura_session"

// DefaultUserName is used when neither the request nor the session names a user.
const DefaultUserName = "Friend"

// Store persists sessions. Implemented by storage.Store.
type Store interface {
	GetSession(ctx context.Context, id string) (storage.Session, error)
	PutSession(ctx context.Context, sess storage.Session) error
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Session is the per-request view of the caller's session.
type Session struct {
	ID       string
	UserName string
	created  time.Time
}

type ctxKey struct{}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Resolve picks the identifier for a request: a non-blank explicit value
// first, then the session value, then fallback.
func Resolve(explicit, stored, fallback string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if v := strings.TrimSpace(stored); v != "" {
		return v
	}
	return fallback
}

// Manager issues session cookies and remembers the identifier used with each.
type Manager struct {
	store       Store
	ttl         time.Duration
	defaultUser string
	now         func() time.Time
}

// NewManager creates a Manager. Sessions idle for longer than ttl are
// dropped by Purge.
func NewManager(store Store, ttl time.Duration, defaultUser string) *Manager {
	if defaultUser == "" {
		defaultUser = DefaultUserName
	}
	return &Manager{store: store, ttl: ttl, defaultUser: defaultUser, now: time.Now}
}

// Middleware loads the caller's session or starts a new one, and sets the cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(r)

		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(m.ttl / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func (m *Manager) load(r *http.Request) *Session {
	c, err := r.Cookie(CookieName)
	if err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			stored, getErr := m.store.GetSession(r.Context(), c.Value)
			switch {
			case getErr == nil:
				return &Session{ID: stored.ID, UserName: stored.UserName, created: stored.CreatedAt}
			case !errors.Is(getErr, storage.ErrNotFound):
				slog.Warn("loading session failed, starting a new one", "error", getErr)
			}
		}
	}
	return &Session{ID: uuid.New().String()}
}

// Identify resolves the identifier for the current request and stores it
// back into the session. Without a session in ctx it only resolves.
func (m *Manager) Identify(ctx context.Context, explicit string) string {
	sess := FromContext(ctx)
	if sess == nil {
		return Resolve(explicit, "", m.defaultUser)
	}

	name := Resolve(explicit, sess.UserName, m.defaultUser)
	sess.UserName = name

	now := m.now()
	if sess.created.IsZero() {
		sess.created = now
	}
	if err := m.store.PutSession(ctx, storage.Session{
		ID:        sess.ID,
		UserName:  name,
		CreatedAt: sess.created,
		UpdatedAt: now,
	}); err != nil {
		slog.Warn("saving session failed", "session_id", sess.ID, "error", err)
	}
	return name
}

// Purge removes sessions idle for longer than the TTL.
func (m *Manager) Purge(ctx context.Context) (int64, error) {
	return m.store.DeleteSessionsBefore(ctx, m.now().Add(-m.ttl))
}

// RunJanitor calls Purge every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := m.Purge(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Warn("purging sessions failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged idle sessions", "count", n)
			}
		}
	}
}
