package httpapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/shittu-qudus/BLACKSFIT/internal/cart"
	"github.com/shittu-qudus/BLACKSFIT/internal/checkout"
)

const sessionCookieName = "blacksfit_session"

type sessionCtxKey struct{}

// Session is one browsing session: its own cart and its own checkout
// orchestrator. Sessions live in memory and die with the process.
type Session struct {
	ID       string
	Cart     cart.Store
	Checkout *checkout.Service
}

// Registry creates and holds sessions keyed by the session cookie.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	newSession func(id string) *Session
}

func NewRegistry(factory func(id string) *Session) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		newSession: factory,
	}
}

func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[id]; ok {
		return sess
	}
	sess := r.newSession(id)
	r.sessions[id] = sess
	return sess
}

// Middleware scopes each request to a session via cookie, minting a new
// session when none is presented.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var id string
		if c, err := req.Cookie(sessionCookieName); err == nil && c.Value != "" {
			id = c.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		sess := r.Get(id)
		ctx := context.WithValue(req.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// SessionFrom returns the request's session, or nil outside the session
// middleware.
func SessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return sess
}
