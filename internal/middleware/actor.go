package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"podcast-studio/internal/db"
	"podcast-studio/internal/models"
)

type contextKey string

const (
	// UserContextKey is the key for the request actor in the context.
	UserContextKey = contextKey("user")
	// SessionContextKey is the key for the session identifier in the context.
	SessionContextKey = contextKey("session")
)

// Headers set by the session layer in front of this service.
const (
	UserIDHeader    = "X-User-ID"
	SessionIDHeader = "X-Session-ID"
)

// ErrNoActor means the request carried no resolvable identity.
var ErrNoActor = errors.New("no authenticated actor")

// ActorResolver turns an already-authenticated request into an actor.
type ActorResolver interface {
	ResolveActor(r *http.Request) (*models.Actor, error)
}

// UserStore loads users by ID.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// HeaderResolver trusts the user ID header written by the upstream session
// layer and loads the user's role from the store.
type HeaderResolver struct {
	Users UserStore
}

func (h HeaderResolver) ResolveActor(r *http.Request) (*models.Actor, error) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return nil, ErrNoActor
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrNoActor
	}
	user, err := h.Users.GetUser(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoActor
	}
	if err != nil {
		return nil, err
	}
	return &models.Actor{ID: user.ID, Role: user.Role}, nil
}

// ActorMiddleware resolves the actor and stores it, with the session
// identifier, in the request context.
func ActorMiddleware(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.ResolveActor(r)
			if errors.Is(err, ErrNoActor) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if err != nil {
				log.Printf("Error resolving actor: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			session := r.Header.Get(SessionIDHeader)
			if session == "" {
				session = "actor:" + strconv.FormatInt(actor.ID, 10)
			}

			ctx := context.WithValue(r.Context(), UserContextKey, actor)
			ctx = context.WithValue(ctx, SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the request actor, or nil outside ActorMiddleware.
func ActorFrom(ctx context.Context) *models.Actor {
	actor, _ := ctx.Value(UserContextKey).(*models.Actor)
	return actor
}

// SessionFrom returns the session identifier set by ActorMiddleware.
func SessionFrom(ctx context.Context) string {
	session, _ := ctx.Value(SessionContextKey).(string)
	return session
}

// WithActor returns a context carrying actor and session, for callers
// outside the HTTP stack.
func WithActor(ctx context.Context, actor *models.Actor, session string) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, actor)
	return context.WithValue(ctx, SessionContextKey, session)
}
