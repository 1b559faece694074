package middleware

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	msgMissingUserID = "требуется заголовок X-User-ID"
)

type actorKey struct{}

// RoleChecker решает, является ли роль привилегированной
type RoleChecker func(role string) bool

// Actor извлекает инициатора запроса из заголовков и кладёт его в контекст
func Actor(isPrivileged RoleChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := models.Actor{
				UserID:     r.Header.Get(HeaderUserID),
				Privileged: isPrivileged(r.Header.Get(HeaderUserRole)),
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// Auth пропускает только запросы с X-User-ID
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUserID) == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithActor кладёт инициатора в контекст
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext возвращает инициатора запроса, без middleware - анонимный
func ActorFromContext(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}
