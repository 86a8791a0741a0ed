package httpx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-flower-shop/internal/redisx"
	"github.com/redis/go-redis/v9"
)

var ErrUnauthenticated = errors.New("unknown session token")

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// RedisSessions looks tokens up in the session keys written by the account service.
type RedisSessions struct{ Redis *redis.Client }

func (s *RedisSessions) Authenticate(ctx context.Context, token string) (int64, error) {
	key := fmt.Sprintf(redisx.KeySession, token)
	id, err := s.Redis.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("redis get session: %w", err)
	}
	return id, nil
}

type userKey struct{}

// RequireUser rejects requests without a valid bearer token before any handler runs.
func RequireUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			uid, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, ErrUnauthenticated) {
				writeDetail(w, http.StatusUnauthorized, "Invalid token.")
				return
			}
			if err != nil {
				log.Printf("authenticate: %v", err)
				writeDetail(w, http.StatusServiceUnavailable, "Authentication is temporarily unavailable.")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, uid)))
		})
	}
}

// UserID returns the authenticated user set by RequireUser.
func UserID(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userKey{}).(int64)
	return uid, ok
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
