package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/auth"
	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

type principalKey struct{}
type claimsKey struct{}
type requestIDKey struct{}

const msgInactiveGate = "Your account is inactive. Please contact an administrator."

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			if sw.status == 0 {
				sw.status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
			}
			if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
				fields = append(fields, zap.String("request_id", id))
			}
			switch {
			case sw.status >= 500:
				logger.Error("request", fields...)
			case sw.status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

// authMiddleware resolves the bearer token to a principal. The principal
// is reloaded from the store on every request so that deactivating an
// account revokes access immediately, valid token or not.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		revoked, err := s.denylist.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			s.logger.Warn("denylist lookup failed", zap.Error(err))
		} else if revoked {
			writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		user, err := s.repo.UserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			s.logger.Error("principal reload failed", zap.Error(err))
			writeFailure(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		if !user.Active {
			writeFailure(w, http.StatusForbidden, msgInactiveGate)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, user)
		ctx = context.WithValue(ctx, claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(principalKey{}).(model.User)
	return user, ok
}

func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
