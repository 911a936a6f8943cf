package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/auth"
	"github.com/MATTHEWPURBA/management-system/internal/config"
	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

type Server struct {
	cfg      config.Config
	repo     service.Repository
	denylist *auth.Denylist
	logger   *zap.Logger

	auth  *service.AuthService
	tasks *service.TaskService
	users *service.UserService
	logs  *service.LogService
}

func NewServer(cfg config.Config, repo service.Repository, denylist *auth.Denylist, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		repo:     repo,
		denylist: denylist,
		logger:   logger,
		auth:     service.NewAuthService(repo, denylist, logger, cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL),
		tasks:    service.NewTaskService(repo, logger),
		users:    service.NewUserService(repo, logger),
		logs:     service.NewLogService(repo, logger),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", s.handleLogin)
	r.With(s.authMiddleware).Post("/logout", s.handleLogout)
	r.With(s.authMiddleware).Get("/me", s.handleMe)

	r.Route("/tasks", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleCreateTask)
		r.Get("/export", s.handleExportTasks)
		r.Get("/{id}", s.handleGetTask)
		r.Put("/{id}", s.handleUpdateTask)
		r.Delete("/{id}", s.handleDeleteTask)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/{id}", s.handleGetUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	r.With(s.authMiddleware).Get("/logs", s.handleListLogs)

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserView(user model.User) userView {
	return userView{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", map[string]any{
		"user": map[string]any{
			"id":    user.ID.String(),
			"name":  user.Name,
			"email": user.Email,
			"role":  string(user.Role),
		},
		"access_token": token,
		"token_type":   "Bearer",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var tokenID string
	expiresAt := time.Now()
	if claims, ok := claimsFrom(r.Context()); ok {
		tokenID = claims.ID
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	if err := s.auth.Logout(r.Context(), actor, tokenID, expiresAt); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeSuccess(w, http.StatusOK, "", toUserView(actor))
}
