// Package server provides the HTTP REST API for the recruiting platform.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hirematch/hirematch-api/internal/auth"
	"github.com/hirematch/hirematch-api/internal/config"
	"github.com/hirematch/hirematch-api/internal/matching"
	"github.com/hirematch/hirematch-api/internal/server/ratelimit"
	"github.com/hirematch/hirematch-api/internal/store"
)

// Server is the HTTP server wiring auth, storage, and matching together.
type Server struct {
	httpServer *http.Server
	settings   *config.Settings
	logger     *zap.Logger

	store    *store.Store
	oracle   *matching.GeminiOracle
	matcher  *matching.Service
	resolver *auth.Resolver
	gate     *auth.Gate
	limiter  *ratelimit.Limiter
	validate *validator.Validate
}

// New creates a server, connecting to the database and the scoring model.
// A missing Gemini key leaves matching endpoints answering 503 so the
// rest of the API stays usable.
func New(ctx context.Context, settings *config.Settings, logger *zap.Logger) (*Server, error) {
	st, err := store.Connect(ctx, settings.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Server{
		settings: settings,
		logger:   logger,
		store:    st,
		validate: validator.New(),
	}

	decoder := auth.NewDecoder(settings.JWTSecret, settings.JWKSURL)
	s.resolver = auth.NewResolver(decoder, settings, st, logger)
	s.gate = auth.NewGate(settings)
	s.limiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	if settings.GeminiAPIKey != "" {
		oracle, err := matching.NewGeminiOracle(ctx, settings.GeminiAPIKey, settings.OracleTimeout, settings.OracleMaxConcurrent, logger)
		if err != nil {
			st.Close()
			return nil, err
		}
		s.oracle = oracle
		s.matcher = matching.NewService(oracle, st, logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set, matching endpoints disabled")
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // batch scoring holds the handler
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public surface.
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug/me", s.handleDebugMe)
	mux.HandleFunc("GET /jobs", s.handleListOpenJobs)
	mux.HandleFunc("GET /jobs/{slug}", s.handleGetJob)

	// Candidate surface.
	candidate := func(h http.HandlerFunc) http.HandlerFunc {
		return auth.Protect(s.resolver, s.gate, h, auth.RoleCandidate)
	}
	mux.HandleFunc("GET /candidate/dashboard", candidate(s.handleCandidateDashboard))
	mux.HandleFunc("GET /candidate/profile", candidate(s.handleGetCandidateProfile))
	mux.HandleFunc("PUT /candidate/profile", candidate(s.handlePutCandidateProfile))
	mux.HandleFunc("POST /candidate/profile/autofill", candidate(s.handleProfileAutofill))
	mux.HandleFunc("POST /candidate/resumes", candidate(s.handleUploadResume))
	mux.HandleFunc("GET /candidate/resumes", candidate(s.handleListResumes))
	mux.HandleFunc("POST /candidate/match-check", candidate(s.handleMatchCheck))
	mux.HandleFunc("GET /candidate/match-checks", candidate(s.handleListMatchChecks))
	mux.HandleFunc("GET /candidate/applications", candidate(s.handleListMyApplications))
	mux.HandleFunc("POST /candidate/apply/{job_id}", candidate(s.handleApply))
	mux.HandleFunc("POST /candidate/posts", candidate(s.handleCreatePost))
	mux.HandleFunc("GET /candidate/posts", candidate(s.handleListMyPosts))
	mux.HandleFunc("GET /candidate/feed", candidate(s.handleFeed))

	// Recruiter surface.
	recruiter := func(h http.HandlerFunc) http.HandlerFunc {
		return auth.Protect(s.resolver, s.gate, h, auth.RoleRecruiter)
	}
	mux.HandleFunc("GET /recruiter/dashboard", recruiter(s.handleRecruiterDashboard))
	mux.HandleFunc("GET /recruiter/profile", recruiter(s.handleGetRecruiterProfile))
	mux.HandleFunc("PUT /recruiter/profile", recruiter(s.handlePutRecruiterProfile))
	mux.HandleFunc("POST /recruiter/jobs/improve", recruiter(s.handleImproveJob))
	mux.HandleFunc("POST /recruiter/jobs/ingest", recruiter(s.handleIngestJob))
	mux.HandleFunc("POST /recruiter/jobs", recruiter(s.handleCreateJob))
	mux.HandleFunc("GET /recruiter/jobs", recruiter(s.handleListMyJobs))
	mux.HandleFunc("GET /recruiter/jobs/{id}", recruiter(s.handleGetMyJob))
	mux.HandleFunc("PUT /recruiter/jobs/{id}", recruiter(s.handleUpdateMyJob))
	mux.HandleFunc("POST /recruiter/jobs/{id}/candidates", recruiter(s.handleAttachCandidate))
	mux.HandleFunc("POST /recruiter/jobs/{id}/match", recruiter(s.handleMatchCandidate))
	mux.HandleFunc("GET /recruiter/jobs/{id}/applications", recruiter(s.handleListJobApplications))
	mux.HandleFunc("POST /recruiter/jobs/{id}/applications/score", recruiter(s.handleScoreAllApplications))
	mux.HandleFunc("POST /recruiter/jobs/{id}/applications/{app_id}/score", recruiter(s.handleScoreApplication))
	mux.HandleFunc("GET /recruiter/candidates", recruiter(s.handleListCandidates))
	mux.HandleFunc("GET /recruiter/candidates/{id}", recruiter(s.handleGetCandidate))
	mux.HandleFunc("POST /recruiter/candidates/{id}/bookmark", recruiter(s.handleBookmarkCandidate))
	mux.HandleFunc("GET /recruiter/bookmarks", recruiter(s.handleListBookmarks))
	mux.HandleFunc("POST /recruiter/candidates/{id}/notes", recruiter(s.handleAddNote))

	// Admin surface.
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return auth.Protect(s.resolver, s.gate, h, auth.RoleAdmin)
	}
	mux.HandleFunc("GET /admin/overview", admin(s.handleAdminOverview))
	mux.HandleFunc("GET /admin/users", admin(s.handleAdminListUsers))
	mux.HandleFunc("PATCH /admin/users/{id}", admin(s.handleAdminUpdateUser))
	mux.HandleFunc("GET /admin/companies", admin(s.handleAdminListCompanies))
	mux.HandleFunc("GET /admin/jobs", admin(s.handleAdminListJobs))
	mux.HandleFunc("GET /admin/posts", admin(s.handleAdminListPosts))
	mux.HandleFunc("PATCH /admin/posts/{id}/moderate", admin(s.handleAdminModeratePost))

	// Any authenticated role.
	anyRole := func(h http.HandlerFunc) http.HandlerFunc {
		return auth.Protect(s.resolver, s.gate, h, auth.RoleCandidate, auth.RoleRecruiter, auth.RoleAdmin)
	}
	mux.HandleFunc("GET /notifications", anyRole(s.handleListNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", anyRole(s.handleMarkNotificationRead))

	return mux
}

// Start begins listening and blocks until an interrupt shuts it down.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr), zap.String("env", s.settings.AppEnv))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.limiter.Stop()
	if s.oracle != nil {
		if err := s.oracle.Close(); err != nil {
			s.logger.Warn("failed to close oracle client", zap.Error(err))
		}
	}
	s.store.Close()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds permissive CORS headers for the SPA frontend.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Debug-Role")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.clientID(r)
		allowed, info := s.limiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"service": "hirematch-api", "status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDebugMe echoes the identity the auth chain resolves for the
// caller. Useful for inspecting the local-dev bypass behavior.
func (s *Server) handleDebugMe(w http.ResponseWriter, r *http.Request) {
	identity, err := s.resolver.Resolve(r.Context(), r.Header.Get("Authorization"), r.Header.Get("X-Debug-Role"))
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":            identity.UserID,
		"role":               identity.Role,
		"credential_present": identity.CredentialPresent,
		"env":                s.settings.AppEnv,
	})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorStatus maps an error to a status and writes it.
func (s *Server) errorStatus(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}
