package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/skillfolio/backend/internal/config"
	"github.com/skillfolio/backend/internal/db"
	"github.com/skillfolio/backend/internal/repository/sqlite"
	"github.com/skillfolio/backend/internal/token"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true)

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db)

	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTokenDuration, cfg.RefreshTokenDuration)

	// Create handlers
	systemHandler := &SystemHandler{}
	docsHandler := &DocsHandler{}
	authHandler := NewAuthHandler(repo, repo, tokens)
	certificatesHandler := NewCertificatesHandler(repo, cfg.MediaDir)
	projectsHandler := NewProjectsHandler(repo, repo)
	goalsHandler := NewGoalsHandler(repo, repo, repo)
	goalStepsHandler := NewGoalStepsHandler(repo, repo)
	announcementsHandler := NewAnnouncementsHandler(repo)
	analyticsHandler := NewAnalyticsHandler(repo, repo, repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/auth/register/", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login/", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/refresh/", authHandler.Refresh).Methods("POST")
	r.HandleFunc("/api/announcements/", announcementsHandler.List).Methods("GET")
	r.HandleFunc("/api/announcements/{id:[0-9]+}/", announcementsHandler.Retrieve).Methods("GET")
	r.HandleFunc("/api/facts/random/", announcementsHandler.RandomFact).Methods("GET")
	r.HandleFunc("/api/platforms/", announcementsHandler.Platforms).Methods("GET")
	r.HandleFunc("/api/schema/", docsHandler.SchemaHandler).Methods("GET")
	r.HandleFunc("/api/docs/", docsHandler.DocsHandler).Methods("GET")

	// Uploaded certificate files
	r.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))

	// Protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(JWTAuthMiddleware(tokens))

	// Auth endpoints
	protected.HandleFunc("/auth/logout/", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/auth/me/", authHandler.Me).Methods("GET")
	protected.HandleFunc("/auth/me/", authHandler.UpdateMe).Methods("PUT", "PATCH")
	protected.HandleFunc("/auth/me/", authHandler.DeleteMe).Methods("DELETE")
	protected.HandleFunc("/auth/change-password/", authHandler.ChangePassword).Methods("POST")

	// Certificates endpoints
	protected.HandleFunc("/certificates/", certificatesHandler.List).Methods("GET")
	protected.HandleFunc("/certificates/", certificatesHandler.Create).Methods("POST")
	protected.HandleFunc("/certificates/{id:[0-9]+}/", certificatesHandler.Retrieve).Methods("GET")
	protected.HandleFunc("/certificates/{id:[0-9]+}/", certificatesHandler.Update).Methods("PUT", "PATCH")
	protected.HandleFunc("/certificates/{id:[0-9]+}/", certificatesHandler.Delete).Methods("DELETE")

	// Projects endpoints
	protected.HandleFunc("/projects/", projectsHandler.List).Methods("GET")
	protected.HandleFunc("/projects/", projectsHandler.Create).Methods("POST")
	protected.HandleFunc("/projects/{id:[0-9]+}/", projectsHandler.Retrieve).Methods("GET")
	protected.HandleFunc("/projects/{id:[0-9]+}/", projectsHandler.Update).Methods("PUT", "PATCH")
	protected.HandleFunc("/projects/{id:[0-9]+}/", projectsHandler.Delete).Methods("DELETE")

	// Goals endpoints
	protected.HandleFunc("/goals/", goalsHandler.List).Methods("GET")
	protected.HandleFunc("/goals/", goalsHandler.Create).Methods("POST")
	protected.HandleFunc("/goals/{id:[0-9]+}/", goalsHandler.Retrieve).Methods("GET")
	protected.HandleFunc("/goals/{id:[0-9]+}/", goalsHandler.Update).Methods("PUT", "PATCH")
	protected.HandleFunc("/goals/{id:[0-9]+}/", goalsHandler.Delete).Methods("DELETE")

	// Goal steps endpoints
	protected.HandleFunc("/goalsteps/", goalStepsHandler.List).Methods("GET")
	protected.HandleFunc("/goalsteps/", goalStepsHandler.Create).Methods("POST")
	protected.HandleFunc("/goalsteps/{id:[0-9]+}/", goalStepsHandler.Retrieve).Methods("GET")
	protected.HandleFunc("/goalsteps/{id:[0-9]+}/", goalStepsHandler.Update).Methods("PUT", "PATCH")
	protected.HandleFunc("/goalsteps/{id:[0-9]+}/", goalStepsHandler.Delete).Methods("DELETE")

	// Analytics endpoints
	protected.HandleFunc("/analytics/summary/", analyticsHandler.Summary).Methods("GET")
	protected.HandleFunc("/analytics/goals-progress/", analyticsHandler.GoalsProgress).Methods("GET")

	return r
}
