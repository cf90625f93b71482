package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ohaus/element-audit/authenticator"
	"github.com/ohaus/element-audit/controllers"
	"github.com/ohaus/element-audit/database"
	auditmiddleware "github.com/ohaus/element-audit/middleware"
	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
	"github.com/ohaus/element-audit/services"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Failed to load the env vars: %v", err)
	}

	// Initialize database
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "element_audit.db"
	}
	if err := database.InitializeDatabase(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Initialize services
	srvs := services.NewServices(repos)

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs, repos.User)

	// Initialize OIDC provider
	auth, err := authenticator.NewOpenIDProvider(authenticator.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to initialize OIDC provider: %v", err)
	}

	// Set up router
	r, err := setupRouter(ctrl, auth)
	if err != nil {
		log.Fatalf("Failed to setup router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Element audit service starting on port %s (database: %s)", port, dbPath)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, auth authenticator.Provider) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	useSecureCookies := os.Getenv("USE_HTTPS") == "true"

	// Session middleware
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "element_audit_session",
		Secure:         useSecureCookies,
		Gclifetime:     3600,
		Maxlifetime:    3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)
	r.Use(auditmiddleware.Actor)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/login", ctrl.Auth.Login(auth))
	r.Get("/callback", ctrl.Auth.Callback(auth))
	r.Get("/logout", ctrl.Auth.Logout)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "element-audit"}`)
	})

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(auditmiddleware.RequireAuth)

		r.Route("/elements", func(r chi.Router) {
			r.Get("/", ctrl.Element.Index)
			r.Post("/", ctrl.Element.Create)
			r.Get("/{id}", ctrl.Element.Show)
			r.Put("/{id}", ctrl.Element.Update)
			r.Delete("/{id}", ctrl.Element.Delete)
			r.Post("/{id}/undelete", ctrl.Element.Undelete)

			// Audit queries over the element's stream
			r.Get("/{id}/history", ctrl.History.History(models.CategoryElement))
			r.Get("/{id}/undelete-data", ctrl.History.UndeleteData(models.CategoryElement))
			r.Get("/{id}/timetravel", ctrl.History.TimeTravel(models.CategoryElement))
			r.Get("/{id}/existed", ctrl.History.ExistedAt(models.CategoryElement))
			r.Get("/{id}/creator", ctrl.History.Creator(models.CategoryElement))
			r.Get("/{id}/editor", ctrl.History.LastEditor(models.CategoryElement))
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", ctrl.Collection.Index)
			r.Post("/", ctrl.Collection.Create)
			r.Get("/{id}", ctrl.Collection.Show)
			r.Put("/{id}", ctrl.Collection.Update)
			r.Delete("/{id}", ctrl.Collection.Delete)
			r.Post("/{id}/remove/{elementID}", ctrl.Collection.RemoveElement)

			r.Get("/{id}/history", ctrl.History.History(models.CategoryCollection))
			r.Get("/{id}/timetravel", ctrl.History.TimeTravel(models.CategoryCollection))
			r.Get("/{id}/existed", ctrl.History.ExistedAt(models.CategoryCollection))
			r.Get("/{id}/creator", ctrl.History.Creator(models.CategoryCollection))
			r.Get("/{id}/editor", ctrl.History.LastEditor(models.CategoryCollection))
		})
	})

	return r, nil
}
