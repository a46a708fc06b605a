package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"stridestreak/internal/clock"
	mw "stridestreak/internal/middleware"
	"stridestreak/internal/services"
	"stridestreak/internal/store"
)

// Deps is everything the API needs to serve requests.
type Deps struct {
	Store          *store.Store
	Accounts       *services.AccountService
	Habits         *services.HabitService
	Reminders      *services.ReminderService
	Achievements   *services.AchievementService
	Auth           *mw.AuthMiddleware
	Clock          clock.Clock
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.ZapRequestLogger(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(d.Accounts, d.Auth, d.Logger)
	habitsHandler := NewHabitsHandler(d.Habits, d.Logger)
	notificationsHandler := NewNotificationsHandler(d.Store, d.Reminders, d.Achievements, d.Clock, d.Logger)
	todosHandler := NewTodosHandler(d.Store, d.Clock, d.Logger)
	healthHandler := NewHealthHandler(d.Store, d.Logger)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.Check)
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(d.Auth.RequireAuth)

			pr.Get("/auth/profile", authHandler.Profile)
			pr.Put("/auth/profile", authHandler.UpdateProfile)
			pr.Delete("/auth/delete-account", authHandler.DeleteAccount)

			pr.Route("/habits", func(hr chi.Router) {
				hr.Get("/", habitsHandler.List)
				hr.Post("/", habitsHandler.Create)
				hr.Get("/stats", habitsHandler.Stats)
				hr.Get("/{id}", habitsHandler.Get)
				hr.Put("/{id}", habitsHandler.Update)
				hr.Delete("/{id}", habitsHandler.Delete)
				hr.Post("/{id}/complete", habitsHandler.Complete)
				hr.Get("/{id}/completions", habitsHandler.Completions)
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", notificationsHandler.List)
				nr.Post("/{id}/read", notificationsHandler.MarkRead)
				nr.Post("/read-all", notificationsHandler.MarkAllRead)
				nr.Post("/reminders", notificationsHandler.SendReminders)
				nr.Post("/achievements", notificationsHandler.CheckAchievements)
			})

			pr.Route("/todos", func(tr chi.Router) {
				tr.Get("/", todosHandler.List)
				tr.Post("/", todosHandler.Create)
				tr.Get("/stats", todosHandler.Stats)
				tr.Put("/{id}", todosHandler.Update)
				tr.Delete("/{id}", todosHandler.Delete)
			})
		})
	})
	return r
}
