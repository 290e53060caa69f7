package cmd

import (
	"net/http"

	"barrierfree-backend/internal/handlers"
	"barrierfree-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type routes struct {
	identity      middleware.SessionResolver
	gatewaySecret string

	user         *handlers.UserHandler
	report       *handlers.ReportHandler
	quest        *handlers.QuestHandler
	team         *handlers.TeamHandler
	media        *handlers.MediaHandler
	notification *handlers.NotificationHandler
	admin        *handlers.AdminHandler
	ws           *handlers.WebSocketHandler

	demoEnabled bool
}

func newRouter(rt routes) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Sign-in is only reachable through the identity gateway
		r.With(middleware.GatewayMiddleware(rt.gatewaySecret)).Post("/auth/signin", rt.user.SignIn)

		// Public routes
		r.Get("/reports", rt.report.ListReports)
		r.Get("/reports/{report_id}", rt.report.GetReport)
		r.Get("/verifications", rt.report.ListVerifications)
		r.Get("/teams", rt.team.ListTeams)
		r.With(middleware.OptionalAuth(rt.identity)).Get("/quests", rt.quest.ListQuests)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.identity))

			r.Get("/me", rt.user.Me)
			r.Put("/me/push-token", rt.user.UpdatePushToken)

			r.Post("/reports", rt.report.CreateReport)
			r.Post("/verifications", rt.report.Verify)

			r.Post("/quests", rt.quest.CreateQuest)
			r.Post("/quests/claim", rt.quest.ClaimReward)
			r.Post("/quests/init-sample", rt.quest.InitSample)

			r.Post("/teams", rt.team.CreateTeam)
			r.Post("/teams/join", rt.team.JoinTeam)

			r.Post("/upload", rt.media.Upload)
			r.Post("/upload/presign", rt.media.Presign)
			r.Post("/analyze-image", rt.media.AnalyzeImage)
			r.Post("/classify-text", rt.media.ClassifyText)

			r.Get("/notifications", rt.notification.ListNotifications)
			r.Post("/notifications/{notification_id}/read", rt.notification.MarkRead)

			r.Post("/admin/init-tables", rt.admin.InitTables)
			r.Post("/admin/fix-headers", rt.admin.FixHeaders)

			if rt.demoEnabled {
				r.Post("/demo/init", rt.admin.InitDemo)
				r.Post("/demo/reset", rt.admin.ResetDemo)
				r.Get("/demo/accounts", rt.admin.DemoAccounts)
			}
		})
	})

	// WebSocket route
	r.Get("/ws", rt.ws.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
