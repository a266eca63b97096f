package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openhack-labs/openhack-api/internal/config"
	"github.com/openhack-labs/openhack-api/internal/handler"
	"github.com/openhack-labs/openhack-api/internal/middleware"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	TeamHandler        *handler.TeamHandler
	ChallengeHandler   *handler.ChallengeHandler
	SubmissionHandler  *handler.SubmissionHandler
	LeaderboardHandler *handler.LeaderboardHandler
	RealtimeHandler    *handler.RealtimeHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	reviewers := middleware.RequireRole(models.RoleAdmin, models.RoleMentor)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Use("/login", middleware.RateLimit("login", cfg.LoginRateLimit, cfg.LoginRateWindow))
		deps.AuthHandler.Register(auth)

		protected := auth.Group("", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(protected)

		admin := auth.Group("", jwtMiddleware, adminOnly)
		deps.AuthHandler.RegisterAdmin(admin)
	}

	if deps.TeamHandler != nil {
		teams := api.Group("/teams", jwtMiddleware)
		deps.TeamHandler.Register(teams)

		adminTeams := api.Group("/teams", jwtMiddleware, adminOnly)
		deps.TeamHandler.RegisterAdmin(adminTeams)
	}

	if deps.ChallengeHandler != nil {
		challenges := api.Group("/challenges", jwtMiddleware)
		deps.ChallengeHandler.Register(challenges)

		adminChallenges := api.Group("/challenges", jwtMiddleware, adminOnly)
		deps.ChallengeHandler.RegisterAdmin(adminChallenges)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)

		review := api.Group("/submissions", jwtMiddleware, reviewers)
		deps.SubmissionHandler.RegisterReview(review)
	}

	// Public surface: the combined board and per-challenge results need no
	// token so they can run on venue displays.
	public := api.Group("/public")
	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.RegisterPublic(public)

		boards := api.Group("/leaderboard", jwtMiddleware)
		deps.LeaderboardHandler.Register(boards)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterPublic(public)
	}

	if deps.RealtimeHandler != nil {
		realtime := api.Group("/realtime")
		deps.RealtimeHandler.Register(realtime)
	}
}
