package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamup/internal/competition"
	"teamup/internal/identity"
	"teamup/internal/roster"
	"teamup/internal/token"
)

// Auditor records user-visible actions. Implementations must not fail
// the request on audit errors.
type Auditor interface {
	Record(ctx context.Context, actorID *int64, action, details string)
}

type Server struct {
	Users  identity.Store
	Comps  competition.Store
	Teams  *roster.Engine
	Tokens *token.Manager
	Audit  Auditor
	Ping   func(ctx context.Context) error
	Logger *zap.SugaredLogger
}

func NewRouter(s *Server) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/healthz", s.health)

		auth := api.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
			auth.POST("/refresh", s.requireRefresh(), s.refresh)
			auth.GET("/profile", s.requireAuth(), s.getProfile)
			auth.PUT("/profile", s.requireAuth(), s.updateProfile)
		}

		comps := api.Group("/competitions")
		{
			comps.POST("", s.requireAuth(), s.createCompetition)
			comps.GET("", s.listCompetitions)
			comps.GET("/:id", s.getCompetition)
			comps.PUT("/:id", s.requireAuth(), s.updateCompetition)
			comps.DELETE("/:id", s.requireAuth(), s.deleteCompetition)
		}

		teams := api.Group("/teams")
		{
			teams.POST("", s.requireAuth(), s.createTeam)
			teams.GET("", s.listTeams)
			teams.GET("/:id", s.getTeam)
			teams.PUT("/:id", s.requireAuth(), s.updateTeam)
			teams.DELETE("/:id", s.requireAuth(), s.disbandTeam)
			teams.POST("/:id/join", s.requireAuth(), s.joinTeam)
			teams.POST("/:id/leave", s.requireAuth(), s.leaveTeam)
			teams.DELETE("/:id/members/:user_id", s.requireAuth(), s.removeMember)
		}
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	if s.Ping != nil {
		if err := s.Ping(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"ok": false})
			return
		}
	}
	c.JSON(200, gin.H{"ok": true})
}
