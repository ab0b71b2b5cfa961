package handler

import (
	"github.com/gin-gonic/gin"

	internalmiddleware "github.com/medready/paramedic-ops-api/internal/middleware"
	"github.com/medready/paramedic-ops-api/internal/models"
)

// Router owns route registration for the API surface.
type Router struct {
	auth       *AuthHandler
	attendance *AttendanceHandler
	risk       *RiskHandler
	capacity   *CapacityHandler
	sites      *SiteHandler
	closeout   *CloseoutHandler

	tokenValidator internalmiddleware.TokenValidator
	roleResolver   internalmiddleware.RoleResolver
	cronSecret     string
}

// NewRouter constructs the route registrar.
func NewRouter(
	auth *AuthHandler,
	attendance *AttendanceHandler,
	risk *RiskHandler,
	capacity *CapacityHandler,
	sites *SiteHandler,
	closeout *CloseoutHandler,
	tokenValidator internalmiddleware.TokenValidator,
	roleResolver internalmiddleware.RoleResolver,
	cronSecret string,
) *Router {
	return &Router{
		auth:           auth,
		attendance:     attendance,
		risk:           risk,
		capacity:       capacity,
		sites:          sites,
		closeout:       closeout,
		tokenValidator: tokenValidator,
		roleResolver:   roleResolver,
		cronSecret:     cronSecret,
	}
}

// Register attaches all API routes under the given prefix.
func (rt *Router) Register(r *gin.Engine, prefix string) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", rt.auth.Login)
		auth.POST("/refresh", rt.auth.Refresh)
	}

	// The cron surface authenticates with a shared secret, not a session.
	cron := api.Group("/cron", internalmiddleware.CronSecret(rt.cronSecret))
	{
		cron.POST("/attendance-sweep", rt.risk.Sweep)
	}

	session := api.Group("", internalmiddleware.JWT(rt.tokenValidator))
	{
		session.POST("/auth/logout", rt.auth.Logout)

		instructor := session.Group("", internalmiddleware.RequireMinRole(rt.roleResolver, models.RoleInstructor))
		{
			instructor.POST("/attendance", rt.attendance.Mark)
			instructor.POST("/attendance/bulk", rt.attendance.BulkMark)
			instructor.GET("/reports/at-risk", rt.risk.Report)
			instructor.GET("/students/:id/attendance", rt.risk.StudentReport)
			instructor.GET("/capacity/check", rt.capacity.Check)
			instructor.GET("/sites", rt.sites.List)
			instructor.GET("/internships/:id/closeout-checklist", rt.closeout.Checklist)
		}

		admin := session.Group("", internalmiddleware.RequireMinRole(rt.roleResolver, models.RoleAdmin))
		{
			admin.PATCH("/sites/:id", rt.sites.Update)
			admin.POST("/internships/:id/closeout", rt.closeout.Finalize)
		}
	}
}
