package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wmmalith63/credence-tender-management/config"
	"github.com/wmmalith63/credence-tender-management/internal/api/handler"
	"github.com/wmmalith63/credence-tender-management/internal/api/middleware"
	"github.com/wmmalith63/credence-tender-management/internal/api/validation"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/pkg/jwt"
	"github.com/wmmalith63/credence-tender-management/pkg/redis"
)

// Setup builds the gin engine
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := validation.Register(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── Global middleware ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/health", h.Health.Health)

	admin := middleware.RoleAuth(policy.RoleAdministrator)
	vendors := middleware.RoleAuth(policy.RoleVendor, policy.RoleContentProducer)
	evaluators := middleware.RoleAuth(policy.RoleEvaluator, policy.RoleTenderEvaluator, policy.RoleAdministrator)
	exporters := middleware.RoleAuth(policy.RoleAdministrator, policy.RoleTenderAdmin)
	limited := middleware.RateLimit(rdb, cfg.RateLimit.Submissions, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	{
		tenders := v1.Group("/tenders")
		{
			tenders.POST("", h.Tender.SaveTender)
			tenders.GET("", h.Tender.ListTenders)
			tenders.GET("/:ref", h.Tender.GetTender)
			tenders.PUT("/:ref", h.Tender.UpdateTender)
			tenders.DELETE("/:ref", h.Tender.DeleteTender)
			tenders.POST("/:ref/publish", admin, h.Tender.PublishTender)
			tenders.POST("/:ref/close", admin, h.Tender.CloseTender)
			tenders.POST("/:ref/evaluated", admin, h.Tender.MarkTenderEvaluated)

			tenders.GET("/:ref/proposals", h.Proposal.ListTenderProposals)
			tenders.POST("/:ref/proposals", vendors, limited, h.Proposal.SubmitProposal)
			tenders.POST("/:ref/applications", vendors, limited, h.Proposal.ApplyForTender)

			tenders.GET("/:ref/results/export", exporters, h.Export.ExportResults)
		}

		proposals := v1.Group("/proposals")
		{
			proposals.GET("/mine", vendors, h.Proposal.ListMyProposals)
			proposals.GET("/:id", h.Proposal.GetProposal)
			proposals.POST("/:id/evaluations", evaluators, limited, h.Evaluation.RecordEvaluation)
			proposals.GET("/:id/evaluations", h.Evaluation.ListEvaluations)
			proposals.POST("/:id/recompute", admin, h.Evaluation.RecomputeScore)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", h.Dashboard.GetStats)
			dashboard.GET("/activities", h.Dashboard.GetRecentActivities)
			dashboard.GET("/deadlines", h.Dashboard.GetUpcomingDeadlines)
			dashboard.GET("/deadlines.ics", h.Dashboard.GetDeadlinesCalendar)
		}
	}

	return r, nil
}
