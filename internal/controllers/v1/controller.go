// Package v1 implements the HTTP API.
package v1

import (
	"github.com/familos/backend/internal/budget"
	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/ledger"
	"github.com/familos/backend/internal/period"
	"github.com/familos/backend/internal/sync"
	"github.com/gin-gonic/gin"
)

// Controller holds the services the handlers work with. Everything is
// injected; handlers never reach for globals.
type Controller struct {
	cache      *cache.Cache
	ledger     *ledger.Ledger
	engine     *ledger.Engine
	periods    *period.Manager
	analyzer   *budget.Analyzer
	reconciler *sync.Reconciler
	syncer     *sync.Syncer
}

// NewController wires the handlers to their services.
func NewController(c *cache.Cache, l *ledger.Ledger, engine *ledger.Engine, periods *period.Manager, analyzer *budget.Analyzer, reconciler *sync.Reconciler, syncer *sync.Syncer) *Controller {
	return &Controller{
		cache:      c,
		ledger:     l,
		engine:     engine,
		periods:    periods,
		analyzer:   analyzer,
		reconciler: reconciler,
		syncer:     syncer,
	}
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is
// passed.
func (co *Controller) RegisterRoutes(r *gin.RouterGroup) {
	// Contributions
	{
		r.OPTIONS("/contributions", OptionsContributionList)
		r.GET("/contributions", co.GetContributions)
		r.POST("/contributions", co.CreateContribution)
		r.OPTIONS("/contributions/:id", OptionsContributionDetail)
		r.GET("/contributions/:id", co.GetContribution)
		r.DELETE("/contributions/:id", co.DeleteContribution)
	}

	// Distributions
	{
		r.OPTIONS("/distributions", OptionsDistribution)
		r.POST("/distributions", co.ComputeDistribution)
		r.OPTIONS("/distributions/validate", OptionsDistribution)
		r.POST("/distributions/validate", co.ValidateDistribution)
		r.OPTIONS("/distributions/apply", OptionsDistribution)
		r.POST("/distributions/apply", co.ApplyDistribution)
	}

	// Months
	{
		r.OPTIONS("/months/:month", OptionsMonthDetail)
		r.GET("/months/:month", co.GetMonth)
		r.OPTIONS("/months/:month/close", OptionsMonthClose)
		r.POST("/months/:month/close", co.CloseMonth)
	}

	// Expenses
	{
		r.OPTIONS("/expenses", OptionsExpenseList)
		r.GET("/expenses", co.GetExpenses)
	}

	// Alerts
	{
		r.OPTIONS("/alerts", OptionsAlerts)
		r.POST("/alerts", co.GenerateAlerts)
	}

	// Synchronization
	{
		r.OPTIONS("/reconcile", OptionsReconcile)
		r.POST("/reconcile", co.Reconcile)
		r.OPTIONS("/sync", OptionsSync)
		r.GET("/sync", co.GetSyncState)
	}
}
