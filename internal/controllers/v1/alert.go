package v1

import (
	"net/http"

	"github.com/familos/backend/internal/budget"
	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/gin-gonic/gin"
)

func OptionsAlerts(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GenerateAlerts evaluates the month's spending against the caller's
// category budgets and returns the findings, most urgent first. Budgets are
// supplied per request; the server does not store them.
func (co *Controller) GenerateAlerts(c *gin.Context) {
	var request AlertRequest
	if err := httputil.BindData(c, &request); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, AlertResponse{Data: AlertReport{
		Reports: co.analyzer.Evaluate(request.Month, request.Budgets),
		Alerts:  co.analyzer.GenerateAlerts(request.Month, request.Budgets),
	}})
}

// AlertRequest carries the month to evaluate and the category budgets to
// evaluate it against.
type AlertRequest struct {
	Month   types.Month             `json:"month" example:"2026-08"`
	Budgets []models.CategoryBudget `json:"budgets"`
}

// AlertReport is the full evaluation: one report per category and the
// alerts derived from them.
type AlertReport struct {
	Reports []budget.Report `json:"reports"`
	Alerts  []budget.Alert  `json:"alerts"`
}

type AlertResponse struct {
	Data AlertReport `json:"data"`
}
