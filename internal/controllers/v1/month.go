package v1

import (
	"net/http"

	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func OptionsMonthDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

func OptionsMonthClose(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GetMonth summarizes the month's budget period.
func (co *Controller) GetMonth(c *gin.Context) {
	month, err := types.ParseMonth(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	period, ok := co.cache.PeriodForMonth(month)
	if !ok {
		c.JSON(http.StatusNotFound, httpError{Error: "there is no budget period for this month yet"})
		return
	}

	c.JSON(http.StatusOK, MonthResponse{Data: co.newMonth(period)})
}

// CloseMonth closes the month's period and rolls a positive leftover into
// the next month.
func (co *Controller) CloseMonth(c *gin.Context) {
	month, err := types.ParseMonth(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	period, ok := co.cache.PeriodForMonth(month)
	if !ok {
		c.JSON(http.StatusNotFound, httpError{Error: "there is no budget period for this month yet"})
		return
	}

	closed, err := co.periods.Close(c.Request.Context(), period.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MonthResponse{Data: co.newMonth(closed)})
}

// Month is a period summary with its computed totals.
type Month struct {
	models.BudgetPeriod
	TotalContributed decimal.Decimal `json:"totalContributed" example:"1000"`
	TotalSpent       decimal.Decimal `json:"totalSpent" example:"400"`
	TotalAvailable   decimal.Decimal `json:"totalAvailable" example:"600"`
}

func (co *Controller) newMonth(period models.BudgetPeriod) Month {
	return Month{
		BudgetPeriod:     period,
		TotalContributed: co.periods.TotalContributed(period.ID),
		TotalSpent:       co.periods.TotalSpent(period.Month),
		TotalAvailable:   co.ledger.TotalAvailable(period.ID),
	}
}

type MonthResponse struct {
	Data Month `json:"data"`
}
