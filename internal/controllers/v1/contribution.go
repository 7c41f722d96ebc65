package v1

import (
	"net/http"

	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func OptionsContributionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsContributionDetail(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// CreateContribution records a contribution for the given month. The month's
// budget period is created on the fly if this is its first contribution.
func (co *Controller) CreateContribution(c *gin.Context) {
	var editable ContributionEditable
	if err := httputil.BindData(c, &editable); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	period, err := co.periods.GetOrCreate(c.Request.Context(), editable.Month)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	contribution, err := co.ledger.RecordContribution(c.Request.Context(), period.ID, editable.Contributor, editable.Amount, editable.Comment)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ContributionResponse{Data: newContribution(contribution)})
}

// GetContributions lists contributions, all of them or those of one month.
func (co *Controller) GetContributions(c *gin.Context) {
	var contributions []models.Contribution

	if rawMonth, ok := c.GetQuery("month"); ok {
		month, err := types.ParseMonth(rawMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}

		if period, ok := co.cache.PeriodForMonth(month); ok {
			contributions = co.cache.ContributionsForPeriod(period.ID)
		}
	} else {
		contributions = co.cache.Contributions()
	}

	data := make([]Contribution, 0, len(contributions))
	for _, contribution := range contributions {
		data = append(data, newContribution(contribution))
	}

	c.JSON(http.StatusOK, ContributionListResponse{Data: data})
}

// GetContribution returns a single contribution.
func (co *Controller) GetContribution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	contribution, ok := co.cache.Contribution(id)
	if !ok {
		c.JSON(http.StatusNotFound, httpError{Error: "there is no contribution matching the given ID"})
		return
	}

	c.JSON(http.StatusOK, ContributionResponse{Data: newContribution(contribution)})
}

// DeleteContribution removes a contribution that has not been consumed from.
func (co *Controller) DeleteContribution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	if err := co.ledger.RemoveContribution(c.Request.Context(), id); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// ContributionEditable represents all user configurable parameters of a
// contribution.
type ContributionEditable struct {
	Month       types.Month     `json:"month" example:"2026-08"`
	Contributor string          `json:"contributor" binding:"required" example:"Ana"`
	Amount      decimal.Decimal `json:"amount" example:"350.75"`
	Comment     string          `json:"comment" example:"sueldo agosto"`
}

type Contribution struct {
	models.Contribution
	AvailableBalance decimal.Decimal `json:"availableBalance" example:"250.75"`
}

func newContribution(model models.Contribution) Contribution {
	return Contribution{
		Contribution:     model,
		AvailableBalance: model.AvailableBalance(),
	}
}

type ContributionResponse struct {
	Data Contribution `json:"data"`
}

type ContributionListResponse struct {
	Data []Contribution `json:"data"`
}
