package v1

import (
	"errors"
	"net/http"

	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var allocationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "familos_allocations_applied_total",
	Help: "Number of applied distributions by outcome.",
}, []string{"outcome"})

func OptionsDistribution(c *gin.Context) {
	httputil.OptionsPost(c)
}

// ComputeDistribution proposes how to cover an amount from the period's
// contributions. Nothing is consumed until the proposal is applied.
func (co *Controller) ComputeDistribution(c *gin.Context) {
	var request DistributionRequest
	if err := httputil.BindData(c, &request); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	distribution, err := co.engine.ComputeAutomaticDistribution(request.PeriodID, request.Amount)
	if err != nil {
		var funds ledger.InsufficientFundsError
		if errors.As(err, &funds) {
			c.JSON(http.StatusUnprocessableEntity, DistributionErrorResponse{
				Error:   err.Error(),
				Missing: &funds.Missing,
			})
			return
		}

		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, DistributionResponse{Data: distribution})
}

// ValidateDistribution checks a manually assembled distribution without
// applying it.
func (co *Controller) ValidateDistribution(c *gin.Context) {
	var request ValidationRequest
	if err := httputil.BindData(c, &request); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err := co.engine.ValidateManualDistribution(request.PeriodID, request.Entries, request.RequiredAmount)
	if err != nil {
		response := DistributionErrorResponse{Error: err.Error()}

		var mismatch ledger.SumMismatchError
		if errors.As(err, &mismatch) {
			difference := mismatch.Difference()
			response.Difference = &difference
		}

		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{Data: ValidationResult{Valid: true}})
}

// ApplyDistribution consumes the distribution's entries. A partial failure
// reports how far the sequence got; applied entries stay applied.
func (co *Controller) ApplyDistribution(c *gin.Context) {
	var distribution ledger.Distribution
	if err := httputil.BindData(c, &distribution); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	if err := co.engine.ApplyDistribution(c.Request.Context(), distribution); err != nil {
		var partial ledger.PartialAllocationError
		if errors.As(err, &partial) {
			allocationsApplied.WithLabelValues("partial_failure").Inc()
			c.JSON(http.StatusBadGateway, PartialFailureResponse{
				Error:              err.Error(),
				AppliedEntries:     partial.Applied,
				FailedContribution: partial.FailedContribution,
			})
			return
		}

		allocationsApplied.WithLabelValues("failure").Inc()
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	allocationsApplied.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, DistributionResponse{Data: distribution})
}

// DistributionRequest asks for an automatic distribution proposal.
type DistributionRequest struct {
	PeriodID uuid.UUID       `json:"periodId" binding:"required"`
	Amount   decimal.Decimal `json:"amount" example:"1200"`
}

// ValidationRequest asks for a manual selection to be checked.
type ValidationRequest struct {
	PeriodID       uuid.UUID       `json:"periodId" binding:"required"`
	Entries        []ledger.Entry  `json:"entries" binding:"required"`
	RequiredAmount decimal.Decimal `json:"requiredAmount" example:"1200"`
}

type DistributionResponse struct {
	Data ledger.Distribution `json:"data"`
}

type DistributionErrorResponse struct {
	Error string `json:"error"`

	// Missing is set when the period's funds do not cover the request.
	Missing *decimal.Decimal `json:"missing,omitempty"`

	// Difference is set on a sum mismatch, negative for a deficit.
	Difference *decimal.Decimal `json:"difference,omitempty"`
}

type ValidationResult struct {
	Valid bool `json:"valid"`
}

type ValidationResponse struct {
	Data ValidationResult `json:"data"`
}

type PartialFailureResponse struct {
	Error              string    `json:"error"`
	AppliedEntries     int       `json:"appliedEntries"`
	FailedContribution uuid.UUID `json:"failedContribution"`
}
