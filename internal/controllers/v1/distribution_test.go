package v1_test

import (
	"net/http"

	v1 "github.com/familos/backend/internal/controllers/v1"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/remote/memory"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestDistributionCompute() {
	a := suite.createContribution("2026-08", "Ana", 1000)
	b := suite.createContribution("2026-08", "Luis", 500)

	recorder := suite.Request(http.MethodPost, "/v1/distributions", map[string]any{
		"periodId": a.PeriodID,
		"amount":   1200,
	})
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.DistributionResponse
	suite.decode(recorder, &response)

	suite.Require().Len(response.Data.Entries, 2)
	suite.Equal(a.ID, response.Data.Entries[0].ContributionID)
	suite.True(response.Data.Entries[0].Amount.Equal(decimal.NewFromInt(1000)))
	suite.Equal(b.ID, response.Data.Entries[1].ContributionID)
	suite.True(response.Data.Entries[1].Amount.Equal(decimal.NewFromInt(200)))
}

func (suite *TestSuiteStandard) TestDistributionComputeInsufficientFunds() {
	a := suite.createContribution("2026-08", "Ana", 300)

	recorder := suite.Request(http.MethodPost, "/v1/distributions", map[string]any{
		"periodId": a.PeriodID,
		"amount":   1200,
	})
	suite.Equal(http.StatusUnprocessableEntity, recorder.Code)

	var response v1.DistributionErrorResponse
	suite.decode(recorder, &response)
	suite.Require().NotNil(response.Missing)
	suite.True(response.Missing.Equal(decimal.NewFromInt(900)))
}

func (suite *TestSuiteStandard) TestDistributionValidate() {
	a := suite.createContribution("2026-08", "Ana", 1000)

	recorder := suite.Request(http.MethodPost, "/v1/distributions/validate", map[string]any{
		"periodId":       a.PeriodID,
		"entries":        []map[string]any{{"contributionId": a.ID, "amount": 1000}},
		"requiredAmount": 1000,
	})
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.ValidationResponse
	suite.decode(recorder, &response)
	suite.True(response.Data.Valid)
}

func (suite *TestSuiteStandard) TestDistributionValidateSumMismatch() {
	a := suite.createContribution("2026-08", "Ana", 1000)

	recorder := suite.Request(http.MethodPost, "/v1/distributions/validate", map[string]any{
		"periodId":       a.PeriodID,
		"entries":        []map[string]any{{"contributionId": a.ID, "amount": 999.50}},
		"requiredAmount": 1000,
	})
	suite.Equal(http.StatusUnprocessableEntity, recorder.Code)

	var response v1.DistributionErrorResponse
	suite.decode(recorder, &response)
	suite.Require().NotNil(response.Difference)
	suite.True(response.Difference.Equal(decimal.NewFromFloat(-0.50)), "the deficit keeps its sign")
}

func (suite *TestSuiteStandard) TestDistributionApply() {
	a := suite.createContribution("2026-08", "Ana", 1000)
	b := suite.createContribution("2026-08", "Luis", 500)

	recorder := suite.Request(http.MethodPost, "/v1/distributions/apply", map[string]any{
		"periodId": a.PeriodID,
		"entries": []map[string]any{
			{"contributionId": a.ID, "amount": 1000},
			{"contributionId": b.ID, "amount": 200},
		},
	})
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	cached, ok := suite.cache.Contribution(b.ID)
	suite.Require().True(ok)
	suite.True(cached.UsedAmount.Equal(decimal.NewFromInt(200)))
}

func (suite *TestSuiteStandard) TestDistributionApplyPartialFailure() {
	a := suite.createContribution("2026-08", "Ana", 1000)
	b := suite.createContribution("2026-08", "Luis", 500)

	updates := 0
	suite.store.ContributionCollection.BeforeWrite = func(op memory.Op, _ models.Contribution) error {
		if op != memory.OpUpdate {
			return nil
		}

		updates++
		if updates == 2 {
			return remote.ErrRemoteUnavailable
		}
		return nil
	}

	recorder := suite.Request(http.MethodPost, "/v1/distributions/apply", map[string]any{
		"periodId": a.PeriodID,
		"entries": []map[string]any{
			{"contributionId": a.ID, "amount": 1000},
			{"contributionId": b.ID, "amount": 200},
		},
	})
	suite.Equal(http.StatusBadGateway, recorder.Code)

	var response v1.PartialFailureResponse
	suite.decode(recorder, &response)
	suite.Equal(1, response.AppliedEntries)
	suite.Equal(b.ID, response.FailedContribution)
}

func (suite *TestSuiteStandard) TestDistributionApplyEmptyBody() {
	recorder := suite.Request(http.MethodPost, "/v1/distributions/apply", "")
	suite.Equal(http.StatusBadRequest, recorder.Code)
}
