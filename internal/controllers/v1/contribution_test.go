package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/familos/backend/internal/controllers/v1"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestContributionOptions() {
	recorder := suite.Request(http.MethodOptions, "/v1/contributions", nil)
	suite.Equal(http.StatusNoContent, recorder.Code)
	suite.Equal("GET, POST", recorder.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestContributionCreate() {
	contribution := suite.createContribution("2026-08", "Ana", 350.75)

	suite.NotEqual(uuid.Nil, contribution.ID)
	suite.Equal("Ana", contribution.Contributor)
	suite.True(contribution.AvailableBalance.Equal(decimal.NewFromFloat(350.75)))

	// The month's period was created on the fly.
	recorder := suite.Request(http.MethodGet, "/v1/months/2026-08", nil)
	suite.Equal(http.StatusOK, recorder.Code)
}

func (suite *TestSuiteStandard) TestContributionCreateInvalid() {
	tests := []struct {
		name string
		body any
	}{
		{"empty body", ""},
		{"broken json", `{ broken`},
		{"missing contributor", map[string]any{"month": "2026-08", "amount": 100}},
		{"zero amount", map[string]any{"month": "2026-08", "contributor": "Ana", "amount": 0}},
		{"negative amount", map[string]any{"month": "2026-08", "contributor": "Ana", "amount": -5}},
	}

	for _, tt := range tests {
		recorder := suite.Request(http.MethodPost, "/v1/contributions", tt.body)
		suite.Equal(http.StatusBadRequest, recorder.Code, tt.name)
	}
}

func (suite *TestSuiteStandard) TestContributionList() {
	suite.createContribution("2026-08", "Ana", 1000)
	suite.createContribution("2026-08", "Luis", 500)
	suite.createContribution("2026-09", "Ana", 200)

	var response v1.ContributionListResponse

	recorder := suite.Request(http.MethodGet, "/v1/contributions", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)
	suite.Len(response.Data, 3)

	recorder = suite.Request(http.MethodGet, "/v1/contributions?month=2026-08", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)
	suite.Len(response.Data, 2)

	recorder = suite.Request(http.MethodGet, "/v1/contributions?month=2027-01", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)
	suite.Empty(response.Data)

	recorder = suite.Request(http.MethodGet, "/v1/contributions?month=not-a-month", nil)
	suite.Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestContributionGet() {
	contribution := suite.createContribution("2026-08", "Ana", 1000)

	recorder := suite.Request(http.MethodGet, fmt.Sprintf("/v1/contributions/%s", contribution.ID), nil)
	suite.Equal(http.StatusOK, recorder.Code)

	recorder = suite.Request(http.MethodGet, fmt.Sprintf("/v1/contributions/%s", uuid.New()), nil)
	suite.Equal(http.StatusNotFound, recorder.Code)

	recorder = suite.Request(http.MethodGet, "/v1/contributions/not-a-uuid", nil)
	suite.Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestContributionDelete() {
	contribution := suite.createContribution("2026-08", "Ana", 1000)

	recorder := suite.Request(http.MethodDelete, fmt.Sprintf("/v1/contributions/%s", contribution.ID), nil)
	suite.Equal(http.StatusNoContent, recorder.Code)

	recorder = suite.Request(http.MethodGet, fmt.Sprintf("/v1/contributions/%s", contribution.ID), nil)
	suite.Equal(http.StatusNotFound, recorder.Code)
}

func (suite *TestSuiteStandard) TestContributionDeleteConsumed() {
	contribution := suite.createContribution("2026-08", "Ana", 1000)

	recorder := suite.Request(http.MethodPost, "/v1/distributions/apply", map[string]any{
		"periodId": contribution.PeriodID,
		"entries":  []map[string]any{{"contributionId": contribution.ID, "amount": 100}},
	})
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = suite.Request(http.MethodDelete, fmt.Sprintf("/v1/contributions/%s", contribution.ID), nil)
	suite.Equal(http.StatusConflict, recorder.Code, "a consumed contribution cannot be removed")
}
