package v1_test

import (
	"context"
	"net/http"
	"time"

	"github.com/familos/backend/internal/budget"
	v1 "github.com/familos/backend/internal/controllers/v1"
	"github.com/familos/backend/internal/sync"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestExpenseList() {
	suite.seedExpense("luz", 60, true, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), nil)
	suite.seedExpense("gas", 40, false, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), nil)

	var response v1.ExpenseListResponse

	recorder := suite.Request(http.MethodGet, "/v1/expenses", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)
	suite.Len(response.Data, 2)

	recorder = suite.Request(http.MethodGet, "/v1/expenses?month=2026-08", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)
	suite.Require().Len(response.Data, 1)
	suite.Equal("luz", response.Data[0].Category)

	recorder = suite.Request(http.MethodGet, "/v1/expenses?month=not-a-month", nil)
	suite.Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestAlerts() {
	registered := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	suite.seedExpense("supermercado", 550, true, registered, nil)
	suite.seedExpense("luz", 75, true, registered, nil)
	suite.seedExpense("mascotas", 25, true, registered, nil)

	recorder := suite.Request(http.MethodPost, "/v1/alerts", map[string]any{
		"month": "2026-08",
		"budgets": []map[string]any{
			{"pattern": "supermercado", "allocatedAmount": 500},
			{"pattern": "luz", "allocatedAmount": 100},
		},
	})
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.AlertResponse
	suite.decode(recorder, &response)

	suite.Len(response.Data.Reports, 3)
	suite.Require().Len(response.Data.Alerts, 3)
	suite.Equal(budget.UrgencyCritical, response.Data.Alerts[0].Urgency)
	suite.Equal("supermercado", response.Data.Alerts[0].Category)
}

func (suite *TestSuiteStandard) TestAlertsDueSoon() {
	due := suite.clock.Now().Add(2 * 24 * time.Hour)
	suite.seedExpense("luz", 60, false, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), &due)

	recorder := suite.Request(http.MethodPost, "/v1/alerts", map[string]any{
		"month":   "2026-08",
		"budgets": []map[string]any{{"pattern": "luz", "allocatedAmount": 100}},
	})
	suite.Equal(http.StatusOK, recorder.Code)

	var response v1.AlertResponse
	suite.decode(recorder, &response)

	suite.Require().NotEmpty(response.Data.Alerts)
	suite.Equal(budget.UrgencyHigh, response.Data.Alerts[0].Urgency)
	suite.NotNil(response.Data.Alerts[0].DueDate)
}

func (suite *TestSuiteStandard) TestReconcile() {
	contribution := suite.createContribution("2026-08", "Ana", 1000)

	// Drift the cached copy away from the store.
	cached, ok := suite.cache.Contribution(contribution.ID)
	suite.Require().True(ok)
	cached.UsedAmount = decimal.NewFromInt(200)
	suite.cache.PutContribution(cached)

	recorder := suite.Request(http.MethodPost, "/v1/reconcile", map[string]any{"month": "2026-08"})
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.ReconcileResponse
	suite.decode(recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Equal(contribution.ID, response.Data[0].ContributionID)
	suite.True(response.Data[0].CachedValue.Equal(decimal.NewFromInt(200)))
	suite.True(response.Data[0].RemoteValue.Equal(decimal.Zero))
}

func (suite *TestSuiteStandard) TestReconcileUnknownMonth() {
	recorder := suite.Request(http.MethodPost, "/v1/reconcile", map[string]any{"month": "2027-01"})
	suite.Equal(http.StatusNotFound, recorder.Code)
}

func (suite *TestSuiteStandard) TestSyncState() {
	var response v1.SyncStateResponse

	recorder := suite.Request(http.MethodGet, "/v1/sync", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)

	suite.Require().Len(response.Data, 3)
	for name, collection := range response.Data {
		suite.Equal(sync.StatusUnsubscribed, collection.Status, name)
	}

	suite.syncer.Start(context.Background())
	suite.Require().Eventually(func() bool {
		recorder := suite.Request(http.MethodGet, "/v1/sync", nil)
		suite.decode(recorder, &response)
		return response.Data["contributions"].Status == sync.StatusActive
	}, 2*time.Second, 10*time.Millisecond)
}
