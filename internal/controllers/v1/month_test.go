package v1_test

import (
	"net/http"
	"time"

	v1 "github.com/familos/backend/internal/controllers/v1"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestMonthGet() {
	suite.createContribution("2026-08", "Ana", 1000)
	suite.seedExpense("luz", 400, true, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), nil)

	recorder := suite.Request(http.MethodGet, "/v1/months/2026-08", nil)
	suite.Equal(http.StatusOK, recorder.Code)

	var response v1.MonthResponse
	suite.decode(recorder, &response)

	suite.False(response.Data.Closed)
	suite.True(response.Data.TotalContributed.Equal(decimal.NewFromInt(1000)))
	suite.True(response.Data.TotalSpent.Equal(decimal.NewFromInt(400)))
	suite.True(response.Data.TotalAvailable.Equal(decimal.NewFromInt(1000)), "expenses do not consume contributions until allocated")
}

func (suite *TestSuiteStandard) TestMonthGetUnknown() {
	recorder := suite.Request(http.MethodGet, "/v1/months/2027-01", nil)
	suite.Equal(http.StatusNotFound, recorder.Code)

	recorder = suite.Request(http.MethodGet, "/v1/months/not-a-month", nil)
	suite.Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestMonthClose() {
	suite.createContribution("2026-08", "Ana", 1000)
	suite.seedExpense("luz", 400, true, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), nil)

	recorder := suite.Request(http.MethodPost, "/v1/months/2026-08/close", nil)
	suite.Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.MonthResponse
	suite.decode(recorder, &response)
	suite.True(response.Data.Closed)

	// The leftover moved into September.
	recorder = suite.Request(http.MethodGet, "/v1/months/2026-09", nil)
	suite.Equal(http.StatusOK, recorder.Code)
	suite.decode(recorder, &response)
	suite.True(response.Data.RolloverAmount.Equal(decimal.NewFromInt(600)))
}

func (suite *TestSuiteStandard) TestMonthCloseTwice() {
	suite.createContribution("2026-08", "Ana", 1000)

	recorder := suite.Request(http.MethodPost, "/v1/months/2026-08/close", nil)
	suite.Equal(http.StatusOK, recorder.Code)

	recorder = suite.Request(http.MethodPost, "/v1/months/2026-08/close", nil)
	suite.Equal(http.StatusConflict, recorder.Code, "closing an already closed month changes nothing")

	var response v1.MonthResponse
	recorder = suite.Request(http.MethodGet, "/v1/months/2026-09", nil)
	suite.decode(recorder, &response)
	suite.True(response.Data.RolloverAmount.Equal(decimal.NewFromInt(1000)))
}

func (suite *TestSuiteStandard) TestMonthCloseUnknown() {
	recorder := suite.Request(http.MethodPost, "/v1/months/2027-01/close", nil)
	suite.Equal(http.StatusNotFound, recorder.Code)
}
