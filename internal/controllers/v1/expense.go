package v1

import (
	"net/http"

	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/gin-gonic/gin"
)

func OptionsExpenseList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// GetExpenses lists expenses, all of them or those of one month. Expenses
// are written by the family's other devices and arrive through
// synchronization, so this is a read-only view.
func (co *Controller) GetExpenses(c *gin.Context) {
	var expenses []models.Expense

	if rawMonth, ok := c.GetQuery("month"); ok {
		month, err := types.ParseMonth(rawMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}

		expenses = co.cache.ExpensesForMonth(month)
	} else {
		expenses = co.cache.Expenses()
	}

	c.JSON(http.StatusOK, ExpenseListResponse{Data: expenses})
}

type ExpenseListResponse struct {
	Data []models.Expense `json:"data"`
}
