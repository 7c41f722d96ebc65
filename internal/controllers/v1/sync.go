package v1

import (
	"net/http"

	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/sync"
	"github.com/familos/backend/internal/types"
	"github.com/gin-gonic/gin"
)

func OptionsReconcile(c *gin.Context) {
	httputil.OptionsPost(c)
}

func OptionsSync(c *gin.Context) {
	httputil.OptionsGet(c)
}

// Reconcile compares the cached contributions of the month's period against
// the remote store and reports every difference. The cache is left as it
// is; snapshots are what heal it.
func (co *Controller) Reconcile(c *gin.Context) {
	var request ReconcileRequest
	if err := httputil.BindData(c, &request); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	period, ok := co.cache.PeriodForMonth(request.Month)
	if !ok {
		c.JSON(http.StatusNotFound, httpError{Error: "there is no budget period for this month yet"})
		return
	}

	discrepancies, err := co.reconciler.Reconcile(c.Request.Context(), period.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ReconcileResponse{Data: discrepancies})
}

// GetSyncState reports the status of each collection's subscription.
func (co *Controller) GetSyncState(c *gin.Context) {
	c.JSON(http.StatusOK, SyncStateResponse{Data: co.syncer.State()})
}

type ReconcileRequest struct {
	Month types.Month `json:"month" example:"2026-08"`
}

type ReconcileResponse struct {
	Data []sync.Discrepancy `json:"data"`
}

type SyncStateResponse struct {
	Data map[string]sync.CollectionStatus `json:"data"`
}
