// Package healthz reports whether the backend can reach the remote store.
package healthz

import (
	"net/http"

	"github.com/familos/backend/internal/httputil"
	"github.com/familos/backend/internal/remote"
	"github.com/gin-gonic/gin"
)

// Controller answers health checks.
type Controller struct {
	store remote.Store
}

// NewController returns a health controller probing the given store.
func NewController(store remote.Store) *Controller {
	return &Controller{store: store}
}

// RegisterRoutes registers the health routes with the RouterGroup that is
// passed.
func (co *Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", Options)
	r.GET("", co.Get)
}

func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// Get returns 204 when the remote store answers, 503 with the error
// otherwise.
func (co *Controller) Get(c *gin.Context) {
	if err := co.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
