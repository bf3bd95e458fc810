package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat responds to liveness probes
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
