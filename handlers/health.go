package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetbridge/utils"
)

// HealthHandler reports the latest dependency health snapshot, 503 when any
// component is down.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
