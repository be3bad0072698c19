package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health responds to liveness probes. It sits outside webhook auth so
// monitoring needs no credentials.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}
