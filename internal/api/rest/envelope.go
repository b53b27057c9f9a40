package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/logger"
)

// Every response carries a status envelope the marketplace frontend keys on.
const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// respondSuccess sends a success envelope with a data payload
func respondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   data,
	})
}

// respondSuccessEmpty sends a success envelope without a payload
func respondSuccessEmpty(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
	})
}

// respondFailed sends a failed envelope. Failures are reported as 400
// regardless of cause; the message, when present, rides in the data field.
func respondFailed(c *gin.Context, message string) {
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": statusFailed,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"status": statusFailed,
		"data":   message,
	})
}

// respondFailedErr logs err and sends an opaque failed envelope
func respondFailedErr(c *gin.Context, err error) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	respondFailed(c, "")
}
