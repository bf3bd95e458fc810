package api

import (
	"airdropweb/files-api/internal/lifecycle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileList returns every record owned by the caller, newest first,
// each with a short-lived signed download URL.
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	files, err := a.Files.List(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if files == nil {
		files = []lifecycle.ListedFile{}
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
