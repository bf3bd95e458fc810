package api

import (
	"airdropweb/files-api/internal/lifecycle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	FilePath    string `json:"filePath"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Description string `json:"description"`
}

// FileRegister attaches a metadata record to a blob that the client
// already pushed through a presigned upload URL.
func (a *API) FileRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data registerBody
	if err := c.BindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	file, err := a.Files.Register(c.Request.Context(), userID, lifecycle.RegisterInput{
		FilePath:    data.FilePath,
		FileName:    data.FileName,
		ContentType: data.ContentType,
		Size:        data.Size,
		Description: data.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalid):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		case errors.Is(err, lifecycle.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "File path does not match your user",
				"requestID": requestID,
			})
		case errors.Is(err, lifecycle.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "No uploaded file found at this path",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to register file", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": file})
}
