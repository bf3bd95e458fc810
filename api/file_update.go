package api

import (
	"airdropweb/files-api/internal/lifecycle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fileUpdateOpts struct {
	ID            uint      `json:"id"`
	Favorite      *bool     `json:"favorite"`
	Tags          *[]string `json:"tags"`
	GenerateShare bool      `json:"generate_share_link"`
	RevokeShare   bool      `json:"remove_share_link"`
}

// FileUpdate applies a partial mutation to one owned record. Absent
// fields stay untouched; requesting generate and revoke together
// resolves to revoke.
func (a *API) FileUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data fileUpdateOpts
	if err := c.BindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if data.ID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	file, err := a.Files.Update(c.Request.Context(), userID, data.ID, lifecycle.UpdateInput{
		Favorite:      data.Favorite,
		Tags:          data.Tags,
		GenerateShare: data.GenerateShare,
		RevokeShare:   data.RevokeShare,
	})
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": file})
}
