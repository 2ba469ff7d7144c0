package controller

import (
	"net/http"

	middleware "github.com/kmaina/CommitteeDesk/middleware"
	service "github.com/kmaina/CommitteeDesk/service"

	"github.com/gin-gonic/gin"
)

// importRequest is the payload for both validation and confirmed import.
// Committees is the caller's list of known committees the rows are checked
// against.
type importRequest struct {
	Rows       []service.ImportRow `json:"rows" binding:"required"`
	Committees []string            `json:"committees" binding:"required"`
}

// ValidateImport dry-runs a batch against the import rules and returns the
// per-row report without persisting anything
func (c *ItemController) ValidateImport(ctx *gin.Context) {
	var req importRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := c.service.ValidateBatch(req.Rows, req.Committees)
	if err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Batch validated",
		"results": results,
		"valid":   valid,
		"total":   len(results),
	})
}

// ImportBatch validates the batch and creates an item per valid row
func (c *ItemController) ImportBatch(ctx *gin.Context) {
	var req importRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := c.service.ImportBatch(req.Rows, req.Committees, middleware.IsPrivileged(ctx))
	if err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Import completed", "report": report})
}
