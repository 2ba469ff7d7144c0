package controller

import (
	"errors"
	"log"
	"net/http"
	"time"

	middleware "github.com/kmaina/CommitteeDesk/middleware"
	service "github.com/kmaina/CommitteeDesk/service"

	"github.com/gin-gonic/gin"
)

// ItemController manages HTTP requests for business items
type ItemController struct {
	service *service.ItemService
}

// NewItemController initializes the controller with the service
func NewItemController(service *service.ItemService) *ItemController {
	return &ItemController{service}
}

// httpStatusFor maps the service error taxonomy onto HTTP status codes.
func httpStatusFor(err error) int {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		invalid    *service.InvalidStateError
		conversion *service.ConversionError
		authz      *service.AuthorizationError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusConflict
	case errors.As(err, &authz):
		return http.StatusForbidden
	case errors.As(err, &conversion):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// CreateItem handles the creation of a single business item
func (c *ItemController) CreateItem(ctx *gin.Context) {
	var draft service.CreateItemInput
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := c.service.CreateItem(draft, middleware.IsPrivileged(ctx))
	if err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, item)
}

// GetAllItems retrieves all items with their effective status and countdown
func (c *ItemController) GetAllItems(ctx *gin.Context) {
	items, err := c.service.GetAllItems()
	if err != nil {
		log.Printf("Error fetching items: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve items",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// GetItem retrieves a single item by id
func (c *ItemController) GetItem(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	item, err := c.service.GetItem(id)
	if err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Reschedule moves an item's deadline and bumps its extension counter
func (c *ItemController) Reschedule(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	var req struct {
		TargetDate string `json:"target_date" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target date provided", "details": err.Error()})
		return
	}
	target, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "target_date must be formatted YYYY-MM-DD"})
		return
	}

	item, err := c.service.Reschedule(id, target)
	if err != nil {
		log.Printf("[Reschedule] Error rescheduling item: %v", err)
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item rescheduled successfully", "item": item})
}

// EditItem applies a partial field patch to an item
func (c *ItemController) EditItem(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	var updates service.ItemUpdate
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := c.service.EditItem(id, updates)
	if err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item updated successfully", "item": item})
}

// ApproveItem publishes an item that is under review
func (c *ItemController) ApproveItem(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	item, err := c.service.Approve(id)
	if err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item approved", "item": item})
}

// RejectItem deletes an item that is under review
func (c *ItemController) RejectItem(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	if err := c.service.Reject(id); err != nil {
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item rejected and removed"})
}

// ConvertItem changes an item's category, moving it across tables when the
// conversion crosses the bill/document boundary
func (c *ItemController) ConvertItem(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	var req struct {
		Category string             `json:"category" binding:"required"`
		Updates  service.ItemUpdate `json:"updates"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := c.service.ConvertCategory(id, req.Category, req.Updates)
	if err != nil {
		log.Printf("[ConvertItem] Error converting item: %v", err)
		ctx.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Item converted successfully", "item": item})
}

// RunSweep triggers a freeze sweep pass outside the regular schedule
func (c *ItemController) RunSweep(ctx *gin.Context) {
	report, err := c.service.Sweep(time.Now())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Sweep completed", "report": report})
}

// SearchItems searches indexed items
func (c *ItemController) SearchItems(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	results, err := c.service.SearchItems(query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"results": results,
	})
}
