package main

import (
	"log"
	"net/http"
	"time"

	controller "github.com/kmaina/CommitteeDesk/controller"
	"github.com/kmaina/CommitteeDesk/initializers"
	middleware "github.com/kmaina/CommitteeDesk/middleware"
	service "github.com/kmaina/CommitteeDesk/service"

	"github.com/gin-gonic/gin"
)

// How often the freeze sweep re-checks every active item.
const sweepInterval = time.Minute

func init() {
	if err := initializers.LoadEnv(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
	if err := initializers.ConnectDB(); err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}
}

func main() {
	itemService, err := service.NewItemService(initializers.DB)
	if err != nil {
		log.Fatalf("Failed to initialize item service: %s", err)
	}

	itemController := controller.NewItemController(itemService)

	// The sweep only ever moves items toward frozen, so it is safe to run
	// alongside user mutations; at worst a freeze lands one interval late.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := itemService.Sweep(time.Now()); err != nil {
				log.Printf("Sweep pass failed: %v", err)
			}
		}
	}()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.GlobalRateLimiter.Limit())
	router.Use(middleware.ResolveRole())

	// Item lifecycle
	router.POST("/items",
		middleware.StrictRateLimiter.Limit(),
		itemController.CreateItem)
	router.GET("/items/:id", itemController.GetItem)
	router.PUT("/items/:id", itemController.EditItem)
	router.POST("/items/:id/reschedule",
		middleware.StrictRateLimiter.Limit(),
		itemController.Reschedule)
	router.POST("/items/:id/convert",
		middleware.StrictRateLimiter.Limit(),
		itemController.ConvertItem)
	router.PUT("/items/:id/approve",
		middleware.RequireAdmin(),
		itemController.ApproveItem)
	router.DELETE("/items/:id/reject",
		middleware.RequireAdmin(),
		itemController.RejectItem)

	// Bulk import
	router.POST("/import/validate", itemController.ValidateImport)
	router.POST("/import",
		middleware.StrictRateLimiter.Limit(),
		itemController.ImportBatch)

	// Dashboards and search
	router.GET("/dashboard", itemController.GetAllItems)
	router.GET("/search", itemController.SearchItems)

	// Manual sweep trigger for operators
	router.POST("/sweep", middleware.RequireAdmin(), itemController.RunSweep)

	// Healthcheck endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.Run(":8080")
}
