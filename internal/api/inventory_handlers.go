package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sykell/herd-inventory/internal/service"
)

// Snapshotter produces a fresh inventory snapshot per call
type Snapshotter interface {
	Snapshot(ctx context.Context) *service.Snapshot
}

// InventoryHandler returns the full snapshot
func InventoryHandler(svc Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Snapshot(c.Request.Context()))
	}
}

// DatabasesHandler lists the user databases on the server
func DatabasesHandler(svc Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := svc.Snapshot(c.Request.Context())

		response := gin.H{
			"data":           snap.Databases,
			"total":          len(snap.Databases),
			"total_size_mb":  snap.Stats.TotalSizeMB,
			"server_version": snap.ServerVersion,
		}
		if snap.DatabaseError != "" {
			response["error"] = snap.DatabaseError
		}
		c.JSON(http.StatusOK, response)
	}
}
