package server

import (
	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Network routes
	apiRoutes.GET("/network", routes.GetNetworkHandler)
	apiRoutes.PATCH("/network", routes.EditNetworkHandler)
	apiRoutes.DELETE("/network", routes.ClearNetworkHandler)
	apiRoutes.POST("/network/import", routes.ImportNetworkHandler)
	apiRoutes.POST("/network/validate", routes.ValidateNetworkHandler)
	apiRoutes.GET("/network/export", routes.ExportNetworkHandler)

	// Entity routes
	apiRoutes.POST("/entities", routes.CreateEntityHandler)
	apiRoutes.PATCH("/entities/:id", routes.EditEntityHandler)
	apiRoutes.DELETE("/entities/:id", routes.DeleteEntityHandler)
	apiRoutes.GET("/entities/:id/connections", routes.GetConnectionsHandler)

	// Relationship routes
	apiRoutes.POST("/relationships", routes.CreateRelationshipHandler)
	apiRoutes.PATCH("/relationships/:id", routes.EditRelationshipHandler)
	apiRoutes.DELETE("/relationships/:id", routes.DeleteRelationshipHandler)

	// AI routes
	apiRoutes.POST("/extract", routes.ExtractHandler)
	apiRoutes.POST("/discover", routes.DiscoverHandler)
	apiRoutes.POST("/entities/:id/enrich", routes.EnrichHandler)

	// History routes
	apiRoutes.GET("/history", routes.GetHistoryHandler)
	apiRoutes.POST("/history/:id/restore", routes.RestoreHistoryHandler)
}
