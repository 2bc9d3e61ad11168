package routes

import (
	"net/http"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/common"

	"github.com/labstack/echo/v4"
)

// EditNetworkHandler sets the network title, description and investigation
// context. Absent fields are left untouched.
func EditNetworkHandler(c echo.Context) error {
	type editNetworkBody struct {
		Title       *string                      `json:"title"`
		Description *string                      `json:"description"`
		Context     *common.InvestigationContext `json:"investigationContext"`
	}

	type editNetworkResponse struct {
		Message string          `json:"message"`
		Network *common.Network `json:"network,omitempty"`
	}

	data := new(editNetworkBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editNetworkResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	if data.Title != nil {
		app.Store.SetTitle(*data.Title)
	}
	if data.Description != nil {
		app.Store.SetDescription(*data.Description)
	}
	if data.Context != nil {
		app.Store.SetContext(data.Context)
	}

	return c.JSON(http.StatusOK, editNetworkResponse{
		Message: "Network updated",
		Network: app.Store.Snapshot(),
	})
}

// ClearNetworkHandler empties the network.
func ClearNetworkHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	app.Store.Clear()
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Network cleared",
	})
}
