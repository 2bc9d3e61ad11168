package routes

import (
	"net/http"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetNetworkHandler returns the current network with derived orphan
// information.
func GetNetworkHandler(c echo.Context) error {
	type getNetworkResponse struct {
		Network *common.Network       `json:"network"`
		Orphans []common.Relationship `json:"orphaned_relationships"`
	}

	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, getNetworkResponse{
		Network: app.Store.Snapshot(),
		Orphans: app.Store.Orphans(),
	})
}

// ExportNetworkHandler returns the network in the import schema, so an
// export can be re-imported as-is.
func ExportNetworkHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Store.Snapshot())
}
