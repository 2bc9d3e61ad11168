package routes

import (
	"errors"
	"net/http"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/history"
	"github.com/caseweave/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetHistoryHandler lists the recorded history entries, most recent first.
func GetHistoryHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, map[string]any{
		"entries": app.History.Entries(),
	})
}

// RestoreHistoryHandler rolls the network back to a recorded snapshot.
func RestoreHistoryHandler(c echo.Context) error {
	type restoreResponse struct {
		Message string               `json:"message"`
		Entry   *common.HistoryEntry `json:"entry,omitempty"`
		Network *common.Network      `json:"network,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	entry, err := app.History.Restore(c.Param("id"))
	if err != nil {
		if errors.Is(err, history.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, restoreResponse{
				Message: "History entry not found",
			})
		}
		logger.Error("failed to restore history entry", "err", err)
		return c.JSON(http.StatusInternalServerError, restoreResponse{
			Message: "Failed to restore history entry",
		})
	}

	return c.JSON(http.StatusOK, restoreResponse{
		Message: "Network restored",
		Entry:   &entry,
		Network: app.Store.Snapshot(),
	})
}
