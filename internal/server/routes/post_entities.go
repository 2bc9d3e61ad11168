package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/store"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateEntityHandler adds a single entity. Unknown or missing types fall
// back to the unknown type rather than rejecting the request.
func CreateEntityHandler(c echo.Context) error {
	type createEntityBody struct {
		Name          string           `json:"name" validate:"required"`
		Type          string           `json:"type"`
		Description   string           `json:"description"`
		Importance    float64          `json:"importance"`
		SourceSnippet string           `json:"source_snippet"`
		Position      *common.Position `json:"position"`
	}

	type createEntityResponse struct {
		Message string         `json:"message"`
		Entity  *common.Entity `json:"entity,omitempty"`
	}

	data := new(createEntityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}

	entityType := common.EntityType(data.Type)
	if !common.IsValidEntityType(entityType) {
		entityType = common.EntityTypeUnknown
	}

	id, err := gonanoid.New()
	if err != nil {
		logger.Error("failed to generate entity id", "err", err)
		return c.JSON(http.StatusInternalServerError, createEntityResponse{
			Message: "Failed to create entity",
		})
	}

	now := time.Now().UTC()
	entity := common.Entity{
		ID:            id,
		Name:          data.Name,
		Type:          entityType,
		Description:   data.Description,
		Importance:    data.Importance,
		SourceType:    common.SourceTypeManual,
		SourceSnippet: data.SourceSnippet,
		CreatedAt:     &now,
		Position:      data.Position,
	}

	app := c.(*middleware.AppContext).App
	if err := app.Store.AddEntity(entity); err != nil {
		logger.Error("failed to add entity", "err", err)
		return c.JSON(http.StatusInternalServerError, createEntityResponse{
			Message: "Failed to create entity",
		})
	}

	return c.JSON(http.StatusCreated, createEntityResponse{
		Message: "Entity created",
		Entity:  &entity,
	})
}

// EditEntityHandler applies a partial update to an entity.
func EditEntityHandler(c echo.Context) error {
	type editEntityBody struct {
		Name          *string          `json:"name"`
		Type          *string          `json:"type"`
		Description   *string          `json:"description"`
		Importance    *float64         `json:"importance"`
		SourceSnippet *string          `json:"source_snippet"`
		Position      *common.Position `json:"position"`
	}

	type editEntityResponse struct {
		Message string         `json:"message"`
		Entity  *common.Entity `json:"entity,omitempty"`
	}

	data := new(editEntityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEntityResponse{
			Message: "Invalid request body",
		})
	}

	patch := store.EntityPatch{
		Name:          data.Name,
		Description:   data.Description,
		Importance:    data.Importance,
		SourceSnippet: data.SourceSnippet,
		Position:      data.Position,
	}
	if data.Type != nil {
		entityType := common.EntityType(*data.Type)
		if !common.IsValidEntityType(entityType) {
			entityType = common.EntityTypeUnknown
		}
		patch.Type = &entityType
	}

	app := c.(*middleware.AppContext).App
	entity, err := app.Store.UpdateEntity(c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, editEntityResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("failed to update entity", "err", err)
		return c.JSON(http.StatusInternalServerError, editEntityResponse{
			Message: "Failed to update entity",
		})
	}

	return c.JSON(http.StatusOK, editEntityResponse{
		Message: "Entity updated",
		Entity:  &entity,
	})
}

// DeleteEntityHandler removes an entity. Relationships that referenced it
// are kept and reported as orphans by the network endpoints.
func DeleteEntityHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if err := app.Store.DeleteEntity(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"message": "Entity not found",
			})
		}
		logger.Error("failed to delete entity", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Failed to delete entity",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Entity deleted",
	})
}

// GetConnectionsHandler lists an entity's relationships with the resolved
// far endpoints.
func GetConnectionsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	connections, err := app.Store.Connections(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"message": "Entity not found",
			})
		}
		logger.Error("failed to list connections", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Failed to list connections",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"connections": connections,
	})
}
