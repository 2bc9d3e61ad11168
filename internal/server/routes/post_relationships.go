package routes

import (
	"errors"
	"net/http"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/store"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateRelationshipHandler adds a single relationship. Endpoints are not
// required to resolve; unresolved endpoints make the relationship an
// orphan.
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		Source    string  `json:"source" validate:"required"`
		Target    string  `json:"target" validate:"required"`
		Type      string  `json:"type"`
		Label     string  `json:"label"`
		Status    string  `json:"status"`
		Strength  float64 `json:"strength"`
		StartDate string  `json:"start_date"`
		EndDate   string  `json:"end_date"`
	}

	type createRelationshipResponse struct {
		Message      string               `json:"message"`
		Relationship *common.Relationship `json:"relationship,omitempty"`
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}

	status := common.RelationshipStatus(data.Status)
	if !common.IsValidStatus(status) {
		status = common.StatusConfirmed
	}

	id, err := gonanoid.New()
	if err != nil {
		logger.Error("failed to generate relationship id", "err", err)
		return c.JSON(http.StatusInternalServerError, createRelationshipResponse{
			Message: "Failed to create relationship",
		})
	}

	relationship := common.Relationship{
		ID:        id,
		Source:    data.Source,
		Target:    data.Target,
		Type:      data.Type,
		Label:     data.Label,
		Status:    status,
		Strength:  data.Strength,
		StartDate: data.StartDate,
		EndDate:   data.EndDate,
	}

	app := c.(*middleware.AppContext).App
	if err := app.Store.AddRelationship(relationship); err != nil {
		logger.Error("failed to add relationship", "err", err)
		return c.JSON(http.StatusInternalServerError, createRelationshipResponse{
			Message: "Failed to create relationship",
		})
	}

	return c.JSON(http.StatusCreated, createRelationshipResponse{
		Message:      "Relationship created",
		Relationship: &relationship,
	})
}

// EditRelationshipHandler applies a partial update to a relationship.
func EditRelationshipHandler(c echo.Context) error {
	type editRelationshipBody struct {
		Source    *string  `json:"source"`
		Target    *string  `json:"target"`
		Type      *string  `json:"type"`
		Label     *string  `json:"label"`
		Status    *string  `json:"status"`
		Strength  *float64 `json:"strength"`
		StartDate *string  `json:"start_date"`
		EndDate   *string  `json:"end_date"`
	}

	type editRelationshipResponse struct {
		Message      string               `json:"message"`
		Relationship *common.Relationship `json:"relationship,omitempty"`
	}

	data := new(editRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editRelationshipResponse{
			Message: "Invalid request body",
		})
	}

	patch := store.RelationshipPatch{
		Source:    data.Source,
		Target:    data.Target,
		Type:      data.Type,
		Label:     data.Label,
		Strength:  data.Strength,
		StartDate: data.StartDate,
		EndDate:   data.EndDate,
	}
	if data.Status != nil {
		status := common.RelationshipStatus(*data.Status)
		if !common.IsValidStatus(status) {
			status = common.StatusConfirmed
		}
		patch.Status = &status
	}

	app := c.(*middleware.AppContext).App
	relationship, err := app.Store.UpdateRelationship(c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, editRelationshipResponse{
				Message: "Relationship not found",
			})
		}
		logger.Error("failed to update relationship", "err", err)
		return c.JSON(http.StatusInternalServerError, editRelationshipResponse{
			Message: "Failed to update relationship",
		})
	}

	return c.JSON(http.StatusOK, editRelationshipResponse{
		Message:      "Relationship updated",
		Relationship: &relationship,
	})
}

// DeleteRelationshipHandler removes a relationship by id.
func DeleteRelationshipHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if err := app.Store.DeleteRelationship(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"message": "Relationship not found",
			})
		}
		logger.Error("failed to delete relationship", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Failed to delete relationship",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Relationship deleted",
	})
}
