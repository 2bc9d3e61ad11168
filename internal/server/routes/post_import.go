package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/ai"
	"github.com/caseweave/backend/pkg/importer"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/merge"

	"github.com/labstack/echo/v4"
)

// ImportNetworkHandler imports a network document. The payload may be a JSON
// object or a JSON-encoded string (as produced by some export tools); in
// merge mode the imported data is reconciled with the current network, in
// replace mode it becomes the new network.
func ImportNetworkHandler(c echo.Context) error {
	type importBody struct {
		Data json.RawMessage `json:"data" validate:"required"`
		Mode string          `json:"mode" validate:"required,oneof=merge replace"`
	}

	type importResponse struct {
		Message            string                     `json:"message"`
		Validation         *importer.ValidationResult `json:"validation,omitempty"`
		AddedEntities      int                        `json:"added_entities"`
		AddedRelationships int                        `json:"added_relationships"`
		SkippedEntities    int                        `json:"skipped_entities"`
		EntityCount        int                        `json:"entity_count"`
		RelationshipCount  int                        `json:"relationship_count"`
	}

	data := new(importBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{
			Message: "Invalid request body",
		})
	}

	raw, err := decodeImportPayload(data.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{
			Message: "Payload is not valid JSON",
		})
	}

	imported, validation := importer.Normalize(raw)
	if imported == nil {
		return c.JSON(http.StatusBadRequest, importResponse{
			Message:    "Import rejected",
			Validation: &validation,
		})
	}

	mode := merge.ModeMerge
	if data.Mode == "replace" {
		mode = merge.ModeReplace
	}

	app := c.(*middleware.AppContext).App
	app.ImportMu.Lock()
	defer app.ImportMu.Unlock()

	result, err := merge.Resolve(app.Store.Snapshot(), imported, mode)
	if err != nil {
		logger.Error("failed to resolve import", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{
			Message: "Failed to apply import",
		})
	}

	description := fmt.Sprintf("Imported network (%d entities, %d relationships added)",
		result.AddedEntities, result.AddedRelationships)
	if mode == merge.ModeReplace {
		description = fmt.Sprintf("Replaced network (%d entities, %d relationships)",
			result.AddedEntities, result.AddedRelationships)
	}
	app.Store.Replace(result.Network, description)

	snapshot := app.Store.Snapshot()
	return c.JSON(http.StatusOK, importResponse{
		Message:            "Import applied",
		Validation:         &validation,
		AddedEntities:      result.AddedEntities,
		AddedRelationships: result.AddedRelationships,
		SkippedEntities:    result.SkippedEntities,
		EntityCount:        len(snapshot.Entities),
		RelationshipCount:  len(snapshot.Relationships),
	})
}

// ValidateNetworkHandler runs schema validation on a payload without
// touching the network.
func ValidateNetworkHandler(c echo.Context) error {
	type validateBody struct {
		Data json.RawMessage `json:"data" validate:"required"`
	}

	data := new(validateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid request body",
		})
	}

	raw, err := decodeImportPayload(data.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Payload is not valid JSON",
		})
	}

	return c.JSON(http.StatusOK, importer.Validate(raw))
}

// decodeImportPayload accepts either a JSON document or a JSON string
// containing a (possibly slightly malformed) document.
func decodeImportPayload(data json.RawMessage) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if text, ok := raw.(string); ok {
		raw = nil
		if err := ai.UnmarshalFlexible(text, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}
