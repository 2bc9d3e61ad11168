package routes

import (
	"fmt"
	"net/http"

	"github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/importer"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/merge"
	"github.com/caseweave/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

type applyResponse struct {
	Message            string `json:"message"`
	AddedEntities      int    `json:"added_entities"`
	AddedRelationships int    `json:"added_relationships"`
	SkippedEntities    int    `json:"skipped_entities"`
	EntityCount        int    `json:"entity_count"`
	RelationshipCount  int    `json:"relationship_count"`
}

// applyImported merges AI-produced records into the live network. All AI
// output takes the same merge path as JSON imports, so name dedupe and
// relationship suppression behave identically regardless of source.
func applyImported(
	c echo.Context,
	imported *importer.ImportedNetwork,
	description string,
) error {
	app := c.(*middleware.AppContext).App
	app.ImportMu.Lock()
	defer app.ImportMu.Unlock()

	result, err := merge.Resolve(app.Store.Snapshot(), imported, merge.ModeMerge)
	if err != nil {
		logger.Error("failed to merge generated network", "err", err)
		return c.JSON(http.StatusInternalServerError, applyResponse{
			Message: "Failed to apply generated network",
		})
	}

	app.Store.Replace(result.Network, fmt.Sprintf("%s (%d entities, %d relationships added)",
		description, result.AddedEntities, result.AddedRelationships))

	snapshot := app.Store.Snapshot()
	return c.JSON(http.StatusOK, applyResponse{
		Message:            description,
		AddedEntities:      result.AddedEntities,
		AddedRelationships: result.AddedRelationships,
		SkippedEntities:    result.SkippedEntities,
		EntityCount:        len(snapshot.Entities),
		RelationshipCount:  len(snapshot.Relationships),
	})
}

// ExtractHandler extracts entities and relationships from raw text or a web
// page and merges them into the network. Exactly one of text and url must
// be provided.
func ExtractHandler(c echo.Context) error {
	type extractBody struct {
		Text string `json:"text"`
		URL  string `json:"url" validate:"omitempty,url"`
	}

	data := new(extractBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, applyResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, applyResponse{
			Message: "Invalid request body",
		})
	}
	if (data.Text == "") == (data.URL == "") {
		return c.JSON(http.StatusBadRequest, applyResponse{
			Message: "Provide either text or url",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	text := data.Text
	origin := common.SourceTypeDocument
	if data.URL != "" {
		origin = common.SourceTypeWeb
		var err error
		text, err = app.Web.GetText(ctx, data.URL)
		if err != nil {
			logger.Error("failed to load url", "url", data.URL, "err", err)
			return c.JSON(http.StatusBadGateway, applyResponse{
				Message: "Failed to load url",
			})
		}
	}

	imported, err := app.Extractor.FromText(ctx, text, origin, app.AiClient)
	if err != nil {
		logger.Error("failed to extract network", "err", err)
		return c.JSON(http.StatusInternalServerError, applyResponse{
			Message: "Failed to extract network",
		})
	}

	return applyImported(c, imported, "Extracted network from source")
}

// DiscoverHandler asks the AI collaborator to propose a network for a
// research query and merges the proposal into the current network.
func DiscoverHandler(c echo.Context) error {
	type discoverBody struct {
		Query string `json:"query" validate:"required"`
	}

	data := new(discoverBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, applyResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, applyResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	investigation := app.Store.Snapshot().Context

	imported, err := app.Extractor.Discover(c.Request().Context(), data.Query, investigation, app.AiClient)
	if err != nil {
		logger.Error("failed to discover network", "err", err)
		return c.JSON(http.StatusInternalServerError, applyResponse{
			Message: "Failed to discover network",
		})
	}

	return applyImported(c, imported, "Discovered network for query")
}

// EnrichHandler regenerates the description of one entity via the AI
// collaborator.
func EnrichHandler(c echo.Context) error {
	type enrichResponse struct {
		Message string         `json:"message"`
		Entity  *common.Entity `json:"entity,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	entity, err := app.Store.GetEntity(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, enrichResponse{
			Message: "Entity not found",
		})
	}

	topic := ""
	if investigation := app.Store.Snapshot().Context; investigation != nil {
		topic = investigation.Topic
	}

	description, err := app.Extractor.Enrich(c.Request().Context(), entity, topic, app.AiClient)
	if err != nil {
		logger.Error("failed to enrich entity", "err", err)
		return c.JSON(http.StatusInternalServerError, enrichResponse{
			Message: "Failed to enrich entity",
		})
	}

	origin := common.SourceTypeEnrichment
	updated, err := app.Store.UpdateEntity(entity.ID, store.EntityPatch{
		Description: &description,
		SourceType:  &origin,
	})
	if err != nil {
		logger.Error("failed to store enriched description", "err", err)
		return c.JSON(http.StatusInternalServerError, enrichResponse{
			Message: "Failed to enrich entity",
		})
	}

	return c.JSON(http.StatusOK, enrichResponse{
		Message: "Entity enriched",
		Entity:  &updated,
	})
}
