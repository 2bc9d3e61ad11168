package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caseweave/backend/internal/util"
	"github.com/caseweave/backend/pkg/ai"
	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/importer"
	"github.com/caseweave/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type responseEntity struct {
	Name          string  `json:"name" jsonschema_description:"Name of the entity"`
	Type          string  `json:"type" jsonschema_description:"One of the provided entity types"`
	Description   string  `json:"description" jsonschema_description:"Factual description of the entity based on the source"`
	Importance    float64 `json:"importance" jsonschema_description:"Importance to the investigation, 1 (peripheral) to 10 (central)"`
	SourceSnippet string  `json:"source_snippet" jsonschema_description:"Shortest snippet of the source text establishing the entity"`
}

type responseRelationship struct {
	Source string `json:"source" jsonschema_description:"Name of the source entity, exactly as listed in entities"`
	Target string `json:"target" jsonschema_description:"Name of the target entity, exactly as listed in entities"`
	Type   string `json:"type" jsonschema_description:"Short lowercase phrase describing the relationship"`
	Status string `json:"status" jsonschema_description:"One of: confirmed, suspected, former"`
}

type networkResponse struct {
	Entities      []responseEntity       `json:"entities" jsonschema_description:"Entities identified in the source"`
	Relationships []responseRelationship `json:"relationships" jsonschema_description:"Relationships between the identified entities"`
}

// Service turns unstructured text and research queries into normalized
// entity and relationship records via the AI collaborator. Its output is
// an importer.ImportedNetwork: reconciliation against the live graph is
// always left to the merge resolver, the same path JSON imports take.
//
// A Service should be created using NewService.
type Service struct {
	tokenEncoder     string
	maxChunkTokens   int
	parallelRequests int
	maxRetries       int

	enrichGroup singleflight.Group
}

// NewServiceParams defines the configuration parameters for creating a new
// Service.
//
// TokenEncoder specifies the tiktoken encoding used to measure chunks.
// MaxChunkTokens bounds the size of each extraction request.
// ParallelRequests controls how many chunks are extracted concurrently.
type NewServiceParams struct {
	TokenEncoder     string
	MaxChunkTokens   int
	ParallelRequests int
	MaxRetries       int
}

// NewService creates and returns a new Service configured with the
// provided parameters.
func NewService(params NewServiceParams) *Service {
	encoder := params.TokenEncoder
	if encoder == "" {
		encoder = "o200k_base"
	}
	maxChunkTokens := params.MaxChunkTokens
	if maxChunkTokens <= 0 {
		maxChunkTokens = 1200
	}
	parallel := params.ParallelRequests
	if parallel <= 0 {
		parallel = 4
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Service{
		tokenEncoder:     encoder,
		maxChunkTokens:   maxChunkTokens,
		parallelRequests: parallel,
		maxRetries:       maxRetries,
	}
}

func entityTypeList() string {
	names := make([]string, len(common.EntityTypes))
	for i, t := range common.EntityTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// FromText extracts entities and relationships from source text. The text
// is chunked to the configured token bound and chunks are extracted in
// parallel; results are combined by case-insensitive entity name before
// being returned as an import payload.
//
// origin records where the text came from (document or web) in each
// entity's provenance fields.
func (s *Service) FromText(
	ctx context.Context,
	text string,
	origin common.SourceType,
	client ai.NetworkAIClient,
) (*importer.ImportedNetwork, error) {
	chunks, err := buildChunks(text, s.tokenEncoder, s.maxChunkTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk text: %w", err)
	}
	if len(chunks) == 0 {
		return &importer.ImportedNetwork{
			Entities:      []common.Entity{},
			Relationships: []common.Relationship{},
		}, nil
	}

	logger.Info("[Extract] Processing text", "chunks", len(chunks), "origin", origin)

	types := entityTypeList()
	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, types, types, types)

	responses := make([]networkResponse, len(chunks))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.parallelRequests)
	for _, c := range chunks {
		eg.Go(func() error {
			var res networkResponse
			err := util.RetryErrWithContext(gCtx, s.maxRetries, func(ctx context.Context) error {
				res = networkResponse{}
				return client.GenerateCompletionWithFormat(
					ctx,
					"extract_network",
					"Extract entities and relationships from a segment of source text.",
					c.text,
					&res,
					ai.WithSystemPrompts(systemPrompt),
				)
			})
			if err != nil {
				return fmt.Errorf("failed to extract chunk %d: %w", c.index, err)
			}
			responses[c.index] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	combined := networkResponse{}
	for _, res := range responses {
		combined.Entities = append(combined.Entities, res.Entities...)
		combined.Relationships = append(combined.Relationships, res.Relationships...)
	}
	return s.toImported(combined, origin)
}

// Discover proposes a fresh set of entities and relationships for a
// research query, optionally framed by the investigation context.
func (s *Service) Discover(
	ctx context.Context,
	query string,
	investigation *common.InvestigationContext,
	client ai.NetworkAIClient,
) (*importer.ImportedNetwork, error) {
	types := entityTypeList()
	systemPrompt := fmt.Sprintf(ai.DiscoverPrompt, types, types)
	if investigation != nil && investigation.Topic != "" {
		systemPrompt = fmt.Sprintf("%s\n\nInvestigation topic: %s", systemPrompt, investigation.Topic)
	}

	var res networkResponse
	err := util.RetryErrWithContext(ctx, s.maxRetries, func(ctx context.Context) error {
		res = networkResponse{}
		return client.GenerateCompletionWithFormat(
			ctx,
			"discover_network",
			"Propose entities and relationships for a research query.",
			query,
			&res,
			ai.WithSystemPrompts(systemPrompt),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover network: %w", err)
	}

	return s.toImported(res, common.SourceTypeEnrichment)
}

// Enrich generates an improved description for a single entity, framed by
// the investigation topic. Concurrent enrichments of the same entity are
// collapsed into one AI call.
func (s *Service) Enrich(
	ctx context.Context,
	entity common.Entity,
	topic string,
	client ai.NetworkAIClient,
) (string, error) {
	result, err, _ := s.enrichGroup.Do(entity.ID, func() (any, error) {
		prompt := fmt.Sprintf(ai.EnrichPrompt, entity.Name, entity.Type, entity.Description, topic)

		description, err := util.RetryWithContext(ctx, s.maxRetries, func(ctx context.Context) (string, error) {
			return client.GenerateCompletion(ctx, prompt)
		})
		if err != nil {
			return "", fmt.Errorf("failed to enrich entity %q: %w", entity.Name, err)
		}

		description = strings.ReplaceAll(description, "\r\n", " ")
		description = strings.ReplaceAll(description, "\n", " ")
		description = strings.ReplaceAll(description, "\r", " ")
		description = strings.Join(strings.Fields(description), " ")

		return description, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// toImported converts an AI response into an import payload. Entities are
// deduplicated by case-insensitive name (first occurrence wins) and
// relationships are resolved from entity names to generated ids;
// relationships naming an unknown entity are dropped.
func (s *Service) toImported(res networkResponse, origin common.SourceType) (*importer.ImportedNetwork, error) {
	now := time.Now()
	imported := &importer.ImportedNetwork{
		Entities:      []common.Entity{},
		Relationships: []common.Relationship{},
	}

	idsByName := make(map[string]string, len(res.Entities))
	for _, re := range res.Entities {
		name := strings.TrimSpace(re.Name)
		if name == "" {
			continue
		}
		nameKey := strings.ToLower(name)
		if _, seen := idsByName[nameKey]; seen {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate entity id: %w", err)
		}

		entityType := common.EntityType(re.Type)
		if !common.IsValidEntityType(entityType) {
			entityType = common.EntityTypeUnknown
		}

		createdAt := now
		imported.Entities = append(imported.Entities, common.Entity{
			ID:            id,
			Name:          name,
			Type:          entityType,
			Description:   re.Description,
			Importance:    re.Importance,
			SourceType:    origin,
			SourceSnippet: re.SourceSnippet,
			CreatedAt:     &createdAt,
		})
		idsByName[nameKey] = id
	}

	for _, rr := range res.Relationships {
		sourceID, hasSource := idsByName[strings.ToLower(strings.TrimSpace(rr.Source))]
		targetID, hasTarget := idsByName[strings.ToLower(strings.TrimSpace(rr.Target))]
		if !hasSource || !hasTarget {
			logger.Debug("[Extract] Dropping relationship with unknown endpoint", "source", rr.Source, "target", rr.Target)
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate relationship id: %w", err)
		}

		status := common.RelationshipStatus(rr.Status)
		if !common.IsValidStatus(status) {
			status = common.StatusConfirmed
		}

		imported.Relationships = append(imported.Relationships, common.Relationship{
			ID:     id,
			Source: sourceID,
			Target: targetID,
			Type:   rr.Type,
			Status: status,
		})
	}

	return imported, nil
}
