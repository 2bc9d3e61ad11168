package importer

import (
	"fmt"
	"time"

	"github.com/caseweave/backend/pkg/common"
)

// ImportedNetwork is a validated, normalized import payload ready for the
// merge resolver. Title, Description and Context are nil when absent from
// the payload, so replace-mode can tell "absent" from "empty".
type ImportedNetwork struct {
	Title         *string
	Description   *string
	Entities      []common.Entity
	Relationships []common.Relationship
	Context       *common.InvestigationContext
}

// Normalize validates raw and, if it passes, reshapes it into canonical
// entity and relationship records with defaulted fields. It returns nil and
// the validation result when validation fails.
//
// Normalization is a pure reshape of one external payload: it never
// consults the live graph. Entities without ids get a generated
// "imported-<millis>-<index>" fallback, relationships get
// "imported-rel-<millis>-<index>". Entity types outside the known set are
// coerced to unknown, relationship statuses outside the known set to
// confirmed. Every entity is stamped as a manual import at the
// normalization time.
func Normalize(raw any) (*ImportedNetwork, ValidationResult) {
	result := Validate(raw)
	if !result.IsValid {
		return nil, result
	}

	obj := raw.(map[string]any)
	rawEntities := obj["entities"].([]any)
	rawRelationships := obj["relationships"].([]any)

	now := time.Now()
	millis := now.UnixMilli()

	imported := &ImportedNetwork{
		Entities:      make([]common.Entity, 0, len(rawEntities)),
		Relationships: make([]common.Relationship, 0, len(rawRelationships)),
	}

	if title, ok := stringField(obj, "title"); ok {
		imported.Title = &title
	}
	if description, ok := stringField(obj, "description"); ok {
		imported.Description = &description
	}
	if rawContext, ok := obj["investigationContext"].(map[string]any); ok {
		imported.Context = normalizeContext(rawContext)
	}

	for i, rawEntity := range rawEntities {
		entityObj := rawEntity.(map[string]any)

		id, ok := stringField(entityObj, "id")
		if !ok {
			id = fmt.Sprintf("imported-%d-%d", millis, i)
		}

		entityType := common.EntityTypeUnknown
		if t, ok := stringField(entityObj, "type"); ok && common.IsValidEntityType(common.EntityType(t)) {
			entityType = common.EntityType(t)
		}

		name, _ := stringField(entityObj, "name")
		createdAt := now
		entity := common.Entity{
			ID:         id,
			Name:       name,
			Type:       entityType,
			SourceType: common.SourceTypeManual,
			CreatedAt:  &createdAt,
		}
		if description, ok := stringField(entityObj, "description"); ok {
			entity.Description = description
		}
		if importance, ok := numberField(entityObj, "importance"); ok {
			entity.Importance = importance
		}
		if position, ok := entityObj["position"].(map[string]any); ok {
			x, okX := numberField(position, "x")
			y, okY := numberField(position, "y")
			if okX && okY {
				entity.Position = &common.Position{X: x, Y: y}
			}
		}

		imported.Entities = append(imported.Entities, entity)
	}

	for i, rawRelationship := range rawRelationships {
		relationshipObj := rawRelationship.(map[string]any)

		id, ok := stringField(relationshipObj, "id")
		if !ok {
			id = fmt.Sprintf("imported-rel-%d-%d", millis, i)
		}

		status := common.StatusConfirmed
		if s, ok := stringField(relationshipObj, "status"); ok && common.IsValidStatus(common.RelationshipStatus(s)) {
			status = common.RelationshipStatus(s)
		}

		source, _ := stringField(relationshipObj, "source")
		target, _ := stringField(relationshipObj, "target")
		relationship := common.Relationship{
			ID:     id,
			Source: source,
			Target: target,
			Status: status,
		}
		if relType, ok := stringField(relationshipObj, "type"); ok {
			relationship.Type = relType
		}
		if label, ok := stringField(relationshipObj, "label"); ok {
			relationship.Label = label
		}
		if strength, ok := numberField(relationshipObj, "strength"); ok {
			relationship.Strength = strength
		}
		if startDate, ok := stringField(relationshipObj, "start_date"); ok {
			relationship.StartDate = startDate
		}
		if endDate, ok := stringField(relationshipObj, "end_date"); ok {
			relationship.EndDate = endDate
		}

		imported.Relationships = append(imported.Relationships, relationship)
	}

	return imported, result
}

func normalizeContext(raw map[string]any) *common.InvestigationContext {
	ctx := &common.InvestigationContext{}
	if topic, ok := stringField(raw, "topic"); ok {
		ctx.Topic = topic
	}
	if domain, ok := stringField(raw, "domain"); ok {
		ctx.Domain = domain
	}
	if focus, ok := stringField(raw, "focus"); ok {
		ctx.Focus = focus
	}
	if questions, ok := raw["keyQuestions"].([]any); ok {
		for _, q := range questions {
			if s, ok := q.(string); ok {
				ctx.KeyQuestions = append(ctx.KeyQuestions, s)
			}
		}
	}
	return ctx
}
