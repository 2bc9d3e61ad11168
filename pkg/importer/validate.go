package importer

import (
	"fmt"

	"github.com/caseweave/backend/pkg/common"
)

// ImportStats summarizes what a validated payload contains.
type ImportStats struct {
	EntityCount       int                       `json:"entity_count"`
	RelationshipCount int                       `json:"relationship_count"`
	TypeHistogram     map[common.EntityType]int `json:"type_histogram"`
}

// ValidationResult is the outcome of validating a raw import payload.
//
// Errors are fatal: a payload with errors must not be normalized or merged.
// Warnings are recoverable: the payload can still be imported and the
// warnings are surfaced to the user as a list. Both are collected wholesale
// so all problems can be shown at once.
type ValidationResult struct {
	IsValid  bool        `json:"is_valid"`
	Errors   []string    `json:"errors"`
	Warnings []string    `json:"warnings"`
	Stats    ImportStats `json:"stats"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks an arbitrary decoded JSON value against the expected
// network-export shape. It never mutates raw and has no side effects.
//
// The payload must be an object with "entities" and "relationships" arrays.
// Per-element problems that have a safe default (missing type, missing
// relationship id, unresolved endpoints) are warnings; structural problems
// (missing ids or names, non-string endpoints) are errors.
func Validate(raw any) ValidationResult {
	result := ValidationResult{
		IsValid: true,
		Stats: ImportStats{
			TypeHistogram: make(map[common.EntityType]int),
		},
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		result.addError("imported data is not a JSON object")
		return result
	}

	rawEntities, ok := obj["entities"].([]any)
	if !ok {
		result.addError("missing or invalid \"entities\" array")
	}
	rawRelationships, ok := obj["relationships"].([]any)
	if !ok {
		result.addError("missing or invalid \"relationships\" array")
	}
	if !result.IsValid {
		return result
	}

	seenIDs := make(map[string]struct{}, len(rawEntities))
	for i, rawEntity := range rawEntities {
		entity, ok := rawEntity.(map[string]any)
		if !ok {
			result.addError("entity %d is not an object", i)
			continue
		}

		id, hasID := stringField(entity, "id")
		if !hasID {
			result.addError("entity %d is missing a string \"id\"", i)
		} else if _, dup := seenIDs[id]; dup {
			result.addWarning("duplicate entity id %q, first occurrence wins", id)
		} else {
			seenIDs[id] = struct{}{}
		}

		name, hasName := stringField(entity, "name")
		if !hasName || name == "" {
			result.addError("entity %d is missing a string \"name\"", i)
		}

		entityType, hasType := stringField(entity, "type")
		switch {
		case !hasType:
			result.addWarning("entity %q has no type, defaulting to %q", name, common.EntityTypeUnknown)
			result.Stats.TypeHistogram[common.EntityTypeUnknown]++
		case !common.IsValidEntityType(common.EntityType(entityType)):
			result.addWarning("entity %q has unknown type %q, defaulting to %q", name, entityType, common.EntityTypeUnknown)
			result.Stats.TypeHistogram[common.EntityTypeUnknown]++
		default:
			result.Stats.TypeHistogram[common.EntityType(entityType)]++
		}

		result.Stats.EntityCount++
	}

	for i, rawRelationship := range rawRelationships {
		relationship, ok := rawRelationship.(map[string]any)
		if !ok {
			result.addError("relationship %d is not an object", i)
			continue
		}

		if _, hasID := stringField(relationship, "id"); !hasID {
			result.addWarning("relationship %d has no id, one will be generated", i)
		}

		source, hasSource := stringField(relationship, "source")
		if !hasSource {
			result.addError("relationship %d is missing a string \"source\"", i)
		}
		target, hasTarget := stringField(relationship, "target")
		if !hasTarget {
			result.addError("relationship %d is missing a string \"target\"", i)
		}

		// Unresolved endpoints are tolerated: the relationship is still
		// importable and readers treat it as orphaned.
		if hasSource {
			if _, found := seenIDs[source]; !found {
				result.addWarning("relationship %d references unknown source %q", i, source)
			}
		}
		if hasTarget {
			if _, found := seenIDs[target]; !found {
				result.addWarning("relationship %d references unknown target %q", i, target)
			}
		}

		result.Stats.RelationshipCount++
	}

	return result
}

func stringField(obj map[string]any, key string) (string, bool) {
	value, exists := obj[key]
	if !exists {
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	return s, true
}

func numberField(obj map[string]any, key string) (float64, bool) {
	value, exists := obj[key]
	if !exists {
		return 0, false
	}
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
