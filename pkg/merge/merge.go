package merge

import (
	"fmt"
	"strings"

	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/importer"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Mode selects the import strategy.
type Mode string

const (
	// ModeMerge unions imported data into the existing network, skipping
	// detected duplicates.
	ModeMerge Mode = "merge"
	// ModeReplace discards the existing network and substitutes the
	// imported data.
	ModeReplace Mode = "replace"
)

// Result is the outcome of resolving an import against a network. The
// counts are exact: they match what the resolution actually wrote.
type Result struct {
	Network            *common.Network `json:"-"`
	AddedEntities      int             `json:"added_entities"`
	AddedRelationships int             `json:"added_relationships"`
	SkippedEntities    int             `json:"skipped_entities"`
}

// Resolve reconciles a normalized import against the current network and
// returns the resulting network without mutating the input. Every path
// that brings externally-sourced records into a network goes through here:
// JSON imports, AI extraction and AI discovery alike.
//
// In merge mode, entities are deduplicated by case-insensitive name: a name
// that already exists maps the imported entity onto the existing one and
// all imported relationships referencing it are rewritten accordingly.
// Entity id collisions are resolved by generating a fresh id. Relationships
// are deduplicated on their undirected endpoint pair, ignoring type and
// label, so only the first relationship between two entities survives.
//
// In replace mode the imported data becomes the network wholesale; title,
// description and context are overwritten only when present in the import.
func Resolve(current *common.Network, imported *importer.ImportedNetwork, mode Mode) (*Result, error) {
	if mode == ModeReplace {
		return replace(current, imported), nil
	}
	return mergeInto(current, imported)
}

func replace(current *common.Network, imported *importer.ImportedNetwork) *Result {
	network := &common.Network{
		Title:         current.Title,
		Description:   current.Description,
		Entities:      common.CopyEntities(imported.Entities),
		Relationships: common.CopyRelationships(imported.Relationships),
		Context:       current.Context,
	}
	if imported.Title != nil {
		network.Title = *imported.Title
	}
	if imported.Description != nil {
		network.Description = *imported.Description
	}
	if imported.Context != nil {
		network.Context = imported.Context
	}
	if network.Entities == nil {
		network.Entities = []common.Entity{}
	}
	if network.Relationships == nil {
		network.Relationships = []common.Relationship{}
	}

	return &Result{
		Network:            network,
		AddedEntities:      len(network.Entities),
		AddedRelationships: len(network.Relationships),
	}
}

func mergeInto(current *common.Network, imported *importer.ImportedNetwork) (*Result, error) {
	network := current.Clone()
	result := &Result{Network: network}

	nameIndex := make(map[string]string, len(network.Entities))
	entityIDs := make(map[string]struct{}, len(network.Entities))
	for _, entity := range network.Entities {
		nameIndex[strings.ToLower(entity.Name)] = entity.ID
		entityIDs[entity.ID] = struct{}{}
	}

	relationshipIDs := make(map[string]struct{}, len(network.Relationships))
	pairs := make(map[string]struct{}, len(network.Relationships))
	for _, relationship := range network.Relationships {
		relationshipIDs[relationship.ID] = struct{}{}
		pairs[pairKey(relationship.Source, relationship.Target)] = struct{}{}
	}

	// Maps imported entity ids to the id they ended up under, either an
	// existing entity with the same name or a regenerated id.
	idMap := make(map[string]string)

	for _, entity := range imported.Entities {
		nameKey := strings.ToLower(entity.Name)
		if existingID, exists := nameIndex[nameKey]; exists {
			idMap[entity.ID] = existingID
			result.SkippedEntities++
			continue
		}

		if _, collides := entityIDs[entity.ID]; collides {
			freshID, err := gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("failed to generate entity id: %w", err)
			}
			idMap[entity.ID] = freshID
			entity.ID = freshID
		}

		network.Entities = append(network.Entities, entity)
		nameIndex[nameKey] = entity.ID
		entityIDs[entity.ID] = struct{}{}
		result.AddedEntities++
	}

	for _, relationship := range imported.Relationships {
		if mapped, exists := idMap[relationship.Source]; exists {
			relationship.Source = mapped
		}
		if mapped, exists := idMap[relationship.Target]; exists {
			relationship.Target = mapped
		}

		key := pairKey(relationship.Source, relationship.Target)
		if _, duplicate := pairs[key]; duplicate {
			continue
		}

		if _, collides := relationshipIDs[relationship.ID]; collides {
			freshID, err := gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("failed to generate relationship id: %w", err)
			}
			relationship.ID = freshID
		}

		network.Relationships = append(network.Relationships, relationship)
		relationshipIDs[relationship.ID] = struct{}{}
		pairs[key] = struct{}{}
		result.AddedRelationships++
	}

	return result, nil
}

// pairKey builds a direction-independent key for a relationship's
// endpoints. Two relationships between the same pair of entities are
// duplicates regardless of direction, type or label.
func pairKey(source, target string) string {
	if source > target {
		source, target = target, source
	}
	return source + "\x00" + target
}
