package common

import "time"

// EntityType classifies a node in the investigation network.
// Unrecognized types are coerced to EntityTypeUnknown at import time.
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeCorporation  EntityType = "corporation"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeGovernment   EntityType = "government"
	EntityTypeFinancial    EntityType = "financial"
	EntityTypeLocation     EntityType = "location"
	EntityTypeAsset        EntityType = "asset"
	EntityTypeEvent        EntityType = "event"
	EntityTypeUnknown      EntityType = "unknown"
)

// EntityTypes lists every valid entity type.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeCorporation,
	EntityTypeOrganization,
	EntityTypeGovernment,
	EntityTypeFinancial,
	EntityTypeLocation,
	EntityTypeAsset,
	EntityTypeEvent,
	EntityTypeUnknown,
}

// IsValidEntityType reports whether t is one of the known entity types.
func IsValidEntityType(t EntityType) bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SourceType records where an entity originally came from.
type SourceType string

const (
	SourceTypeDocument   SourceType = "document"
	SourceTypeWeb        SourceType = "web"
	SourceTypeManual     SourceType = "manual"
	SourceTypeEnrichment SourceType = "enrichment"
)

// RelationshipStatus qualifies how certain a relationship is.
type RelationshipStatus string

const (
	StatusConfirmed RelationshipStatus = "confirmed"
	StatusSuspected RelationshipStatus = "suspected"
	StatusFormer    RelationshipStatus = "former"
)

// IsValidStatus reports whether s is one of the known relationship statuses.
func IsValidStatus(s RelationshipStatus) bool {
	switch s {
	case StatusConfirmed, StatusSuspected, StatusFormer:
		return true
	}
	return false
}

// Position is a persisted 2D layout hint for rendering clients.
// The engine passes it through without interpreting it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entity represents a node in the investigation network: a person,
// corporation, location, asset, or any other concept under investigation.
//
// The ID is unique within a Network. Name is required and is the key used
// for duplicate detection during merge (case-insensitive).
type Entity struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          EntityType `json:"type"`
	Description   string     `json:"description,omitempty"`
	Importance    float64    `json:"importance,omitempty"`
	SourceType    SourceType `json:"source_type,omitempty"`
	SourceSnippet string     `json:"source_snippet,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	Position      *Position  `json:"position,omitempty"`
}

// Relationship represents a directed edge between two entities.
//
// Source and Target hold entity IDs. A relationship whose endpoints do not
// resolve to entities in the same network is "orphaned": it stays in
// storage, and readers decide how to treat it.
type Relationship struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Target    string             `json:"target"`
	Type      string             `json:"type,omitempty"`
	Label     string             `json:"label,omitempty"`
	Status    RelationshipStatus `json:"status,omitempty"`
	Strength  float64            `json:"strength,omitempty"`
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
}

// InvestigationContext carries the framing of an investigation. The engine
// passes it through unchanged; only rendering clients and the AI
// collaborator interpret it.
type InvestigationContext struct {
	Topic        string   `json:"topic,omitempty"`
	Domain       string   `json:"domain,omitempty"`
	Focus        string   `json:"focus,omitempty"`
	KeyQuestions []string `json:"keyQuestions,omitempty"`
}

// Network is the aggregate investigation graph: a titled, described,
// ordered collection of entities and relationships.
//
// Invariants maintained by the store:
//   - entity IDs are unique within a network
//   - relationship IDs are unique within a network
//
// Relationship endpoints referencing missing entities are tolerated
// (orphans), not dropped.
type Network struct {
	Title         string                `json:"title"`
	Description   string                `json:"description,omitempty"`
	Entities      []Entity              `json:"entities"`
	Relationships []Relationship        `json:"relationships"`
	Context       *InvestigationContext `json:"investigationContext,omitempty"`
}

// HistoryEntry is one recorded mutation of the network, with a full
// independent snapshot of the graph at that point.
type HistoryEntry struct {
	ID                string         `json:"id"`
	Action            string         `json:"action"`
	Description       string         `json:"description"`
	Timestamp         time.Time      `json:"timestamp"`
	EntityCount       int            `json:"entityCount"`
	RelationshipCount int            `json:"relationshipCount"`
	Entities          []Entity       `json:"-"`
	Relationships     []Relationship `json:"-"`
}

// CopyEntities returns an independent copy of the given entities.
// Pointer-valued fields are duplicated so the copy cannot be corrupted
// through the original.
func CopyEntities(entities []Entity) []Entity {
	if entities == nil {
		return nil
	}
	out := make([]Entity, len(entities))
	for i, e := range entities {
		out[i] = e
		if e.CreatedAt != nil {
			t := *e.CreatedAt
			out[i].CreatedAt = &t
		}
		if e.Position != nil {
			p := *e.Position
			out[i].Position = &p
		}
	}
	return out
}

// CopyRelationships returns an independent copy of the given relationships.
func CopyRelationships(relationships []Relationship) []Relationship {
	if relationships == nil {
		return nil
	}
	out := make([]Relationship, len(relationships))
	copy(out, relationships)
	return out
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	out := &Network{
		Title:         n.Title,
		Description:   n.Description,
		Entities:      CopyEntities(n.Entities),
		Relationships: CopyRelationships(n.Relationships),
	}
	if n.Context != nil {
		ctx := *n.Context
		ctx.KeyQuestions = append([]string(nil), n.Context.KeyQuestions...)
		out.Context = &ctx
	}
	return out
}
