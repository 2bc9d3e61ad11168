package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/caseweave/backend/pkg/common"
)

// NetworkStore is the authoritative mutable investigation network. All
// mutations go through its primitive operations, and every reader derives
// its view from a snapshot rather than holding a copy.
//
// The session model is single-writer, but HTTP handlers run on multiple
// goroutines, so a mutex serializes access. Mutations execute to
// completion, including observer notification, before the next one starts;
// no partial mutation is ever observable.
type NetworkStore struct {
	mu        sync.Mutex
	network   common.Network
	observers []Observer
}

// NewNetworkStore creates a store holding an empty, untitled network.
func NewNetworkStore() *NetworkStore {
	return &NetworkStore{
		network: common.Network{
			Entities:      []common.Entity{},
			Relationships: []common.Relationship{},
		},
	}
}

// Subscribe registers an observer for mutation events.
func (s *NetworkStore) Subscribe(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *NetworkStore) notify(event Event) {
	event.Entities = common.CopyEntities(s.network.Entities)
	event.Relationships = common.CopyRelationships(s.network.Relationships)
	for _, observer := range s.observers {
		observer(event)
	}
}

// Snapshot returns a deep copy of the current network.
func (s *NetworkStore) Snapshot() *common.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.Clone()
}

func (s *NetworkStore) entityIndex(id string) int {
	for i := range s.network.Entities {
		if s.network.Entities[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *NetworkStore) relationshipIndex(id string) int {
	for i := range s.network.Relationships {
		if s.network.Relationships[i].ID == id {
			return i
		}
	}
	return -1
}

// AddEntity appends a new entity. It fails with ErrDuplicateID when the id
// is already taken.
func (s *NetworkStore) AddEntity(entity common.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entityIndex(entity.ID) != -1 {
		return fmt.Errorf("entity %q: %w", entity.ID, ErrDuplicateID)
	}

	s.network.Entities = append(s.network.Entities, entity)
	s.notify(Event{
		Type:        EventEntityAdded,
		Description: fmt.Sprintf("Added entity %q", entity.Name),
		Entity:      &entity,
	})
	return nil
}

// EntityPatch is a partial update of an entity. Nil fields are left
// untouched.
type EntityPatch struct {
	Name          *string
	Type          *common.EntityType
	Description   *string
	Importance    *float64
	SourceType    *common.SourceType
	SourceSnippet *string
	Position      *common.Position
}

// UpdateEntity applies a partial patch to an existing entity and returns
// the updated record. It fails with ErrNotFound when the id is absent.
func (s *NetworkStore) UpdateEntity(id string, patch EntityPatch) (common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.entityIndex(id)
	if i == -1 {
		return common.Entity{}, fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}

	entity := &s.network.Entities[i]
	if patch.Name != nil {
		entity.Name = *patch.Name
	}
	if patch.Type != nil {
		entity.Type = *patch.Type
	}
	if patch.Description != nil {
		entity.Description = *patch.Description
	}
	if patch.Importance != nil {
		entity.Importance = *patch.Importance
	}
	if patch.SourceType != nil {
		entity.SourceType = *patch.SourceType
	}
	if patch.SourceSnippet != nil {
		entity.SourceSnippet = *patch.SourceSnippet
	}
	if patch.Position != nil {
		position := *patch.Position
		entity.Position = &position
	}

	updated := *entity
	s.notify(Event{
		Type:        EventEntityUpdated,
		Description: fmt.Sprintf("Modified entity %q", updated.Name),
		Entity:      &updated,
	})
	return updated, nil
}

// DeleteEntity removes an entity by id. Relationships referencing the
// entity are left in place and become orphaned; readers must tolerate
// them. It fails with ErrNotFound when the id is absent.
func (s *NetworkStore) DeleteEntity(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.entityIndex(id)
	if i == -1 {
		return fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}

	deleted := s.network.Entities[i]
	s.network.Entities = append(s.network.Entities[:i], s.network.Entities[i+1:]...)
	s.notify(Event{
		Type:        EventEntityDeleted,
		Description: fmt.Sprintf("Deleted entity %q", deleted.Name),
		Entity:      &deleted,
	})
	return nil
}

// AddRelationship appends a new relationship. It fails with ErrDuplicateID
// when the id is already taken. Endpoints are not checked against existing
// entities: unresolved endpoints are stored as orphans.
func (s *NetworkStore) AddRelationship(relationship common.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.relationshipIndex(relationship.ID) != -1 {
		return fmt.Errorf("relationship %q: %w", relationship.ID, ErrDuplicateID)
	}

	s.network.Relationships = append(s.network.Relationships, relationship)
	s.notify(Event{
		Type:         EventRelationshipAdded,
		Description:  fmt.Sprintf("Connected %s and %s", s.entityName(relationship.Source), s.entityName(relationship.Target)),
		Relationship: &relationship,
	})
	return nil
}

// RelationshipPatch is a partial update of a relationship. Nil fields are
// left untouched.
type RelationshipPatch struct {
	Source    *string
	Target    *string
	Type      *string
	Label     *string
	Status    *common.RelationshipStatus
	Strength  *float64
	StartDate *string
	EndDate   *string
}

// UpdateRelationship applies a partial patch to an existing relationship
// and returns the updated record. It fails with ErrNotFound when the id is
// absent.
func (s *NetworkStore) UpdateRelationship(id string, patch RelationshipPatch) (common.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.relationshipIndex(id)
	if i == -1 {
		return common.Relationship{}, fmt.Errorf("relationship %q: %w", id, ErrNotFound)
	}

	relationship := &s.network.Relationships[i]
	if patch.Source != nil {
		relationship.Source = *patch.Source
	}
	if patch.Target != nil {
		relationship.Target = *patch.Target
	}
	if patch.Type != nil {
		relationship.Type = *patch.Type
	}
	if patch.Label != nil {
		relationship.Label = *patch.Label
	}
	if patch.Status != nil {
		relationship.Status = *patch.Status
	}
	if patch.Strength != nil {
		relationship.Strength = *patch.Strength
	}
	if patch.StartDate != nil {
		relationship.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		relationship.EndDate = *patch.EndDate
	}

	updated := *relationship
	s.notify(Event{
		Type:         EventRelationshipUpdated,
		Description:  fmt.Sprintf("Modified relationship between %s and %s", s.entityName(updated.Source), s.entityName(updated.Target)),
		Relationship: &updated,
	})
	return updated, nil
}

// DeleteRelationship removes a relationship by id. It fails with
// ErrNotFound when the id is absent.
func (s *NetworkStore) DeleteRelationship(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.relationshipIndex(id)
	if i == -1 {
		return fmt.Errorf("relationship %q: %w", id, ErrNotFound)
	}

	deleted := s.network.Relationships[i]
	s.network.Relationships = append(s.network.Relationships[:i], s.network.Relationships[i+1:]...)
	s.notify(Event{
		Type:         EventRelationshipDeleted,
		Description:  fmt.Sprintf("Disconnected %s and %s", s.entityName(deleted.Source), s.entityName(deleted.Target)),
		Relationship: &deleted,
	})
	return nil
}

// SetTitle sets the network title.
func (s *NetworkStore) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.network.Title = title
	s.notify(Event{
		Type:        EventTitleSet,
		Description: fmt.Sprintf("Renamed network to %q", title),
		Title:       title,
	})
}

// SetDescription sets the network description.
func (s *NetworkStore) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.network.Description = description
	s.notify(Event{
		Type:        EventDescriptionSet,
		Description: "Updated network description",
	})
}

// SetContext sets the investigation context. The store does not interpret
// it.
func (s *NetworkStore) SetContext(ctx *common.InvestigationContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.network.Context = ctx
	s.notify(Event{
		Type:        EventContextSet,
		Description: "Updated investigation context",
		Context:     ctx,
	})
}

// Replace substitutes the whole network unconditionally. The description
// is surfaced to observers, so callers should say what the replacement
// was, e.g. "Imported 12 entities".
func (s *NetworkStore) Replace(network *common.Network, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.network = *network.Clone()
	if s.network.Entities == nil {
		s.network.Entities = []common.Entity{}
	}
	if s.network.Relationships == nil {
		s.network.Relationships = []common.Relationship{}
	}
	s.notify(Event{
		Type:        EventNetworkReplaced,
		Description: description,
	})
}

// Clear empties the network's entities and relationships and resets title,
// description and context.
func (s *NetworkStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.network = common.Network{
		Entities:      []common.Entity{},
		Relationships: []common.Relationship{},
	}
	s.notify(Event{
		Type:        EventNetworkCleared,
		Description: "Cleared network",
	})
}

// Restore replaces the network's entities and relationships with the given
// snapshot copies. Title, description and context are untouched. The
// emitted event has type EventNetworkRestored so that history observers
// can ignore it.
func (s *NetworkStore) Restore(entities []common.Entity, relationships []common.Relationship, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.network.Entities = common.CopyEntities(entities)
	s.network.Relationships = common.CopyRelationships(relationships)
	if s.network.Entities == nil {
		s.network.Entities = []common.Entity{}
	}
	if s.network.Relationships == nil {
		s.network.Relationships = []common.Relationship{}
	}
	s.notify(Event{
		Type:        EventNetworkRestored,
		Description: description,
	})
}

// entityName resolves an entity id to its name for event descriptions.
// Orphaned endpoints fall back to the raw id.
func (s *NetworkStore) entityName(id string) string {
	if i := s.entityIndex(id); i != -1 {
		return fmt.Sprintf("%q", s.network.Entities[i].Name)
	}
	return fmt.Sprintf("%q", id)
}

// Connection is a derived view of one relationship from the perspective of
// a single entity.
type Connection struct {
	Relationship common.Relationship `json:"relationship"`
	Other        *common.Entity      `json:"other,omitempty"`
	Direction    string              `json:"direction"`
	Orphaned     bool                `json:"orphaned"`
}

// Connections derives the connection list of an entity from the current
// graph. Relationships whose far endpoint does not resolve are included
// with Orphaned set. It fails with ErrNotFound when the entity is absent.
func (s *NetworkStore) Connections(entityID string) ([]Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entityIndex(entityID) == -1 {
		return nil, fmt.Errorf("entity %q: %w", entityID, ErrNotFound)
	}

	connections := []Connection{}
	for _, relationship := range s.network.Relationships {
		var otherID, direction string
		switch entityID {
		case relationship.Source:
			otherID, direction = relationship.Target, "outgoing"
		case relationship.Target:
			otherID, direction = relationship.Source, "incoming"
		default:
			continue
		}

		connection := Connection{
			Relationship: relationship,
			Direction:    direction,
		}
		if i := s.entityIndex(otherID); i != -1 {
			other := s.network.Entities[i]
			connection.Other = &other
		} else {
			connection.Orphaned = true
		}
		connections = append(connections, connection)
	}
	return connections, nil
}

// Orphans derives the relationships whose source or target does not
// resolve to any entity in the current graph.
func (s *NetworkStore) Orphans() []common.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{}, len(s.network.Entities))
	for _, entity := range s.network.Entities {
		ids[entity.ID] = struct{}{}
	}

	orphans := []common.Relationship{}
	for _, relationship := range s.network.Relationships {
		_, hasSource := ids[relationship.Source]
		_, hasTarget := ids[relationship.Target]
		if !hasSource || !hasTarget {
			orphans = append(orphans, relationship)
		}
	}
	return orphans
}

// FindEntityByName returns the first entity whose name matches
// case-insensitively.
func (s *NetworkStore) FindEntityByName(name string) (common.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(name)
	for _, entity := range s.network.Entities {
		if strings.ToLower(entity.Name) == needle {
			return entity, true
		}
	}
	return common.Entity{}, false
}

// GetEntity returns an entity by id.
func (s *NetworkStore) GetEntity(id string) (common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.entityIndex(id)
	if i == -1 {
		return common.Entity{}, fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}
	return s.network.Entities[i], nil
}
