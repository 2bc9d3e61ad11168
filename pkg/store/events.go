package store

import "github.com/caseweave/backend/pkg/common"

// EventType identifies a network mutation.
type EventType string

const (
	EventEntityAdded         EventType = "entity_added"
	EventEntityUpdated       EventType = "entity_updated"
	EventEntityDeleted       EventType = "entity_deleted"
	EventRelationshipAdded   EventType = "relationship_added"
	EventRelationshipUpdated EventType = "relationship_updated"
	EventRelationshipDeleted EventType = "relationship_deleted"
	EventTitleSet            EventType = "title_set"
	EventDescriptionSet      EventType = "description_set"
	EventContextSet          EventType = "context_set"
	EventNetworkCleared      EventType = "network_cleared"
	EventNetworkReplaced     EventType = "network_replaced"
	EventNetworkRestored     EventType = "network_restored"
)

// Event describes one completed mutation. It carries the mutation payload
// and an independent post-mutation snapshot of the graph, so an observer
// can replay or record the mutation without reading the store back.
type Event struct {
	Type        EventType
	Description string

	// Payload of the mutation, set depending on Type.
	Entity       *common.Entity
	Relationship *common.Relationship
	Title        string
	Context      *common.InvestigationContext

	// Deep copies of the graph after the mutation.
	Entities      []common.Entity
	Relationships []common.Relationship
}

// Observer receives mutation events. Observers are invoked synchronously,
// in subscription order, after each mutation completes; they must not call
// back into the store.
type Observer func(Event)
