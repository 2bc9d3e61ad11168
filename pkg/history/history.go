package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MaxEntries caps how many snapshots the tracker keeps. When a new entry
// pushes the sequence over the cap, the oldest entry is evicted.
const MaxEntries = 20

// ErrEntryNotFound is returned by Restore when the entry id does not exist,
// typically because it was already evicted.
var ErrEntryNotFound = errors.New("history entry not found")

// Action labels assigned to recorded transitions. Classification compares
// aggregate entity and relationship counts only, never a deep diff, and
// the first matching rule wins: an entity-count change always outranks a
// simultaneous relationship-count change.
const (
	ActionAdded        = "Added"
	ActionDeleted      = "Deleted"
	ActionConnected    = "Connected"
	ActionDisconnected = "Disconnected"
	ActionModified     = "Modified"
)

// Tracker observes network mutations and records bounded, most-recent-first
// snapshots that can be restored later.
//
// The state present when the tracker attaches is the baseline: it produces
// no entry, and the first recorded entry describes the first mutation after
// attachment. Restores update the baseline without recording, so stepping
// backwards does not itself grow history.
type Tracker struct {
	mu      sync.Mutex
	store   *store.NetworkStore
	entries []common.HistoryEntry

	lastEntityCount       int
	lastRelationshipCount int
}

// NewTracker creates a tracker attached to the given store. The store's
// current state becomes the baseline.
func NewTracker(networkStore *store.NetworkStore) *Tracker {
	baseline := networkStore.Snapshot()
	t := &Tracker{
		store:                 networkStore,
		lastEntityCount:       len(baseline.Entities),
		lastRelationshipCount: len(baseline.Relationships),
	}
	networkStore.Subscribe(t.observe)
	return t
}

func (t *Tracker) observe(event store.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entityCount := len(event.Entities)
	relationshipCount := len(event.Relationships)

	// A restore moves the graph to a recorded state; it shifts the
	// baseline but is not itself a recorded transition.
	if event.Type == store.EventNetworkRestored {
		t.lastEntityCount = entityCount
		t.lastRelationshipCount = relationshipCount
		return
	}

	action := classify(
		entityCount-t.lastEntityCount,
		relationshipCount-t.lastRelationshipCount,
	)
	t.lastEntityCount = entityCount
	t.lastRelationshipCount = relationshipCount

	id, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate history entry id", "err", err)
		return
	}

	entry := common.HistoryEntry{
		ID:                id,
		Action:            action,
		Description:       event.Description,
		Timestamp:         time.Now(),
		EntityCount:       entityCount,
		RelationshipCount: relationshipCount,
		Entities:          event.Entities,
		Relationships:     event.Relationships,
	}

	t.entries = append([]common.HistoryEntry{entry}, t.entries...)
	if len(t.entries) > MaxEntries {
		t.entries = t.entries[:MaxEntries]
	}
}

func classify(entityDelta, relationshipDelta int) string {
	switch {
	case entityDelta > 0:
		return ActionAdded
	case entityDelta < 0:
		return ActionDeleted
	case relationshipDelta > 0:
		return ActionConnected
	case relationshipDelta < 0:
		return ActionDisconnected
	default:
		return ActionModified
	}
}

// Entries returns the recorded entries, most recent first. The returned
// slice is a copy; snapshots are shared and must not be mutated by
// callers.
func (t *Tracker) Entries() []common.HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]common.HistoryEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Restore replaces the live network's entities and relationships with the
// snapshot recorded under entryID. Title, description and context stay as
// they are. It fails with ErrEntryNotFound when the entry does not exist
// anymore.
func (t *Tracker) Restore(entryID string) (common.HistoryEntry, error) {
	t.mu.Lock()
	var found *common.HistoryEntry
	for i := range t.entries {
		if t.entries[i].ID == entryID {
			found = &t.entries[i]
			break
		}
	}
	if found == nil {
		t.mu.Unlock()
		return common.HistoryEntry{}, fmt.Errorf("entry %q: %w", entryID, ErrEntryNotFound)
	}
	entry := *found
	t.mu.Unlock()

	// The store re-notifies observers with EventNetworkRestored, which
	// observe treats as a baseline shift. The store lock must not be taken
	// while holding t.mu.
	t.store.Restore(entry.Entities, entry.Relationships, fmt.Sprintf("Restored to %q", entry.Description))
	return entry, nil
}
