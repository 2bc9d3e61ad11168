package store

import (
	"errors"
	"testing"

	"github.com/caseweave/backend/pkg/common"
)

func person(id, name string) common.Entity {
	return common.Entity{ID: id, Name: name, Type: common.EntityTypePerson}
}

func link(id, source, target string) common.Relationship {
	return common.Relationship{ID: id, Source: source, Target: target, Status: common.StatusConfirmed}
}

func TestAddEntityRejectsDuplicateID(t *testing.T) {
	s := NewNetworkStore()
	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatalf("AddEntity() error: %v", err)
	}
	err := s.AddEntity(person("e1", "John Roe"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("AddEntity() error = %v, want ErrDuplicateID", err)
	}
}

func TestUpdateEntityPatchesOnlyGivenFields(t *testing.T) {
	s := NewNetworkStore()
	entity := person("e1", "Jane Doe")
	entity.Description = "Original"
	if err := s.AddEntity(entity); err != nil {
		t.Fatalf("AddEntity() error: %v", err)
	}

	name := "Jane Smith"
	updated, err := s.UpdateEntity("e1", EntityPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateEntity() error: %v", err)
	}
	if updated.Name != "Jane Smith" {
		t.Errorf("Name = %q, want Jane Smith", updated.Name)
	}
	if updated.Description != "Original" {
		t.Errorf("Description = %q, want untouched", updated.Description)
	}
	if updated.Type != common.EntityTypePerson {
		t.Errorf("Type = %q, want untouched", updated.Type)
	}
}

func TestUpdateEntityNotFound(t *testing.T) {
	s := NewNetworkStore()
	_, err := s.UpdateEntity("ghost", EntityPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateEntity() error = %v, want ErrNotFound", err)
	}
}

// Deleting an entity keeps its relationships; they are reported as
// orphans instead.
func TestDeleteEntityLeavesRelationships(t *testing.T) {
	s := NewNetworkStore()
	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEntity(person("e2", "John Roe")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddRelationship(link("r1", "e1", "e2")); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteEntity("e2"); err != nil {
		t.Fatalf("DeleteEntity() error: %v", err)
	}

	snapshot := s.Snapshot()
	if len(snapshot.Relationships) != 1 {
		t.Fatalf("got %d relationships, want the dangling one kept", len(snapshot.Relationships))
	}

	orphans := s.Orphans()
	if len(orphans) != 1 || orphans[0].ID != "r1" {
		t.Fatalf("Orphans() = %v, want [r1]", orphans)
	}
}

func TestConnections(t *testing.T) {
	s := NewNetworkStore()
	for _, e := range []common.Entity{person("e1", "Jane Doe"), person("e2", "John Roe")} {
		if err := s.AddEntity(e); err != nil {
			t.Fatal(err)
		}
	}
	for _, r := range []common.Relationship{link("r1", "e1", "e2"), link("r2", "ghost", "e1")} {
		if err := s.AddRelationship(r); err != nil {
			t.Fatal(err)
		}
	}

	connections, err := s.Connections("e1")
	if err != nil {
		t.Fatalf("Connections() error: %v", err)
	}
	if len(connections) != 2 {
		t.Fatalf("got %d connections, want 2", len(connections))
	}

	byID := make(map[string]Connection)
	for _, c := range connections {
		byID[c.Relationship.ID] = c
	}

	outgoing := byID["r1"]
	if outgoing.Direction != "outgoing" || outgoing.Other == nil || outgoing.Other.ID != "e2" {
		t.Errorf("r1 = %+v, want outgoing to e2", outgoing)
	}
	incoming := byID["r2"]
	if incoming.Direction != "incoming" || !incoming.Orphaned {
		t.Errorf("r2 = %+v, want incoming orphan", incoming)
	}

	if _, err := s.Connections("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Connections(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := NewNetworkStore()
	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}

	snapshot := s.Snapshot()
	snapshot.Entities[0].Name = "Mutated"

	fresh := s.Snapshot()
	if fresh.Entities[0].Name != "Jane Doe" {
		t.Errorf("store state leaked through snapshot: %q", fresh.Entities[0].Name)
	}
}

func TestFindEntityByNameIsCaseInsensitive(t *testing.T) {
	s := NewNetworkStore()
	if err := s.AddEntity(person("e1", "Acme Corp")); err != nil {
		t.Fatal(err)
	}

	found, ok := s.FindEntityByName("ACME corp")
	if !ok || found.ID != "e1" {
		t.Fatalf("FindEntityByName() = %v/%v, want e1", found, ok)
	}
	if _, ok := s.FindEntityByName("ghost"); ok {
		t.Error("expected no match for unknown name")
	}
}

func TestObserverReceivesReplayableCopies(t *testing.T) {
	s := NewNetworkStore()

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEntity(person("e2", "John Roe")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntity("e1"); err != nil {
		t.Fatal(err)
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	// Each event carries the state after its mutation, independent of later
	// changes.
	if len(events[0].Entities) != 1 || len(events[1].Entities) != 2 || len(events[2].Entities) != 1 {
		t.Errorf("event entity counts = %d/%d/%d, want 1/2/1",
			len(events[0].Entities), len(events[1].Entities), len(events[2].Entities))
	}
	if events[0].Type != EventEntityAdded || events[2].Type != EventEntityDeleted {
		t.Errorf("event types = %q/%q", events[0].Type, events[2].Type)
	}
}

func TestRestoreEmitsRestoredEvent(t *testing.T) {
	s := NewNetworkStore()
	s.SetTitle("Case File")

	var types []EventType
	s.Subscribe(func(e Event) { types = append(types, e.Type) })

	s.Restore([]common.Entity{person("e1", "Jane Doe")}, nil, "rollback")

	if len(types) != 1 || types[0] != EventNetworkRestored {
		t.Fatalf("event types = %v, want [network_restored]", types)
	}

	snapshot := s.Snapshot()
	if snapshot.Title != "Case File" {
		t.Errorf("Title = %q, restore must not touch metadata", snapshot.Title)
	}
	if len(snapshot.Entities) != 1 {
		t.Errorf("got %d entities, want 1", len(snapshot.Entities))
	}
}

func TestClearResetsEverything(t *testing.T) {
	s := NewNetworkStore()
	s.SetTitle("Case File")
	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}

	s.Clear()

	snapshot := s.Snapshot()
	if snapshot.Title != "" || len(snapshot.Entities) != 0 || len(snapshot.Relationships) != 0 {
		t.Errorf("Clear() left state behind: %+v", snapshot)
	}
}
