package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/caseweave/backend/pkg/common"
	"github.com/caseweave/backend/pkg/store"
)

func person(id, name string) common.Entity {
	return common.Entity{ID: id, Name: name, Type: common.EntityTypePerson}
}

func link(id, source, target string) common.Relationship {
	return common.Relationship{ID: id, Source: source, Target: target, Status: common.StatusConfirmed}
}

func TestBaselineProducesNoEntry(t *testing.T) {
	s := store.NewNetworkStore()
	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}

	tracker := NewTracker(s)
	if entries := tracker.Entries(); len(entries) != 0 {
		t.Fatalf("got %d entries at attach time, want 0", len(entries))
	}

	if err := s.AddEntity(person("e2", "John Roe")); err != nil {
		t.Fatal(err)
	}
	entries := tracker.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries after first mutation, want 1", len(entries))
	}
	if entries[0].EntityCount != 2 {
		t.Errorf("EntityCount = %d, want 2", entries[0].EntityCount)
	}
}

func TestClassification(t *testing.T) {
	s := store.NewNetworkStore()
	tracker := NewTracker(s)

	steps := []struct {
		mutate func() error
		want   string
	}{
		{func() error { return s.AddEntity(person("e1", "Jane Doe")) }, ActionAdded},
		{func() error { return s.AddEntity(person("e2", "John Roe")) }, ActionAdded},
		{func() error { return s.AddRelationship(link("r1", "e1", "e2")) }, ActionConnected},
		{func() error { _, err := s.UpdateEntity("e1", store.EntityPatch{}); return err }, ActionModified},
		{func() error { return s.DeleteRelationship("r1") }, ActionDisconnected},
		{func() error { return s.DeleteEntity("e2") }, ActionDeleted},
	}

	for i, step := range steps {
		if err := step.mutate(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		entries := tracker.Entries()
		if entries[0].Action != step.want {
			t.Errorf("step %d: action = %q, want %q", i, entries[0].Action, step.want)
		}
	}
}

// An entity-count change outranks a simultaneous relationship-count change.
func TestClassificationEntityDeltaWins(t *testing.T) {
	s := store.NewNetworkStore()
	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}
	tracker := NewTracker(s)

	network := &common.Network{
		Entities:      []common.Entity{person("e1", "Jane Doe"), person("e2", "John Roe")},
		Relationships: []common.Relationship{link("r1", "e1", "e2")},
	}
	s.Replace(network, "bulk change")

	entries := tracker.Entries()
	if entries[0].Action != ActionAdded {
		t.Errorf("action = %q, want %q", entries[0].Action, ActionAdded)
	}
}

func TestEntriesAreCappedMostRecentFirst(t *testing.T) {
	s := store.NewNetworkStore()
	tracker := NewTracker(s)

	for i := 0; i < MaxEntries+1; i++ {
		id := fmt.Sprintf("e%d", i)
		if err := s.AddEntity(person(id, "Entity "+id)); err != nil {
			t.Fatal(err)
		}
	}

	entries := tracker.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("got %d entries, want %d", len(entries), MaxEntries)
	}
	// The newest entry reflects all mutations, the oldest recorded one no
	// longer includes the very first.
	if entries[0].EntityCount != MaxEntries+1 {
		t.Errorf("newest EntityCount = %d, want %d", entries[0].EntityCount, MaxEntries+1)
	}
	if entries[len(entries)-1].EntityCount != 2 {
		t.Errorf("oldest EntityCount = %d, want 2 after eviction", entries[len(entries)-1].EntityCount)
	}
}

func TestRestoreRollsBackWithoutRecording(t *testing.T) {
	s := store.NewNetworkStore()
	tracker := NewTracker(s)

	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEntity(person("e2", "John Roe")); err != nil {
		t.Fatal(err)
	}

	entries := tracker.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	target := entries[1] // state after the first add

	restored, err := tracker.Restore(target.ID)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if restored.ID != target.ID {
		t.Errorf("restored entry id = %q, want %q", restored.ID, target.ID)
	}

	snapshot := s.Snapshot()
	if len(snapshot.Entities) != 1 || snapshot.Entities[0].ID != "e1" {
		t.Fatalf("snapshot = %+v, want only e1", snapshot.Entities)
	}

	// The restore itself is not a recorded transition.
	if got := tracker.Entries(); len(got) != 2 {
		t.Errorf("got %d entries after restore, want 2", len(got))
	}

	// The next mutation is classified against the restored state.
	if err := s.AddEntity(person("e3", "New Arrival")); err != nil {
		t.Fatal(err)
	}
	latest := tracker.Entries()[0]
	if latest.Action != ActionAdded || latest.EntityCount != 2 {
		t.Errorf("entry after restore = %q/%d, want Added/2", latest.Action, latest.EntityCount)
	}
}

func TestRestoreUnknownEntry(t *testing.T) {
	s := store.NewNetworkStore()
	tracker := NewTracker(s)

	_, err := tracker.Restore("ghost")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Restore() error = %v, want ErrEntryNotFound", err)
	}
}

func TestSnapshotsSurviveLaterMutations(t *testing.T) {
	s := store.NewNetworkStore()
	tracker := NewTracker(s)

	if err := s.AddEntity(person("e1", "Jane Doe")); err != nil {
		t.Fatal(err)
	}
	first := tracker.Entries()[0]

	name := "Renamed"
	if _, err := s.UpdateEntity("e1", store.EntityPatch{Name: &name}); err != nil {
		t.Fatal(err)
	}

	if _, err := tracker.Restore(first.ID); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	snapshot := s.Snapshot()
	if snapshot.Entities[0].Name != "Jane Doe" {
		t.Errorf("restored name = %q, want the recorded state", snapshot.Entities[0].Name)
	}
}
