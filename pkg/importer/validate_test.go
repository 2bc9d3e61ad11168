package importer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/caseweave/backend/pkg/common"
)

func decode(t *testing.T, payload string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return raw
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		wantValid     bool
		wantErrors    int
		wantWarnings  int
		wantEntities  int
		wantRelations int
	}{
		{
			name:      "not an object",
			payload:   `[1, 2, 3]`,
			wantValid: false, wantErrors: 1,
		},
		{
			name:      "missing arrays",
			payload:   `{"title": "Case"}`,
			wantValid: false, wantErrors: 2,
		},
		{
			name:      "empty network",
			payload:   `{"entities": [], "relationships": []}`,
			wantValid: true,
		},
		{
			name: "valid network",
			payload: `{
				"entities": [
					{"id": "e1", "name": "Acme Corp", "type": "organization"},
					{"id": "e2", "name": "Jane Doe", "type": "person"}
				],
				"relationships": [
					{"id": "r1", "source": "e1", "target": "e2", "type": "employs"}
				]
			}`,
			wantValid: true, wantEntities: 2, wantRelations: 1,
		},
		{
			name: "entity without id",
			payload: `{
				"entities": [{"name": "Acme Corp"}],
				"relationships": []
			}`,
			wantValid: false, wantErrors: 1, wantWarnings: 1,
			wantEntities: 1,
		},
		{
			name: "entity without name",
			payload: `{
				"entities": [{"id": "e1", "type": "person"}],
				"relationships": []
			}`,
			wantValid: false, wantErrors: 1,
			wantEntities: 1,
		},
		{
			name: "duplicate entity id is a warning",
			payload: `{
				"entities": [
					{"id": "e1", "name": "Acme Corp", "type": "organization"},
					{"id": "e1", "name": "Acme Corporation", "type": "organization"}
				],
				"relationships": []
			}`,
			wantValid: true, wantWarnings: 1, wantEntities: 2,
		},
		{
			name: "unknown type is a warning",
			payload: `{
				"entities": [{"id": "e1", "name": "Acme Corp", "type": "spaceship"}],
				"relationships": []
			}`,
			wantValid: true, wantWarnings: 1, wantEntities: 1,
		},
		{
			name: "relationship without source",
			payload: `{
				"entities": [{"id": "e1", "name": "Acme Corp", "type": "organization"}],
				"relationships": [{"id": "r1", "target": "e1"}]
			}`,
			wantValid: false, wantErrors: 1, wantRelations: 1,
			wantEntities: 1,
		},
		{
			name: "unresolved endpoint is a warning",
			payload: `{
				"entities": [{"id": "e1", "name": "Acme Corp", "type": "organization"}],
				"relationships": [{"id": "r1", "source": "e1", "target": "ghost"}]
			}`,
			wantValid: true, wantWarnings: 1,
			wantEntities: 1, wantRelations: 1,
		},
		{
			name: "relationship without id is a warning",
			payload: `{
				"entities": [
					{"id": "e1", "name": "Acme Corp", "type": "organization"},
					{"id": "e2", "name": "Jane Doe", "type": "person"}
				],
				"relationships": [{"source": "e1", "target": "e2"}]
			}`,
			wantValid: true, wantWarnings: 1,
			wantEntities: 2, wantRelations: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(decode(t, tt.payload))
			if got.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", got.IsValid, tt.wantValid, got.Errors)
			}
			if len(got.Errors) != tt.wantErrors {
				t.Errorf("len(Errors) = %d, want %d: %v", len(got.Errors), tt.wantErrors, got.Errors)
			}
			if len(got.Warnings) != tt.wantWarnings {
				t.Errorf("len(Warnings) = %d, want %d: %v", len(got.Warnings), tt.wantWarnings, got.Warnings)
			}
			if got.Stats.EntityCount != tt.wantEntities {
				t.Errorf("Stats.EntityCount = %d, want %d", got.Stats.EntityCount, tt.wantEntities)
			}
			if got.Stats.RelationshipCount != tt.wantRelations {
				t.Errorf("Stats.RelationshipCount = %d, want %d", got.Stats.RelationshipCount, tt.wantRelations)
			}
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	raw := decode(t, `{
		"entities": [
			{"type": "person"},
			{"name": ""}
		],
		"relationships": [
			{"id": "r1"},
			{"id": "r2", "source": 42, "target": "ghost"}
		]
	}`)

	got := Validate(raw)
	if got.IsValid {
		t.Fatal("expected invalid result")
	}
	// Two name/id problems per entity, source+target per relationship.
	if len(got.Errors) < 4 {
		t.Errorf("expected at least 4 errors, got %d: %v", len(got.Errors), got.Errors)
	}
}

func TestValidateTypeHistogram(t *testing.T) {
	raw := decode(t, `{
		"entities": [
			{"id": "e1", "name": "Jane Doe", "type": "person"},
			{"id": "e2", "name": "John Roe", "type": "person"},
			{"id": "e3", "name": "Acme Corp", "type": "organization"},
			{"id": "e4", "name": "Mystery", "type": "spaceship"}
		],
		"relationships": []
	}`)

	got := Validate(raw)
	if got.Stats.TypeHistogram[common.EntityTypePerson] != 2 {
		t.Errorf("person count = %d, want 2", got.Stats.TypeHistogram[common.EntityTypePerson])
	}
	if got.Stats.TypeHistogram[common.EntityTypeOrganization] != 1 {
		t.Errorf("organization count = %d, want 1", got.Stats.TypeHistogram[common.EntityTypeOrganization])
	}
	if got.Stats.TypeHistogram[common.EntityTypeUnknown] != 1 {
		t.Errorf("unknown count = %d, want 1", got.Stats.TypeHistogram[common.EntityTypeUnknown])
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	imported, result := Normalize(decode(t, `{"entities": [{"name": "No ID"}], "relationships": []}`))
	if imported != nil {
		t.Fatal("expected nil network for invalid payload")
	}
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	imported, result := Normalize(decode(t, `{
		"title": "Shell Companies",
		"entities": [
			{"id": "e1", "name": "Acme Corp", "type": "spaceship"},
			{"id": "e2", "name": "Jane Doe", "type": "person", "importance": 0.8}
		],
		"relationships": [
			{"source": "e1", "target": "e2", "status": "imaginary"}
		]
	}`))
	if imported == nil {
		t.Fatalf("expected normalized network, got errors: %v", result.Errors)
	}

	if imported.Title == nil || *imported.Title != "Shell Companies" {
		t.Errorf("Title = %v, want Shell Companies", imported.Title)
	}
	if imported.Description != nil {
		t.Errorf("Description = %v, want nil", imported.Description)
	}

	if imported.Entities[0].Type != common.EntityTypeUnknown {
		t.Errorf("unknown type coerced to %q, want %q", imported.Entities[0].Type, common.EntityTypeUnknown)
	}
	if imported.Entities[0].SourceType != common.SourceTypeManual {
		t.Errorf("SourceType = %q, want %q", imported.Entities[0].SourceType, common.SourceTypeManual)
	}
	if imported.Entities[0].CreatedAt == nil {
		t.Error("CreatedAt not stamped")
	}

	if imported.Entities[1].Importance != 0.8 {
		t.Errorf("Importance = %v, want 0.8", imported.Entities[1].Importance)
	}

	rel := imported.Relationships[0]
	if !strings.HasPrefix(rel.ID, "imported-rel-") {
		t.Errorf("fallback relationship id = %q, want imported-rel- prefix", rel.ID)
	}
	if rel.Status != common.StatusConfirmed {
		t.Errorf("unknown status coerced to %q, want %q", rel.Status, common.StatusConfirmed)
	}
}

func TestNormalizeIsIdempotentOnShape(t *testing.T) {
	payload := `{
		"entities": [
			{"id": "e1", "name": "Acme Corp", "type": "organization", "description": "Holding company"}
		],
		"relationships": []
	}`

	first, _ := Normalize(decode(t, payload))
	second, _ := Normalize(decode(t, payload))
	if first == nil || second == nil {
		t.Fatal("expected both normalizations to succeed")
	}

	if first.Entities[0].ID != second.Entities[0].ID {
		t.Errorf("stable ids differ: %q vs %q", first.Entities[0].ID, second.Entities[0].ID)
	}
	if first.Entities[0].Name != second.Entities[0].Name ||
		first.Entities[0].Type != second.Entities[0].Type ||
		first.Entities[0].Description != second.Entities[0].Description {
		t.Error("normalized fields differ between runs")
	}
}
