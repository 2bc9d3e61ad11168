package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/caseweave/backend/pkg/common"
)

func TestSplitIntoSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: []string(nil),
		},
		{
			name: "single sentence",
			text: "The shell company was registered in 2019.",
			want: []string{"The shell company was registered in 2019."},
		},
		{
			name: "multiple sentences",
			text: "Jane founded Acme. The filings were late! Who signed them?",
			want: []string{
				"Jane founded Acme.",
				"The filings were late!",
				"Who signed them?",
			},
		},
		{
			name: "blank lines flush segments",
			text: "First paragraph\n\nSecond paragraph",
			want: []string{"First paragraph", "Second paragraph"},
		},
		{
			name: "multi-line sentence",
			text: "A sentence that\nspans two lines.",
			want: []string{"A sentence that spans two lines."},
		},
		{
			name: "decimal numbers are not boundaries",
			text: "The fee was 3.5 percent of revenue.",
			want: []string{"The fee was 3.5 percent of revenue."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitIntoSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitIntoSentences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToImportedDeduplicatesByName(t *testing.T) {
	s := NewService(NewServiceParams{})

	res := networkResponse{
		Entities: []responseEntity{
			{Name: "Acme Corp", Type: "organization", Description: "Holding company"},
			{Name: "acme corp", Type: "organization", Description: "Duplicate mention"},
			{Name: "Jane Doe", Type: "person"},
		},
		Relationships: []responseRelationship{
			{Source: "Jane Doe", Target: "Acme Corp", Type: "owns", Status: "confirmed"},
		},
	}

	imported, err := s.toImported(res, common.SourceTypeDocument)
	if err != nil {
		t.Fatalf("toImported() error: %v", err)
	}

	if len(imported.Entities) != 2 {
		t.Fatalf("got %d entities, want 2 after name dedupe", len(imported.Entities))
	}
	if imported.Entities[0].Description != "Holding company" {
		t.Errorf("first occurrence lost: %q", imported.Entities[0].Description)
	}
	for _, e := range imported.Entities {
		if e.SourceType != common.SourceTypeDocument {
			t.Errorf("SourceType = %q, want %q", e.SourceType, common.SourceTypeDocument)
		}
		if e.CreatedAt == nil {
			t.Error("CreatedAt not stamped")
		}
	}

	if len(imported.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(imported.Relationships))
	}
	rel := imported.Relationships[0]
	if rel.Source == "" || rel.Target == "" || rel.Source == "Jane Doe" {
		t.Errorf("endpoints not resolved to ids: %+v", rel)
	}
}

func TestToImportedDropsUnresolvableRelationships(t *testing.T) {
	s := NewService(NewServiceParams{})

	res := networkResponse{
		Entities: []responseEntity{
			{Name: "Jane Doe", Type: "person"},
		},
		Relationships: []responseRelationship{
			{Source: "Jane Doe", Target: "Ghost Entity", Type: "knows", Status: "confirmed"},
		},
	}

	imported, err := s.toImported(res, common.SourceTypeWeb)
	if err != nil {
		t.Fatalf("toImported() error: %v", err)
	}
	if len(imported.Relationships) != 0 {
		t.Errorf("got %d relationships, want dangling one dropped", len(imported.Relationships))
	}
}

func TestToImportedCoercesTypesAndStatus(t *testing.T) {
	s := NewService(NewServiceParams{})

	res := networkResponse{
		Entities: []responseEntity{
			{Name: "Mystery", Type: "spaceship"},
			{Name: "Jane Doe", Type: "person"},
		},
		Relationships: []responseRelationship{
			{Source: "Mystery", Target: "Jane Doe", Type: "involves", Status: "imaginary"},
		},
	}

	imported, err := s.toImported(res, common.SourceTypeEnrichment)
	if err != nil {
		t.Fatalf("toImported() error: %v", err)
	}

	if imported.Entities[0].Type != common.EntityTypeUnknown {
		t.Errorf("Type = %q, want %q", imported.Entities[0].Type, common.EntityTypeUnknown)
	}
	if imported.Relationships[0].Status != common.StatusConfirmed {
		t.Errorf("Status = %q, want %q", imported.Relationships[0].Status, common.StatusConfirmed)
	}
}

func TestToImportedSkipsBlankNames(t *testing.T) {
	s := NewService(NewServiceParams{})

	res := networkResponse{
		Entities: []responseEntity{
			{Name: "   ", Type: "person"},
			{Name: "Jane Doe", Type: "person"},
		},
	}

	imported, err := s.toImported(res, common.SourceTypeDocument)
	if err != nil {
		t.Fatalf("toImported() error: %v", err)
	}
	if len(imported.Entities) != 1 || imported.Entities[0].Name != "Jane Doe" {
		t.Fatalf("entities = %+v, want only Jane Doe", imported.Entities)
	}
}

func TestEntityTypeList(t *testing.T) {
	list := entityTypeList()
	for _, typ := range common.EntityTypes {
		if !strings.Contains(list, string(typ)) {
			t.Errorf("entityTypeList() missing %q", typ)
		}
	}
}
