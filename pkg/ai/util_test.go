package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type record struct {
		Name string `json:"name"`
		Type string `json:"type,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  record
	}{
		{
			name:  "valid json object",
			input: `{"name":"Acme Corp"}`,
			want:  record{Name: "Acme Corp"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{name: 'Acme Corp'}`,
			want:  record{Name: "Acme Corp"},
		},
		{
			name:  "trailing comma",
			input: `{"name":"Acme Corp",}`,
			want:  record{Name: "Acme Corp"},
		},
		{
			name:  "missing endbracket",
			input: `{"name":"Acme Corp`,
			want:  record{Name: "Acme Corp"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{name: 'Acme Corp'}"`,
			want:  record{Name: "Acme Corp"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"name\": \"Acme Corp\"\n}\n",
			want:  record{Name: "Acme Corp"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got record
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Name != tc.want.Name || got.Type != tc.want.Type {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_StringifiedNetwork(t *testing.T) {
	type payload struct {
		Entities []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"entities"`
	}

	input := `"{ \"entities\": [ { \"name\": \"Jane Doe\", \"type\": \"person\" }, { \"name\": \"Acme Corp\", \"type\": \"organization\" } ] }"`
	var got payload
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got.Entities) != 2 || got.Entities[0].Name != "Jane Doe" || got.Entities[1].Type != "organization" {
		t.Fatalf("UnmarshalFlexible() got = %+v", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type record struct {
		Name string `json:"name"`
	}

	var got record
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}
