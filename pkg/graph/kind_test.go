package graph

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"input", KindInput, false},
		{"customInput", KindInput, false},
		{"customOutput", KindOutput, false},
		{"LLM", KindModelCall, false},
		{"model-call", KindModelCall, false},
		{"template-text", KindText, false},
		{" text ", KindText, false},
		{"http-call", KindHTTPCall, false},
		{"api", KindHTTPCall, false},
		{"note", KindNote, false},
		{"", "", true},
		{"widget", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownKind) {
					t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseKind(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestKind_UnmarshalJSON(t *testing.T) {
	var spec NodeSpec
	if err := json.Unmarshal([]byte(`{"id":"1","type":"customInput","data":{"inputName":"q","extra":1}}`), &spec); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if spec.Type != KindInput || spec.Data.InputName != "q" {
		t.Errorf("spec = %+v", spec)
	}

	var k Kind
	if err := json.Unmarshal([]byte(`"somethingElse"`), &k); err != nil {
		t.Fatalf("Unmarshal() unknown kind error: %v", err)
	}
	if k != "somethingElse" || k.Valid() {
		t.Errorf("unknown kind = %q (valid=%v), want kept verbatim and invalid", k, k.Valid())
	}
}

func TestDefaultContent(t *testing.T) {
	in := DefaultContent("input-3", KindInput, Content{})
	if in.InputName != "input_3" || in.InputType != ValueText {
		t.Errorf("input defaults = %+v", in)
	}
	out := DefaultContent("customOutput-2", KindOutput, Content{OutputType: ValueImage})
	if out.OutputName != "output_2" || out.OutputType != ValueImage {
		t.Errorf("output defaults = %+v", out)
	}
	text := DefaultContent("text-1", KindText, Content{})
	if text.Text != DefaultTemplate {
		t.Errorf("text default = %q", text.Text)
	}
	kept := DefaultContent("text-1", KindText, Content{Text: "hi"})
	if kept.Text != "hi" {
		t.Errorf("existing text overwritten: %q", kept.Text)
	}
	api := DefaultContent("api-1", KindHTTPCall, Content{})
	if api.Method != "GET" {
		t.Errorf("api method = %q", api.Method)
	}
}

func TestKind_Title(t *testing.T) {
	for _, k := range Kinds {
		if k.Title() == "" {
			t.Errorf("%s has no title", k)
		}
	}
	if KindModelCall.Title() != "LLM" {
		t.Errorf("Title() = %q, want LLM", KindModelCall.Title())
	}
	if Kind("x").Title() != "x" {
		t.Errorf("unknown Title() = %q, want x", Kind("x").Title())
	}
}
