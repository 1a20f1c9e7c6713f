package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies the behavior of a node: which content fields it reads and
// which ports it exposes.
type Kind string

// Node kinds. The string values match the type names emitted by the editor.
const (
	KindInput     Kind = "input"
	KindOutput    Kind = "output"
	KindModelCall Kind = "llm"
	KindText      Kind = "text"
	KindDatabase  Kind = "database"
	KindTransform Kind = "transform"
	KindFilter    Kind = "filter"
	KindHTTPCall  Kind = "api"
	KindNote      Kind = "note"
)

// Kinds lists every supported kind in palette order.
var Kinds = []Kind{
	KindInput,
	KindOutput,
	KindModelCall,
	KindText,
	KindDatabase,
	KindTransform,
	KindFilter,
	KindHTTPCall,
	KindNote,
}

// kindAliases maps alternate spellings to their canonical kind.
var kindAliases = map[string]Kind{
	"custominput":   KindInput,
	"customoutput":  KindOutput,
	"model-call":    KindModelCall,
	"modelcall":     KindModelCall,
	"template-text": KindText,
	"template":      KindText,
	"http-call":     KindHTTPCall,
	"http":          KindHTTPCall,
}

// ParseKind resolves a kind name, accepting the canonical names as well as
// the aliases used by older editor snapshots ("customInput", "model-call", ...).
// Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Title returns the display name used for the kind in listings.
func (k Kind) Title() string {
	switch k {
	case KindInput:
		return "Input"
	case KindOutput:
		return "Output"
	case KindModelCall:
		return "LLM"
	case KindText:
		return "Text"
	case KindDatabase:
		return "Database"
	case KindTransform:
		return "Transform"
	case KindFilter:
		return "Filter"
	case KindHTTPCall:
		return "API Call"
	case KindNote:
		return "Note"
	}
	return string(k)
}

// UnmarshalJSON accepts any spelling understood by [ParseKind]. Unknown
// names are kept verbatim so that snapshots with foreign node types can
// still be counted during analysis.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, err := ParseKind(s); err == nil {
		*k = parsed
		return nil
	}
	*k = Kind(s)
	return nil
}

// Content is the kind-specific payload of a node. Only the fields relevant
// to the node's kind are read; the rest are ignored.
type Content struct {
	// Label is an optional display label for any kind.
	Label string `json:"label,omitempty"`

	// Text is the template of a text node or the body of a note.
	Text string `json:"text,omitempty"`

	// InputName and InputType describe an input node's field ("Text" or "File").
	InputName string `json:"inputName,omitempty"`
	InputType string `json:"inputType,omitempty"`

	// OutputName and OutputType describe an output node's field ("Text" or "Image").
	OutputName string `json:"outputName,omitempty"`
	OutputType string `json:"outputType,omitempty"`

	// Prompt is the default prompt of a model-call node.
	Prompt string `json:"prompt,omitempty"`

	// URL and Method configure an HTTP-call node.
	URL    string `json:"url,omitempty"`
	Method string `json:"method,omitempty"`
}

// Value types accepted by input and output nodes.
const (
	ValueText  = "Text"
	ValueFile  = "File"
	ValueImage = "Image"
)

// DefaultTemplate is the text a new template node starts with.
const DefaultTemplate = "{{input}}"

// DefaultContent fills in the fields the editor would show for a fresh node
// of the given kind. Fields that are already set are left untouched.
func DefaultContent(id string, kind Kind, c Content) Content {
	switch kind {
	case KindInput:
		if c.InputName == "" {
			c.InputName = derivedFieldName(id, "input")
		}
		if c.InputType == "" {
			c.InputType = ValueText
		}
	case KindOutput:
		if c.OutputName == "" {
			c.OutputName = derivedFieldName(id, "output")
		}
		if c.OutputType == "" {
			c.OutputType = ValueText
		}
	case KindText:
		if c.Text == "" {
			c.Text = DefaultTemplate
		}
	case KindHTTPCall:
		if c.Method == "" {
			c.Method = "GET"
		}
	}
	return c
}

// derivedFieldName turns "input-3" or "customInput-3" into "input_3".
func derivedFieldName(id, prefix string) string {
	if i := strings.LastIndexByte(id, '-'); i >= 0 && i < len(id)-1 {
		return prefix + "_" + id[i+1:]
	}
	return prefix + "_" + id
}
