package graph

import "regexp"

// Direction tells whether a port emits data (source) or consumes it (target).
type Direction string

const (
	Source Direction = "source"
	Target Direction = "target"
)

// Side is the edge of the node box a port is attached to.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Port is a named attachment point on a node. Ports are derived from the
// node's kind and content by [ResolvePorts]; they are never edited directly.
type Port struct {
	ID        string    `json:"id"`
	Direction Direction `json:"type"`
	Label     string    `json:"label,omitempty"`
	Side      Side      `json:"position,omitempty"`
}

// EffectiveSide returns the explicit side if set, otherwise left for target
// ports and right for source ports.
func (p Port) EffectiveSide() Side {
	if p.Side != "" {
		return p.Side
	}
	if p.Direction == Target {
		return SideLeft
	}
	return SideRight
}

// TemplateOutputPort is the id of the single source port of a text node.
const TemplateOutputPort = "output"

var (
	inputPorts = []Port{
		{ID: "value", Direction: Source, Side: SideRight},
	}
	outputPorts = []Port{
		{ID: "value", Direction: Target, Side: SideLeft},
	}
	modelCallPorts = []Port{
		{ID: "system", Direction: Target, Side: SideLeft, Label: "System"},
		{ID: "prompt", Direction: Target, Side: SideLeft, Label: "Prompt"},
		{ID: "response", Direction: Source, Side: SideRight, Label: "Response"},
	}
	databasePorts = []Port{
		{ID: "query", Direction: Target, Side: SideLeft},
		{ID: "result", Direction: Source, Side: SideRight},
	}
	transformPorts = []Port{
		{ID: "input", Direction: Target, Side: SideLeft},
		{ID: "output", Direction: Source, Side: SideRight},
	}
	filterPorts = []Port{
		{ID: "input", Direction: Target, Side: SideLeft},
		{ID: "true", Direction: Source, Side: SideRight},
		{ID: "false", Direction: Source, Side: SideRight},
	}
	httpCallPorts = []Port{
		{ID: "params", Direction: Target, Side: SideLeft},
		{ID: "response", Direction: Source, Side: SideRight},
	}
)

// ResolvePorts computes the ordered ports a node exposes.
//
// Fixed-shape kinds return a constant list. Text nodes expose one target
// port per distinct {{ variable }} in their template, in order of first
// appearance, followed by the "output" source port. Variable port ids are
// "<nodeID>-<name>" so repeated resolutions produce identical lists.
//
// Notes and unknown kinds have no ports. ResolvePorts never fails: malformed
// templates simply contribute no variables.
func ResolvePorts(nodeID string, kind Kind, c Content) []Port {
	switch kind {
	case KindInput:
		return clonePorts(inputPorts)
	case KindOutput:
		return clonePorts(outputPorts)
	case KindModelCall:
		return clonePorts(modelCallPorts)
	case KindText:
		return templatePorts(nodeID, c.Text)
	case KindDatabase:
		return clonePorts(databasePorts)
	case KindTransform:
		return clonePorts(transformPorts)
	case KindFilter:
		return clonePorts(filterPorts)
	case KindHTTPCall:
		return clonePorts(httpCallPorts)
	case KindNote:
		return []Port{}
	}
	return []Port{}
}

func templatePorts(nodeID, text string) []Port {
	vars := TemplateVariables(text)
	ports := make([]Port, 0, len(vars)+1)
	for _, v := range vars {
		ports = append(ports, Port{
			ID:        nodeID + "-" + v,
			Direction: Target,
			Label:     v,
			Side:      SideLeft,
		})
	}
	return append(ports, Port{ID: TemplateOutputPort, Direction: Source, Side: SideRight})
}

var templateVarRe = regexp.MustCompile(`{{\s*([a-zA-Z_$][a-zA-Z0-9_$]*)\s*}}`)

// TemplateVariables returns the distinct variable names referenced as
// {{ name }} in text, in order of first occurrence. Unterminated or
// otherwise malformed references are ignored.
func TemplateVariables(text string) []string {
	matches := templateVarRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	vars := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		vars = append(vars, m[1])
	}
	return vars
}

func clonePorts(ports []Port) []Port {
	out := make([]Port, len(ports))
	copy(out, ports)
	return out
}

// findPort returns the port with the given id, if present.
func findPort(ports []Port, id string) (Port, bool) {
	for _, p := range ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}
