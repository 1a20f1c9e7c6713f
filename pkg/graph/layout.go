package graph

// Placement is the visual position of one port along its node's side.
type Placement struct {
	Side Side `json:"side"`

	// Offset is the position along the side as a percentage of its length.
	// It is only meaningful when HasOffset is true; a lone port on a side
	// is centered by the renderer.
	Offset    float64 `json:"offset,omitempty"`
	HasOffset bool    `json:"hasOffset"`
}

// Layout maps port ids to their placement.
type Layout map[string]Placement

// AssignLayout spreads ports evenly along each side of a node.
//
// Ports are grouped by their effective side, keeping list order within a
// group. A side holding a single port leaves it centered (no offset). A side
// holding n > 1 ports places the i-th at 100*i/(n+1) percent, so three
// left-hand ports sit at 25, 50 and 75.
//
// The result depends only on the input slice and is empty for zero ports.
func AssignLayout(ports []Port) Layout {
	layout := make(Layout, len(ports))
	for side, ids := range SideGroups(ports) {
		n := len(ids)
		for i, id := range ids {
			pl := Placement{Side: side}
			if n > 1 {
				pl.Offset = 100 * float64(i+1) / float64(n+1)
				pl.HasOffset = true
			}
			layout[id] = pl
		}
	}
	return layout
}

// SideGroups returns the port ids on each side in list order. Sides with no
// ports are omitted. It is used by renderers that lay out ports as rows.
func SideGroups(ports []Port) map[Side][]string {
	groups := make(map[Side][]string)
	for _, p := range ports {
		s := p.EffectiveSide()
		groups[s] = append(groups[s], p.ID)
	}
	return groups
}
