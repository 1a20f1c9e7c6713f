package graph

import (
	"reflect"
	"testing"
)

func TestAssignLayout_Empty(t *testing.T) {
	if got := AssignLayout(nil); len(got) != 0 {
		t.Errorf("AssignLayout(nil) = %v, want empty", got)
	}
}

func TestAssignLayout_SinglePortCentered(t *testing.T) {
	layout := AssignLayout([]Port{{ID: "value", Direction: Source}})
	pl := layout["value"]
	if pl.Side != SideRight {
		t.Errorf("side = %s, want right", pl.Side)
	}
	if pl.HasOffset {
		t.Errorf("single port got offset %v, want none", pl.Offset)
	}
}

func TestAssignLayout_ThreeLeftPorts(t *testing.T) {
	ports := []Port{
		{ID: "a", Direction: Target},
		{ID: "b", Direction: Target},
		{ID: "c", Direction: Target},
	}
	layout := AssignLayout(ports)
	want := map[string]float64{"a": 25, "b": 50, "c": 75}
	for id, off := range want {
		pl := layout[id]
		if !pl.HasOffset || pl.Offset != off || pl.Side != SideLeft {
			t.Errorf("layout[%s] = %+v, want left at %v", id, pl, off)
		}
	}
}

func TestAssignLayout_ModelCall(t *testing.T) {
	layout := AssignLayout(ResolvePorts("m", KindModelCall, Content{}))
	tests := []struct {
		id   string
		want Placement
	}{
		{"system", Placement{Side: SideLeft, Offset: 100.0 / 3, HasOffset: true}},
		{"prompt", Placement{Side: SideLeft, Offset: 200.0 / 3, HasOffset: true}},
		{"response", Placement{Side: SideRight}},
	}
	for _, tt := range tests {
		if got := layout[tt.id]; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("layout[%s] = %+v, want %+v", tt.id, got, tt.want)
		}
	}
}

func TestAssignLayout_Stable(t *testing.T) {
	ports := ResolvePorts("t", KindText, Content{Text: "{{a}}{{b}}{{c}}{{d}}"})
	if !reflect.DeepEqual(AssignLayout(ports), AssignLayout(ports)) {
		t.Error("AssignLayout is not deterministic")
	}
}

func TestSideGroups(t *testing.T) {
	groups := SideGroups(ResolvePorts("f", KindFilter, Content{}))
	if !reflect.DeepEqual(groups[SideLeft], []string{"input"}) {
		t.Errorf("left = %v", groups[SideLeft])
	}
	if !reflect.DeepEqual(groups[SideRight], []string{"true", "false"}) {
		t.Errorf("right = %v", groups[SideRight])
	}
	if _, ok := groups[SideTop]; ok {
		t.Error("top should be absent")
	}
}
