package graph_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

func ExampleResolvePorts() {
	ports := graph.ResolvePorts("t1", graph.KindText, graph.Content{Text: "{{a}} and {{b}} and {{a}}"})
	for _, p := range ports {
		fmt.Println(p.ID, p.Direction)
	}
	// Output:
	// t1-a target
	// t1-b target
	// output source
}

func ExampleAssignLayout() {
	ports := graph.ResolvePorts("f", graph.KindFilter, graph.Content{})
	layout := graph.AssignLayout(ports)
	for _, p := range ports {
		pl := layout[p.ID]
		fmt.Println(p.ID, pl.Side, pl.HasOffset, pl.Offset)
	}
	// Output:
	// input left false 0
	// true right true 33.333333333333336
	// false right true 66.66666666666667
}

func ExampleGraph_AddEdge() {
	g := graph.New()
	_ = g.AddNode("in", graph.KindInput, graph.Content{InputName: "question"})
	_ = g.AddNode("llm", graph.KindModelCall, graph.Content{})

	e, err := g.AddEdge(graph.Edge{Source: "in", SourceHandle: "value", Target: "llm", TargetHandle: "prompt"})
	fmt.Println(e.ID, err)

	_, err = g.AddEdge(graph.Edge{Source: "llm", SourceHandle: "system", Target: "in", TargetHandle: "value"})
	fmt.Println(errors.Is(err, graph.ErrInvalidEdge))
	// Output:
	// reactflow__edge-invalue-llmprompt <nil>
	// true
}

func ExampleFindCycle() {
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "a"},
	}
	fmt.Println(graph.IsAcyclic([]string{"a", "b", "c"}, edges))
	fmt.Println(graph.FindCycle([]string{"a", "b", "c"}, edges))
	// Output:
	// false
	// [a b c a]
}
