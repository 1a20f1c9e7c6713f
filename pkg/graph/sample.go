package graph

// SamplePipeline returns the demo pipeline the editor opens with: an input
// feeding the system prompt of a model call, an output and a free-standing
// template. Analyzing it yields 4 nodes, 1 edge and a DAG.
func SamplePipeline() Snapshot {
	return Snapshot{
		Nodes: []NodeSpec{
			{ID: "1", Type: KindInput, Data: Content{InputName: "userInput", InputType: ValueText}, Position: &Position{X: 100, Y: 100}},
			{ID: "2", Type: KindModelCall, Data: Content{}, Position: &Position{X: 400, Y: 100}},
			{ID: "3", Type: KindOutput, Data: Content{OutputName: "finalResult", OutputType: ValueText}, Position: &Position{X: 700, Y: 100}},
			{ID: "4", Type: KindText, Data: Content{Text: "Translate this: {{ input }}"}, Position: &Position{X: 400, Y: 300}},
		},
		Edges: []Edge{
			{ID: "e1-2", Source: "1", SourceHandle: "value", Target: "2", TargetHandle: "system"},
		},
	}
}
