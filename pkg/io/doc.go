// Package io reads and writes pipeline snapshots as JSON files.
//
// The format is the editor's own export:
//
//	{
//	  "nodes": [
//	    {"id": "1", "type": "customInput", "data": {"inputName": "userInput"},
//	     "position": {"x": 100, "y": 100}},
//	    {"id": "2", "type": "llm", "data": {}}
//	  ],
//	  "edges": [
//	    {"id": "e1-2", "source": "1", "sourceHandle": "value",
//	     "target": "2", "targetHandle": "system"}
//	  ]
//	}
//
// Node types accept the canonical kind names and the editor's aliases (see
// graph.ParseKind). Ports are never read from the file; they are resolved
// from each node's type and data.
//
// Two read modes exist. [ReadSnapshot] and [ImportSnapshot] keep the input
// at face value for analysis, including dangling edges and unknown types.
// [ReadGraph] and [ImportGraph] build a [graph.Graph] and fail on the first
// invariant violation.
//
//	s, err := io.ImportSnapshot("pipeline.json")
//	report := analysis.Analyze(s)
//
// Writes go through [WriteSnapshot] or [ExportSnapshot]; the latter
// replaces the target file atomically.
package io
