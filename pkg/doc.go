// Package pkg holds the pipegraph libraries.
//
// # Overview
//
// Pipegraph models the pipelines drawn in a visual node editor: typed nodes
// (inputs, outputs, model calls, text templates, databases, transforms,
// filters, HTTP calls and notes) wired port to port. The packages are:
//
//  1. [graph] - Node kinds, port resolution, port layout, the graph itself
//     and cycle detection
//  2. [analysis] - Node/edge counts and the DAG verdict, with an optional
//     remote analyzer and caching
//  3. [render] - Node-link diagrams in DOT, SVG, PDF and PNG
//  4. [io] - Reading and writing editor snapshots
//  5. [completion] - Text completion for model-call nodes
//  6. [cache], [integrations], [observability], [errors] - Supporting
//     infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Editor snapshot (JSON)
//	         ↓
//	    [io] package (decode)
//	         ↓
//	    [graph] package (ports, layout, invariants)
//	         ↓
//	    [analysis] package (counts + DAG check, cached)
//	         ↓
//	    API response / CLI output / [render] diagram
//
// # Quick Start
//
//	s, _ := io.ImportSnapshot("pipeline.json")
//	res := analysis.Analyze(s)
//	fmt.Println(res.NumNodes, res.NumEdges, res.IsDAG)
//
// [graph]: github.com/matzehuels/pipegraph/pkg/graph
// [analysis]: github.com/matzehuels/pipegraph/pkg/analysis
// [render]: github.com/matzehuels/pipegraph/pkg/render
// [io]: github.com/matzehuels/pipegraph/pkg/io
// [completion]: github.com/matzehuels/pipegraph/pkg/completion
// [cache]: github.com/matzehuels/pipegraph/pkg/cache
// [integrations]: github.com/matzehuels/pipegraph/pkg/integrations
// [observability]: github.com/matzehuels/pipegraph/pkg/observability
// [errors]: github.com/matzehuels/pipegraph/pkg/errors
package pkg
