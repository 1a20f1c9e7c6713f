// Package analysis answers "is this pipeline well formed?" for a snapshot.
//
// [Analyze] is the single implementation of the check: it counts nodes and
// edges and runs [graph.IsAcyclic]. Everything else in this package is
// plumbing around it:
//
//   - [Local] adapts Analyze to the [Analyzer] interface.
//   - [Runner] adds result caching and falls back to Analyze whenever a
//     remote Analyzer fails, logging the failure at warn level.
//
// The remote Analyzer lives in pkg/integrations/analyzer.
package analysis
