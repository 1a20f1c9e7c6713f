// Package analyzer is a client for a remote pipeline analysis service.
//
// The service receives an editor snapshot at POST /pipelines/parse and
// answers {"num_nodes": n, "num_edges": m, "is_dag": b}. Calls are retried
// once on network errors and pass through a circuit breaker
// (github.com/sony/gobreaker) that opens after consecutive failures, so a
// dead service costs nothing until the breaker probes it again.
//
// The client never substitutes a result itself. Wrap it in an
// [analysis.Runner] to get the local fallback:
//
//	remote := analyzer.New("http://localhost:8000/pipelines/parse", analyzer.Options{}, logger)
//	runner := analysis.NewRunner(remote, nil, nil, logger)
//	report, err := runner.Run(ctx, snapshot)
package analyzer
