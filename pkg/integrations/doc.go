// Package integrations provides HTTP clients for services pipegraph talks to.
//
// [Client] is the shared JSON transport: default headers, retry with
// exponential backoff for network errors, 429 and 5xx responses (via
// pkg/httputil), and observability hooks around every request. Service
// clients live in subpackages:
//
//   - [analyzer]: a remote pipeline analysis service speaking the
//     POST /pipelines/parse contract, guarded by a circuit breaker
package integrations
