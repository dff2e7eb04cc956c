// Package connectivity provides driven.Connectivity implementations.
//
//   - Monitor probes the backend over HTTP on an interval and reports
//     online/offline transitions.
//   - Static holds a manually set state; it backs the --offline flag and tests.
package connectivity
