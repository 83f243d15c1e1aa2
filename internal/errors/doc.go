// Package errors provides coded, categorised errors for the deep link engine.
//
// Each error has a stable code (e.g. "DL102") that maps to a short message and
// an optional fix hint. Codes are grouped by range:
//   - DL1xx: inbound link parsing (scheme, host, path)
//   - DL2xx: route table construction
//   - DL3xx: configuration
//   - DL4xx: navigation and share sheet
//   - DL5xx: publishing well-known files
//
// # Usage
//
//	err := errors.New("DL102").WithDetailf("host %q", host)
//	if errors.Code(err) == "DL102" { ... }
//
// Errors compare by code, so errors.Is(err, errors.New("DL102")) holds for any
// DL102 error regardless of detail.
package errors
