// Package devserver is a local HTTP server for exercising the deep link
// engine without a device.
//
// It wires the engine to an in-memory navigation stack and a simulated
// session, and exposes them over a small JSON API:
//
//	GET  /api/resolve?url=...   parse and resolve without dispatching
//	POST /api/dispatch          {"url": "...", "source": "push"}
//	POST /api/login             {"id": "...", "username": "..."}
//	POST /api/logout
//	GET  /api/history           navigation stack and pending link
//	GET  /api/routes            the route table in match order
//
// It also serves the generated /.well-known/ files, Prometheus metrics on
// /metrics, and a WebSocket feed of outcomes, replays and history changes
// on /ws/outcomes.
package devserver
