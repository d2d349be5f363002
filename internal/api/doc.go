// Package api implements the JSON HTTP surface of the figmant service.
//
// Routes:
//
//	POST /api/v1/rag/context  build RAG context for a prompt
//	GET  /health              liveness probe
//	GET  /ready               readiness probe (pings the database pool)
//
// The middleware stack (outermost first) is recovery, request ID, logging,
// CORS, and per-IP rate limiting. Health probes bypass the stack so probes
// are never rate limited or logged per request.
//
// Error responses use a uniform envelope. Validation failures return
// {"error": {"code", "message"}}; a failed context build returns the full
// empty-but-well-formed RAG envelope so clients never see partial JSON.
package api
