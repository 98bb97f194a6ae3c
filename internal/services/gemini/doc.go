// Package gemini holds the client for the external multimodal model endpoint.
//
// The client is deliberately thin: it sends one video reference plus task
// instructions to the generateContent surface and hands back the raw text
// reply. Whether the backing service is the hosted API or the Vertex platform
// is decided by the Config the caller resolved; the invocation path is
// identical.
//
// # Retry Behaviour
//
// Up to three attempts total. Retried: HTTP 408/429/5xx, network timeouts,
// and the backend's "try again" 400 for videos still being ingested. Not
// retried: auth failures, malformed requests, and content-policy blocks.
// Backoff doubles from one second (1s, 2s, 4s) and honours a shorter
// Retry-After header. Context cancellation is checked before every attempt
// and sleep; an in-flight HTTP call is bounded by the configured timeout.
package gemini
