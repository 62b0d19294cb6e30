// Package projection turns a persisted timeline into a public status projection
// and an internal per-node trace.
package projection
