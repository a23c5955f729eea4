// Package sessions records the HTTP sessions seen by the request/response
// transport.
//
// The core never shares state across sessions; a Store only tracks which
// session ids are live so that a client can end one explicitly (HTTP
// DELETE) and idle ones expire. Unknown ids are adopted, never rejected.
//
//	Memory : process local, TTL swept lazily
//	Redis  : shared across replicas, TTL enforced by Redis key expiry
package sessions
