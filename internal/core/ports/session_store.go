package ports

import "context"

// SessionStore persists the client's session entries across process
// restarts. It is a flat string key/value space, the equivalent of browser
// local storage: Get reports ok=false for a missing key, Delete of a
// missing key is not an error.
type SessionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores backed by a remote service so readiness
// probes can check them.
type Pinger interface {
	Ping(ctx context.Context) error
}
