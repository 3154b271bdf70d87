package config

import "context"

// Loader abstracts the concrete configuration format away from the
// composition root. Implementations parse one or more paths into a single
// Snapshot.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Snapshot, error)
}
