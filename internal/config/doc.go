// Package config defines the format-agnostic configuration model for a
// composition host instance.
//
// A Snapshot is immutable for the lifetime of a session: configuration
// updates replace the whole snapshot, they never mutate it in place. The
// Loader interface decouples the model from any concrete file format; the
// hcl package provides the canonical implementation.
package config
