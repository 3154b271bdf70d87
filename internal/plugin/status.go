package plugin

import "time"

// Status is one state in the per-plugin state machine:
// unloaded → loaded → active ⇄ inactive, with error reachable from any
// lifecycle-hook failure.
type Status int

const (
	StatusUnloaded Status = iota
	StatusLoaded
	StatusActive
	StatusInactive
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusError:
		return "error"
	default:
		return "unloaded"
	}
}

// Record tracks one loaded plugin: its manifest, instantiated body, state
// machine position, last error, and runtime stats.
type Record struct {
	Manifest *Manifest
	Body     Body

	// Dir is the plugin's on-disk directory, kept for uninstall.
	Dir string

	Status Status
	Err    error

	LoadDuration time.Duration
	Invocations  int
}
