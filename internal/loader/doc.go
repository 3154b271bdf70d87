// Package loader resolves the enabled-module list from configuration and
// drives module lifecycle: batch initialization, targeted reload, and full
// teardown.
//
// Batch initialization is all-or-fail: every enabled module loads
// concurrently and the first failure rejects the whole call. Loads that
// already completed are not rolled back. Teardown is the opposite policy, a
// best-effort loop that reports a per-module outcome and never lets one
// broken module block the others.
package loader
