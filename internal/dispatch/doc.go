// Package dispatch mediates calls between feature modules and the
// portable-bytecode execution unit.
//
// The dispatcher owns at most one instantiated WebAssembly module. When the
// unit is unavailable, failed to initialize, or does not export a requested
// method, calls fall back to a fixed table of deterministic in-process
// simulations so that known methods always produce a result. Initialization
// failure is deliberately non-fatal: a host without its unit still runs,
// just slower and simulated.
//
// The dispatcher performs no internal locking. Concurrent callers interleave
// freely; callers that need ordering must serialize at a higher layer.
package dispatch
