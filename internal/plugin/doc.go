// Package plugin implements the externally supplied plugin composition
// path: manifest resolution, security policy, dependency verification, body
// instantiation, and a per-plugin lifecycle state machine.
//
// The manager's failure policy is deliberately different from the module
// loader's. Module failures are ecosystem-fatal; a broken plugin is left in
// Error status, inspectable, and never aborts a manager-wide operation.
// The one exception is an explicitly requested activate or deactivate,
// whose hook failure is surfaced to the caller.
package plugin
