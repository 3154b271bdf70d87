// Package hcl is the HCL implementation of the config.Loader interface.
//
// It parses one or more .hcl files (or directories of them) and merges all
// discovered blocks into a single config.Snapshot. Later files win on
// scalar settings; module flags accumulate across files.
package hcl
