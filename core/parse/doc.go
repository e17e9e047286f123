// Package parse converts raw model text into typed Go values. Models wrap
// JSON in prose and markdown fences and emit almost-JSON more often than
// strict JSON, so parsing is layered: direct conversion first, then fence
// stripping, balanced-candidate extraction, and automatic repair before
// giving up with an error.
//
// The entry point is the generic [StringAs] function, covering primitive
// targets (string, bool, integers, floats) and JSON targets (structs, maps,
// slices) behind one signature.
package parse
