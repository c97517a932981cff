package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Severity
func (s Severity) String() string { return string(s) }

// Category
func (c Category) String() string { return string(c) }

// Depth
func (d Depth) String() string { return string(d) }
