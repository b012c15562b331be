package model

import "strings"

// NoRef is the group key used when a relation cannot be resolved.
const NoRef = "-"

// Ref points at a related entity. Either side may be empty: a bare
// identifier carries only ID, an inline object may carry both.
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Key returns the identity used for grouping and matching.
// ID wins over Name; an empty Ref yields NoRef.
func (r Ref) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return NoRef
}

// IsZero reports whether the Ref carries neither an ID nor a name.
func (r Ref) IsZero() bool {
	return strings.TrimSpace(r.ID) == "" && strings.TrimSpace(r.Name) == ""
}
