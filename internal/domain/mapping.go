package domain

import "strings"

// MappingEntry maps one input-dataset header to one output-dataset header.
type MappingEntry struct {
	InputHeader  string `json:"inputHeader"`
	OutputHeader string `json:"outputHeader"`
}

// Validate checks that both headers are set.
func (e MappingEntry) Validate() error {
	if strings.TrimSpace(e.InputHeader) == "" {
		return ErrValidation("inputHeader is required")
	}
	if strings.TrimSpace(e.OutputHeader) == "" {
		return ErrValidation("outputHeader is required")
	}
	return nil
}

// MappingTable is an ordered list of entries holding at most one entry per
// input header. The zero value is ready to use.
type MappingTable struct {
	entries []MappingEntry
}

// NewMappingTable builds a table by applying Set for each entry in order, so
// a repeated input header keeps its first position and its last output.
func NewMappingTable(entries []MappingEntry) *MappingTable {
	t := &MappingTable{}
	for _, e := range entries {
		t.Set(e.InputHeader, e.OutputHeader)
	}
	return t
}

// Set upserts by input header. Header existence is not checked here; a
// mapping may go stale after a re-upload.
func (t *MappingTable) Set(input, output string) {
	for i := range t.entries {
		if t.entries[i].InputHeader == input {
			t.entries[i].OutputHeader = output
			return
		}
	}
	t.entries = append(t.entries, MappingEntry{InputHeader: input, OutputHeader: output})
}

// List returns a copy of the entries in order.
func (t *MappingTable) List() []MappingEntry {
	return append([]MappingEntry{}, t.entries...)
}

// Len returns the entry count.
func (t *MappingTable) Len() int { return len(t.entries) }

// Clear empties the table.
func (t *MappingTable) Clear() { t.entries = nil }

// OutputFor returns the output header mapped from input.
func (t *MappingTable) OutputFor(input string) (string, bool) {
	for _, e := range t.entries {
		if e.InputHeader == input {
			return e.OutputHeader, true
		}
	}
	return "", false
}

// InputFor returns the first input header mapped onto output.
func (t *MappingTable) InputFor(output string) (string, bool) {
	for _, e := range t.entries {
		if e.OutputHeader == output {
			return e.InputHeader, true
		}
	}
	return "", false
}

// Prune drops entries whose input header is not in inputs or whose output
// header is not in outputs, and returns the dropped entries.
func (t *MappingTable) Prune(inputs, outputs []string) []MappingEntry {
	in := toSet(inputs)
	out := toSet(outputs)
	kept := t.entries[:0:0]
	var dropped []MappingEntry
	for _, e := range t.entries {
		if in[e.InputHeader] && out[e.OutputHeader] {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	t.entries = kept
	return dropped
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}
