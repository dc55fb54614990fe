package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMapping is returned when validate/execute is called without a
	// confirmed field mapping.
	ErrNoMapping = errors.New("field mapping is required")
)

// requiredFields must each be mapped by exactly one column before the
// validator or executor will run.
var requiredFields = []FieldKind{FieldName, FieldEmail, FieldTicketType}

// Validate enforces the mapping-level gate: name, email and ticketType each
// mapped exactly once, and no other canonical field claimed twice. Checked
// before any row-level logic runs.
func (m FieldMapping) Validate() error {
	if len(m) == 0 {
		return ErrNoMapping
	}

	counts := make(map[FieldKind]int)
	for _, cm := range m {
		if cm.Column == "" {
			return errors.New("mapping entry has an empty column name")
		}
		if cm.Field.Kind == FieldCustom {
			if cm.Field.CustomKey == "" {
				return fmt.Errorf("custom mapping for column %q has no key", cm.Column)
			}
			continue
		}
		counts[cm.Field.Kind]++
	}

	for _, kind := range requiredFields {
		if counts[kind] == 0 {
			return fmt.Errorf("required field %q is not mapped", kind)
		}
	}
	for kind, n := range counts {
		if n > 1 {
			return fmt.Errorf("field %q is mapped by %d columns, want exactly one", kind, n)
		}
	}

	return nil
}

// column returns the CSV column mapped to the given canonical field, if any.
func (m FieldMapping) column(kind FieldKind) (string, bool) {
	for _, cm := range m {
		if cm.Field.Kind == kind {
			return cm.Column, true
		}
	}
	return "", false
}

// value extracts the trimmed raw value the row holds for a canonical field.
func (m FieldMapping) value(row ParsedRow, kind FieldKind) string {
	col, ok := m.column(kind)
	if !ok {
		return ""
	}
	return row.Values[col]
}

// customValues collects the row's pass-through values keyed by each custom
// mapping's key (the original column header by default).
func (m FieldMapping) customValues(row ParsedRow) map[string]string {
	out := make(map[string]string)
	for _, cm := range m {
		if cm.Field.Kind != FieldCustom {
			continue
		}
		if v, ok := row.Values[cm.Column]; ok && v != "" {
			out[cm.Field.CustomKey] = v
		}
	}
	return out
}
