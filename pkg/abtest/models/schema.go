package models

import (
	"errors"
	"fmt"
)

// Role classifies a column for layout purposes.
type Role int

const (
	// RoleLabel is a left-aligned descriptive column (metric, split).
	RoleLabel Role = iota
	// RoleConfig repeats a table-level setting (analysis type, alpha).
	RoleConfig
	// RoleMean is an absolute mean value.
	RoleMean
	// RolePValue is the p-value column.
	RolePValue
	// RoleEffect is an absolute treatment effect or its interval bound.
	RoleEffect
	// RoleLift is a relative effect rendered as a percentage.
	RoleLift
)

// IsValue reports whether the role belongs to the numeric value block.
func (r Role) IsValue() bool {
	return r >= RoleMean
}

func (r Role) String() string {
	switch r {
	case RoleLabel:
		return "label"
	case RoleConfig:
		return "config"
	case RoleMean:
		return "mean"
	case RolePValue:
		return "p_value"
	case RoleEffect:
		return "effect"
	case RoleLift:
		return "lift"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Column maps a source field to a display column.
type Column struct {
	// Source is the table field the column is read from.
	Source string `json:"source"`
	// Name is the header label.
	Name string `json:"name"`
	// Role drives alignment, number formats and highlighting.
	Role Role `json:"role"`
}

// ColumnSchema is the ordered list of output columns.
type ColumnSchema []Column

// Span is a half-open range of column indexes.
type Span struct {
	Start int
	End   int
}

// PreambleSchema returns the 13-column layout used below a
// "Test Configurations" block.
func PreambleSchema() ColumnSchema {
	return append(labelColumns(), valueColumns()...)
}

// InlineSchema returns the 15-column layout that carries analysis type and
// alpha as explicit columns instead of a preamble block.
func InlineSchema() ColumnSchema {
	s := labelColumns()
	s = append(s,
		Column{Source: FieldAnalysisType, Name: "Analysis Type", Role: RoleConfig},
		Column{Source: FieldAlpha, Name: "Alpha", Role: RoleConfig},
	)
	return append(s, valueColumns()...)
}

func labelColumns() ColumnSchema {
	return ColumnSchema{
		{Source: FieldMetric, Name: "Metric", Role: RoleLabel},
		{Source: FieldTreatment, Name: "Treatment", Role: RoleLabel},
		{Source: FieldDimension, Name: "Split", Role: RoleLabel},
		{Source: FieldDimensionValue, Name: "Split Value", Role: RoleLabel},
	}
}

func valueColumns() ColumnSchema {
	return ColumnSchema{
		{Source: FieldControlMean, Name: "Control Mean", Role: RoleMean},
		{Source: FieldTreatmentMean, Name: "Treatment Mean", Role: RoleMean},
		{Source: FieldPValue, Name: "P-Value", Role: RolePValue},
		{Source: FieldATE, Name: "ATE", Role: RoleEffect},
		{Source: FieldATELower, Name: "ATE Lower", Role: RoleEffect},
		{Source: FieldATEUpper, Name: "ATE Upper", Role: RoleEffect},
		{Source: FieldLift, Name: "%Lift", Role: RoleLift},
		{Source: FieldLiftLower, Name: "%Lift Lower", Role: RoleLift},
		{Source: FieldLiftUpper, Name: "%Lift Upper", Role: RoleLift},
	}
}

// Names returns the header labels in order.
func (s ColumnSchema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the column reading source, or -1.
func (s ColumnSchema) Index(source string) int {
	for i, c := range s {
		if c.Source == source {
			return i
		}
	}
	return -1
}

// Runs returns the maximal runs of adjacent columns whose role is one of roles.
func (s ColumnSchema) Runs(roles ...Role) []Span {
	var spans []Span
	start := -1
	for i, c := range s {
		if hasRole(roles, c.Role) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, Span{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(s)})
	}
	return spans
}

// Validate checks that the schema can be laid out: labels first, one
// contiguous value block and exactly one p-value column.
func (s ColumnSchema) Validate() error {
	if len(s) == 0 {
		return errors.New("schema has no columns")
	}
	seen := make(map[string]bool, len(s))
	pValues := 0
	for _, c := range s {
		if c.Source == "" || c.Name == "" {
			return fmt.Errorf("column %q: source and name are required", c.Name)
		}
		if seen[c.Source] {
			return fmt.Errorf("column source %q appears twice", c.Source)
		}
		seen[c.Source] = true
		if c.Role < RoleLabel || c.Role > RoleLift {
			return fmt.Errorf("column %q: unknown role %d", c.Name, int(c.Role))
		}
		if c.Role == RolePValue {
			pValues++
		}
	}
	if pValues != 1 {
		return fmt.Errorf("schema has %d p-value columns, exactly one is required", pValues)
	}
	if labels := s.Runs(RoleLabel); len(labels) != 1 || labels[0].Start != 0 {
		return errors.New("label columns must form one block at the start of the schema")
	}
	if values := s.Runs(RoleMean, RolePValue, RoleEffect, RoleLift); len(values) != 1 {
		return errors.New("value columns must form one contiguous block")
	}
	return nil
}

func hasRole(roles []Role, r Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}
