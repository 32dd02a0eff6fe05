// Package query builds parameterized PostgreSQL SELECT statements from a
// mapping of view names to table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view names such as "Risk" to qualified columns such as
// "c.risk". View names match case-insensitively, so query-string sort
// fields like "risk" resolve. Columns projected after a Join belong to the
// joined table.
type ProjectionMap struct {
	table   string
	alias   string
	current string
	joins   []string
	columns map[string]string
	ordered []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   fmt.Sprintf("%s.%s %s", schema, table, alias),
		alias:   alias,
		current: alias,
		columns: make(map[string]string),
	}
}

// Project maps column of the current table to viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.current + "." + column
	p.columns[strings.ToLower(viewName)] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Join appends "kind schema.table alias ON on". kind is a join keyword
// such as "JOIN" or "LEFT JOIN".
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, fmt.Sprintf("%s %s.%s %s ON %s", kind, schema, table, alias, on))
	p.current = alias
	return p
}

func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns "schema.table alias" for the base table.
func (p *ProjectionMap) Table() string {
	return p.table
}

// From returns the base table followed by its joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.table
	}
	return p.table + " " + strings.Join(p.joins, " ")
}

// Column resolves viewName, returning it unchanged when unmapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[strings.ToLower(viewName)]; ok {
		return col
	}
	return viewName
}

func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.columns[strings.ToLower(viewName)]
	return ok
}

// Columns returns the projected columns, comma separated, in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

func (p *ProjectionMap) ColumnList() []string {
	return p.ordered
}
