// Package querybuilder renders the small set of Postgres statements the draft
// gateway issues. Values always travel as $n arguments; only column names,
// table names and raw SQL fragments passed by the caller are inlined.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// statement accumulates SQL text and its positional arguments.
type statement struct {
	buf  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, p := range parts {
		s.buf.WriteString(p)
	}
}

func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.buf.WriteString("$")
	s.buf.WriteString(strconv.Itoa(len(s.args)))
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c(s)
	}
}

func (s *statement) list(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	s.write(" ", keyword, " ", strings.Join(items, ", "))
}

func (s *statement) done() (string, []any, error) {
	return s.buf.String(), s.args, nil
}

// Condition renders one predicate; conditions in a Where are joined by AND.
type Condition func(s *statement)

func Eq(column string, value any) Condition {
	return func(s *statement) {
		s.write(column, " = ")
		s.bind(value)
	}
}

func IsNull(column string) Condition {
	return func(s *statement) {
		s.write(column, " IS NULL")
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var s statement
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.where)
	s.list("ORDER BY", b.orderBy)
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.done()
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values appends one row; call it once per row for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			s.write(", ")
		}
		s.write("(")
		for j, value := range row {
			if j > 0 {
				s.write(", ")
			}
			s.bind(value)
		}
		s.write(")")
	}
	if b.suffix != "" {
		s.write(" ", b.suffix)
	}
	return s.done()
}

type assignment struct {
	column string
	value  any
	raw    string
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetRaw assigns an SQL fragment such as NULL or NOW() without binding.
func (b *UpdateBuilder) SetRaw(column, sql string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: sql})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unfiltered update.
func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update %s requires a where clause", b.table)
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ")
		if a.raw != "" {
			s.write(a.raw)
			continue
		}
		s.bind(a.value)
	}
	s.where(b.where)
	return s.done()
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unfiltered delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete from %s requires a where clause", b.table)
	}

	var s statement
	s.write("DELETE FROM ", b.table)
	s.where(b.where)
	return s.done()
}
