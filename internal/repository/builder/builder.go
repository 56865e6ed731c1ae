package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderFormat selects how "?" markers are rendered in the final SQL.
type PlaceholderFormat int

const (
	// Dollar renders numbered placeholders ($1, $2, ...) as used by postgres.
	Dollar PlaceholderFormat = iota
	// Question keeps the "?" markers as used by sqlite.
	Question
)

// SQLBuilder helps construct SQL queries dynamically.
// Conditions are written with "?" markers; Build rewrites them according to
// the placeholder format, numbering them in statement order.
type SQLBuilder struct {
	format    PlaceholderFormat
	table     string
	columns   []string
	values    []interface{}
	sets      []setClause
	where     []condition
	joins     []string
	groupBy   []string
	orderBy   []string
	returning []string
	limit     int
	offset    int
	isInsert  bool
	isUpdate  bool
	isDelete  bool
	isSelect  bool
}

// setClause is one "col = expr" assignment of an UPDATE.
type setClause struct {
	column string
	expr   string
	args   []interface{}
}

// condition is a WHERE fragment with its arguments.
type condition struct {
	sql  string
	args []interface{}
	raw  bool
}

// NewSQLBuilder creates a new instance of SQLBuilder using postgres placeholders.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{format: Dollar}
}

// WithFormat changes the placeholder format.
func (b *SQLBuilder) WithFormat(format PlaceholderFormat) *SQLBuilder {
	b.format = format
	return b
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.isSelect = true
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.isUpdate = true
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.isDelete = true
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set assigns a value to a column in an UPDATE.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.sets = append(b.sets, setClause{column: col, expr: "?", args: []interface{}{val}})
	return b
}

// SetExpr assigns an expression to a column in an UPDATE, e.g.
// SetExpr("salary", "ROUND(salary * ?, 2)", factor).
func (b *SQLBuilder) SetExpr(col, expr string, args ...interface{}) *SQLBuilder {
	b.sets = append(b.sets, setClause{column: col, expr: expr, args: args})
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Returning adds a RETURNING clause to an INSERT, UPDATE or DELETE.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// Where adds a condition to the query. Conditions are combined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition{sql: cond, args: args})
	return b
}

// WhereRaw adds a raw SQL condition with arguments. The condition is
// parenthesized so that an inner OR does not leak into the other conditions.
func (b *SQLBuilder) WhereRaw(sql string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition{sql: sql, args: args, raw: true})
	return b
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// LeftJoin is shorthand for Join("LEFT", table, on).
func (b *SQLBuilder) LeftJoin(table, on string) *SQLBuilder {
	return b.Join("LEFT", table, on)
}

// GroupBy adds a GROUP BY clause.
func (b *SQLBuilder) GroupBy(cols ...string) *SQLBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if the number of placeholders doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	raw, args := b.build()
	if n := strings.Count(raw, "?"); n != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", n, len(args))
	}
	return b.rewrite(raw), args, nil
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	raw, args := b.build()
	return b.rewrite(raw), args
}

func (b *SQLBuilder) build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	switch {
	case b.isSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	case b.isInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(b.values)), ", "))
		sb.WriteString(")")
		args = append(args, b.values...)
		b.writeReturning(&sb)
		return sb.String(), args
	case b.isUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		setClauses := make([]string, len(b.sets))
		for i, s := range b.sets {
			setClauses[i] = s.column + " = " + s.expr
			args = append(args, s.args...)
		}
		sb.WriteString(strings.Join(setClauses, ", "))
	case b.isDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 {
		conds := make([]string, len(b.where))
		for i, c := range b.where {
			if c.raw {
				conds[i] = "(" + c.sql + ")"
			} else {
				conds[i] = c.sql
			}
			args = append(args, c.args...)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	b.writeReturning(&sb)
	return sb.String(), args
}

func (b *SQLBuilder) writeReturning(sb *strings.Builder) {
	if len(b.returning) == 0 {
		return
	}
	sb.WriteString(" RETURNING ")
	sb.WriteString(strings.Join(b.returning, ", "))
}

// rewrite turns "?" markers into the configured placeholder style.
func (b *SQLBuilder) rewrite(raw string) string {
	if b.format == Question {
		return raw
	}
	var sb strings.Builder
	sb.Grow(len(raw) + 8)
	n := 0
	for _, r := range raw {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
