package store

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Conditions with an
// empty value are skipped.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n". A nil value or empty string is skipped.
func (wb *WhereBuilder) Add(column string, value any) {
	if isEmpty(value) {
		return
	}
	wb.addCond(fmt.Sprintf("%s = $%d", column, wb.argIndex), value)
}

// AddRange appends "column >= $n" and "column <= $n+1"; either bound may be
// empty.
func (wb *WhereBuilder) AddRange(column string, from, to any) {
	if !isEmpty(from) {
		wb.addCond(fmt.Sprintf("%s >= $%d", column, wb.argIndex), from)
	}
	if !isEmpty(to) {
		wb.addCond(fmt.Sprintf("%s <= $%d", column, wb.argIndex), to)
	}
}

// Build returns the clause with a leading space, or "" and nil args when no
// condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the next placeholder number, for LIMIT/OFFSET.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

func (wb *WhereBuilder) addCond(cond string, value any) {
	wb.conditions = append(wb.conditions, cond)
	wb.args = append(wb.args, value)
	wb.argIndex++
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case interface{ IsZero() bool }:
		return x.IsZero()
	}
	return false
}
