package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// JoinWithOr joins a slice of strings with OR operator
func JoinWithOr(clauses []string) string {
	return strings.Join(clauses, " OR ")
}

// Where accumulates filter clauses and their positional arguments.
//
//	w := &Where{}
//	w.And("status = " + w.Arg("published"))
//	sql := "SELECT ... FROM books" + w.SQL()
type Where struct {
	clauses []string
	args    []any
}

// Arg registers v and returns its placeholder ($1, $2, ...).
func (w *Where) Arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *Where) And(clause string) {
	w.clauses = append(w.clauses, clause)
}

// AnyOf adds a disjunction of clauses as one condition.
func (w *Where) AnyOf(clauses ...string) {
	if len(clauses) == 0 {
		return
	}
	w.clauses = append(w.clauses, "("+JoinWithOr(clauses)+")")
}

// SQL renders " WHERE ..." or an empty string.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + JoinWithAnd(w.clauses)
}

func (w *Where) Args() []any {
	return w.args
}
