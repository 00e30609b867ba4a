// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query implements the keyword search language: parsing a raw
// query into terms and operators, validating request parameters against a
// SearchPolicy, and compiling the result into a parameterized SQL
// predicate.
//
// The language has two binary operators, '+' (AND) and '|' (OR), applied
// strictly left to right with no precedence or grouping.
package query

import "strings"

// Operator joins two consecutive terms.
type Operator int

const (
	And Operator = iota
	Or
)

// String returns the SQL keyword for the operator.
func (o Operator) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// Query is a parsed keyword expression. Operators[i] joins Terms[i] and
// Terms[i+1], so len(Operators) == max(len(Terms)-1, 0).
type Query struct {
	Terms     []string
	Operators []Operator
}

// IsEmpty reports whether the query has no terms.
func (q Query) IsEmpty() bool {
	return len(q.Terms) == 0
}

// Parse splits q on '+' and '|' into trimmed, non-empty terms and the
// operators between them. Parse never fails.
//
// Delimiters that do not separate two non-empty terms are dropped:
// leading and trailing delimiters vanish, and a run of delimiters between
// two terms contributes only its first operator ("a+|b" is a AND b).
func Parse(q string) Query {
	var (
		out     Query
		buf     strings.Builder
		pending []Operator
	)

	closeTerm := func() {
		term := strings.TrimSpace(buf.String())
		buf.Reset()
		if term == "" {
			return
		}
		if len(out.Terms) > 0 {
			op := And
			if len(pending) > 0 {
				op = pending[0]
			}
			out.Operators = append(out.Operators, op)
		}
		out.Terms = append(out.Terms, term)
		pending = pending[:0]
	}

	for _, r := range q {
		switch r {
		case '+':
			closeTerm()
			pending = append(pending, And)
		case '|':
			closeTerm()
			pending = append(pending, Or)
		default:
			buf.WriteRune(r)
		}
	}
	closeTerm()

	return out
}
