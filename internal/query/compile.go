// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import "strings"

// Column names referenced by compiled predicates.
const (
	FieldTitle    = "title"
	FieldAbstract = "abstract"
	FieldVenue    = "conference"
	FieldYear     = "year"
)

// matchAll is the condition a field chain degenerates to with no terms.
const matchAll = "1=1"

// Predicate is a compiled filter: a SQL template containing only column
// names, operators, parentheses, and '?' placeholders, plus the values to
// bind to those placeholders in order. Predicates are only produced by
// Compile, so user input can never reach the template text.
type Predicate struct {
	expr string
	args []any
}

// SQL returns the template for use after WHERE. The zero Predicate
// matches every row.
func (p Predicate) SQL() string {
	if p.expr == "" {
		return matchAll
	}
	return p.expr
}

// Args returns a copy of the bound values in placeholder order.
func (p Predicate) Args() []any {
	out := make([]any, len(p.args))
	copy(out, p.args)
	return out
}

// Compile builds the search predicate for a validated request.
func (r Request) Compile() Predicate {
	return Compile(r.Query, r.Venues, r.Years)
}

// Compile renders q over both title and abstract, ORs the two chains, and
// ANDs optional venue and year filters:
//
//	((<title chain>) OR (<abstract chain>)) AND conference IN (?) AND year IN (?, ?)
//
// Each term matches as a LIKE substring ('%term%'). Venue codes are bound
// as given, so callers pass the uppercase codes from ParseVenues.
func Compile(q Query, venues []string, years []int) Predicate {
	tree := buildTree(q)

	var b builder
	b.WriteString("((")
	tree.render(FieldTitle, &b)
	b.WriteString(") OR (")
	tree.render(FieldAbstract, &b)
	b.WriteString("))")

	if len(venues) > 0 {
		b.WriteString(" AND " + FieldVenue + " IN (")
		for i, v := range venues {
			if i > 0 {
				b.WriteString(", ")
			}
			b.bind(v)
		}
		b.WriteString(")")
	}

	if len(years) > 0 {
		b.WriteString(" AND " + FieldYear + " IN (")
		for i, y := range years {
			if i > 0 {
				b.WriteString(", ")
			}
			b.bind(y)
		}
		b.WriteString(")")
	}

	return Predicate{expr: b.String(), args: b.args}
}

// node is a field-agnostic boolean expression. render writes the
// expression for one column into b.
type node interface {
	render(field string, b *builder)
}

type allNode struct{}

func (allNode) render(_ string, b *builder) {
	b.WriteString(matchAll)
}

type termNode struct {
	term string
}

func (n termNode) render(field string, b *builder) {
	b.WriteString(field + " LIKE ")
	b.bind("%" + n.term + "%")
}

// binaryNode joins left and right. Trees are left-deep, so right is
// always a termNode and only left needs parentheses to keep strict
// left-to-right evaluation under SQL's AND-over-OR precedence.
type binaryNode struct {
	op          Operator
	left, right node
}

func (n binaryNode) render(field string, b *builder) {
	if _, nested := n.left.(binaryNode); nested {
		b.WriteString("(")
		n.left.render(field, b)
		b.WriteString(")")
	} else {
		n.left.render(field, b)
	}
	b.WriteString(" " + n.op.String() + " ")
	n.right.render(field, b)
}

// buildTree folds terms left to right. Operators missing for a term
// default to AND and surplus operators are ignored, so a Query built by
// hand compiles the same way a parsed one does.
func buildTree(q Query) node {
	if len(q.Terms) == 0 {
		return allNode{}
	}
	var tree node = termNode{term: q.Terms[0]}
	for i := 1; i < len(q.Terms); i++ {
		op := And
		if i-1 < len(q.Operators) {
			op = q.Operators[i-1]
		}
		tree = binaryNode{op: op, left: tree, right: termNode{term: q.Terms[i]}}
	}
	return tree
}

type builder struct {
	strings.Builder
	args []any
}

func (b *builder) bind(v any) {
	b.WriteString("?")
	b.args = append(b.args, v)
}
