// Package matrix assembles the linear program for a solve: one column per
// adjusted recipe (its flow, in cycles per second) and one row per item.
package matrix

import (
	"fmt"
	"sort"

	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/internal/simplex"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Row is one item constraint: the item's net production Rel RHS.
type Row struct {
	Item  string
	Rel   simplex.Relation
	RHS   rational.Rational
	Coefs []rational.Rational
}

// Matrix is the incidence matrix of the adjusted recipes with the bounds
// derived from the objectives.
type Matrix struct {
	Recipes []string
	Rows    []Row
	Cost    []rational.Rational
	// Maximize is the maximized item, or empty.
	Maximize string
	index    map[string]int
}

// Assemble builds the matrix. Items with a demand get a >= row, every other
// item a = 0 conservation row, and each limit adds a <= row. Columns and
// rows are ordered by id so the simplex pivots identically for identical
// input.
func Assemble(ds *graph.AdjustedDataset, objs *objective.Normalized) *Matrix {
	m := &Matrix{
		Recipes:  ds.IDs(),
		Maximize: objs.Maximize,
		index:    make(map[string]int),
	}
	cols := len(m.Recipes)

	seen := make(map[string]bool)
	var items []string
	addItem := func(item string) {
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}
	recipes := make([]*graph.AdjustedRecipe, cols)
	for j, id := range m.Recipes {
		recipes[j], _ = ds.Recipe(id)
		for _, item := range recipes[j].Items() {
			addItem(item)
		}
	}
	for _, item := range objs.Items() {
		addItem(item)
	}
	sort.Strings(items)

	coefs := func(item string) []rational.Rational {
		row := make([]rational.Rational, cols)
		for j, r := range recipes {
			row[j] = r.Net(item)
		}
		return row
	}

	for _, item := range items {
		row := Row{Item: item, Rel: simplex.Equal, Coefs: coefs(item)}
		if demand, ok := objs.Demands[item]; ok {
			row.Rel = simplex.GreaterEq
			row.RHS = demand
		}
		m.index[item] = len(m.Rows)
		m.Rows = append(m.Rows, row)
	}

	limited := make([]string, 0, len(objs.Limits))
	for item := range objs.Limits {
		limited = append(limited, item)
	}
	sort.Strings(limited)
	for _, item := range limited {
		m.Rows = append(m.Rows, Row{
			Item:  item,
			Rel:   simplex.LessEq,
			RHS:   objs.Limits[item],
			Coefs: m.Rows[m.index[item]].Coefs,
		})
	}

	m.Cost = make([]rational.Rational, cols)
	for j, r := range recipes {
		m.Cost[j] = r.Cost
	}
	return m
}

// MaximizeProblem returns the first stage of a maximize solve: the same
// rows with the net production of the maximized item as the objective. The
// optimal value is the negated maximum. It panics when nothing is
// maximized.
func (m *Matrix) MaximizeProblem() simplex.Problem {
	if m.Maximize == "" {
		panic("matrix: no maximized item")
	}
	gain := m.Rows[m.index[m.Maximize]].Coefs
	p := m.Problem()
	p.Objective = make([]rational.Rational, len(gain))
	for j, g := range gain {
		p.Objective[j] = g.Neg()
	}
	return p
}

// FixMaximum adds a row holding the maximized item at or above amount, so
// that the cost solve keeps the first stage's output.
func (m *Matrix) FixMaximum(amount rational.Rational) {
	m.Rows = append(m.Rows, Row{
		Item:  m.Maximize,
		Rel:   simplex.GreaterEq,
		RHS:   amount,
		Coefs: m.Rows[m.index[m.Maximize]].Coefs,
	})
}

// Problem returns the matrix as a simplex problem. The coefficient slices
// are shared with m and must not be modified.
func (m *Matrix) Problem() simplex.Problem {
	p := simplex.Problem{
		Objective:   m.Cost,
		Constraints: make([]simplex.Constraint, len(m.Rows)),
	}
	for i, row := range m.Rows {
		p.Constraints[i] = simplex.Constraint{Coefs: row.Coefs, Rel: row.Rel, RHS: row.RHS}
	}
	return p
}

// Net returns the net production of every row item under flows.
func (m *Matrix) Net(flows []rational.Rational) map[string]rational.Rational {
	net := make(map[string]rational.Rational, len(m.index))
	for item, i := range m.index {
		sum := rational.Zero
		for j, c := range m.Rows[i].Coefs {
			if !c.IsZero() && !flows[j].IsZero() {
				sum = sum.Add(c.Mul(flows[j]))
			}
		}
		net[item] = sum
	}
	return net
}

// RecipeCost returns the cost of flows.
func (m *Matrix) RecipeCost(flows []rational.Rational) rational.Rational {
	total := rational.Zero
	for j, f := range flows {
		total = total.Add(f.Mul(m.Cost[j]))
	}
	return total
}

// Check verifies that flows are non-negative and satisfy every row exactly.
func (m *Matrix) Check(flows []rational.Rational) error {
	if len(flows) != len(m.Recipes) {
		return apperrors.New(apperrors.ErrCodeSolverInternal,
			fmt.Sprintf("got %d flows for %d recipes", len(flows), len(m.Recipes)))
	}
	for j, f := range flows {
		if f.IsNegative() {
			return apperrors.NewWithContext(apperrors.ErrCodeSolverInternal,
				fmt.Sprintf("recipe %q has negative flow %s", m.Recipes[j], f),
				map[string]any{"recipe": m.Recipes[j]})
		}
	}
	net := m.Net(flows)
	for _, row := range m.Rows {
		got := net[row.Item]
		var ok bool
		switch row.Rel {
		case simplex.Equal:
			ok = got.Equal(row.RHS)
		case simplex.GreaterEq:
			ok = !got.Less(row.RHS)
		case simplex.LessEq:
			ok = !row.RHS.Less(got)
		}
		if !ok {
			return apperrors.NewWithContext(apperrors.ErrCodeSolverInternal,
				fmt.Sprintf("item %q net production %s violates %s %s", row.Item, got, row.Rel, row.RHS),
				map[string]any{"item": row.Item})
		}
	}
	return nil
}
