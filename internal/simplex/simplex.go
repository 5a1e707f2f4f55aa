// Package simplex solves linear programs exactly. Problems are stated as
//
//	minimize c·x subject to A x (<=|=|>=) b, x >= 0
//
// and solved with the two-phase tableau method over rational.Rational.
// Pivoting follows Bland's rule (lowest eligible column enters, ties in the
// ratio test leave by lowest basic column), so the method always terminates
// and a given problem always produces the same solution.
package simplex

import (
	"context"
	"fmt"

	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Relation is the comparison of a constraint row.
type Relation int

const (
	LessEq Relation = iota
	Equal
	GreaterEq
)

func (r Relation) String() string {
	switch r {
	case LessEq:
		return "<="
	case Equal:
		return "="
	case GreaterEq:
		return ">="
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

func (r Relation) flip() Relation {
	switch r {
	case LessEq:
		return GreaterEq
	case GreaterEq:
		return LessEq
	default:
		return r
	}
}

// Constraint is one row: Coefs·x Rel RHS.
type Constraint struct {
	Coefs []rational.Rational
	Rel   Relation
	RHS   rational.Rational
}

// Problem is a minimization over non-negative variables. Every constraint
// must have one coefficient per objective entry.
type Problem struct {
	Objective   []rational.Rational
	Constraints []Constraint
}

// Status is the outcome of a solve.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{Optimal, Infeasible, Unbounded} {
		if string(text) == candidate.String() {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown simplex status %q", text)
}

// Solution is the result of Solve. X and Value are set only when Status is
// Optimal.
type Solution struct {
	Status Status
	X      []rational.Rational
	Value  rational.Rational
	Pivots int
}

// Solve runs the two-phase simplex on p. The context is checked between
// pivots; a cancelled solve returns ctx.Err() and no solution.
func Solve(ctx context.Context, p Problem) (*Solution, error) {
	n := len(p.Objective)
	for i, c := range p.Constraints {
		if len(c.Coefs) != n {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeSolverInternal,
				fmt.Sprintf("constraint %d has %d coefficients, want %d", i, len(c.Coefs), n),
				map[string]any{"row": i})
		}
	}

	t := newTableau(p)

	if t.artificials > 0 {
		cost := make([]rational.Rational, t.cols)
		for j := t.firstArtificial; j < t.cols; j++ {
			cost[j] = rational.One
		}
		status, err := t.optimize(ctx, cost, t.cols)
		if err != nil {
			return nil, err
		}
		if status != Optimal || t.value.IsPositive() {
			return &Solution{Status: Infeasible, Pivots: t.pivots}, nil
		}
		t.dropArtificials()
	}

	cost := make([]rational.Rational, t.cols)
	copy(cost, p.Objective)
	status, err := t.optimize(ctx, cost, t.firstArtificial)
	if err != nil {
		return nil, err
	}
	if status != Optimal {
		return &Solution{Status: status, Pivots: t.pivots}, nil
	}

	x := make([]rational.Rational, n)
	for i, col := range t.basis {
		if col < n {
			x[col] = t.rhs[i]
		}
	}
	value := rational.Zero
	for j, c := range p.Objective {
		value = value.Add(c.Mul(x[j]))
	}
	return &Solution{Status: Optimal, X: x, Value: value, Pivots: t.pivots}, nil
}

// tableau is a dense simplex tableau. Columns are laid out as structural
// variables, then slack and surplus variables, then artificials.
type tableau struct {
	rows  [][]rational.Rational
	rhs   []rational.Rational
	basis []int
	cols  int

	firstArtificial int
	artificials     int

	reduced []rational.Rational
	value   rational.Rational
	pivots  int
}

func newTableau(p Problem) *tableau {
	n := len(p.Objective)
	m := len(p.Constraints)

	rels := make([]Relation, m)
	slacks, artificials := 0, 0
	for i, c := range p.Constraints {
		rels[i] = c.Rel
		if c.RHS.IsNegative() {
			rels[i] = c.Rel.flip()
		}
		if rels[i] != Equal {
			slacks++
		}
		if rels[i] != LessEq {
			artificials++
		}
	}

	t := &tableau{
		rows:            make([][]rational.Rational, m),
		rhs:             make([]rational.Rational, m),
		basis:           make([]int, m),
		cols:            n + slacks + artificials,
		firstArtificial: n + slacks,
		artificials:     artificials,
	}

	slack, artificial := n, n+slacks
	for i, c := range p.Constraints {
		row := make([]rational.Rational, t.cols)
		negate := c.RHS.IsNegative()
		for j, v := range c.Coefs {
			if negate {
				v = v.Neg()
			}
			row[j] = v
		}
		t.rhs[i] = c.RHS.Abs()

		switch rels[i] {
		case LessEq:
			row[slack] = rational.One
			t.basis[i] = slack
			slack++
		case GreaterEq:
			row[slack] = rational.One.Neg()
			slack++
			row[artificial] = rational.One
			t.basis[i] = artificial
			artificial++
		case Equal:
			row[artificial] = rational.One
			t.basis[i] = artificial
			artificial++
		}
		t.rows[i] = row
	}
	return t
}

// optimize minimizes cost over the columns below limit, starting from the
// current basis.
func (t *tableau) optimize(ctx context.Context, cost []rational.Rational, limit int) (Status, error) {
	t.reduced = make([]rational.Rational, t.cols)
	copy(t.reduced, cost)
	t.value = rational.Zero
	for i, col := range t.basis {
		cb := cost[col]
		if cb.IsZero() {
			continue
		}
		for j, v := range t.rows[i] {
			if !v.IsZero() {
				t.reduced[j] = t.reduced[j].Sub(cb.Mul(v))
			}
		}
		t.value = t.value.Add(cb.Mul(t.rhs[i]))
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		enter := -1
		for j := 0; j < limit; j++ {
			if t.reduced[j].IsNegative() {
				enter = j
				break
			}
		}
		if enter < 0 {
			return Optimal, nil
		}

		leave := -1
		var best rational.Rational
		for i, row := range t.rows {
			a := row[enter]
			if !a.IsPositive() {
				continue
			}
			ratio := t.rhs[i].MustDiv(a)
			if leave < 0 {
				leave, best = i, ratio
				continue
			}
			switch cmp := ratio.Cmp(best); {
			case cmp < 0, cmp == 0 && t.basis[i] < t.basis[leave]:
				leave, best = i, ratio
			}
		}
		if leave < 0 {
			return Unbounded, nil
		}

		t.pivot(leave, enter)
	}
}

func (t *tableau) pivot(r, c int) {
	pr := t.rows[r]
	p := pr[c]
	for j, v := range pr {
		if !v.IsZero() {
			pr[j] = v.MustDiv(p)
		}
	}
	t.rhs[r] = t.rhs[r].MustDiv(p)

	for i, row := range t.rows {
		if i == r {
			continue
		}
		f := row[c]
		if f.IsZero() {
			continue
		}
		for j, v := range pr {
			if !v.IsZero() {
				row[j] = row[j].Sub(f.Mul(v))
			}
		}
		t.rhs[i] = t.rhs[i].Sub(f.Mul(t.rhs[r]))
	}

	if t.reduced != nil {
		if d := t.reduced[c]; !d.IsZero() {
			for j, v := range pr {
				if !v.IsZero() {
					t.reduced[j] = t.reduced[j].Sub(d.Mul(v))
				}
			}
			t.value = t.value.Add(d.Mul(t.rhs[r]))
		}
	}

	t.basis[r] = c
	t.pivots++
}

// dropArtificials removes artificial variables from a feasible basis after
// phase one. Each artificial still basic sits at zero; it is swapped for the
// lowest structural or slack column with a non-zero entry in its row, or
// the row is redundant and deleted.
func (t *tableau) dropArtificials() {
	for i := 0; i < len(t.rows); {
		if t.basis[i] < t.firstArtificial {
			i++
			continue
		}
		enter := -1
		for j := 0; j < t.firstArtificial; j++ {
			if !t.rows[i][j].IsZero() {
				enter = j
				break
			}
		}
		if enter >= 0 {
			t.pivot(i, enter)
			i++
			continue
		}
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
		t.rhs = append(t.rhs[:i], t.rhs[i+1:]...)
		t.basis = append(t.basis[:i], t.basis[i+1:]...)
	}
}
