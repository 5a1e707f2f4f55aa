// Package objective converts user production goals into the signed demand
// constraints consumed by the matrix assembler.
package objective

import (
	"fmt"
	"sort"

	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Type is the direction of an objective.
type Type string

const (
	// Output demands at least Rate of the item per second.
	Output Type = "output"
	// Input consumes up to Rate of an externally supplied item.
	Input Type = "input"
	// Maximize produces as much of the item as the other bounds allow, at
	// the lowest cost for that amount.
	Maximize Type = "maximize"
	// Limit caps the net production of the item at Rate.
	Limit Type = "limit"
)

// Objective is one user goal. Rate is ignored for Maximize.
type Objective struct {
	Item string            `yaml:"item" json:"item" mapstructure:"item"`
	Rate rational.Rational `yaml:"rate,omitempty" json:"rate,omitempty" mapstructure:"rate"`
	Type Type              `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
}

// ItemSet reports whether an item id is known.
type ItemSet interface {
	HasItem(id string) bool
}

// Normalized is the canonical form of a set of objectives.
type Normalized struct {
	// Demands maps item id to the lower bound on its net production.
	// Inputs appear as negative bounds.
	Demands map[string]rational.Rational
	// Limits maps item id to the upper bound on its net production.
	Limits map[string]rational.Rational
	// Maximize is the id of the maximized item, or empty.
	Maximize string
}

// Items returns every item with a demand, limit or maximize marker,
// ascending.
func (n *Normalized) Items() []string {
	seen := make(map[string]bool)
	for item := range n.Demands {
		seen[item] = true
	}
	for item := range n.Limits {
		seen[item] = true
	}
	if n.Maximize != "" {
		seen[n.Maximize] = true
	}
	items := make([]string, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Empty reports whether there is nothing to solve for.
func (n *Normalized) Empty() bool {
	return len(n.Demands) == 0 && len(n.Limits) == 0 && n.Maximize == ""
}

// Normalize validates objs against known and folds them into demand and
// limit bounds. Several Output or Input objectives on one item are summed;
// several limits keep the tightest.
func Normalize(objs []Objective, known ItemSet) (*Normalized, error) {
	n := &Normalized{
		Demands: make(map[string]rational.Rational),
		Limits:  make(map[string]rational.Rational),
	}

	for i, obj := range objs {
		if !known.HasItem(obj.Item) {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeUnknownItem,
				fmt.Sprintf("objective %d references unknown item %q", i, obj.Item),
				map[string]any{"item": obj.Item, "index": i})
		}

		switch obj.Type {
		case Output, "":
			if obj.Rate.IsNegative() {
				return nil, negativeRate(i, obj)
			}
			n.Demands[obj.Item] = n.Demands[obj.Item].Add(obj.Rate)
		case Input:
			if obj.Rate.IsNegative() {
				return nil, negativeRate(i, obj)
			}
			n.Demands[obj.Item] = n.Demands[obj.Item].Sub(obj.Rate)
		case Limit:
			if current, ok := n.Limits[obj.Item]; ok {
				n.Limits[obj.Item] = rational.Min(current, obj.Rate)
			} else {
				n.Limits[obj.Item] = obj.Rate
			}
		case Maximize:
			if n.Maximize != "" {
				return nil, apperrors.NewWithContext(apperrors.ErrCodeConflictingObjectives,
					fmt.Sprintf("only one item may be maximized, got %q and %q", n.Maximize, obj.Item),
					map[string]any{"first": n.Maximize, "second": obj.Item})
			}
			n.Maximize = obj.Item
		default:
			return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("objective %d has unknown type %q", i, obj.Type),
				map[string]any{"type": string(obj.Type), "index": i})
		}
	}

	if n.Maximize != "" {
		if _, ok := n.Demands[n.Maximize]; !ok {
			n.Demands[n.Maximize] = rational.Zero
		}
	}
	return n, nil
}

func negativeRate(i int, obj Objective) error {
	return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
		fmt.Sprintf("objective %d for %q has negative rate %s", i, obj.Item, obj.Rate),
		map[string]any{"item": obj.Item, "index": i})
}
