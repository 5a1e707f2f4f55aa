package steps

import (
	"sort"

	"github.com/iwvelando/factory-planner/internal/graph"
)

// dependencies is the producer -> consumer graph over active recipes.
// Vertices are indexes into recipes, which is sorted by id.
type dependencies struct {
	recipes []*graph.AdjustedRecipe
	edges   [][]int
}

func newDependencies(recipes []*graph.AdjustedRecipe) *dependencies {
	consumers := make(map[string][]int)
	for i, r := range recipes {
		for item := range r.In {
			consumers[item] = append(consumers[item], i)
		}
	}

	d := &dependencies{recipes: recipes, edges: make([][]int, len(recipes))}
	for i, r := range recipes {
		seen := make(map[int]bool)
		for item := range r.Out {
			for _, j := range consumers[item] {
				if j != i && !seen[j] {
					seen[j] = true
					d.edges[i] = append(d.edges[i], j)
				}
			}
		}
		sort.Ints(d.edges[i])
	}
	return d
}

// components returns the strongly connected components (Tarjan), each
// sorted by recipe id.
func (d *dependencies) components() [][]*graph.AdjustedRecipe {
	n := len(d.recipes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack  []int
		next   int
		groups [][]*graph.AdjustedRecipe
	)

	var visit func(v int)
	visit = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range d.edges[v] {
			if index[w] < 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var members []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			sort.Ints(members)
			group := make([]*graph.AdjustedRecipe, len(members))
			for i, m := range members {
				group[i] = d.recipes[m]
			}
			groups = append(groups, group)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] < 0 {
			visit(v)
		}
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a][0].ID < groups[b][0].ID })
	return groups
}

// order sorts groups so producers precede consumers (Kahn), picking the
// group with the lowest leading recipe id whenever several are ready. It
// also returns each group's depth.
func (d *dependencies) order(groups [][]*graph.AdjustedRecipe) ([]int, []int) {
	groupOf := make(map[string]int, len(d.recipes))
	for gi, g := range groups {
		for _, r := range g {
			groupOf[r.ID] = gi
		}
	}

	succ := make([]map[int]bool, len(groups))
	indegree := make([]int, len(groups))
	for gi := range groups {
		succ[gi] = make(map[int]bool)
	}
	for v, targets := range d.edges {
		from := groupOf[d.recipes[v].ID]
		for _, w := range targets {
			to := groupOf[d.recipes[w].ID]
			if from != to && !succ[from][to] {
				succ[from][to] = true
				indegree[to]++
			}
		}
	}

	depth := make([]int, len(groups))
	var ready []int
	for gi := range groups {
		if indegree[gi] == 0 {
			ready = append(ready, gi)
		}
	}

	order := make([]int, 0, len(groups))
	for len(ready) > 0 {
		sort.Ints(ready)
		gi := ready[0]
		ready = ready[1:]
		order = append(order, gi)

		targets := make([]int, 0, len(succ[gi]))
		for to := range succ[gi] {
			targets = append(targets, to)
		}
		sort.Ints(targets)
		for _, to := range targets {
			depth[to] = max(depth[to], depth[gi]+1)
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}
	return order, depth
}
