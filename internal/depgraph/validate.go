package depgraph

import (
	"container/heap"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// ValidateDependencies checks that every dependency of task names another
// task of the same sequence. siblings is the sequence's full task list and
// may or may not contain task itself.
func ValidateDependencies(task *domain.Task, siblings []*domain.Task) error {
	byID := indexByID(siblings)
	for _, dep := range task.Dependencies {
		if dep == task.ID {
			return invalidf(task.ID, "task %q depends on itself", task.Title)
		}
		other, ok := byID[dep]
		if !ok {
			return invalidf(task.ID, "task %q depends on unknown task %s", task.Title, dep)
		}
		if other.SequenceID != task.SequenceID {
			return invalidf(task.ID, "task %q depends on %q from another sequence", task.Title, other.Title)
		}
	}
	return nil
}

// ValidateAcyclic proves the dependency relation over tasks has no cycle
// using Kahn's algorithm. On failure it reports one cycle, found by a
// deterministic DFS in position order. Ids not present in tasks are ignored.
func ValidateAcyclic(tasks []*domain.Task) error {
	g := newGraph(byPosition(tasks))
	if len(g.topoOrder()) == len(g.tasks) {
		return nil
	}
	return cycleError(g.findCycle())
}

// graph holds tasks by position index. deps[i] lists the indices task i
// depends on; dependents[i] is the reverse relation.
type graph struct {
	tasks      []*domain.Task
	deps       [][]int
	dependents [][]int
}

func newGraph(tasks []*domain.Task) *graph {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	g := &graph{
		tasks:      tasks,
		deps:       make([][]int, len(tasks)),
		dependents: make([][]int, len(tasks)),
	}
	for i, t := range tasks {
		for _, dep := range domain.NormalizeIDSet(t.Dependencies) {
			j, ok := index[dep]
			if !ok {
				continue
			}
			g.deps[i] = append(g.deps[i], j)
			g.dependents[j] = append(g.dependents[j], i)
		}
	}
	return g
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder returns task indices with every dependency before its
// dependents, smallest position first among ready tasks.
func (g *graph) topoOrder() []int {
	indeg := make([]int, len(g.tasks))
	for i := range g.deps {
		indeg[i] = len(g.deps[i])
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.dependents[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// findCycle walks dependency edges and returns task titles along one cycle,
// closed on its first element: a -> b -> a reads "a depends on b depends on a".
func (g *graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.tasks))
	parent := make([]int, len(g.tasks))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.deps[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v: the cycle is v ... u -> v along parents.
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.tasks {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.tasks[cycle[i]].Title)
	}
	return out
}
