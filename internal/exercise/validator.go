package exercise

import (
	"fmt"
	"strings"

	"github.com/cqlclinic/clinic/internal/domain"
)

// ValidationReport is the result of validating the prerequisite graph
type ValidationReport struct {
	Valid           bool                `json:"valid"`
	Errors          []string            `json:"errors"`
	Warnings        []string            `json:"warnings"`
	DependencyGraph map[string][]string `json:"dependency_graph"`
}

// Node states for the traversal
const (
	white = iota // unvisited
	gray         // on the current path
	black        // fully explored
)

// ValidateDependencies builds the prerequisite graph for the collection
// and reports missing references and cycles. Missing prerequisites and
// cycles are errors; a prerequisite harder than its dependent is a
// warning. Advisory only: nothing here throws, callers decide whether to
// block unlocking on the report.
func ValidateDependencies(exercises []domain.Exercise) *ValidationReport {
	report := &ValidationReport{
		Valid:           true,
		Errors:          []string{},
		Warnings:        []string{},
		DependencyGraph: make(map[string][]string, len(exercises)),
	}

	byID := make(map[string]*domain.Exercise, len(exercises))
	for i := range exercises {
		byID[exercises[i].ID] = &exercises[i]
	}

	for i := range exercises {
		ex := &exercises[i]
		report.DependencyGraph[ex.ID] = append([]string(nil), ex.Prerequisites...)

		for _, prereq := range ex.Prerequisites {
			dep, ok := byID[prereq]
			if !ok {
				report.Errors = append(report.Errors,
					fmt.Sprintf("exercise %q references missing prerequisite %q", ex.ID, prereq))
				report.Valid = false
				continue
			}
			if dep.Difficulty.Ordinal() > ex.Difficulty.Ordinal() {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("prerequisite %q is more difficult than %q", prereq, ex.ID))
			}
		}
	}

	for _, cycle := range findCycles(exercises, byID) {
		report.Errors = append(report.Errors,
			fmt.Sprintf("circular prerequisite chain: %s", cycle))
		report.Valid = false
	}

	return report
}

// frame is one level of the iterative depth-first traversal
type frame struct {
	id   string
	next int // index of the next prerequisite to explore
}

// findCycles runs an iterative three-color DFS over the prerequisite
// graph, visiting roots in collection order and neighbors in declared
// order so cycle reports are deterministic. The explicit path stack
// reconstructs each cycle as a readable chain; black nodes are never
// re-explored, so every node is finalized exactly once.
func findCycles(exercises []domain.Exercise, byID map[string]*domain.Exercise) []string {
	color := make(map[string]int, len(exercises))
	var cycles []string

	for i := range exercises {
		root := exercises[i].ID
		if color[root] != white {
			continue
		}

		stack := []frame{{id: root}}
		path := []string{root}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			prereqs := byID[top.id].Prerequisites

			if top.next >= len(prereqs) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}

			next := prereqs[top.next]
			top.next++

			dep, ok := byID[next]
			if !ok {
				continue // missing references already reported
			}

			switch color[next] {
			case gray:
				cycles = append(cycles, cycleChain(path, next))
			case white:
				color[next] = gray
				stack = append(stack, frame{id: dep.ID})
				path = append(path, dep.ID)
			}
		}
	}

	return cycles
}

// cycleChain renders the slice of the current path from the repeated
// node through the end, closed back on itself: "a -> b -> c -> a"
func cycleChain(path []string, repeated string) string {
	start := 0
	for i, id := range path {
		if id == repeated {
			start = i
			break
		}
	}

	chain := append(append([]string(nil), path[start:]...), repeated)
	return strings.Join(chain, " -> ")
}
