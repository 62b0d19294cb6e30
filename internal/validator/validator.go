package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/axon/pkg/domain"
)

// ErrInvalidSchematic wraps every structural problem found by ValidateSchematic.
var ErrInvalidSchematic = errors.New("invalid schematic")

// ValidateSchematic checks a persisted schematic for dead edges and nodes
// unreachable from its Ingress. Nested subgraphs are checked too.
func ValidateSchematic(s *domain.Schematic) error {
	var problems []string
	validate(s, s.Name, &problems)
	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidSchematic, strings.Join(problems, "\n- "))
	}
	return nil
}

func validate(s *domain.Schematic, path string, problems *[]string) {
	if s == nil || len(s.Nodes) == 0 {
		*problems = append(*problems, fmt.Sprintf("%s: no nodes", path))
		return
	}
	if s.SchemaVersion != "" && s.SchemaVersion != domain.SchemaVersion {
		*problems = append(*problems, fmt.Sprintf("%s: unsupported schema version %q", path, s.SchemaVersion))
	}
	if s.Nodes[0].Kind != domain.NodeIngress {
		*problems = append(*problems, fmt.Sprintf("%s: first node %q is %s, not Ingress", path, s.Nodes[0].Label, s.Nodes[0].Kind))
	}

	known := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if known[n.ID] {
			*problems = append(*problems, fmt.Sprintf("%s: duplicate node id %q", path, n.ID))
		}
		known[n.ID] = true
		if n.Kind == domain.NodeSubgraph {
			validate(n.Subgraph, path+"/"+n.Label, problems)
		}
	}

	adjacency := make(map[string][]string)
	for _, e := range s.Edges {
		if !known[e.From] {
			*problems = append(*problems, fmt.Sprintf("%s: edge from missing node %q", path, e.From))
			continue
		}
		if !known[e.To] {
			*problems = append(*problems, fmt.Sprintf("%s: edge to missing node %q", path, e.To))
			continue
		}
		if e.Kind == domain.EdgeBranch && e.BranchID == "" {
			*problems = append(*problems, fmt.Sprintf("%s: branch edge %s -> %s without branch id", path, e.From, e.To))
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	// Crawl from the Ingress.
	visited := make(map[string]bool)
	queue := []string{s.Nodes[0].ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, adjacency[current]...)
	}
	for _, n := range s.Nodes {
		if !visited[n.ID] {
			*problems = append(*problems, fmt.Sprintf("%s: unreachable node %q (%s)", path, n.Label, n.ID))
		}
	}
}
