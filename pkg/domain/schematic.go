package domain

import "time"

// SchemaVersion is the version of the serialized Schematic format.
const SchemaVersion = "1.0"

// NodeKind classifies a schematic node.
type NodeKind string

const (
	NodeIngress  NodeKind = "Ingress"
	NodeAtom     NodeKind = "Atom"
	NodeSynapse  NodeKind = "Synapse"
	NodeEgress   NodeKind = "Egress"
	NodeSubgraph NodeKind = "Subgraph"
)

// EdgeKind classifies a schematic edge.
type EdgeKind string

const (
	EdgeLinear EdgeKind = "Linear"
	EdgeBranch EdgeKind = "Branch"
	EdgeJump   EdgeKind = "Jump"
	EdgeFault  EdgeKind = "Fault"
)

// Node is one composition step of a circuit.
type Node struct {
	ID           string     `json:"id"`
	Kind         NodeKind   `json:"kind"`
	Label        string     `json:"label"`
	Description  string     `json:"description,omitempty"`
	InputType    string     `json:"input_type"`
	OutputType   string     `json:"output_type"`
	ResourceType string     `json:"resource_type,omitempty"`
	Subgraph     *Schematic `json:"subgraph,omitempty"`
}

// Edge connects two nodes. Branch edges carry the branch id in BranchID.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Kind     EdgeKind `json:"kind"`
	BranchID string   `json:"branch_id,omitempty"`
	Label    string   `json:"label,omitempty"`
}

// Schematic is the static structure of a circuit, grown in lock-step with its
// executor. It is never executed.
type Schematic struct {
	SchemaVersion string    `json:"schema_version"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	Nodes         []Node    `json:"nodes"`
	Edges         []Edge    `json:"edges"`
}

// LastNode returns the most recently appended node.
func (s *Schematic) LastNode() (Node, bool) {
	if len(s.Nodes) == 0 {
		return Node{}, false
	}
	return s.Nodes[len(s.Nodes)-1], true
}

// Node looks a node up by id, searching nested subgraphs too.
func (s *Schematic) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
		if n.Subgraph != nil {
			if inner, ok := n.Subgraph.Node(id); ok {
				return inner, true
			}
		}
	}
	return Node{}, false
}

// Clone returns a deep copy, including nested subgraphs.
func (s *Schematic) Clone() *Schematic {
	if s == nil {
		return nil
	}
	out := *s
	out.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		n.Subgraph = n.Subgraph.Clone()
		out.Nodes[i] = n
	}
	out.Edges = append([]Edge(nil), s.Edges...)
	return &out
}
