package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon"
	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

func TestValidateSchematic_BuiltCircuits(t *testing.T) {
	step := axon.Named("Step", func(_ context.Context, in int, _ struct{}, _ *bus.Bus) domain.Outcome[int, error] {
		return domain.Next[int, error](in)
	})
	sub := axon.Start[int, struct{}, error]("sub").Then(step)
	circuit := axon.ThenAxon(axon.Start[int, struct{}, error]("main").Then(step).Branch("vip", "VIP?"), sub)

	assert.NoError(t, ValidateSchematic(circuit.Schematic()))
}

func TestValidateSchematic_Problems(t *testing.T) {
	tests := []struct {
		name    string
		s       *domain.Schematic
		message string
	}{
		{
			name:    "Empty",
			s:       &domain.Schematic{Name: "empty"},
			message: "no nodes",
		},
		{
			name: "Broken Link",
			s: &domain.Schematic{
				Name:  "broken",
				Nodes: []domain.Node{{ID: "in", Kind: domain.NodeIngress}},
				Edges: []domain.Edge{{From: "in", To: "ghost", Kind: domain.EdgeLinear}},
			},
			message: `edge to missing node "ghost"`,
		},
		{
			name: "Unreachable",
			s: &domain.Schematic{
				Name:  "island",
				Nodes: []domain.Node{{ID: "in", Kind: domain.NodeIngress}, {ID: "lost", Label: "Lost"}},
			},
			message: `unreachable node "Lost"`,
		},
		{
			name: "Missing Ingress",
			s: &domain.Schematic{
				Name:  "headless",
				Nodes: []domain.Node{{ID: "a", Kind: domain.NodeAtom, Label: "A"}},
			},
			message: "not Ingress",
		},
		{
			name: "Bad Subgraph",
			s: &domain.Schematic{
				Name: "outer",
				Nodes: []domain.Node{
					{ID: "in", Kind: domain.NodeIngress},
					{ID: "sub", Kind: domain.NodeSubgraph, Label: "inner", Subgraph: &domain.Schematic{}},
				},
				Edges: []domain.Edge{{From: "in", To: "sub", Kind: domain.EdgeLinear}},
			},
			message: "outer/inner: no nodes",
		},
		{
			name: "Branch Without ID",
			s: &domain.Schematic{
				Name:  "branchy",
				Nodes: []domain.Node{{ID: "in", Kind: domain.NodeIngress}, {ID: "syn", Kind: domain.NodeSynapse}},
				Edges: []domain.Edge{{From: "in", To: "syn", Kind: domain.EdgeBranch}},
			},
			message: "without branch id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchematic(tt.s)
			require.ErrorIs(t, err, ErrInvalidSchematic)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
