package observability

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/axon/pkg/domain"
)

func TestBucket_DeterministicAndInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("bus-%d", i)
		b := Bucket(id)
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, BucketCount)
		assert.Equal(t, b, Bucket(id))
		assert.Equal(t, ShouldSample(id, 0.3), ShouldSample(id, 0.3))
	}
}

func TestShouldSample_Bounds(t *testing.T) {
	assert.False(t, ShouldSample("anything", 0))
	assert.True(t, ShouldSample("anything", 1))
}

func TestShouldSample_RoughlyProportional(t *testing.T) {
	sampled := 0
	const n = 5000
	for i := 0; i < n; i++ {
		if ShouldSample(fmt.Sprintf("req-%d", i), 0.25) {
			sampled++
		}
	}
	assert.InDelta(t, 0.25, float64(sampled)/n, 0.05)
}

func TestPolicy_Forces(t *testing.T) {
	kinds := []domain.Kind{domain.KindNext, domain.KindBranch, domain.KindJump, domain.KindEmit, domain.KindFault}
	tests := []struct {
		policy Policy
		forced []domain.Kind
	}{
		{PolicyOff, nil},
		{PolicyFaultOnly, []domain.Kind{domain.KindFault}},
		{PolicyFaultBranchEmit, []domain.Kind{domain.KindFault, domain.KindBranch, domain.KindEmit}},
		{PolicyDefault, []domain.Kind{domain.KindFault, domain.KindBranch}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			for _, k := range kinds {
				assert.Equal(t, contains(tt.forced, k), tt.policy.Forces(k), k.String())
			}
		})
	}
}

func contains(ks []domain.Kind, k domain.Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyFaultOnly, ParsePolicy(" FAULT_ONLY "))
	assert.Equal(t, PolicyOff, ParsePolicy("off"))
	assert.Equal(t, PolicyDefault, ParsePolicy(""))
	assert.Equal(t, PolicyDefault, ParsePolicy("whatever"))
}

func TestParseWriteMode(t *testing.T) {
	m, err := ParseWriteMode("")
	assert.NoError(t, err)
	assert.Equal(t, ModeOverwrite, m)

	m, err = ParseWriteMode("Rotate")
	assert.NoError(t, err)
	assert.Equal(t, ModeRotate, m)

	_, err = ParseWriteMode("truncate")
	assert.Error(t, err)
}
