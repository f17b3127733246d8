package skirmish

import (
	"testing"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollPool_SumsFaces(t *testing.T) {
	die := []Face{{Range: 2, Damage: 1, Surge: 1, Shield: 3}}
	p := rollPool(testutil.NewTestRNG(1), die, 3)

	assert.Equal(t, Pool{Dice: 3, Range: 6, Damage: 3, Surge: 3, Shield: 9, Rolled: true}, p)
	assert.Equal(t, 6, p.EffectiveRange())
	assert.Equal(t, "3d: range 6, damage 3, surge 3, shield 9", p.String())
}

func TestRollPool_AnyMissMisses(t *testing.T) {
	p := rollPool(testutil.NewTestRNG(1), []Face{{Miss: true, Damage: 4}}, 2)
	assert.True(t, p.Missed)
	assert.Equal(t, -1, p.EffectiveRange())
	assert.Equal(t, "2d: miss", p.String())
	assert.Equal(t, "unrolled", Pool{}.String())
}

func TestRollPool_Deterministic(t *testing.T) {
	a, b := testutil.NewTestRNG(21), testutil.NewTestRNG(21)
	for i := 0; i < 10; i++ {
		assert.Equal(t, rollPool(a, BlueDie, 2), rollPool(b, BlueDie, 2))
	}
}

func TestRollPool_FacelessDiePanics(t *testing.T) {
	testutil.AssertPanic(t, func() { rollPool(testutil.NewTestRNG(1), nil, 1) })
}

func TestDieNamed(t *testing.T) {
	tests := []struct {
		name string
		want []Face
	}{
		{"blue", BlueDie},
		{"brown", BrownDie},
		{"grey", GreyDie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DieNamed(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 6)
		})
	}

	_, ok := DieNamed("red")
	assert.False(t, ok)
}
