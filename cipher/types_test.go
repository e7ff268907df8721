package cipher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pvachfhe/bitvec"
	"pvachfhe/field"
)

func mkEdge(layerID uint32, idx uint16, ch Sign, w uint64) Edge {
	return Edge{LayerID: layerID, Idx: idx, Ch: ch, W: field.FromU64(w), S: bitvec.Make(8)}
}

func TestCompactEdgesSumsDuplicates(t *testing.T) {
	c := Cipher{
		L: []Layer{{Rule: RuleBase}},
		E: []Edge{
			mkEdge(0, 3, SignP, 5),
			mkEdge(0, 3, SignP, 7),
			mkEdge(0, 3, SignM, 1),
		},
	}
	out := CompactEdges(c)
	require.Len(t, out.E, 2)
	for _, e := range out.E {
		if e.Ch == SignP {
			require.True(t, field.Eq(e.W, field.FromU64(12)))
		}
	}
}

func TestValidateShapeRejectsForwardReference(t *testing.T) {
	c := Cipher{L: []Layer{{Rule: RuleBase}, {Rule: RuleProd, PA: 0, PB: 1}}}
	err := ValidateShape(c)
	require.Error(t, err)
}

func TestValidateShapeRejectsOutOfRangeEdge(t *testing.T) {
	c := Cipher{
		L: []Layer{{Rule: RuleBase}},
		E: []Edge{mkEdge(5, 0, SignP, 1)},
	}
	require.Error(t, ValidateShape(c))
}

func TestGuardBudget(t *testing.T) {
	pk := &PubKey{Prm: Params{EdgeBudget: 2}}
	c := &Cipher{E: []Edge{mkEdge(0, 0, SignP, 1), mkEdge(0, 0, SignP, 1), mkEdge(0, 0, SignP, 1)}}
	require.Error(t, GuardBudget(pk, c, "test"))

	pk.Prm.EdgeBudget = 3
	require.NoError(t, GuardBudget(pk, c, "test"))
}
