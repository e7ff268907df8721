// Package cipher holds the ciphertext data model: the public scheme
// Params, the Layer DAG, the Edge multiset, Cipher itself, the key
// types PubKey/SecKey, and the budget/compaction utilities every
// homomorphic operation gates through.
package cipher

import (
	"fmt"

	"pvachfhe/bitvec"
	"pvachfhe/field"
)

// Domain-separation tags, opaque 4-byte-ish ASCII strings mixed into
// every XOF initialisation to keep unrelated derivations independent.
const (
	DomHGen   = "hf|h"
	DomXSeed  = "hf|sx"
	DomNoise  = "hf|sn"
	DomPRFLPN = "hf|pr"
	DomPRFR1  = "hf|p1"
	DomPRFR2  = "hf|p2"
	DomPRFR3  = "hf|p3"
	DomToep   = "hf|tp"
	DomZTag   = "hf|zt"
	DomCommit = "hf|cm"
)

// Params are the public scheme parameters, fixed at keygen time.
type Params struct {
	B      int // modulus for edge indices and the plaintext range
	MBits  int // width of per-edge carrier vector s
	NBits  int // reserved; unused by this core (see keygen collaborator)
	HColWt int
	XColWt int
	ErrWt  int

	NoiseEntropyBits float64
	Tuple2Fraction   float64
	DepthSlopeBits   float64
	EdgeBudget       int

	LPNn      int // secret bit length
	LPNt      int // rows
	LPNTauNum int
	LPNTauDen int
}

// DefaultParams returns the scheme's fixed default parameter set.
func DefaultParams() Params {
	return Params{
		B:                127,
		MBits:            8192,
		NBits:            16384,
		HColWt:           192,
		XColWt:           128,
		ErrWt:            128,
		NoiseEntropyBits: 80.0,
		Tuple2Fraction:   0.55,
		DepthSlopeBits:   10.0,
		EdgeBudget:       800000,
		LPNn:             2048,
		LPNt:             4096,
		LPNTauNum:        1,
		LPNTauDen:        8,
	}
}

// Nonce128 is a pair of u64 words drawn from the CSPRNG at each
// BASE-layer creation.
type Nonce128 struct {
	Lo uint64
	Hi uint64
}

// RSeed uniquely identifies the R-mask of a BASE layer.
type RSeed struct {
	ZTag  uint64
	Nonce Nonce128
}

// Rule tags a Layer as BASE or PROD.
type Rule uint8

const (
	RuleBase Rule = 0
	RuleProd Rule = 1
)

// Layer is a ciphertext layer. For RuleBase, Seed is meaningful; for
// RuleProd, PA and PB (both < this layer's own index in Cipher.L) are.
// A flat struct rather than an interface: the DAG has exactly two
// shapes and no virtual dispatch is needed to fold over it.
type Layer struct {
	Rule Rule
	Seed RSeed
	PA   uint32
	PB   uint32
}

// Sign is an edge's contribution sign.
type Sign uint8

const (
	SignP Sign = 0
	SignM Sign = 1
)

// SignVal returns +1 for SignP and -1 for SignM.
func SignVal(ch Sign) int {
	if ch == SignP {
		return 1
	}
	return -1
}

// Edge is the atomic unit of a ciphertext: a signed, weighted, masked
// contribution to the decrypted sum at layer LayerID and index Idx.
type Edge struct {
	LayerID uint32
	Idx     uint16 // in [0, B)
	Ch      Sign
	W       field.Fp
	S       bitvec.BitVec // width Params.MBits
}

// Cipher is a Layer DAG plus an Edge multiset.
type Cipher struct {
	L []Layer
	E []Edge
}

// Ubk is the public-key bit permutation and its inverse over [0, m_bits).
type Ubk struct {
	Perm []int
	Inv  []int
}

// PubKey is the public scheme instance.
type PubKey struct {
	Prm       Params
	CanonTag  uint64
	H         []bitvec.BitVec
	Ubk       Ubk
	HDigest   [32]byte
	OmegaB    field.Fp
	PowgB     []field.Fp // PowgB[k] = OmegaB^k, length B
}

// SecKey is the secret scheme instance.
type SecKey struct {
	PRFK      [4]uint64
	LPNSBits  []uint64 // totals >= LPNn bits
}

// EvalKey is the recrypt collaborator's evaluation key: a pool of
// fresh zero-encryptions mixed into a ciphertext to rebalance noise
// density, plus a standing encryption of one.
type EvalKey struct {
	ZeroPool []Cipher
	EncOne   Cipher
}

// ErrBudgetExceeded is returned when |C.E| exceeds Params.EdgeBudget
// after a homomorphic operation. It is terminal: there is no retry at
// this layer, only the recrypt collaborator interleaving avoids it.
type ErrBudgetExceeded struct {
	Tag       string
	EdgeCount int
	Budget    int
}

func (e *ErrBudgetExceeded) Error() string {
	return fmt.Sprintf("pvachfhe: edge budget exceeded after %s: %d edges > budget %d", e.Tag, e.EdgeCount, e.Budget)
}

// ErrMalformedCipher covers DAG-shape violations: a layer DAG cycle, a
// PROD layer referencing a later index, or an edge layer_id out of
// range.
type ErrMalformedCipher struct {
	Reason string
}

func (e *ErrMalformedCipher) Error() string {
	return "pvachfhe: malformed cipher: " + e.Reason
}

// GuardBudget rejects C if its edge count exceeds pk's edge budget.
// Implementations may coalesce edges first; GuardBudget itself does
// not compact — callers that want compaction call CompactEdges first.
func GuardBudget(pk *PubKey, c *Cipher, tag string) error {
	if len(c.E) > pk.Prm.EdgeBudget {
		return &ErrBudgetExceeded{Tag: tag, EdgeCount: len(c.E), Budget: pk.Prm.EdgeBudget}
	}
	return nil
}

// edgeKey identifies edges that may be coalesced: same layer, index,
// and sign.
type edgeKey struct {
	layerID uint32
	idx     uint16
	ch      Sign
}

// CompactEdges sums (layer_id, idx, ch)-identical edges, XOR-ing their
// S fields, producing a new Cipher with the same decryption value. It
// is a pure function of c: c itself is left untouched.
func CompactEdges(c Cipher) Cipher {
	order := make([]edgeKey, 0, len(c.E))
	acc := make(map[edgeKey]*Edge, len(c.E))
	owned := make(map[edgeKey]bool)

	for _, e := range c.E {
		k := edgeKey{layerID: e.LayerID, idx: e.Idx, ch: e.Ch}
		if existing, ok := acc[k]; ok {
			existing.W = field.Add(existing.W, e.W)
			if !owned[k] {
				// The first edge's S still shares its bitset with c.E;
				// copy it before XOR-ing so c is not modified.
				existing.S = bitvec.FromWords(existing.S.NBits(), existing.S.Words())
				owned[k] = true
			}
			existing.S.XorWith(e.S)
			continue
		}
		cp := e
		order = append(order, k)
		acc[k] = &cp
	}

	out := Cipher{L: c.L, E: make([]Edge, 0, len(order))}
	for _, k := range order {
		out.E = append(out.E, *acc[k])
	}
	return out
}

// ValidateShape checks the DAG invariants from section 3: every edge's
// LayerID indexes an L entry, and every PROD layer's PA/PB reference
// strictly earlier positions.
func ValidateShape(c Cipher) error {
	n := uint32(len(c.L))
	for k, l := range c.L {
		if l.Rule != RuleProd {
			continue
		}
		if l.PA >= uint32(k) || l.PB >= uint32(k) {
			return &ErrMalformedCipher{Reason: fmt.Sprintf("layer %d PROD references non-earlier index (pa=%d, pb=%d)", k, l.PA, l.PB)}
		}
	}
	for _, e := range c.E {
		if e.LayerID >= n {
			return &ErrMalformedCipher{Reason: fmt.Sprintf("edge layer_id %d out of range (|L|=%d)", e.LayerID, n)}
		}
	}
	return nil
}
