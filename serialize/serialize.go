// Package serialize implements the fixed binary file format section 6
// names for Ciphers, SecKeys, and PubKeys: a 4-byte magic, a 4-byte
// version, then a byte-exact little-endian encoding of the struct
// ported from tests/decode_ct.cpp's ser/io namespaces.
package serialize

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"pvachfhe/bitvec"
	"pvachfhe/cipher"
	"pvachfhe/field"
)

// Magic values and the shared format version, ported verbatim from the
// original decoder's Magic namespace.
const (
	MagicCT  uint32 = 0x66699666
	MagicSK  uint32 = 0x66666999
	MagicPK  uint32 = 0x06660666
	Version  uint32 = 1
)

func putU32(w io.Writer, x uint32) error { return binary.Write(w, binary.LittleEndian, x) }
func putU64(w io.Writer, x uint64) error { return binary.Write(w, binary.LittleEndian, x) }

func getU32(r io.Reader) (uint32, error) {
	var x uint32
	err := binary.Read(r, binary.LittleEndian, &x)
	return x, err
}

func getU64(r io.Reader) (uint64, error) {
	var x uint64
	err := binary.Read(r, binary.LittleEndian, &x)
	return x, err
}

func putF64(w io.Writer, x float64) error { return binary.Write(w, binary.LittleEndian, x) }

func getF64(r io.Reader) (float64, error) {
	var x float64
	err := binary.Read(r, binary.LittleEndian, &x)
	return x, err
}

func putBv(w io.Writer, v bitvec.BitVec) error {
	if err := putU32(w, uint32(v.NBits())); err != nil {
		return err
	}
	for _, word := range v.Words() {
		if err := putU64(w, word); err != nil {
			return err
		}
	}
	return nil
}

func getBv(r io.Reader) (bitvec.BitVec, error) {
	nbits, err := getU32(r)
	if err != nil {
		return bitvec.BitVec{}, err
	}
	nwords := (int(nbits) + 63) / 64
	words := make([]uint64, nwords)
	for i := range words {
		w, err := getU64(r)
		if err != nil {
			return bitvec.BitVec{}, err
		}
		words[i] = w
	}
	return bitvec.FromWords(uint(nbits), words), nil
}

func putFp(w io.Writer, f field.Fp) error {
	if err := putU64(w, f.Lo); err != nil {
		return err
	}
	return putU64(w, f.Hi)
}

func getFp(r io.Reader) (field.Fp, error) {
	lo, err := getU64(r)
	if err != nil {
		return field.Fp{}, err
	}
	hi, err := getU64(r)
	if err != nil {
		return field.Fp{}, err
	}
	return field.Fp{Lo: lo, Hi: hi}, nil
}

func putLayer(w io.Writer, l cipher.Layer) error {
	if _, err := w.Write([]byte{byte(l.Rule)}); err != nil {
		return err
	}
	if l.Rule == cipher.RuleBase {
		if err := putU64(w, l.Seed.ZTag); err != nil {
			return err
		}
		if err := putU64(w, l.Seed.Nonce.Lo); err != nil {
			return err
		}
		return putU64(w, l.Seed.Nonce.Hi)
	}
	if err := putU32(w, l.PA); err != nil {
		return err
	}
	return putU32(w, l.PB)
}

func getLayer(r io.Reader) (cipher.Layer, error) {
	var ruleByte [1]byte
	if _, err := io.ReadFull(r, ruleByte[:]); err != nil {
		return cipher.Layer{}, err
	}
	l := cipher.Layer{Rule: cipher.Rule(ruleByte[0])}
	if l.Rule == cipher.RuleBase {
		ztag, err := getU64(r)
		if err != nil {
			return cipher.Layer{}, err
		}
		lo, err := getU64(r)
		if err != nil {
			return cipher.Layer{}, err
		}
		hi, err := getU64(r)
		if err != nil {
			return cipher.Layer{}, err
		}
		l.Seed = cipher.RSeed{ZTag: ztag, Nonce: cipher.Nonce128{Lo: lo, Hi: hi}}
		return l, nil
	}
	pa, err := getU32(r)
	if err != nil {
		return cipher.Layer{}, err
	}
	pb, err := getU32(r)
	if err != nil {
		return cipher.Layer{}, err
	}
	l.PA, l.PB = pa, pb
	return l, nil
}

func putEdge(w io.Writer, e cipher.Edge) error {
	if err := putU32(w, e.LayerID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Idx); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(e.Ch), 0}); err != nil {
		return err
	}
	if err := putFp(w, e.W); err != nil {
		return err
	}
	return putBv(w, e.S)
}

func getEdge(r io.Reader) (cipher.Edge, error) {
	lid, err := getU32(r)
	if err != nil {
		return cipher.Edge{}, err
	}
	var idx uint16
	if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
		return cipher.Edge{}, err
	}
	var chPad [2]byte
	if _, err := io.ReadFull(r, chPad[:]); err != nil {
		return cipher.Edge{}, err
	}
	w, err := getFp(r)
	if err != nil {
		return cipher.Edge{}, err
	}
	s, err := getBv(r)
	if err != nil {
		return cipher.Edge{}, err
	}
	return cipher.Edge{LayerID: lid, Idx: idx, Ch: cipher.Sign(chPad[0]), W: w, S: s}, nil
}

func putCipher(w io.Writer, c cipher.Cipher) error {
	if err := putU32(w, uint32(len(c.L))); err != nil {
		return err
	}
	if err := putU32(w, uint32(len(c.E))); err != nil {
		return err
	}
	for _, l := range c.L {
		if err := putLayer(w, l); err != nil {
			return err
		}
	}
	for _, e := range c.E {
		if err := putEdge(w, e); err != nil {
			return err
		}
	}
	return nil
}

func getCipher(r io.Reader) (cipher.Cipher, error) {
	nL, err := getU32(r)
	if err != nil {
		return cipher.Cipher{}, err
	}
	nE, err := getU32(r)
	if err != nil {
		return cipher.Cipher{}, err
	}
	c := cipher.Cipher{L: make([]cipher.Layer, nL), E: make([]cipher.Edge, nE)}
	for i := range c.L {
		c.L[i], err = getLayer(r)
		if err != nil {
			return cipher.Cipher{}, err
		}
	}
	for i := range c.E {
		c.E[i], err = getEdge(r)
		if err != nil {
			return cipher.Cipher{}, err
		}
	}
	return c, nil
}

// WriteCiphers writes a CT-format file: magic, version, count, then
// each Cipher in turn.
func WriteCiphers(w io.Writer, cts []cipher.Cipher) error {
	if err := putU32(w, MagicCT); err != nil {
		return errors.Wrap(err, "serialize: write ct magic")
	}
	if err := putU32(w, Version); err != nil {
		return errors.Wrap(err, "serialize: write ct version")
	}
	if err := putU64(w, uint64(len(cts))); err != nil {
		return errors.Wrap(err, "serialize: write ct count")
	}
	for i, c := range cts {
		if err := putCipher(w, c); err != nil {
			return errors.Wrapf(err, "serialize: write ct[%d]", i)
		}
	}
	return nil
}

// ReadCiphers parses a CT-format file, rejecting a mismatched magic or
// version.
func ReadCiphers(r io.Reader) ([]cipher.Cipher, error) {
	magic, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read ct magic")
	}
	ver, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read ct version")
	}
	if magic != MagicCT || ver != Version {
		return nil, errors.New("serialize: bad ct header")
	}
	n, err := getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read ct count")
	}
	out := make([]cipher.Cipher, n)
	for i := range out {
		out[i], err = getCipher(r)
		if err != nil {
			return nil, errors.Wrapf(err, "serialize: read ct[%d]", i)
		}
	}
	return out, nil
}

// WriteSecKey writes an SK-format file.
func WriteSecKey(w io.Writer, sk *cipher.SecKey) error {
	if err := putU32(w, MagicSK); err != nil {
		return errors.Wrap(err, "serialize: write sk magic")
	}
	if err := putU32(w, Version); err != nil {
		return errors.Wrap(err, "serialize: write sk version")
	}
	for _, k := range sk.PRFK {
		if err := putU64(w, k); err != nil {
			return errors.Wrap(err, "serialize: write sk prf_k")
		}
	}
	if err := putU64(w, uint64(len(sk.LPNSBits))); err != nil {
		return errors.Wrap(err, "serialize: write sk lpn_s_bits length")
	}
	for _, word := range sk.LPNSBits {
		if err := putU64(w, word); err != nil {
			return errors.Wrap(err, "serialize: write sk lpn_s_bits")
		}
	}
	return nil
}

// ReadSecKey parses an SK-format file.
func ReadSecKey(r io.Reader) (*cipher.SecKey, error) {
	magic, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read sk magic")
	}
	ver, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read sk version")
	}
	if magic != MagicSK || ver != Version {
		return nil, errors.New("serialize: bad sk header")
	}
	sk := &cipher.SecKey{}
	for i := range sk.PRFK {
		sk.PRFK[i], err = getU64(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read sk prf_k")
		}
	}
	n, err := getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read sk lpn_s_bits length")
	}
	sk.LPNSBits = make([]uint64, n)
	for i := range sk.LPNSBits {
		sk.LPNSBits[i], err = getU64(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read sk lpn_s_bits")
		}
	}
	return sk, nil
}

// WritePubKey writes a PK-format file.
func WritePubKey(w io.Writer, pk *cipher.PubKey) error {
	if err := putU32(w, MagicPK); err != nil {
		return errors.Wrap(err, "serialize: write pk magic")
	}
	if err := putU32(w, Version); err != nil {
		return errors.Wrap(err, "serialize: write pk version")
	}

	prm := pk.Prm
	for _, x := range []uint32{
		uint32(prm.MBits), uint32(prm.B), uint32(prm.LPNt), uint32(prm.LPNn),
		uint32(prm.LPNTauNum), uint32(prm.LPNTauDen),
	} {
		if err := putU32(w, x); err != nil {
			return errors.Wrap(err, "serialize: write pk params")
		}
	}
	if err := putF64(w, prm.NoiseEntropyBits); err != nil {
		return errors.Wrap(err, "serialize: write pk noise_entropy_bits")
	}
	if err := putF64(w, prm.DepthSlopeBits); err != nil {
		return errors.Wrap(err, "serialize: write pk depth_slope_bits")
	}
	if err := putF64(w, prm.Tuple2Fraction); err != nil {
		return errors.Wrap(err, "serialize: write pk tuple2_fraction")
	}
	if err := putU32(w, uint32(prm.EdgeBudget)); err != nil {
		return errors.Wrap(err, "serialize: write pk edge_budget")
	}
	if err := putU64(w, pk.CanonTag); err != nil {
		return errors.Wrap(err, "serialize: write pk canon_tag")
	}
	if _, err := w.Write(pk.HDigest[:]); err != nil {
		return errors.Wrap(err, "serialize: write pk h_digest")
	}

	if err := putU64(w, uint64(len(pk.H))); err != nil {
		return errors.Wrap(err, "serialize: write pk h length")
	}
	for _, row := range pk.H {
		if err := putBv(w, row); err != nil {
			return errors.Wrap(err, "serialize: write pk h row")
		}
	}

	if err := putU64(w, uint64(len(pk.Ubk.Perm))); err != nil {
		return errors.Wrap(err, "serialize: write pk ubk.perm length")
	}
	for _, v := range pk.Ubk.Perm {
		if err := putU32(w, uint32(v)); err != nil {
			return errors.Wrap(err, "serialize: write pk ubk.perm")
		}
	}
	if err := putU64(w, uint64(len(pk.Ubk.Inv))); err != nil {
		return errors.Wrap(err, "serialize: write pk ubk.inv length")
	}
	for _, v := range pk.Ubk.Inv {
		if err := putU32(w, uint32(v)); err != nil {
			return errors.Wrap(err, "serialize: write pk ubk.inv")
		}
	}

	if err := putFp(w, pk.OmegaB); err != nil {
		return errors.Wrap(err, "serialize: write pk omega_B")
	}
	if err := putU64(w, uint64(len(pk.PowgB))); err != nil {
		return errors.Wrap(err, "serialize: write pk powg_B length")
	}
	for _, f := range pk.PowgB {
		if err := putFp(w, f); err != nil {
			return errors.Wrap(err, "serialize: write pk powg_B")
		}
	}
	return nil
}

// ReadPubKey parses a PK-format file.
func ReadPubKey(r io.Reader) (*cipher.PubKey, error) {
	magic, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk magic")
	}
	ver, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk version")
	}
	if magic != MagicPK || ver != Version {
		return nil, errors.New("serialize: bad pk header")
	}

	var prm cipher.Params
	var mBits, b, lpnT, lpnN, tauNum, tauDen uint32
	for _, p := range []*uint32{&mBits, &b, &lpnT, &lpnN, &tauNum, &tauDen} {
		*p, err = getU32(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read pk params")
		}
	}
	prm.MBits, prm.B, prm.LPNt, prm.LPNn = int(mBits), int(b), int(lpnT), int(lpnN)
	prm.LPNTauNum, prm.LPNTauDen = int(tauNum), int(tauDen)

	prm.NoiseEntropyBits, err = getF64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk noise_entropy_bits")
	}
	prm.DepthSlopeBits, err = getF64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk depth_slope_bits")
	}
	prm.Tuple2Fraction, err = getF64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk tuple2_fraction")
	}

	edgeBudget, err := getU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk edge_budget")
	}
	prm.EdgeBudget = int(edgeBudget)

	pk := &cipher.PubKey{Prm: prm}

	pk.CanonTag, err = getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk canon_tag")
	}
	if _, err := io.ReadFull(r, pk.HDigest[:]); err != nil {
		return nil, errors.Wrap(err, "serialize: read pk h_digest")
	}

	hLen, err := getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk h length")
	}
	pk.H = make([]bitvec.BitVec, hLen)
	for i := range pk.H {
		pk.H[i], err = getBv(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read pk h row")
		}
	}

	permLen, err := getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk ubk.perm length")
	}
	pk.Ubk.Perm = make([]int, permLen)
	for i := range pk.Ubk.Perm {
		v, err := getU32(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read pk ubk.perm")
		}
		pk.Ubk.Perm[i] = int(v)
	}

	invLen, err := getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk ubk.inv length")
	}
	pk.Ubk.Inv = make([]int, invLen)
	for i := range pk.Ubk.Inv {
		v, err := getU32(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read pk ubk.inv")
		}
		pk.Ubk.Inv[i] = int(v)
	}

	pk.OmegaB, err = getFp(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk omega_B")
	}

	powgLen, err := getU64(r)
	if err != nil {
		return nil, errors.Wrap(err, "serialize: read pk powg_B length")
	}
	pk.PowgB = make([]field.Fp, powgLen)
	for i := range pk.PowgB {
		pk.PowgB[i], err = getFp(r)
		if err != nil {
			return nil, errors.Wrap(err, "serialize: read pk powg_B")
		}
	}

	return pk, nil
}
