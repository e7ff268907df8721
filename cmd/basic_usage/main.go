// Command basic_usage is a self-test/demo harness ported from
// examples/basic_usage.cpp: keygen once, then exercise encryption,
// every homomorphic op, a batch of algebraic identities, depth/
// structural scenarios, and text round-trips, printing one line per
// check and exiting 1 if any failed.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/hashicorp/go-multierror"

	"pvachfhe/cipher"
	"pvachfhe/commit"
	"pvachfhe/decrypt"
	"pvachfhe/encrypt"
	"pvachfhe/homo"
	"pvachfhe/internal/config"
	"pvachfhe/keygen"
	"pvachfhe/text"
)

var (
	testNum int
	pass    int
	fail    int
	errs    *multierror.Error
)

func test(name string) {
	testNum++
	fmt.Printf("\n - %d. %s -\n", testNum, name)
}

func check(cond bool, msg string) {
	if cond {
		pass++
		fmt.Printf("   ok: %s\n", msg)
		return
	}
	fail++
	fmt.Printf("   FAIL: %s\n", msg)
	errs = multierror.Append(errs, fmt.Errorf("%s", msg))
}

func dec(pk *cipher.PubKey, sk *cipher.SecKey, c cipher.Cipher) uint64 {
	v, err := decrypt.DecValue(pk, sk, c)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("dec_value: %w", err))
		return 0
	}
	return v.Lo
}

func add(pk *cipher.PubKey, a, b cipher.Cipher) cipher.Cipher {
	c, err := homo.Add(pk, a, b)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("ct_add: %w", err))
	}
	return c
}

func sub(pk *cipher.PubKey, a, b cipher.Cipher) cipher.Cipher {
	c, err := homo.Sub(pk, a, b)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("ct_sub: %w", err))
	}
	return c
}

func mul(pk *cipher.PubKey, a, b cipher.Cipher) cipher.Cipher {
	c, err := homo.Mul(pk, a, b)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("ct_mul: %w", err))
	}
	return c
}

func main() {
	fmt.Println("pvachfhe dev build")
	if config.DebugLevel() >= 1 {
		fmt.Printf("   dbg level: %d\n", config.DebugLevel())
	}

	test("keygen")
	prm := cipher.DefaultParams()
	pk, sk := keygen.Generate(prm)
	fmt.Printf("   H = %x\n", pk.HDigest[:8])
	fmt.Printf("   m = %d, B = %d\n", prm.MBits, prm.B)
	if config.DebugLevel() >= 2 {
		fmt.Printf("   prf_k[4]: %x %x %x %x\n", sk.PRFK[0], sk.PRFK[1], sk.PRFK[2], sk.PRFK[3])
		fmt.Printf("   lpn_s: %d bits\n", len(sk.LPNSBits)*64)
	}

	test("enc / dec")
	a, b := uint64(42), uint64(17)
	ca := encrypt.EncValue(pk, sk, 1, a)
	cb := encrypt.EncValue(pk, sk, 2, b)
	check(dec(pk, sk, ca) == a, "dec(42) = 42")
	check(dec(pk, sk, cb) == b, "dec(17) = 17")

	test("zero / one")
	c0 := encrypt.EncValue(pk, sk, 3, 0)
	c1 := encrypt.EncValue(pk, sk, 4, 1)
	check(dec(pk, sk, c0) == 0, "dec(0) = 0")
	check(dec(pk, sk, c1) == 1, "dec(1) = 1")

	test("x + 0 = x")
	check(dec(pk, sk, add(pk, ca, c0)) == a, "42 + 0 = 42")

	test("x * 1 = x")
	check(dec(pk, sk, mul(pk, ca, c1)) == a, "42 * 1 = 42")

	test("x * 0 = 0")
	check(dec(pk, sk, mul(pk, ca, c0)) == 0, "42 * 0 = 0")

	test("x - x = 0")
	check(dec(pk, sk, sub(pk, ca, ca)) == 0, "42 - 42 = 0")

	test("commut")
	cAB := add(pk, ca, cb)
	cBA := add(pk, cb, ca)
	check(dec(pk, sk, cAB) == dec(pk, sk, cBA), "a + b = b + a")
	check(dec(pk, sk, mul(pk, ca, cb)) == dec(pk, sk, mul(pk, cb, ca)), "a * b = b * a")

	test("assoc")
	vc := uint64(7)
	cc := encrypt.EncValue(pk, sk, 5, vc)
	cABc := add(pk, add(pk, ca, cb), cc)
	cAbc := add(pk, ca, add(pk, cb, cc))
	check(dec(pk, sk, cABc) == dec(pk, sk, cAbc), "(a + b) + c = a + (b + c)")
	cABcMul := mul(pk, mul(pk, ca, cb), cc)
	cAbcMul := mul(pk, ca, mul(pk, cb, cc))
	check(dec(pk, sk, cABcMul) == dec(pk, sk, cAbcMul), "(a * b) * c = a * (b * c)")

	test("distrib")
	cBpc := add(pk, cb, cc)
	cAbpc := mul(pk, ca, cBpc)
	cAbAc := add(pk, mul(pk, ca, cb), mul(pk, ca, cc))
	left, right := dec(pk, sk, cAbpc), dec(pk, sk, cAbAc)
	check(left == right, fmt.Sprintf("a * (b + c) = a*b + a*c = %d", left))

	test("(a + b)^2 = a^2 + 2ab + b^2")
	cApb := add(pk, ca, cb)
	cApbSq := mul(pk, cApb, cApb)
	cASq := mul(pk, ca, ca)
	cBSq := mul(pk, cb, cb)
	cAbProd := mul(pk, ca, cb)
	c2ab := add(pk, cAbProd, cAbProd)
	cRhs := add(pk, add(pk, cASq, c2ab), cBSq)
	check(dec(pk, sk, cApbSq) == dec(pk, sk, cRhs), fmt.Sprintf("%d = %d", dec(pk, sk, cApbSq), dec(pk, sk, cRhs)))

	test("(a - b)(a + b) = a^2 - b^2")
	cAmb := sub(pk, ca, cb)
	cDiffProd := mul(pk, cAmb, cApb)
	cSqDiff := sub(pk, cASq, cBSq)
	dp, sd := dec(pk, sk, cDiffProd), dec(pk, sk, cSqDiff)
	check(dp == sd, fmt.Sprintf("%d = %d", dp, sd))

	test("poly f(x) = x^3 + 2x^2 + 3x + 4")
	x := uint64(5)
	cx := encrypt.EncValue(pk, sk, 6, x)
	cv2 := encrypt.EncValue(pk, sk, 7, 2)
	cv3 := encrypt.EncValue(pk, sk, 8, 3)
	cv4 := encrypt.EncValue(pk, sk, 9, 4)
	cx2 := mul(pk, cx, cx)
	cx3 := mul(pk, cx2, cx)
	cPoly := add(pk, add(pk, add(pk, cx3, mul(pk, cv2, cx2)), mul(pk, cv3, cx)), cv4)
	polyR := dec(pk, sk, cPoly)
	polyE := x*x*x + 2*x*x + 3*x + 4
	check(polyR == polyE, fmt.Sprintf("f(5) = %d", polyE))

	test("depth x^8")
	cx1 := encrypt.EncValue(pk, sk, 10, 2)
	cx2d := mul(pk, cx1, cx1)
	cx4 := mul(pk, cx2d, cx2d)
	cx8 := mul(pk, cx4, cx4)
	check(dec(pk, sk, cx8) == 256, "2^8 = 256")
	fmt.Printf("   edges: x^1 = %d, x^2 = %d, x^4 = %d, x^8 = %d\n", len(cx1.E), len(cx2d.E), len(cx4.E), len(cx8.E))

	test("depth x^16")
	cx16 := mul(pk, cx8, cx8)
	check(dec(pk, sk, cx16) == 65536, "2^16 = 65536")
	fmt.Printf("   edges = %d, layers = %d\n", len(cx16.E), len(cx16.L))

	test("rand 10 pairs")
	rng := rand.New(rand.NewSource(12345))
	for i := 0; i < 10; i++ {
		r1, r2 := uint64(rng.Intn(1000)), uint64(rng.Intn(1000))
		cr1 := encrypt.EncValue(pk, sk, uint64(1000+i*2), r1)
		cr2 := encrypt.EncValue(pk, sk, uint64(1001+i*2), r2)
		sumD := dec(pk, sk, add(pk, cr1, cr2))
		prodD := dec(pk, sk, mul(pk, cr1, cr2))
		ok := sumD == r1+r2 && prodD == r1*r2
		if ok {
			pass++
		} else {
			fail++
			errs = multierror.Append(errs, fmt.Errorf("rand pair %d failed", i))
		}
		status := "ok"
		if !ok {
			status = "FAIL"
		}
		fmt.Printf("   [%d] %d + %d = %d, %d * %d = %d %s\n", i, r1, r2, sumD, r1, r2, prodD, status)
	}

	test("fib(10)")
	fibP := encrypt.EncValue(pk, sk, 2000, 0)
	fibC := encrypt.EncValue(pk, sk, 2001, 1)
	for i := 2; i <= 10; i++ {
		fibN := add(pk, fibP, fibC)
		fibP, fibC = fibC, fibN
	}
	check(dec(pk, sk, fibC) == 55, "fib(10) = 55")
	fmt.Printf("   edges = %d, layers = %d\n", len(fibC.E), len(fibC.L))

	test("6!")
	fact := encrypt.EncValue(pk, sk, 3000, 1)
	for i := uint64(2); i <= 6; i++ {
		fact = mul(pk, fact, encrypt.EncValue(pk, sk, 3000+i, i))
	}
	check(dec(pk, sk, fact) == 720, "6! = 720")
	fmt.Printf("   edges = %d, layers = %d\n", len(fact.E), len(fact.L))

	test("sum of sq 1..5")
	sumSq := encrypt.EncValue(pk, sk, 4000, 0)
	for i := uint64(1); i <= 5; i++ {
		ci := encrypt.EncValue(pk, sk, 4000+i, i)
		sumSq = add(pk, sumSq, mul(pk, ci, ci))
	}
	check(dec(pk, sk, sumSq) == 55, "1 + 4 + 9 + 16 + 25 = 55")

	test("nested ((a + b) * c - a) * b")
	va, vb, vc2 := uint64(3), uint64(5), uint64(7)
	cva := encrypt.EncValue(pk, sk, 5000, va)
	cvb := encrypt.EncValue(pk, sk, 5001, vb)
	cvc := encrypt.EncValue(pk, sk, 5002, vc2)
	cNest := mul(pk, sub(pk, mul(pk, add(pk, cva, cvb), cvc), cva), cvb)
	nestR := dec(pk, sk, cNest)
	nestE := ((va+vb)*vc2 - va) * vb
	check(nestR == nestE, fmt.Sprintf("((3 + 5) * 7 - 3) * 5 = %d", nestE))

	test("diff ct same val")
	ca1 := encrypt.EncValue(pk, sk, 6000, 100)
	ca2 := encrypt.EncValue(pk, sk, 6001, 100)
	check(dec(pk, sk, ca1) == dec(pk, sk, ca2), "both = 100")
	check(ca1.E[0].W.Lo != ca2.E[0].W.Lo, "diff rnd")
	fmt.Printf("   w1 = %#x, w2 = %#x\n", ca1.E[0].W.Lo, ca2.E[0].W.Lo)

	test("commit uniq")
	cm1 := commit.CommitCt(pk, ca1)
	cm2 := commit.CommitCt(pk, ca2)
	check(cm1 != cm2, "diff ct -> diff commit")
	fmt.Printf("   c1 = %x\n", cm1[:8])
	fmt.Printf("   c2 = %x\n", cm2[:8])

	test("text ascii")
	ascii := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	asciiChunks := text.EncText(pk, sk, 7000, ascii)
	asciiGot, _ := text.DecText(pk, sk, asciiChunks, len(ascii))
	check(asciiGot == ascii, "ascii roundtrip")

	test("text special")
	special := `!@#$%^&*()_+-=[]{}|;':",./<>?` + "`~"
	specialChunks := text.EncText(pk, sk, 7100, special)
	specialGot, _ := text.DecText(pk, sk, specialChunks, len(special))
	check(specialGot == special, "special roundtrip")

	test("text utf8")
	utf8 := "hello world 123"
	utf8Chunks := text.EncText(pk, sk, 7200, utf8)
	utf8Got, _ := text.DecText(pk, sk, utf8Chunks, len(utf8))
	check(utf8Got == utf8, "utf8 roundtrip")

	test("text empty")
	emptyChunks := text.EncText(pk, sk, 7300, "")
	emptyGot, _ := text.DecText(pk, sk, emptyChunks, 0)
	check(emptyGot == "", "empty roundtrip")

	test("perf 100 adds")
	perfSum := encrypt.EncValue(pk, sk, 8000, 0)
	for i := uint64(0); i < 100; i++ {
		perfSum = add(pk, perfSum, encrypt.EncValue(pk, sk, 8001+i, i))
	}
	check(dec(pk, sk, perfSum) == 4950, "sum(0..99) = 4950")
	fmt.Printf("   edges = %d\n", len(perfSum.E))

	test("perf 10 muls")
	perfProd := encrypt.EncValue(pk, sk, 9000, 1)
	for i := 0; i < 10; i++ {
		perfProd = mul(pk, perfProd, encrypt.EncValue(pk, sk, 9001+uint64(i), 2))
	}
	check(dec(pk, sk, perfProd) == 1024, "2^10 = 1024")
	fmt.Printf("   edges = %d, layers = %d\n", len(perfProd.E), len(perfProd.L))

	test("large val")
	large := uint64(123456789)
	check(dec(pk, sk, encrypt.EncValue(pk, sk, 9500, large)) == large, "enc / dec 123456789")

	fmt.Println("\n___________________")
	fmt.Printf("results: %d passed, %d failed\n", pass, fail)
	fmt.Println("___________________")

	if fail > 0 {
		if errs != nil {
			fmt.Fprintln(os.Stderr, errs)
		}
		os.Exit(1)
	}
}
