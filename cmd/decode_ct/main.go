// Command decode_ct is a ciphertext/key file decoder ported from
// tests/decode_ct.cpp: it loads seed.ct (and pk.bin/sk.bin when
// present) from a directory and prints what it finds, decrypting and
// hex-dumping the recovered bytes when a secret key is available.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"pvachfhe/decrypt"
	"pvachfhe/field"
	"pvachfhe/serialize"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func hexdump(data []byte, max int) {
	n := len(data)
	if n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		fmt.Printf("%02x", data[i])
		if (i+1)%16 == 0 {
			fmt.Println()
		} else if (i+1)%8 == 0 {
			fmt.Print("  ")
		} else {
			fmt.Print(" ")
		}
	}
	if len(data) > max {
		fmt.Printf("... [%d bytes total]", len(data))
	}
	fmt.Println()
}

func printable(data []byte) {
	out := make([]byte, len(data))
	for i, c := range data {
		if c >= 32 && c < 127 {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	fmt.Println(string(out))
}

func main() {
	dir := "bounty_data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	fmt.Println("- decode_ct -")
	fmt.Printf("dir: %s\n\n", dir)

	if !fileExists(dir) {
		fmt.Println("dir not found")
		os.Exit(1)
	}

	ctPath := filepath.Join(dir, "seed.ct")
	pkPath := filepath.Join(dir, "pk.bin")
	skPath := filepath.Join(dir, "sk.bin")

	hasCt, hasPk, hasSk := fileExists(ctPath), fileExists(pkPath), fileExists(skPath)

	fmt.Printf("seed.ct: %s\n", yesno(hasCt))
	fmt.Printf("pk.bin:  %s\n", yesno(hasPk))
	fmt.Printf("sk.bin:  %s\n\n", yesno(hasSk))

	if !hasCt {
		fmt.Println("no ciphertext")
		os.Exit(1)
	}

	ctFile, err := os.Open(ctPath)
	if err != nil {
		fmt.Printf("ct load failed: %v\n", err)
		os.Exit(1)
	}
	defer ctFile.Close()

	cts, err := serialize.ReadCiphers(ctFile)
	if err != nil {
		fmt.Printf("ct load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("loaded %d CTs\n", len(cts))

	if !hasPk {
		fmt.Println("no pk - cannot dec")
		os.Exit(1)
	}

	pkFile, err := os.Open(pkPath)
	if err != nil {
		fmt.Printf("pk load failed: %v\n", err)
		os.Exit(1)
	}
	defer pkFile.Close()

	pk, err := serialize.ReadPubKey(pkFile)
	if err != nil {
		fmt.Printf("pk load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("pk.B = %d pk.H=%d\n", pk.Prm.B, len(pk.H))

	if !hasSk {
		fmt.Println("\nno sk - cannot dec")
		fmt.Println("ct info:")
		for i := 0; i < len(cts) && i < 5; i++ {
			fmt.Printf("  ct[%d]: L=%d E=%d\n", i, len(cts[i].L), len(cts[i].E))
		}
		return
	}

	skFile, err := os.Open(skPath)
	if err != nil {
		fmt.Printf("sk load failed: %v\n", err)
		os.Exit(1)
	}
	defer skFile.Close()

	sk, err := serialize.ReadSecKey(skFile)
	if err != nil {
		fmt.Printf("sk load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sk.s = %d\n\n", len(sk.LPNSBits))

	fmt.Println("- decode -")
	fmt.Println()

	var rawBytes []byte
	rawFps := make([]field.Fp, 0, len(cts))

	for i, c := range cts {
		val, err := decrypt.DecValue(pk, sk, c)
		if err != nil {
			fmt.Printf("ct[%d]: dec error: %v\n", i, err)
			val = field.Zero
		}
		rawFps = append(rawFps, val)

		if i == 0 {
			fmt.Printf("ct[0]: lo = %d hi = %d\n", val.Lo, val.Hi)
			continue
		}

		var block [15]byte
		lo, hi := val.Lo, val.Hi
		for j := 0; j < 15; j++ {
			sh := uint(j * 8)
			if sh < 64 {
				block[j] = byte(lo >> sh)
			} else {
				block[j] = byte(hi >> (sh - 64))
			}
		}
		rawBytes = append(rawBytes, block[:]...)
	}

	fmt.Println("\nraw Fp values:")
	for i := 0; i < len(rawFps) && i < 8; i++ {
		fmt.Printf("[%d] lo = %x hi = %x\n", i, rawFps[i].Lo, rawFps[i].Hi)
	}

	var expectedLen uint64
	if len(rawFps) > 0 {
		expectedLen = rawFps[0].Lo
	}
	actualLen := int(expectedLen)
	if actualLen > len(rawBytes) {
		actualLen = len(rawBytes)
	}

	fmt.Printf("\nexpected len: %d\n", expectedLen)
	fmt.Printf("raw bytes: %d\n", len(rawBytes))
	fmt.Printf("using len: %d\n\n", actualLen)

	fmt.Println("hex dump:")
	hexdump(rawBytes[:actualLen], 64)

	fmt.Println("\nprintable:")
	result := string(rawBytes[:actualLen])
	printable([]byte(result))

	fmt.Printf("\nraw string:\n%q\n", result)
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
