package testutil

import (
	"math/rand"
	"strconv"
)

// DamagedPDF is a structurally broken variant of a MinimalPDF document.
type DamagedPDF struct {
	Name string
	Data []byte
	// Hopeless is set when too little of the document survives for any
	// reader to recover a page from it.
	Hopeless bool
}

// DamagedPDFs returns truncated and byte-mutated copies of src. The mutations
// use a fixed seed so every run sees the same inputs.
func DamagedPDFs(src []byte) []DamagedPDF {
	var out []DamagedPDF
	for _, n := range []int{9, 20, 64, 99, 100, len(src) / 2, len(src) - 40, len(src) - 8} {
		if n <= 0 || n >= len(src) {
			continue
		}
		out = append(out, DamagedPDF{
			Name:     "truncated_" + strconv.Itoa(n),
			Data:     append([]byte(nil), src[:n]...),
			Hopeless: n < 100,
		})
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 24; i++ {
		b := append([]byte(nil), src...)
		for j := 0; j < 1+i%4; j++ {
			b[rng.Intn(len(b))] = byte(rng.Intn(256))
		}
		out = append(out, DamagedPDF{Name: "mutated_" + strconv.Itoa(i), Data: b})
	}

	for i := 0; i < 8; i++ {
		b := append([]byte(nil), src[:len(src)-10*(i+1)]...)
		b[rng.Intn(len(b))] = '('
		out = append(out, DamagedPDF{Name: "truncated_mutated_" + strconv.Itoa(i), Data: b})
	}
	return out
}
