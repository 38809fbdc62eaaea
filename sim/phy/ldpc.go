package phy

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// CodewordLength is the LDPC codeword length in bits.
const CodewordLength = 672

// infoColumnWeight is the number of checks each information bit joins.
const infoColumnWeight = 3

// Code is a systematic LDPC-style block code with CodewordLength-bit
// codewords: K information bits followed by CodewordLength-K parity bits.
// The parity part of H is dual-diagonal, so encoding is an accumulator.
// A Code is immutable after construction and shared between workers.
type Code struct {
	K int

	infoRows   [][]int // per check: information bit indices
	checkEdges [][]int // per check: edge ids
	varEdges   [][]int // per variable: edge ids
	edgeVar    []int   // per edge: variable index
}

var (
	codesMu sync.Mutex
	codes   = make(map[int]*Code)
)

// InfoLength returns the number of information bits per codeword at codeRate.
func InfoLength(codeRate float64) (int, error) {
	k := codeRate * CodewordLength
	if codeRate <= 0 || codeRate >= 1 || math.Abs(k-math.Round(k)) > 1e-9 {
		return 0, fmt.Errorf("code rate %v does not give a whole number of information bits", codeRate)
	}
	return int(math.Round(k)), nil
}

// CodeFor returns the shared code for codeRate.
func CodeFor(codeRate float64) (*Code, error) {
	k, err := InfoLength(codeRate)
	if err != nil {
		return nil, err
	}
	codesMu.Lock()
	defer codesMu.Unlock()
	if c, ok := codes[k]; ok {
		return c, nil
	}
	c := newCode(k)
	codes[k] = c
	return c, nil
}

// newCode builds the parity-check structure deterministically from k.
func newCode(k int) *Code {
	m := CodewordLength - k
	rng := rand.New(rand.NewSource(int64(k)))

	// Spread information-bit sockets evenly over the checks, then shuffle.
	sockets := make([]int, k*infoColumnWeight)
	for i := range sockets {
		sockets[i] = i % m
	}
	rng.Shuffle(len(sockets), func(i, j int) { sockets[i], sockets[j] = sockets[j], sockets[i] })

	c := &Code{
		K:          k,
		infoRows:   make([][]int, m),
		checkEdges: make([][]int, m),
		varEdges:   make([][]int, CodewordLength),
	}
	for col := 0; col < k; col++ {
		seen := make(map[int]bool, infoColumnWeight)
		for _, row := range sockets[col*infoColumnWeight : (col+1)*infoColumnWeight] {
			if seen[row] {
				continue
			}
			seen[row] = true
			c.infoRows[row] = append(c.infoRows[row], col)
		}
	}
	for row := 0; row < m; row++ {
		for _, col := range c.infoRows[row] {
			c.addEdge(row, col)
		}
		c.addEdge(row, k+row)
		if row > 0 {
			c.addEdge(row, k+row-1)
		}
	}
	return c
}

func (c *Code) addEdge(check, variable int) {
	e := len(c.edgeVar)
	c.edgeVar = append(c.edgeVar, variable)
	c.checkEdges[check] = append(c.checkEdges[check], e)
	c.varEdges[variable] = append(c.varEdges[variable], e)
}

// Encode appends parity to each K-bit block of info. len(info) must be a
// multiple of K.
func (c *Code) Encode(info []uint8) ([]uint8, error) {
	if len(info)%c.K != 0 {
		return nil, fmt.Errorf("%d information bits do not fill %d-bit blocks", len(info), c.K)
	}
	blocks := len(info) / c.K
	out := make([]uint8, 0, blocks*CodewordLength)
	for b := 0; b < blocks; b++ {
		block := info[b*c.K : (b+1)*c.K]
		out = append(out, block...)
		var acc uint8
		for _, cols := range c.infoRows {
			for _, col := range cols {
				acc ^= block[col] & 1
			}
			out = append(out, acc)
		}
	}
	return out, nil
}

// Satisfied reports whether codeword passes every parity check.
func (c *Code) Satisfied(codeword []uint8) bool {
	for _, edges := range c.checkEdges {
		var parity uint8
		for _, e := range edges {
			parity ^= codeword[c.edgeVar[e]]
		}
		if parity != 0 {
			return false
		}
	}
	return true
}

// minSum decodes one codeword of channel LLRs with (normalized) min-sum
// flooding. alpha scales check-to-variable messages (1 = plain min-sum).
// Returns the hard-decision codeword and the iterations run.
func (c *Code) minSum(llr []float64, maxIterations int, earlyExit bool, alpha float64) ([]uint8, int) {
	post := make([]float64, CodewordLength)
	hard := make([]uint8, CodewordLength)
	copy(post, llr)
	harden(post, hard)
	if earlyExit && c.Satisfied(hard) {
		return hard, 0
	}

	c2v := make([]float64, len(c.edgeVar))
	v2c := make([]float64, len(c.edgeVar))
	iterations := 0
	for it := 0; it < maxIterations; it++ {
		iterations = it + 1

		for v, edges := range c.varEdges {
			for _, e := range edges {
				v2c[e] = post[v] - c2v[e]
			}
		}

		for _, edges := range c.checkEdges {
			sign := 1.0
			min1, min2 := math.Inf(1), math.Inf(1)
			minEdge := -1
			for _, e := range edges {
				x := v2c[e]
				if x < 0 {
					sign = -sign
					x = -x
				}
				if x < min1 {
					min2 = min1
					min1 = x
					minEdge = e
				} else if x < min2 {
					min2 = x
				}
			}
			for _, e := range edges {
				mag := min1
				if e == minEdge {
					mag = min2
				}
				if math.IsInf(mag, 1) {
					mag = 0
				}
				s := sign
				if v2c[e] < 0 {
					s = -s
				}
				c2v[e] = alpha * s * mag
			}
		}

		for v, edges := range c.varEdges {
			sum := llr[v]
			for _, e := range edges {
				sum += c2v[e]
			}
			post[v] = sum
		}
		harden(post, hard)
		if earlyExit && c.Satisfied(hard) {
			break
		}
	}
	return hard, iterations
}

// harden maps LLRs to bits: negative means 1.
func harden(llr []float64, bits []uint8) {
	for i, x := range llr {
		if x < 0 {
			bits[i] = 1
		} else {
			bits[i] = 0
		}
	}
}
