package piece

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// SourceKind discriminates the piece generation strategies.
type SourceKind int

const (
	// KindUniform draws each shape independently and uniformly.
	KindUniform SourceKind = iota
	// KindStock draws from a multiset of shape copies, restocking at a
	// threshold. Multiplicity 1 with threshold 0 is the common 7-bag.
	KindStock
	// KindRecency weighs shapes by how long ago each was last drawn.
	KindRecency
	// KindBalanceRelative weighs shapes by e^-count of total draws.
	KindBalanceRelative
	// KindCycle repeats a fixed pattern of shapes forever.
	KindCycle
)

// Source is a lazy, seedable sequence of tetromino shapes. The five
// strategies share no behavior, so Source is a tagged variant rather than an
// interface hierarchy.
type Source struct {
	kind SourceKind

	// Stock
	piecesLeft       [7]uint32
	multiplicity     uint32
	restockThreshold uint32

	// Recency
	lastGenerated [7]uint32
	snap          float64

	// BalanceRelative
	relativeCounts [7]uint32

	// Cycle
	pattern []Tetromino
	index   int
}

// NewUniformSource creates a uniformly random source.
func NewUniformSource() *Source {
	return &Source{kind: KindUniform}
}

// NewBagSource creates the common 7-bag source.
func NewBagSource() *Source {
	s, _ := NewStockSource(1, 0)
	return s
}

// NewStockSource creates a stock source holding multiplicity copies of each
// shape, restocking all shapes once the total count reaches the threshold.
// The threshold must be smaller than 7×multiplicity.
func NewStockSource(multiplicity, restockThreshold uint32) (*Source, error) {
	if multiplicity == 0 {
		return nil, fmt.Errorf("stock source: multiplicity must be positive")
	}
	if restockThreshold >= 7*multiplicity {
		return nil, fmt.Errorf("stock source: restock threshold %d must be below %d", restockThreshold, 7*multiplicity)
	}
	s := &Source{
		kind:             KindStock,
		multiplicity:     multiplicity,
		restockThreshold: restockThreshold,
	}
	for i := range s.piecesLeft {
		s.piecesLeft[i] = multiplicity
	}
	return s, nil
}

// NewRecencySource creates a recency source with the default snap exponent.
func NewRecencySource() *Source {
	return NewRecencySourceWith(2.5)
}

// NewRecencySourceWith creates a recency source. The snap exponent controls
// how strongly long-unseen shapes are favored.
func NewRecencySourceWith(snap float64) *Source {
	s := &Source{kind: KindRecency, snap: snap}
	for i := range s.lastGenerated {
		s.lastGenerated[i] = 1
	}
	return s
}

// NewBalanceSource creates a source balancing total draw counts.
func NewBalanceSource() *Source {
	return &Source{kind: KindBalanceRelative}
}

// NewCycleSource creates a source repeating the given pattern forever.
func NewCycleSource(pattern []Tetromino) (*Source, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("cycle source: pattern must not be empty")
	}
	return &Source{kind: KindCycle, pattern: append([]Tetromino(nil), pattern...)}, nil
}

// Kind returns the generation strategy of the source.
func (s *Source) Kind() SourceKind {
	return s.kind
}

// Next draws the next shape. Drawing with a given PRNG state is
// deterministic.
func (s *Source) Next(rng *rand.Rand) Tetromino {
	switch s.kind {
	case KindUniform:
		return Tetrominoes[rng.Intn(7)]

	case KindStock:
		var weights [7]float64
		for i, n := range s.piecesLeft {
			weights[i] = float64(n)
		}
		idx := weightedIndex(rng, weights[:])
		s.piecesLeft[idx]--
		total := uint32(0)
		for _, n := range s.piecesLeft {
			total += n
		}
		if total == s.restockThreshold {
			for i := range s.piecesLeft {
				s.piecesLeft[i] += s.multiplicity
			}
		}
		return Tetrominoes[idx]

	case KindRecency:
		var weights [7]float64
		for i, n := range s.lastGenerated {
			weights[i] = math.Pow(float64(n), s.snap)
		}
		idx := weightedIndex(rng, weights[:])
		for i := range s.lastGenerated {
			s.lastGenerated[i]++
		}
		s.lastGenerated[idx] = 0
		return Tetrominoes[idx]

	case KindBalanceRelative:
		var weights [7]float64
		for i, n := range s.relativeCounts {
			weights[i] = math.Exp(-float64(n))
		}
		idx := weightedIndex(rng, weights[:])
		s.relativeCounts[idx]++
		min := s.relativeCounts[0]
		for _, n := range s.relativeCounts[1:] {
			if n < min {
				min = n
			}
		}
		if min > 0 {
			for i := range s.relativeCounts {
				s.relativeCounts[i] -= min
			}
		}
		return Tetrominoes[idx]

	case KindCycle:
		t := s.pattern[s.index]
		s.index++
		if s.index == len(s.pattern) {
			s.index = 0
		}
		return t

	default:
		panic(fmt.Sprintf("piece: unknown source kind %d", s.kind))
	}
}

// Clone returns a source with the same parameters but internal draw counters
// reset to their defaults, so a cloned configuration starts a fresh sequence.
func (s *Source) Clone() *Source {
	switch s.kind {
	case KindUniform:
		return NewUniformSource()
	case KindStock:
		c, err := NewStockSource(s.multiplicity, s.restockThreshold)
		if err != nil {
			panic(err)
		}
		return c
	case KindRecency:
		return NewRecencySourceWith(s.snap)
	case KindBalanceRelative:
		return NewBalanceSource()
	case KindCycle:
		c, err := NewCycleSource(s.pattern)
		if err != nil {
			panic(err)
		}
		return c
	default:
		panic(fmt.Sprintf("piece: unknown source kind %d", s.kind))
	}
}

// weightedIndex samples an index proportionally to the given non-negative
// weights. At least one weight must be positive.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	// Rounding left r at or above zero; take the last positive weight.
	for i := len(weights) - 1; i > 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return 0
}

// sourceJSON is the serialized form of a Source. Field order is fixed so the
// encoding is canonical.
type sourceJSON struct {
	Kind             string      `json:"kind"`
	PiecesLeft       *[7]uint32  `json:"pieces_left,omitempty"`
	Multiplicity     uint32      `json:"multiplicity,omitempty"`
	RestockThreshold uint32      `json:"restock_threshold,omitempty"`
	LastGenerated    *[7]uint32  `json:"last_generated,omitempty"`
	Snap             float64     `json:"snap,omitempty"`
	RelativeCounts   *[7]uint32  `json:"relative_counts,omitempty"`
	Pattern          []Tetromino `json:"pattern,omitempty"`
	Index            int         `json:"index,omitempty"`
}

var sourceKindNames = map[SourceKind]string{
	KindUniform:         "uniform",
	KindStock:           "stock",
	KindRecency:         "recency",
	KindBalanceRelative: "balance_relative",
	KindCycle:           "cycle",
}

// MarshalJSON encodes the source including its internal counters, so a
// restored game resumes mid-bag exactly.
func (s *Source) MarshalJSON() ([]byte, error) {
	out := sourceJSON{Kind: sourceKindNames[s.kind]}
	switch s.kind {
	case KindStock:
		pl := s.piecesLeft
		out.PiecesLeft = &pl
		out.Multiplicity = s.multiplicity
		out.RestockThreshold = s.restockThreshold
	case KindRecency:
		lg := s.lastGenerated
		out.LastGenerated = &lg
		out.Snap = s.snap
	case KindBalanceRelative:
		rc := s.relativeCounts
		out.RelativeCounts = &rc
	case KindCycle:
		out.Pattern = s.pattern
		out.Index = s.index
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a source from its MarshalJSON form.
func (s *Source) UnmarshalJSON(data []byte) error {
	var in sourceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("invalid piece source: %w", err)
	}
	switch in.Kind {
	case "uniform":
		*s = *NewUniformSource()
	case "stock":
		src, err := NewStockSource(in.Multiplicity, in.RestockThreshold)
		if err != nil {
			return err
		}
		if in.PiecesLeft != nil {
			src.piecesLeft = *in.PiecesLeft
		}
		*s = *src
	case "recency":
		src := NewRecencySourceWith(in.Snap)
		if in.LastGenerated != nil {
			src.lastGenerated = *in.LastGenerated
		}
		*s = *src
	case "balance_relative":
		src := NewBalanceSource()
		if in.RelativeCounts != nil {
			src.relativeCounts = *in.RelativeCounts
		}
		*s = *src
	case "cycle":
		src, err := NewCycleSource(in.Pattern)
		if err != nil {
			return err
		}
		src.index = in.Index
		*s = *src
	default:
		return fmt.Errorf("invalid piece source kind %q", in.Kind)
	}
	return nil
}
