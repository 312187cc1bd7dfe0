// Package combiner searches bounded-size subsets of expense transactions
// whose amounts sum to a repayment amount within a tolerance.
//
// The search is pure and CPU-bound: it performs no I/O and is safe to run
// inside a request. Worst case is exponential in pool size, so both the
// subset size and the total number of partial subsets examined are capped;
// hitting the cap flags the result as truncated instead of silently
// returning a partial answer.
package combiner

import (
	"math"
	"sort"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

// floatEps absorbs float64 representation error on the tolerance boundary,
// so a subset summing to exactly target±tolerance is always included.
const floatEps = 1e-9

// Find enumerates subsets of size 1..MaxSize whose absolute amounts sum
// into [Target-Tolerance, Target+Tolerance].
//
// Output ordering is deterministic: ascending |sum-target|, then ascending
// size, then the members' (date, identifier) order.
func Find(req Request) (*Result, error) {
	if req.Target <= 0 {
		return nil, domainerror.Validation("target amount must be positive")
	}
	if req.Tolerance < 0 {
		return nil, domainerror.Validation("tolerance must not be negative")
	}
	maxSize := req.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}
	if maxSize < 1 {
		return nil, domainerror.Validation("max combination size must be at least 1")
	}
	maxNodes := req.MaxNodes
	if maxNodes == 0 {
		maxNodes = DefaultMaxNodes
	}

	upper := req.Target + req.Tolerance
	lower := req.Target - req.Tolerance

	// Pre-filter: drop linked candidates unless asked for, and drop anything
	// whose amount alone already overshoots the window.
	pool := make([]Candidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if c.Matched && !req.IncludeMatched {
			continue
		}
		if math.Abs(c.Amount) > upper+floatEps {
			continue
		}
		pool = append(pool, c)
	}

	// Natural (date, identifier) order makes both the DFS and the member
	// lists reproducible for identical inputs.
	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].Date.Equal(pool[j].Date) {
			return pool[i].Date.Before(pool[j].Date)
		}
		return pool[i].Identifier < pool[j].Identifier
	})

	amounts := make([]float64, len(pool))
	for i, c := range pool {
		amounts[i] = math.Abs(c.Amount)
	}

	// suffix[i] is the sum of amounts[i:]; lets the search abandon a branch
	// that can no longer reach the lower bound.
	suffix := make([]float64, len(pool)+1)
	for i := len(pool) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + amounts[i]
	}

	s := &search{
		pool:     pool,
		amounts:  amounts,
		suffix:   suffix,
		lower:    lower,
		upper:    upper,
		target:   req.Target,
		maxSize:  maxSize,
		maxNodes: maxNodes,
	}
	s.run(0, 0, nil)

	sortCombinations(s.found)

	return &Result{
		Combinations: s.found,
		Examined:     s.examined,
		Truncated:    s.truncated,
	}, nil
}

type search struct {
	pool     []Candidate
	amounts  []float64
	suffix   []float64
	lower    float64
	upper    float64
	target   float64
	maxSize  int
	maxNodes int

	examined  int
	truncated bool
	found     []Combination
}

// run extends the partial subset identified by picked (indices into pool)
// with candidates at or after index start.
func (s *search) run(start int, sum float64, picked []int) {
	if s.truncated {
		return
	}

	for i := start; i < len(s.pool); i++ {
		if s.examined >= s.maxNodes {
			s.truncated = true
			return
		}
		s.examined++

		next := sum + s.amounts[i]
		if next > s.upper+floatEps {
			// Amounts are same-signed; extending further only grows the sum.
			continue
		}
		// Even taking every remaining candidate cannot reach the window.
		if next+s.suffix[i+1] < s.lower-floatEps {
			return
		}

		picked = append(picked, i)
		if next >= s.lower-floatEps {
			s.record(picked, next)
		}
		if len(picked) < s.maxSize {
			s.run(i+1, next, picked)
		}
		picked = picked[:len(picked)-1]
	}
}

func (s *search) record(picked []int, sum float64) {
	members := make([]Candidate, len(picked))
	allUnmatched := true
	for i, idx := range picked {
		members[i] = s.pool[idx]
		if s.pool[idx].Matched {
			allUnmatched = false
		}
	}
	s.found = append(s.found, Combination{
		Members:      members,
		Sum:          sum,
		Difference:   math.Abs(sum - s.target),
		AllUnmatched: allUnmatched,
	})
}

func sortCombinations(combos []Combination) {
	sort.Slice(combos, func(i, j int) bool {
		a, b := combos[i], combos[j]
		if math.Abs(a.Difference-b.Difference) > floatEps {
			return a.Difference < b.Difference
		}
		if len(a.Members) != len(b.Members) {
			return len(a.Members) < len(b.Members)
		}
		// Lexicographic member order; members are already in (date,
		// identifier) order within each combination.
		for k := 0; k < len(a.Members); k++ {
			am, bm := a.Members[k], b.Members[k]
			if !am.Date.Equal(bm.Date) {
				return am.Date.Before(bm.Date)
			}
			if am.Identifier != bm.Identifier {
				return am.Identifier < bm.Identifier
			}
		}
		return false
	})
}
