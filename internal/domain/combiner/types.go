package combiner

import "time"

// Defaults bounding the subset search.
const (
	DefaultTolerance = 0.01
	DefaultMaxSize   = 5
	DefaultMaxNodes  = 100000
)

// Candidate is one expense transaction eligible for combination.
type Candidate struct {
	Identifier string
	Vendor     string
	Name       string
	Amount     float64
	Date       time.Time
	Matched    bool // already linked elsewhere
}

// Request describes one combination search.
type Request struct {
	// Target is the repayment amount to reconcile against. Must be positive.
	Target float64
	// Tolerance is the allowed absolute deviation from Target.
	Tolerance float64
	// MaxSize bounds combination membership. Zero means DefaultMaxSize.
	MaxSize int
	// MaxNodes caps the number of partial subsets examined before the
	// search gives up and reports truncation. Zero means DefaultMaxNodes.
	MaxNodes int
	// IncludeMatched admits candidates that already carry a link.
	IncludeMatched bool
	Candidates     []Candidate
}

// Combination is one subset whose sum lands inside the tolerance window.
type Combination struct {
	Members      []Candidate `json:"members"`
	Sum          float64     `json:"sum"`
	Difference   float64     `json:"difference"` // |Sum - Target|
	AllUnmatched bool        `json:"all_unmatched"`
}

// Result is the full search outcome.
type Result struct {
	Combinations []Combination `json:"combinations"`
	Examined     int           `json:"examined"`
	// Truncated is set when the node cap stopped the search early; the
	// result is then best-effort rather than exhaustive.
	Truncated bool `json:"truncated"`
}
