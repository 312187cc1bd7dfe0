package service

import (
	"time"

	"github.com/mkeren/finsight-backend/internal/domain/combiner"
	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

// Date windows used to pre-filter expense candidates. When the statement's
// processing date is known the window covers the billing cycle ending there;
// otherwise it is anchored on the repayment itself, since card expenses
// settle up to two billing cycles before the repayment and occasionally post
// a few days after it.
const (
	statementWindowBefore = 40 * 24 * time.Hour
	expenseWindowBefore   = 60 * 24 * time.Hour
	expenseWindowAfter    = 5 * 24 * time.Hour
)

// expenseWindow resolves the candidate date range. Explicit bounds win over
// the processed-date window, which wins over the repayment-anchored default.
func expenseWindow(repaymentDate, processedDate, from, to time.Time) (time.Time, time.Time) {
	if from.IsZero() && to.IsZero() && !processedDate.IsZero() {
		return processedDate.Add(-statementWindowBefore), processedDate
	}

	anchor := repaymentDate
	if from.IsZero() && !anchor.IsZero() {
		from = anchor.Add(-expenseWindowBefore)
	}
	if to.IsZero() && !anchor.IsZero() {
		to = anchor.Add(expenseWindowAfter)
	}
	return from, to
}

// CombinationRequest asks which expense subsets could explain a repayment.
type CombinationRequest struct {
	// Identifier/Vendor name the repayment transaction. The repayment's
	// amount becomes the target and its date anchors the expense window.
	Identifier string
	Vendor     string
	// Tolerance overrides the configured default when positive.
	Tolerance float64
	// MaxSize overrides the configured default when positive.
	MaxSize int
	// IncludeMatched admits already-linked expenses into the pool.
	IncludeMatched bool
	// ProcessedDate, when known, anchors the window on the statement's
	// billing cycle instead of the repayment date.
	ProcessedDate time.Time
	// From/To override the smart date window when set.
	From time.Time
	To   time.Time
}

// FindMatchingCombinations loads the expense pool around the repayment and
// runs the bounded subset search over it.
func (s *Service) FindMatchingCombinations(req CombinationRequest) (*combiner.Result, error) {
	if req.Identifier == "" || req.Vendor == "" {
		return nil, domainerror.Validation("transaction identifier and vendor are required")
	}

	repayment, err := s.store.GetTransaction(req.Identifier, req.Vendor)
	if err != nil {
		return nil, err
	}
	if repayment.Amount <= 0 {
		return nil, domainerror.Validation("combination target must be a positive repayment")
	}

	from, to := expenseWindow(repayment.Date, req.ProcessedDate, req.From, req.To)

	expenses, err := s.store.GetAvailableExpenses(req.Vendor, storage.TransactionFilters{
		From: from,
		To:   to,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]combiner.Candidate, 0, len(expenses))
	for _, e := range expenses {
		// The repayment itself is in the vendor's transaction list; it is
		// never a candidate for explaining itself.
		if e.Identifier == repayment.Identifier && e.Vendor == repayment.Vendor {
			continue
		}
		if e.Amount >= 0 {
			continue
		}
		candidates = append(candidates, combiner.Candidate{
			Identifier: e.Identifier,
			Vendor:     e.Vendor,
			Name:       e.Name,
			Amount:     e.Amount,
			Date:       e.Date,
			Matched:    e.Matched,
		})
	}

	tolerance := req.Tolerance
	if tolerance <= 0 {
		tolerance = s.cfg.Engine.Combinations.Tolerance
	}
	maxSize := req.MaxSize
	if maxSize <= 0 {
		maxSize = s.cfg.Engine.Combinations.MaxSize
	}

	result, err := combiner.Find(combiner.Request{
		Target:         repayment.Amount,
		Tolerance:      tolerance,
		MaxSize:        maxSize,
		MaxNodes:       s.cfg.Engine.Combinations.MaxNodes,
		IncludeMatched: req.IncludeMatched,
		Candidates:     candidates,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("combination search finished",
		"identifier", req.Identifier,
		"vendor", req.Vendor,
		"target", repayment.Amount,
		"pool", len(candidates),
		"found", len(result.Combinations),
		"truncated", result.Truncated,
	)

	return result, nil
}

// UnmatchedRepayments returns the vendor's positive transactions that carry
// no link yet.
func (s *Service) UnmatchedRepayments(vendor string, from, to time.Time) ([]storage.Transaction, error) {
	if vendor == "" {
		return nil, domainerror.Validation("vendor is required")
	}
	return s.store.GetUnmatchedRepayments(vendor, storage.TransactionFilters{From: from, To: to})
}

// ExpenseQuery narrows the expense candidate listing.
type ExpenseQuery struct {
	Vendor string
	// RepaymentDate anchors the default window when From/To are unset.
	RepaymentDate time.Time
	// ProcessedDate switches to the statement billing-cycle window.
	ProcessedDate time.Time
	From          time.Time
	To            time.Time
}

// AvailableExpenses returns the vendor's expense candidates inside the
// resolved date window, each annotated with its link state.
func (s *Service) AvailableExpenses(q ExpenseQuery) ([]storage.ExpenseCandidate, error) {
	if q.Vendor == "" {
		return nil, domainerror.Validation("vendor is required")
	}

	from, to := expenseWindow(q.RepaymentDate, q.ProcessedDate, q.From, q.To)
	return s.store.GetAvailableExpenses(q.Vendor, storage.TransactionFilters{From: from, To: to})
}

// MatchingStats reports linked vs unlinked totals for a vendor.
func (s *Service) MatchingStats(vendor string) (*storage.MatchingStats, error) {
	if vendor == "" {
		return nil, domainerror.Validation("vendor is required")
	}
	return s.store.GetMatchingStats(vendor)
}

// WeeklyMatchingStats buckets the vendor's link counts by week.
func (s *Service) WeeklyMatchingStats(vendor string, from, to time.Time) ([]storage.WeeklyMatchingStats, error) {
	if vendor == "" {
		return nil, domainerror.Validation("vendor is required")
	}
	return s.store.GetWeeklyMatchingStats(vendor, storage.TransactionFilters{From: from, To: to})
}
