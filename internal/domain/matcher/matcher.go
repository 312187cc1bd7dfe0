// Package matcher scores free-text transaction names against investment
// accounts and their stored matching rules.
//
// Scoring is pure: nothing here touches the store. The service layer feeds
// accounts and patterns in, and persists suggestions from the ranked output.
//
// Example usage:
//
//	m := matcher.New(matcher.DefaultConfig())
//	candidates := m.RankAccounts(txn.Name, accounts, patternsByAccount)
//	if len(candidates) > 0 && candidates[0].Confidence >= m.Config().AutoSuggestThreshold {
//		// materialize a pending suggestion
//	}
package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mkeren/finsight-backend/internal/domain/pattern"
)

// typeKeywords boost a score slightly when the transaction text mentions a
// term characteristic of the account type.
var typeKeywords = map[string][]string{
	"brokerage": {"BROKER", "BROKERS", "SECURITIES", "TRADE", "INVEST"},
	"pension":   {"PENSION", "RETIREMENT", "PROVIDENT"},
	"savings":   {"SAVINGS", "DEPOSIT", "SAVE"},
	"checking":  {"CHECKING", "CURRENT"},
	"crypto":    {"CRYPTO", "BITCOIN", "EXCHANGE"},
}

const keywordBoost = 0.05

// Matcher scores transaction names against accounts.
type Matcher struct {
	config Config
}

// New creates a matcher with the given thresholds.
func New(config Config) *Matcher {
	return &Matcher{config: config}
}

// Config returns the matcher's thresholds.
func (m *Matcher) Config() Config {
	return m.config
}

// Similarity is a normalized edit-distance similarity between two strings:
// 1.0 for identical input (case-insensitive), 0.0 for fully disjoint input.
// Symmetric in its arguments.
func Similarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// MatchAccount scores a transaction name against an account's display name
// and type. Containment of the account name inside the transaction text
// dominates; otherwise the normalized similarity carries the score. A small
// boost applies when the text mentions a keyword typical of the account type.
func MatchAccount(transactionName, accountName, accountType string) float64 {
	txn := strings.ToUpper(strings.TrimSpace(transactionName))
	name := strings.ToUpper(strings.TrimSpace(accountName))
	if txn == "" || name == "" {
		return 0
	}

	var score float64
	if strings.Contains(txn, name) {
		// Scale by how much of the transaction text the account name covers,
		// so "ISRACARD LTD INTERACTIVE BROKERS" vs "Interactive Brokers"
		// still clears the auto-suggest threshold.
		score = 0.8 + 0.2*(float64(len(name))/float64(len(txn)))
	} else {
		score = Similarity(txn, name)
	}

	for _, kw := range typeKeywords[strings.ToLower(accountType)] {
		if strings.Contains(txn, kw) {
			score += keywordBoost
			break
		}
	}

	return clamp01(score)
}

// ScoreAgainstPatterns evaluates every active pattern against the
// transaction name and returns the best score plus the pattern text that
// produced it. A matching exact rule scores 1.0; other matching rules score
// on similarity to the rule's literal text with a floor that keeps any
// genuine rule hit above the surface threshold.
func ScoreAgainstPatterns(transactionName string, patterns []Pattern) (float64, string) {
	var best float64
	var bestText string

	for _, p := range patterns {
		if !p.Active {
			continue
		}
		if !pattern.Matches(p.Kind, p.Text, transactionName) {
			continue
		}

		var score float64
		if p.Kind == pattern.KindExact {
			score = 1.0
		} else {
			literal := pattern.StripWildcards(p.Text)
			score = 0.6 + 0.4*Similarity(transactionName, literal)
		}

		if score > best {
			best = score
			bestText = p.Text
		}
	}

	return clamp01(best), bestText
}

// RankAccounts scores the transaction name against every active account,
// taking the better of the name-based and pattern-based scores, and returns
// candidates above the minimum confidence sorted by confidence descending.
// Ties break on account name ascending so output is deterministic.
func (m *Matcher) RankAccounts(transactionName string, accounts []Account, patternsByAccount map[int64][]Pattern) []Candidate {
	candidates := make([]Candidate, 0, len(accounts))

	for _, acct := range accounts {
		if !acct.Active {
			continue
		}

		nameScore := MatchAccount(transactionName, acct.Name, acct.Type)
		patternScore, patternText := ScoreAgainstPatterns(transactionName, patternsByAccount[acct.ID])

		score := nameScore
		reason := fmt.Sprintf("name similarity with %q", acct.Name)
		if patternScore > nameScore {
			score = patternScore
			reason = fmt.Sprintf("pattern %q", patternText)
		}

		if score <= m.config.MinConfidence {
			continue
		}

		candidates = append(candidates, Candidate{
			AccountID:   acct.ID,
			AccountName: acct.Name,
			Confidence:  score,
			Reason:      reason,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].AccountName < candidates[j].AccountName
	})

	return candidates
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
