package dto

// CreateAccountRequest creates an investment account.
type CreateAccountRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// CreatePatternRequest adds a matching rule to an account.
type CreatePatternRequest struct {
	Pattern string `json:"pattern" binding:"required"`
	Kind    string `json:"kind"`
}

// AnalyzeRequest asks for account suggestions for one transaction.
type AnalyzeRequest struct {
	Identifier    string `json:"identifier" binding:"required"`
	Vendor        string `json:"vendor" binding:"required"`
	ClearResolved bool   `json:"clear_resolved"`
}

// AnalyzeBatchRequest runs suggestion analysis over a vendor's unmatched
// repayments.
type AnalyzeBatchRequest struct {
	Vendor        string `json:"vendor" binding:"required"`
	ClearResolved bool   `json:"clear_resolved"`
}

// ActionRequest resolves a pending suggestion.
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// CreateLinkRequest links a transaction to an account manually.
type CreateLinkRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Vendor     string `json:"vendor" binding:"required"`
	AccountID  int64  `json:"account_id" binding:"required"`
}

// CombinationsRequest asks which expense subsets could explain a repayment.
type CombinationsRequest struct {
	Identifier     string  `json:"identifier" binding:"required"`
	Vendor         string  `json:"vendor" binding:"required"`
	Tolerance      float64 `json:"tolerance"`
	MaxSize        int     `json:"max_size"`
	IncludeMatched bool    `json:"include_matched"`
	ProcessedDate  string  `json:"processed_date"`
	From           string  `json:"from"`
	To             string  `json:"to"`
}
