package entity

// Claim represents a reimbursement claim flowing through the approval workflow
type Claim struct {
	WorkflowRecord

	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}
