package models

// AuthAccount is the session composite persisted once an account ID has been
// accepted. Its presence after a PIN match is what marks a call as
// authenticated.
type AuthAccount struct {
	AccountID string  `json:"account_id"`
	PIN       string  `json:"pin"`
	Balance   float64 `json:"balance"`
	OwnerRef  string  `json:"owner_ref"`
}

// AccountCandidate pairs a directory reference with its dialable account ID.
type AccountCandidate struct {
	Ref       string `json:"ref"`
	AccountID string `json:"account_id"`
}

// Transfer menu partitions.
const (
	PartitionOwn     = "own"
	PartitionAllowed = "allowed"
)

// AccountCandidates holds both transfer partitions computed during account
// selection, stored transiently for the next screen to render.
type AccountCandidates struct {
	Own     []AccountCandidate `json:"own"`
	Allowed []AccountCandidate `json:"allowed"`
	// Selected records which partition the caller asked for, so the
	// follow-up screen can resolve a positional digit back to an account.
	Selected string `json:"selected,omitempty"`
}

// Rendered returns the partition that was presented to the caller.
func (c *AccountCandidates) Rendered() []AccountCandidate {
	if c.Selected == PartitionAllowed {
		return c.Allowed
	}
	return c.Own
}
