package models

// AccountRecord is a read-only row from the account directory.
type AccountRecord struct {
	Ref       string  `json:"ref"`        // opaque directory reference
	AccountID string  `json:"account_id"` // formatted NNN-NNNNNNN-N
	PIN       string  `json:"-"`          // not serialized
	Balance   float64 `json:"balance"`
	OwnerRef  string  `json:"owner_ref"`
}
