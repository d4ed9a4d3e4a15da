package models

// CustomerRecord is a read-only customer row from the directory.
type CustomerRecord struct {
	Ref         string   `json:"ref"`
	Name        string   `json:"name"`
	AccountRefs []string `json:"account_refs"`
	// AllowedTransferRefs may be empty when the customer never registered
	// any third-party transfer accounts.
	AllowedTransferRefs []string `json:"allowed_transfer_refs"`
}
