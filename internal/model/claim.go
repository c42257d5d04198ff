package model

const (
	// ClaimPending is the initial status of a claim.
	ClaimPending = "pending"
	// ClaimApproved marks a claim accepted by the item's owner or a keeper.
	ClaimApproved = "approved"
	// ClaimRejected marks a refused claim.
	ClaimRejected = "rejected"
)

// A Claim represents a database record.
type Claim struct {
	Base `msgpack:",inline" storm:"inline"`

	ItemID     string `json:"item_id"     msgpack:"item_id"     storm:"index"`
	ClaimantID string `json:"claimant_id" msgpack:"claimant_id" storm:"index"`
	Status     string `json:"status"      msgpack:"status"      storm:"index"`
	Message    string `json:"message"     msgpack:"message"`
}
