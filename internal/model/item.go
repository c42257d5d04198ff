package model

import "time"

const (
	// StatusLost marks an item reported as lost by its owner.
	StatusLost = "lost"
	// StatusFound marks an item handed in at the lost-and-found desk.
	StatusFound = "found"
	// StatusClaimed marks an item with an approved claim.
	StatusClaimed = "claimed"
	// StatusReturned marks an item given back to its owner.
	StatusReturned = "returned"
)

// DeletionReasonInactivity is set on items scheduled for deletion by the
// inactivity scan.
const DeletionReasonInactivity = "inactivity"

// An Item represents a database record and the rendered API response.
type Item struct {
	Base `msgpack:",inline" storm:"inline"`

	Title       string `json:"title"       msgpack:"title"`
	Description string `json:"description" msgpack:"description"`
	Category    string `json:"category"    msgpack:"category" storm:"index"`
	Location    string `json:"location"    msgpack:"location"`
	Status      string `json:"status"      msgpack:"status"   storm:"index"`

	// PostedBy is cleared when the owner account is purged before the item.
	PostedBy string `json:"posted_by" msgpack:"posted_by" storm:"index"`
	ImageURL string `json:"image_url" msgpack:"image_url"`

	// LastActivityAt is refreshed by any user-facing interaction and drives
	// the inactivity scan.
	LastActivityAt time.Time `json:"last_activity_at" msgpack:"last_activity_at" storm:"index"`

	// Retention fields. ScheduledForDeletion is true iff DeletionScheduledAt is set.
	ScheduledForDeletion bool       `json:"scheduled_for_deletion"          msgpack:"scheduled_for_deletion" storm:"index"`
	DeletionScheduledAt  *time.Time `json:"deletion_scheduled_at,omitempty" msgpack:"deletion_scheduled_at"`
	DeletionReason       string     `json:"deletion_reason,omitempty"       msgpack:"deletion_reason"`
}
