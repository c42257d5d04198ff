package retention

import "time"

type (
	// An ItemMarked reports an item scheduled for deletion by the inactivity scan.
	ItemMarked struct {
		ItemID         string    `json:"item_id"`
		Title          string    `json:"title"`
		OwnerID        string    `json:"owner_id"`
		LastActivityAt time.Time `json:"last_activity_at"`
	}

	// An ItemWarned reports a warning email attempt for a scheduled item.
	ItemWarned struct {
		ItemID        string `json:"item_id"`
		Title         string `json:"title"`
		OwnerID       string `json:"owner_id"`
		DaysRemaining int    `json:"days_remaining"`
		EmailSent     bool   `json:"email_sent"`
		Err           string `json:"error,omitempty"`
	}

	// An ItemPurged reports the hard deletion of an item and its dependents.
	ItemPurged struct {
		ItemID               string `json:"item_id"`
		Title                string `json:"title"`
		OwnerID              string `json:"owner_id"`
		ImageDeleted         bool   `json:"image_deleted"`
		ConversationsDeleted int    `json:"conversations_deleted"`
		MessagesDeleted      int    `json:"messages_deleted"`
		NotificationsDeleted int    `json:"notifications_deleted"`
		ClaimsDeleted        int    `json:"claims_deleted"`
		Success              bool   `json:"success"`
		Err                  string `json:"error,omitempty"`
	}

	// A UserMarked reports a user scheduled for deletion by the marking scan.
	UserMarked struct {
		UserID   string `json:"user_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Strategy string `json:"strategy"`
	}

	// A UserWarned reports a warning email attempt for a scheduled user.
	UserWarned struct {
		UserID        string `json:"user_id"`
		Email         string `json:"email"`
		DaysRemaining int    `json:"days_remaining"`
		EmailSent     bool   `json:"email_sent"`
		Err           string `json:"error,omitempty"`
	}

	// A UserPurged reports the hard deletion of a user and all its dependents.
	UserPurged struct {
		UserID               string `json:"user_id"`
		Email                string `json:"email"`
		ItemsDeleted         int    `json:"items_deleted"`
		ConversationsDeleted int    `json:"conversations_deleted"`
		MessagesDeleted      int    `json:"messages_deleted"`
		NotificationsDeleted int    `json:"notifications_deleted"`
		ImagesDeleted        int    `json:"images_deleted"`
		ClaimsDeleted        int    `json:"claims_deleted"`
		SessionsDeleted      int    `json:"sessions_deleted"`
		Success              bool   `json:"success"`
		Err                  string `json:"error,omitempty"`
	}

	// A CascadeResult counts the dependent records removed with an item.
	CascadeResult struct {
		ConversationsDeleted int `json:"conversations_deleted"`
		MessagesDeleted      int `json:"messages_deleted"`
		NotificationsDeleted int `json:"notifications_deleted"`
		ClaimsDeleted        int `json:"claims_deleted"`
	}
)
