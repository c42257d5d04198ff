package serializer

import (
	"time"

	"github.com/campusfound/campusfound/internal/model"
)

// Tokens serializes the render of a session's token pair.
func Tokens(m *model.Session, accessExpireAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"access_token":       m.AccessToken,
		"refresh_token":      m.RefreshToken,
		"access_expiration":  accessExpireAt.UTC(),
		"refresh_expiration": m.ExpireAt.UTC(),
	}
}

// Session serializes the render of a session.
func Session(m *model.Session, current bool) map[string]interface{} {
	return map[string]interface{}{
		"uuid":       m.ID,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
		"user_agent": m.UserAgent,
		"expire_at":  m.ExpireAt.UTC(),
		"current":    current,
	}
}

// Sessions serializes the render of sessions.
func Sessions(m []*model.Session, currentID string) []map[string]interface{} {
	sessions := make([]map[string]interface{}, len(m))
	for i, s := range m {
		sessions[i] = Session(s, s.ID == currentID)
	}
	return sessions
}
