package model

import "time"

// A Session holds the tokens authenticating a logged-in user.
type Session struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID       string    `json:"user_id"    msgpack:"user_id" storm:"index"`
	UserAgent    string    `json:"user_agent" msgpack:"user_agent"`
	ExpireAt     time.Time `json:"expire_at"  msgpack:"expire_at"`
	AccessToken  string    `json:"-"          msgpack:"access_token"  storm:"unique"`
	RefreshToken string    `json:"-"          msgpack:"refresh_token" storm:"unique"`
}
