package server_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionRender struct {
	ID        string    `json:"uuid"`
	UserAgent string    `json:"user_agent"`
	ExpireAt  time.Time `json:"expire_at"`
	Current   bool      `json:"current"`
}

func TestRequestSessionList(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george.abitbol@campus.lan", model.RoleUser)
	session := createSession(ctrl, user)
	createSession(ctrl, user)

	other := createUser(ctrl, "other@campus.lan", model.RoleUser)
	createSession(ctrl, other)

	r.GET("/sessions").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth", "message":"Invalid login credentials."}}`, r.Body.String())
	})

	r.GET("/sessions").SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var list []sessionRender
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &list))
		assert.Len(t, list, 2)

		for _, s := range list {
			if s.Current {
				assert.Equal(t, session.ID, s.ID)
			}
		}
	})
}

func TestRequestSessionRefresh(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george.abitbol@campus.lan", model.RoleUser)
	session := createSession(ctrl, user)

	params := gofight.D{"access_token": session.AccessToken}
	r.POST("/session/refresh").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-parameters", "message":"Please provide all required parameters."}}`, r.Body.String())
	})

	params["refresh_token"] = "trololo"
	r.POST("/session/refresh").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-parameters", "message":"The provided parameters are not valid."}}`, r.Body.String())
	})

	params["refresh_token"] = session.RefreshToken
	r.POST("/session/refresh").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var render struct {
			Session struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			} `json:"session"`
		}
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &render))
		assert.NotEmpty(t, render.Session.AccessToken)
		assert.NotEqual(t, session.AccessToken, render.Session.AccessToken)
		assert.NotEqual(t, session.RefreshToken, render.Session.RefreshToken)
	})

	// The old access token is revoked.
	r.GET("/sessions").SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})
}

func TestRequestSessionDelete(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george.abitbol@campus.lan", model.RoleUser)
	session := createSession(ctrl, user)
	other := createSession(ctrl, user)

	r.DELETE("/session").SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	sessions, err := ctrl.Database.FindSessionsByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, other.ID, sessions[0].ID)

	// The deleted session can not be used anymore.
	r.DELETE("/session").SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})

	r.DELETE("/session/all").SetHeader(authHeader(other)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	sessions, err = ctrl.Database.FindSessionsByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, other.ID, sessions[0].ID)
}
