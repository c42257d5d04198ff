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

type itemListRender struct {
	Items []model.Item `json:"items"`
}

func TestRequestItemCreate(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george.abitbol@campus.lan", model.RoleUser)
	session := createSession(ctrl, user)

	params := gofight.D{
		"title":       "Blue umbrella",
		"description": "Left near the main stairs",
		"category":    "accessories",
		"location":    "Building A",
	}

	r.POST("/items").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})

	r.POST("/items").SetHeader(authHeader(session)).SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		var item model.Item
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &item))
		assert.Equal(t, "Blue umbrella", item.Title)
		assert.Equal(t, model.StatusLost, item.Status)
		assert.Equal(t, user.ID, item.PostedBy)
		assert.False(t, item.LastActivityAt.IsZero())
	})

	r.POST("/items").SetHeader(authHeader(session)).SetJSON(gofight.D{"title": "x", "status": "teleported"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Unknown item status."}}`, r.Body.String())
	})
}

func TestRequestItemList(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george.abitbol@campus.lan", model.RoleUser)
	now := time.Now().UTC()

	visible := &model.Item{Title: "Keys", Category: "keys", Status: model.StatusFound, PostedBy: user.ID, LastActivityAt: now}
	require.NoError(t, ctrl.Database.Save(visible))

	other := &model.Item{Title: "Scarf", Category: "clothes", Status: model.StatusLost, PostedBy: user.ID, LastActivityAt: now}
	require.NoError(t, ctrl.Database.Save(other))

	// Scheduled items are hidden from the public listing.
	hidden := &model.Item{Title: "Old poster", Category: "misc", Status: model.StatusLost, PostedBy: user.ID, LastActivityAt: now}
	require.NoError(t, ctrl.Database.Save(hidden))
	hidden.ScheduledForDeletion = true
	hidden.DeletionScheduledAt = &now
	require.NoError(t, ctrl.Database.Save(hidden))

	r.GET("/items").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var render itemListRender
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &render))
		assert.Len(t, render.Items, 2)
	})

	r.GET("/items?category=keys").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var render itemListRender
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &render))
		require.Len(t, render.Items, 1)
		assert.Equal(t, "Keys", render.Items[0].Title)
	})
}

func TestRequestItemUpdate(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	owner := createUser(ctrl, "owner@campus.lan", model.RoleUser)
	ownerSession := createSession(ctrl, owner)
	stranger := createUser(ctrl, "stranger@campus.lan", model.RoleUser)
	strangerSession := createSession(ctrl, stranger)

	item := &model.Item{Title: "Keys", Status: model.StatusFound, PostedBy: owner.ID, LastActivityAt: time.Now().UTC().AddDate(0, 0, -30)}
	require.NoError(t, ctrl.Database.Save(item))

	r.PATCH("/items/"+item.ID).SetHeader(authHeader(strangerSession)).SetJSON(gofight.D{"title": "Mine now"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.PATCH("/items/"+item.ID).SetHeader(authHeader(ownerSession)).SetJSON(gofight.D{"status": model.StatusReturned}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	reloaded, err := ctrl.Database.FindItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, reloaded.Status)
	assert.WithinDuration(t, time.Now().UTC(), reloaded.LastActivityAt, time.Minute)
}

func TestRequestItemDelete(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	owner := createUser(ctrl, "owner@campus.lan", model.RoleUser)
	session := createSession(ctrl, owner)

	item := &model.Item{Title: "Keys", Status: model.StatusFound, PostedBy: owner.ID, LastActivityAt: time.Now().UTC()}
	require.NoError(t, ctrl.Database.Save(item))

	r.DELETE("/items/"+item.ID).SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	_, err := ctrl.Database.FindItem(item.ID)
	assert.True(t, ctrl.Database.IsNotFound(err))

	r.DELETE("/items/"+item.ID).SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})
}
