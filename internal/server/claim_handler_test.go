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

func TestRequestClaimFlow(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	owner := createUser(ctrl, "owner@campus.lan", model.RoleUser)
	ownerSession := createSession(ctrl, owner)
	claimant := createUser(ctrl, "claimant@campus.lan", model.RoleUser)
	claimantSession := createSession(ctrl, claimant)

	item := &model.Item{Title: "Wallet", Status: model.StatusFound, PostedBy: owner.ID, LastActivityAt: time.Now().UTC().AddDate(0, 0, -30)}
	require.NoError(t, ctrl.Database.Save(item))

	// Owners can not claim their own items.
	r.POST("/items/"+item.ID+"/claims").SetHeader(authHeader(ownerSession)).SetJSON(gofight.D{"message": "mine"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
	})

	var claimID string
	r.POST("/items/"+item.ID+"/claims").SetHeader(authHeader(claimantSession)).SetJSON(gofight.D{"message": "It has my ID card inside"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		var claim model.Claim
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &claim))
		assert.Equal(t, model.ClaimPending, claim.Status)
		assert.Equal(t, claimant.ID, claim.ClaimantID)
		claimID = claim.ID
	})

	// Claiming touches the item's activity and notifies the owner.
	reloaded, err := ctrl.Database.FindItem(item.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), reloaded.LastActivityAt, time.Minute)

	notifications, err := ctrl.Database.FindNotificationsByRecipient(owner.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationClaim, notifications[0].Type)
	assert.Equal(t, claimant.ID, notifications[0].ActorID)

	// Only the owner reviews claims.
	r.GET("/items/"+item.ID+"/claims").SetHeader(authHeader(claimantSession)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.GET("/items/"+item.ID+"/claims").SetHeader(authHeader(ownerSession)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	r.PATCH("/claims/"+claimID).SetHeader(authHeader(claimantSession)).SetJSON(gofight.D{"status": model.ClaimApproved}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.PATCH("/claims/"+claimID).SetHeader(authHeader(ownerSession)).SetJSON(gofight.D{"status": model.ClaimApproved}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	claim, err := ctrl.Database.FindClaim(claimID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimApproved, claim.Status)

	reloaded, err = ctrl.Database.FindItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClaimed, reloaded.Status)
}

func TestRequestConversationFlow(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	owner := createUser(ctrl, "owner@campus.lan", model.RoleUser)
	ownerSession := createSession(ctrl, owner)
	inquirer := createUser(ctrl, "inquirer@campus.lan", model.RoleUser)
	inquirerSession := createSession(ctrl, inquirer)

	item := &model.Item{Title: "Wallet", Status: model.StatusFound, PostedBy: owner.ID, LastActivityAt: time.Now().UTC().AddDate(0, 0, -30)}
	require.NoError(t, ctrl.Database.Save(item))

	var conversationID string
	r.POST("/items/"+item.ID+"/conversations").SetHeader(authHeader(inquirerSession)).SetJSON(gofight.D{}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		var conversation model.Conversation
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &conversation))
		assert.Equal(t, owner.ID, conversation.OwnerID)
		assert.Equal(t, inquirer.ID, conversation.InquirerID)
		conversationID = conversation.ID
	})

	// Opening the same thread twice reuses it.
	r.POST("/items/"+item.ID+"/conversations").SetHeader(authHeader(inquirerSession)).SetJSON(gofight.D{}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var conversation model.Conversation
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &conversation))
		assert.Equal(t, conversationID, conversation.ID)
	})

	r.POST("/conversations/"+conversationID+"/messages").SetHeader(authHeader(inquirerSession)).SetJSON(gofight.D{"body": "Is it still there?"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	// The owner is notified and the item activity refreshed.
	notifications, err := ctrl.Database.FindNotificationsByRecipient(owner.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationMessage, notifications[0].Type)

	reloaded, err := ctrl.Database.FindItem(item.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), reloaded.LastActivityAt, time.Minute)

	// Third parties can not read the thread.
	stranger := createUser(ctrl, "stranger@campus.lan", model.RoleUser)
	strangerSession := createSession(ctrl, stranger)
	r.GET("/conversations/"+conversationID+"/messages").SetHeader(authHeader(strangerSession)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.GET("/conversations/"+conversationID+"/messages").SetHeader(authHeader(ownerSession)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var render struct {
			Messages []model.Message `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &render))
		require.Len(t, render.Messages, 1)
		assert.Equal(t, "Is it still there?", render.Messages[0].Body)
	})
}

func TestRequestNotificationRead(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george.abitbol@campus.lan", model.RoleUser)
	session := createSession(ctrl, user)

	notification := &model.Notification{UserID: user.ID, Type: model.NotificationClaim, Title: "New claim"}
	require.NoError(t, ctrl.Database.Save(notification))

	r.GET("/notifications").SetHeader(authHeader(session)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	r.POST("/notifications/"+notification.ID+"/read").SetHeader(authHeader(session)).SetJSON(gofight.D{}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	reloaded, err := ctrl.Database.FindNotification(notification.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.ReadAt)
}
