package server

import (
	"net/http"
	"time"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notifier"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type (
	// conversation contains all conversation and message handlers.
	conversation struct {
		db       database.Client
		notifier notifier.Dispatcher
	}

	createMessageParams struct {
		Body string `json:"body"`
	}
)

// Create opens a conversation between the current user and an item's owner.
// An existing thread between the two is reused.
func (h *conversation) Create(c echo.Context) error {
	item, err := h.db.FindItem(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return cferror.NewNotFound("No item exists with the provided identifier.")
		}
		return errors.Wrap(err, "could not get item")
	}

	inquirer := currentUser(c)
	if item.PostedBy == inquirer.ID {
		return c.JSON(http.StatusBadRequest, cferror.New("You can not open a conversation on your own item."))
	}

	conversations, err := h.db.FindConversationsByItem(item.ID)
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get conversations")
	}
	for _, conversation := range conversations {
		if conversation.InquirerID == inquirer.ID {
			return c.JSON(http.StatusOK, conversation)
		}
	}

	conversation := &model.Conversation{
		ItemID:     item.ID,
		OwnerID:    item.PostedBy,
		InquirerID: inquirer.ID,
	}
	if err := h.db.Save(conversation); err != nil {
		return errors.Wrap(err, "could not persist conversation")
	}

	return c.JSON(http.StatusCreated, conversation)
}

// List renders the conversations the current user takes part in.
func (h *conversation) List(c echo.Context) error {
	conversations, err := h.db.FindConversationsByParticipant(currentUser(c).ID)
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get conversations")
	}

	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations})
}

// Messages renders a conversation's messages in chronological order.
func (h *conversation) Messages(c echo.Context) error {
	conversation, err := h.find(c)
	if err != nil {
		return err
	}

	messages, err := h.db.FindMessagesByConversation(conversation.ID)
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get messages")
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}

// PostMessage appends a message to a conversation, refreshes the item's
// activity and notifies the other participant.
func (h *conversation) PostMessage(c echo.Context) error {
	conversation, err := h.find(c)
	if err != nil {
		return err
	}

	var params createMessageParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get message's params."))
	}
	if params.Body == "" {
		return c.JSON(http.StatusBadRequest, cferror.New("No message body provided."))
	}

	sender := currentUser(c)
	message := &model.Message{
		ConversationID: conversation.ID,
		SenderID:       sender.ID,
		Body:           params.Body,
	}
	if err := h.db.Save(message); err != nil {
		return errors.Wrap(err, "could not persist message")
	}

	item, err := h.db.FindItem(conversation.ItemID)
	if err == nil {
		item.LastActivityAt = time.Now().UTC()
		if err := h.db.Save(item); err != nil {
			return errors.Wrap(err, "could not refresh item activity")
		}

		recipient := conversation.OwnerID
		if sender.ID == conversation.OwnerID {
			recipient = conversation.InquirerID
		}
		if recipient != "" {
			if err := h.notifier.NotifyMessage(recipient, sender, item); err != nil {
				return err
			}
		}
	} else if !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get item")
	}

	return c.JSON(http.StatusCreated, message)
}

func (h *conversation) find(c echo.Context) (*model.Conversation, error) {
	conversation, err := h.db.FindConversation(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, cferror.NewNotFound("No conversation exists with the provided identifier.")
		}
		return nil, errors.Wrap(err, "could not get conversation")
	}

	if !conversation.HasParticipant(currentUser(c).ID) {
		return nil, cferror.NewWithTagCode(http.StatusForbidden, "forbidden", "You are not part of this conversation.")
	}
	return conversation, nil
}
