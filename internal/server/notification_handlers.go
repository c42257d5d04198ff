package server

import (
	"net/http"
	"time"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// notification contains all notification handlers.
type notification struct {
	db database.Client
}

// List renders the current user's notifications, most recent first.
func (h *notification) List(c echo.Context) error {
	notifications, err := h.db.FindNotificationsByRecipient(currentUser(c).ID)
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"notifications": notifications})
}

// Read marks a notification of the current user as read.
func (h *notification) Read(c echo.Context) error {
	notification, err := h.db.FindNotification(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return cferror.NewNotFound("No notification exists with the provided identifier.")
		}
		return errors.Wrap(err, "could not get notification")
	}

	if notification.UserID != currentUser(c).ID {
		return c.JSON(http.StatusForbidden, cferror.New("You can only read your own notifications."))
	}

	if notification.ReadAt == nil {
		now := time.Now().UTC()
		notification.ReadAt = &now
		if err := h.db.Save(notification); err != nil {
			return errors.Wrap(err, "could not persist notification")
		}
	}

	return c.JSON(http.StatusOK, notification)
}
