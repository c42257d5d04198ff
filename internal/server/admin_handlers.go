package server

import (
	"net/http"

	"github.com/campusfound/campusfound/internal/retention"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// admin contains the handlers exposing the retention engine to administrators.
type admin struct {
	engine *retention.Engine
}

// Deletions renders every item and user currently scheduled for deletion.
func (h *admin) Deletions(c echo.Context) error {
	items, err := h.engine.ScheduledItems()
	if err != nil {
		return errors.Wrap(err, "could not get scheduled items")
	}

	users, err := h.engine.ScheduledUsers()
	if err != nil {
		return errors.Wrap(err, "could not get scheduled users")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"users": users,
	})
}

// CancelItemDeletion unschedules the deletion of an item.
func (h *admin) CancelItemDeletion(c echo.Context) error {
	item, err := h.engine.CancelItemDeletion(c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

// CancelUserDeletion unschedules the deletion of a user account.
func (h *admin) CancelUserDeletion(c echo.Context) error {
	user, err := h.engine.CancelUserDeletion(c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
