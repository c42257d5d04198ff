package server

import (
	"net/http"
	"time"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type (
	// item contains all item handlers.
	item struct {
		db database.Client
	}

	createItemParams struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Location    string `json:"location"`
		Status      string `json:"status"`
		ImageURL    string `json:"image_url"`
	}

	updateItemParams struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Location    *string `json:"location"`
		Status      *string `json:"status"`
		ImageURL    *string `json:"image_url"`
	}
)

var itemStatuses = map[string]bool{
	model.StatusLost:     true,
	model.StatusFound:    true,
	model.StatusClaimed:  true,
	model.StatusReturned: true,
}

// List renders the items matching the category and status query parameters.
func (h *item) List(c echo.Context) error {
	items, err := h.db.FindItems(c.QueryParam("category"), c.QueryParam("status"))
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get items")
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create registers a new item posted by the current user.
func (h *item) Create(c echo.Context) error {
	var params createItemParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get item's params."))
	}

	if params.Title == "" {
		return c.JSON(http.StatusBadRequest, cferror.New("No title provided."))
	}
	if params.Status == "" {
		params.Status = model.StatusLost
	}
	if !itemStatuses[params.Status] {
		return c.JSON(http.StatusBadRequest, cferror.New("Unknown item status."))
	}

	item := &model.Item{
		Title:          params.Title,
		Description:    params.Description,
		Category:       params.Category,
		Location:       params.Location,
		Status:         params.Status,
		ImageURL:       params.ImageURL,
		PostedBy:       currentUser(c).ID,
		LastActivityAt: time.Now().UTC(),
	}

	if err := h.db.Save(item); err != nil {
		return errors.Wrap(err, "could not persist item")
	}

	return c.JSON(http.StatusCreated, item)
}

// Get renders a single item.
func (h *item) Get(c echo.Context) error {
	item, err := h.find(c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

// Update applies the provided fields on an item owned by the current user.
// Any update refreshes the item's activity.
func (h *item) Update(c echo.Context) error {
	item, err := h.find(c.Param("id"))
	if err != nil {
		return err
	}
	if item.PostedBy != currentUser(c).ID {
		return c.JSON(http.StatusForbidden, cferror.New("Only the owner can update an item."))
	}

	var params updateItemParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get item's params."))
	}

	if params.Title != nil {
		item.Title = *params.Title
	}
	if params.Description != nil {
		item.Description = *params.Description
	}
	if params.Category != nil {
		item.Category = *params.Category
	}
	if params.Location != nil {
		item.Location = *params.Location
	}
	if params.Status != nil {
		if !itemStatuses[*params.Status] {
			return c.JSON(http.StatusBadRequest, cferror.New("Unknown item status."))
		}
		item.Status = *params.Status
	}
	if params.ImageURL != nil {
		item.ImageURL = *params.ImageURL
	}
	item.LastActivityAt = time.Now().UTC()

	if err := h.db.Save(item); err != nil {
		return errors.Wrap(err, "could not persist item")
	}

	return c.JSON(http.StatusOK, item)
}

// Delete removes an item owned by the current user.
func (h *item) Delete(c echo.Context) error {
	item, err := h.find(c.Param("id"))
	if err != nil {
		return err
	}
	if item.PostedBy != currentUser(c).ID {
		return c.JSON(http.StatusForbidden, cferror.New("Only the owner can delete an item."))
	}

	if err := h.db.Delete(item); err != nil {
		return errors.Wrap(err, "could not delete item")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *item) find(id string) (*model.Item, error) {
	item, err := h.db.FindItem(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, cferror.NewNotFound("No item exists with the provided identifier.")
		}
		return nil, errors.Wrap(err, "could not get item")
	}
	return item, nil
}
