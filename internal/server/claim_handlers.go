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
	// claim contains all claim handlers.
	claim struct {
		db       database.Client
		notifier notifier.Dispatcher
	}

	createClaimParams struct {
		Message string `json:"message"`
	}

	updateClaimParams struct {
		Status string `json:"status"`
	}
)

// Create files a claim of the current user on an item. The item owner gets
// notified and the item's activity is refreshed.
func (h *claim) Create(c echo.Context) error {
	item, err := h.db.FindItem(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return cferror.NewNotFound("No item exists with the provided identifier.")
		}
		return errors.Wrap(err, "could not get item")
	}

	claimant := currentUser(c)
	if item.PostedBy == claimant.ID {
		return c.JSON(http.StatusBadRequest, cferror.New("You can not claim your own item."))
	}

	var params createClaimParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get claim's params."))
	}

	claim := &model.Claim{
		ItemID:     item.ID,
		ClaimantID: claimant.ID,
		Status:     model.ClaimPending,
		Message:    params.Message,
	}
	if err := h.db.Save(claim); err != nil {
		return errors.Wrap(err, "could not persist claim")
	}

	item.LastActivityAt = time.Now().UTC()
	if err := h.db.Save(item); err != nil {
		return errors.Wrap(err, "could not refresh item activity")
	}

	if item.PostedBy != "" {
		if owner, err := h.db.FindUser(item.PostedBy); err == nil {
			if err := h.notifier.NotifyClaim(owner, claimant, item); err != nil {
				return err
			}
		}
	}

	return c.JSON(http.StatusCreated, claim)
}

// List renders the claims on an item. Restricted to the item owner.
func (h *claim) List(c echo.Context) error {
	item, err := h.db.FindItem(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return cferror.NewNotFound("No item exists with the provided identifier.")
		}
		return errors.Wrap(err, "could not get item")
	}

	if item.PostedBy != currentUser(c).ID {
		return c.JSON(http.StatusForbidden, cferror.New("Only the owner can list an item's claims."))
	}

	claims, err := h.db.FindClaimsByItem(item.ID)
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get claims")
	}

	return c.JSON(http.StatusOK, echo.Map{"claims": claims})
}

// Update approves or rejects a claim. Restricted to the item owner; an
// approved claim flips the item to the claimed status.
func (h *claim) Update(c echo.Context) error {
	claim, err := h.db.FindClaim(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return cferror.NewNotFound("No claim exists with the provided identifier.")
		}
		return errors.Wrap(err, "could not get claim")
	}

	item, err := h.db.FindItem(claim.ItemID)
	if err != nil {
		if h.db.IsNotFound(err) {
			return cferror.NewNotFound("No item exists for the provided claim.")
		}
		return errors.Wrap(err, "could not get item")
	}

	if item.PostedBy != currentUser(c).ID {
		return c.JSON(http.StatusForbidden, cferror.New("Only the owner can review an item's claims."))
	}

	var params updateClaimParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get claim's params."))
	}
	if params.Status != model.ClaimApproved && params.Status != model.ClaimRejected {
		return c.JSON(http.StatusBadRequest, cferror.New("Status must be approved or rejected."))
	}

	claim.Status = params.Status
	if err := h.db.Save(claim); err != nil {
		return errors.Wrap(err, "could not persist claim")
	}

	item.LastActivityAt = time.Now().UTC()
	if params.Status == model.ClaimApproved {
		item.Status = model.StatusClaimed
	}
	if err := h.db.Save(item); err != nil {
		return errors.Wrap(err, "could not refresh item activity")
	}

	return c.JSON(http.StatusOK, claim)
}
