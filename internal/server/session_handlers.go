package server

import (
	"net/http"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/server/serializer"
	sessionpkg "github.com/campusfound/campusfound/internal/server/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type (
	sess struct {
		db       database.Client
		sessions sessionpkg.Manager
	}

	refreshSessionParams struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
)

// List lists all sessions of the current user.
func (s *sess) List(c echo.Context) error {
	session := currentSession(c)
	user := currentUser(c)

	sessions, err := s.db.FindSessionsByUserID(user.ID)
	if err != nil && !s.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get sessions")
	}

	return c.JSON(http.StatusOK, serializer.Sessions(sessions, session.ID))
}

// Refresh obtains a new pair of access token and refresh token.
// It is the only endpoint accepting an expired access token.
func (s *sess) Refresh(c echo.Context) error {
	// Filter params
	var params refreshSessionParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.NewWithTagCode(
			http.StatusBadRequest,
			"invalid-parameters",
			"Invalid request body.",
		))
	}

	if params.AccessToken == "" || params.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, cferror.NewWithTagCode(
			http.StatusBadRequest,
			"invalid-parameters",
			"Please provide all required parameters.",
		))
	}

	// Retrieve session
	session, err := s.db.FindSessionByTokens(params.AccessToken, params.RefreshToken)
	if err != nil {
		if s.db.IsNotFound(err) {
			return c.JSON(http.StatusBadRequest, cferror.NewWithTagCode(
				http.StatusBadRequest,
				"invalid-parameters",
				"The provided parameters are not valid.",
			))
		}
		return errors.Wrap(err, "could not get refresh session")
	}

	// Regenerate tokens
	if err = s.sessions.Regenerate(session); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session": serializer.Tokens(session, s.sessions.AccessTokenExpireAt(session)),
	})
}

// Delete terminates the current session.
func (s *sess) Delete(c echo.Context) error {
	if err := s.db.Delete(currentSession(c)); err != nil {
		return errors.Wrap(err, "could not delete session")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll terminates all sessions, except the current one.
func (s *sess) DeleteAll(c echo.Context) error {
	sessions, err := s.db.FindSessionsByUserID(currentUser(c).ID)
	if err != nil && !s.db.IsNotFound(err) {
		return err
	}

	current := currentSession(c)
	for _, session := range sessions {
		if session.ID == current.ID {
			continue
		}

		if err = s.db.Delete(session); err != nil {
			return err
		}
	}

	return c.NoContent(http.StatusNoContent)
}
