package server

import (
	"log"
	"net/http"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/server/service"
	"github.com/campusfound/campusfound/internal/server/session"
	"github.com/labstack/echo/v4"
)

// auth contains all authentication handlers.
type auth struct {
	db       database.Client
	sessions session.Manager
}

///// Register
////
//

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get user's params."))
	}
	params.UserAgent = c.Request().UserAgent()

	if params.Email == "" {
		return c.JSON(http.StatusBadRequest, cferror.New("No email provided."))
	}
	if params.Password == "" {
		return c.JSON(http.StatusBadRequest, cferror.New("No password provided."))
	}

	service := service.NewUser(h.db, h.sessions)
	register, err := service.Register(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, register)
}

///// Login
////
//

// Login authenticates a user and opens a new session.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		log.Println("Could not get parameters:", err)
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get credentials."))
	}
	params.UserAgent = c.Request().UserAgent()

	if params.Email == "" || params.Password == "" {
		return c.JSON(http.StatusBadRequest, cferror.New("No email or password provided."))
	}

	service := service.NewUser(h.db, h.sessions)
	login, err := service.Login(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, login)
}

///// UpdatePassword
////
//

// UpdatePassword updates the password of the current user.
func (h *auth) UpdatePassword(c echo.Context) error {
	// Filter params
	var params service.UpdatePasswordParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cferror.New("Could not get user's params."))
	}

	if params.CurrentPassword == "" || params.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, cferror.New("Please provide all required parameters."))
	}

	service := service.NewUser(h.db, h.sessions)
	if err := service.Password(currentUser(c), params); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

///// Deactivate
////
//

// Deactivate deactivates the current user's account. The account stays in
// database until the retention engine ages it out.
func (h *auth) Deactivate(c echo.Context) error {
	service := service.NewUser(h.db, h.sessions)
	if err := service.Deactivate(currentUser(c)); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
