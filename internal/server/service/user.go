// Package service holds the account workflows shared by several handlers.
package service

import (
	"net/http"
	"time"

	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/server/serializer"
	"github.com/campusfound/campusfound/internal/server/session"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
)

type (
	// A Render is an arbitrary payload serializable in JSON by the API.
	Render interface{}

	// A UserService handles the account lifecycle triggered by the API.
	UserService interface {
		Register(params RegisterParams) (Render, error)
		Login(params LoginParams) (Render, error)
		Password(user *model.User, params UpdatePasswordParams) error
		Deactivate(user *model.User) error
	}

	// RegisterParams are used to register a user.
	RegisterParams struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Name      string `json:"name"`
		UserAgent string `json:"-"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		UserAgent string `json:"-"`
	}

	// UpdatePasswordParams are used to update user's password.
	UpdatePasswordParams struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	userService struct {
		db       database.Client
		sessions session.Manager
	}
)

// NewUser returns a new UserService.
func NewUser(db database.Client, sessions session.Manager) UserService {
	return &userService{
		db:       db,
		sessions: sessions,
	}
}

func (s *userService) Register(params RegisterParams) (Render, error) {
	// Check if the email is free to use.
	u, err := s.db.FindUserByMail(params.Email)
	if err != nil && !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}
	if u != nil {
		return nil, cferror.NewWithTagCode(http.StatusUnauthorized, "email-taken", "This email is already registered.")
	}

	user := model.NewUser()
	user.Email = params.Email
	user.Name = params.Name
	user.LastLoginAt = time.Now().UTC()

	user.Password, err = argon2.GenerateFromPasswordString(params.Password, argon2.Default)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}

	if err := s.db.Save(user); err != nil {
		return nil, errors.Wrap(err, "could not persist user")
	}

	return s.open(user, params.UserAgent)
}

func (s *userService) Login(params LoginParams) (Render, error) {
	user, err := s.db.FindUserByMail(params.Email)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, cferror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid email or password.")
		}
		return nil, errors.Wrap(err, "could not get user")
	}

	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, cferror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid email or password.")
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	// Signing in reactivates the account and cancels any pending deletion.
	user.LastLoginAt = time.Now().UTC()
	user.IsActive = true
	user.DeactivatedAt = nil
	user.ScheduledForDeletion = false
	user.DeletionScheduledAt = nil
	user.DeletionWarningEmailSent = false

	if err := s.db.Save(user); err != nil {
		return nil, errors.Wrap(err, "could not persist user")
	}

	return s.open(user, params.UserAgent)
}

func (s *userService) Password(user *model.User, params UpdatePasswordParams) error {
	if err := argon2.CompareHashAndPasswordString(user.Password, params.CurrentPassword); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return cferror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "The current password you entered is incorrect. Please try again.")
		}
		return errors.Wrap(err, "could not validate password")
	}

	pw, err := argon2.GenerateFromPasswordString(params.NewPassword, argon2.Default)
	if err != nil {
		return errors.Wrap(err, "could not store user password safe")
	}
	user.Password = pw

	return errors.Wrap(s.db.Save(user), "could not persist user")
}

func (s *userService) Deactivate(user *model.User) error {
	now := time.Now().UTC()
	user.IsActive = false
	user.DeactivatedAt = &now

	if err := s.db.Save(user); err != nil {
		return errors.Wrap(err, "could not persist user")
	}

	// A deactivated account keeps no live sessions.
	_, err := s.db.DeleteSessionsByUser(user.ID)
	return errors.Wrap(err, "could not delete user sessions")
}

// open creates a fresh session for the user and renders the login payload.
func (s *userService) open(user *model.User, userAgent string) (Render, error) {
	session := s.sessions.Generate()
	session.UserID = user.ID
	session.UserAgent = userAgent

	if err := s.db.Save(session); err != nil {
		return nil, errors.Wrap(err, "could not persist session")
	}

	return map[string]interface{}{
		"user":    serializer.User(user),
		"session": serializer.Tokens(session, s.sessions.AccessTokenExpireAt(session)),
	}, nil
}
