package v1

import (
	"github.com/halfsies/backend/internal/models"
)

type UserEditable struct {
	Username string `json:"username" example:"morre"`               // Name the user logs in with
	Password string `json:"password" example:"correct-horse-battery"` // Plain text password, never stored
}

// User is the representation of a User in API v1.
type User struct {
	models.DefaultModel
	Username string `json:"username" example:"morre"`
}

// newUser returns the API v1 representation of the resource
func newUser(model models.User) User {
	return User{
		DefaultModel: model.DefaultModel,
		Username:     model.Username,
	}
}

type SessionData struct {
	Token string `json:"token"` // Bearer token for the Authorization header
	User  User   `json:"user"`  // The authenticated user
}

type SessionResponse struct {
	Error *string      `json:"error" example:"the username or password is incorrect"` // The error, if any occurred
	Data  *SessionData `json:"data"`                                                  // The session data, if authentication was successful
}
