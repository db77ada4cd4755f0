// Package response maps service errors onto HTTP status codes and JSON bodies.
// It is the only place in the HTTP transport that knows about status codes of failures.
package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/dtroode/sessiongate/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	MessageInvalidCredentials = "Invalid credentials provided"
	MessageUnauthorized       = "Unauthorized"
	MessageBadRequest         = "Bad Request"
	MessageNotFound           = "Not Found"
	MessageInternal           = "Internal Server Error"
)

// Body is the envelope of every JSON response.
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Login is the body of a successful login.
type Login struct {
	Body
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Profile   model.Profile `json:"profile"`
}

// Profile is the body of GET /users/me.
type Profile struct {
	Body
	Profile model.Profile `json:"profile"`
}

// Status returns the HTTP status code and public message for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, MessageInvalidCredentials
	case errors.Is(err, model.ErrInternal):
		return http.StatusInternalServerError, MessageInternal
	case errors.Is(err, model.ErrMissingAuthorization),
		errors.Is(err, model.ErrInvalidAuthorization),
		errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrSessionExpired):
		return http.StatusUnauthorized, MessageUnauthorized
	case errors.Is(err, model.ErrBadRequest):
		return http.StatusBadRequest, MessageBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, MessageNotFound
	default:
		return http.StatusInternalServerError, MessageInternal
	}
}

// Error aborts the request with the body matching err.
func Error(c *gin.Context, err error) {
	code, message := Status(err)
	c.AbortWithStatusJSON(code, Body{Code: code, Message: message})
}

// OK sends a 200 response with message.
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Body{Code: http.StatusOK, Message: message})
}

// LoginOK sends the token and profile of a successful login.
func LoginOK(c *gin.Context, result model.LoginResult) {
	c.JSON(http.StatusOK, Login{
		Body:      Body{Code: http.StatusOK, Message: "Login successful"},
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Profile:   result.Profile,
	})
}

// ProfileOK sends the profile of the authenticated user.
func ProfileOK(c *gin.Context, profile model.Profile) {
	c.JSON(http.StatusOK, Profile{
		Body:    Body{Code: http.StatusOK, Message: "OK"},
		Profile: profile,
	})
}
