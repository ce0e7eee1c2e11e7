package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActingUserHeader carries the authenticated user's ID, set by the API gateway.
const ActingUserHeader = "X-User-ID"

// ErrNoActingUser is returned when the request carries no valid user ID
var ErrNoActingUser = errors.New("no acting user on request")

// GetUserID extracts the acting user's ID from the request
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(ActingUserHeader)
	if raw == "" {
		return uuid.Nil, ErrNoActingUser
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNoActingUser
	}
	return id, nil
}
