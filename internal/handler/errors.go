package handler

import (
	"errors"
	"net/http"

	"github.com/Baaaki/market-square/internal/service"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	status  int
	message string
}

var serviceErrors = map[error]errorMapping{
	service.ErrMissingFields:         {http.StatusBadRequest, "Missing required fields"},
	service.ErrUnknownOwner:          {http.StatusBadRequest, "Unknown user_id"},
	service.ErrInvalidCredentials:    {http.StatusUnauthorized, "Invalid username or password"},
	service.ErrForbidden:             {http.StatusForbidden, "Not authorized to delete this item"},
	service.ErrListingNotFound:       {http.StatusNotFound, "Item not found"},
	service.ErrUsernameAlreadyExists: {http.StatusConflict, "Username already exists"},
	service.ErrEmailAlreadyExists:    {http.StatusConflict, "Email already exists"},
}

// respondError writes err as {"error": msg}. Unrecognised errors are storage
// failures and go out as 500 with their raw message.
func respondError(c *gin.Context, err error) {
	for target, m := range serviceErrors {
		if errors.Is(err, target) {
			c.JSON(m.status, gin.H{"error": m.message})
			return
		}
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func respondBadBody(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
