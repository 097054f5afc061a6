package handler

import (
	"net/http"

	"github.com/Baaaki/market-square/internal/middleware"
	"github.com/Baaaki/market-square/internal/service"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	authService *service.AuthService
}

func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
	}
}

// GetAllUsers returns every registered user without password digests.
// GET /api/admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	logger.Log.Info("Admin fetching all users",
		zap.String("admin_id", identity.UserID),
	)

	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, 0, len(users))
	for _, u := range users {
		result = append(result, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": result,
		"count": len(result),
	})
}
