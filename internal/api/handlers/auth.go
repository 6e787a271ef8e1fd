package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/api/middleware"
	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/service"
)

// Authenticator issues tokens and resolves the signed-in account
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
	AdminSignIn(ctx context.Context, email, password string) (string, *domain.User, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Profile, error)
}

type UserResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
}

type ProfileResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		IsAdmin:       u.IsAdmin,
	}
}

// HandleSignIn handles POST /api/auth/signin
func HandleSignIn(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return signIn(auth.SignIn, logger, "sign in")
}

// HandleAdminLogin handles POST /api/admin/login
func HandleAdminLogin(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return signIn(auth.AdminSignIn, logger, "admin sign in")
}

func signIn(fn func(ctx context.Context, email, password string) (string, *domain.User, error), logger *zap.Logger, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		token, user, err := fn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err, logger, action)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// HandleMe handles GET /api/auth/me
func HandleMe(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, profile, err := auth.CurrentUser(c.Request.Context(), current.ID)
		if err != nil {
			respondError(c, err, logger, "current user")
			return
		}

		resp := gin.H{"user": toUserResponse(user), "profile": nil}
		if profile != nil {
			resp["profile"] = ProfileResponse{
				ID:       profile.ID.String(),
				FullName: profile.FullName,
				Phone:    profile.Phone,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
