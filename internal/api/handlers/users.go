// users.go implements handlers for account management. Password hashes never
// appear in responses.
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/audit"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/auth"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/middleware"
)

// UserHandlers handles account endpoints
type UserHandlers struct {
	userRepo *repositories.UserRepository
	recorder *audit.Recorder
}

// NewUserHandlers creates a new UserHandlers instance
func NewUserHandlers(db *sql.DB) *UserHandlers {
	return &UserHandlers{
		userRepo: repositories.NewUserRepository(db),
		recorder: audit.NewRecorder(repositories.NewLogRepository(db)),
	}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

// ListUsersHandler lists all accounts
// GET /api/v1/users
func (h *UserHandlers) ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.userRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list users",
			})
			return
		}

		out := make([]gin.H, 0, len(users))
		for _, u := range users {
			out = append(out, userResponse(u))
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}

// GetUserHandler retrieves a single account
// GET /api/v1/users/:id
func (h *UserHandlers) GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		user, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		c.JSON(http.StatusOK, userResponse(user))
	}
}

// GetCurrentUserHandler returns the account of the authenticated caller
// GET /api/v1/users/me
func (h *UserHandlers) GetCurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.userRepo.GetUserByEmail(c.Request.Context(), middleware.Username(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get user",
			})
			return
		}
		if user == nil {
			// Token subject no longer maps to an account, e.g. deleted
			// after the token was issued.
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		c.JSON(http.StatusOK, userResponse(user))
	}
}

// CreateUserHandler creates an account. Emails are unique.
// POST /api/v1/users
func (h *UserHandlers) CreateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		existing, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create user",
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A user with this email already exists",
			})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create user",
			})
			return
		}

		user := &models.User{Email: req.Email, PasswordHash: hash}
		if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create user",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionAddedUser,
			TargetKind: models.TargetUser,
			TargetID:   user.ID,
			TargetName: user.Email,
			Changes:    audit.CreationChanges(user.DisplayFields()),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusCreated, userResponse(user))
	}
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePasswordHandler replaces an account's password. The audit entry masks
// both values; only the fact of the change is recorded.
// PATCH /api/v1/users/:id/password
func (h *UserHandlers) ChangePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		user, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update password",
			})
			return
		}

		if err := h.userRepo.UpdatePassword(c.Request.Context(), id, hash); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update password",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionUpdatedUser,
			TargetKind: models.TargetUser,
			TargetID:   user.ID,
			TargetName: user.Email,
			Changes: []models.LogChange{
				{Property: "Password", OldValue: "********", NewValue: "********"},
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusOK, userResponse(user))
	}
}

// DeleteUserHandler removes an account. Callers cannot delete themselves, so
// the platform is never left without a working login. Audit entries written
// by the account keep their label and degrade to a deleted-user rendering.
// DELETE /api/v1/users/:id
func (h *UserHandlers) DeleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		user, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		if user.Email == middleware.Username(c) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cannot delete your own account",
			})
			return
		}

		if err := h.userRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete user",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionRemovedUser,
			TargetKind: models.TargetUser,
			TargetID:   user.ID,
			TargetName: user.Email,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
