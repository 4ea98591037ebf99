package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"covid-testing-server/internal/models"
	"covid-testing-server/internal/service/account"
	"covid-testing-server/internal/utils"
)

// UserHandler handles admin account management. It reuses the AuthHandler's
// error helpers.
type UserHandler struct {
	*AuthHandler
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *AuthHandler) *UserHandler {
	return &UserHandler{AuthHandler: auth}
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=USER TESTER DOCTOR ADMIN"`
}

// CreateUser opens an account with any role, typically for testers and doctors.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Accounts.Create(c.Request.Context(), account.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		h.accountError(c, err)
		return
	}
	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers lists accounts; ?role= narrows the list.
func (h *UserHandler) GetUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role != "" && !role.IsValid() {
		utils.BadRequest(c, "Unknown role: "+string(role))
		return
	}

	users, err := h.Accounts.List(c.Request.Context(), role)
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i := range users {
		sanitized[i] = users[i].Sanitize()
	}
	utils.List(c, "Users fetched successfully", sanitized)
}

// GetUserByID fetches a single account.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.Accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		h.internalError(c, "load user", err)
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}
