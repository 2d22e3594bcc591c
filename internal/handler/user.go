package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/suteetoe/krist-shop/internal/middleware"
	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/response"
)

type roleRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=customer seller admin"`
}

// UserHandler serves /api/users
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles retrieving users with an optional role filter
func (h *UserHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	filter := repository.UserFilter{ListQuery: q}
	if raw := strings.TrimSpace(c.QueryParam("role")); raw != "" {
		filter.Role = model.Role(strings.ToLower(raw))
		if !filter.Role.Valid() {
			return apperror.BadRequest("Role must be one of: admin, seller, customer")
		}
	}
	page, err := h.users.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return paged(c, "Users fetched successfully", page)
}

// Me handles retrieving the caller's own profile
func (h *UserHandler) Me(c echo.Context) error {
	id, _ := middleware.CurrentUserID(c)
	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "User fetched successfully", user)
}

// Get handles retrieving a user by ID
func (h *UserHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if err := middleware.SelfOrAdmin(c, id); err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "User fetched successfully", user)
}

// UpdateRole handles changing a user's role
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req roleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "User role updated successfully", user)
}

// Add handles creating a user with any role
func (h *UserHandler) Add(c echo.Context) error {
	var req service.AddUserInput
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Add(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "User added successfully", user)
}

// Edit handles updating a user's profile
func (h *UserHandler) Edit(c echo.Context) error {
	id := c.Param("id")
	if err := middleware.SelfOrAdmin(c, id); err != nil {
		return err
	}
	var req service.EditUserInput
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Edit(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "User updated successfully", user)
}

// UpdateOrderInfo handles saving a user's shipping details
func (h *UserHandler) UpdateOrderInfo(c echo.Context) error {
	id := c.Param("id")
	if err := middleware.SelfOrAdmin(c, id); err != nil {
		return err
	}
	var req service.OrderInfoInput
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateOrderInfo(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Order info updated successfully", user)
}

// ChangePassword is limited to the account owner
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id := c.Param("id")
	if caller, _ := middleware.CurrentUserID(c); caller != id {
		return apperror.Forbidden("You can only access your own resources")
	}
	var req service.ChangePasswordInput
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.users.ChangePassword(c.Request().Context(), id, req); err != nil {
		return err
	}
	return response.Message(c, "Password updated successfully")
}

// Delete handles removing a user
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "User deleted successfully")
}
