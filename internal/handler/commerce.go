package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/suteetoe/krist-shop/internal/middleware"
	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/response"
)

// CartHandler serves /api/cart
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// bindLine decodes a cart line and checks the caller may touch that cart
func bindLine(c echo.Context) (service.CartLineInput, error) {
	var req service.CartLineInput
	if err := bind(c, &req); err != nil {
		return req, err
	}
	return req, middleware.SelfOrAdmin(c, req.UserID)
}

// Add handles putting a product in a cart
func (h *CartHandler) Add(c echo.Context) error {
	req, err := bindLine(c)
	if err != nil {
		return err
	}
	line, err := h.carts.Add(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Product added to cart", line)
}

// Increment handles raising the quantity of a cart line
func (h *CartHandler) Increment(c echo.Context) error {
	req, err := bindLine(c)
	if err != nil {
		return err
	}
	line, err := h.carts.Increment(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Cart quantity increased", line)
}

// Decrement handles lowering the quantity of a cart line, removing it at zero
func (h *CartHandler) Decrement(c echo.Context) error {
	req, err := bindLine(c)
	if err != nil {
		return err
	}
	line, removed, err := h.carts.Decrement(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if removed {
		return response.Message(c, "Product removed from cart")
	}
	return response.OK(c, http.StatusOK, "Cart quantity decreased", line)
}

// Get handles retrieving a user's cart
func (h *CartHandler) Get(c echo.Context) error {
	userID := c.Param("userId")
	if err := middleware.SelfOrAdmin(c, userID); err != nil {
		return err
	}
	summary, err := h.carts.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Cart fetched successfully", summary)
}

// Remove handles deleting one product from a cart
func (h *CartHandler) Remove(c echo.Context) error {
	userID := c.Param("userId")
	if err := middleware.SelfOrAdmin(c, userID); err != nil {
		return err
	}
	if err := h.carts.Remove(c.Request().Context(), userID, c.Param("productId")); err != nil {
		return err
	}
	return response.Message(c, "Product removed from cart")
}

// Clear handles emptying a cart
func (h *CartHandler) Clear(c echo.Context) error {
	userID := c.Param("userId")
	if err := middleware.SelfOrAdmin(c, userID); err != nil {
		return err
	}
	removed, err := h.carts.Clear(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Cart cleared successfully", echo.Map{"removed": removed})
}

// WishlistHandler serves /api/wishlist
type WishlistHandler struct {
	wishlists *service.WishlistService
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// Add handles saving a product to a wishlist
func (h *WishlistHandler) Add(c echo.Context) error {
	var req service.WishlistInput
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := middleware.SelfOrAdmin(c, req.UserID); err != nil {
		return err
	}
	item, err := h.wishlists.Add(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Product added to wishlist", item)
}

// List handles retrieving a user's wishlist
func (h *WishlistHandler) List(c echo.Context) error {
	userID := c.Param("userId")
	if err := middleware.SelfOrAdmin(c, userID); err != nil {
		return err
	}
	items, err := h.wishlists.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "User wishlist fetched successfully", items)
}

// Remove handles deleting a product from a wishlist
func (h *WishlistHandler) Remove(c echo.Context) error {
	userID := c.Param("userId")
	if err := middleware.SelfOrAdmin(c, userID); err != nil {
		return err
	}
	if err := h.wishlists.Remove(c.Request().Context(), userID, c.Param("productId")); err != nil {
		return err
	}
	return response.Message(c, "Product removed from wishlist")
}

// CouponHandler serves /api/coupon
type CouponHandler struct {
	coupons *service.CouponService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Apply handles pricing a subtotal with a coupon code
func (h *CouponHandler) Apply(c echo.Context) error {
	var req service.ApplyCouponInput
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.coupons.Apply(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Coupon applied successfully!", result)
}

// List handles retrieving one page of coupons
func (h *CouponHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.coupons.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return paged(c, "Coupons fetched successfully", page)
}

// Create handles adding a coupon
func (h *CouponHandler) Create(c echo.Context) error {
	var req service.CouponInput
	if err := bind(c, &req); err != nil {
		return err
	}
	coupon, err := h.coupons.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Coupon created successfully", coupon)
}

// Update handles a partial coupon update
func (h *CouponHandler) Update(c echo.Context) error {
	var req service.UpdateCouponInput
	if err := bind(c, &req); err != nil {
		return err
	}
	coupon, err := h.coupons.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Coupon updated successfully", coupon)
}

// Delete handles removing a coupon
func (h *CouponHandler) Delete(c echo.Context) error {
	if err := h.coupons.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "Coupon deleted successfully")
}

// OrderHandler serves /api/orders
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles placing an order
func (h *OrderHandler) Create(c echo.Context) error {
	var req service.OrderInput
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := middleware.SelfOrAdmin(c, req.UserID); err != nil {
		return err
	}
	order, err := h.orders.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Order made successfully", order)
}

func (h *OrderHandler) list(c echo.Context, userID string) error {
	p, err := parsePagination(c)
	if err != nil {
		return err
	}
	page, err := h.orders.List(c.Request().Context(), repository.OrderFilter{
		Pagination: p,
		Status:     model.OrderStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
		UserID:     userID,
	})
	if err != nil {
		return err
	}
	return paged(c, "Orders fetched successfully", page)
}

// List handles retrieving all orders
func (h *OrderHandler) List(c echo.Context) error {
	return h.list(c, "")
}

// ListForUser handles retrieving the orders of one user
func (h *OrderHandler) ListForUser(c echo.Context) error {
	userID := c.Param("userId")
	if err := middleware.SelfOrAdmin(c, userID); err != nil {
		return err
	}
	return h.list(c, userID)
}

// Get handles retrieving an order by ID
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := middleware.SelfOrAdmin(c, order.UserID); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Order fetched successfully", order)
}

// UpdateStatus handles moving an order to a new status
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req service.OrderStatusInput
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Order status updated successfully", order)
}

// CheckoutHandler serves /api/payment
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout handles creating a hosted payment session
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req service.CheckoutInput
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := middleware.SelfOrAdmin(c, req.UserID); err != nil {
		return err
	}
	session, err := h.checkout.Checkout(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Checkout session created successfully", session)
}
