package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/suteetoe/krist-shop/internal/middleware"
	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/pkg/jwtutil"
)

// Handlers groups every HTTP handler served under /api
type Handlers struct {
	Health        *HealthHandler
	Auth          *AuthHandler
	Users         *UserHandler
	Categories    *CategoryHandler
	Subcategories *SubcategoryHandler
	Products      *ProductHandler
	Sizes         *SizeHandler
	Cart          *CartHandler
	Wishlist      *WishlistHandler
	Coupons       *CouponHandler
	Orders        *OrderHandler
	Checkout      *CheckoutHandler
	Uploads       *UploadHandler
	Banners       *BannerHandler
	Newsletter    *NewsletterHandler
	Contact       *ContactHandler
	Feed          Feed
}

// RegisterRoutes mounts the API on e
func RegisterRoutes(e *echo.Echo, h Handlers, tokens *jwtutil.JWTUtil) {
	auth := middleware.AuthMiddleware(tokens)
	admin := middleware.RequireRoles(model.RoleAdmin)
	staff := middleware.RequireRoles(model.RoleAdmin, model.RoleSeller)

	api := e.Group("/api")

	// Public routes - no authentication required
	api.GET("/health", h.Health.HealthCheck)
	api.GET("/metrics", MetricsHandler)

	authGroup := api.Group("/auth")
	authGroup.POST("/sign-up", h.Auth.SignUp)
	authGroup.POST("/sign-in", h.Auth.SignIn)
	authGroup.POST("/refresh-token", h.Auth.RefreshToken)
	authGroup.POST("/sign-out", h.Auth.SignOut)
	authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
	authGroup.POST("/verify-otp", h.Auth.VerifyOTP)
	authGroup.POST("/reset-password", h.Auth.ResetPassword)

	users := api.Group("/users", auth)
	users.GET("", h.Users.List, admin)
	users.POST("", h.Users.Add, admin)
	users.GET("/me", h.Users.Me)
	users.GET("/:id", h.Users.Get)
	users.PUT("/role/:id", h.Users.UpdateRole, admin)
	users.PATCH("/:id", h.Users.Edit)
	users.PATCH("/:id/order-info", h.Users.UpdateOrderInfo)
	users.PATCH("/:id/password", h.Users.ChangePassword)
	users.DELETE("/:id", h.Users.Delete, admin)

	categories := api.Group("/categories")
	categories.GET("", h.Categories.All)
	categories.GET("/all", h.Categories.List)
	categories.GET("/:slug", h.Categories.Get)
	categories.GET("/:slug/subcategories", h.Categories.Subcategories)
	categories.POST("", h.Categories.Create, auth, admin)
	categories.PATCH("/:slug", h.Categories.Update, auth, admin)
	categories.DELETE("/:slug", h.Categories.Delete, auth, admin)

	subcategories := api.Group("/subcategories")
	subcategories.GET("", h.Subcategories.All)
	subcategories.GET("/all", h.Subcategories.List)
	subcategories.GET("/:id", h.Subcategories.Get)
	subcategories.POST("", h.Subcategories.Create, auth, admin)
	subcategories.PATCH("/:id", h.Subcategories.Update, auth, admin)
	subcategories.DELETE("/:id", h.Subcategories.Delete, auth, admin)

	products := api.Group("/products")
	products.GET("", h.Products.List)
	products.GET("/export", h.Products.Export, auth, admin)
	products.GET("/:id", h.Products.Get)
	products.POST("", h.Products.Create, auth, staff)
	products.PATCH("/:id", h.Products.Update, auth, staff)
	products.PUT("/:id/stock", h.Products.SetStock, auth, staff)
	products.DELETE("/:id", h.Products.Delete, auth, staff)

	sizes := api.Group("/sizes")
	sizes.GET("", h.Sizes.All)
	sizes.GET("/:id", h.Sizes.Get)
	sizes.POST("", h.Sizes.Create, auth, admin)
	sizes.PATCH("/:id", h.Sizes.Update, auth, admin)
	sizes.DELETE("/:id", h.Sizes.Delete, auth, admin)

	cart := api.Group("/cart", auth)
	cart.POST("", h.Cart.Add)
	cart.PATCH("/increment-quantity", h.Cart.Increment)
	cart.PATCH("/decrement-quantity", h.Cart.Decrement)
	cart.GET("/:userId", h.Cart.Get)
	cart.DELETE("/:userId/:productId", h.Cart.Remove)
	cart.DELETE("/:userId", h.Cart.Clear)

	wishlist := api.Group("/wishlist", auth)
	wishlist.POST("", h.Wishlist.Add)
	wishlist.GET("/:userId", h.Wishlist.List)
	wishlist.DELETE("/:userId/:productId", h.Wishlist.Remove)

	coupons := api.Group("/coupon")
	coupons.POST("/apply", h.Coupons.Apply)
	coupons.GET("", h.Coupons.List, auth, admin)
	coupons.POST("", h.Coupons.Create, auth, admin)
	coupons.PATCH("/:id", h.Coupons.Update, auth, admin)
	coupons.DELETE("/:id", h.Coupons.Delete, auth, admin)

	orders := api.Group("/orders")
	orders.GET("/ws", OrderFeed(h.Feed), tokenFromQuery, auth, admin)
	orders.POST("", h.Orders.Create, auth)
	orders.GET("", h.Orders.List, auth, admin)
	orders.GET("/user/:userId", h.Orders.ListForUser, auth)
	orders.GET("/:id", h.Orders.Get, auth)
	orders.PATCH("/:id/status", h.Orders.UpdateStatus, auth, admin)

	api.POST("/payment/checkout", h.Checkout.Checkout, auth)

	uploads := api.Group("/upload", auth)
	uploads.POST("/image", h.Uploads.Image)
	uploads.POST("/images", h.Uploads.Images)

	banners := api.Group("/banners")
	banners.GET("", h.Banners.List)
	banners.GET("/all", h.Banners.All)
	banners.GET("/:id", h.Banners.Get)
	banners.POST("", h.Banners.Create, auth, admin)
	banners.PATCH("/:id", h.Banners.Update, auth, admin)
	banners.DELETE("/:id", h.Banners.Delete, auth, admin)

	newsletter := api.Group("/subscribe/newsletter")
	newsletter.POST("", h.Newsletter.Subscribe)
	newsletter.GET("", h.Newsletter.List, auth, admin)
	newsletter.DELETE("/:id", h.Newsletter.Delete, auth, admin)

	contact := api.Group("/contact-us")
	contact.POST("", h.Contact.Send)
	contact.GET("", h.Contact.List, auth, admin)
}
