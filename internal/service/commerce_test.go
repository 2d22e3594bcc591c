package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/repository/repotest"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/payment"
	"github.com/suteetoe/krist-shop/pkg/pricing"
)

func TestCartAddMergesLines(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewCartService(repos.Carts, repos.Users, repos.Products)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	shirt := seedProduct(t, repos, "shirt", "12.50")
	hat := seedProduct(t, repos, "hat", "5")

	first, err := svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: shirt.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	again, err := svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: shirt.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, again.Quantity)
	assert.Equal(t, first.ID, again.ID)

	_, err = svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: hat.ID, Quantity: 4})
	require.NoError(t, err)

	summary, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 7, summary.TotalQuantity)
	assert.Equal(t, "57.5", summary.Subtotal.String())

	_, err = svc.Add(ctx, CartLineInput{UserID: "missing", ProductID: shirt.ID})
	requireAppError(t, err, apperror.KindNotFound, "User not found!")
	_, err = svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: "missing"})
	requireAppError(t, err, apperror.KindNotFound, "Product not found!")
}

func TestCartConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewCartService(repos.Carts, repos.Users, repos.Products)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	p := seedProduct(t, repos, "shirt", "1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID, Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	summary, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 20, summary.Items[0].Quantity)
}

func TestCartQuantityAdjustments(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewCartService(repos.Carts, repos.Users, repos.Products)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	p := seedProduct(t, repos, "shirt", "1")

	_, err := svc.Increment(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID})
	requireAppError(t, err, apperror.KindNotFound, "Cart item not found!")

	_, err = svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	line, err := svc.Increment(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	line, removed, err := svc.Decrement(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID})
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 4, line.Quantity)

	_, removed, err = svc.Decrement(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID, Quantity: 4})
	require.NoError(t, err)
	assert.True(t, removed)

	summary, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Subtotal.IsZero())
}

func TestCartRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewCartService(repos.Carts, repos.Users, repos.Products)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	a := seedProduct(t, repos, "a", "1")
	b := seedProduct(t, repos, "b", "2")
	for _, p := range []*model.Product{a, b} {
		_, err := svc.Add(ctx, CartLineInput{UserID: u.ID, ProductID: p.ID})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Remove(ctx, u.ID, a.ID))
	requireAppError(t, svc.Remove(ctx, u.ID, a.ID), apperror.KindNotFound, "Cart item not found!")

	n, err := svc.Clear(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewWishlistService(repos.Wishlists, repos.Users, repos.Products)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	p := seedProduct(t, repos, "shirt", "1")

	item, err := svc.Add(ctx, WishlistInput{UserID: u.ID, ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, item.Product.ID)

	_, err = svc.Add(ctx, WishlistInput{UserID: u.ID, ProductID: p.ID})
	requireAppError(t, err, apperror.KindConflict, "Product is already in wishlist")

	_, err = svc.Add(ctx, WishlistInput{UserID: u.ID, ProductID: "missing"})
	requireAppError(t, err, apperror.KindNotFound, "Product not found!")

	items, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Remove(ctx, u.ID, p.ID))
	requireAppError(t, svc.Remove(ctx, u.ID, p.ID), apperror.KindNotFound, "Wishlist item not found")
}

func seedCoupon(t *testing.T, repos *repotest.Repos, code string, kind pricing.DiscountType, amount string, active bool, expires *time.Time) {
	t.Helper()
	require.NoError(t, repos.Coupons.Create(context.Background(), &model.Coupon{
		Code:         code,
		DiscountType: kind,
		Amount:       decimal.RequireFromString(amount),
		IsActive:     active,
		ExpiresAt:    expires,
	}))
}

func TestCouponApply(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewCouponService(repos.Coupons)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	seedCoupon(t, repos, "SAVE10", pricing.Percentage, "10", true, &future)
	seedCoupon(t, repos, "FLAT50", pricing.Fixed, "50", true, nil)
	seedCoupon(t, repos, "OLD", pricing.Fixed, "5", true, &past)
	seedCoupon(t, repos, "OFF", pricing.Fixed, "5", false, nil)

	subtotal := decimal.RequireFromString("200")
	tests := []struct {
		name     string
		code     string
		subtotal string
		discount string
		total    string
		kind     apperror.Kind
		message  string
	}{
		{name: "percentage", code: "save10", subtotal: "200", discount: "20", total: "180"},
		{name: "fixed clamps at zero", code: "FLAT50", subtotal: "30", discount: "50", total: "0"},
		{name: "expired", code: "OLD", subtotal: "200", kind: apperror.KindBadRequest, message: "Coupon has expired!"},
		{name: "inactive", code: "OFF", subtotal: "200", kind: apperror.KindNotFound, message: "Coupon not found or expired!"},
		{name: "unknown", code: "NOPE", subtotal: "200", kind: apperror.KindNotFound, message: "Coupon not found or expired!"},
		{name: "negative subtotal", code: "SAVE10", subtotal: "-1", kind: apperror.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal = decimal.RequireFromString(tt.subtotal)
			res, err := svc.Apply(ctx, ApplyCouponInput{Code: tt.code, Subtotal: &subtotal})
			if tt.discount == "" {
				requireAppError(t, err, tt.kind, tt.message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.discount, res.Discount.String())
			assert.Equal(t, tt.total, res.Total.String())
		})
	}
}

func TestCouponAdmin(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewCouponService(repos.Coupons)

	_, err := svc.Create(ctx, CouponInput{Code: "big", DiscountType: pricing.Percentage, Amount: decimal.NewFromInt(150)})
	requireAppError(t, err, apperror.KindBadRequest, "Percentage discount cannot exceed 100")
	_, err = svc.Create(ctx, CouponInput{Code: "zero", DiscountType: pricing.Fixed, Amount: decimal.Zero})
	requireAppError(t, err, apperror.KindBadRequest, "")

	c, err := svc.Create(ctx, CouponInput{Code: "spring", DiscountType: pricing.Percentage, Amount: decimal.NewFromInt(15)})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", c.Code)
	assert.True(t, c.IsActive)

	_, err = svc.Create(ctx, CouponInput{Code: "SPRING", DiscountType: pricing.Fixed, Amount: decimal.NewFromInt(1)})
	requireAppError(t, err, apperror.KindConflict, "Coupon with this code already exists.")

	inactive := false
	updated, err := svc.Update(ctx, c.ID, UpdateCouponInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err = svc.Update(ctx, c.ID, UpdateCouponInput{ExpiresAt: Present(expiry)})
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
	assert.True(t, updated.ExpiresAt.Equal(expiry))

	updated, err = svc.Update(ctx, c.ID, UpdateCouponInput{ExpiresAt: Cleared[time.Time]()})
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiresAt)

	page, err := svc.List(ctx, repository.ListQuery{Pagination: repository.Pagination{Page: 1, Limit: 24}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.Delete(ctx, c.ID))
	requireAppError(t, svc.Delete(ctx, c.ID), apperror.KindNotFound, "Coupon not found.")
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingBroadcaster) Broadcast(eventType string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func TestOrderCreatePricesFromCatalog(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	events := &recordingBroadcaster{}
	svc := NewOrderService(repos.Orders, repos.Users, repos.Products, events)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	shirt := seedProduct(t, repos, "shirt", "19.99")
	hat := seedProduct(t, repos, "hat", "5")

	order, err := svc.Create(ctx, OrderInput{
		UserID:         u.ID,
		Products:       []OrderLineInput{{ProductID: shirt.ID, Quantity: 2}, {ProductID: hat.ID, Quantity: 1}},
		DeliveryMethod: model.DeliveryCourier,
		PaymentMethod:  model.PaymentCash,
		Shipping:       decimal.RequireFromString("7"),
		Coupon:         decimal.RequireFromString("3"),
		Region:         "Tashkent",
		District:       "Chilonzor",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "48.98", order.Price.StringFixed(2))
	require.Len(t, order.Products, 2)
	assert.Equal(t, "39.98", order.Products[0].Price.StringFixed(2))
	assert.Equal(t, "Product shirt", order.Products[0].ProductName)
	assert.Equal(t, order.ID, order.Products[0].OrderID)
	assert.Equal(t, []string{EventOrderCreated}, events.events)

	huge, err := svc.Create(ctx, OrderInput{
		UserID:         u.ID,
		Products:       []OrderLineInput{{ProductID: hat.ID, Quantity: 1}},
		DeliveryMethod: model.DeliveryPickup,
		PaymentMethod:  model.PaymentClick,
		Coupon:         decimal.RequireFromString("100"),
		Region:         "Tashkent",
		District:       "Chilonzor",
	})
	require.NoError(t, err)
	assert.True(t, huge.Price.IsZero(), "total is floored at zero")
}

func TestOrderCreateFailures(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewOrderService(repos.Orders, repos.Users, repos.Products, nil)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	p := seedProduct(t, repos, "shirt", "10")

	base := OrderInput{
		UserID:         u.ID,
		Products:       []OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		DeliveryMethod: model.DeliveryPostal,
		PaymentMethod:  model.PaymentPayme,
		Region:         "Tashkent",
		District:       "Chilonzor",
	}

	missing := base
	missing.Products = []OrderLineInput{{ProductID: "00000000-0000-0000-0000-000000000000", Quantity: 1}}
	_, err := svc.Create(ctx, missing)
	requireAppError(t, err, apperror.KindNotFound, "")

	negative := base
	negative.Shipping = decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, negative)
	requireAppError(t, err, apperror.KindBadRequest, "")

	repos.Orders.FailCreate = errors.New("tx aborted")
	_, err = svc.Create(ctx, base)
	requireAppError(t, err, apperror.KindInternal, "Internal server error")

	page, err := svc.List(ctx, repository.OrderFilter{Pagination: repository.Pagination{Page: 1, Limit: 24}})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "failed orders leave nothing behind")
}

func TestOrderStatusUpdate(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	events := &recordingBroadcaster{}
	svc := NewOrderService(repos.Orders, repos.Users, repos.Products, events)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)
	p := seedProduct(t, repos, "shirt", "10")

	order, err := svc.Create(ctx, OrderInput{
		UserID:         u.ID,
		Products:       []OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		DeliveryMethod: model.DeliveryCourier,
		PaymentMethod:  model.PaymentCash,
		Region:         "Tashkent",
		District:       "Chilonzor",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, model.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDelivered, updated.Status)

	// any known status may follow any other
	back, err := svc.UpdateStatus(ctx, order.ID, model.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, back.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderStatus("shipped"))
	requireAppError(t, err, apperror.KindBadRequest, "")
	_, err = svc.UpdateStatus(ctx, "missing", model.OrderCanceled)
	requireAppError(t, err, apperror.KindNotFound, "Order not found!")

	assert.Equal(t, []string{EventOrderCreated, EventOrderStatus, EventOrderStatus}, events.events)

	page, err := svc.List(ctx, repository.OrderFilter{Pagination: repository.Pagination{Page: 1, Limit: 24}, Status: model.OrderPending, UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

type fakeGateway struct {
	req payment.SessionRequest
	err error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (string, error) {
	g.req = req
	if g.err != nil {
		return "", g.err
	}
	return "https://checkout.example.com/session", nil
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	gateway := &fakeGateway{}
	svc := NewCheckoutService(repos.Products, gateway, "https://shop.example.com/")
	p := seedProduct(t, repos, "shirt", "19.99")

	shipping, coupon := decimal.RequireFromString("5"), decimal.RequireFromString("2.5")
	session, err := svc.Checkout(ctx, CheckoutInput{
		UserID:   "00000000-0000-0000-0000-000000000001",
		Products: []OrderLineInput{{ProductID: p.ID, Quantity: 3}},
		Shipping: &shipping,
		Coupon:   &coupon,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/session", session.URL)

	req := gateway.req
	require.Len(t, req.Items, 2)
	assert.Equal(t, int64(1999), req.Items[0].UnitAmount)
	assert.Equal(t, int64(3), req.Items[0].Quantity)
	assert.Equal(t, []string{p.ImageURL}, req.Items[0].Images)
	assert.Equal(t, "Shipping", req.Items[1].Name)
	assert.Equal(t, int64(500), req.Items[1].UnitAmount)
	assert.Equal(t, int64(250), req.DiscountAmount)
	assert.Equal(t, "https://shop.example.com?checkout=success", req.SuccessURL)
	assert.Equal(t, "https://shop.example.com/cart", req.CancelURL)

	generous := decimal.RequireFromString("500")
	capped, err := svc.Request(ctx, CheckoutInput{
		Products: []OrderLineInput{{ProductID: p.ID, Quantity: 2}},
		Shipping: &shipping,
		Coupon:   &generous,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2*1999+500), capped.DiscountAmount)

	gateway.err = errors.New("card network down")
	_, err = svc.Checkout(ctx, CheckoutInput{Products: []OrderLineInput{{ProductID: p.ID, Quantity: 1}}})
	requireAppError(t, err, apperror.KindInternal, "")

	unconfigured := NewCheckoutService(repos.Products, nil, "https://shop.example.com")
	_, err = unconfigured.Checkout(ctx, CheckoutInput{Products: []OrderLineInput{{ProductID: p.ID, Quantity: 1}}})
	requireAppError(t, err, apperror.KindInternal, "Payment provider is not configured")
}
