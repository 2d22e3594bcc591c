//go:build integration
// +build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/pkg/database"
)

// setupTestDB starts a PostgreSQL container and migrates every model into it
func setupTestDB(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{DSN: connStr, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db, model.All()...))
	return db
}

func seedUser(t *testing.T, repo UserRepository, email string) *model.User {
	u := &model.User{FirstName: "Test", LastName: "User", Email: &email, Password: "hash", Role: model.RoleCustomer}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, repo ProductRepository, slug string, price int64, categoryID *string) *model.Product {
	p := &model.Product{
		Name:          slug,
		Slug:          slug,
		CurrentPrice:  decimal.NewFromInt(price),
		OriginalPrice: decimal.NewNullDecimal(decimal.NewFromInt(price * 2)),
		CategoryID:    categoryID,
		Colors:        []model.Color{{Name: "Black", HexCode: "#000000"}},
		Stock:         []model.Stock{{Color: "Black", Size: "m", Quantity: 3}},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	categories := NewCategoryRepository(db)
	subcategories := NewSubcategoryRepository(db)
	products := NewProductRepository(db)
	carts := NewCartRepository(db)
	wishlists := NewWishlistRepository(db)
	orders := NewOrderRepository(db)
	banners := NewBannerRepository(db)

	t.Run("user lookup by identifier and duplicate email", func(t *testing.T) {
		u := seedUser(t, users, "ann@example.com")

		found, err := users.FindByIdentifier(ctx, "ANN@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)

		dup := "ann@example.com"
		err = users.Create(ctx, &model.User{FirstName: "A", LastName: "B", Email: &dup, Password: "x", Role: model.RoleCustomer})
		assert.ErrorIs(t, err, ErrDuplicate)

		_, err = users.FindByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("product filters and category cascade", func(t *testing.T) {
		cat := &model.Category{Name: "Men", Slug: "men"}
		require.NoError(t, categories.Create(ctx, cat))
		sub := &model.Subcategory{Name: "Shirts", Slug: "men-shirts", CategoryID: &cat.ID}
		require.NoError(t, subcategories.Create(ctx, sub))

		cheap := seedProduct(t, products, "cheap-tee", 10, &cat.ID)
		seedProduct(t, products, "fancy-coat", 300, nil)

		low := decimal.NewFromInt(5)
		high := decimal.NewFromInt(50)
		list, total, err := products.List(ctx, ProductFilter{
			ListQuery:    ListQuery{Pagination: Pagination{Page: 1, Limit: 24}},
			MinPrice:     &low,
			MaxPrice:     &high,
			CategorySlug: "men",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, cheap.ID, list[0].ID)
		assert.Equal(t, 50, list[0].DiscountPercentage)

		detail, err := products.FindByID(ctx, cheap.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Colors, 1)
		assert.Len(t, detail.Stock, 1)

		require.NoError(t, categories.Delete(ctx, cat.ID))
		_, err = subcategories.FindByID(ctx, sub.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		orphan, err := products.FindByID(ctx, cheap.ID)
		require.NoError(t, err)
		assert.Nil(t, orphan.CategoryID)
	})

	t.Run("cart increments are not lost under concurrency", func(t *testing.T) {
		u := seedUser(t, users, "cart@example.com")
		p := seedProduct(t, products, "cart-item", 20, nil)

		_, err := carts.AddQuantity(ctx, u.ID, p.ID, 1)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := carts.AdjustQuantity(ctx, u.ID, p.ID, 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		line, err := carts.Find(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 11, line.Quantity)

		again, err := carts.AddQuantity(ctx, u.ID, p.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 15, again.Quantity)

		_, removed, err := carts.AdjustQuantity(ctx, u.ID, p.ID, -15)
		require.NoError(t, err)
		assert.True(t, removed)

		_, _, err = carts.AdjustQuantity(ctx, u.ID, p.ID, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wishlist duplicate and user cascade", func(t *testing.T) {
		u := seedUser(t, users, "wish@example.com")
		p := seedProduct(t, products, "wish-item", 20, nil)

		require.NoError(t, wishlists.Create(ctx, &model.Wishlist{UserID: u.ID, ProductID: p.ID}))
		err := wishlists.Create(ctx, &model.Wishlist{UserID: u.ID, ProductID: p.ID})
		assert.ErrorIs(t, err, ErrDuplicate)

		require.NoError(t, users.Delete(ctx, u.ID))
		ok, err := wishlists.Exists(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("order lines keep their snapshot after product delete", func(t *testing.T) {
		u := seedUser(t, users, "order@example.com")
		p := seedProduct(t, products, "order-item", 10, nil)

		order := &model.Order{
			UserID:         u.ID,
			DeliveryMethod: model.DeliveryCourier,
			PaymentMethod:  model.PaymentCash,
			Region:         "Tashkent",
			District:       "Yunusabad",
			Status:         model.OrderPending,
			Shipping:       decimal.NewFromInt(5),
			Coupon:         decimal.NewFromInt(2),
			Price:          decimal.NewFromInt(23),
			Products: []model.OrderProduct{{
				ProductID:   &p.ID,
				ProductName: p.Name,
				Quantity:    2,
				UnitPrice:   decimal.NewFromInt(10),
				Price:       decimal.NewFromInt(20),
			}},
		}
		require.NoError(t, orders.Create(ctx, order))
		require.NoError(t, orders.UpdateStatus(ctx, order.ID, model.OrderDelivered))
		require.NoError(t, products.Delete(ctx, p.ID))

		saved, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderDelivered, saved.Status)
		require.Len(t, saved.Products, 1)
		assert.Nil(t, saved.Products[0].ProductID)
		assert.Equal(t, "order-item", saved.Products[0].ProductName)

		list, total, err := orders.List(ctx, OrderFilter{Pagination: Pagination{Page: 1, Limit: 10}, UserID: u.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, list, 1)
	})

	t.Run("banner name and product pair", func(t *testing.T) {
		p := seedProduct(t, products, "banner-item", 10, nil)
		b := &model.Banner{Name: "Sale", Slug: "sale", ImageURL: "https://img/sale.png", IsActive: true, ProductID: &p.ID}
		require.NoError(t, banners.Create(ctx, b))

		taken, err := banners.ExistsByNameAndProduct(ctx, "Sale", &p.ID, "")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = banners.ExistsByNameAndProduct(ctx, "Sale", &p.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}
