package repotest

import (
	"context"
	"strings"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
)

// Products is an in-memory ProductRepository
type Products struct {
	s             *store[model.Product]
	categories    *Categories
	subcategories *Subcategories
}

var _ repository.ProductRepository = (*Products)(nil)

func prepareVariants(p *model.Product) {
	p.DiscountPercentage = p.ComputeDiscount()
	for i := range p.Colors {
		p.Colors[i].ProductID = p.ID
	}
	for i := range p.Stock {
		p.Stock[i].ProductID = p.ID
	}
}

func (f *Products) Create(_ context.Context, p *model.Product) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(o *model.Product) bool { return o.Slug == p.Slug }); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(p)
	prepareVariants(p)
	f.s.insert(p)
	return nil
}

func (f *Products) Update(_ context.Context, p *model.Product, colors *[]model.Color, stock *[]model.Stock) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, ok := f.s.rows[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Colors, p.Stock = existing.Colors, existing.Stock
	if colors != nil {
		p.Colors = *colors
	}
	if stock != nil {
		p.Stock = *stock
	}
	prepareVariants(p)
	f.s.insert(p)
	return nil
}

func (f *Products) FindByID(_ context.Context, id string) (*model.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.get(id); ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Products) FindByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return f.s.filterAsc(func(p *model.Product) bool { return want[p.ID] }), nil
}

func (f *Products) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	categoryID, subcategoryID := "", ""
	if filter.CategorySlug != "" {
		c, err := f.categories.FindBySlug(ctx, filter.CategorySlug)
		if err != nil {
			return []model.Product{}, 0, nil
		}
		categoryID = c.ID
	}
	if filter.SubcategorySlug != "" {
		subs, _, _ := f.subcategories.List(ctx, repository.SubcategoryFilter{})
		for _, s := range subs {
			if s.Slug == filter.SubcategorySlug {
				subcategoryID = s.ID
			}
		}
		if subcategoryID == "" {
			return []model.Product{}, 0, nil
		}
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(p *model.Product) bool {
		switch {
		case filter.MinPrice != nil && p.CurrentPrice.LessThan(*filter.MinPrice):
			return false
		case filter.MaxPrice != nil && p.CurrentPrice.GreaterThan(*filter.MaxPrice):
			return false
		case categoryID != "" && deref(p.CategoryID) != categoryID:
			return false
		case subcategoryID != "" && deref(p.SubcategoryID) != subcategoryID:
			return false
		case filter.IsFeatured != nil && p.IsFeatured != *filter.IsFeatured:
			return false
		case filter.IsBestSeller != nil && p.IsBestSeller != *filter.IsBestSeller:
			return false
		}
		return inRange(filter.ListQuery, p.CreatedAt) && matchesSearch(filter.Search, p.Name, p.ShortDescription)
	})
	page, total := paginate(items, filter.Pagination)
	return page, total, nil
}

func (f *Products) ListAll(_ context.Context) ([]model.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.filter(nil), nil
}

func (f *Products) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(o *model.Product) bool { return o.Slug == slug && o.ID != excludeID })
	return ok, nil
}

func (f *Products) UpsertStock(_ context.Context, stock *model.Stock) (*model.Stock, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.rows[stock.ProductID]
	if !ok {
		return nil, repository.ErrInvalidReference
	}
	rows := append([]model.Stock(nil), p.Stock...)
	for i := range rows {
		if rows[i].Color == stock.Color && rows[i].Size == stock.Size {
			rows[i].Quantity = stock.Quantity
			p.Stock = rows
			saved := rows[i]
			return &saved, nil
		}
	}
	saved := *stock
	p.Stock = append(rows, saved)
	return &saved, nil
}

func (f *Products) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}

// Carts is an in-memory CartRepository
type Carts struct {
	s        *store[model.Cart]
	products *Products
}

var _ repository.CartRepository = (*Carts)(nil)

func (f *Carts) withProduct(ctx context.Context, c *model.Cart) *model.Cart {
	if p, err := f.products.FindByID(ctx, c.ProductID); err == nil {
		c.Product = p
	}
	return c
}

func (f *Carts) line(userID, productID string) (*model.Cart, bool) {
	return f.s.first(func(c *model.Cart) bool { return c.UserID == userID && c.ProductID == productID })
}

func (f *Carts) AddQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if _, err := f.products.FindByID(ctx, productID); err != nil {
		return nil, repository.ErrInvalidReference
	}
	f.s.mu.Lock()
	c, ok := f.line(userID, productID)
	if ok {
		c.Quantity += quantity
	} else {
		c = &model.Cart{UserID: userID, ProductID: productID, Quantity: quantity}
	}
	f.s.insert(c)
	f.s.mu.Unlock()
	return f.withProduct(ctx, c), nil
}

func (f *Carts) AdjustQuantity(ctx context.Context, userID, productID string, delta int) (*model.Cart, bool, error) {
	f.s.mu.Lock()
	c, ok := f.line(userID, productID)
	if !ok {
		f.s.mu.Unlock()
		return nil, false, repository.ErrNotFound
	}
	c.Quantity += delta
	if c.Quantity < 1 {
		f.s.remove(c.ID)
		f.s.mu.Unlock()
		return c, true, nil
	}
	f.s.insert(c)
	f.s.mu.Unlock()
	return f.withProduct(ctx, c), false, nil
}

func (f *Carts) Find(ctx context.Context, userID, productID string) (*model.Cart, error) {
	f.s.mu.Lock()
	c, ok := f.line(userID, productID)
	f.s.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.withProduct(ctx, c), nil
}

func (f *Carts) ListByUser(ctx context.Context, userID string) ([]model.Cart, error) {
	f.s.mu.Lock()
	items := f.s.filter(func(c *model.Cart) bool { return c.UserID == userID })
	f.s.mu.Unlock()
	for i := range items {
		f.withProduct(ctx, &items[i])
	}
	return items, nil
}

func (f *Carts) Delete(_ context.Context, userID, productID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.line(userID, productID)
	if !ok {
		return repository.ErrNotFound
	}
	f.s.remove(c.ID)
	return nil
}

func (f *Carts) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, c := range f.s.filter(func(c *model.Cart) bool { return c.UserID == userID }) {
		f.s.remove(c.ID)
		n++
	}
	return n, nil
}

// Wishlists is an in-memory WishlistRepository
type Wishlists struct {
	s        *store[model.Wishlist]
	products *Products
}

var _ repository.WishlistRepository = (*Wishlists)(nil)

func (f *Wishlists) Create(ctx context.Context, item *model.Wishlist) error {
	if _, err := f.products.FindByID(ctx, item.ProductID); err != nil {
		return repository.ErrInvalidReference
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(w *model.Wishlist) bool {
		return w.UserID == item.UserID && w.ProductID == item.ProductID
	}); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(item)
	return nil
}

func (f *Wishlists) Exists(_ context.Context, userID, productID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(w *model.Wishlist) bool { return w.UserID == userID && w.ProductID == productID })
	return ok, nil
}

func (f *Wishlists) ListByUser(ctx context.Context, userID string) ([]model.Wishlist, error) {
	f.s.mu.Lock()
	items := f.s.filter(func(w *model.Wishlist) bool { return w.UserID == userID })
	f.s.mu.Unlock()
	for i := range items {
		if p, err := f.products.FindByID(ctx, items[i].ProductID); err == nil {
			items[i].Product = p
		}
	}
	return items, nil
}

func (f *Wishlists) Delete(_ context.Context, userID, productID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	w, ok := f.s.first(func(w *model.Wishlist) bool { return w.UserID == userID && w.ProductID == productID })
	if !ok {
		return repository.ErrNotFound
	}
	f.s.remove(w.ID)
	return nil
}

// Coupons is an in-memory CouponRepository
type Coupons struct {
	s *store[model.Coupon]
}

var _ repository.CouponRepository = (*Coupons)(nil)

func (f *Coupons) Create(_ context.Context, c *model.Coupon) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(o *model.Coupon) bool { return strings.EqualFold(o.Code, c.Code) }); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(c)
	return nil
}

func (f *Coupons) Save(_ context.Context, c *model.Coupon) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	f.s.insert(c)
	return nil
}

func (f *Coupons) FindByID(_ context.Context, id string) (*model.Coupon, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if c, ok := f.s.get(id); ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Coupons) FindByCode(_ context.Context, code string) (*model.Coupon, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if c, ok := f.s.first(func(o *model.Coupon) bool { return strings.EqualFold(o.Code, strings.TrimSpace(code)) }); ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Coupons) List(_ context.Context, q repository.ListQuery) ([]model.Coupon, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(c *model.Coupon) bool {
		return inRange(q, c.CreatedAt) && matchesSearch(q.Search, c.Code)
	})
	page, total := paginate(items, q.Pagination)
	return page, total, nil
}

func (f *Coupons) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}

// Orders is an in-memory OrderRepository
type Orders struct {
	s *store[model.Order]
	// FailCreate, when set, is returned by Create without storing anything
	FailCreate error
}

var _ repository.OrderRepository = (*Orders)(nil)

func (f *Orders) Create(_ context.Context, o *model.Order) error {
	if f.FailCreate != nil {
		return f.FailCreate
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.insert(o)
	for i := range o.Products {
		o.Products[i].OrderID = o.ID
	}
	f.s.insert(o)
	return nil
}

func (f *Orders) FindByID(_ context.Context, id string) (*model.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if o, ok := f.s.get(id); ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Orders) List(_ context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(o *model.Order) bool {
		return (filter.Status == "" || o.Status == filter.Status) && (filter.UserID == "" || o.UserID == filter.UserID)
	})
	page, total := paginate(items, filter.Pagination)
	return page, total, nil
}

func (f *Orders) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

// Banners is an in-memory BannerRepository
type Banners struct {
	s *store[model.Banner]
}

var _ repository.BannerRepository = (*Banners)(nil)

func (f *Banners) Create(_ context.Context, b *model.Banner) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(o *model.Banner) bool { return o.Slug == b.Slug }); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(b)
	return nil
}

func (f *Banners) Save(_ context.Context, b *model.Banner) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[b.ID]; !ok {
		return repository.ErrNotFound
	}
	f.s.insert(b)
	return nil
}

func (f *Banners) FindAll(_ context.Context) ([]model.Banner, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.filter(nil), nil
}

func (f *Banners) List(_ context.Context, q repository.ListQuery) ([]model.Banner, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(b *model.Banner) bool {
		return inRange(q, b.CreatedAt) && matchesSearch(q.Search, b.Name, deref(b.Description))
	})
	page, total := paginate(items, q.Pagination)
	return page, total, nil
}

func (f *Banners) FindByID(_ context.Context, id string) (*model.Banner, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if b, ok := f.s.get(id); ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Banners) ExistsByNameAndProduct(_ context.Context, name string, productID *string, excludeID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(o *model.Banner) bool {
		return o.Name == name && deref(o.ProductID) == deref(productID) &&
			(o.ProductID == nil) == (productID == nil) && o.ID != excludeID
	})
	return ok, nil
}

func (f *Banners) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(o *model.Banner) bool { return o.Slug == slug && o.ID != excludeID })
	return ok, nil
}

func (f *Banners) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}

// Newsletters is an in-memory NewsletterRepository
type Newsletters struct {
	s *store[model.Newsletter]
}

var _ repository.NewsletterRepository = (*Newsletters)(nil)

func (f *Newsletters) Create(_ context.Context, n *model.Newsletter) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(o *model.Newsletter) bool { return strings.EqualFold(o.Email, n.Email) }); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(n)
	return nil
}

func (f *Newsletters) FindByEmail(_ context.Context, email string) (*model.Newsletter, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if n, ok := f.s.first(func(o *model.Newsletter) bool { return strings.EqualFold(o.Email, strings.TrimSpace(email)) }); ok {
		return n, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Newsletters) List(_ context.Context, q repository.ListQuery) ([]model.Newsletter, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(n *model.Newsletter) bool {
		return inRange(q, n.CreatedAt) && matchesSearch(q.Search, n.Email)
	})
	page, total := paginate(items, q.Pagination)
	return page, total, nil
}

func (f *Newsletters) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}

// Contacts is an in-memory ContactRepository
type Contacts struct {
	s *store[model.Contact]
}

var _ repository.ContactRepository = (*Contacts)(nil)

func (f *Contacts) Create(_ context.Context, c *model.Contact) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.insert(c)
	return nil
}

func (f *Contacts) List(_ context.Context, q repository.ListQuery) ([]model.Contact, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(c *model.Contact) bool {
		return inRange(q, c.CreatedAt) && matchesSearch(q.Search, c.Name, c.Email, c.Message)
	})
	page, total := paginate(items, q.Pagination)
	return page, total, nil
}
