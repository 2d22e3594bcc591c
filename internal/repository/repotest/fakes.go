package repotest

import (
	"context"
	"strings"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
)

// Repos bundles one fake per repository, sharing state where rows reference each other
type Repos struct {
	Users         *Users
	Categories    *Categories
	Subcategories *Subcategories
	Products      *Products
	Sizes         *Sizes
	Carts         *Carts
	Wishlists     *Wishlists
	Coupons       *Coupons
	Orders        *Orders
	Banners       *Banners
	Newsletters   *Newsletters
	Contacts      *Contacts
}

// NewRepos creates an empty set of fakes
func NewRepos() *Repos {
	users := &Users{s: newStore(func(v *model.User) *model.Base { return &v.Base })}
	categories := &Categories{s: newStore(func(v *model.Category) *model.Base { return &v.Base })}
	subcategories := &Subcategories{
		s:          newStore(func(v *model.Subcategory) *model.Base { return &v.Base }),
		categories: categories,
	}
	categories.subcategories = subcategories
	products := &Products{
		s:             newStore(func(v *model.Product) *model.Base { return &v.Base }),
		categories:    categories,
		subcategories: subcategories,
	}
	return &Repos{
		Users:         users,
		Categories:    categories,
		Subcategories: subcategories,
		Products:      products,
		Sizes:         &Sizes{s: newStore(func(v *model.Size) *model.Base { return &v.Base })},
		Carts:         &Carts{s: newStore(func(v *model.Cart) *model.Base { return &v.Base }), products: products},
		Wishlists:     &Wishlists{s: newStore(func(v *model.Wishlist) *model.Base { return &v.Base }), products: products},
		Coupons:       &Coupons{s: newStore(func(v *model.Coupon) *model.Base { return &v.Base })},
		Orders:        &Orders{s: newStore(func(v *model.Order) *model.Base { return &v.Base })},
		Banners:       &Banners{s: newStore(func(v *model.Banner) *model.Base { return &v.Base })},
		Newsletters:   &Newsletters{s: newStore(func(v *model.Newsletter) *model.Base { return &v.Base })},
		Contacts:      &Contacts{s: newStore(func(v *model.Contact) *model.Base { return &v.Base })},
	}
}

// Users is an in-memory UserRepository
type Users struct {
	s *store[model.User]
}

var _ repository.UserRepository = (*Users)(nil)

func (f *Users) duplicate(u *model.User) bool {
	_, dup := f.s.first(func(o *model.User) bool {
		if o.ID == u.ID {
			return false
		}
		return (u.Email != nil && o.Email != nil && strings.EqualFold(*u.Email, *o.Email)) ||
			(u.PhoneNumber != nil && o.PhoneNumber != nil && *u.PhoneNumber == *o.PhoneNumber)
	})
	return dup
}

func (f *Users) Create(_ context.Context, u *model.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.duplicate(u) {
		return repository.ErrDuplicate
	}
	f.s.insert(u)
	return nil
}

func (f *Users) Save(_ context.Context, u *model.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if f.duplicate(u) {
		return repository.ErrDuplicate
	}
	f.s.insert(u)
	return nil
}

func (f *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.get(id); ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Users) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	identifier = strings.TrimSpace(identifier)
	if u, ok := f.s.first(func(o *model.User) bool {
		return strings.EqualFold(deref(o.Email), identifier) || (o.PhoneNumber != nil && *o.PhoneNumber == identifier)
	}); ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Users) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(u *model.User) bool {
		return (filter.Role == "" || u.Role == filter.Role) &&
			inRange(filter.ListQuery, u.CreatedAt) &&
			matchesSearch(filter.Search, u.FirstName, u.LastName, deref(u.Email), deref(u.PhoneNumber))
	})
	page, total := paginate(items, filter.Pagination)
	return page, total, nil
}

// UpdateFields supports the columns the services write through it
func (f *Users) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "refresh_token":
			switch token := v.(type) {
			case *string:
				u.RefreshToken = token
			case string:
				u.RefreshToken = &token
			default:
				u.RefreshToken = nil
			}
		case "password":
			u.Password = v.(string)
		case "role":
			u.Role = v.(model.Role)
		}
	}
	return nil
}

func (f *Users) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}

// Categories is an in-memory CategoryRepository
type Categories struct {
	s             *store[model.Category]
	subcategories *Subcategories
}

var _ repository.CategoryRepository = (*Categories)(nil)

func (f *Categories) withSubs(c *model.Category) *model.Category {
	subs := f.subcategories.byCategory(c.ID)
	c.Subcategories = subs
	return c
}

func (f *Categories) Create(_ context.Context, c *model.Category) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(o *model.Category) bool { return o.Slug == c.Slug }); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(c)
	return nil
}

func (f *Categories) Save(_ context.Context, c *model.Category) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	f.s.insert(c)
	return nil
}

func (f *Categories) FindAll(_ context.Context) ([]model.Category, error) {
	f.s.mu.Lock()
	items := f.s.filterAsc(nil)
	f.s.mu.Unlock()
	for i := range items {
		f.withSubs(&items[i])
	}
	return items, nil
}

func (f *Categories) List(_ context.Context, q repository.ListQuery) ([]model.Category, int64, error) {
	f.s.mu.Lock()
	items := f.s.filter(func(c *model.Category) bool {
		return inRange(q, c.CreatedAt) && matchesSearch(q.Search, c.Name, c.Slug)
	})
	f.s.mu.Unlock()
	page, total := paginate(items, q.Pagination)
	for i := range page {
		f.withSubs(&page[i])
	}
	return page, total, nil
}

func (f *Categories) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	f.s.mu.Lock()
	c, ok := f.s.first(func(o *model.Category) bool { return o.Slug == slug })
	f.s.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.withSubs(c), nil
}

func (f *Categories) FindByID(_ context.Context, id string) (*model.Category, error) {
	f.s.mu.Lock()
	c, ok := f.s.get(id)
	f.s.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.withSubs(c), nil
}

func (f *Categories) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(o *model.Category) bool { return o.Slug == slug && o.ID != excludeID })
	return ok, nil
}

// Delete removes the category and cascades to its subcategories
func (f *Categories) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	removed := f.s.remove(id)
	f.s.mu.Unlock()
	if !removed {
		return repository.ErrNotFound
	}
	f.subcategories.deleteByCategory(id)
	return nil
}

// Subcategories is an in-memory SubcategoryRepository
type Subcategories struct {
	s          *store[model.Subcategory]
	categories *Categories
}

var _ repository.SubcategoryRepository = (*Subcategories)(nil)

func (f *Subcategories) byCategory(categoryID string) []model.Subcategory {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.filterAsc(func(s *model.Subcategory) bool { return deref(s.CategoryID) == categoryID })
}

func (f *Subcategories) deleteByCategory(categoryID string) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, s := range f.s.filter(func(s *model.Subcategory) bool { return deref(s.CategoryID) == categoryID }) {
		f.s.remove(s.ID)
	}
}

func (f *Subcategories) Create(_ context.Context, s *model.Subcategory) error {
	if s.CategoryID != nil {
		f.categories.s.mu.Lock()
		_, ok := f.categories.s.rows[*s.CategoryID]
		f.categories.s.mu.Unlock()
		if !ok {
			return repository.ErrInvalidReference
		}
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, dup := f.s.first(func(o *model.Subcategory) bool { return o.Slug == s.Slug }); dup {
		return repository.ErrDuplicate
	}
	f.s.insert(s)
	return nil
}

func (f *Subcategories) Save(_ context.Context, s *model.Subcategory) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	f.s.insert(s)
	return nil
}

func (f *Subcategories) FindAll(_ context.Context) ([]model.Subcategory, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.filterAsc(nil), nil
}

func (f *Subcategories) List(ctx context.Context, filter repository.SubcategoryFilter) ([]model.Subcategory, int64, error) {
	categoryID := ""
	if filter.CategorySlug != "" {
		c, err := f.categories.FindBySlug(ctx, filter.CategorySlug)
		if err != nil {
			return []model.Subcategory{}, 0, nil
		}
		categoryID = c.ID
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.filter(func(s *model.Subcategory) bool {
		return (categoryID == "" || deref(s.CategoryID) == categoryID) &&
			inRange(filter.ListQuery, s.CreatedAt) &&
			matchesSearch(filter.Search, s.Name, s.Slug)
	})
	page, total := paginate(items, filter.Pagination)
	return page, total, nil
}

func (f *Subcategories) FindByID(_ context.Context, id string) (*model.Subcategory, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if s, ok := f.s.get(id); ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Subcategories) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(o *model.Subcategory) bool { return o.Slug == slug && o.ID != excludeID })
	return ok, nil
}

func (f *Subcategories) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}

// Sizes is an in-memory SizeRepository
type Sizes struct {
	s *store[model.Size]
}

var _ repository.SizeRepository = (*Sizes)(nil)

func (f *Sizes) Create(_ context.Context, s *model.Size) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.insert(s)
	return nil
}

func (f *Sizes) Save(_ context.Context, s *model.Size) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	f.s.insert(s)
	return nil
}

func (f *Sizes) FindAll(_ context.Context) ([]model.Size, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.filterAsc(nil), nil
}

func (f *Sizes) FindByID(_ context.Context, id string) (*model.Size, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if s, ok := f.s.get(id); ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *Sizes) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.first(func(o *model.Size) bool {
		return strings.EqualFold(o.Name, strings.TrimSpace(name)) && o.ID != excludeID
	})
	return ok, nil
}

func (f *Sizes) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if !f.s.remove(id) {
		return repository.ErrNotFound
	}
	return nil
}
