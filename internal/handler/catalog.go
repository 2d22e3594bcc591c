package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/suteetoe/krist-shop/internal/middleware"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/export"
	"github.com/suteetoe/krist-shop/pkg/response"
)

// CategoryHandler serves /api/categories
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// All handles retrieving every category with its subcategories
func (h *CategoryHandler) All(c echo.Context) error {
	categories, err := h.categories.All(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Categories fetched successfully.", categories)
}

// List handles retrieving one page of categories
func (h *CategoryHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.categories.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return paged(c, "Categories fetched successfully.", page)
}

// Get handles retrieving a category by slug
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.categories.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Category found successfully.", category)
}

// Subcategories handles retrieving the subcategories of a category
func (h *CategoryHandler) Subcategories(c echo.Context) error {
	subs, err := h.categories.Subcategories(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Subcategories fetched successfully.", subs)
}

// Create handles adding a category
func (h *CategoryHandler) Create(c echo.Context) error {
	var req service.CategoryInput
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Category created successfully.", category)
}

// Update handles changing a category
func (h *CategoryHandler) Update(c echo.Context) error {
	var req service.UpdateCategoryInput
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Update(c.Request().Context(), c.Param("slug"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Category updated successfully.", category)
}

// Delete handles removing a category
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.categories.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return err
	}
	return response.Message(c, "Category deleted successfully.")
}

// SubcategoryHandler serves /api/subcategories
type SubcategoryHandler struct {
	subcategories *service.SubcategoryService
}

// NewSubcategoryHandler creates a new subcategory handler
func NewSubcategoryHandler(subcategories *service.SubcategoryService) *SubcategoryHandler {
	return &SubcategoryHandler{subcategories: subcategories}
}

// All handles retrieving every subcategory
func (h *SubcategoryHandler) All(c echo.Context) error {
	subs, err := h.subcategories.All(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Subcategories fetched successfully.", subs)
}

// List handles retrieving one page of subcategories, optionally within a category
func (h *SubcategoryHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.subcategories.List(c.Request().Context(), repository.SubcategoryFilter{
		ListQuery:    q,
		CategorySlug: strings.TrimSpace(c.QueryParam("category")),
	})
	if err != nil {
		return err
	}
	return paged(c, "Subcategories fetched successfully.", page)
}

// Get handles retrieving a subcategory by ID
func (h *SubcategoryHandler) Get(c echo.Context) error {
	sub, err := h.subcategories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Subcategory found successfully.", sub)
}

// Create handles adding a subcategory
func (h *SubcategoryHandler) Create(c echo.Context) error {
	var req service.SubcategoryInput
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.subcategories.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Subcategory created successfully.", sub)
}

// Update handles changing a subcategory
func (h *SubcategoryHandler) Update(c echo.Context) error {
	var req service.UpdateSubcategoryInput
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.subcategories.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Subcategory updated successfully.", sub)
}

// Delete handles removing a subcategory
func (h *SubcategoryHandler) Delete(c echo.Context) error {
	if err := h.subcategories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "Subcategory deleted successfully.")
}

// ProductHandler serves /api/products
type ProductHandler struct {
	products *service.ProductService
	now      func() time.Time
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products, now: time.Now}
}

// List handles retrieving products with filters and pagination
func (h *ProductHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	filter := repository.ProductFilter{
		ListQuery:       q,
		CategorySlug:    strings.TrimSpace(c.QueryParam("category")),
		SubcategorySlug: strings.TrimSpace(c.QueryParam("subcategory")),
	}
	if filter.MinPrice, err = parseDecimal(c, "minPrice"); err != nil {
		return err
	}
	if filter.MaxPrice, err = parseDecimal(c, "maxPrice"); err != nil {
		return err
	}
	if filter.IsFeatured, err = parseBool(c, "isFeatured"); err != nil {
		return err
	}
	if filter.IsBestSeller, err = parseBool(c, "isBestSeller"); err != nil {
		return err
	}

	page, err := h.products.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return paged(c, "Products fetched successfully", page)
}

// Get handles retrieving a product by ID
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.products.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Product fetched successfully", product)
}

// Create handles adding a product owned by the caller
func (h *ProductHandler) Create(c echo.Context) error {
	var req service.ProductInput
	if err := bind(c, &req); err != nil {
		return err
	}
	creator, _ := middleware.CurrentUserID(c)
	product, err := h.products.Create(c.Request().Context(), creator, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Product created successfully.", product)
}

// Update handles a partial product update
func (h *ProductHandler) Update(c echo.Context) error {
	var req service.UpdateProductInput
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Product updated successfully.", product)
}

// SetStock handles setting the quantity of one color and size
func (h *ProductHandler) SetStock(c echo.Context) error {
	var req service.StockUpdateInput
	if err := bind(c, &req); err != nil {
		return err
	}
	stock, err := h.products.SetStock(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Stock updated successfully.", stock)
}

// Delete handles removing a product
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.products.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "Product deleted successfully.")
}

// Export streams the catalog as an .xlsx download
func (h *ProductHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.products.Export(c.Request().Context(), &buf); err != nil {
		return err
	}
	name := service.ExportFilename("products-" + h.now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

// SizeHandler serves /api/sizes
type SizeHandler struct {
	sizes *service.SizeService
}

// NewSizeHandler creates a new size handler
func NewSizeHandler(sizes *service.SizeService) *SizeHandler {
	return &SizeHandler{sizes: sizes}
}

// All handles retrieving every size
func (h *SizeHandler) All(c echo.Context) error {
	sizes, err := h.sizes.All(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Sizes fetched successfully", sizes)
}

// Get handles retrieving a size by ID
func (h *SizeHandler) Get(c echo.Context) error {
	size, err := h.sizes.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Size fetched successfully", size)
}

// Create handles adding a size
func (h *SizeHandler) Create(c echo.Context) error {
	var req service.SizeInput
	if err := bind(c, &req); err != nil {
		return err
	}
	size, err := h.sizes.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Size added successfully", size)
}

// Update handles changing a size
func (h *SizeHandler) Update(c echo.Context) error {
	var req service.SizeInput
	if err := bind(c, &req); err != nil {
		return err
	}
	size, err := h.sizes.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Size updated successfully", size)
}

// Delete handles removing a size
func (h *SizeHandler) Delete(c echo.Context) error {
	if err := h.sizes.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "Size deleted successfully.")
}
