package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/response"
)

// UploadHandler serves /api/upload
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

func imageFile(fh *multipart.FileHeader) service.ImageFile {
	return service.ImageFile{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Image handles uploading a single image
func (h *UploadHandler) Image(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			logger.FromEcho(c).Debug("Failed to read upload form", zap.Error(err))
		}
		return apperror.BadRequest("No image was uploaded. Please select an image.")
	}
	url, err := h.uploads.Image(c.Request().Context(), imageFile(fh))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Image uploaded successfully", echo.Map{"imageUrl": url})
}

// Images handles uploading several images at once
func (h *UploadHandler) Images(c echo.Context) error {
	var files []service.ImageFile
	form, err := c.MultipartForm()
	if err != nil {
		logger.FromEcho(c).Debug("Failed to read upload form", zap.Error(err))
	} else {
		for _, fh := range form.File["images"] {
			files = append(files, imageFile(fh))
		}
	}
	urls, err := h.uploads.Images(c.Request().Context(), files)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Images uploaded successfully", echo.Map{"imageUrls": urls})
}

// BannerHandler serves /api/banners
type BannerHandler struct {
	banners *service.BannerService
}

// NewBannerHandler creates a new banner handler
func NewBannerHandler(banners *service.BannerService) *BannerHandler {
	return &BannerHandler{banners: banners}
}

// List handles retrieving one page of banners
func (h *BannerHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.banners.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return paged(c, "Banners fetched successfully.", page)
}

// All handles retrieving every banner
func (h *BannerHandler) All(c echo.Context) error {
	banners, err := h.banners.All(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Banners fetched successfully.", banners)
}

// Get handles retrieving a banner by ID
func (h *BannerHandler) Get(c echo.Context) error {
	banner, err := h.banners.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Banner fetched successfully.", banner)
}

// Create handles adding a banner
func (h *BannerHandler) Create(c echo.Context) error {
	var req service.BannerInput
	if err := bind(c, &req); err != nil {
		return err
	}
	banner, err := h.banners.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Banner created successfully.", banner)
}

// Update handles changing a banner
func (h *BannerHandler) Update(c echo.Context) error {
	var req service.UpdateBannerInput
	if err := bind(c, &req); err != nil {
		return err
	}
	banner, err := h.banners.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Banner updated successfully.", banner)
}

// Delete handles removing a banner
func (h *BannerHandler) Delete(c echo.Context) error {
	if err := h.banners.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "Banner deleted successfully.")
}

// NewsletterHandler serves /api/subscribe/newsletter
type NewsletterHandler struct {
	subscriptions *service.SubscribeService
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(subscriptions *service.SubscribeService) *NewsletterHandler {
	return &NewsletterHandler{subscriptions: subscriptions}
}

// Subscribe handles adding an email to the newsletter
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req service.SubscribeInput
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.subscriptions.Subscribe(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Subscribed successfully.", sub)
}

// List handles retrieving one page of subscribers
func (h *NewsletterHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.subscriptions.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return paged(c, "Newsletters fetched successfully", page)
}

// Delete handles removing a subscriber
func (h *NewsletterHandler) Delete(c echo.Context) error {
	if err := h.subscriptions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Message(c, "Newsletter deleted successfully.")
}

// ContactHandler serves /api/contact-us
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Send handles storing a contact form message
func (h *ContactHandler) Send(c echo.Context) error {
	var req service.ContactInput
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, err := h.contacts.Send(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, "Message sent successfully.", msg)
}

// List handles retrieving one page of contact messages
func (h *ContactHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.contacts.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return paged(c, "Messages fetched successfully", page)
}
