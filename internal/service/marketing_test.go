package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/repository/repotest"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/config"
)

func TestBannerUniqueness(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewBannerService(repos.Banners, repos.Products)
	p := seedProduct(t, repos, "shirt", "10")

	summer, err := svc.Create(ctx, BannerInput{Name: "Summer", Slug: "summer", ImageURL: "https://img.example.com/b.png", ProductID: strPtr(p.ID)})
	require.NoError(t, err)
	assert.True(t, summer.IsActive)

	_, err = svc.Create(ctx, BannerInput{Name: "Summer", Slug: "summer-2", ImageURL: "https://img.example.com/b.png", ProductID: strPtr(p.ID)})
	requireAppError(t, err, apperror.KindConflict, "Banner already exists for this product.")

	// same name without a product is a different pair
	_, err = svc.Create(ctx, BannerInput{Name: "Summer", Slug: "summer-3", ImageURL: "https://img.example.com/b.png"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, BannerInput{Name: "Winter", Slug: "summer", ImageURL: "https://img.example.com/b.png"})
	requireAppError(t, err, apperror.KindConflict, "Banner with this slug already exists.")

	_, err = svc.Create(ctx, BannerInput{Name: "Ghost", Slug: "ghost", ImageURL: "https://img.example.com/b.png", ProductID: strPtr("00000000-0000-0000-0000-000000000000")})
	requireAppError(t, err, apperror.KindNotFound, "Product not found!")

	discount := 30
	updated, err := svc.Update(ctx, summer.ID, UpdateBannerInput{OverrideDiscount: &discount, Description: strPtr("Hot deals")})
	require.NoError(t, err)
	assert.Equal(t, 30, *updated.OverrideDiscount)
	assert.Equal(t, "Hot deals", *updated.Description)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := svc.List(ctx, repository.ListQuery{Pagination: repository.Pagination{Page: 1, Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 1)

	require.NoError(t, svc.Delete(ctx, summer.ID))
	_, err = svc.Get(ctx, summer.ID)
	requireAppError(t, err, apperror.KindNotFound, "Banner not found.")
}

func TestSubscribeLinksAccount(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewSubscribeService(repos.Newsletters, repos.Users)
	u := seedUser(t, repos, "ann@example.com", model.RoleCustomer)

	linked, err := svc.Subscribe(ctx, SubscribeInput{Email: "Ann@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", linked.Email)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, u.ID, *linked.UserID)

	_, err = svc.Subscribe(ctx, SubscribeInput{Email: "ann@example.com"})
	requireAppError(t, err, apperror.KindConflict, "This email is already subscribed.")

	guest, err := svc.Subscribe(ctx, SubscribeInput{Email: "guest@example.com"})
	require.NoError(t, err)
	assert.Nil(t, guest.UserID)

	page, err := svc.List(ctx, repository.ListQuery{Pagination: repository.Pagination{Page: 1, Limit: 24}, Search: "guest"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.Delete(ctx, guest.ID))
	requireAppError(t, svc.Delete(ctx, guest.ID), apperror.KindNotFound, "Newsletter not found.")
}

func TestContact(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepos()
	svc := NewContactService(repos.Contacts)

	c, err := svc.Send(ctx, ContactInput{Name: "Ann", Email: "ANN@example.com", PhoneNumber: strPtr(" "), Message: " Where is my order? "})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", c.Email)
	assert.Nil(t, c.PhoneNumber)
	assert.Equal(t, "Where is my order?", c.Message)

	page, err := svc.List(ctx, repository.ListQuery{Pagination: repository.Pagination{Page: 1, Limit: 24}, Search: "order"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

type memoryImages struct {
	uploaded map[string][]byte
	err      error
}

func (m *memoryImages) Upload(_ context.Context, filename string, content io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[filename] = data
	return "https://img.example.com/" + filename, nil
}

func imageFile(name string, body string) ImageFile {
	return ImageFile{
		Name: name,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewBufferString(body)), nil },
	}
}

func uploadLimits() config.UploadConfig {
	return config.UploadConfig{MaxFileSize: 16, MaxFiles: 4, AllowedFormats: []string{"jpg", "jpeg", "png", "webp", "gif", "svg"}}
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	store := &memoryImages{}
	svc := NewUploadService(store, uploadLimits())

	url, err := svc.Image(ctx, imageFile("Photo.PNG", "png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/Photo.PNG", url)
	assert.Equal(t, []byte("png-bytes"), store.uploaded["Photo.PNG"])

	_, err = svc.Image(ctx, imageFile("notes.txt", "x"))
	requireAppError(t, err, apperror.KindBadRequest, "Only jpg, jpeg, png, webp, gif, svg images are allowed.")

	_, err = svc.Image(ctx, imageFile("big.jpg", strings.Repeat("x", 17)))
	requireAppError(t, err, apperror.KindBadRequest, "")

	store.err = errors.New("host down")
	_, err = svc.Image(ctx, imageFile("ok.jpg", "x"))
	requireAppError(t, err, apperror.KindInternal, "")
}

func TestUploadImagesCount(t *testing.T) {
	ctx := context.Background()
	svc := NewUploadService(&memoryImages{}, uploadLimits())

	_, err := svc.Images(ctx, nil)
	requireAppError(t, err, apperror.KindBadRequest, "No images were uploaded. Please select at least one image.")

	five := []ImageFile{
		imageFile("1.jpg", "a"), imageFile("2.jpg", "a"), imageFile("3.jpg", "a"),
		imageFile("4.jpg", "a"), imageFile("5.jpg", "a"),
	}
	_, err = svc.Images(ctx, five)
	requireAppError(t, err, apperror.KindBadRequest, "You can upload a maximum of 4 images at a time.")

	urls, err := svc.Images(ctx, five[:4])
	require.NoError(t, err)
	assert.Len(t, urls, 4)

	unconfigured := NewUploadService(nil, uploadLimits())
	_, err = unconfigured.Images(ctx, five[:1])
	requireAppError(t, err, apperror.KindInternal, "Image storage is not configured")
}
