package services

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/database/dbtest"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/optional"
	"github.com/shashiranjanraj/qrmenu/pkg/storage"
)

type env struct {
	db          *gorm.DB
	auth        *AuthService
	restaurants *RestaurantService
	categories  *CategoryService
	items       *ItemService
	menu        *MenuService
	dashboard   *DashboardService
}

func newEnv(t *testing.T) *env {
	db := dbtest.Open(t)
	return &env{
		db:          db,
		auth:        NewAuthService(db),
		restaurants: NewRestaurantService(db),
		categories:  NewCategoryService(db),
		items:       NewItemService(db),
		menu:        NewMenuService(db),
		dashboard:   NewDashboardService(db),
	}
}

func (e *env) register(t *testing.T, email string) *models.User {
	u, err := e.auth.Register(context.Background(), RegisterInput{Name: "Owner", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (e *env) restaurant(t *testing.T, userID, name string) *models.Restaurant {
	r, err := e.restaurants.Create(context.Background(), userID, CreateRestaurantInput{Name: name})
	require.NoError(t, err)
	return r
}

func (e *env) category(t *testing.T, userID, restID, name string) *models.Category {
	c, err := e.categories.Create(context.Background(), userID, restID, CreateCategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (e *env) item(t *testing.T, userID, catID, name string, price float64) *models.MenuItem {
	i, err := e.items.Create(context.Background(), userID, catID, CreateItemInput{Name: name, Price: price})
	require.NoError(t, err)
	return i
}

// ---------- auth ----------

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "a@x.com")

	_, err := e.auth.Register(ctx, RegisterInput{Name: "Again", Email: "A@x.com ", Password: "secret1"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Email is already registered", apperr.From(err).Message)

	var n int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	e := newEnv(t)

	// 40 runes pass the length rule but take 80 bytes.
	_, err := e.auth.Register(context.Background(), RegisterInput{
		Name: "Owner", Email: "long@x.com", Password: strings.Repeat("ğ", 40),
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, msgPasswordTooLong, apperr.From(err).Fields["password"])

	var count int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = e.auth.Register(context.Background(), RegisterInput{
		Name: "Owner", Email: "long@x.com", Password: strings.Repeat("ğ", 36),
	})
	assert.NoError(t, err, "72 bytes is still accepted")
}

func TestRegisterHashesPassword(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "a@x.com")
	assert.NotEqual(t, "secret1", u.Password)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "password")
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")

	res, err := e.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = e.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong!"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = e.auth.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", apperr.From(err).Message)

	me, err := e.auth.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.Email)
}

// ---------- restaurants ----------

func TestCreateRestaurantAssignsSlug(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "a@x.com")

	r := e.restaurant(t, u.ID, "Cafe Milano")
	assert.Equal(t, "cafe-milano", r.Slug)
	assert.Equal(t, models.DefaultPrimaryColor, r.PrimaryColor)
	assert.Equal(t, u.ID, r.UserID)

	r = e.restaurant(t, u.ID, "%%")
	assert.Equal(t, "restaurant", r.Slug)
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	e := newEnv(t)
	e.restaurants.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	alice, bob := e.register(t, "alice@x.com"), e.register(t, "bob@x.com")

	first := e.restaurant(t, alice.ID, "Kose Bufe")
	second := e.restaurant(t, bob.ID, "Köşe Büfe")
	assert.Equal(t, "kose-bufe", first.Slug)
	assert.Equal(t, "kose-bufe-loyw3v28", second.Slug)
}

func TestUpdateRestaurant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r, err := e.restaurants.Create(ctx, u.ID, CreateRestaurantInput{Name: "Cafe", Description: strPtr("Old")})
	require.NoError(t, err)
	e.restaurant(t, u.ID, "Taken")

	got, err := e.restaurants.Update(ctx, u.ID, r.ID, UpdateRestaurantInput{
		Name:         optional.Of("Cafe Roma"),
		Description:  optional.Null[string](),
		PrimaryColor: optional.Of("#ABCDEF"),
		Slug:         optional.Of("Roma Şube"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cafe Roma", got.Name)
	assert.Nil(t, got.Description)
	assert.Equal(t, "#abcdef", got.PrimaryColor)
	assert.Equal(t, "roma-sube", got.Slug)

	_, err = e.restaurants.Update(ctx, u.ID, r.ID, UpdateRestaurantInput{Slug: optional.Of("taken")})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Slug is already taken", apperr.From(err).Message)

	_, err = e.restaurants.Update(ctx, u.ID, r.ID, UpdateRestaurantInput{Slug: optional.Of("!!")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err = e.restaurants.Update(ctx, u.ID, r.ID, UpdateRestaurantInput{Slug: optional.Of("roma-sube")})
	require.NoError(t, err, "keeping the own slug is not a conflict")
	assert.Equal(t, "roma-sube", got.Slug)
}

func TestCrossTenantAccessIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice@x.com"), e.register(t, "bob@x.com")
	r := e.restaurant(t, alice.ID, "Cafe")
	c := e.category(t, alice.ID, r.ID, "Mains")
	i := e.item(t, alice.ID, c.ID, "Soup", 5)

	_, err := e.restaurants.Get(ctx, bob.ID, r.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.restaurants.Update(ctx, bob.ID, r.ID, UpdateRestaurantInput{Name: optional.Of("Mine")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, e.restaurants.Delete(ctx, bob.ID, r.ID), apperr.ErrNotFound)

	_, err = e.categories.Create(ctx, bob.ID, r.ID, CreateCategoryInput{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.categories.Update(ctx, bob.ID, c.ID, UpdateCategoryInput{Name: optional.Of("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, e.categories.Delete(ctx, bob.ID, c.ID), apperr.ErrNotFound)

	_, err = e.items.Create(ctx, bob.ID, c.ID, CreateItemInput{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.items.Update(ctx, bob.ID, i.ID, UpdateItemInput{Price: optional.Of(1.0)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, e.items.Delete(ctx, bob.ID, i.ID), apperr.ErrNotFound)

	err = e.categories.Reorder(ctx, bob.ID, ReorderCategoriesInput{CategoryIDs: []string{c.ID}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteRestaurantCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")
	e.item(t, u.ID, e.category(t, u.ID, r.ID, "A").ID, "x", 1)

	require.NoError(t, e.restaurants.Delete(ctx, u.ID, r.ID))

	list, err := e.restaurants.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	stats, err := e.dashboard.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{}, *stats)
}

func TestListNestsOrderedMenu(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")
	a := e.category(t, u.ID, r.ID, "A")
	b := e.category(t, u.ID, r.ID, "B")
	e.item(t, u.ID, a.ID, "a1", 1)
	require.NoError(t, e.categories.Reorder(ctx, u.ID, ReorderCategoriesInput{CategoryIDs: []string{b.ID, a.ID}}))

	got, err := e.restaurants.Get(ctx, u.ID, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, "B", got.Categories[0].Name)
	assert.Empty(t, got.Categories[0].Items)
	assert.Len(t, got.Categories[1].Items, 1)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"items":[]`)
}

// ---------- categories & items ----------

func TestCategoryOrderingScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")

	first := e.category(t, u.ID, r.ID, "First")
	second := e.category(t, u.ID, r.ID, "Second")
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	require.NoError(t, e.categories.Delete(ctx, u.ID, first.ID))
	third := e.category(t, u.ID, r.ID, "Third")
	assert.Equal(t, 2, third.Order)
}

func TestReorderRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "a@x.com")
	c := e.category(t, u.ID, e.restaurant(t, u.ID, "Cafe").ID, "A")

	err := e.categories.Reorder(context.Background(), u.ID, ReorderCategoriesInput{CategoryIDs: []string{c.ID, c.ID}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateCategoryClearsDescription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")
	c, err := e.categories.Create(ctx, u.ID, r.ID, CreateCategoryInput{Name: "A", Description: strPtr("desc")})
	require.NoError(t, err)
	require.NotNil(t, c.Description)

	got, err := e.categories.Update(ctx, u.ID, c.ID, UpdateCategoryInput{Description: optional.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Equal(t, "A", got.Name)
}

func TestItemUpdateAndAvailability(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")
	c := e.category(t, u.ID, r.ID, "Drinks")
	i := e.item(t, u.ID, c.ID, "Ayran", 12.5)
	assert.True(t, i.IsAvailable)
	assert.Equal(t, 0, i.Order)

	got, err := e.items.Update(ctx, u.ID, i.ID, UpdateItemInput{
		IsAvailable: optional.Of(false),
		Image:       optional.Of("https://cdn.example.com/ayran.png"),
	})
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	require.NotNil(t, got.Image)
	assert.Equal(t, 12.5, got.Price)

	got, err = e.items.Update(ctx, u.ID, i.ID, UpdateItemInput{Image: optional.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, got.Image)
	assert.False(t, got.IsAvailable)
}

// ---------- public menu ----------

func TestPriceRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")
	c := e.category(t, u.ID, r.ID, "Mains")
	e.item(t, u.ID, c.ID, "Pide", 12.5)

	owner, err := e.restaurants.Get(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, owner.Categories[0].Items[0].Price)

	menu, err := e.menu.Show(ctx, r.Slug, SurfaceREST)
	require.NoError(t, err)
	assert.Equal(t, 12.5, menu.Categories[0].Items[0].Price)
}

func TestMenuScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe Milano")
	require.Equal(t, "cafe-milano", r.Slug)
	c := e.category(t, u.ID, r.ID, "Ana Yemekler")
	require.Equal(t, 0, c.Order)
	i := e.item(t, u.ID, c.ID, "Köfte", 45.00)
	require.Equal(t, 0, i.Order)

	menu, err := e.menu.Show(ctx, "cafe-milano", SurfaceREST)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Items, 1)
	assert.Equal(t, "Köfte", menu.Categories[0].Items[0].Name)
	assert.Equal(t, 45.0, menu.Categories[0].Items[0].Price)
	assert.Equal(t, []NavEntry{{ID: c.ID, Name: "Ana Yemekler"}}, menu.Navigation)
	assert.True(t, menu.HasItems)
}

func TestMenuHidesUnavailableItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe")
	drinks := e.category(t, u.ID, r.ID, "Drinks")
	desserts := e.category(t, u.ID, r.ID, "Desserts")
	e.item(t, u.ID, drinks.ID, "Tea", 10)
	hidden := e.item(t, u.ID, desserts.ID, "Baklava", 80)
	_, err := e.items.Update(ctx, u.ID, hidden.ID, UpdateItemInput{IsAvailable: optional.Of(false)})
	require.NoError(t, err)

	menu, err := e.menu.Show(ctx, r.Slug, SurfaceREST)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 2)
	assert.Empty(t, menu.Categories[1].Items)
	assert.Equal(t, []NavEntry{{ID: drinks.ID, Name: "Drinks"}}, menu.Navigation)

	out, err := json.Marshal(menu)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Baklava")
	assert.NotContains(t, string(out), u.ID)

	_, err = e.menu.Show(ctx, "missing", SurfaceREST)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice@x.com"), e.register(t, "bob@x.com")
	r := e.restaurant(t, alice.ID, "Cafe")
	c := e.category(t, alice.ID, r.ID, "A")
	e.item(t, alice.ID, c.ID, "x", 1)
	e.item(t, alice.ID, c.ID, "y", 1)
	e.restaurant(t, bob.ID, "Other")

	stats, err := e.dashboard.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{Restaurants: 1, Categories: 1, Items: 2}, *stats)
}

// ---------- QR ----------

func TestClampQRSize(t *testing.T) {
	assert.Equal(t, 400, ClampQRSize(0))
	assert.Equal(t, 128, ClampQRSize(10))
	assert.Equal(t, 1024, ClampQRSize(5000))
	assert.Equal(t, 512, ClampQRSize(512))
}

func TestQRRendering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@x.com")
	r := e.restaurant(t, u.ID, "Cafe Milano")
	qr := NewQRService(e.db, "https://menu.example.com/")

	url, err := qr.URL(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://menu.example.com/menu/cafe-milano", url)

	img, err := qr.PNG(ctx, u.ID, r.ID, QROptions{Size: 200, Download: true, Theme: true})
	require.NoError(t, err)
	assert.Equal(t, "cafe-milano-qr.png", img.Filename)
	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())

	page, err := qr.PrintPage(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Contains(t, page, "<h1>Cafe Milano</h1>")
	assert.Contains(t, page, `src="data:image/png;base64,`)
	assert.Contains(t, page, "Scan the QR code to see our menu")

	other := e.register(t, "b@x.com")
	_, err = qr.PNG(ctx, other.ID, r.ID, QROptions{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestParseHexColor(t *testing.T) {
	c, ok := parseHexColor("#f97316")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}, c)
	_, ok = parseHexColor("f97316")
	assert.False(t, ok)
}

// ---------- uploads ----------

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileHeader builds the *multipart.FileHeader a parsed form would hold.
func fileHeader(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func localDisk(t *testing.T) *storage.LocalDisk {
	d, err := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)
	return d
}

func TestSanitizeFolder(t *testing.T) {
	assert.Equal(t, "menu-items", SanitizeFolder(""))
	assert.Equal(t, "logos", SanitizeFolder("Logos"))
	assert.Equal(t, "a/b", SanitizeFolder("//a//b/"))
	assert.Equal(t, "etc/passwd", SanitizeFolder("../etc/passwd"))
	assert.Equal(t, "menu-items", SanitizeFolder("../.."))
}

func TestUploadStoresImage(t *testing.T) {
	disk := localDisk(t)
	svc := NewUploadService(disk, 5<<20)
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	body := pngBytes(t)

	url, err := svc.Store(context.Background(), "Logos", fileHeader(t, "logo.png", "image/png", body))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/storage/logos/1700000000000-"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	key, ok := disk.PathFromURL(url)
	require.True(t, ok)
	stored, err := os.ReadFile(filepath.Join(disk.Root(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, body, stored)

	require.NoError(t, svc.Remove(context.Background(), url))
	exists, err := disk.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUploadRejections(t *testing.T) {
	svc := NewUploadService(localDisk(t), 5<<20)
	ctx := context.Background()

	_, err := svc.Store(ctx, "", nil)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "The file field is required.", apperr.From(err).Message)

	_, err = svc.Store(ctx, "", fileHeader(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Store(ctx, "", fileHeader(t, "fake.png", "image/png", []byte("not an image at all")))
	assert.ErrorIs(t, err, apperr.ErrValidation, "declared type must be confirmed by content")

	small := NewUploadService(localDisk(t), 16)
	_, err = small.Store(ctx, "", fileHeader(t, "big.png", "image/png", pngBytes(t)))
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "The file must not be larger than 16 bytes.", apperr.From(err).Message)

	err = svc.Remove(ctx, "https://elsewhere.example.com/x.png")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUploadWithoutDiskIsUnavailable(t *testing.T) {
	svc := NewUploadService(nil, 5<<20)
	_, err := svc.Store(context.Background(), "", nil)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.ErrorIs(t, svc.Remove(context.Background(), "x"), apperr.ErrUnavailable)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "5MB", humanBytes(5<<20))
	assert.Equal(t, "512KB", humanBytes(512<<10))
	assert.Equal(t, "100 bytes", humanBytes(100))
}

func strPtr(s string) *string { return &s }
