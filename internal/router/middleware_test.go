package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/repository"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type sessionFixture struct {
	storefront *models.Storefront
	other      *models.Storefront
	carts      *service.CartService
	sessions   *service.CartSessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Storefront{}, &models.Product{}, &models.ProductVariant{}, &models.ProductAddon{}, &models.Coupon{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	storefront := &models.Storefront{Slug: "main", Name: "Main", Currency: "USD", IsActive: true}
	other := &models.Storefront{Slug: "other", Name: "Other", Currency: "USD", IsActive: true}
	for _, item := range []*models.Storefront{storefront, other} {
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("create storefront failed: %v", err)
		}
	}
	catalog := service.NewCatalogService(repository.NewProductRepository(db))
	coupons := service.NewCouponService(repository.NewCouponRepository(db))
	return &sessionFixture{
		storefront: storefront,
		other:      other,
		carts:      service.NewCartService(repository.NewStorefrontRepository(db), catalog, coupons, cart.NewMemorySlot()),
		sessions:   service.NewCartSessionService("router-secret", time.Hour),
	}
}

func (f *sessionFixture) engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/storefronts/:slug/cart", CartSessionMiddleware(f.carts, f.sessions), func(c *gin.Context) {
		value, _ := c.Get(constants.CartContextKey)
		openCart, ok := value.(*service.OpenCart)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"status_code": 500})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "session_id": openCart.SessionID})
	})
	return r
}

type sessionResponse struct {
	StatusCode int    `json:"status_code"`
	Msg        string `json:"msg"`
	SessionID  string `json:"session_id"`
}

func doSessionRequest(t *testing.T, r *gin.Engine, slug string, header map[string]string) sessionResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/storefronts/"+slug+"/cart", nil)
	for key, value := range header {
		req.Header.Set(key, value)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestCartSessionMiddlewareAcceptsBearerAndHeaderToken(t *testing.T) {
	f := newSessionFixture(t)
	session, err := f.sessions.Issue(f.storefront.ID, "")
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	r := f.engine()

	resp := doSessionRequest(t, r, "main", map[string]string{"Authorization": "Bearer " + session.Token})
	if resp.StatusCode != 0 || resp.SessionID != session.SessionID {
		t.Fatalf("bearer token should open the session cart, got %+v", resp)
	}
	resp = doSessionRequest(t, r, "main", map[string]string{constants.CartSessionHeader: session.Token})
	if resp.StatusCode != 0 || resp.SessionID != session.SessionID {
		t.Fatalf("header token should open the session cart, got %+v", resp)
	}
}

func TestCartSessionMiddlewareRejects(t *testing.T) {
	f := newSessionFixture(t)
	session, err := f.sessions.Issue(f.storefront.ID, "")
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	r := f.engine()

	cases := []struct {
		name   string
		slug   string
		header map[string]string
		code   int
		msg    string
	}{
		{name: "missing token", slug: "main", header: nil, code: 401, msg: "error.cart_session_missing"},
		{name: "malformed header", slug: "main", header: map[string]string{"Authorization": "Token abc"}, code: 401, msg: "error.cart_session_missing"},
		{name: "bad token", slug: "main", header: map[string]string{"Authorization": "Bearer abc"}, code: 401, msg: "error.cart_session_invalid"},
		{name: "other storefront", slug: "other", header: map[string]string{"Authorization": "Bearer " + session.Token}, code: 403, msg: "error.cart_session_mismatch"},
		{name: "unknown storefront", slug: "missing", header: map[string]string{"Authorization": "Bearer " + session.Token}, code: 404, msg: "error.storefront_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doSessionRequest(t, r, tc.slug, tc.header)
			if resp.StatusCode != tc.code {
				t.Fatalf("status_code want %d got %d", tc.code, resp.StatusCode)
			}
			if resp.Msg != tc.msg {
				t.Fatalf("msg want %s got %s", tc.msg, resp.Msg)
			}
		})
	}
}

func TestCartSessionMiddlewareWithoutServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/storefronts/:slug/cart", CartSessionMiddleware(nil, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	resp := doSessionRequest(t, r, "main", nil)
	if resp.StatusCode != 500 {
		t.Fatalf("status_code want 500 got %d", resp.StatusCode)
	}
}
