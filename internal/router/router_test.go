package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tablecart/internal/config"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type routerFixture struct {
	engine     *gin.Engine
	storefront *models.Storefront
	burger     *models.Product
	fries      *models.Product
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_e2e_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	previous := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = previous })
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	storefront := &models.Storefront{Slug: "main", Name: "Main", Currency: "USD", IsActive: true}
	if err := db.Create(storefront).Error; err != nil {
		t.Fatalf("create storefront failed: %v", err)
	}
	burger := &models.Product{
		StorefrontID: storefront.ID,
		Name:         "Classic Burger",
		PriceAmount:  models.NewMoneyFromMinorUnits(1000),
		IsActive:     true,
		SortOrder:    10,
		Variants: []models.ProductVariant{
			{Name: "Regular", PriceAmount: models.NewMoneyFromMinorUnits(1000), IsDefault: true, IsActive: true},
			{Name: "Large", PriceAmount: models.NewMoneyFromMinorUnits(1400), IsActive: true},
		},
		Addons: []models.ProductAddon{
			{Name: "Cheese", PriceAmount: models.NewMoneyFromMinorUnits(150), IsActive: true},
		},
	}
	fries := &models.Product{StorefrontID: storefront.ID, Name: "Fries", PriceAmount: models.NewMoneyFromMinorUnits(450), IsActive: true}
	for _, product := range []*models.Product{burger, fries} {
		if err := db.Create(product).Error; err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}
	coupon := &models.Coupon{
		StorefrontID: storefront.ID,
		Code:         "SAVE10",
		Type:         "percentage",
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive:     true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Cart:   config.CartConfig{SlotBackend: "memory", SessionSecret: "router-secret"},
	}
	container := provider.NewContainer(cfg)
	return &routerFixture{
		engine:     SetupRouter(cfg, container),
		storefront: storefront,
		burger:     burger,
		fries:      fries,
	}
}

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type cartData struct {
	Items []struct {
		LineID              string `json:"line_id"`
		ProductID           string `json:"product_id"`
		Quantity            int    `json:"quantity"`
		UnitPriceMinorUnits int64  `json:"unit_price_minor_units"`
		LineTotalMinorUnits int64  `json:"line_total_minor_units"`
	} `json:"items"`
	TableLabel string `json:"table_label"`
	Coupon     *struct {
		Code string `json:"code"`
	} `json:"coupon"`
	Currency           string `json:"currency"`
	ItemCount          int    `json:"item_count"`
	SubtotalMinorUnits int64  `json:"subtotal_minor_units"`
	DiscountMinorUnits int64  `json:"discount_minor_units"`
	TotalMinorUnits    int64  `json:"total_minor_units"`
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: http status want 200 got %d", method, path, w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v, body=%s", err, w.Body.String())
	}
	return resp
}

func (f *routerFixture) openSession(t *testing.T, token string) (string, string) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/v1/storefronts/main/cart/session", token, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("create session failed: %+v", resp)
	}
	var session struct {
		Token     string `json:"token"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(resp.Data, &session); err != nil {
		t.Fatalf("unmarshal session failed: %v", err)
	}
	if session.Token == "" || session.SessionID == "" {
		t.Fatalf("session should carry token and id: %s", string(resp.Data))
	}
	return session.Token, session.SessionID
}

func decodeCart(t *testing.T, resp apiResponse) cartData {
	t.Helper()
	if resp.StatusCode != 0 {
		t.Fatalf("expected success, got %d %s", resp.StatusCode, resp.Msg)
	}
	var data cartData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal cart failed: %v", err)
	}
	return data
}

func (f *routerFixture) variantID(name string) string {
	for _, variant := range f.burger.Variants {
		if variant.Name == name {
			return variant.ID
		}
	}
	return ""
}

func TestCartFlow(t *testing.T) {
	f := newRouterFixture(t)
	token, _ := f.openSession(t, "")
	cartPath := "/api/v1/storefronts/main/cart"

	addBody := map[string]interface{}{
		"product_id": f.burger.ID,
		"variant_id": f.variantID("Large"),
		"addon_ids":  []string{f.burger.Addons[0].ID},
		"quantity":   2,
	}
	resp := f.do(t, http.MethodPost, cartPath+"/items", token, addBody)
	if resp.StatusCode != 0 {
		t.Fatalf("add item failed: %+v", resp)
	}
	var added struct {
		Line struct {
			LineID string `json:"line_id"`
		} `json:"line"`
		Cart cartData `json:"cart"`
	}
	if err := json.Unmarshal(resp.Data, &added); err != nil {
		t.Fatalf("unmarshal add response failed: %v", err)
	}
	if added.Cart.SubtotalMinorUnits != 2*(1400+150) {
		t.Fatalf("subtotal want 3100 got %d", added.Cart.SubtotalMinorUnits)
	}

	f.do(t, http.MethodPost, cartPath+"/items", token, addBody)
	view := decodeCart(t, f.do(t, http.MethodGet, cartPath, token, nil))
	if len(view.Items) != 1 || view.Items[0].Quantity != 4 {
		t.Fatalf("identical configuration should merge into one line, got %+v", view.Items)
	}

	view = decodeCart(t, f.do(t, http.MethodPost, cartPath+"/items", token, map[string]interface{}{"product_id": f.fries.ID}))
	if len(view.Items) != 2 || view.ItemCount != 5 {
		t.Fatalf("fries should add a second line with quantity 1, got %+v", view)
	}

	lineID := added.Line.LineID
	view = decodeCart(t, f.do(t, http.MethodPost, cartPath+"/lines/"+lineID+"/decrement", token, nil))
	if view.Items[0].Quantity != 3 {
		t.Fatalf("decrement want 3 got %d", view.Items[0].Quantity)
	}
	view = decodeCart(t, f.do(t, http.MethodPost, cartPath+"/lines/"+lineID+"/increment", token, nil))
	if view.Items[0].Quantity != 4 {
		t.Fatalf("increment want 4 got %d", view.Items[0].Quantity)
	}

	view = decodeCart(t, f.do(t, http.MethodPut, cartPath+"/table-label", token, map[string]string{"table_label": " 12 "}))
	if view.TableLabel != "12" {
		t.Fatalf("table label want 12 got %q", view.TableLabel)
	}

	view = decodeCart(t, f.do(t, http.MethodPost, cartPath+"/coupon", token, map[string]string{"code": "save10"}))
	if view.Coupon == nil || view.Coupon.Code != "SAVE10" {
		t.Fatalf("coupon should be applied, got %+v", view.Coupon)
	}
	wantSubtotal := int64(4*1550 + 450)
	if view.SubtotalMinorUnits != wantSubtotal || view.DiscountMinorUnits != wantSubtotal/10 || view.TotalMinorUnits != wantSubtotal-wantSubtotal/10 {
		t.Fatalf("unexpected totals: %+v", view)
	}

	resp = f.do(t, http.MethodPost, cartPath+"/coupon", token, map[string]string{"code": "NOPE"})
	if resp.StatusCode != 400 || resp.Msg != "error.coupon_not_found" {
		t.Fatalf("unknown coupon should be rejected, got %+v", resp)
	}
	view = decodeCart(t, f.do(t, http.MethodGet, cartPath, token, nil))
	if view.Coupon == nil || view.Coupon.Code != "SAVE10" {
		t.Fatalf("rejected code must keep the active coupon, got %+v", view.Coupon)
	}

	view = decodeCart(t, f.do(t, http.MethodDelete, cartPath+"/coupon", token, nil))
	if view.Coupon != nil || view.DiscountMinorUnits != 0 {
		t.Fatalf("coupon should be removed, got %+v", view)
	}

	view = decodeCart(t, f.do(t, http.MethodDelete, cartPath+"/lines/"+lineID, token, nil))
	if len(view.Items) != 1 || view.Items[0].ProductID != f.fries.ID {
		t.Fatalf("remove should leave only fries, got %+v", view.Items)
	}

	view = decodeCart(t, f.do(t, http.MethodDelete, cartPath, token, nil))
	if len(view.Items) != 0 || view.TableLabel != "" || view.TotalMinorUnits != 0 {
		t.Fatalf("clear should empty the cart, got %+v", view)
	}
}

func TestCartSessionRenewKeepsCart(t *testing.T) {
	f := newRouterFixture(t)
	token, sessionID := f.openSession(t, "")
	f.do(t, http.MethodPost, "/api/v1/storefronts/main/cart/items", token, map[string]interface{}{"product_id": f.fries.ID, "quantity": 3})

	renewed, renewedID := f.openSession(t, token)
	if renewedID != sessionID {
		t.Fatalf("renewal should keep session id %s, got %s", sessionID, renewedID)
	}
	view := decodeCart(t, f.do(t, http.MethodGet, "/api/v1/storefronts/main/cart", renewed, nil))
	if view.ItemCount != 3 {
		t.Fatalf("renewed session should see the same cart, got %+v", view)
	}

	otherToken, otherID := f.openSession(t, "")
	if otherID == sessionID {
		t.Fatalf("a request without token should start a new session")
	}
	view = decodeCart(t, f.do(t, http.MethodGet, "/api/v1/storefronts/main/cart", otherToken, nil))
	if view.ItemCount != 0 {
		t.Fatalf("sessions must not share carts, got %+v", view)
	}
}

func TestCartRejectsInvalidRequests(t *testing.T) {
	f := newRouterFixture(t)
	token, _ := f.openSession(t, "")
	cartPath := "/api/v1/storefronts/main/cart"

	cases := []struct {
		name string
		body interface{}
		code int
		msg  string
	}{
		{name: "missing product", body: map[string]interface{}{"quantity": 1}, code: 400, msg: "error.bad_request"},
		{name: "unknown product", body: map[string]interface{}{"product_id": "missing"}, code: 404, msg: "error.product_not_found"},
		{name: "negative quantity", body: map[string]interface{}{"product_id": f.fries.ID, "quantity": -1}, code: 400, msg: "error.bad_request"},
		{name: "quantity over limit", body: map[string]interface{}{"product_id": f.fries.ID, "quantity": 1000}, code: 400, msg: "error.bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, cartPath+"/items", token, tc.body)
			if resp.StatusCode != tc.code || resp.Msg != tc.msg {
				t.Fatalf("want %d %s got %d %s", tc.code, tc.msg, resp.StatusCode, resp.Msg)
			}
		})
	}

	resp := f.do(t, http.MethodGet, cartPath, "", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("cart without session want 401 got %d", resp.StatusCode)
	}
}

func TestCartLineQuantityLimit(t *testing.T) {
	f := newRouterFixture(t)
	token, _ := f.openSession(t, "")
	cartPath := "/api/v1/storefronts/main/cart"

	if resp := f.do(t, http.MethodPost, cartPath+"/items", token, map[string]interface{}{"product_id": f.fries.ID, "quantity": 999}); resp.StatusCode != 0 {
		t.Fatalf("add at limit failed: %+v", resp)
	}
	view := decodeCart(t, f.do(t, http.MethodGet, cartPath, token, nil))
	if len(view.Items) != 1 || view.Items[0].Quantity != 999 {
		t.Fatalf("expected one line at 999, got %+v", view)
	}
	lineID := view.Items[0].LineID

	resp := f.do(t, http.MethodPost, cartPath+"/items", token, map[string]interface{}{"product_id": f.fries.ID, "quantity": 1})
	if resp.StatusCode != 400 || resp.Msg != "error.cart_line_limit_exceeded" {
		t.Fatalf("merge over limit want 400 error.cart_line_limit_exceeded got %d %s", resp.StatusCode, resp.Msg)
	}
	resp = f.do(t, http.MethodPost, cartPath+"/lines/"+lineID+"/increment", token, nil)
	if resp.StatusCode != 400 || resp.Msg != "error.cart_line_limit_exceeded" {
		t.Fatalf("increment over limit want 400 error.cart_line_limit_exceeded got %d %s", resp.StatusCode, resp.Msg)
	}

	view = decodeCart(t, f.do(t, http.MethodGet, cartPath, token, nil))
	if view.ItemCount != 999 || view.SubtotalMinorUnits != 999*450 {
		t.Fatalf("cart should be unchanged at the limit, got %+v", view)
	}
}

func TestPublicMenuEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/public/storefronts/main/products?page=1&page_size=10", "", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("list products failed: %+v", resp)
	}
	var products []struct {
		ID       string `json:"id"`
		Variants []struct {
			IsDefault bool `json:"is_default"`
		} `json:"variants"`
	}
	if err := json.Unmarshal(resp.Data, &products); err != nil {
		t.Fatalf("unmarshal products failed: %v", err)
	}
	if len(products) != 2 || products[0].ID != f.burger.ID {
		t.Fatalf("expected burger first by sort order, got %+v", products)
	}

	resp = f.do(t, http.MethodGet, "/api/v1/public/storefronts/main/products/"+f.burger.ID+"/options", "", nil)
	var options struct {
		BasePriceMinorUnits int64  `json:"base_price_minor_units"`
		DefaultVariantID    string `json:"default_variant_id"`
		Variants            []struct {
			Name      string `json:"name"`
			IsDefault bool   `json:"is_default"`
		} `json:"variants"`
		Addons []struct {
			PriceMinorUnits int64 `json:"price_minor_units"`
		} `json:"addons"`
	}
	if err := json.Unmarshal(resp.Data, &options); err != nil {
		t.Fatalf("unmarshal options failed: %v", err)
	}
	if options.BasePriceMinorUnits != 1000 || len(options.Variants) != 2 || len(options.Addons) != 1 {
		t.Fatalf("unexpected options: %+v", options)
	}
	if options.DefaultVariantID != f.variantID("Regular") {
		t.Fatalf("default variant want Regular, got %q", options.DefaultVariantID)
	}

	resp = f.do(t, http.MethodGet, "/api/v1/public/storefronts/unknown/products", "", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("unknown storefront want 404 got %d", resp.StatusCode)
	}
	resp = f.do(t, http.MethodGet, "/api/v1/public/storefronts/main/products/missing/options", "", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("unknown product want 404 got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	f := newRouterFixture(t)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health failed: %v", err)
	}
	if body["status"] != "ok" || body["cart_slot"] != "memory" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}
