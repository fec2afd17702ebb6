package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"eterno-store/internal/auth"
	"eterno-store/internal/config"
	"eterno-store/internal/database"
	"eterno-store/internal/middleware"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"
	"eterno-store/internal/reports"
	"eterno-store/internal/shop"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type server struct {
	t       *testing.T
	engine  *gin.Engine
	shirt   models.Product
	uploads string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := database.EnsureAdmin(db, "admin123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	shirt := models.Product{Name: "Shirt", Price: 500, Stock: 3, Category: "Shirts"}
	if err := db.Create(&shirt).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	uploads := t.TempDir()
	cfg := config.Config{TransactionLimit: 200, UploadDir: uploads, BaseURL: "http://localhost:8080"}
	f := reports.DefaultFormatter()
	h := New(Deps{
		Config:   cfg,
		DB:       db,
		Tokens:   auth.NewManager("test-secret", time.Hour),
		Shop:     shop.NewService(db, pricing.NewEngine(), nil),
		Reports:  reports.NewService(db, f),
		Logger:   logger,
		Instance: "ETERNO-TEST",
	})

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	RegisterRoutes(r, h)
	return &server{t: t, engine: r, shirt: shirt, uploads: uploads}
}

func (s *server) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, out
}

func (s *server) login(username, password string) string {
	s.t.Helper()
	w, body := s.do(http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, w.Code, w.Body.String())
	}
	return body["token"].(string)
}

func (s *server) customer(username string) string {
	s.t.Helper()
	w, _ := s.do(http.MethodPost, "/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", username, w.Code, w.Body.String())
	}
	return s.login(username, "secret1")
}

func TestHealthEchoesRequestID(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := w.Header().Get(middleware.RequestIDHeader); got != "req-42" {
		t.Fatalf("request id %q", got)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newServer(t)
	w, body := s.do(http.MethodPost, "/login", "", gin.H{"username": "admin", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	if body["success"] != false || body["error"] != "Invalid credentials" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRoleGating(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")
	carol := s.customer("carol")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous admin route", http.MethodGet, "/api/admin/dashboard", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/admin/dashboard", "garbage", http.StatusUnauthorized},
		{"customer on admin route", http.MethodGet, "/api/admin/dashboard", carol, http.StatusForbidden},
		{"admin on admin route", http.MethodGet, "/api/admin/dashboard", admin, http.StatusOK},
		{"admin on customer cart", http.MethodGet, "/api/cart", admin, http.StatusForbidden},
		{"customer cart", http.MethodGet, "/api/cart", carol, http.StatusOK},
		{"me", http.MethodGet, "/api/me", carol, http.StatusOK},
		{"public shop", http.MethodGet, "/shop/products", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.do(tt.method, tt.path, tt.token, nil)
			if w.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want >= 400 && body["success"] != false {
				t.Fatalf("missing error envelope: %v", body)
			}
		})
	}
}

func TestCartCountAnonymousIsZero(t *testing.T) {
	s := newServer(t)
	w, body := s.do(http.MethodGet, "/api/cart/count", "", nil)
	if w.Code != http.StatusOK || body["count"] != float64(0) {
		t.Fatalf("got %d %v", w.Code, body)
	}
}

func TestCheckoutFlow(t *testing.T) {
	s := newServer(t)
	carol := s.customer("carol")

	w, _ := s.do(http.MethodPost, "/api/checkout", carol, gin.H{"payment_method": "cod", "customer_address": "Manila"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty cart checkout: %d", w.Code)
	}

	w, _ = s.do(http.MethodPost, "/api/cart/add", carol, gin.H{"product_id": s.shirt.ID, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("add to cart: %d %s", w.Code, w.Body.String())
	}
	_, body := s.do(http.MethodGet, "/api/cart/count", carol, nil)
	if body["count"] != float64(2) {
		t.Fatalf("cart count %v", body["count"])
	}

	w, body = s.do(http.MethodPost, "/api/checkout", carol, gin.H{"payment_method": "cod", "customer_address": "Manila"})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: %d %s", w.Code, w.Body.String())
	}
	if body["status"] != string(models.StatusCompleted) || body["subtotal"] != float64(1000) {
		t.Fatalf("unexpected checkout body %v", body)
	}

	_, body = s.do(http.MethodGet, "/api/orders", carol, nil)
	if orders := body["orders"].([]any); len(orders) != 1 {
		t.Fatalf("orders %v", orders)
	}

	admin := s.login("admin", "admin123")
	_, body = s.do(http.MethodGet, "/api/admin/orders", admin, nil)
	totals := body["totals"].(map[string]any)
	if totals["customer_orders"] != float64(1) || totals["combined"] != float64(1) {
		t.Fatalf("totals %v", totals)
	}
}

func TestSaleAndReceipt(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")

	w, body := s.do(http.MethodPost, "/api/admin/sales", admin, gin.H{
		"items":         []gin.H{{"product_id": s.shirt.ID, "quantity": 1}},
		"discount_type": "senior",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("sale: %d %s", w.Code, w.Body.String())
	}
	if body["discount_amount"] != float64(100) || body["final_total"] != float64(400) {
		t.Fatalf("unexpected sale body %v", body)
	}

	id := int(body["sale_id"].(float64))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/receipt/"+strconv.Itoa(id), nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("receipt: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestSaleValidationEnvelope(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")

	w, body := s.do(http.MethodPost, "/api/admin/sales", admin, gin.H{"items": []gin.H{}})
	if w.Code != http.StatusBadRequest || body["error"] != "No items in sale" {
		t.Fatalf("got %d %v", w.Code, body)
	}

	w, body = s.do(http.MethodPost, "/api/admin/sales", admin, gin.H{
		"items": []gin.H{{"product_id": s.shirt.ID, "quantity": 99}},
	})
	if w.Code != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("got %d %v", w.Code, body)
	}
}

func TestResetReport(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")

	w, _ := s.do(http.MethodPost, "/api/admin/reports/reset", admin, gin.H{"period": "fortnightly"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid period: %d", w.Code)
	}

	w, body := s.do(http.MethodPost, "/api/admin/reports/reset", admin, gin.H{"period": "Weekly"})
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", w.Code, w.Body.String())
	}
	if body["message"] != "Weekly report reset" {
		t.Fatalf("message %v", body["message"])
	}

	_, body = s.do(http.MethodGet, "/api/admin/reports/checkpoints", admin, nil)
	cps := body["checkpoints"].(map[string]any)
	if _, ok := cps["weekly"]; !ok {
		t.Fatalf("weekly checkpoint missing: %v", cps)
	}
	if _, ok := cps["overall"]; !ok {
		t.Fatalf("overall checkpoint missing: %v", cps)
	}
}

func TestAskDisabledWithoutKey(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")
	w, _ := s.do(http.MethodPost, "/api/admin/ask", admin, gin.H{"message": "how many shirts?"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
}

func TestSystemStatus(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")
	w, body := s.do(http.MethodGet, "/api/admin/system/status", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if body["instance_id"] != "ETERNO-TEST" || body["database"] != "online" || body["redis"] != "disabled" {
		t.Fatalf("unexpected status %v", body)
	}
}

// 1x1 lossless webp
const tinyWebP = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func (s *server) upload(token, filename string, data []byte) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		s.t.Fatalf("form file: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		s.t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w, out
}

func TestUploadImage(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin123")

	webp, err := base64.StdEncoding.DecodeString(tinyWebP)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	tests := []struct {
		name    string
		file    string
		data    []byte
		want    int
		wantExt string
	}{
		{"png", "shirt.png", pngBuf.Bytes(), http.StatusOK, ".png"},
		{"webp stored as png", "shirt.webp", webp, http.StatusOK, ".png"},
		{"disallowed extension", "shirt.bmp", pngBuf.Bytes(), http.StatusBadRequest, ""},
		{"not an image", "shirt.jpg", []byte("hello"), http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.upload(admin, tt.file, tt.data)
			if w.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			url, _ := body["url"].(string)
			if !strings.HasPrefix(url, "http://localhost:8080/uploads/") || filepath.Ext(url) != tt.wantExt {
				t.Fatalf("url %q", url)
			}
			if _, err := os.Stat(filepath.Join(s.uploads, filepath.Base(url))); err != nil {
				t.Fatalf("stored file: %v", err)
			}
		})
	}
}
