package routes

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/servicehub/internal/config"
	"github.com/joshua-takyi/servicehub/internal/container"
	"github.com/joshua-takyi/servicehub/internal/storage"
	"github.com/joshua-takyi/servicehub/internal/templates"
	"github.com/joshua-takyi/servicehub/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, rdb *redis.Client) (*gin.Engine, string) {
	t.Helper()
	return newRouterWith(t, rdb, nil)
}

func newRouterWith(t *testing.T, rdb *redis.Client, trustedProxies []string) (*gin.Engine, string) {
	t.Helper()
	tpl, err := templates.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	disk, err := storage.NewDiskUploader(dir)
	require.NoError(t, err)

	cfg := &config.Config{
		AppName:         "ServiceHub",
		Environment:     "development",
		CORSOrigins:     []string{"http://localhost:3000"},
		UploadMaxBytes:  1 << 20,
		RateLimitMax:    2,
		RateLimitWindow: time.Minute,
		TrustedProxies:  trustedProxies,
	}
	c := container.NewContainer(cfg, testutil.DiscardLogger(), testutil.NewMemoryUserRepo(), nil, rdb,
		&testutil.RecordingMailer{}, disk, tpl)
	return SetupRoutes(c), dir
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","service":"ServiceHub"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestUploadsAreServed(t *testing.T) {
	r, dir := newRouter(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "avatar.png"), []byte("png"), 0o644))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/avatar.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

func TestLoginIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	r, _ := newRouter(t, redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@x.com","password":"p"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func loginCodes(r *gin.Engine, n int, forwardedFor func(i int) string) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@x.com","password":"p"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor(i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	return codes
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	mr := miniredis.RunT(t)
	r, _ := newRouter(t, redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	codes := loginCodes(r, 5, func(i int) string { return fmt.Sprintf("10.0.0.%d", i) })
	assert.Equal(t, []int{
		http.StatusBadRequest,
		http.StatusBadRequest,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestRateLimitHonoursTrustedProxy(t *testing.T) {
	mr := miniredis.RunT(t)
	// httptest requests arrive from 192.0.2.1
	r, _ := newRouterWith(t, redis.NewClient(&redis.Options{Addr: mr.Addr()}), []string{"192.0.2.0/24"})

	codes := loginCodes(r, 3, func(i int) string { return fmt.Sprintf("10.0.0.%d", i) })
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusBadRequest}, codes)

	codes = loginCodes(r, 3, func(int) string { return "10.0.0.9" })
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRegisterRejectsNonImageUpload(t *testing.T) {
	r, dir := newRouter(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{"first_name": "Ama", "email": "a@x.com", "phone": "555", "password": "p"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("image", "page.html")
	require.NoError(t, err)
	_, err = part.Write([]byte("<html><script>alert(1)</script></html>"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error creating user")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
