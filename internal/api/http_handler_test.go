package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"designghar-service/internal/auth"
	"designghar-service/internal/cache"
	"designghar-service/internal/domain"
	"designghar-service/internal/service"
	"designghar-service/internal/store/storetest"
	"designghar-service/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var PtrTo = storetest.PtrTo[float64]

// fakeUploader records uploads and returns predictable URLs.
type fakeUploader struct {
	mu    sync.Mutex
	names []string
	fail  bool
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, filename string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, filename)
	if f.fail {
		return "", fmt.Errorf("%w: %s: host unavailable", upload.ErrUploadFailed, filename)
	}
	return "https://cdn.example/designghar/" + filename, nil
}

type testEnv struct {
	server     *httptest.Server
	products   *storetest.MockProductStorer
	categories *storetest.MockCategoryStorer
	banners    *storetest.MockBannerStorer
	offers     *storetest.MockOfferStorer
	users      *storetest.MockUserStorer
	uploader   *fakeUploader
	jwt        *auth.JWTManager
}

// setupTestChiServer wires real services over mocked stores behind a chi router.
func setupTestChiServer(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		products:   new(storetest.MockProductStorer),
		categories: new(storetest.MockCategoryStorer),
		banners:    new(storetest.MockBannerStorer),
		offers:     new(storetest.MockOfferStorer),
		users:      new(storetest.MockUserStorer),
		uploader:   &fakeUploader{},
		jwt:        auth.NewJWTManager(auth.JWTConfig{Issuer: "designghar-test", Secret: "test-secret", TTL: time.Hour}),
	}
	logger := zap.NewNop()
	handler := NewHTTPHandler(Deps{
		Products:   service.NewProductService(env.products, cache.Nop{}, logger),
		Categories: service.NewCategoryService(env.categories, cache.Nop{}, logger),
		Banners:    service.NewBannerService(env.banners),
		Offers:     service.NewOfferService(env.offers),
		Auth:       service.NewAuthService(env.users, env.jwt, logger),
		JWT:        env.jwt,
		Uploader:   env.uploader,
		Logger:     logger,
	})
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) token(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, _, err := e.jwt.Sign(&domain.User{ID: primitive.NewObjectID(), Name: "Tester", Email: "tester@designghar.test", Role: role})
	require.NoError(t, err)
	return tok
}

// do sends a JSON request. body may be nil; token may be empty.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

// doMultipart sends fields and files as multipart/form-data.
func (e *testEnv) doMultipart(t *testing.T, method, path string, fields map[string][]string, files map[string][]string, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("image-bytes-" + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func echo[T any](_ context.Context, v *T) (*T, error) {
	out := *v
	return &out, nil
}
