package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ovechkin-dev/marketplace/internal/models"
	"github.com/ovechkin-dev/marketplace/internal/repo"
	"github.com/ovechkin-dev/marketplace/internal/service"
	"github.com/ovechkin-dev/marketplace/internal/util"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}))

	gormRepo := repo.New(db)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())

	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{
			Repo:      gormRepo,
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		}},
		CategoryHandler: &CategoryHTTP{Svc: &service.CategoryService{Repo: gormRepo}},
		ProductHandler:  &ProductHTTP{Svc: &service.ProductService{Repo: gormRepo}},
		JWTSecret:       testSecret,
	})

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) doJSON(method, path string, payload any, token string) (*httptest.ResponseRecorder, map[string]any) {
	env.T.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(env.T, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (env *testEnv) doMultipart(method, path string, fields map[string]string, token string) (*httptest.ResponseRecorder, map[string]any) {
	env.T.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (env *testEnv) registerAndLogin(username, password, role string) (uint, string) {
	env.T.Helper()

	rec, resp := env.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username, "password": password, "role": role,
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code)
	userID := uint(resp["userId"].(float64))

	rec, resp = env.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username, "password": password,
	}, "")
	require.Equal(env.T, http.StatusOK, rec.Code)
	return userID, resp["token"].(string)
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "User registered successfully", resp["message"])
	require.NotZero(t, resp["userId"])

	rec, _ = env.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "pw2",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob", "password": "pw", "role": "root",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "pw1",
	}, "")

	rec, resp := env.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Login successful", resp["message"])
	require.NotEmpty(t, resp["token"])

	user := resp["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "user", user["role"])

	rec, _ = env.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryEndpointsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, userToken := env.registerAndLogin("carol", "pw", "user")
	_, adminToken := env.registerAndLogin("root", "pw", "admin")

	payload := map[string]string{"name": "Books", "description": "paper"}

	rec, _ := env.doJSON(http.MethodPost, "/api/categories", payload, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.doJSON(http.MethodPost, "/api/categories", payload, userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := env.doJSON(http.MethodPost, "/api/categories", payload, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	cat := resp["category"].(map[string]any)
	catID := uint(cat["id"].(float64))

	rec, _ = env.doJSON(http.MethodPost, "/api/categories", map[string]string{"description": "nameless"}, adminToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = env.doJSON(http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp["categories"].([]any), 1)

	rec, _ = env.doJSON(http.MethodGet, fmt.Sprintf("/api/categories/%d", catID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.doJSON(http.MethodGet, "/api/categories/999", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.doJSON(http.MethodPut, fmt.Sprintf("/api/categories/%d", catID), map[string]string{"name": "Ebooks"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/categories/%d", catID), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/categories/%d", catID), nil, adminToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductPriceValidation(t *testing.T) {
	env := newTestEnv(t)

	_, adminToken := env.registerAndLogin("root", "pw", "admin")
	_, resp := env.doJSON(http.MethodPost, "/api/categories", map[string]string{"name": "Books"}, adminToken)
	catID := fmt.Sprint(uint(resp["category"].(map[string]any)["id"].(float64)))

	_, token := env.registerAndLogin("alice", "pw1", "user")

	for _, price := range []string{"0", "-1", "abc", ""} {
		rec, _ := env.doMultipart(http.MethodPost, "/api/products", map[string]string{
			"name": "Go Guide", "price": price, "category_id": catID,
		}, token)
		require.Equal(t, http.StatusBadRequest, rec.Code, "price=%q", price)
	}

	rec, resp := env.doMultipart(http.MethodPost, "/api/products", map[string]string{
		"name": "Go Guide", "price": "9.99", "category_id": catID,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	prodID := fmt.Sprint(uint(resp["product"].(map[string]any)["id"].(float64)))

	for _, price := range []string{"0", "-3.5", "xx"} {
		rec, _ := env.doMultipart(http.MethodPut, "/api/products/"+prodID, map[string]string{
			"name": "Go Guide", "price": price, "category_id": catID,
		}, token)
		require.Equal(t, http.StatusBadRequest, rec.Code, "price=%q", price)
	}
}

func TestMarketplaceFlow(t *testing.T) {
	env := newTestEnv(t)

	aliceID, aliceToken := env.registerAndLogin("alice", "pw1", "admin")
	_, bobToken := env.registerAndLogin("bob", "pw2", "user")

	rec, resp := env.doJSON(http.MethodPost, "/api/categories", map[string]string{"name": "Books"}, aliceToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	catID := uint(resp["category"].(map[string]any)["id"].(float64))

	rec, resp = env.doMultipart(http.MethodPost, "/api/products", map[string]string{
		"name":        "Go Guide",
		"description": "a guide",
		"price":       "9.99",
		"category_id": fmt.Sprint(catID),
	}, aliceToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	prod := resp["product"].(map[string]any)
	prodID := uint(prod["id"].(float64))
	require.EqualValues(t, aliceID, prod["user_id"].(float64))

	rec, resp = env.doJSON(http.MethodGet, fmt.Sprintf("/api/products/%d", prodID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := resp["product"].(map[string]any)
	require.EqualValues(t, aliceID, got["user_id"].(float64))
	require.Equal(t, "Books", got["category_name"])
	require.Equal(t, "alice", got["creator_name"])
	require.Equal(t, 9.99, got["price"])

	rec, resp = env.doJSON(http.MethodGet, fmt.Sprintf("/api/products/category/%d", catID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp["products"].([]any), 1)

	rec, _ = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/products/%d", prodID), nil, bobToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/products/%d", prodID), nil, aliceToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.doJSON(http.MethodGet, fmt.Sprintf("/api/products/%d", prodID), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsEmptyCategory(t *testing.T) {
	env := newTestEnv(t)

	_, adminToken := env.registerAndLogin("root", "pw", "admin")
	_, resp := env.doJSON(http.MethodPost, "/api/categories", map[string]string{"name": "Empty"}, adminToken)
	catID := uint(resp["category"].(map[string]any)["id"].(float64))

	rec, resp := env.doJSON(http.MethodGet, fmt.Sprintf("/api/products/category/%d", catID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp["products"])
	require.Empty(t, resp["products"].([]any))
}

func TestListProductsClampsPageSize(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.doJSON(http.MethodGet, "/api/products?size=1073741824", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	meta := resp["meta"].(map[string]any)
	require.EqualValues(t, util.DefaultPageSize, meta["size"])
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	env := newTestEnv(t)

	for _, header := range []string{"", "Bearer garbage", "Token abc"} {
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		env.E.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.doJSON(http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", resp["status"])
	require.NotEmpty(t, resp["timestamp"])
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.doJSON(http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
