package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-gin-social-graph/internal/core/auth"
	"go-gin-social-graph/internal/core/config"
	"go-gin-social-graph/internal/core/database"
	"go-gin-social-graph/internal/repo"
	"go-gin-social-graph/internal/service"
	"go-gin-social-graph/internal/transport/http/ez"
	"go-gin-social-graph/internal/transport/http/handler"
	"go-gin-social-graph/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	auth   *service.AuthService
	jwt    *auth.JWTer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	users := repo.NewUserRepo(db, time.Second)
	follows := repo.NewFollowRepo(db, time.Second)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost, 2)
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}

	authSvc := service.NewAuthService(users, hasher, jwter, nil)
	h := handler.NewUserHandler(
		authSvc,
		service.NewUserService(users, hasher, nil, 0, nil),
		service.NewSocialService(users, follows, nil, nil),
	)
	engine := NewAPIEngine(Deps{
		HTTP:     config.HTTP{RequestTimeoutSec: 5, MaxConcurrent: 8, MaxBodyMB: 1},
		Verifier: jwter,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Modules: []Module{h},
	})
	return &testAPI{t: t, engine: engine, auth: authSvc, jwt: jwter}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *testAPI) register(email, first string) uint {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": email, "password": "pw123456", "first_name": first, "role_id": 2,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var u struct {
		ID uint `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &u))
	return u.ID
}

func (a *testAPI) login(email string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"email": email, "password": "pw123456"})
	require.Equal(a.t, http.StatusOK, code, env.Message)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(a.t, out.Token)
	return out.Token
}

func users(path string, args ...any) string { return "/api/v1/users" + fmt.Sprintf(path, args...) }

func TestRegisterLoginProfileScenario(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, users("/register"), "", gin.H{"email": "a@x.com", "password": "pw123456", "role_id": 2})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")
	var created struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "USER", created.Role)

	code, env = api.do(http.MethodPost, users("/login"), "", gin.H{"email": "A@X.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token  string `json:"token"`
		UserID uint   `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, created.ID, login.UserID)
	p, err := api.jwt.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.UserID)

	code, env = api.do(http.MethodGet, users("/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `0`, string(mustField(t, env.Data, "followers_count")))
	assert.JSONEq(t, `0`, string(mustField(t, env.Data, "following_count")))
	assert.JSONEq(t, `[]`, string(mustField(t, env.Data, "posts")))
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[key]
	require.True(t, ok, "missing %q in %s", key, raw)
	return v
}

func TestRegisterFailures(t *testing.T) {
	api := newTestAPI(t)
	api.register("a@x.com", "A")

	code, env := api.do(http.MethodPost, users("/register"), "", gin.H{"email": "A@X.COM", "password": "another1", "first_name": "Z"})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	assert.Equal(t, "the email already exists", env.Message)

	code, _ = api.do(http.MethodPost, users("/register"), "", gin.H{"email": "b@x.com", "password": "pw123456", "role_id": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, users("/register"), "", gin.H{"email": "b@x.com", "password": "pw123456", "role_id": 9})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodPost, users("/register"), "", gin.H{"email": "not-an-email", "password": "pw123456"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	api := newTestAPI(t)
	api.register("a@x.com", "A")

	wrongCode, wrong := api.do(http.MethodPost, users("/login"), "", gin.H{"email": "a@x.com", "password": "nope"})
	ghostCode, ghost := api.do(http.MethodPost, users("/login"), "", gin.H{"email": "ghost@x.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrongCode)
	assert.Equal(t, wrongCode, ghostCode)
	assert.Equal(t, wrong, ghost)
	assert.False(t, wrong.Success)
}

func TestFollowGraphOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	a := api.register("a@x.com", "Ann")
	b := api.register("b@x.com", "Bob")
	tokB := api.login("b@x.com")

	code, _ := api.do(http.MethodPost, users("/follow/%d", a), tokB, nil)
	require.Equal(t, http.StatusCreated, code)
	code, _ = api.do(http.MethodPost, users("/follow/%d", a), tokB, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env := api.do(http.MethodGet, users("/followers/%d", a), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`[{"id":%d,"first_name":"Bob","last_name":""}]`, b), string(env.Data))

	code, env = api.do(http.MethodGet, users("/following/%d", b), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`[{"id":%d,"first_name":"Ann","last_name":""}]`, a), string(env.Data))

	_, env = api.do(http.MethodGet, users("/%d", a), "", nil)
	assert.JSONEq(t, `1`, string(mustField(t, env.Data, "followers_count")))

	for i := 0; i < 2; i++ {
		code, env = api.do(http.MethodPost, users("/unfollow/%d", a), tokB, nil)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, env.Success)
	}

	code, env = api.do(http.MethodGet, users("/followers/%d", a), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = api.do(http.MethodPost, users("/follow/%d", b), tokB, nil)
	assert.Equal(t, http.StatusBadRequest, code, "self follow")

	code, _ = api.do(http.MethodPost, users("/follow/%d", 999), tokB, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuthenticationGuard(t *testing.T) {
	api := newTestAPI(t)
	a := api.register("a@x.com", "A")

	code, env := api.do(http.MethodPost, users("/follow/%d", a), "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = api.do(http.MethodPost, users("/follow/%d", a), "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	expired := &auth.JWTer{
		Secret: api.jwt.Secret, Issuer: api.jwt.Issuer, TTL: time.Minute,
		Now: func() time.Time { return time.Now().Add(-time.Hour) },
	}
	tok, err := expired.Issue(a, "USER", 2)
	require.NoError(t, err)
	code, _ = api.do(http.MethodPost, users("/follow/%d", a), tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	forged := &auth.JWTer{Secret: []byte("other"), Issuer: api.jwt.Issuer, TTL: time.Hour}
	tok, err = forged.Issue(a, "ADMIN", 1)
	require.NoError(t, err)
	code, _ = api.do(http.MethodGet, users(""), tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminListGuard(t *testing.T) {
	api := newTestAPI(t)
	api.register("a@x.com", "A")
	userTok := api.login("a@x.com")

	_, err := api.auth.RegisterAdmin(context.Background(), service.RegisterInput{Email: "root@x.com", Password: "pw123456"})
	require.NoError(t, err)
	adminTok := api.login("root@x.com")

	code, env := api.do(http.MethodGet, users(""), userTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)

	code, env = api.do(http.MethodGet, users(""), adminTok, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)
	for _, u := range list {
		assert.NotContains(t, u, "password")
	}
}

func TestProfileUpdateDeleteAndSearch(t *testing.T) {
	api := newTestAPI(t)
	a := api.register("a@x.com", "Ann")
	api.register("b@x.com", "Bob")
	tokA := api.login("a@x.com")
	tokB := api.login("b@x.com")

	code, env := api.do(http.MethodGet, users("/search/An"), "", nil)
	require.Equal(t, http.StatusOK, code)
	var found []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, a, found[0].ID)

	code, _ = api.do(http.MethodPut, users("/%d", a), tokB, gin.H{"country": "jordan"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodPut, users("/%d", a), tokA, gin.H{"country": "jordan"})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"jordan"`, string(mustField(t, env.Data, "country")))

	code, _ = api.do(http.MethodPut, users("/%d", a), tokA, gin.H{"email": "B@x.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(http.MethodDelete, users("/%d", a), tokB, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodDelete, users("/%d", a), tokA, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, users("/%d", a), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = api.do(http.MethodPost, users("/login"), "", gin.H{"email": "a@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBadInputAndInfraRoutes(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodGet, users("/abc"), "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, _ = api.do(http.MethodGet, users("/%d", 404), "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = api.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

type named struct {
	name  string
	order *[]string
}

func (n named) Mount(ez.EZ) { *n.order = append(*n.order, n.name) }

type ranked struct {
	named
	p int
}

func (r ranked) Priority() int { return r.p }

func TestMountAllOrdersByPriority(t *testing.T) {
	var order []string
	e := ez.New(gin.New().Group("/"), nil, nil)
	MountAll(e, ranked{named{"late", &order}, 200}, named{"plain", &order}, ranked{named{"early", &order}, 1})
	assert.Equal(t, []string{"early", "plain", "late"}, order)
}
