package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canteen_manager/config"
	"canteen_manager/database"
	"canteen_manager/handler"
	"canteen_manager/payment"
	"canteen_manager/router"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testMasterKey = "kitchen-master"

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type testServer struct {
	t       *testing.T
	app     *fiber.App
	gateway *payment.Fake
}

func newTestServer(t *testing.T, opts ...func(*config.Configuration)) *testServer {
	t.Helper()
	cfg := &config.Configuration{
		AppTimezone:      "UTC",
		CorsOrigins:      "*",
		JwtSecret:        "test-secret",
		CustomerTokenTTL: time.Hour,
		AdminTokenTTL:    time.Hour,
		AdminMasterKey:   testMasterKey,
		LoginRateLimit:   100,
		CustomerPhone:    "9999999999",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	config.Set(cfg)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.OpenInMemory(name)
	require.NoError(t, err)
	require.NoError(t, database.SeedOwner(db, testMasterKey))
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	gw := payment.NewFake()
	handler.PaymentGateway = gw

	return &testServer{t: t, app: router.New(cfg), gateway: gw}
}

// call sends a JSON request and decodes the response envelope.
func (s *testServer) call(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *testServer) decode(env envelope, dest interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(env.Data, dest))
}

func (s *testServer) studentToken(email string) string {
	s.t.Helper()
	status, _ := s.call("POST", "/register", "", map[string]string{"name": "Asha", "email": email, "password": "secret123"})
	require.Equal(s.t, fiber.StatusCreated, status)

	status, env := s.call("POST", "/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(s.t, fiber.StatusOK, status)
	var out struct {
		Token string `json:"token"`
	}
	s.decode(env, &out)
	return out.Token
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	status, env := s.call("POST", "/owner-login", "", map[string]string{"mkey": testMasterKey})
	require.Equal(s.t, fiber.StatusOK, status)
	var out struct {
		Token string `json:"token"`
	}
	s.decode(env, &out)
	return out.Token
}
