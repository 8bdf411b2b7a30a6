package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kassslll/philosofium/backend/config"
	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/routes"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/testutil"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTTTLHours:     1,
		StreakThreshold: services.DefaultStreakThreshold,
		Timezone:        "UTC",
	}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	app := fiber.New()
	routes.SetupRoutes(app, routes.Dependencies{
		DB:     db,
		Cfg:    cfg,
		Logger: utils.NewNopLogger(),
		Clock:  services.Clock{NowFunc: func() time.Time { return now }, Location: time.UTC},
	})
	return &testApp{app: app, db: db, cfg: cfg}
}

func (ta *testApp) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(user.ID, user.Username, ta.cfg)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and decodes the JSON response body.
func (ta *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}
