package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"wallpaper-backend/internal/shared/config"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func buildTestApp(t *testing.T, secret string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom(map[string]string{
		"ENV":                  "dev",
		"DOC_STORE":            "memory",
		"OBJECT_STORE":         "local",
		"LOCAL_STORE_DIR":      t.TempDir(),
		"PUBLIC_BASE_URL":      "http://api.test",
		"CLERK_WEBHOOK_SECRET": secret,
	})
	require.NoError(t, err)

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func signedWebhook(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	wh, err := svix.NewWebhook(testSecret)
	require.NoError(t, err)
	ts := time.Now()
	sig, err := wh.Sign("msg_1", ts, payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", sig)
	return req
}

func uploadRequest(t *testing.T, postedBy string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("title", "Dunes"))
	require.NoError(t, w.WriteField("tags", "desert, sand"))
	require.NoError(t, w.WriteField("type", "desktop"))
	require.NoError(t, w.WriteField("postedBy", postedBy))
	require.NoError(t, w.WriteField("postedByName", "Ada"))
	part, err := w.CreateFormFile("image", "dunes.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestBuildServesHealth(t *testing.T) {
	app := buildTestApp(t, "")

	resp := serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"ok":true}`, resp.Body.String())
	assert.NotEmpty(t, app.MediaDir)
}

func TestBuildWithoutWebhookSecretRejectsWebhooks(t *testing.T) {
	app := buildTestApp(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", strings.NewReader(`{}`))
	resp := serve(app, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestBuildRejectsMalformedWebhookSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom(map[string]string{
		"LOCAL_STORE_DIR":      t.TempDir(),
		"CLERK_WEBHOOK_SECRET": "whsec_%%%not-base64%%%",
	})
	require.NoError(t, err)

	_, err = Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestWebhookUploadFeedAndSweep(t *testing.T) {
	app := buildTestApp(t, testSecret)

	event, err := json.Marshal(map[string]any{
		"type": "user.created",
		"data": map[string]any{
			"id":                       "user_ada",
			"first_name":               "Ada",
			"last_name":                "Lovelace",
			"image_url":                "https://img.clerk.com/ada.png",
			"primary_email_address_id": "idn_1",
			"email_addresses": []map[string]any{
				{"id": "idn_1", "email_address": "ada@example.com"},
			},
		},
	})
	require.NoError(t, err)
	resp := serve(app, signedWebhook(t, event))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = serve(app, uploadRequest(t, "user_ada"))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		Wallpaper struct {
			ID       string   `json:"_id"`
			ImageURL string   `json:"imageUrl"`
			Tags     []string `json:"tags"`
		} `json:"wallpaper"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.NotEmpty(t, created.Wallpaper.ID)
	assert.Equal(t, []string{"desert", "sand"}, created.Wallpaper.Tags)
	require.True(t, strings.HasPrefix(created.Wallpaper.ImageURL, "http://api.test/media/"))

	mediaPath := strings.TrimPrefix(created.Wallpaper.ImageURL, "http://api.test")
	resp = serve(app, httptest.NewRequest(http.MethodGet, mediaPath, nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = serve(app, httptest.NewRequest(http.MethodGet, "/getWall", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), created.Wallpaper.ID)

	user, err := app.UsersService.GetByID(context.Background(), "user_ada")
	require.NoError(t, err)
	assert.Equal(t, []string{created.Wallpaper.ID}, user.PostWallpapers)

	result, err := app.ReconcileService.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Zero(t, result.Linked)
	assert.Zero(t, result.Unlinked)
}
