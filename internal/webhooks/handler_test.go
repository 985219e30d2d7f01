package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"wallpaper-backend/internal/users"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func newTestRouter(t *testing.T, verifier Verifier) (*gin.Engine, *users.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := users.NewMemoryRepo()
	r := gin.New()
	NewHandler(users.NewService(repo), verifier).RegisterRoutes(&r.RouterGroup)
	return r, repo
}

func mustVerifier(t *testing.T) Verifier {
	t.Helper()
	v, err := NewSvixVerifier(testSecret)
	require.NoError(t, err)
	return v
}

func signedRequest(t *testing.T, msgID string, payload []byte) *http.Request {
	t.Helper()
	wh, err := svix.NewWebhook(testSecret)
	require.NoError(t, err)
	ts := time.Now()
	sig, err := wh.Sign(msgID, ts, payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", msgID)
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", sig)
	return req
}

func userEvent(t *testing.T, eventType string, data ClerkUserData) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": eventType, "object": "event", "data": data})
	require.NoError(t, err)
	return raw
}

var ada = ClerkUserData{
	ID:                    "user_2abc",
	FirstName:             "Ada",
	LastName:              "Lovelace",
	ImageURL:              "https://img.clerk.com/ada.png",
	PrimaryEmailAddressID: "idn_2",
	EmailAddresses: []ClerkEmailAddress{
		{ID: "idn_1", EmailAddress: "old@example.com"},
		{ID: "idn_2", EmailAddress: "ada@example.com"},
	},
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestUserCreatedUpsertsOnce(t *testing.T) {
	r, repo := newTestRouter(t, mustVerifier(t))
	payload := userEvent(t, EventUserCreated, ada)

	for i := 0; i < 2; i++ {
		resp := serve(r, signedRequest(t, "msg_1", payload))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.JSONEq(t, `{"success":true}`, resp.Body.String())
	}

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "user_2abc", all[0].ClerkID)
	assert.Equal(t, "ada@example.com", all[0].Email)
	assert.Equal(t, "Ada Lovelace", all[0].FullName)
	assert.Equal(t, "ada", all[0].Username)
}

func TestUserUpdatedChangesProfile(t *testing.T) {
	r, repo := newTestRouter(t, mustVerifier(t))
	require.Equal(t, http.StatusOK, serve(r, signedRequest(t, "msg_1", userEvent(t, EventUserCreated, ada))).Code)

	updated := ada
	updated.Username = "countess"
	require.Equal(t, http.StatusOK, serve(r, signedRequest(t, "msg_2", userEvent(t, EventUserUpdated, updated))).Code)

	u, err := repo.GetByID(context.Background(), "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, "countess", u.Username)
}

func TestBadSignatureWritesNothing(t *testing.T) {
	r, repo := newTestRouter(t, mustVerifier(t))

	req := signedRequest(t, "msg_1", userEvent(t, EventUserCreated, ada))
	req.Header.Set("svix-signature", "v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	resp := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestTamperedBodyIsRejected(t *testing.T) {
	r, repo := newTestRouter(t, mustVerifier(t))

	signed := signedRequest(t, "msg_1", userEvent(t, EventUserCreated, ada))
	other := ada
	other.ID = "user_evil"
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(userEvent(t, EventUserCreated, other)))
	req.Header = signed.Header.Clone()

	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)
	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestMissingSecretReturns500(t *testing.T) {
	r, repo := newTestRouter(t, nil)

	resp := serve(r, signedRequest(t, "msg_1", userEvent(t, EventUserCreated, ada)))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestEventWithoutEmailReturns400(t *testing.T) {
	r, repo := newTestRouter(t, mustVerifier(t))

	resp := serve(r, signedRequest(t, "msg_1", userEvent(t, EventUserCreated, ClerkUserData{ID: "user_1"})))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestOtherEventTypesAreAcknowledged(t *testing.T) {
	r, repo := newTestRouter(t, mustVerifier(t))

	resp := serve(r, signedRequest(t, "msg_1", userEvent(t, "session.created", ada)))
	assert.Equal(t, http.StatusOK, resp.Code)
	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestIdentityFallsBackToFirstEmail(t *testing.T) {
	data := ClerkUserData{
		ID:             "user_1",
		EmailAddresses: []ClerkEmailAddress{{ID: "idn_1", EmailAddress: "first@example.com"}},
	}
	id := data.Identity()
	assert.Empty(t, id.PrimaryEmail)
	assert.Equal(t, []string{"first@example.com"}, id.Emails)
}

func TestNewSvixVerifierRequiresSecret(t *testing.T) {
	_, err := NewSvixVerifier("  ")
	require.Error(t, err)
}
