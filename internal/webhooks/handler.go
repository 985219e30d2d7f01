package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wallpaper-backend/internal/shared/metrics"
	"wallpaper-backend/internal/shared/server/middleware"
	"wallpaper-backend/internal/shared/server/respond"
	"wallpaper-backend/internal/shared/telemetry"
	"wallpaper-backend/internal/users"
)

const maxWebhookBytes = 1 << 20

// IdentitySyncer upserts a user from a provider identity.
type IdentitySyncer interface {
	SyncFromProvider(ctx context.Context, id users.Identity) (users.User, error)
}

// Handler receives identity-provider webhooks.
type Handler struct {
	Users    IdentitySyncer
	Verifier Verifier
}

// NewHandler constructs a Handler. A nil verifier makes every delivery fail
// with 500 so an unconfigured secret never accepts unsigned payloads.
func NewHandler(syncer IdentitySyncer, verifier Verifier) *Handler {
	return &Handler{Users: syncer, Verifier: verifier}
}

// RegisterRoutes attaches the webhook route. The raw body is captured on
// this route only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/api/webhooks/clerk", middleware.RawBody(maxWebhookBytes), h.clerk)
}

func (h *Handler) clerk(c *gin.Context) {
	if h.Verifier == nil {
		respond.Error(c, http.StatusInternalServerError, "webhook_not_configured", "Webhook secret not configured", nil)
		return
	}

	payload := middleware.RawBodyFromContext(c)
	if err := h.Verifier.Verify(payload, c.Request.Header); err != nil {
		metrics.IncWebhookRejected()
		respond.Error(c, http.StatusBadRequest, "invalid_signature", "Invalid webhook signature", nil)
		return
	}

	var evt ClerkEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid event payload", nil)
		return
	}
	metrics.IncWebhookEvent()

	if !evt.IsUserSync() {
		telemetry.Info("webhook.ignored", map[string]any{
			"event_type": evt.Type,
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.OK(c, gin.H{"success": true})
		return
	}
	middleware.SetUserID(c, evt.Data.ID)

	user, err := h.Users.SyncFromProvider(c.Request.Context(), evt.Data.Identity())
	if err != nil {
		if errors.Is(err, users.ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		telemetry.Error("user.sync.failed", map[string]any{"user_id": evt.Data.ID, "err": err})
		respond.Error(c, http.StatusInternalServerError, "sync_failed", "Failed to sync user", nil)
		return
	}

	telemetry.Info("user.synced", map[string]any{
		"event_type": evt.Type,
		"user_id":    user.ClerkID,
	})
	respond.OK(c, gin.H{"success": true})
}
