package webhooks

import (
	"fmt"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

// Verifier authenticates a raw webhook body against its delivery headers.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// NewSvixVerifier builds a verifier for Svix-signed deliveries. Svix checks
// the svix-id, svix-timestamp and svix-signature headers with a five minute
// timestamp tolerance.
func NewSvixVerifier(secret string) (Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("webhook signing secret is empty")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("svix webhook: %w", err)
	}
	return wh, nil
}
