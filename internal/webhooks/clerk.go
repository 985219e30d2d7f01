package webhooks

import (
	"wallpaper-backend/internal/users"
)

// Clerk event types that carry a user payload.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
)

// ClerkEvent is the envelope Clerk posts to webhook endpoints.
type ClerkEvent struct {
	Type   string        `json:"type"`
	Object string        `json:"object"`
	Data   ClerkUserData `json:"data"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	Username              string              `json:"username"`
	ImageURL              string              `json:"image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// IsUserSync reports whether the event should upsert a user.
func (e ClerkEvent) IsUserSync() bool {
	return e.Type == EventUserCreated || e.Type == EventUserUpdated
}

// Identity maps the payload onto the provider identity the users service
// understands.
func (d ClerkUserData) Identity() users.Identity {
	id := users.Identity{
		ClerkID:   d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Username:  d.Username,
		ImageURL:  d.ImageURL,
	}
	for _, e := range d.EmailAddresses {
		id.Emails = append(id.Emails, e.EmailAddress)
		if e.ID != "" && e.ID == d.PrimaryEmailAddressID {
			id.PrimaryEmail = e.EmailAddress
		}
	}
	return id
}
