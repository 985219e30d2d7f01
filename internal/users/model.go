package users

import "time"

// User is an account synchronized from the identity provider.
type User struct {
	ClerkID         string    `json:"clerkId" bson:"clerkId"`
	Email           string    `json:"email" bson:"email"`
	Username        string    `json:"username,omitempty" bson:"username,omitempty"`
	FullName        string    `json:"fullName" bson:"fullName"`
	ImageURL        string    `json:"imageUrl" bson:"imageUrl"`
	LikedWallpapers []string  `json:"likedWallpapers" bson:"likedWallpapers"`
	PostWallpapers  []string  `json:"postWallpapers" bson:"postWallpapers"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u User) withDefaults() User {
	if u.LikedWallpapers == nil {
		u.LikedWallpapers = []string{}
	}
	if u.PostWallpapers == nil {
		u.PostWallpapers = []string{}
	}
	return u
}
