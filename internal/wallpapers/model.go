package wallpapers

import "time"

const (
	TypeMobile  = "mobile"
	TypeDesktop = "desktop"
)

// Wallpaper is a shared image and its feed metadata.
type Wallpaper struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	ImageURL     string    `json:"imageUrl"`
	Views        int       `json:"views"`
	Types        []string  `json:"type"`
	Likes        []string  `json:"likes"`
	PostedBy     string    `json:"postedBy"`
	PostedByName string    `json:"postedByName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (w Wallpaper) withDefaults() Wallpaper {
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if len(w.Types) == 0 {
		w.Types = []string{TypeDesktop}
	}
	if w.Likes == nil {
		w.Likes = []string{}
	}
	return w
}
