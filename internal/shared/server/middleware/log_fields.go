package middleware

import "github.com/gin-gonic/gin"

const (
	userIDKey      = "userId"
	wallpaperIDKey = "wallpaperId"
)

// SetUserID tags the request's log lines with the acting user.
func SetUserID(c *gin.Context, id string) {
	if id != "" {
		c.Set(userIDKey, id)
	}
}

// SetWallpaperID tags the request's log lines with the wallpaper involved.
func SetWallpaperID(c *gin.Context, id string) {
	if id != "" {
		c.Set(wallpaperIDKey, id)
	}
}
