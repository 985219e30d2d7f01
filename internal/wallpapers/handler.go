package wallpapers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wallpaper-backend/internal/shared/server/middleware"
	"wallpaper-backend/internal/shared/server/respond"
	"wallpaper-backend/internal/shared/telemetry"
)

const (
	defaultMaxUploadBytes = 5 << 20
	formOverheadBytes     = 1 << 20
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. maxUploadBytes bounds the image part.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches wallpaper routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.root)
	rg.GET("/favicon.ico", h.favicon)
	rg.POST("/upload", h.upload)
	rg.GET("/getWall", h.feed)
	rg.GET("/api/get-my-wallpaper", h.listMine)
	rg.PUT("/api/wallpaper/like", h.like)
}

func (h *Handler) root(c *gin.Context) {
	c.String(http.StatusOK, "lilkami")
}

func (h *Handler) favicon(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverheadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Image too large", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No image uploaded", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Image too large", gin.H{"maxBytes": h.MaxUploadBytes})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read image", nil)
		return
	}
	defer file.Close()

	in := UploadInput{
		Image:        file,
		FileName:     fileHeader.Filename,
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Tags:         c.PostForm("tags"),
		Type:         c.PostForm("type"),
		PostedBy:     c.PostForm("postedBy"),
		PostedByName: c.PostForm("postedByName"),
	}
	middleware.SetUserID(c, strings.TrimSpace(in.PostedBy))

	wallpaper, err := h.Svc.Upload(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		telemetry.Error("wallpaper.upload.failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "upload_failed", "Upload failed", nil)
		return
	}
	middleware.SetWallpaperID(c, wallpaper.ID)

	respond.Created(c, gin.H{
		"message":   "Wallpaper uploaded",
		"wallpaper": wallpaper,
	})
}

func (h *Handler) feed(c *gin.Context) {
	all, err := h.Svc.Feed(c.Request.Context())
	if err != nil {
		telemetry.Error("wallpaper.feed.failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "fetch_failed", "Failed to fetch wallpapers", nil)
		return
	}
	respond.OK(c, gin.H{
		"message":  "Wallpapers fetched",
		"wallData": all,
	})
}

func (h *Handler) listMine(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("id"))
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "id is required", nil)
		return
	}
	middleware.SetUserID(c, userID)

	mine, err := h.Svc.ListByPoster(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		telemetry.Error("wallpaper.list.failed", map[string]any{"user_id": userID, "err": err})
		respond.Error(c, http.StatusInternalServerError, "fetch_failed", "Failed to fetch wallpapers", nil)
		return
	}
	respond.OK(c, gin.H{
		"success":   true,
		"wallpaper": mine,
	})
}

type likeRequest struct {
	WallpaperID string `json:"wallpaperId"`
	UserID      string `json:"userId"`
	Doing       string `json:"doing"`
}

func (h *Handler) like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	middleware.SetUserID(c, strings.TrimSpace(req.UserID))
	middleware.SetWallpaperID(c, strings.TrimSpace(req.WallpaperID))

	wallpaper, err := h.Svc.Like(c.Request.Context(), LikeInput{
		WallpaperID: req.WallpaperID,
		UserID:      req.UserID,
		Doing:       req.Doing,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Wallpaper not found", nil)
		default:
			telemetry.Error("wallpaper.like.failed", map[string]any{"err": err})
			respond.Error(c, http.StatusInternalServerError, "like_failed", "Failed to update like", nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"success":    true,
		"likesCount": len(wallpaper.Likes),
		"likes":      wallpaper.Likes,
	})
}
