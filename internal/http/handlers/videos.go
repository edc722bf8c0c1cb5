package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/domain/video"
	"github.com/geocoder89/drivingschool/internal/media"
	"github.com/gin-gonic/gin"
)

type VideoStore interface {
	Create(ctx context.Context, v video.Video) error
	GetByID(ctx context.Context, id string) (video.Video, error)
	List(ctx context.Context) ([]video.Video, error)
	Update(ctx context.Context, v video.Video) error
	Delete(ctx context.Context, id string) error
}

type VideosHandler struct {
	repo      VideoStore
	uploader  media.Uploader
	uploadDir string
}

func NewVideosHandler(repo VideoStore, uploader media.Uploader, uploadDir string) *VideosHandler {
	return &VideosHandler{repo: repo, uploader: uploader, uploadDir: uploadDir}
}

// POST /api/video/upload (multipart: candidate, description, video)
func (h *VideosHandler) Create(ctx *gin.Context) {
	var req video.CreateRequest

	if !Bind(ctx, &req) {
		return
	}

	path, err := stageUpload(ctx, "video", h.uploadDir)
	if err != nil {
		RespondBadRequest(ctx, "Could not read video upload", nil)
		return
	}
	defer removeStaged(path)

	if path == "" {
		RespondBadRequest(ctx, "Video file is required", gin.H{"field": "video"})
		return
	}

	url, err := h.uploader.Upload(ctx.Request.Context(), path, media.KindVideo)
	if err != nil {
		RespondErr(ctx, apperr.Internal("Video upload failed", err))
		return
	}

	v := video.New(req, url)

	if err := h.repo.Create(ctx.Request.Context(), v); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusCreated, v, "Video uploaded successfully")
}

// GET /api/video/all
func (h *VideosHandler) List(ctx *gin.Context) {
	videos, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	if videos == nil {
		videos = []video.Video{}
	}

	RespondOK(ctx, http.StatusOK, videos, "Videos fetched successfully")
}

// PUT /api/video/update/:videoId accepts an optional replacement file.
func (h *VideosHandler) Update(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "videoId") {
		return
	}

	var req video.UpdateRequest

	if !Bind(ctx, &req) {
		return
	}

	v, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("videoId"))
	if err != nil {
		h.respondRepoErr(ctx, err)
		return
	}

	path, err := stageUpload(ctx, "video", h.uploadDir)
	if err != nil {
		RespondBadRequest(ctx, "Could not read video upload", nil)
		return
	}
	defer removeStaged(path)

	var url string
	if path != "" {
		url, err = h.uploader.Upload(ctx.Request.Context(), path, media.KindVideo)
		if err != nil {
			RespondErr(ctx, apperr.Internal("Video upload failed", err))
			return
		}
	}

	req.Apply(&v, url)

	if err := h.repo.Update(ctx.Request.Context(), v); err != nil {
		h.respondRepoErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, v, "Video updated successfully")
}

// DELETE /api/video/delete/:videoId
func (h *VideosHandler) Delete(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "videoId") {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), ctx.Param("videoId")); err != nil {
		h.respondRepoErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, gin.H{}, "Video deleted successfully")
}

func (h *VideosHandler) respondRepoErr(ctx *gin.Context, err error) {
	if errors.Is(err, video.ErrNotFound) {
		RespondNotFound(ctx, "Video not found")
		return
	}
	RespondErr(ctx, err)
}
