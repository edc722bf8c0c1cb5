package video

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("video not found")

type Video struct {
	ID          string    `json:"id"`
	Candidate   string    `json:"candidate"`
	Description string    `json:"description"`
	URL         string    `json:"video"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRequest binds the text parts of the multipart upload. The file itself
// comes from the "video" form field.
type CreateRequest struct {
	Candidate   string `form:"candidate" json:"candidate" binding:"required"`
	Description string `form:"description" json:"description"`
}

type UpdateRequest struct {
	Candidate   string `form:"candidate" json:"candidate"`
	Description string `form:"description" json:"description"`
}

func New(req CreateRequest, url string) Video {
	now := time.Now().UTC()

	return Video{
		ID:          uuid.NewString(),
		Candidate:   strings.TrimSpace(req.Candidate),
		Description: strings.TrimSpace(req.Description),
		URL:         url,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply copies non-blank fields, and the replacement URL when one was uploaded.
func (r UpdateRequest) Apply(v *Video, url string) {
	if c := strings.TrimSpace(r.Candidate); c != "" {
		v.Candidate = c
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		v.Description = d
	}
	if url != "" {
		v.URL = url
	}
	v.UpdatedAt = time.Now().UTC()
}
