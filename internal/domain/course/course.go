package course

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/drivingschool/internal/utils"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("course not found")
	ErrDuplicateName = errors.New("course name already exists")
	ErrBlankFields   = errors.New("name, description, timing fields are required")
)

type Course struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Timing      string    `json:"timing"`
	Features    []string  `json:"features"`
	KmPerDay    float64   `json:"kmPerDay"`
	Days        int       `json:"days"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRequest accepts features as a JSON array or one comma separated string.
type CreateRequest struct {
	Category    string           `json:"category" binding:"required"`
	Name        string           `json:"name" binding:"required,max=120"`
	Description string           `json:"description" binding:"required"`
	Timing      string           `json:"timing" binding:"required"`
	Features    utils.StringList `json:"features"`
	KmPerDay    float64          `json:"kmPerDay" binding:"min=0"`
	Days        int              `json:"days" binding:"min=0"`
}

// Validate rejects whitespace-only text that passes the binding "required" rule.
func (r CreateRequest) Validate() error {
	for _, v := range []string{r.Name, r.Description, r.Timing, r.Category} {
		if strings.TrimSpace(v) == "" {
			return ErrBlankFields
		}
	}
	return nil
}

type UpdateRequest struct {
	Category    *string          `json:"category"`
	Name        *string          `json:"name" binding:"omitempty,max=120"`
	Description *string          `json:"description"`
	Timing      *string          `json:"timing"`
	Features    utils.StringList `json:"features"`
	KmPerDay    *float64         `json:"kmPerDay" binding:"omitempty,min=0"`
	Days        *int             `json:"days" binding:"omitempty,min=0"`
}

func NewFromCreateRequest(req CreateRequest) Course {
	now := time.Now().UTC()

	features := utils.Normalize(req.Features)

	return Course{
		ID:          uuid.NewString(),
		Category:    strings.TrimSpace(req.Category),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Timing:      strings.TrimSpace(req.Timing),
		Features:    features,
		KmPerDay:    req.KmPerDay,
		Days:        req.Days,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply copies the non-blank supplied fields onto c.
func (r UpdateRequest) Apply(c *Course) {
	setText := func(dst *string, src *string) {
		if src != nil {
			if v := strings.TrimSpace(*src); v != "" {
				*dst = v
			}
		}
	}

	setText(&c.Category, r.Category)
	setText(&c.Name, r.Name)
	setText(&c.Description, r.Description)
	setText(&c.Timing, r.Timing)

	if features := utils.Normalize(r.Features); len(features) > 0 {
		c.Features = features
	}
	if r.KmPerDay != nil {
		c.KmPerDay = *r.KmPerDay
	}
	if r.Days != nil {
		c.Days = *r.Days
	}

	c.UpdatedAt = time.Now().UTC()
}
