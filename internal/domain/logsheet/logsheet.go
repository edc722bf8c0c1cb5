package logsheet

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("logsheet not found")

// Logsheet is one day of training. Username points back at the owning user;
// the user's logsheet id list is the owning side.
type Logsheet struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Date       string     `json:"date"`
	KmCovered  float64    `json:"kmCovered"`
	Learning   string     `json:"learning"`
	TimingFrom time.Time  `json:"timingFrom"`
	TimingTo   time.Time  `json:"timingTo"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CreateRequest needs every field. kmCovered is a pointer so an explicit 0
// passes required.
type CreateRequest struct {
	Date       string     `json:"date" binding:"required"`
	KmCovered  *float64   `json:"kmCovered" binding:"required,min=0"`
	Learning   string     `json:"learning" binding:"required,max=2000"`
	TimingFrom *time.Time `json:"timingFrom" binding:"required"`
	TimingTo   *time.Time `json:"timingTo" binding:"required"`
}

// UpdateRequest is a partial update. A nil field is left alone; a non-nil
// zero value (kmCovered 0, learning "") is applied.
type UpdateRequest struct {
	Date       *string    `json:"date"`
	KmCovered  *float64   `json:"kmCovered" binding:"omitempty,min=0"`
	Learning   *string    `json:"learning" binding:"omitempty,max=2000"`
	TimingFrom *time.Time `json:"timingFrom"`
	TimingTo   *time.Time `json:"timingTo"`
}

func NewFromCreateRequest(username string, req CreateRequest) Logsheet {
	now := time.Now().UTC()

	return Logsheet{
		ID:         uuid.NewString(),
		Username:   username,
		Date:       strings.TrimSpace(req.Date),
		KmCovered:  deref(req.KmCovered),
		Learning:   req.Learning,
		TimingFrom: deref(req.TimingFrom),
		TimingTo:   deref(req.TimingTo),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Apply copies the supplied fields and reports whether anything changed.
func (r UpdateRequest) Apply(l *Logsheet) bool {
	changed := false

	if r.Date != nil {
		if d := strings.TrimSpace(*r.Date); d != "" {
			l.Date = d
			changed = true
		}
	}
	if r.KmCovered != nil {
		l.KmCovered = *r.KmCovered
		changed = true
	}
	if r.Learning != nil {
		l.Learning = *r.Learning
		changed = true
	}
	if r.TimingFrom != nil {
		l.TimingFrom = *r.TimingFrom
		changed = true
	}
	if r.TimingTo != nil {
		l.TimingTo = *r.TimingTo
		changed = true
	}

	if changed {
		l.UpdatedAt = time.Now().UTC()
	}

	return changed
}

func deref[T any](p *T) T {
	var v T
	if p != nil {
		v = *p
	}
	return v
}

// ReconcileReport summarises one consistency pass between user id lists and
// the logsheet rows.
type ReconcileReport struct {
	Relinked       int `json:"relinked"`
	DeletedOrphans int `json:"deletedOrphans"`
	StrippedIDs    int `json:"strippedIds"`
}

func (r ReconcileReport) Empty() bool {
	return r.Relinked == 0 && r.DeletedOrphans == 0 && r.StrippedIDs == 0
}
