package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/drivingschool/internal/domain/course"
	"github.com/geocoder89/drivingschool/internal/domain/video"
)

var now = func() time.Time { return time.Now().UTC() }

type CoursesRepo struct {
	mu    sync.RWMutex
	items map[string]course.Course
}

func NewCoursesRepo() *CoursesRepo {
	return &CoursesRepo{
		items: make(map[string]course.Course),
	}
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Name, c.Name) {
			return course.ErrDuplicateName
		}
	}

	r.items[c.ID] = c
	return nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id string) (course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (r *CoursesRepo) ListByCategory(ctx context.Context, category string) ([]course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]course.Course, 0)
	for _, c := range r.items {
		if c.Category == category {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CoursesRepo) Update(ctx context.Context, c course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[c.ID]; !ok {
		return course.ErrNotFound
	}
	for id, existing := range r.items {
		if id != c.ID && strings.EqualFold(existing.Name, c.Name) {
			return course.ErrDuplicateName
		}
	}

	r.items[c.ID] = c
	return nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return course.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type VideosRepo struct {
	mu    sync.RWMutex
	items map[string]video.Video
}

func NewVideosRepo() *VideosRepo {
	return &VideosRepo{
		items: make(map[string]video.Video),
	}
}

func (r *VideosRepo) Create(ctx context.Context, v video.Video) error {
	r.mu.Lock()
	r.items[v.ID] = v
	r.mu.Unlock()

	return nil
}

func (r *VideosRepo) GetByID(ctx context.Context, id string) (video.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[id]
	if !ok {
		return video.Video{}, video.ErrNotFound
	}
	return v, nil
}

func (r *VideosRepo) List(ctx context.Context) ([]video.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]video.Video, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *VideosRepo) Update(ctx context.Context, v video.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[v.ID]; !ok {
		return video.ErrNotFound
	}
	r.items[v.ID] = v
	return nil
}

func (r *VideosRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return video.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
