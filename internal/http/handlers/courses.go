package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/drivingschool/internal/domain/course"
	"github.com/gin-gonic/gin"
)

type CourseStore interface {
	Create(ctx context.Context, c course.Course) error
	GetByID(ctx context.Context, id string) (course.Course, error)
	ListByCategory(ctx context.Context, category string) ([]course.Course, error)
	Update(ctx context.Context, c course.Course) error
	Delete(ctx context.Context, id string) error
}

type CoursesHandler struct {
	repo CourseStore
}

func NewCoursesHandler(repo CourseStore) *CoursesHandler {
	return &CoursesHandler{repo: repo}
}

// POST /api/course/upload
func (h *CoursesHandler) Create(ctx *gin.Context) {
	var req course.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondBadRequest(ctx, "Name, description, timing and category are required", nil)
		return
	}

	c := course.NewFromCreateRequest(req)

	if err := h.repo.Create(ctx.Request.Context(), c); err != nil {
		if errors.Is(err, course.ErrDuplicateName) {
			RespondError(ctx, http.StatusConflict, "course_exists", "Course with this name already exists", nil)
			return
		}
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusCreated, c, "Course created successfully")
}

// GET /api/course/all/:category
func (h *CoursesHandler) ListByCategory(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Param("category"))

	courses, err := h.repo.ListByCategory(ctx.Request.Context(), category)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	if courses == nil {
		courses = []course.Course{}
	}

	RespondOK(ctx, http.StatusOK, courses, "Courses fetched successfully")
}

// PUT /api/course/update/:courseId
func (h *CoursesHandler) Update(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "courseId") {
		return
	}

	var req course.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		h.respondRepoErr(ctx, err)
		return
	}

	req.Apply(&c)

	if err := h.repo.Update(ctx.Request.Context(), c); err != nil {
		h.respondRepoErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, c, "Course updated successfully")
}

// DELETE /api/course/delete/:courseId
func (h *CoursesHandler) Delete(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "courseId") {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), ctx.Param("courseId")); err != nil {
		h.respondRepoErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, gin.H{}, "Course deleted successfully")
}

func (h *CoursesHandler) respondRepoErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, course.ErrNotFound):
		RespondNotFound(ctx, "Course not found")
	case errors.Is(err, course.ErrDuplicateName):
		RespondError(ctx, http.StatusConflict, "course_exists", "Course with this name already exists", nil)
	default:
		RespondErr(ctx, err)
	}
}
