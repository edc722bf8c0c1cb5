package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/http/middlewares"
	"github.com/geocoder89/drivingschool/internal/service/session"
	"github.com/gin-gonic/gin"
)

const RefreshTokenCookie = "refreshToken"

type SessionService interface {
	Register(ctx context.Context, req user.RegisterRequest, avatarPath string) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (session.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, raw string) (session.TokenPair, error)
	Me(ctx context.Context, userID string) (user.User, error)
	UpdateProfile(ctx context.Context, actor user.User, req user.UpdateProfileRequest) (user.User, error)
	List(ctx context.Context, role user.Role) ([]user.User, error)
	Approve(ctx context.Context, userID string) (user.User, error)
	Suspend(ctx context.Context, userID string) (user.User, error)
	MarkEligible(ctx context.Context, userID string) (user.User, error)
}

type UserDeleter interface {
	DeleteUserCascade(ctx context.Context, userID string) (user.User, error)
}

type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type UsersHandler struct {
	sessions  SessionService
	deleter   UserDeleter
	cookies   CookieConfig
	uploadDir string
}

func NewUsersHandler(sessions SessionService, deleter UserDeleter, cookies CookieConfig, uploadDir string) *UsersHandler {
	return &UsersHandler{
		sessions:  sessions,
		deleter:   deleter,
		cookies:   cookies,
		uploadDir: uploadDir,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// POST /api/user/register
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !Bind(ctx, &req) {
		return
	}

	avatarPath, err := stageUpload(ctx, "avatar", h.uploadDir)
	if err != nil {
		RespondBadRequest(ctx, "Could not read avatar upload", nil)
		return
	}
	defer removeStaged(avatarPath)

	u, err := h.sessions.Register(ctx.Request.Context(), req, avatarPath)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusCreated, u, "User registered successfully")
}

// POST /api/user/login
func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	res, err := h.sessions.Login(ctx.Request.Context(), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	h.setSessionCookies(ctx, res.TokenPair)

	RespondOK(ctx, http.StatusOK, gin.H{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	}, "User logged in successfully")
}

// POST /api/user/logout
func (h *UsersHandler) Logout(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	if err := h.sessions.Logout(ctx.Request.Context(), userID); err != nil {
		RespondErr(ctx, err)
		return
	}

	h.clearSessionCookies(ctx)
	RespondOK(ctx, http.StatusOK, gin.H{}, "User logged out successfully")
}

// GET /api/user/auth
func (h *UsersHandler) AuthCheck(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	u, err := h.sessions.Me(ctx.Request.Context(), userID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, u, "User is authenticated")
}

// POST /api/user/refresh-token takes the token from the cookie first, then
// from the body.
func (h *UsersHandler) Refresh(ctx *gin.Context) {
	raw, _ := ctx.Cookie(RefreshTokenCookie)

	if raw == "" {
		var body refreshRequest
		// an empty or non-JSON body just means no token
		_ = ctx.ShouldBindJSON(&body)
		raw = body.RefreshToken
	}

	pair, err := h.sessions.Refresh(ctx.Request.Context(), raw)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	h.setSessionCookies(ctx, pair)
	RespondOK(ctx, http.StatusOK, pair, "Access token refreshed")
}

// PUT /api/user/update
func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	actor, _ := middlewares.UserFromContext(ctx)

	u, err := h.sessions.UpdateProfile(ctx.Request.Context(), actor, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, u, "User updated successfully")
}

func (h *UsersHandler) ListCandidates(ctx *gin.Context) {
	h.list(ctx, user.RoleCandidate, "Candidates fetched successfully")
}

func (h *UsersHandler) ListInstructors(ctx *gin.Context) {
	h.list(ctx, user.RoleInstructor, "Instructors fetched successfully")
}

func (h *UsersHandler) list(ctx *gin.Context, role user.Role, message string) {
	users, err := h.sessions.List(ctx.Request.Context(), role)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	if users == nil {
		users = []user.User{}
	}

	RespondOK(ctx, http.StatusOK, users, message)
}

// DELETE /api/user/delete/:userId removes the user and every logsheet it wrote.
func (h *UsersHandler) Delete(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "userId") {
		return
	}

	u, err := h.deleter.DeleteUserCascade(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, u, "User deleted successfully")
}

func (h *UsersHandler) Approve(ctx *gin.Context) {
	h.transition(ctx, h.sessions.Approve, "User approved successfully")
}

func (h *UsersHandler) Suspend(ctx *gin.Context) {
	h.transition(ctx, h.sessions.Suspend, "User suspended successfully")
}

func (h *UsersHandler) MarkEligible(ctx *gin.Context) {
	h.transition(ctx, h.sessions.MarkEligible, "User marked eligible for certificate")
}

func (h *UsersHandler) transition(ctx *gin.Context, fn func(context.Context, string) (user.User, error), message string) {
	if !RequireUUIDParam(ctx, "userId") {
		return
	}

	u, err := fn(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, u, message)
}

func (h *UsersHandler) setSessionCookies(ctx *gin.Context, pair session.TokenPair) {
	ctx.SetSameSite(http.SameSiteNoneMode)

	ctx.SetCookie(middlewares.AccessTokenCookie, pair.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", "", true, true)
	ctx.SetCookie(RefreshTokenCookie, pair.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", "", true, true)
}

func (h *UsersHandler) clearSessionCookies(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteNoneMode)

	ctx.SetCookie(middlewares.AccessTokenCookie, "", -1, "/", "", true, true)
	ctx.SetCookie(RefreshTokenCookie, "", -1, "/", "", true, true)
}
