// Package session owns registration, approval and the login, refresh and
// logout token lifecycle.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/auth"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/media"
	"github.com/geocoder89/drivingschool/internal/notifications"
	"github.com/geocoder89/drivingschool/internal/otp"
	"github.com/geocoder89/drivingschool/internal/repo"
	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email, username string) (string, error)
	GenerateRefreshToken(userID, email, username string) (string, error)
	VerifyRefreshToken(token string) (*auth.Claims, error)
	HashRefreshToken(raw string) string
}

type Config struct {
	OwnerEmail         string
	DefaultAvatar      string
	ContactInbox       string
	CertificateFormURL string
	OTPTTL             time.Duration
}

type Deps struct {
	Users    repo.Users
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Mailer   notifications.Mailer
	Uploader media.Uploader
	OTPs     otp.Store
	Logger   *slog.Logger
}

type Service struct {
	users    repo.Users
	hasher   PasswordHasher
	tokens   TokenIssuer
	mailer   notifications.Mailer
	uploader media.Uploader
	otps     otp.Store
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
}

func New(cfg Config, deps Deps) *Service {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		users:    deps.Users,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		mailer:   deps.Mailer,
		uploader: deps.Uploader,
		otps:     deps.OTPs,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// TokenPair is what login and refresh hand back, alongside the user for login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User user.User `json:"user"`
	TokenPair
}

func (s *Service) IsOwner(u user.User) bool {
	return u.IsOwner(s.cfg.OwnerEmail)
}

// Register validates, checks uniqueness, uploads the optional avatar and
// stores the new user. Nothing is written when any step fails.
func (s *Service) Register(ctx context.Context, req user.RegisterRequest, avatarPath string) (user.User, error) {
	reg, err := req.Validate()
	if err != nil {
		return user.User{}, err
	}

	inUse, err := s.users.ContactInUse(ctx, reg.ContactNumber, "")
	if err != nil {
		return user.User{}, apperr.Internal("Something went wrong while registering the user", err)
	}
	if inUse {
		return user.User{}, errContactInUse()
	}

	if _, err := s.users.GetByEmail(ctx, reg.Email); err == nil {
		return user.User{}, errUserExists()
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, apperr.Internal("Something went wrong while registering the user", err)
	}

	taken, err := s.users.UsernameInUse(ctx, reg.Username)
	if err != nil {
		return user.User{}, apperr.Internal("Something went wrong while registering the user", err)
	}
	if taken {
		return user.User{}, errUserExists()
	}

	avatar := s.cfg.DefaultAvatar
	if avatarPath != "" {
		url, err := s.uploader.Upload(ctx, avatarPath, media.KindImage)
		if err != nil {
			return user.User{}, apperr.Internal("Avatar upload failed", err)
		}
		avatar = url
	}

	hash, err := s.hasher.Hash(ctx, reg.Password)
	if err != nil {
		return user.User{}, apperr.Internal("Something went wrong while registering the user", err)
	}

	now := s.now().UTC()
	u := user.User{
		ID:             uuid.NewString(),
		Role:           reg.Role,
		Name:           reg.Name,
		Age:            reg.Age,
		Address:        reg.Address,
		ContactNumber:  reg.ContactNumber,
		VehicleToLearn: reg.VehicleToLearn,
		Email:          reg.Email,
		Username:       reg.Username,
		Experience:     reg.Experience,
		Specialties:    reg.Specialties,
		License:        reg.License,
		Bio:            reg.Bio,
		Avatar:         avatar,
		PasswordHash:   hash,
		Status:         user.StatusPendingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if u.IsOwner(s.cfg.OwnerEmail) {
		u.Status = user.StatusApproved
	}

	if err := s.users.Create(ctx, u); err != nil {
		return user.User{}, mapUserWriteErr(err, "Something went wrong while registering the user")
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role, "status", u.Status)

	return u, nil
}

// Approve moves a pending or suspended user to approved and mails them.
// Approving an already approved user changes nothing and sends nothing.
func (s *Service) Approve(ctx context.Context, userID string) (user.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	changed, err := u.Approve()
	if err != nil {
		return user.User{}, apperr.Conflict("invalid_transition", "User cannot be approved from its current state")
	}
	if !changed {
		return u, nil
	}

	if err := s.users.SetStatus(ctx, u.ID, u.Status); err != nil {
		return user.User{}, mapUserWriteErr(err, "Something went wrong while approving the user")
	}

	s.logger.InfoContext(ctx, "user approved", "user_id", u.ID)

	msg, err := notifications.ApprovalMessage(u.Email, u.Name)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		return u, apperr.Internal("User approved but the approval email could not be sent", err)
	}

	return u, nil
}

// Suspend blocks login for an approved user and drops their refresh token.
func (s *Service) Suspend(ctx context.Context, userID string) (user.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	changed, err := u.Suspend()
	if err != nil {
		return user.User{}, apperr.Conflict("invalid_transition", "Only approved users can be suspended")
	}
	if !changed {
		return u, nil
	}

	if err := s.users.SetStatus(ctx, u.ID, u.Status); err != nil {
		return user.User{}, mapUserWriteErr(err, "Something went wrong while suspending the user")
	}

	s.logger.InfoContext(ctx, "user suspended", "user_id", u.ID)
	return u, nil
}

func (s *Service) MarkEligible(ctx context.Context, userID string) (user.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	if err := s.users.SetCertificateEligible(ctx, u.ID, true); err != nil {
		return user.User{}, mapUserWriteErr(err, "Something went wrong while updating the user")
	}
	u.IsCertificateEligible = true

	if err := s.mailer.Send(ctx, notifications.EligibilityMessage(u.Email, u.Name, s.cfg.CertificateFormURL)); err != nil {
		return u, apperr.Internal("User marked eligible but the email could not be sent", err)
	}

	return u, nil
}

// Login checks approval before the password, so a pending user learns they
// are pending rather than that their password is wrong.
func (s *Service) Login(ctx context.Context, req user.LoginRequest) (LoginResult, error) {
	email := user.NormalizeEmail(req.Email)
	if email == "" {
		return LoginResult{}, apperr.Validation("invalid_request", "email is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, apperr.NotFound("user_not_found", "User does not exist")
		}
		return LoginResult{}, apperr.Internal("Something went wrong while logging in", err)
	}

	if !u.CanLogin() {
		return LoginResult{}, apperr.NotFound("not_approved", "User is still pending for the registration")
	}

	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		return LoginResult{}, apperr.Unauthorized("invalid_credentials", "Invalid user credentials")
	}

	pair, err := s.issue(u)
	if err != nil {
		return LoginResult{}, err
	}

	digest := s.tokens.HashRefreshToken(pair.RefreshToken)
	if err := s.users.SetRefreshTokenHash(ctx, u.ID, &digest); err != nil {
		return LoginResult{}, apperr.Internal("Something went wrong while generating tokens", err)
	}
	u.RefreshTokenHash = &digest

	return LoginResult{User: u, TokenPair: pair}, nil
}

// Logout clears the stored refresh token. A user deleted in the meantime is
// already logged out.
func (s *Service) Logout(ctx context.Context, userID string) error {
	err := s.users.SetRefreshTokenHash(ctx, userID, nil)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return apperr.Internal("Something went wrong while logging out", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a new pair. The stored digest is
// swapped only if it still matches the presented token, so a token can be
// used at most once.
func (s *Service) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	if strings.TrimSpace(raw) == "" {
		return TokenPair{}, apperr.Unauthorized("unauthorized_request", "unauthorized request")
	}

	claims, err := s.tokens.VerifyRefreshToken(raw)
	if err != nil {
		return TokenPair{}, errInvalidRefresh()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, errInvalidRefresh()
		}
		return TokenPair{}, apperr.Internal("Something went wrong while refreshing the session", err)
	}

	if !u.CanLogin() {
		return TokenPair{}, errInvalidRefresh()
	}

	presented := s.tokens.HashRefreshToken(raw)
	if u.RefreshTokenHash == nil || *u.RefreshTokenHash != presented {
		s.logger.WarnContext(ctx, "refresh token reuse", "user_id", u.ID)
		return TokenPair{}, errExpiredOrReused()
	}

	pair, err := s.issue(u)
	if err != nil {
		return TokenPair{}, err
	}

	ok, err := s.users.RotateRefreshTokenHash(ctx, u.ID, presented, s.tokens.HashRefreshToken(pair.RefreshToken))
	if err != nil {
		return TokenPair{}, apperr.Internal("Something went wrong while refreshing the session", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "refresh token reuse", "user_id", u.ID)
		return TokenPair{}, errExpiredOrReused()
	}

	return pair, nil
}

// Me re-reads the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.Unauthorized("invalid_user", "Invalid user")
		}
		return user.User{}, apperr.Internal("Something went wrong", err)
	}
	return u, nil
}

// UpdateProfile lets a user edit their own profile; the owner may edit anyone.
func (s *Service) UpdateProfile(ctx context.Context, actor user.User, req user.UpdateProfileRequest) (user.User, error) {
	if actor.ID != req.UserID && !s.IsOwner(actor) {
		return user.User{}, apperr.Forbidden("forbidden", "You can only update your own profile")
	}

	u, err := s.getUser(ctx, req.UserID)
	if err != nil {
		return user.User{}, err
	}

	contactChanged, err := req.Apply(&u)
	if err != nil {
		return user.User{}, err
	}

	if contactChanged {
		inUse, err := s.users.ContactInUse(ctx, u.ContactNumber, u.ID)
		if err != nil {
			return user.User{}, apperr.Internal("Something went wrong while updating the user", err)
		}
		if inUse {
			return user.User{}, errContactInUse()
		}
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return user.User{}, mapUserWriteErr(err, "Something went wrong while updating the user")
	}

	return s.getUser(ctx, u.ID)
}

func (s *Service) List(ctx context.Context, role user.Role) ([]user.User, error) {
	users, err := s.users.List(ctx, user.ListFilter{Role: role})
	if err != nil {
		return nil, apperr.Internal("Something went wrong while listing users", err)
	}
	return users, nil
}

func (s *Service) issue(u user.User) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Username)
	if err != nil {
		return TokenPair{}, apperr.Internal("Something went wrong while generating tokens", err)
	}

	refresh, err := s.tokens.GenerateRefreshToken(u.ID, u.Email, u.Username)
	if err != nil {
		return TokenPair{}, apperr.Internal("Something went wrong while generating tokens", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) getUser(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.NotFound("user_not_found", "User not found")
		}
		return user.User{}, apperr.Internal("Something went wrong", err)
	}
	return u, nil
}

func mapUserWriteErr(err error, internalMsg string) error {
	switch {
	case errors.Is(err, user.ErrDuplicateContact):
		return errContactInUse()
	case errors.Is(err, user.ErrDuplicateEmail), errors.Is(err, user.ErrDuplicateUsername):
		return errUserExists()
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("user_not_found", "User not found")
	default:
		return apperr.Internal(internalMsg, err)
	}
}

func errContactInUse() *apperr.Error {
	return apperr.Conflict("contact_in_use", "Contact number is already in use")
}

func errUserExists() *apperr.Error {
	return apperr.Conflict("user_exists", "User with email or username already exists")
}

func errInvalidRefresh() *apperr.Error {
	return apperr.Unauthorized("invalid_refresh_token", "Invalid refresh token")
}

func errExpiredOrReused() *apperr.Error {
	return apperr.Unauthorized("expired_or_reused_token", "Refresh token is expired or used")
}

var errNoInbox = errors.New("contact inbox not configured")
