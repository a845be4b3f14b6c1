package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/notification"
	"github.com/iliyamo/spark-meetup/internal/repository"
	"github.com/iliyamo/spark-meetup/internal/utils"
)

// MinPasswordLength is enforced on every password the service accepts.
const MinPasswordLength = 6

// TxFunc runs fn inside a database transaction.
type TxFunc func(ctx context.Context, fn func(tx *sql.Tx) error) error

// UserStore exposes the user persistence the services need.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, u model.User, now time.Time) error
	UpdatePassword(ctx context.Context, id uint64, hash string, now time.Time) error
	UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id uint64, hash string, now time.Time) error
	TouchLastSignedIn(ctx context.Context, id uint64, at time.Time) error
}

// RefreshTokenStore persists hashed refresh tokens.
type RefreshTokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp, now time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error
	RevokeAllForUserTx(ctx context.Context, tx *sql.Tx, userID uint64, now time.Time) error
}

// ResetTokenStore persists single use password reset tokens.
type ResetTokenStore interface {
	Create(ctx context.Context, userID uint64, token string, expiresAt, now time.Time) error
	InvalidateUnused(ctx context.Context, userID uint64) error
	GetByToken(ctx context.Context, token string) (model.PasswordResetToken, error)
	MarkUsedTx(ctx context.Context, tx *sql.Tx, id uint64) error
}

// AuthOptions carries the token and hashing settings.
type AuthOptions struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	ResetTokenTTL  time.Duration
	FrontendURL    string
}

// AuthService owns accounts, sessions and password recovery.
type AuthService struct {
	users      UserStore
	refresh    RefreshTokenStore
	resets     ResetTokenStore
	withTx     TxFunc
	dispatcher notification.Dispatcher
	opts       AuthOptions
	newReset   func() (string, error)
	now        func() time.Time
	logger     *slog.Logger
}

// NewAuthService constructs an AuthService. Zero options fall back to the
// same defaults the configuration layer uses.
func NewAuthService(users UserStore, refresh RefreshTokenStore, resets ResetTokenStore, withTx TxFunc, dispatcher notification.Dispatcher, opts AuthOptions, now func() time.Time, logger *slog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	if opts.AccessTTLMin <= 0 {
		opts.AccessTTLMin = 60
	}
	if opts.RefreshTTLDays <= 0 {
		opts.RefreshTTLDays = 30
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 10
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		users:      users,
		refresh:    refresh,
		resets:     resets,
		withTx:     withTx,
		dispatcher: dispatcher,
		opts:       opts,
		newReset:   utils.NewResetToken,
		now:        now,
		logger:     defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// RegisterParams is the input of Register.
type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Session is the credential pair handed to a caller after login or refresh.
type Session struct {
	User         model.User
	AccessToken  utils.AccessToken
	RefreshToken utils.RefreshToken
}

// Register creates a local account. Emails are compared exactly as stored.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user model.User, err error) {
	params.Email = strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Register", "email", params.Email)
	defer func() {
		if err == nil {
			logger = logger.With("user_id", user.ID)
		}
		logOutcome(ctx, logger, err, "registration")
	}()

	v := &ValidationError{}
	if params.Email == "" || !strings.Contains(params.Email, "@") {
		v.add("email", "a valid email is required")
	}
	if len(params.Password) < MinPasswordLength {
		v.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if err = v.err(); err != nil {
		return
	}

	var hash string
	hash, err = utils.HashPassword(params.Password, s.opts.BcryptCost)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}
	now := s.now()
	user = model.User{
		Name:            strings.TrimSpace(params.Name),
		Email:           params.Email,
		Phone:           strings.TrimSpace(params.Phone),
		PasswordHash:    hash,
		AlwaysAvailable: true,
		LoginMethod:     model.LoginMethodLocal,
		Role:            model.RoleUser,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastSignedIn:    now,
	}
	var id uint64
	id, err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrEmailExists) {
		err = ErrDuplicateEmail
		return
	}
	if err != nil {
		err = fmt.Errorf("create user: %w", err)
		return
	}
	user.ID = id
	user.PasswordHash = ""
	return
}

// Login verifies a local account's password and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (session Session, err error) {
	email = strings.TrimSpace(email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err == nil {
			logger = logger.With("user_id", session.User.ID)
		}
		logOutcome(ctx, logger, err, "login")
	}()

	var user model.User
	user, err = s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnHash(s.opts.BcryptCost)
		err = ErrInvalidCredentials
		return
	}
	if err != nil {
		err = fmt.Errorf("load user: %w", err)
		return
	}
	if user.LoginMethod != model.LoginMethodLocal || user.PasswordHash == "" {
		utils.BurnHash(s.opts.BcryptCost)
		err = ErrInvalidCredentials
		return
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	if err = s.users.TouchLastSignedIn(ctx, user.ID, now); err != nil {
		err = fmt.Errorf("touch last signed in: %w", err)
		return
	}
	user.LastSignedIn = now
	session, err = s.issue(ctx, user, now)
	return
}

// Refresh rotates a refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (session Session, err error) {
	logger := s.loggerWith(ctx, "Refresh")
	defer func() { logOutcome(ctx, logger, err, "token refresh") }()

	if strings.TrimSpace(rawRefresh) == "" {
		err = ErrUnauthorized
		return
	}
	now := s.now()
	hash := utils.HashRefreshRaw(rawRefresh)
	var userID uint64
	userID, err = s.refresh.ValidateRefresh(ctx, hash, now)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrUnauthorized
		return
	}
	if err != nil {
		err = fmt.Errorf("validate refresh token: %w", err)
		return
	}
	if err = s.refresh.RevokeByHash(ctx, hash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A concurrent refresh consumed it first.
			err = ErrUnauthorized
			return
		}
		err = fmt.Errorf("revoke refresh token: %w", err)
		return
	}
	var user model.User
	user, err = s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrUnauthorized
		return
	}
	if err != nil {
		err = fmt.Errorf("load user: %w", err)
		return
	}
	session, err = s.issue(ctx, user, now)
	return
}

func (s *AuthService) issue(ctx context.Context, user model.User, now time.Time) (Session, error) {
	access, err := utils.NewAccessToken(s.opts.JWTSecret, user.ID, string(user.Role), s.opts.AccessTTLMin, now)
	if err != nil {
		return Session{}, fmt.Errorf("sign access token: %w", err)
	}
	rt, err := utils.NewRefreshToken(s.opts.RefreshTTLDays, now)
	if err != nil {
		return Session{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.refresh.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp, now); err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	user.PasswordHash = ""
	return Session{User: user, AccessToken: access, RefreshToken: rt}, nil
}

// Logout revokes rawRefresh when given. Without one it revokes every refresh
// token of the authenticated caller.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) (err error) {
	logger := s.loggerWith(ctx, "Logout")
	defer func() { logOutcome(ctx, logger, err, "logout") }()

	now := s.now()
	if strings.TrimSpace(rawRefresh) != "" {
		err = s.refresh.RevokeByHash(ctx, utils.HashRefreshRaw(rawRefresh), now)
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("revoke refresh token: %w", err)
		}
		return
	}
	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}
	if err = s.refresh.RevokeAllForUser(ctx, p.UserID, now); err != nil {
		err = fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return
}

// ResolveCurrentUser returns the user behind the request, or nil for an
// anonymous caller or one whose account no longer exists.
func (s *AuthService) ResolveCurrentUser(ctx context.Context) (*model.User, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	u.PasswordHash = ""
	return &u, nil
}

// PrincipalFor loads the current role of userID. The middleware uses it so a
// role change takes effect before the access token expires.
func (s *AuthService) PrincipalFor(ctx context.Context, userID uint64) (Principal, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Principal{}, ErrUnauthorized
	}
	if err != nil {
		return Principal{}, fmt.Errorf("load user: %w", err)
	}
	return Principal{UserID: u.ID, Role: u.Role}, nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context) (model.User, error) {
	u, err := s.ResolveCurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if u == nil {
		return model.User{}, ErrUnauthorized
	}
	return *u, nil
}

// ProfileUpdate lists the profile fields to replace. Nil leaves a field as is.
type ProfileUpdate struct {
	Name            *string
	Phone           *string
	AccountNumber   *string
	AlwaysAvailable *bool
}

// UpdateProfile applies a partial profile update for the caller.
func (s *AuthService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (user model.User, err error) {
	logger := s.loggerWith(ctx, "UpdateProfile")
	defer func() { logOutcome(ctx, logger, err, "profile update") }()

	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}
	user, err = s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrUnauthorized
		return
	}
	if err != nil {
		err = fmt.Errorf("load user: %w", err)
		return
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Phone != nil {
		user.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.AccountNumber != nil {
		user.AccountNumber = strings.TrimSpace(*upd.AccountNumber)
	}
	if upd.AlwaysAvailable != nil {
		user.AlwaysAvailable = *upd.AlwaysAvailable
	}
	now := s.now()
	if err = s.users.UpdateProfile(ctx, user, now); err != nil {
		err = fmt.Errorf("update profile: %w", err)
		return
	}
	user.UpdatedAt = now
	user.PasswordHash = ""
	return
}

// RequestPasswordReset issues a reset link when the email belongs to a local
// account. The result is the same whether or not it does, and the miss path
// spends an equivalent hash so timing does not tell them apart either.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	email = strings.TrimSpace(email)
	logger := s.loggerWith(ctx, "RequestPasswordReset")
	defer func() { logOutcome(ctx, logger, err, "password reset request") }()

	if email == "" || !strings.Contains(email, "@") {
		err = fieldError("email", "a valid email is required")
		return
	}

	user, lookupErr := s.users.GetByEmail(ctx, email)
	if lookupErr != nil || user.LoginMethod != model.LoginMethodLocal {
		if lookupErr != nil && !errors.Is(lookupErr, repository.ErrNotFound) {
			logger.ErrorContext(ctx, "password reset lookup failed", "error", lookupErr)
		}
		utils.BurnHash(s.opts.BcryptCost)
		return nil
	}

	// Failures past this point are logged only; the caller sees success.
	if ierr := s.issueReset(ctx, user); ierr != nil {
		logger.ErrorContext(ctx, "password reset not issued", "error", ierr, "user_id", user.ID)
	}
	return nil
}

func (s *AuthService) issueReset(ctx context.Context, user model.User) error {
	if err := s.resets.InvalidateUnused(ctx, user.ID); err != nil {
		return fmt.Errorf("invalidate reset tokens: %w", err)
	}
	token, err := s.newReset()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	now := s.now()
	if err := s.resets.Create(ctx, user.ID, token, now.Add(s.opts.ResetTokenTTL), now); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	data := notification.Data{
		RecipientName: user.Name,
		ResetLink:     s.resetLink(token),
	}
	notify(ctx, s.dispatcher, s.loggerWith(ctx, "RequestPasswordReset"), notification.Message{
		To:   user.Email,
		Kind: notification.KindPasswordReset,
		Data: data,
	})
	return nil
}

func (s *AuthService) resetLink(token string) string {
	base := strings.TrimRight(s.opts.FrontendURL, "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetPassword consumes a reset token and replaces the password. The hash
// update, the token burn and the session revocation commit together.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	logger := s.loggerWith(ctx, "ResetPassword")
	defer func() { logOutcome(ctx, logger, err, "password reset") }()

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidToken
		return
	}
	if len(newPassword) < MinPasswordLength {
		err = fieldError("newPassword", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		return
	}

	var rt model.PasswordResetToken
	rt, err = s.resets.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrInvalidToken
		return
	}
	if err != nil {
		err = fmt.Errorf("load reset token: %w", err)
		return
	}
	now := s.now()
	if now.After(rt.ExpiresAt) {
		err = ErrExpiredToken
		return
	}
	if rt.Used {
		err = ErrTokenAlreadyUsed
		return
	}

	var hash string
	hash, err = utils.HashPassword(newPassword, s.opts.BcryptCost)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.resets.MarkUsedTx(ctx, tx, rt.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTokenAlreadyUsed
			}
			return fmt.Errorf("mark token used: %w", err)
		}
		if err := s.users.UpdatePasswordTx(ctx, tx, rt.UserID, hash, now); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := s.refresh.RevokeAllForUserTx(ctx, tx, rt.UserID, now); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return
	}

	logger = logger.With("user_id", rt.UserID)
	if user, uerr := s.users.GetByID(ctx, rt.UserID); uerr == nil {
		s.notifyPasswordChanged(ctx, logger, user, now)
	}
	return
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) (err error) {
	logger := s.loggerWith(ctx, "ChangePassword")
	defer func() { logOutcome(ctx, logger, err, "password change") }()

	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}
	if len(newPassword) < MinPasswordLength {
		err = fieldError("newPassword", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		return
	}
	var user model.User
	user, err = s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrUnauthorized
		return
	}
	if err != nil {
		err = fmt.Errorf("load user: %w", err)
		return
	}
	if user.PasswordHash == "" || !utils.VerifyPassword(user.PasswordHash, currentPassword) {
		err = ErrInvalidCredentials
		return
	}
	var hash string
	hash, err = utils.HashPassword(newPassword, s.opts.BcryptCost)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}
	now := s.now()
	if err = s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		err = fmt.Errorf("update password: %w", err)
		return
	}
	s.notifyPasswordChanged(ctx, logger, user, now)
	return
}

func (s *AuthService) notifyPasswordChanged(ctx context.Context, logger *slog.Logger, user model.User, at time.Time) {
	notify(ctx, s.dispatcher, logger, notification.Message{
		To:   user.Email,
		Kind: notification.KindPasswordChanged,
		Data: notification.Data{
			RecipientName: user.Name,
			ChangedAt:     at.UTC().Format("2006-01-02 15:04 MST"),
		},
	})
}
