package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// AuthConfig holds token and hashing parameters.
type AuthConfig struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

var (
	ErrUnknownUser     = apperr.New(apperr.KindUnauthorized, "user does not exist")
	ErrInvalidPassword = apperr.New(apperr.KindUnauthorized, "invalid password")
	ErrInvalidRefresh  = apperr.New(apperr.KindUnauthorized, "invalid refresh token")
)

// LoginInput is the body of POST /users/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and issues a fresh token pair. An unknown email
// and a wrong password fail with distinct errors of the same kind.
func (s *UserService) Login(ctx context.Context, in LoginInput) (model.UserView, error) {
	if err := check(in); err != nil {
		return model.UserView{}, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.UserView{}, ErrUnknownUser
	}
	if err != nil {
		return model.UserView{}, apperr.Internal("load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		s.log.Info("login rejected", zap.Uint64("user_id", u.ID))
		return model.UserView{}, ErrInvalidPassword
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *UserService) Refresh(ctx context.Context, raw string) (model.UserView, error) {
	if raw == "" {
		return model.UserView{}, ErrInvalidRefresh
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return model.UserView{}, ErrInvalidRefresh
	}
	if err != nil {
		return model.UserView{}, apperr.Internal("validate refresh token", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.UserView{}, ErrInvalidRefresh
	}
	if err != nil {
		return model.UserView{}, apperr.Internal("load user", err)
	}
	revoked, err := s.tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return model.UserView{}, apperr.Internal("revoke refresh token", err)
	}
	// A concurrent refresh already spent this token.
	if !revoked {
		s.log.Warn("refresh token reused", zap.Uint64("user_id", userID))
		return model.UserView{}, ErrInvalidRefresh
	}
	return s.issue(ctx, u)
}

// Logout revokes the given refresh token, or every token of the user when
// raw is empty.
func (s *UserService) Logout(ctx context.Context, userID uint64, raw string) error {
	var err error
	if raw != "" {
		_, err = s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	} else {
		err = s.tokens.RevokeAllForUser(ctx, userID)
	}
	if err != nil {
		return apperr.Internal("revoke refresh token", err)
	}
	return nil
}

// EnsureOwner makes sure an account with email exists and holds the owner
// role, creating it with password when missing. The password of an existing
// account is left untouched.
func (s *UserService) EnsureOwner(ctx context.Context, email, password string) error {
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == model.RoleOwner {
			return nil
		}
		if err := s.users.SetRole(ctx, u.ID, model.RoleOwner); err != nil {
			return apperr.Internal("promote owner", err)
		}
		s.log.Info("owner role granted", zap.Uint64("user_id", u.ID))
		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return apperr.Internal("load owner", err)
	}

	hash, err := utils.HashPassword(password, s.auth.BcryptCost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	owner := &model.User{FullName: "Owner", Email: email, PasswordHash: hash, Role: model.RoleOwner}
	if err := s.users.Create(ctx, owner); err != nil {
		return apperr.Internal("create owner", err)
	}
	s.log.Info("owner account created", zap.Uint64("user_id", owner.ID))
	return nil
}

// issue builds the user view with a new access token and a stored refresh
// token.
func (s *UserService) issue(ctx context.Context, u model.User) (model.UserView, error) {
	at, err := utils.NewAccessToken(s.auth.Secret, u.ID, string(u.Role), s.auth.AccessTTLMin)
	if err != nil {
		return model.UserView{}, apperr.Internal("sign access token", err)
	}
	rt, err := utils.NewRefreshToken(s.auth.RefreshTTLDays)
	if err != nil {
		return model.UserView{}, apperr.Internal("generate refresh token", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return model.UserView{}, apperr.Internal("store refresh token", err)
	}
	v := u.View()
	v.Token = at.Token
	exp := at.Exp.UTC().Truncate(time.Second)
	v.TokenExpires = &exp
	v.Refresh = rt.Raw
	return v, nil
}
