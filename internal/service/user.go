package service

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

var (
	ErrEmailTaken         = apperr.Conflict("email already registered")
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrAdminProtected     = apperr.Forbidden("can't delete admin user")
	ErrOwnerProtected     = apperr.Forbidden("owner role cannot be changed")
	ErrInvalidOldPassword = apperr.Validation("invalid old password")
	ErrAlreadyLiked       = apperr.Conflict("movie already liked")
	ErrNotLiked           = apperr.NotFound("movie not in favourites")
	ErrGrantAdmin         = apperr.Forbidden("only the owner can grant admin")
)

// UserService implements accounts, favourites and user administration.
type UserService struct {
	users  UserStore
	tokens TokenStore
	movies MovieStore
	auth   AuthConfig
	log    *zap.Logger
}

func NewUserService(users UserStore, tokens TokenStore, movies MovieStore, auth AuthConfig, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, movies: movies, auth: auth, log: log.Named("users")}
}

// RegisterInput is the body of POST /users.
type RegisterInput struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=190"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Image    string `json:"image" validate:"max=500"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Register creates an account and signs it in. The admin flag is honoured
// only when the caller may grant it; anonymous callers pass a zero Actor.
func (s *UserService) Register(ctx context.Context, caller Actor, in RegisterInput) (model.UserView, error) {
	if err := check(in); err != nil {
		return model.UserView{}, err
	}
	role := model.RoleUser
	if in.IsAdmin {
		if !caller.Role.Can(model.CapGrantAdmin) {
			return model.UserView{}, ErrGrantAdmin
		}
		role = model.RoleAdmin
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return model.UserView{}, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return model.UserView{}, apperr.Internal("lookup email", err)
	}

	hash, err := utils.HashPassword(in.Password, s.auth.BcryptCost)
	if err != nil {
		return model.UserView{}, apperr.Internal("hash password", err)
	}
	u := &model.User{FullName: in.FullName, Email: in.Email, PasswordHash: hash, Image: in.Image, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.UserView{}, ErrEmailTaken
		}
		return model.UserView{}, apperr.Internal("create user", err)
	}
	s.log.Info("user registered", zap.Uint64("user_id", u.ID), zap.String("role", string(role)))
	return s.issue(ctx, *u)
}

func (s *UserService) load(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, apperr.Internal("load user", err)
	}
	return u, nil
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, userID uint64) (model.UserView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}
	return u.View(), nil
}

// ProfileInput carries a partial profile update. Empty fields are kept.
type ProfileInput struct {
	FullName string `json:"fullName" validate:"max=120"`
	Email    string `json:"email" validate:"omitempty,email,max=190"`
	Image    string `json:"image" validate:"max=500"`
}

// UpdateProfile overwrites the non-empty fields of in and reissues tokens.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput) (model.UserView, error) {
	if err := check(in); err != nil {
		return model.UserView{}, err
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}
	if err := copier.CopyWithOption(&u, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return model.UserView{}, apperr.Internal("apply profile", err)
	}
	if err := s.users.UpdateProfile(ctx, &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return model.UserView{}, ErrEmailTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return model.UserView{}, ErrUserNotFound
		}
		return model.UserView{}, apperr.Internal("update profile", err)
	}
	return s.issue(ctx, u)
}

// DeleteProfile removes the caller's own account. Admin accounts cannot
// delete themselves.
func (s *UserService) DeleteProfile(ctx context.Context, userID uint64) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role.IsAdmin() {
		return ErrAdminProtected
	}
	return s.remove(ctx, u.ID)
}

func (s *UserService) remove(ctx context.Context, id uint64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal("delete user", err)
	}
	s.log.Info("user deleted", zap.Uint64("user_id", id))
	return nil
}

// PasswordInput is the body of PUT /users/password.
type PasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// ChangePassword replaces the password after verifying the old one. Every
// refresh token of the user is revoked on success.
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, in PasswordInput) error {
	if err := check(in); err != nil {
		return err
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.OldPassword) {
		return ErrInvalidOldPassword
	}
	hash, err := utils.HashPassword(in.NewPassword, s.auth.BcryptCost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperr.Internal("update password", err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		s.log.Warn("revoke tokens after password change", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
	return nil
}

// ListLikedMovies returns the caller's favourites in the order they were
// added.
func (s *UserService) ListLikedMovies(ctx context.Context, userID uint64) ([]model.Movie, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	movies, err := s.movies.ListByIDs(ctx, u.LikedMovies)
	if err != nil {
		return nil, apperr.Internal("load liked movies", err)
	}
	return movies, nil
}

// AddLikedMovie appends movieID to the favourites. Liking a movie twice is
// rejected rather than ignored.
func (s *UserService) AddLikedMovie(ctx context.Context, userID, movieID uint64) ([]uint64, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, apperr.Internal("load movie", err)
	}
	if err := s.users.AddLiked(ctx, userID, movieID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyLiked):
			return nil, ErrAlreadyLiked
		case errors.Is(err, repository.ErrMovieNotFound):
			return nil, ErrMovieNotFound
		}
		return nil, apperr.Internal("add liked movie", err)
	}
	return s.likedIDs(ctx, userID)
}

// RemoveLikedMovie drops one favourite.
func (s *UserService) RemoveLikedMovie(ctx context.Context, userID, movieID uint64) ([]uint64, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.RemoveLiked(ctx, userID, movieID); err != nil {
		if errors.Is(err, repository.ErrNotLiked) {
			return nil, ErrNotLiked
		}
		return nil, apperr.Internal("remove liked movie", err)
	}
	return s.likedIDs(ctx, userID)
}

// ClearLikedMovies empties the favourites.
func (s *UserService) ClearLikedMovies(ctx context.Context, userID uint64) error {
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	if err := s.users.ClearLiked(ctx, userID); err != nil {
		return apperr.Internal("clear liked movies", err)
	}
	return nil
}

func (s *UserService) likedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids, err := s.users.LikedIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load liked movies", err)
	}
	return ids, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context, actor Actor) ([]model.UserView, error) {
	if err := actor.require(model.CapListUsers); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	out := make([]model.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out, nil
}

// DeleteUser removes another account. Admin accounts are protected whoever
// the caller is.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, targetID uint64) error {
	if err := actor.require(model.CapDeleteUsers); err != nil {
		return err
	}
	u, err := s.load(ctx, targetID)
	if err != nil {
		return err
	}
	if u.Role.IsAdmin() {
		return ErrAdminProtected
	}
	return s.remove(ctx, u.ID)
}

// SetAdmin grants or revokes the admin role. The owner's own role is fixed.
func (s *UserService) SetAdmin(ctx context.Context, actor Actor, targetID uint64, isAdmin bool) (model.UserView, error) {
	if err := actor.require(model.CapGrantAdmin); err != nil {
		return model.UserView{}, err
	}
	u, err := s.load(ctx, targetID)
	if err != nil {
		return model.UserView{}, err
	}
	if u.Role == model.RoleOwner {
		return model.UserView{}, ErrOwnerProtected
	}
	role := model.RoleUser
	if isAdmin {
		role = model.RoleAdmin
	}
	if role != u.Role {
		if err := s.users.SetRole(ctx, u.ID, role); err != nil {
			return model.UserView{}, apperr.Internal("set role", err)
		}
		// Existing sessions carry the old role claim.
		if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
			s.log.Warn("revoke tokens after role change", zap.Uint64("user_id", u.ID), zap.Error(err))
		}
		s.log.Info("role changed", zap.Uint64("user_id", u.ID), zap.String("role", string(role)), zap.Uint64("by", actor.ID))
		u.Role = role
	}
	return u.View(), nil
}
