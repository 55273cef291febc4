package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// UserHandler serves /api/users.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(u *service.UserService) *UserHandler {
	return &UserHandler{Users: u}
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}

type likeReq struct {
	MovieID uint64 `json:"movieId" validate:"required"`
}

type adminReq struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

// Register creates an account. An authenticated owner may create admins.
func (h *UserHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Users.Register(ctx, actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *UserHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Users.Login(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *UserHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// Logout revokes the given refresh token, or all of the caller's tokens
// when the body names none.
func (h *UserHandler) Logout(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req logoutReq
	if c.Request().ContentLength > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Users.Logout(ctx, uid, req.RefreshToken); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Me(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Users.Me(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.ProfileInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Users.UpdateProfile(ctx, uid, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *UserHandler) DeleteProfile(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Users.DeleteProfile(ctx, uid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.PasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Users.ChangePassword(ctx, uid, in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *UserHandler) ListLiked(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	movies, err := h.Users.ListLikedMovies(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *UserHandler) AddLiked(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req likeReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	ids, err := h.Users.AddLikedMovie(ctx, uid, req.MovieID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"likedMovies": ids})
}

func (h *UserHandler) RemoveLiked(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	movieID, err := pathID(c, "movieId")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	ids, err := h.Users.RemoveLikedMovie(ctx, uid, movieID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"likedMovies": ids})
}

func (h *UserHandler) ClearLiked(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Users.ClearLikedMovies(ctx, uid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"likedMovies": []uint64{}})
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	users, err := h.Users.ListUsers(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// SetAdmin handles PUT /users/:id with {"isAdmin": bool}.
func (h *UserHandler) SetAdmin(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Users.SetAdmin(ctx, actor(c), id, *req.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Users.DeleteUser(ctx, actor(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
