package model

import "time"

// User represents an account as stored in the `users` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	FullName     – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash; never serialized.
//	Image        – profile image URL (may be empty).
//	Role         – USER, ADMIN or OWNER.
//	LikedMovies  – movie IDs in the order they were liked.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image"`
	Role         Role      `json:"role"`
	LikedMovies  []uint64  `json:"likedMovies"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserView is the public projection of a User. Token is only set on
// responses that (re)issue credentials.
type UserView struct {
	ID           uint64     `json:"_id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Image        string     `json:"image"`
	Role         Role       `json:"role"`
	IsAdmin      bool       `json:"isAdmin"`
	IsOwner      bool       `json:"isOwner"`
	LikedMovies  []uint64   `json:"likedMovies,omitempty"`
	Token        string     `json:"token,omitempty"`
	TokenExpires *time.Time `json:"tokenExpires,omitempty"`
	Refresh      string     `json:"refreshToken,omitempty"`
}

// View builds the public projection without credentials.
func (u User) View() UserView {
	return UserView{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Image:       u.Image,
		Role:        u.Role,
		IsAdmin:     u.Role.IsAdmin(),
		IsOwner:     u.Role == RoleOwner,
		LikedMovies: u.LikedMovies,
	}
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
