package model

import "time"

// Credit links a cineast to a movie or show with a role (e.g. "Director",
// "Neo"). PersonDetails is filled on single-entity reads only.
type Credit struct {
	PersonID      uint64          `json:"person" validate:"required"`
	Role          string          `json:"role"`
	PersonDetails *CineastSummary `json:"personDetails,omitempty"`
}

// Movie mirrors the `movies` table. Genres and credits are stored as JSON
// columns.
type Movie struct {
	ID              uint64    `json:"_id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Genres          []string  `json:"genres"`
	Language        string    `json:"language"`
	ReleaseDate     string    `json:"releaseDate"` // YYYY-MM-DD
	Duration        int       `json:"duration"`    // minutes
	CoverImage      string    `json:"coverImage"`
	Poster          string    `json:"poster"`
	Video           string    `json:"video"`
	Casts           []Credit  `json:"casts"`
	Crews           []Credit  `json:"crews"`
	AverageRating   float64   `json:"averageRating"`
	NumberOfReviews int       `json:"numberOfReviews"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasGenre reports whether g is one of the movie's genres.
func (m Movie) HasGenre(g string) bool {
	for _, have := range m.Genres {
		if have == g {
			return true
		}
	}
	return false
}

// Review is a single user rating of a movie. A user reviews a movie once.
type Review struct {
	ID        uint64    `json:"_id"`
	MovieID   uint64    `json:"movie"`
	UserID    uint64    `json:"user"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cineast is a person (actor, director, crew) credited by movies and shows.
type Cineast struct {
	ID        uint64    `json:"_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Biography string    `json:"biography"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CineastSummary is the subset of a cineast embedded in credit lists.
type CineastSummary struct {
	ID    uint64 `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Theatre is a venue where shows are screened. SeatRows and SeatCols are
// optional layout hints; nil means unspecified.
type Theatre struct {
	ID        uint64    `json:"_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	SeatRows  *uint32   `json:"seatRows,omitempty"`
	SeatCols  *uint32   `json:"seatCols,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
