package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement at startup. Every statement is
// idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		full_name     VARCHAR(120) NOT NULL,
		email         VARCHAR(190) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		image         VARCHAR(500) NOT NULL DEFAULT '',
		role          ENUM('USER','ADMIN','OWNER') NOT NULL DEFAULT 'USER',
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS cineasts (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(160) NOT NULL,
		image      VARCHAR(500) NOT NULL DEFAULT '',
		biography  TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title             VARCHAR(200) NOT NULL,
		slug              VARCHAR(220) NOT NULL UNIQUE,
		description       TEXT NOT NULL,
		genres            JSON NOT NULL,
		language          VARCHAR(60) NOT NULL DEFAULT '',
		release_date      VARCHAR(10) NOT NULL DEFAULT '',
		duration          INT NOT NULL DEFAULT 0,
		cover_image       VARCHAR(500) NOT NULL DEFAULT '',
		poster            VARCHAR(500) NOT NULL DEFAULT '',
		video             VARCHAR(500) NOT NULL DEFAULT '',
		casts             JSON NOT NULL,
		crews             JSON NOT NULL,
		average_rating    DOUBLE NOT NULL DEFAULT 0,
		number_of_reviews INT NOT NULL DEFAULT 0,
		created_at        DATETIME NOT NULL,
		updated_at        DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id   BIGINT UNSIGNED NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		rating     DOUBLE NOT NULL,
		comment    TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uq_review_user_movie (movie_id, user_id),
		CONSTRAINT fk_review_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		CONSTRAINT fk_review_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_liked_movies (
		id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id  BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_liked (user_id, movie_id),
		CONSTRAINT fk_liked_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_liked_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS theatres (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(160) NOT NULL,
		address    VARCHAR(300) NOT NULL DEFAULT '',
		seat_rows  INT UNSIGNED NULL,
		seat_cols  INT UNSIGNED NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(200) NOT NULL,
		description  TEXT NOT NULL,
		poster       VARCHAR(500) NOT NULL DEFAULT '',
		language     VARCHAR(60) NOT NULL DEFAULT '',
		show_date    VARCHAR(10) NOT NULL,
		show_time    VARCHAR(5) NOT NULL,
		ticket_price DOUBLE NOT NULL DEFAULT 0,
		total_seats  INT UNSIGNED NOT NULL,
		seats_booked INT UNSIGNED NOT NULL DEFAULT 0,
		theatre_id   BIGINT UNSIGNED NOT NULL,
		casts        JSON NOT NULL,
		crews        JSON NOT NULL,
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL,
		INDEX idx_shows_theatre (theatre_id),
		INDEX idx_shows_date (show_date),
		CONSTRAINT fk_show_theatre FOREIGN KEY (theatre_id) REFERENCES theatres(id) ON DELETE RESTRICT,
		CONSTRAINT chk_seats CHECK (seats_booked <= total_seats)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		code        VARCHAR(20) NOT NULL UNIQUE,
		user_id     BIGINT UNSIGNED NOT NULL,
		show_id     BIGINT UNSIGNED NOT NULL,
		seats       INT UNSIGNED NOT NULL,
		total_price DOUBLE NOT NULL,
		status      ENUM('CONFIRMED','CANCELLED') NOT NULL DEFAULT 'CONFIRMED',
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL,
		INDEX idx_bookings_user (user_id),
		INDEX idx_bookings_show (show_id),
		CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_booking_show FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
