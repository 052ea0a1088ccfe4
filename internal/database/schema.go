package database

import (
	"context"
	"database/sql"
	"time"
)

// Schema statements are executed at startup and are idempotent. The tag
// column uses a binary collation so tag filtering stays case-sensitive while
// the rest of the schema keeps MySQL's case-insensitive default (which is
// what makes LIKE searches on title/content case-insensitive).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name          VARCHAR(100)    NOT NULL,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(100)    NOT NULL,
		created_at    DATETIME        NOT NULL,
		updated_at    DATETIME        NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notes (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id     BIGINT UNSIGNED NOT NULL,
		title       VARCHAR(255)    NOT NULL,
		content     MEDIUMTEXT      NOT NULL,
		summary     TEXT            NULL,
		is_pinned   TINYINT(1)      NOT NULL DEFAULT 0,
		is_shared   TINYINT(1)      NOT NULL DEFAULT 0,
		share_token CHAR(36)        NULL,
		created_at  DATETIME        NOT NULL,
		updated_at  DATETIME        NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_notes_share_token (share_token),
		KEY idx_notes_user (user_id),
		CONSTRAINT fk_notes_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS note_tags (
		note_id BIGINT UNSIGNED NOT NULL,
		tag     VARCHAR(64) COLLATE utf8mb4_bin NOT NULL,
		PRIMARY KEY (note_id, tag),
		KEY idx_note_tags_tag (tag),
		CONSTRAINT fk_note_tags_note FOREIGN KEY (note_id) REFERENCES notes (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the application tables when they do not exist yet.
func Migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
