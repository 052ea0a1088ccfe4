package model

import "time"

// User represents a row in the `users` table. Passwords are stored only as
// bcrypt hashes; handlers define their own response types so the hash never
// leaves the repository layer by accident.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name, public display name
	Email        string    // users.email, unique, stored lowercase
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
