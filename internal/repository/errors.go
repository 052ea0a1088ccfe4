// Package repository contains the data access layer. Repositories speak
// plain database/sql so the MySQL driver used in production and the sqlite
// driver used in tests run the same queries.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// ErrNoteNotFound is returned when a note id or share token matches nothing.
// The service layer also maps ownership mismatches to this error so callers
// cannot distinguish "missing" from "not yours".
var ErrNoteNotFound = errors.New("note not found")

// ErrUserNotFound is returned when a user id or email matches nothing.
var ErrUserNotFound = errors.New("user not found")
