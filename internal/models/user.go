package models

import "time"

// User is a row from the user directory. The directory is owned by the
// application; this subsystem only reads it to label per-user stats.
type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
