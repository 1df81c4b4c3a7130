package models

import (
	"database/sql"
	"time"
)

// User is the USERS table row.
type User struct {
	ID          string         `db:"ID"`
	Email       string         `db:"EMAIL"`
	UserName    string         `db:"USER_NAME"`
	Appellation sql.NullString `db:"APPELLATION"`
	Password    string         `db:"PASSWORD"`
	Role        string         `db:"USER_ROLE"`
	Verified    bool           `db:"VERIFIED"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
}
