package db

import (
	"encoding/json"
	"time"
)

type RoomRole string

const (
	RoomRoleOwner  RoomRole = "owner"
	RoomRoleEditor RoomRole = "editor"
)

type User struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Password    string    `db:"password"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type RoomMember struct {
	RoomID    string    `db:"room_id"`
	UserID    string    `db:"user_id"`
	Role      RoomRole  `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// RoomMemberRow is a member joined with the user's profile.
type RoomMemberRow struct {
	UserID      string   `db:"user_id"`
	Role        RoomRole `db:"role"`
	DisplayName string   `db:"display_name"`
	Email       string   `db:"email"`
}

type BoardSnapshot struct {
	ID        string          `db:"id"`
	RoomID    string          `db:"room_id"`
	Version   int32           `db:"version"`
	Board     json.RawMessage `db:"board"`
	CreatedAt time.Time       `db:"created_at"`
}
