package db

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// --- users ---

const createUser = `INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByEmail, email).Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByID = `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByID, id).Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// --- rooms ---

const createRoom = `INSERT INTO rooms (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, created_at, updated_at`

type CreateRoomParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	var r Room
	err := q.db.QueryRow(ctx, createRoom, arg.ID, arg.Name, arg.OwnerID).
		Scan(&r.ID, &r.Name, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getRoom = `SELECT id, name, owner_id, created_at, updated_at FROM rooms WHERE id = $1`

func (q *Queries) GetRoom(ctx context.Context, id string) (Room, error) {
	var r Room
	err := q.db.QueryRow(ctx, getRoom, id).Scan(&r.ID, &r.Name, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const listRoomsForUser = `SELECT r.id, r.name, r.owner_id, r.created_at, r.updated_at
FROM rooms r
JOIN room_members m ON m.room_id = r.id
WHERE m.user_id = $1
ORDER BY r.updated_at DESC`

func (q *Queries) ListRoomsForUser(ctx context.Context, userID string) ([]Room, error) {
	rows, err := q.db.Query(ctx, listRoomsForUser, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Room])
}

const deleteRoom = `DELETE FROM rooms WHERE id = $1`

func (q *Queries) DeleteRoom(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteRoom, id)
	return err
}

const touchRoom = `UPDATE rooms SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchRoom(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, touchRoom, id)
	return err
}

// --- members ---

const addRoomMember = `INSERT INTO room_members (room_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (room_id, user_id) DO NOTHING`

type AddRoomMemberParams struct {
	RoomID string
	UserID string
	Role   RoomRole
}

func (q *Queries) AddRoomMember(ctx context.Context, arg AddRoomMemberParams) error {
	_, err := q.db.Exec(ctx, addRoomMember, arg.RoomID, arg.UserID, string(arg.Role))
	return err
}

const getRoomMember = `SELECT room_id, user_id, role, created_at FROM room_members
WHERE room_id = $1 AND user_id = $2`

type GetRoomMemberParams struct {
	RoomID string
	UserID string
}

func (q *Queries) GetRoomMember(ctx context.Context, arg GetRoomMemberParams) (RoomMember, error) {
	var m RoomMember
	err := q.db.QueryRow(ctx, getRoomMember, arg.RoomID, arg.UserID).
		Scan(&m.RoomID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

const listRoomMembers = `SELECT m.user_id, m.role, u.display_name, u.email
FROM room_members m
JOIN users u ON u.id = m.user_id
WHERE m.room_id = $1
ORDER BY m.created_at`

func (q *Queries) ListRoomMembers(ctx context.Context, roomID string) ([]RoomMemberRow, error) {
	rows, err := q.db.Query(ctx, listRoomMembers, roomID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[RoomMemberRow])
}

const removeRoomMember = `DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`

type RemoveRoomMemberParams struct {
	RoomID string
	UserID string
}

func (q *Queries) RemoveRoomMember(ctx context.Context, arg RemoveRoomMemberParams) error {
	_, err := q.db.Exec(ctx, removeRoomMember, arg.RoomID, arg.UserID)
	return err
}

// --- snapshots ---

const createSnapshot = `INSERT INTO board_snapshots (id, room_id, version, board)
VALUES ($1, $2, (SELECT COALESCE(MAX(version), 0) + 1 FROM board_snapshots WHERE room_id = $2), $3)
RETURNING id, room_id, version, board, created_at`

type CreateSnapshotParams struct {
	ID     string
	RoomID string
	Board  json.RawMessage
}

// CreateSnapshot stores a board as the room's next version.
func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (BoardSnapshot, error) {
	var s BoardSnapshot
	err := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.RoomID, arg.Board).
		Scan(&s.ID, &s.RoomID, &s.Version, &s.Board, &s.CreatedAt)
	return s, err
}

const getLatestSnapshot = `SELECT id, room_id, version, board, created_at FROM board_snapshots
WHERE room_id = $1
ORDER BY version DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, roomID string) (BoardSnapshot, error) {
	var s BoardSnapshot
	err := q.db.QueryRow(ctx, getLatestSnapshot, roomID).
		Scan(&s.ID, &s.RoomID, &s.Version, &s.Board, &s.CreatedAt)
	return s, err
}

const pruneSnapshots = `DELETE FROM board_snapshots
WHERE room_id = $1 AND version <= (
    SELECT COALESCE(MAX(version), 0) - $2 FROM board_snapshots WHERE room_id = $1
)`

// PruneSnapshots deletes all but the newest keep versions of a room.
func (q *Queries) PruneSnapshots(ctx context.Context, roomID string, keep int32) (int64, error) {
	tag, err := q.db.Exec(ctx, pruneSnapshots, roomID, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
