// Package room manages boards as rooms: who owns them, who may join them
// and their latest saved board.
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/canvas/internal/db"
	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/typeid"
)

var (
	ErrNotFound     = errors.New("room not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNotMember    = errors.New("not a room member")
	ErrUserNotFound = errors.New("user not found")
	ErrRemoveOwner  = errors.New("cannot remove room owner")
)

// Store is the slice of db.Queries the service needs.
type Store interface {
	CreateRoom(ctx context.Context, arg db.CreateRoomParams) (db.Room, error)
	GetRoom(ctx context.Context, id string) (db.Room, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]db.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	AddRoomMember(ctx context.Context, arg db.AddRoomMemberParams) error
	GetRoomMember(ctx context.Context, arg db.GetRoomMemberParams) (db.RoomMember, error)
	ListRoomMembers(ctx context.Context, roomID string) ([]db.RoomMemberRow, error)
	RemoveRoomMember(ctx context.Context, arg db.RemoveRoomMemberParams) error
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	CreateSnapshot(ctx context.Context, arg db.CreateSnapshotParams) (db.BoardSnapshot, error)
	GetLatestSnapshot(ctx context.Context, roomID string) (db.BoardSnapshot, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type Room struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Room, error) {
	roomID := typeid.NewRoomID()

	dbRoom, err := s.store.CreateRoom(ctx, db.CreateRoomParams{
		ID:      roomID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	// Add owner as member
	err = s.store.AddRoomMember(ctx, db.AddRoomMemberParams{
		RoomID: roomID,
		UserID: ownerID,
		Role:   db.RoomRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	// Seed an empty board so the first join has something to sync
	boardJSON, err := json.Marshal(document.Board{ID: roomID, Name: name, Elements: []document.Element{}})
	if err != nil {
		return nil, fmt.Errorf("marshal empty board: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:     typeid.NewSnapshotID(),
		RoomID: roomID,
		Board:  boardJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toRoom(dbRoom), nil
}

func (s *Service) Get(ctx context.Context, roomID, userID string) (*Room, error) {
	if err := s.CheckMembership(ctx, roomID, userID); err != nil {
		return nil, err
	}

	dbRoom, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return toRoom(dbRoom), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Room, error) {
	dbRooms, err := s.store.ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	rooms := make([]Room, len(dbRooms))
	for i, r := range dbRooms {
		rooms[i] = *toRoom(r)
	}
	return rooms, nil
}

func (s *Service) Delete(ctx context.Context, roomID, userID string) error {
	if _, err := s.ownedRoom(ctx, roomID, userID); err != nil {
		return err
	}
	return s.store.DeleteRoom(ctx, roomID)
}

func (s *Service) InviteByEmail(ctx context.Context, roomID, ownerID, inviteeEmail string) error {
	if _, err := s.ownedRoom(ctx, roomID, ownerID); err != nil {
		return err
	}

	invitee, err := s.store.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.store.AddRoomMember(ctx, db.AddRoomMemberParams{
		RoomID: roomID,
		UserID: invitee.ID,
		Role:   db.RoomRoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, roomID, userID string) ([]Member, error) {
	if err := s.CheckMembership(ctx, roomID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, roomID, ownerID, targetUserID string) error {
	if _, err := s.ownedRoom(ctx, roomID, ownerID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return ErrRemoveOwner
	}

	return s.store.RemoveRoomMember(ctx, db.RemoveRoomMemberParams{
		RoomID: roomID,
		UserID: targetUserID,
	})
}

// GetLatestBoard returns the newest saved board of the room as raw JSON.
func (s *Service) GetLatestBoard(ctx context.Context, roomID, userID string) (json.RawMessage, error) {
	if err := s.CheckMembership(ctx, roomID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Board, nil
}

// CheckMembership returns ErrNotMember unless userID belongs to the room,
// or ErrNotFound for an id that cannot name a room.
func (s *Service) CheckMembership(ctx context.Context, roomID, userID string) error {
	if err := checkRoomID(roomID); err != nil {
		return err
	}
	_, err := s.store.GetRoomMember(ctx, db.GetRoomMemberParams{
		RoomID: roomID,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

// checkRoomID rejects ids that cannot name a room, so malformed path
// input never reaches the database.
func checkRoomID(roomID string) error {
	if err := typeid.Validate(roomID, typeid.PrefixRoom); err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return nil
}

func (s *Service) getRoom(ctx context.Context, roomID string) (db.Room, error) {
	if err := checkRoomID(roomID); err != nil {
		return db.Room{}, err
	}
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Room{}, ErrNotFound
		}
		return db.Room{}, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *Service) ownedRoom(ctx context.Context, roomID, userID string) (db.Room, error) {
	r, err := s.getRoom(ctx, roomID)
	if err != nil {
		return db.Room{}, err
	}
	if r.OwnerID != userID {
		return db.Room{}, ErrForbidden
	}
	return r, nil
}

func toRoom(r db.Room) *Room {
	return &Room{
		ID:        r.ID,
		Name:      r.Name,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: r.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
