package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/typeid"
)

const boardTimeout = 10 * time.Second

// Boards persists room boards as versioned snapshots. Its Load and Save
// methods match the collaboration hub's loader and saver.
type Boards struct {
	queries *Queries
	// Keep bounds the stored versions per room; zero keeps everything.
	Keep int32
}

func NewBoards(queries *Queries, keep int32) *Boards {
	return &Boards{queries: queries, Keep: keep}
}

// Load returns the newest board of a room, or nil if none was saved.
func (b *Boards) Load(roomID string) (*document.Board, error) {
	ctx, cancel := context.WithTimeout(context.Background(), boardTimeout)
	defer cancel()

	snap, err := b.queries.GetLatestSnapshot(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var board document.Board
	if err := json.Unmarshal(snap.Board, &board); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	board.ID = roomID
	return &board, nil
}

// Save stores board as the room's next version.
func (b *Boards) Save(roomID string, board *document.Board) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), boardTimeout)
	defer cancel()

	snap, err := b.queries.CreateSnapshot(ctx, CreateSnapshotParams{
		ID:     typeid.NewSnapshotID(),
		RoomID: roomID,
		Board:  data,
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := b.queries.TouchRoom(ctx, roomID); err != nil {
		return fmt.Errorf("touch room: %w", err)
	}

	if b.Keep > 0 {
		n, err := b.queries.PruneSnapshots(ctx, roomID, b.Keep)
		if err != nil {
			slog.Warn("prune snapshots", "room", roomID, "error", err)
		} else if n > 0 {
			slog.Debug("snapshots pruned", "room", roomID, "deleted", n)
		}
	}

	slog.Debug("snapshot created", "room", roomID, "version", snap.Version)
	return nil
}
