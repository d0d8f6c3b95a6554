package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/typeid"
)

// testQueries connects to TEST_DATABASE_URL inside a transaction that is
// rolled back when the test ends.
func testQueries(t *testing.T) *Queries {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return New(pool).WithTx(tx)
}

func seedRoom(t *testing.T, q *Queries) (User, Room) {
	t.Helper()
	ctx := context.Background()
	u, err := q.CreateUser(ctx, CreateUserParams{
		ID: typeid.NewUserID(), Email: typeid.NewUserID() + "@example.com", Password: "x", DisplayName: "Ada",
	})
	require.NoError(t, err)
	r, err := q.CreateRoom(ctx, CreateRoomParams{ID: typeid.NewRoomID(), Name: "Sketch", OwnerID: u.ID})
	require.NoError(t, err)
	require.NoError(t, q.AddRoomMember(ctx, AddRoomMemberParams{RoomID: r.ID, UserID: u.ID, Role: RoomRoleOwner}))
	return u, r
}

func TestRoomsAndMembers(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()
	u, r := seedRoom(t, q)

	rooms, err := q.ListRoomsForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Sketch", rooms[0].Name)

	members, err := q.ListRoomMembers(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, RoomRoleOwner, members[0].Role)
	assert.Equal(t, "Ada", members[0].DisplayName)

	require.NoError(t, q.RemoveRoomMember(ctx, RemoveRoomMemberParams{RoomID: r.ID, UserID: u.ID}))
	_, err = q.GetRoomMember(ctx, GetRoomMemberParams{RoomID: r.ID, UserID: u.ID})
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}

func TestBoardsVersionAndPrune(t *testing.T) {
	q := testQueries(t)
	_, r := seedRoom(t, q)
	boards := NewBoards(q, 2)

	missing, err := boards.Load(r.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	for i := range 3 {
		require.NoError(t, boards.Save(r.ID, &document.Board{Elements: []document.Element{
			{ID: "a", Type: document.TypeRect, X: float64(i), Width: 1, Height: 1},
		}}))
	}

	board, err := boards.Load(r.ID)
	require.NoError(t, err)
	require.Len(t, board.Elements, 1)
	assert.Equal(t, 2.0, board.Elements[0].X)
	assert.Equal(t, r.ID, board.ID)

	snap, err := q.GetLatestSnapshot(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), snap.Version)

	n, err := q.PruneSnapshots(context.Background(), r.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
