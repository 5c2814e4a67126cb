package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
)

var testClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *store.MemoryStore
	rooms   *repository.StoreRoomRepository
	users   *repository.StoreUserRepository
	svc     *RoomService
	queries *RoomQueryService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })

	rooms := repository.NewStoreRoomRepository(s)
	users := repository.NewStoreUserRepository(s)
	svc := NewRoomService(s, rooms, users, discardLogger())
	svc.audit = NewAuditLog(rooms, func() time.Time { return testClock })

	return &fixture{
		store:   s,
		rooms:   rooms,
		users:   users,
		svc:     svc,
		queries: NewRoomQueryService(rooms, users, discardLogger()),
	}
}

func caller(uid string) *domain.Caller {
	return &domain.Caller{UID: uid, Email: uid + "@example.com", Role: domain.DefaultUserRole}
}

func (f *fixture) seedUsers(t *testing.T, uids ...string) {
	t.Helper()
	for _, uid := range uids {
		require.NoError(t, f.users.Ensure(context.Background(), *caller(uid)))
	}
}

func (f *fixture) createRoom(t *testing.T, owner, name string) string {
	t.Helper()
	room, err := f.svc.CreateRoom(context.Background(), caller(owner), name, nil)
	require.NoError(t, err)
	return room.ID
}

func (f *fixture) room(t *testing.T, roomID string) *domain.Room {
	t.Helper()
	room, err := f.rooms.Get(context.Background(), roomID)
	require.NoError(t, err)
	return room
}

func (f *fixture) user(t *testing.T, uid string) *domain.User {
	t.Helper()
	user, err := f.users.Get(context.Background(), uid)
	require.NoError(t, err)
	return user
}

func (f *fixture) roomGone(t *testing.T, roomID string) {
	t.Helper()
	_, err := f.rooms.Get(context.Background(), roomID)
	require.ErrorIs(t, err, repository.ErrRoomNotFound)
}

// checkInvariants asserts that the room has an owner and that its members
// and every user's room index agree.
func (f *fixture) checkInvariants(t *testing.T, roomID string) {
	t.Helper()
	ctx := context.Background()

	room, err := f.rooms.Get(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		f.checkNoIndexEntries(t, roomID)
		return
	}
	require.NoError(t, err)

	assert.NotEmpty(t, room.Owners(), "room %s has no owner", roomID)

	for uid, member := range room.Members {
		index, err := f.users.Rooms(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, member.Role, index[roomID], "index of %s disagrees with room %s", uid, roomID)
	}
	f.checkIndexEntries(t, room)
}

func (f *fixture) allUsers(t *testing.T) map[string]domain.User {
	t.Helper()
	var users map[string]domain.User
	_, err := store.GetInto(context.Background(), f.store, "users", &users)
	require.NoError(t, err)
	return users
}

func (f *fixture) checkIndexEntries(t *testing.T, room *domain.Room) {
	t.Helper()
	for uid, user := range f.allUsers(t) {
		role, ok := user.Rooms[room.ID]
		if !ok {
			continue
		}
		member, present := room.Member(uid)
		require.True(t, present, "%s indexes room %s without being a member", uid, room.ID)
		assert.Equal(t, member.Role, role)
	}
}

func (f *fixture) checkNoIndexEntries(t *testing.T, roomID string) {
	t.Helper()
	for uid, user := range f.allUsers(t) {
		_, ok := user.Rooms[roomID]
		assert.False(t, ok, "%s still indexes deleted room %s", uid, roomID)
		assert.NotContains(t, user.PendingInvites, roomID)
	}
}

func actions(room *domain.Room) []string {
	out := make([]string, 0, len(room.Logs))
	for _, l := range room.Logs {
		out = append(out, l.Action)
	}
	return out
}

// failingSaves lets the gate read rooms but refuses whole room saves, which
// is how audit appends are persisted.
type failingSaves struct {
	repository.RoomRepository
}

func (failingSaves) Save(context.Context, *domain.Room) error {
	return errors.New("store unavailable")
}
