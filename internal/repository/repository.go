package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidID    = errors.New("invalid identifier")
)

type RoomRepository interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
	SetName(ctx context.Context, id string, name string) error
}

type UserRepository interface {
	Get(ctx context.Context, uid string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Ensure(ctx context.Context, caller domain.Caller) error
	UpdateProfile(ctx context.Context, uid, displayName, profileURL string, at time.Time) error
	Rooms(ctx context.Context, uid string) (map[string]domain.RoomRole, error)
}

func RoomPath(roomID string) string {
	return store.Join("rooms", roomID)
}

func RoomNamePath(roomID string) string {
	return store.Join("rooms", roomID, "name")
}

func RoomMembersPath(roomID string) string {
	return store.Join("rooms", roomID, "members")
}

func UserPath(uid string) string {
	return store.Join("users", uid)
}

func UserRoomsPath(uid string) string {
	return store.Join("users", uid, "rooms")
}

// UserRoomPath is the personal index entry mirroring rooms/{roomID}/members/{uid}.
func UserRoomPath(uid, roomID string) string {
	return store.Join("users", uid, "rooms", roomID)
}

func PendingInvitesPath(uid string) string {
	return store.Join("users", uid, "pendingInvites")
}

// ValidID reports whether id can be used as a single path segment.
func ValidID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/.#$[]")
}
