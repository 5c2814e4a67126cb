package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
)

// Access is what a successful authorization hands to an operation.
type Access struct {
	Room   *domain.Room
	RoomID string
	Caller domain.Caller
}

// Gate answers, for every room scoped operation, whether there is a caller,
// whether the room exists and whether the caller holds a permitted role.
// It never writes and never caches.
type Gate struct {
	rooms repository.RoomRepository
}

func NewGate(rooms repository.RoomRepository) *Gate {
	return &Gate{rooms: rooms}
}

// Authorize loads the room fresh. With no roles any authenticated caller
// passes; otherwise the caller must be in the room with one of roles.
func (g *Gate) Authorize(ctx context.Context, roomID string, caller *domain.Caller, roles ...domain.RoomRole) (*Access, error) {
	if caller == nil || caller.UID == "" {
		return nil, unauthenticated()
	}
	if roomID == "" {
		return nil, badRequest("please provide a room id")
	}

	room, err := g.rooms.Get(ctx, roomID)
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return nil, badRequest("invalid room id")
	case errors.Is(err, repository.ErrRoomNotFound):
		return nil, notFound("room not found")
	case err != nil:
		return nil, fmt.Errorf("authorize room %s: %w", roomID, err)
	}

	if len(roles) > 0 && !room.HasRole(caller.UID, roles...) {
		return nil, forbidden("this endpoint requires one of the roles: %s", joinRoles(roles))
	}

	return &Access{
		Room:   room,
		RoomID: roomID,
		Caller: *caller,
	}, nil
}

func joinRoles(roles []domain.RoomRole) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ",")
}
