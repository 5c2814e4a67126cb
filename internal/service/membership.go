package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
)

// MembershipChanges maps a uid to its new member entry. A nil entry removes
// the uid from the room.
type MembershipChanges map[string]*domain.RoomMember

// PathWrite is an extra write submitted in the same batch as a membership
// change, such as a user's pending invites.
type PathWrite struct {
	Path  string
	Value any
}

// MembershipEngine writes a room aggregate together with the personal room
// index of every touched user. It does not judge whether a transition is
// legal; callers do.
type MembershipEngine struct {
	store store.Store
	users repository.UserRepository
}

func NewMembershipEngine(s store.Store, users repository.UserRepository) *MembershipEngine {
	return &MembershipEngine{store: s, users: users}
}

// Apply mutates room in place and persists it with the matching
// users/{uid}/rooms/{roomID} entries in a single batch.
func (e *MembershipEngine) Apply(ctx context.Context, room *domain.Room, changes MembershipChanges, also ...PathWrite) error {
	if room == nil || !repository.ValidID(room.ID) {
		return fmt.Errorf("apply membership: %w", repository.ErrInvalidID)
	}
	room.Normalize()

	writes := make(map[string]any, len(changes)+len(also)+1)
	for uid, member := range changes {
		if !repository.ValidID(uid) {
			return fmt.Errorf("apply membership for %q: %w", uid, repository.ErrInvalidID)
		}
		if member == nil {
			delete(room.Members, uid)
			writes[repository.UserRoomPath(uid, room.ID)] = nil
			continue
		}

		entry := *member
		entry.UID = uid
		room.Members[uid] = entry
		writes[repository.UserRoomPath(uid, room.ID)] = string(entry.Role)
	}
	writes[repository.RoomPath(room.ID)] = room

	for _, w := range also {
		if _, dup := writes[w.Path]; dup {
			return fmt.Errorf("apply membership: duplicate write to %s", w.Path)
		}
		writes[w.Path] = w.Value
	}

	if err := e.store.Update(ctx, writes); err != nil {
		return fmt.Errorf("apply membership to room %s: %w", room.ID, err)
	}
	return nil
}

// DeleteRoom removes the room, every member's index entry and, for invited
// users, the room from their pending invites. All in one batch.
func (e *MembershipEngine) DeleteRoom(ctx context.Context, room *domain.Room) error {
	if room == nil || !repository.ValidID(room.ID) {
		return fmt.Errorf("delete room: %w", repository.ErrInvalidID)
	}

	writes := map[string]any{
		repository.RoomPath(room.ID): nil,
	}
	for uid, member := range room.Members {
		if !repository.ValidID(uid) {
			continue
		}
		writes[repository.UserRoomPath(uid, room.ID)] = nil

		if member.Role != domain.RoleInvited {
			continue
		}
		user, err := e.users.Get(ctx, uid)
		if errors.Is(err, repository.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("delete room %s: %w", room.ID, err)
		}
		if user.HasPendingInvite(room.ID) {
			writes[repository.PendingInvitesPath(uid)] = user.WithoutInvite(room.ID)
		}
	}

	if err := e.store.Update(ctx, writes); err != nil {
		return fmt.Errorf("delete room %s: %w", room.ID, err)
	}
	return nil
}
