package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

const createAttempts = 3

// InviteTarget names the user to invite, by uid or by email.
type InviteTarget struct {
	UID   string
	Email string
}

// RoomService runs the membership workflows of a room: every operation
// passes the gate, checks its own precondition, writes through the
// membership engine and records an audit entry.
type RoomService struct {
	rooms   repository.RoomRepository
	users   repository.UserRepository
	gate    *Gate
	members *MembershipEngine
	audit   *AuditLog
	log     *slog.Logger
	newID   func() string
}

func NewRoomService(s store.Store, rooms repository.RoomRepository, users repository.UserRepository, log *slog.Logger) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	return &RoomService{
		rooms:   rooms,
		users:   users,
		gate:    NewGate(rooms),
		members: NewMembershipEngine(s, users),
		audit:   NewAuditLog(rooms, nil),
		log:     log,
		newID:   domain.NewRoomID,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, caller *domain.Caller, name string, allowURLJoining *bool) (*domain.Room, error) {
	const op = "service.room.create"

	if caller == nil || caller.UID == "" {
		return nil, unauthenticated()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, badRequest("missing name")
	}
	allow := true
	if allowURLJoining != nil {
		allow = *allowURLJoining
	}

	log := s.log.With(slog.String("op", op), slog.String("uid", caller.UID))

	roomID, err := s.freeRoomID(ctx)
	if err != nil {
		log.Error("failed to allocate room id", sl.Err(err))
		return nil, err
	}

	room := domain.NewRoom(roomID, name, caller.UID, allow)
	room.Logs = append(room.Logs, s.audit.Entry(caller.UID, "created the room", ""))

	owner := room.Members[caller.UID]
	if err := s.members.Apply(ctx, room, MembershipChanges{caller.UID: &owner}); err != nil {
		log.Error("failed to create room", sl.Err(err))
		return nil, err
	}

	log.Info("room created", slog.String("room_id", room.ID))
	return room, nil
}

func (s *RoomService) freeRoomID(ctx context.Context) (string, error) {
	for i := 0; i < createAttempts; i++ {
		id := s.newID()
		_, err := s.rooms.Get(ctx, id)
		if errors.Is(err, repository.ErrRoomNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free room id after %d attempts", createAttempts)
}

// Invite adds the target as invited and appends the room to their pending
// invites. It does not write an audit entry; the invitee's answer does.
func (s *RoomService) Invite(ctx context.Context, roomID string, caller *domain.Caller, target InviteTarget) (string, error) {
	const op = "service.room.invite"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleOwner)
	if err != nil {
		return "", err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID))

	user, err := s.resolveInvitee(ctx, target)
	if err != nil {
		return "", err
	}
	if _, ok := access.Room.Member(user.UID); ok {
		return "", forbidden("this user is already invited or a member")
	}

	pending := append([]string(nil), user.PendingInvites...)
	if !user.HasPendingInvite(roomID) {
		pending = append(pending, roomID)
	}

	err = s.members.Apply(ctx, access.Room,
		MembershipChanges{user.UID: {Role: domain.RoleInvited}},
		PathWrite{Path: repository.PendingInvitesPath(user.UID), Value: pending},
	)
	if err != nil {
		log.Error("failed to invite user", sl.Err(err))
		return "", err
	}

	log.Info("user invited", slog.String("invitee", user.UID), slog.String("by", caller.UID))
	return user.UID, nil
}

// resolveInvitee prefers the uid. An email lookup takes the first
// case-insensitive match.
func (s *RoomService) resolveInvitee(ctx context.Context, target InviteTarget) (*domain.User, error) {
	uid := strings.TrimSpace(target.UID)
	email := strings.TrimSpace(target.Email)

	switch {
	case uid != "":
		if !repository.ValidID(uid) {
			return nil, badRequest("invalid user id")
		}
		user, err := s.users.Get(ctx, uid)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user not found")
		}
		return user, err
	case email != "":
		user, err := s.users.FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, badRequest("no user with this email")
		}
		return user, err
	default:
		return nil, badRequest("missing userToAdd")
	}
}

func (s *RoomService) AcceptInvite(ctx context.Context, roomID string, caller *domain.Caller) error {
	const op = "service.room.accept"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleInvited)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID), slog.String("uid", caller.UID))

	clear, err := s.clearInvite(ctx, caller.UID, roomID)
	if err != nil {
		return err
	}

	err = s.members.Apply(ctx, access.Room, MembershipChanges{caller.UID: {Role: domain.RoleMember}}, clear...)
	if err != nil {
		log.Error("failed to accept invite", sl.Err(err))
		return err
	}

	s.record(ctx, access.Room, caller.UID, "accepted the invite and joined the room", "")
	log.Info("invite accepted")
	return nil
}

func (s *RoomService) DeclineInvite(ctx context.Context, roomID string, caller *domain.Caller) error {
	const op = "service.room.decline"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleInvited)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID), slog.String("uid", caller.UID))

	clear, err := s.clearInvite(ctx, caller.UID, roomID)
	if err != nil {
		return err
	}

	if err := s.members.Apply(ctx, access.Room, MembershipChanges{caller.UID: nil}, clear...); err != nil {
		log.Error("failed to decline invite", sl.Err(err))
		return err
	}

	s.record(ctx, access.Room, caller.UID, "declined the invite", "")
	log.Info("invite declined")
	return nil
}

// JoinByURL lets any authenticated caller become a member of a room that
// allows it. A pending invite is resolved on the way.
func (s *RoomService) JoinByURL(ctx context.Context, roomID string, caller *domain.Caller) error {
	const op = "service.room.join"

	access, err := s.gate.Authorize(ctx, roomID, caller)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID), slog.String("uid", caller.UID))

	if !access.Room.AllowURLJoining {
		return forbidden("this room does not allow URL joining")
	}

	var clear []PathWrite
	if member, ok := access.Room.Member(caller.UID); ok {
		if member.Role != domain.RoleInvited {
			return forbidden("you are already a member")
		}
		clear, err = s.clearInvite(ctx, caller.UID, roomID)
		if err != nil {
			return err
		}
	}

	if err := s.members.Apply(ctx, access.Room, MembershipChanges{caller.UID: {Role: domain.RoleMember}}, clear...); err != nil {
		log.Error("failed to join room", sl.Err(err))
		return err
	}

	s.record(ctx, access.Room, caller.UID, "joined the room via link", "")
	log.Info("joined by url")
	return nil
}

// Kick removes target from the room. The target's pending invites are left
// as they are.
func (s *RoomService) Kick(ctx context.Context, roomID string, caller *domain.Caller, targetUID string) error {
	const op = "service.room.kick"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleOwner)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID))

	targetUID = strings.TrimSpace(targetUID)
	if targetUID == "" {
		return badRequest("missing userToKick")
	}
	if targetUID == caller.UID {
		return forbidden("you can't kick yourself")
	}
	if _, ok := access.Room.Member(targetUID); !ok {
		return forbidden("this user is not a member of the room")
	}

	if err := s.members.Apply(ctx, access.Room, MembershipChanges{targetUID: nil}); err != nil {
		log.Error("failed to kick user", sl.Err(err))
		return err
	}

	s.record(ctx, access.Room, caller.UID, "kicked user", targetUID)
	log.Info("user kicked", slog.String("target", targetUID), slog.String("by", caller.UID))
	return nil
}

// Promote makes a member an owner. Invited users have to accept first.
func (s *RoomService) Promote(ctx context.Context, roomID string, caller *domain.Caller, targetUID string) error {
	const op = "service.room.promote"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleOwner)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID))

	targetUID = strings.TrimSpace(targetUID)
	if targetUID == "" {
		return badRequest("missing userToPromote")
	}
	if targetUID == caller.UID {
		return forbidden("you can't promote yourself")
	}
	member, ok := access.Room.Member(targetUID)
	if !ok {
		return forbidden("the specified user is not a member of the room")
	}
	switch member.Role {
	case domain.RoleOwner:
		return forbidden("the specified user is already an owner")
	case domain.RoleInvited:
		return forbidden("the specified user has not accepted the invite yet")
	}

	member.Role = domain.RoleOwner
	if err := s.members.Apply(ctx, access.Room, MembershipChanges{targetUID: &member}); err != nil {
		log.Error("failed to promote user", sl.Err(err))
		return err
	}

	s.record(ctx, access.Room, caller.UID, "promoted user", targetUID)
	log.Info("user promoted", slog.String("target", targetUID), slog.String("by", caller.UID))
	return nil
}

// Leave removes the caller. When the caller is the last owner the whole
// room is deleted and deleted is true.
func (s *RoomService) Leave(ctx context.Context, roomID string, caller *domain.Caller) (deleted bool, err error) {
	const op = "service.room.leave"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleMember, domain.RoleOwner)
	if err != nil {
		return false, err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID), slog.String("uid", caller.UID))

	owners := access.Room.Owners()
	if access.Room.HasRole(caller.UID, domain.RoleOwner) && len(owners) == 1 {
		if err := s.members.DeleteRoom(ctx, access.Room); err != nil {
			log.Error("failed to delete room on last owner leave", sl.Err(err))
			return false, err
		}
		log.Info("last owner left, room deleted")
		return true, nil
	}

	if err := s.members.Apply(ctx, access.Room, MembershipChanges{caller.UID: nil}); err != nil {
		log.Error("failed to leave room", sl.Err(err))
		return false, err
	}

	s.record(ctx, access.Room, caller.UID, "left the room", "")
	log.Info("left room")
	return false, nil
}

func (s *RoomService) Rename(ctx context.Context, roomID string, caller *domain.Caller, newName string) error {
	const op = "service.room.rename"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleOwner)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID))

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return badRequest("missing newName")
	}

	if err := s.rooms.SetName(ctx, roomID, newName); err != nil {
		log.Error("failed to rename room", sl.Err(err))
		return err
	}
	access.Room.Name = newName

	s.record(ctx, access.Room, caller.UID, fmt.Sprintf("renamed the room to %q", newName), "")
	log.Info("room renamed")
	return nil
}

func (s *RoomService) UpdateArrival(ctx context.Context, roomID string, caller *domain.Caller, arrived bool) error {
	const op = "service.room.arrival"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleMember, domain.RoleOwner)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID), slog.String("uid", caller.UID))

	member, _ := access.Room.Member(caller.UID)
	member.Arrived = arrived
	if err := s.members.Apply(ctx, access.Room, MembershipChanges{caller.UID: &member}); err != nil {
		log.Error("failed to update arrival", sl.Err(err))
		return err
	}

	status := "not arrived"
	if arrived {
		status = "arrived"
	}
	s.record(ctx, access.Room, caller.UID, "marked themselves as "+status, "")
	return nil
}

// DeleteRoom removes the room on an owner's request.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string, caller *domain.Caller) error {
	const op = "service.room.delete"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleOwner)
	if err != nil {
		return err
	}
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID))

	if err := s.members.DeleteRoom(ctx, access.Room); err != nil {
		log.Error("failed to delete room", sl.Err(err))
		return err
	}

	log.Info("room deleted", slog.String("by", caller.UID))
	return nil
}

// clearInvite reads the user's pending invites fresh and returns the write
// that drops roomID from them, if there is anything to drop.
func (s *RoomService) clearInvite(ctx context.Context, uid, roomID string) ([]PathWrite, error) {
	user, err := s.users.Get(ctx, uid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.HasPendingInvite(roomID) {
		return nil, nil
	}
	return []PathWrite{{Path: repository.PendingInvitesPath(uid), Value: user.WithoutInvite(roomID)}}, nil
}

// record appends to the audit log. A failure never undoes the change it
// documents; it is only logged.
func (s *RoomService) record(ctx context.Context, room *domain.Room, performerID, action, subjectID string) {
	if err := s.audit.Append(ctx, room, performerID, action, subjectID); err != nil {
		s.log.Warn("failed to append room log",
			slog.String("room_id", room.ID),
			slog.String("action", action),
			sl.Err(err),
		)
	}
}
