package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

const fetchLimit = 8

type MemberProfile struct {
	UID         string          `json:"uid"`
	Role        domain.RoomRole `json:"role"`
	Arrived     bool            `json:"arrived"`
	Email       string          `json:"email,omitempty"`
	DisplayName string          `json:"displayName,omitempty"`
	ProfileURL  string          `json:"profileURL,omitempty"`
}

// RoomView is what a caller may see of one room. Invited callers only get
// the name and the owners.
type RoomView struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Role            domain.RoomRole       `json:"role"`
	AllowURLJoining bool                  `json:"allowUrlJoining"`
	Owners          []MemberProfile       `json:"owners"`
	Members         []MemberProfile       `json:"members,omitempty"`
	Logs            []domain.RoomLogEntry `json:"logs,omitempty"`
}

type RoomSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Role            domain.RoomRole `json:"role"`
	AllowURLJoining bool            `json:"allowUrlJoining"`
	MemberCount     int             `json:"memberCount"`
}

type Invite struct {
	RoomID   string         `json:"roomId"`
	RoomName string         `json:"roomName"`
	Owner    *MemberProfile `json:"owner,omitempty"`
}

type JoinInfo struct {
	RoomID          string          `json:"roomId"`
	Name            string          `json:"name"`
	AllowURLJoining bool            `json:"allowUrlJoining"`
	Role            domain.RoomRole `json:"role,omitempty"`
	CanJoin         bool            `json:"canJoin"`
}

// RoomQueryService serves read only views of rooms. Nothing here writes.
type RoomQueryService struct {
	rooms repository.RoomRepository
	users repository.UserRepository
	gate  *Gate
	log   *slog.Logger
}

func NewRoomQueryService(rooms repository.RoomRepository, users repository.UserRepository, log *slog.Logger) *RoomQueryService {
	if log == nil {
		log = slog.Default()
	}
	return &RoomQueryService{
		rooms: rooms,
		users: users,
		gate:  NewGate(rooms),
		log:   log,
	}
}

func (s *RoomQueryService) RoomView(ctx context.Context, roomID string, caller *domain.Caller) (*RoomView, error) {
	const op = "service.query.room_view"

	access, err := s.gate.Authorize(ctx, roomID, caller, domain.RoleInvited, domain.RoleMember, domain.RoleOwner)
	if err != nil {
		return nil, err
	}
	room := access.Room
	self, _ := room.Member(caller.UID)

	view := &RoomView{
		ID:              roomID,
		Name:            room.Name,
		Role:            self.Role,
		AllowURLJoining: room.AllowURLJoining,
	}

	members := make([]domain.RoomMember, 0, len(room.Members))
	for _, m := range room.Members {
		if self.Role == domain.RoleInvited && m.Role != domain.RoleOwner {
			continue
		}
		members = append(members, m)
	}

	profiles, err := s.profiles(ctx, members)
	if err != nil {
		s.log.Error("failed to load member profiles", slog.String("op", op), slog.String("room_id", roomID), sl.Err(err))
		return nil, err
	}
	sortProfiles(profiles)

	for _, p := range profiles {
		if p.Role == domain.RoleOwner {
			view.Owners = append(view.Owners, p)
		}
	}
	if self.Role == domain.RoleInvited {
		return view, nil
	}

	view.Members = profiles
	view.Logs = make([]domain.RoomLogEntry, 0, len(room.Logs))
	for i := len(room.Logs) - 1; i >= 0; i-- {
		view.Logs = append(view.Logs, room.Logs[i])
	}
	return view, nil
}

// ListRooms joins the caller's personal room index with the rooms it points
// to. Rooms that no longer exist are skipped.
func (s *RoomQueryService) ListRooms(ctx context.Context, caller *domain.Caller) ([]RoomSummary, error) {
	if caller == nil || caller.UID == "" {
		return nil, unauthenticated()
	}
	return s.listRooms(ctx, caller.UID)
}

func (s *RoomQueryService) listRooms(ctx context.Context, uid string) ([]RoomSummary, error) {
	index, err := s.users.Rooms(ctx, uid)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	found := make([]*RoomSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			room, err := s.rooms.Get(gctx, id)
			if errors.Is(err, repository.ErrRoomNotFound) || errors.Is(err, repository.ErrInvalidID) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &RoomSummary{
				ID:              id,
				Name:            room.Name,
				Role:            index[id],
				AllowURLJoining: room.AllowURLJoining,
				MemberCount:     len(room.Members),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list rooms of %s: %w", uid, err)
	}

	out := make([]RoomSummary, 0, len(found))
	for _, r := range found {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if pi, pj := out[i].Role.Priority(), out[j].Role.Priority(); pi != pj {
			return pi > pj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Inbox resolves the caller's pending invites, oldest first.
func (s *RoomQueryService) Inbox(ctx context.Context, caller *domain.Caller) ([]Invite, error) {
	if caller == nil || caller.UID == "" {
		return nil, unauthenticated()
	}

	user, err := s.users.Get(ctx, caller.UID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return []Invite{}, nil
	}
	if err != nil {
		return nil, err
	}

	invites := make([]Invite, 0, len(user.PendingInvites))
	for _, roomID := range user.PendingInvites {
		room, err := s.rooms.Get(ctx, roomID)
		if errors.Is(err, repository.ErrRoomNotFound) || errors.Is(err, repository.ErrInvalidID) {
			continue
		}
		if err != nil {
			return nil, err
		}

		invite := Invite{RoomID: roomID, RoomName: room.Name}
		if owners := room.Owners(); len(owners) > 0 {
			owner, _ := room.Member(owners[0])
			profile, err := s.profile(ctx, owner)
			if err != nil {
				return nil, err
			}
			invite.Owner = &profile
		}
		invites = append(invites, invite)
	}
	return invites, nil
}

// JoinInfo tells the join page whether the caller can join roomID by URL.
func (s *RoomQueryService) JoinInfo(ctx context.Context, roomID string, caller *domain.Caller) (*JoinInfo, error) {
	access, err := s.gate.Authorize(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}

	info := &JoinInfo{
		RoomID:          roomID,
		Name:            access.Room.Name,
		AllowURLJoining: access.Room.AllowURLJoining,
	}
	member, present := access.Room.Member(caller.UID)
	if present {
		info.Role = member.Role
	}
	info.CanJoin = info.AllowURLJoining && (!present || member.Role == domain.RoleInvited)
	return info, nil
}

func (s *RoomQueryService) profiles(ctx context.Context, members []domain.RoomMember) ([]MemberProfile, error) {
	out := make([]MemberProfile, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			p, err := s.profile(gctx, m)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// profile decorates a member with the user's profile. Unknown users keep
// just their uid.
func (s *RoomQueryService) profile(ctx context.Context, m domain.RoomMember) (MemberProfile, error) {
	p := MemberProfile{UID: m.UID, Role: m.Role, Arrived: m.Arrived}

	user, err := s.users.Get(ctx, m.UID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrInvalidID):
		return p, nil
	case err != nil:
		return p, err
	}

	p.Email = user.Email
	p.DisplayName = user.DisplayName
	p.ProfileURL = user.ProfileURL
	return p, nil
}

func sortProfiles(ps []MemberProfile) {
	sort.Slice(ps, func(i, j int) bool {
		if pi, pj := ps[i].Role.Priority(), ps[j].Role.Priority(); pi != pj {
			return pi > pj
		}
		ni, nj := strings.ToLower(displayName(ps[i])), strings.ToLower(displayName(ps[j]))
		if ni != nj {
			return ni < nj
		}
		return ps[i].UID < ps[j].UID
	})
}

func displayName(p MemberProfile) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return p.UID
}
