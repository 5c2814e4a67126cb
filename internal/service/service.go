package service

import (
	"context"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
)

type RoomInteractor interface {
	CreateRoom(ctx context.Context, caller *domain.Caller, name string, allowURLJoining *bool) (*domain.Room, error)
	Invite(ctx context.Context, roomID string, caller *domain.Caller, target InviteTarget) (string, error)
	AcceptInvite(ctx context.Context, roomID string, caller *domain.Caller) error
	DeclineInvite(ctx context.Context, roomID string, caller *domain.Caller) error
	JoinByURL(ctx context.Context, roomID string, caller *domain.Caller) error
	Kick(ctx context.Context, roomID string, caller *domain.Caller, targetUID string) error
	Promote(ctx context.Context, roomID string, caller *domain.Caller, targetUID string) error
	Leave(ctx context.Context, roomID string, caller *domain.Caller) (bool, error)
	Rename(ctx context.Context, roomID string, caller *domain.Caller, newName string) error
	UpdateArrival(ctx context.Context, roomID string, caller *domain.Caller, arrived bool) error
	DeleteRoom(ctx context.Context, roomID string, caller *domain.Caller) error
}

type RoomQuerier interface {
	RoomView(ctx context.Context, roomID string, caller *domain.Caller) (*RoomView, error)
	ListRooms(ctx context.Context, caller *domain.Caller) ([]RoomSummary, error)
	Inbox(ctx context.Context, caller *domain.Caller) ([]Invite, error)
	JoinInfo(ctx context.Context, roomID string, caller *domain.Caller) (*JoinInfo, error)
}

type UserInteractor interface {
	Ensure(ctx context.Context, caller *domain.Caller) error
	GetUser(ctx context.Context, caller *domain.Caller) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller *domain.Caller, displayName, profileURL string) error
}

var (
	_ RoomInteractor = (*RoomService)(nil)
	_ RoomQuerier    = (*RoomQueryService)(nil)
	_ UserInteractor = (*UserService)(nil)
)
