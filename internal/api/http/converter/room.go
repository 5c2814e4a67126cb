package converter

import (
	"time"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
)

type RoomResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	AllowURLJoining bool     `json:"allowUrlJoining"`
	Owners          []string `json:"owners"`
	MemberCount     int      `json:"memberCount"`
}

type UserResponse struct {
	UID            string     `json:"uid"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	DisplayName    string     `json:"displayName,omitempty"`
	ProfileURL     string     `json:"profileURL,omitempty"`
	PendingInvites []string   `json:"pendingInvites"`
	RoomCount      int        `json:"roomCount"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

func RoomToApi(r *domain.Room) *RoomResponse {
	return &RoomResponse{
		ID:              r.ID,
		Name:            r.Name,
		AllowURLJoining: r.AllowURLJoining,
		Owners:          r.Owners(),
		MemberCount:     len(r.Members),
	}
}

func UserToApi(u *domain.User) *UserResponse {
	pending := u.PendingInvites
	if pending == nil {
		pending = []string{}
	}
	return &UserResponse{
		UID:            u.UID,
		Email:          u.Email,
		Role:           u.Role,
		DisplayName:    u.DisplayName,
		ProfileURL:     u.ProfileURL,
		PendingInvites: pending,
		RoomCount:      len(u.Rooms),
		UpdatedAt:      u.UpdatedAt,
	}
}
