package domain

import "time"

const DefaultUserRole = "user"

// User is the aggregate stored at users/{uid}. Rooms is the personal room
// index and must mirror rooms/{roomID}/members/{uid}.
type User struct {
	UID            string              `json:"uid"`
	Email          string              `json:"email"`
	Role           string              `json:"role"`
	DisplayName    string              `json:"displayName,omitempty"`
	ProfileURL     string              `json:"profileURL,omitempty"`
	PendingInvites []string            `json:"pendingInvites,omitempty"`
	Rooms          map[string]RoomRole `json:"rooms,omitempty"`
	UpdatedAt      *time.Time          `json:"updatedAt,omitempty"`
}

func (u *User) HasPendingInvite(roomID string) bool {
	for _, id := range u.PendingInvites {
		if id == roomID {
			return true
		}
	}
	return false
}

// WithoutInvite returns the pending invites minus roomID, keeping order.
func (u *User) WithoutInvite(roomID string) []string {
	out := make([]string, 0, len(u.PendingInvites))
	for _, id := range u.PendingInvites {
		if id != roomID {
			out = append(out, id)
		}
	}
	return out
}

// Caller is the identity resolved for an inbound request.
type Caller struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}
