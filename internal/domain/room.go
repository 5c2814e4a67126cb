package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const roomIDLength = 16

type RoomRole string

const (
	RoleInvited RoomRole = "invited"
	RoleMember  RoomRole = "member"
	RoleOwner   RoomRole = "owner"
)

// Priority orders roles for listings: owner first, invited last.
func (r RoomRole) Priority() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleMember:
		return 2
	case RoleInvited:
		return 1
	default:
		return 0
	}
}

func (r RoomRole) Valid() bool {
	return r.Priority() > 0
}

// RoomMember is one user's association with a room.
// Arrived only carries meaning once Role is member or owner.
type RoomMember struct {
	UID     string   `json:"uid"`
	Role    RoomRole `json:"role"`
	Arrived bool     `json:"arrived"`
}

// RoomLogEntry is an immutable audit record. SubjectID is empty when the
// action has no distinct subject.
type RoomLogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	PerformerID string    `json:"performerId"`
	SubjectID   string    `json:"subjectId,omitempty"`
	Action      string    `json:"action"`
}

// Room is the aggregate stored at rooms/{id}. ID is not part of the stored
// document; it is the key the document lives under.
type Room struct {
	ID              string                `json:"-"`
	Name            string                `json:"name"`
	AllowURLJoining bool                  `json:"allowUrlJoining"`
	Members         map[string]RoomMember `json:"members,omitempty"`
	Logs            []RoomLogEntry        `json:"logs,omitempty"`
}

// NewRoom builds a room with the creator as its sole owner.
func NewRoom(id, name, ownerID string, allowURLJoining bool) *Room {
	return &Room{
		ID:              id,
		Name:            name,
		AllowURLJoining: allowURLJoining,
		Members: map[string]RoomMember{
			ownerID: {UID: ownerID, Role: RoleOwner},
		},
	}
}

func (r *Room) Member(uid string) (RoomMember, bool) {
	if r == nil || r.Members == nil {
		return RoomMember{}, false
	}
	m, ok := r.Members[uid]
	return m, ok
}

// HasRole reports whether uid is present in the room with one of roles.
// A user absent from Members never satisfies any role.
func (r *Room) HasRole(uid string, roles ...RoomRole) bool {
	m, ok := r.Member(uid)
	if !ok {
		return false
	}
	for _, role := range roles {
		if m.Role == role {
			return true
		}
	}
	return false
}

// Owners returns the uids holding the owner role, sorted.
func (r *Room) Owners() []string {
	owners := make([]string, 0, 1)
	if r == nil {
		return owners
	}
	for uid, m := range r.Members {
		if m.Role == RoleOwner {
			owners = append(owners, uid)
		}
	}
	sort.Strings(owners)
	return owners
}

func (r *Room) Normalize() {
	if r.Members == nil {
		r.Members = make(map[string]RoomMember)
	}
	for uid, m := range r.Members {
		if m.UID == "" {
			m.UID = uid
			r.Members[uid] = m
		}
	}
}

// NewRoomID generates an opaque 16 character room identifier.
func NewRoomID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(id) <= roomIDLength {
		return id
	}
	return id[:roomIDLength]
}
