package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
)

type StoreUserRepository struct {
	store store.Store
}

func NewStoreUserRepository(s store.Store) *StoreUserRepository {
	return &StoreUserRepository{store: s}
}

func (r *StoreUserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	if !ValidID(uid) {
		return nil, ErrInvalidID
	}

	var user domain.User
	ok, err := store.GetInto(ctx, r.store, UserPath(uid), &user)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	user.UID = uid
	return &user, nil
}

// FindByEmail scans every user for a case-insensitive email match. When
// several users share an email the one with the smallest uid wins.
func (r *StoreUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	var users map[string]domain.User
	ok, err := store.GetInto(ctx, r.store, "users", &users)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	uids := make([]string, 0, len(users))
	for uid := range users {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	for _, uid := range uids {
		user := users[uid]
		if strings.EqualFold(strings.TrimSpace(user.Email), email) {
			user.UID = uid
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// Ensure records the caller's uid, email and global role. Pending invites
// and the room index are left alone.
func (r *StoreUserRepository) Ensure(ctx context.Context, caller domain.Caller) error {
	if !ValidID(caller.UID) {
		return ErrInvalidID
	}

	role := caller.Role
	if role == "" {
		role = domain.DefaultUserRole
	}

	var current struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if _, err := store.GetInto(ctx, r.store, UserPath(caller.UID), &current); err != nil {
		return fmt.Errorf("get user %s: %w", caller.UID, err)
	}
	if current.UID == caller.UID && current.Email == caller.Email && current.Role == role {
		return nil
	}

	err := r.store.Update(ctx, map[string]any{
		store.Join(UserPath(caller.UID), "uid"):   caller.UID,
		store.Join(UserPath(caller.UID), "email"): caller.Email,
		store.Join(UserPath(caller.UID), "role"):  role,
	})
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", caller.UID, err)
	}
	return nil
}

func (r *StoreUserRepository) UpdateProfile(ctx context.Context, uid, displayName, profileURL string, at time.Time) error {
	if !ValidID(uid) {
		return ErrInvalidID
	}

	var profile any
	if profileURL != "" {
		profile = profileURL
	}

	err := r.store.Update(ctx, map[string]any{
		store.Join(UserPath(uid), "displayName"): displayName,
		store.Join(UserPath(uid), "profileURL"):  profile,
		store.Join(UserPath(uid), "updatedAt"):   at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("update profile %s: %w", uid, err)
	}
	return nil
}

// Rooms returns the personal room index of uid.
func (r *StoreUserRepository) Rooms(ctx context.Context, uid string) (map[string]domain.RoomRole, error) {
	if !ValidID(uid) {
		return nil, ErrInvalidID
	}

	rooms := make(map[string]domain.RoomRole)
	if _, err := store.GetInto(ctx, r.store, UserRoomsPath(uid), &rooms); err != nil {
		return nil, fmt.Errorf("get rooms of %s: %w", uid, err)
	}
	return rooms, nil
}
