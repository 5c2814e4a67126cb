package repository

import (
	"context"
	"fmt"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
)

type StoreRoomRepository struct {
	store store.Store
}

func NewStoreRoomRepository(s store.Store) *StoreRoomRepository {
	return &StoreRoomRepository{store: s}
}

// Get always reads through to the store.
func (r *StoreRoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	var room domain.Room
	ok, err := store.GetInto(ctx, r.store, RoomPath(id), &room)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.ID = id
	room.Normalize()
	return &room, nil
}

// Save writes the whole room aggregate.
func (r *StoreRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	if room == nil {
		return fmt.Errorf("room is nil")
	}
	if !ValidID(room.ID) {
		return ErrInvalidID
	}
	if err := r.store.Set(ctx, RoomPath(room.ID), room); err != nil {
		return fmt.Errorf("save room %s: %w", room.ID, err)
	}
	return nil
}

func (r *StoreRoomRepository) SetName(ctx context.Context, id string, name string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	if err := r.store.Set(ctx, RoomNamePath(id), name); err != nil {
		return fmt.Errorf("rename room %s: %w", id, err)
	}
	return nil
}
