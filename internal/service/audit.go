package service

import (
	"context"
	"fmt"
	"time"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
)

// AuditLog appends entries to a room's log. Entries are only ever appended.
type AuditLog struct {
	rooms repository.RoomRepository
	now   func() time.Time
}

func NewAuditLog(rooms repository.RoomRepository, now func() time.Time) *AuditLog {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AuditLog{rooms: rooms, now: now}
}

// Entry builds a log entry stamped with the current instant.
func (a *AuditLog) Entry(performerID, action, subjectID string) domain.RoomLogEntry {
	return domain.RoomLogEntry{
		Timestamp:   a.now(),
		PerformerID: performerID,
		SubjectID:   subjectID,
		Action:      action,
	}
}

// Append adds one entry to room.Logs and persists the room aggregate.
// subjectID may be empty.
func (a *AuditLog) Append(ctx context.Context, room *domain.Room, performerID, action, subjectID string) error {
	room.Logs = append(room.Logs, a.Entry(performerID, action, subjectID))
	if err := a.rooms.Save(ctx, room); err != nil {
		return fmt.Errorf("append log to room %s: %w", room.ID, err)
	}
	return nil
}
