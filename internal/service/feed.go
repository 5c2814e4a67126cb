package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

var ErrStreamRunning = errors.New("room list stream already running")

// RoomListFeed hands out room list streams, one per subscriber.
type RoomListFeed struct {
	store   store.Store
	queries *RoomQueryService
	buffer  int
	log     *slog.Logger
}

func NewRoomListFeed(s store.Store, queries *RoomQueryService, buffer int, log *slog.Logger) *RoomListFeed {
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &RoomListFeed{store: s, queries: queries, buffer: buffer, log: log}
}

// Open prepares a stream for uid. Nothing is watched until Start.
func (f *RoomListFeed) Open(uid string) (*RoomListStream, error) {
	if uid == "" {
		return nil, unauthenticated()
	}
	if !repository.ValidID(uid) {
		return nil, badRequest("invalid user id")
	}
	return &RoomListStream{feed: f, uid: uid}, nil
}

// RoomListStream emits the subscriber's room list on start and after every
// change to it. A slow reader only ever sees the newest snapshots.
type RoomListStream struct {
	feed *RoomListFeed
	uid  string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	out    chan []RoomSummary
}

// Start begins watching. The snapshots channel of this run is closed when
// ctx ends or Stop is called. A stopped stream can be started again.
func (s *RoomListStream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrStreamRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	indexCh, err := s.feed.store.Watch(runCtx, repository.UserRoomsPath(s.uid))
	if err != nil {
		cancel()
		return err
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	s.out = make(chan []RoomSummary, s.feed.buffer)

	go s.run(runCtx, indexCh, s.out, s.done)
	return nil
}

// Snapshots returns the channel of the current run, or nil before Start.
func (s *RoomListStream) Snapshots() <-chan []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out
}

// Stop ends the current run and waits for it to finish.
func (s *RoomListStream) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *RoomListStream) run(ctx context.Context, indexCh <-chan struct{}, out chan []RoomSummary, done chan struct{}) {
	const op = "service.feed.run"
	log := s.feed.log.With(slog.String("op", op), slog.String("uid", s.uid))

	defer close(done)
	defer close(out)

	rooms := &roomWatches{store: s.feed.store, changed: make(chan struct{}, 1), log: log}
	defer rooms.release()

	publish := func() {
		for {
			list, err := s.feed.queries.listRooms(ctx, s.uid)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("failed to build room list", sl.Err(err))
				}
				return
			}
			// A room that changed before its watch was armed is caught by
			// listing again.
			if !rooms.arm(ctx, list) {
				offer(out, list)
				return
			}
		}
	}

	publish()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-indexCh:
			if !ok {
				return
			}
		case <-rooms.changed:
		}
		publish()
	}
}

// roomWatches watches rooms/{id} for every room in the subscriber's list.
// The set is re-armed whenever the list names different rooms.
type roomWatches struct {
	store   store.Store
	changed chan struct{}
	log     *slog.Logger

	ids    map[string]struct{}
	cancel context.CancelFunc
}

// arm reports whether the watched set had to change.
func (w *roomWatches) arm(ctx context.Context, list []RoomSummary) bool {
	ids := make(map[string]struct{}, len(list))
	for _, r := range list {
		ids[r.ID] = struct{}{}
	}
	if w.ids != nil && sameKeys(w.ids, ids) {
		return false
	}

	w.release()
	watchCtx, cancel := context.WithCancel(ctx)
	w.ids, w.cancel = ids, cancel

	for id := range ids {
		ch, err := w.store.Watch(watchCtx, repository.RoomPath(id))
		if err != nil {
			w.log.Warn("failed to watch room", slog.String("room_id", id), sl.Err(err))
			continue
		}
		go func() {
			for range ch {
				select {
				case w.changed <- struct{}{}:
				default:
				}
			}
		}()
	}
	return true
}

func (w *roomWatches) release() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func sameKeys(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// offer sends without blocking, dropping the oldest buffered snapshot when
// the reader is behind. There is a single sender per channel.
func offer(out chan []RoomSummary, rooms []RoomSummary) {
	for {
		select {
		case out <- rooms:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
