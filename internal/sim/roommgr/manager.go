// Package roommgr places players into rooms, spins rooms up on demand, and
// reaps rooms that have sat empty past the grace period.
package roommgr

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"adrift.gg/internal/persistence/progress"
	"adrift.gg/internal/persistence/roomlog"
	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/catalog"
	"adrift.gg/internal/sim/room"
	"adrift.gg/internal/sim/tuning"
)

const (
	roomRequestTimeout   = 3 * time.Second
	roomLeaveSendTimeout = 300 * time.Millisecond
)

// Session identifies one connected player inside one room.
type Session struct {
	PlayerID string
	RoomID   string
	Out      chan []byte
}

type runtime struct {
	room       *room.Room
	cancel     context.CancelFunc
	events     *roomlog.EventLogger // may be nil
	createdAt  time.Time
	emptySince time.Time // zero while occupied
}

type Manager struct {
	tun     *tuning.Tuning
	cat     *catalog.Catalog
	log     *log.Logger
	dataDir string
	store   *progress.Store // may be nil

	mu     sync.Mutex
	rooms  map[string]*runtime
	closed bool

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func New(tun *tuning.Tuning, cat *catalog.Catalog, store *progress.Store, dataDir string, logger *log.Logger) *Manager {
	m := &Manager{
		tun:     tun,
		cat:     cat,
		log:     logger,
		dataDir: dataDir,
		store:   store,
		rooms:   map[string]*runtime{},
		stop:    make(chan struct{}),
	}
	m.wg.Add(1)
	go m.sweepLoop()
	return m
}

// Join places the player in the preferred room if it exists and has space,
// otherwise in the first room with a free slot, otherwise in a new room.
// Saved progress for the player name is loaded before joining.
func (m *Manager) Join(ctx context.Context, name, roomPreference string, out chan []byte) (Session, room.JoinResponse, error) {
	var doc *progress.Document
	if m.store != nil {
		var err error
		doc, err = m.store.Load(ctx, name)
		if err != nil {
			m.log.Printf("roommgr: progress load for %q: %v", name, err)
		}
	}

	// One join can race another into the last slot; the room itself is the
	// authority, so retry placement when it reports full.
	for attempt := 0; attempt < 3; attempt++ {
		rt, err := m.pickRoom(roomPreference)
		if err != nil {
			return Session{}, room.JoinResponse{}, err
		}

		respCh := make(chan room.JoinResponse, 1)
		req := room.JoinRequest{Name: name, Progress: doc, Out: out, Resp: respCh}
		resp, err := m.sendJoin(ctx, rt.room, req)
		if err != nil {
			return Session{}, room.JoinResponse{}, err
		}
		if resp.ErrCode == protocol.ErrRoomFull {
			roomPreference = ""
			continue
		}
		if resp.ErrCode != "" {
			return Session{}, room.JoinResponse{}, errors.New("join rejected: " + resp.ErrCode)
		}
		return Session{
			PlayerID: resp.Welcome.PlayerID,
			RoomID:   rt.room.ID(),
			Out:      out,
		}, resp, nil
	}
	return Session{}, room.JoinResponse{}, errors.New("no room with a free slot")
}

func (m *Manager) Leave(s Session) {
	rt := m.runtime(s.RoomID)
	if rt == nil {
		return
	}
	timer := time.NewTimer(roomLeaveSendTimeout)
	defer timer.Stop()
	select {
	case rt.room.Leave() <- s.PlayerID:
	case <-timer.C:
	}
}

// Act routes one action into the player's room and waits for the result.
func (m *Manager) Act(ctx context.Context, s Session, act protocol.ActionMsg) (protocol.Result, error) {
	rt := m.runtime(s.RoomID)
	if rt == nil {
		return protocol.Result{}, errors.New("room not found: " + s.RoomID)
	}
	reqCtx, cancel := context.WithTimeout(ctx, roomRequestTimeout)
	defer cancel()

	respCh := make(chan protocol.Result, 1)
	env := room.ActionEnvelope{PlayerID: s.PlayerID, Act: act, Resp: respCh}
	select {
	case rt.room.Inbox() <- env:
	case <-reqCtx.Done():
		return protocol.Result{}, reqCtx.Err()
	}
	select {
	case res := <-respCh:
		return res, nil
	case <-reqCtx.Done():
		return protocol.Result{}, reqCtx.Err()
	}
}

// RoomInfo is a point-in-time view for the status endpoint.
type RoomInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Tick    uint64 `json:"tick"`
}

func (m *Manager) Rooms() []RoomInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, rt := range m.rooms {
		out = append(out, RoomInfo{ID: id, Players: rt.room.PlayerCount(), Tick: rt.room.Tick()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()

		m.mu.Lock()
		m.closed = true
		rts := make([]*runtime, 0, len(m.rooms))
		for _, rt := range m.rooms {
			rts = append(rts, rt)
		}
		m.rooms = map[string]*runtime{}
		m.mu.Unlock()

		for _, rt := range rts {
			m.shutdownRoom(rt)
		}
	})
}

func (m *Manager) runtime(id string) *runtime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id]
}

// pickRoom returns the preferred room when it has space, else the oldest
// room with a free slot, else a freshly started room.
func (m *Manager) pickRoom(preference string) (*runtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("manager is shutting down")
	}

	if preference != "" {
		if rt, ok := m.rooms[preference]; ok && rt.room.PlayerCount() < m.tun.MaxPlayers {
			return rt, nil
		}
	}

	var best *runtime
	for _, rt := range m.rooms {
		if rt.room.PlayerCount() >= m.tun.MaxPlayers {
			continue
		}
		if best == nil || rt.createdAt.Before(best.createdAt) {
			best = rt
		}
	}
	if best != nil {
		return best, nil
	}
	return m.startRoomLocked()
}

func (m *Manager) startRoomLocked() (*runtime, error) {
	id := uuid.NewString()
	r := room.New(room.Config{ID: id, Seed: time.Now().UnixNano()}, m.tun, m.cat, m.log)
	if m.store != nil {
		r.SetProgressSink(m.store)
	}

	var events *roomlog.EventLogger
	if m.dataDir != "" {
		events = roomlog.NewEventLogger(m.dataDir, id)
		r.SetEventLogger(events)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt := &runtime{room: r, cancel: cancel, events: events, createdAt: time.Now()}
	m.rooms[id] = rt
	go func() { _ = r.Run(ctx) }()

	m.log.Printf("roommgr: started room %s (%d total)", id, len(m.rooms))
	return rt, nil
}

func (m *Manager) sendJoin(ctx context.Context, r *room.Room, req room.JoinRequest) (room.JoinResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, roomRequestTimeout)
	defer cancel()
	select {
	case r.Join() <- req:
	case <-reqCtx.Done():
		return room.JoinResponse{}, reqCtx.Err()
	}
	select {
	case resp := <-req.Resp:
		return resp, nil
	case <-reqCtx.Done():
		return room.JoinResponse{}, reqCtx.Err()
	}
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()
	interval := time.Duration(m.tun.RoomSweepIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep stops rooms that have been empty longer than the grace period.
func (m *Manager) sweep(now time.Time) {
	grace := time.Duration(m.tun.RoomGracePeriodSec) * time.Second

	m.mu.Lock()
	var reap []*runtime
	for id, rt := range m.rooms {
		if rt.room.PlayerCount() > 0 {
			rt.emptySince = time.Time{}
			continue
		}
		if rt.emptySince.IsZero() {
			rt.emptySince = now
			continue
		}
		if now.Sub(rt.emptySince) >= grace {
			delete(m.rooms, id)
			reap = append(reap, rt)
		}
	}
	m.mu.Unlock()

	for _, rt := range reap {
		m.log.Printf("roommgr: reaping empty room %s", rt.room.ID())
		m.shutdownRoom(rt)
	}
}

func (m *Manager) shutdownRoom(rt *runtime) {
	rt.room.Stop()
	rt.cancel()
	if rt.events != nil {
		_ = rt.events.Close()
	}
}
