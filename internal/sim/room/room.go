// Package room implements a single authoritative game room: a fixed ocean
// area with up to four rafts, floating resources, sharks, NPCs, and
// explorable locations, advanced by one loop goroutine.
package room

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"adrift.gg/internal/persistence/progress"
	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/catalog"
	"adrift.gg/internal/sim/coop"
	raftpkg "adrift.gg/internal/sim/raft"
	"adrift.gg/internal/sim/resource"
	"adrift.gg/internal/sim/survival"
	"adrift.gg/internal/sim/tuning"
)

type Config struct {
	ID   string
	Seed int64
}

type JoinRequest struct {
	Name     string
	Progress *progress.Document
	Out      chan []byte
	Resp     chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Init    protocol.InitMsg
	ErrCode string
}

type ActionEnvelope struct {
	PlayerID string
	Act      protocol.ActionMsg
	Resp     chan protocol.Result
}

// EventLogger records broadcast room events for later analysis. Implemented
// in internal/persistence/roomlog.
type EventLogger interface {
	WriteEvent(entry EventLogEntry) error
}

type EventLogEntry struct {
	Room string         `json:"room"`
	Tick uint64         `json:"tick"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// ProgressSink persists player progress off-thread. Implemented in
// internal/persistence/progress.
type ProgressSink interface {
	QueueSave(name string, doc progress.Document)
}

// Room is a single-threaded authoritative simulation. All state must be
// accessed only from the room loop goroutine.
type Room struct {
	cfg Config
	tun *tuning.Tuning
	cat *catalog.Catalog
	log *log.Logger

	rng *rand.Rand
	now func() time.Time

	tick        atomic.Uint64
	playerCount atomic.Int64

	players   map[string]*Player
	clients   map[string]*clientState
	sharks    map[string]*Shark
	npcs      map[string]*NPC
	locations map[string]*Location
	resources map[string]*resource.Floating

	weather *weatherSystem
	res     *resource.Manager
	builder *raftpkg.Builder
	surv    *survival.System
	tasks   *coop.Manager

	join  chan JoinRequest
	leave chan string
	inbox chan ActionEnvelope
	stop  chan struct{}

	lastStep          time.Time
	lastResourceSpawn time.Time
	lastSharkSpawn    time.Time
	lastLocationSpawn time.Time
	lastNPCSpawn      time.Time

	nextPlayerNum int
	nextSharkNum  int
	nextNPCNum    int
	nextLocNum    int
	nextCompNum   int

	eventLog EventLogger  // may be nil
	progress ProgressSink // may be nil
}

type clientState struct {
	Out chan []byte
}

type Player struct {
	ID       string
	Name     string
	Pos      protocol.Vec2
	Vitals   survival.State
	Inv      map[string]int
	Items    map[string]int
	Currency float64
	Raft     Raft
	Deaths   int

	// Counters like collect_rare_resource, persisted with progress.
	Achievements map[string]int

	LastActivity time.Time

	events []protocol.Event
}

// Raft combines the hull hit-point pool the enemies chew on with the
// installed components and their derived stats.
type Raft struct {
	Layout     string
	Health     float64
	Components []*raftpkg.Component
	Props      raftpkg.Properties
}

func (p *Player) AddEvent(e protocol.Event) {
	p.events = append(p.events, e)
}

func New(cfg Config, tun *tuning.Tuning, cat *catalog.Catalog, logger *log.Logger) *Room {
	rng := rand.New(rand.NewSource(cfg.Seed))
	r := &Room{
		cfg: cfg,
		tun: tun,
		cat: cat,
		log: logger,

		rng: rng,
		now: time.Now,

		players:   map[string]*Player{},
		clients:   map[string]*clientState{},
		sharks:    map[string]*Shark{},
		npcs:      map[string]*NPC{},
		locations: map[string]*Location{},
		resources: map[string]*resource.Floating{},

		weather: newWeatherSystem(rng, tun.MinutesPerRealSecond),
		res:     resource.NewManager(cat, rng),
		builder: raftpkg.NewBuilder(cat),
		surv:    survival.NewSystem(cat),
		tasks:   coop.NewManager(cat),

		join:  make(chan JoinRequest, 8),
		leave: make(chan string, 8),
		inbox: make(chan ActionEnvelope, 256),
		stop:  make(chan struct{}),
	}
	return r
}

func (r *Room) ID() string { return r.cfg.ID }

// Tick is safe to read from other goroutines.
func (r *Room) Tick() uint64 { return r.tick.Load() }

// PlayerCount is approximate when read outside the loop; the manager only
// uses it for first-fit placement and sweeping.
func (r *Room) PlayerCount() int { return int(r.playerCount.Load()) }

func (r *Room) SetEventLogger(l EventLogger)  { r.eventLog = l }
func (r *Room) SetProgressSink(s ProgressSink) { r.progress = s }

// SetClock overrides the wall clock, for tests.
func (r *Room) SetClock(now func() time.Time) { r.now = now }

func (r *Room) Join() chan<- JoinRequest      { return r.join }
func (r *Room) Leave() chan<- string          { return r.leave }
func (r *Room) Inbox() chan<- ActionEnvelope  { return r.inbox }

func (r *Room) Params() protocol.RoomParams {
	return protocol.RoomParams{
		TickRateHz:    r.tun.TickRateHz,
		AreaHalfSize:  r.tun.AreaHalfSize,
		MaxPlayers:    r.tun.MaxPlayers,
		MinutesPerSec: r.tun.MinutesPerRealSecond,
	}
}

func (r *Room) newID(kind string, n *int) string {
	*n++
	return fmt.Sprintf("%s_%s_%04d", kind, r.cfg.ID[:minInt(8, len(r.cfg.ID))], *n)
}

func (r *Room) handleJoin(req JoinRequest) {
	if len(r.players) >= r.tun.MaxPlayers {
		if req.Resp != nil {
			req.Resp <- JoinResponse{ErrCode: protocol.ErrRoomFull}
		}
		return
	}

	r.nextPlayerNum++
	id := fmt.Sprintf("p_%04d", r.nextPlayerNum)

	p := &Player{
		ID:           id,
		Name:         req.Name,
		Pos:          protocol.Vec2{},
		Vitals:       survival.NewState(),
		Inv:          map[string]int{},
		Items:        map[string]int{},
		Achievements: map[string]int{},
		LastActivity: r.now(),
	}
	p.Raft.Layout = r.cat.Layouts[0].ID
	if req.Progress != nil {
		for k, v := range req.Progress.Inventory {
			p.Inv[k] = v
		}
		for k, v := range req.Progress.Items {
			p.Items[k] = v
		}
		for k, v := range req.Progress.Achievements {
			p.Achievements[k] = v
		}
		p.Currency = req.Progress.Currency
		p.Deaths = req.Progress.Deaths
		if _, ok := r.builder.LayoutInfo(req.Progress.RaftLayout); ok {
			p.Raft.Layout = req.Progress.RaftLayout
		}
	}
	p.Raft.Props = r.builder.CalculateProperties(nil, p.Raft.Layout)
	p.Raft.Health = p.Raft.Props.MaxHealth

	r.players[id] = p
	r.clients[id] = &clientState{Out: req.Out}
	r.playerCount.Store(int64(len(r.players)))

	r.log.Printf("room %s: player %s (%s) joined, %d/%d", r.cfg.ID, req.Name, id, len(r.players), r.tun.MaxPlayers)
	r.broadcastEvent("player.join", map[string]any{"player_id": id, "name": req.Name}, id)

	if req.Resp != nil {
		req.Resp <- JoinResponse{
			Welcome: protocol.WelcomeMsg{
				Type:            protocol.TypeWelcome,
				ProtocolVersion: protocol.Version,
				PlayerID:        id,
				RoomID:          r.cfg.ID,
				RoomParams:      r.Params(),
			},
			Init: r.buildInit(p),
		}
	}
}

func (r *Room) handlePlayerLeave(id string) {
	p, ok := r.players[id]
	if !ok {
		return
	}
	r.saveProgress(p)
	r.tasks.DropPlayer(id)
	delete(r.players, id)
	delete(r.clients, id)
	r.playerCount.Store(int64(len(r.players)))

	r.log.Printf("room %s: player %s left, %d remaining", r.cfg.ID, id, len(r.players))
	r.broadcastEvent("player.leave", map[string]any{"player_id": id}, "")
}

func (r *Room) saveProgress(p *Player) {
	if r.progress == nil {
		return
	}
	doc := progress.Document{
		Inventory:    map[string]int{},
		Items:        map[string]int{},
		Achievements: map[string]int{},
		Currency:     p.Currency,
		RaftLayout:   p.Raft.Layout,
		Deaths:       p.Deaths,
		UpdatedAt:    r.now(),
	}
	for k, v := range p.Inv {
		doc.Inventory[k] = v
	}
	for k, v := range p.Items {
		doc.Items[k] = v
	}
	for k, v := range p.Achievements {
		doc.Achievements[k] = v
	}
	r.progress.QueueSave(p.Name, doc)
}

// broadcastEvent queues an event on every player except the one named by
// skip, and mirrors it to the room event log.
func (r *Room) broadcastEvent(kind string, data map[string]any, skip string) {
	tick := r.tick.Load()
	for id, p := range r.players {
		if id == skip {
			continue
		}
		e := protocol.Event{"t": tick, "type": kind}
		for k, v := range data {
			e[k] = v
		}
		p.AddEvent(e)
	}
	if r.eventLog != nil {
		_ = r.eventLog.WriteEvent(EventLogEntry{Room: r.cfg.ID, Tick: tick, Type: kind, Data: data})
	}
}

// randomEdgePosition picks a point on the area boundary, pulled in by inset.
func (r *Room) randomEdgePosition(inset float64) protocol.Vec2 {
	bounds := r.tun.AreaHalfSize
	span := func() float64 { return r.rng.Float64()*(bounds*2) - bounds }
	switch r.rng.Intn(4) {
	case 0:
		return protocol.Vec2{X: span(), Y: -bounds + inset}
	case 1:
		return protocol.Vec2{X: bounds - inset, Y: span()}
	case 2:
		return protocol.Vec2{X: span(), Y: bounds - inset}
	default:
		return protocol.Vec2{X: -bounds + inset, Y: span()}
	}
}

// randomPositionInArea picks a point between minDist and maxDist from the
// center. maxDist of 0 means the area boundary.
func (r *Room) randomPositionInArea(minDist, maxDist float64) protocol.Vec2 {
	if maxDist == 0 {
		maxDist = r.tun.AreaHalfSize
	}
	angle := r.rng.Float64() * 2 * math.Pi
	dist := r.rng.Float64()*(maxDist-minDist) + minDist
	return protocol.Vec2{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist}
}

func (r *Room) clampToArea(v protocol.Vec2) protocol.Vec2 {
	b := r.tun.AreaHalfSize
	return protocol.Vec2{
		X: math.Max(-b, math.Min(b, v.X)),
		Y: math.Max(-b, math.Min(b, v.Y)),
	}
}

func dist(a, b protocol.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func randomDirection(rng *rand.Rand) protocol.Vec2 {
	angle := rng.Float64() * 2 * math.Pi
	return protocol.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
