package room

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"adrift.gg/internal/persistence/progress"
	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/catalog"
	"adrift.gg/internal/sim/resource"
	"adrift.gg/internal/sim/tuning"
)

func newTestRoom(seed int64) *Room {
	tun := tuning.Defaults()
	return New(Config{ID: "room-test-0001", Seed: seed}, &tun, catalog.Defaults(), log.New(io.Discard, "", 0))
}

func joinPlayer(t *testing.T, r *Room, name string) *Player {
	t.Helper()
	resp := make(chan JoinResponse, 1)
	r.handleJoin(JoinRequest{Name: name, Out: make(chan []byte, 4), Resp: resp})
	jr := <-resp
	if jr.ErrCode != "" {
		t.Fatalf("join %s failed: %s", name, jr.ErrCode)
	}
	p := r.players[jr.Welcome.PlayerID]
	if p == nil {
		t.Fatalf("join %s: player %s missing from room", name, jr.Welcome.PlayerID)
	}
	return p
}

func do(r *Room, playerID string, act protocol.ActionMsg) protocol.Result {
	return r.applyAction(ActionEnvelope{PlayerID: playerID, Act: act})
}

func placeResource(r *Room, kind string, amount int, pos protocol.Vec2) *resource.Floating {
	res := &resource.Floating{
		ID:       "res_" + kind + "_test",
		Type:     kind,
		Name:     kind,
		Amount:   amount,
		Position: pos,
	}
	r.resources[res.ID] = res
	return res
}

func TestJoinRoomFull(t *testing.T) {
	r := newTestRoom(1)
	for i := 0; i < r.tun.MaxPlayers; i++ {
		joinPlayer(t, r, "crew")
	}

	resp := make(chan JoinResponse, 1)
	r.handleJoin(JoinRequest{Name: "late", Out: make(chan []byte, 4), Resp: resp})
	jr := <-resp
	if jr.ErrCode != protocol.ErrRoomFull {
		t.Fatalf("expected %s, got %q", protocol.ErrRoomFull, jr.ErrCode)
	}
	if r.PlayerCount() != r.tun.MaxPlayers {
		t.Fatalf("player count = %d, want %d", r.PlayerCount(), r.tun.MaxPlayers)
	}
}

func TestJoinRestoresProgress(t *testing.T) {
	r := newTestRoom(1)
	resp := make(chan JoinResponse, 1)
	r.handleJoin(JoinRequest{
		Name: "returning",
		Progress: &progress.Document{
			Inventory:  map[string]int{"wood": 12},
			RaftLayout: "medium",
			Deaths:     2,
		},
		Out:  make(chan []byte, 4),
		Resp: resp,
	})
	jr := <-resp
	p := r.players[jr.Welcome.PlayerID]
	if p.Inv["wood"] != 12 {
		t.Fatalf("restored wood = %d, want 12", p.Inv["wood"])
	}
	if p.Raft.Layout != "medium" || p.Deaths != 2 {
		t.Fatalf("restored layout=%s deaths=%d", p.Raft.Layout, p.Deaths)
	}
	if p.Raft.Health != p.Raft.Props.MaxHealth {
		t.Fatalf("fresh raft should start at full health")
	}
}

func TestMoveClampsToArea(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "mover")

	res := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActMove, X: 99999, Y: -99999})
	if !res.OK {
		t.Fatalf("move failed: %+v", res)
	}
	b := r.tun.AreaHalfSize
	if p.Pos.X != b || p.Pos.Y != -b {
		t.Fatalf("pos = %+v, want clamped to (%v, %v)", p.Pos, b, -b)
	}
}

func TestCollectResource(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "gatherer")
	res := placeResource(r, "wood", 3, protocol.Vec2{X: 50, Y: 0})

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if !out.OK {
		t.Fatalf("collect failed: %+v", out)
	}
	if p.Inv["wood"] != 3 {
		t.Fatalf("wood = %d, want 3", p.Inv["wood"])
	}
	if _, still := r.resources[res.ID]; still {
		t.Fatalf("collected resource should be removed")
	}

	// Second collect of the same ID must fail.
	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if out.OK || out.Code != protocol.ErrNoResource {
		t.Fatalf("expected %s on double collect, got %+v", protocol.ErrNoResource, out)
	}
}

func TestCollectRareCountsAchievement(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "gatherer")
	res := placeResource(r, "ancient_compass", 1, protocol.Vec2{X: 20, Y: 20})
	res.IsRare = true

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if !out.OK {
		t.Fatalf("collect failed: %+v", out)
	}
	if p.Achievements["collect_rare_resource"] != 1 {
		t.Fatalf("collect_rare_resource = %d, want 1", p.Achievements["collect_rare_resource"])
	}
}

func TestCollectOutOfRange(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "gatherer")
	res := placeResource(r, "wood", 1, protocol.Vec2{X: 500, Y: 500})

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if out.OK || out.Code != protocol.ErrOutOfRange {
		t.Fatalf("expected %s, got %+v", protocol.ErrOutOfRange, out)
	}
	if _, still := r.resources[res.ID]; !still {
		t.Fatalf("out-of-range resource must stay in the water")
	}
}

func TestCollectExhausted(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "tired")
	p.Vitals.Energy = 0.5
	res := placeResource(r, "wood", 1, protocol.Vec2{})

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if out.OK {
		t.Fatalf("exhausted player should not collect")
	}
}

func TestConsumeFood(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "eater")
	p.Inv["food"] = 2
	p.Inv["wood"] = 1
	p.Vitals.Hunger = 50

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActSurvivalConsume, ResourceType: "food"})
	if !out.OK {
		t.Fatalf("consume failed: %+v", out)
	}
	if p.Inv["food"] != 1 {
		t.Fatalf("food = %d, want 1", p.Inv["food"])
	}
	if p.Vitals.Hunger != 70 {
		t.Fatalf("hunger = %v, want 70", p.Vitals.Hunger)
	}

	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActSurvivalConsume, ResourceType: "wood"})
	if out.OK {
		t.Fatalf("wood must not be consumable")
	}
}

func TestChatBroadcast(t *testing.T) {
	r := newTestRoom(1)
	a := joinPlayer(t, r, "alpha")
	b := joinPlayer(t, r, "bravo")
	a.events, b.events = nil, nil

	out := do(r, a.ID, protocol.ActionMsg{Action: protocol.ActChat, Text: "land ho"})
	if !out.OK {
		t.Fatalf("chat failed: %+v", out)
	}
	found := false
	for _, e := range b.events {
		if e["type"] == "chat" && e["text"] == "land ho" {
			found = true
		}
	}
	if !found {
		t.Fatalf("chat event not delivered to other player: %v", b.events)
	}

	out = do(r, a.ID, protocol.ActionMsg{Action: protocol.ActChat})
	if out.OK {
		t.Fatalf("empty chat must be rejected")
	}
}

func TestUnknownPlayerAndAction(t *testing.T) {
	r := newTestRoom(1)
	out := do(r, "p_9999", protocol.ActionMsg{Action: protocol.ActMove})
	if out.OK || out.Code != protocol.ErrRoomNotFound {
		t.Fatalf("expected %s, got %+v", protocol.ErrRoomNotFound, out)
	}

	p := joinPlayer(t, r, "confused")
	out = do(r, p.ID, protocol.ActionMsg{Action: "player.teleport"})
	if out.OK || out.Code != protocol.ErrBadRequest {
		t.Fatalf("expected %s, got %+v", protocol.ErrBadRequest, out)
	}
}

func TestLeaveDropsPlayer(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "quitter")
	r.handlePlayerLeave(p.ID)
	if _, ok := r.players[p.ID]; ok {
		t.Fatalf("player should be gone after leave")
	}
	if r.PlayerCount() != 0 {
		t.Fatalf("player count = %d, want 0", r.PlayerCount())
	}
}

func TestRunPausesTickingWhileEmpty(t *testing.T) {
	r := newTestRoom(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = r.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	if got := r.Tick(); got != 0 {
		t.Fatalf("empty room ticked %d times, want 0", got)
	}

	resp := make(chan JoinResponse, 1)
	r.Join() <- JoinRequest{Name: "solo", Out: make(chan []byte, 8), Resp: resp}
	join := <-resp
	if join.ErrCode != "" {
		t.Fatalf("join failed: %s", join.ErrCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Tick() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("room did not resume ticking after join")
		}
		time.Sleep(5 * time.Millisecond)
	}

	r.Leave() <- join.Welcome.PlayerID
	time.Sleep(50 * time.Millisecond) // let a queued tick drain
	settled := r.Tick()
	time.Sleep(150 * time.Millisecond)
	if got := r.Tick(); got != settled {
		t.Fatalf("empty room kept ticking: %d -> %d", settled, got)
	}

	r.Stop()
	<-done
}

func TestStepAdvancesTickAndClearsEvents(t *testing.T) {
	r := newTestRoom(1)
	p := joinPlayer(t, r, "solo")
	p.AddEvent(protocol.Event{"type": "test"})

	r.step(time.Second/60, time.Now())
	if r.Tick() != 1 {
		t.Fatalf("tick = %d, want 1", r.Tick())
	}
	if len(p.events) != 0 {
		t.Fatalf("events should be flushed after broadcast, got %v", p.events)
	}
}
