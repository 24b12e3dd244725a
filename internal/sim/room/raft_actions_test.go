package room

import (
	"testing"
	"time"

	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/coop"
)

func TestRaftBuildConsumesAndRecalculates(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "builder")
	p.Inv["wood"] = 10
	p.Inv["plastic"] = 5

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftBuild, ComponentType: "foundation", Quantity: 2})
	if !out.OK {
		t.Fatalf("build failed: %+v", out)
	}
	if p.Inv["wood"] != 2 || p.Inv["plastic"] != 1 {
		t.Fatalf("inventory after build = wood %d plastic %d, want 2/1", p.Inv["wood"], p.Inv["plastic"])
	}
	if len(p.Raft.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(p.Raft.Components))
	}
	for _, c := range p.Raft.Components {
		if c.ID == "" || c.Health != c.Durability {
			t.Fatalf("bad component %+v", c)
		}
	}
}

func TestRaftBuildRejectsWhenFullOrBroke(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "builder")

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftBuild, ComponentType: "foundation"})
	if out.OK {
		t.Fatalf("build without resources should fail")
	}

	layout, _ := r.builder.LayoutInfo(p.Raft.Layout)
	p.Inv["wood"] = 1000
	p.Inv["plastic"] = 1000
	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftBuild, ComponentType: "foundation", Quantity: layout.MaxComponents + 1})
	if out.OK || out.Code != protocol.ErrConflict {
		t.Fatalf("overfull build should fail with %s, got %+v", protocol.ErrConflict, out)
	}
}

func TestRaftRepairThroughAction(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "fixer")
	p.Inv["wood"] = 100
	p.Inv["plastic"] = 100

	if out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftBuild, ComponentType: "foundation"}); !out.OK {
		t.Fatalf("build failed: %+v", out)
	}
	c := p.Raft.Components[0]
	c.Health = 30

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftRepair, ComponentID: c.ID})
	if !out.OK {
		t.Fatalf("repair failed: %+v", out)
	}
	if c.Health != 80 {
		t.Fatalf("health after repair = %v, want 80", c.Health)
	}

	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftRepair, ComponentID: "comp_nope"})
	if out.OK || out.Code != protocol.ErrInvalidTarget {
		t.Fatalf("expected %s, got %+v", protocol.ErrInvalidTarget, out)
	}
}

func TestRaftUpgradeRefillsHull(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "captain")
	p.Inv["wood"] = 100
	p.Inv["plastic"] = 100
	p.Inv["metal"] = 100
	p.Inv["rope"] = 100
	p.Raft.Health = 40

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActRaftUpgrade})
	if !out.OK {
		t.Fatalf("upgrade failed: %+v", out)
	}
	if p.Raft.Layout != "medium" {
		t.Fatalf("layout = %s, want medium", p.Raft.Layout)
	}
	if p.Raft.Health != p.Raft.Props.MaxHealth {
		t.Fatalf("upgrade should refill hull, got %v/%v", p.Raft.Health, p.Raft.Props.MaxHealth)
	}
	if p.Inv["wood"] != 60 {
		t.Fatalf("wood = %d, want 60 after paying 40", p.Inv["wood"])
	}
}

func TestCraftItemOnce(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "crafter")
	p.Inv["wood"] = 6
	p.Inv["metal"] = 4

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCraft, ItemType: "spear"})
	if !out.OK {
		t.Fatalf("craft failed: %+v", out)
	}
	if p.Items["spear"] != 1 {
		t.Fatalf("spear = %d, want 1", p.Items["spear"])
	}

	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCraft, ItemType: "spear"})
	if out.OK {
		t.Fatalf("crafting a unique item twice should fail")
	}
}

func TestSurvivalDeathDropsHalfStacks(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "unlucky")
	p.Inv["wood"] = 9
	p.Pos = protocol.Vec2{X: 250, Y: 250}
	p.Vitals.Health = 0.1
	p.Vitals.Hunger = 0
	p.Vitals.Thirst = 0

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })
	r.step(30*time.Second, now)

	if p.Deaths != 1 {
		t.Fatalf("deaths = %d, want 1", p.Deaths)
	}
	if p.Inv["wood"] != 4 {
		t.Fatalf("wood after drop = %d, want 4 (dropped 5)", p.Inv["wood"])
	}
	var dropped int
	for _, res := range r.resources {
		if res.FromDeath && res.Type == "wood" {
			dropped += res.Amount
			if !res.ExpiresAt.After(now) {
				t.Fatalf("death drop should expire in the future")
			}
			if res.Position != (protocol.Vec2{X: 250, Y: 250}) {
				t.Fatalf("drop at %+v, want death position", res.Position)
			}
		}
	}
	if dropped != 5 {
		t.Fatalf("dropped wood = %d, want 5", dropped)
	}
	if p.Vitals.Health != 100 || p.Pos != (protocol.Vec2{}) {
		t.Fatalf("vitals/position not reset: %v %+v", p.Vitals.Health, p.Pos)
	}
}

func TestCollectBonusOnlyFromRunningTask(t *testing.T) {
	r := newTestRoom(21)
	p := joinPlayer(t, r, "gatherer")

	out := do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCoopCreate, TaskType: "resource_gathering", Role: "gatherer"})
	if !out.OK {
		t.Fatalf("create failed: %+v", out)
	}
	taskID, _ := out.Data["task_id"].(string)
	task, ok := r.tasks.Get(taskID)
	if !ok {
		t.Fatalf("task %q not found", taskID)
	}
	task.Status = coop.StatusWaiting

	res := placeResource(r, "wood", 2, protocol.Vec2{X: 30, Y: 0})
	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if !out.OK {
		t.Fatalf("collect failed: %+v", out)
	}
	if _, has := out.Data["cooperation_bonus"]; has {
		t.Fatalf("waiting task must not grant a bonus: %+v", out.Data)
	}

	task.Status = coop.StatusInProgress
	res = placeResource(r, "plastic", 2, protocol.Vec2{X: 30, Y: 0})
	out = do(r, p.ID, protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: res.ID})
	if !out.OK {
		t.Fatalf("collect failed: %+v", out)
	}
	if _, has := out.Data["cooperation_bonus"]; !has {
		t.Fatalf("running task should report its bonus: %+v", out.Data)
	}
}

func TestCoopTaskLifecycleThroughActions(t *testing.T) {
	r := newTestRoom(21)
	a := joinPlayer(t, r, "alpha")
	b := joinPlayer(t, r, "bravo")

	out := do(r, a.ID, protocol.ActionMsg{Action: protocol.ActCoopCreate, TaskType: "raft_building", Role: "builder"})
	if !out.OK {
		t.Fatalf("create failed: %+v", out)
	}
	taskID, _ := out.Data["task_id"].(string)
	if taskID == "" {
		t.Fatalf("missing task id in %+v", out.Data)
	}

	if out := do(r, b.ID, protocol.ActionMsg{Action: protocol.ActCoopJoin, TaskID: taskID}); !out.OK {
		t.Fatalf("join failed: %+v", out)
	}

	// A bystander cannot push progress.
	c := joinPlayer(t, r, "charlie")
	out = do(r, c.ID, protocol.ActionMsg{Action: protocol.ActCoopUpdate, TaskID: taskID, Progress: 10})
	if out.OK || out.Code != protocol.ErrConflict {
		t.Fatalf("expected %s for outsider, got %+v", protocol.ErrConflict, out)
	}

	out = do(r, a.ID, protocol.ActionMsg{Action: protocol.ActCoopUpdate, TaskID: taskID, Progress: 100})
	if !out.OK {
		t.Fatalf("update failed: %+v", out)
	}
	if status, _ := out.Data["status"].(string); status != "completed" {
		t.Fatalf("status = %v, want completed", out.Data["status"])
	}
}

func TestCoopLeaveByInitiatorFails(t *testing.T) {
	r := newTestRoom(21)
	a := joinPlayer(t, r, "alpha")

	out := do(r, a.ID, protocol.ActionMsg{Action: protocol.ActCoopCreate, TaskType: "resource_gathering"})
	if !out.OK {
		t.Fatalf("create failed: %+v", out)
	}
	taskID, _ := out.Data["task_id"].(string)

	out = do(r, a.ID, protocol.ActionMsg{Action: protocol.ActCoopLeave, TaskID: taskID})
	if !out.OK {
		t.Fatalf("leave failed: %+v", out)
	}
	if status, _ := out.Data["status"].(string); status != "failed" {
		t.Fatalf("initiator leave should fail the task, got %v", out.Data["status"])
	}
}
