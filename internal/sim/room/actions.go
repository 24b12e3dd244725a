package room

import (
	"fmt"
	"math"
	"strings"

	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/coop"
)

const (
	collectRange     = 150.0
	attackRange      = 150.0
	collectEnergy    = 1.0
	defaultHitDamage = 10.0
	maxHitDamage     = 50.0
	repairAmount     = 50.0
)

type actionHandler func(r *Room, p *Player, act protocol.ActionMsg) protocol.Result

var actionDispatch = map[string]actionHandler{
	protocol.ActMove:            (*Room).actMove,
	protocol.ActCollect:         (*Room).actCollect,
	protocol.ActCraft:           (*Room).actCraft,
	protocol.ActAttackShark:     (*Room).actAttackShark,
	protocol.ActLocationUse:     (*Room).actLocationInteract,
	protocol.ActSolvePuzzle:     (*Room).actSolvePuzzle,
	protocol.ActNPCInteract:     (*Room).actNPCInteract,
	protocol.ActNPCTrade:        (*Room).actNPCTrade,
	protocol.ActPirateAttack:    (*Room).actPirateAttack,
	protocol.ActPirateBribe:     (*Room).actPirateBribe,
	protocol.ActRaftBuild:       (*Room).actRaftBuild,
	protocol.ActRaftRepair:      (*Room).actRaftRepair,
	protocol.ActRaftUpgrade:     (*Room).actRaftUpgrade,
	protocol.ActCoopCreate:      (*Room).actCoopCreate,
	protocol.ActCoopJoin:        (*Room).actCoopJoin,
	protocol.ActCoopLeave:       (*Room).actCoopLeave,
	protocol.ActCoopUpdate:      (*Room).actCoopUpdate,
	protocol.ActSurvivalConsume: (*Room).actConsume,
	protocol.ActChat:            (*Room).actChat,
}

func (r *Room) actMove(p *Player, act protocol.ActionMsg) protocol.Result {
	pos := r.clampToArea(protocol.Vec2{X: act.X, Y: act.Y})
	p.Pos = pos
	return protocol.OKResult("", map[string]any{"x": pos.X, "y": pos.Y})
}

func (r *Room) actCollect(p *Player, act protocol.ActionMsg) protocol.Result {
	res, ok := r.resources[act.ResourceID]
	if !ok {
		return protocol.FailResult(protocol.ErrNoResource, "resource not found")
	}
	if dist(p.Pos, res.Position) > collectRange {
		return protocol.FailResult(protocol.ErrOutOfRange, "resource out of reach")
	}
	if !p.Vitals.SpendEnergy(collectEnergy) {
		return protocol.FailResult(protocol.ErrBadRequest, "too exhausted to collect")
	}

	delete(r.resources, act.ResourceID)
	p.Inv[res.Type] += res.Amount
	if res.IsRare {
		p.Achievements["collect_rare_resource"]++
	}

	// Gathering tasks gain progress per pickup; the team bonus is reported
	// back so clients can display it. Tasks still waiting for players grant
	// nothing.
	bonus := 0.0
	for _, t := range r.tasks.Tasks() {
		if t.Type != "resource_gathering" || t.Status != coop.StatusInProgress {
			continue
		}
		if _, ok := t.Roles[p.ID]; ok {
			bonus = r.tasks.Bonus(t)
			break
		}
	}
	r.tasks.AdvanceByType("resource_gathering", p.ID, 5)

	r.broadcastEvent("resource.collected", map[string]any{
		"resource_id": act.ResourceID,
		"player_id":   p.ID,
		"type":        res.Type,
	}, p.ID)

	data := map[string]any{"type": res.Type, "amount": res.Amount}
	if bonus > 0 {
		data["cooperation_bonus"] = bonus
	}
	return protocol.OKResult("collected "+res.Name, data)
}

func (r *Room) actCraft(p *Player, act protocol.ActionMsg) protocol.Result {
	res := r.builder.Craft(act.ItemType, p.Inv, p.Items)
	if !res.OK {
		return protocol.FailResult(protocol.ErrBadRequest, res.Message)
	}
	return protocol.OKResult(res.Message, map[string]any{"item_type": act.ItemType})
}

func hitDamage(requested float64) float64 {
	if requested <= 0 {
		return defaultHitDamage
	}
	return math.Min(requested, maxHitDamage)
}

func (r *Room) actAttackShark(p *Player, act protocol.ActionMsg) protocol.Result {
	s, ok := r.sharks[act.SharkID]
	if !ok {
		return protocol.FailResult(protocol.ErrInvalidTarget, "shark not found")
	}
	if dist(p.Pos, s.Pos) > attackRange {
		return protocol.FailResult(protocol.ErrOutOfRange, "shark out of reach")
	}
	dmg := hitDamage(act.Damage)
	r.damageShark(s, dmg)
	r.tasks.AdvanceByType("shark_defense", p.ID, 10)

	if s.Health <= 0 {
		return protocol.OKResult("shark killed", map[string]any{"shark_id": s.ID})
	}
	r.broadcastEvent("shark.damaged", map[string]any{
		"shark_id":         s.ID,
		"attacker_id":      p.ID,
		"damage":           dmg,
		"remaining_health": s.Health,
	}, p.ID)
	return protocol.OKResult("shark hit", map[string]any{
		"shark_id":         s.ID,
		"remaining_health": s.Health,
	})
}

func (r *Room) actLocationInteract(p *Player, act protocol.ActionMsg) protocol.Result {
	loc, ok := r.locations[act.LocationID]
	if !ok {
		return protocol.FailResult(protocol.ErrInvalidTarget, "location not found")
	}
	return r.interactLocation(p, loc)
}

func (r *Room) actSolvePuzzle(p *Player, act protocol.ActionMsg) protocol.Result {
	loc, ok := r.locations[act.LocationID]
	if !ok {
		return protocol.FailResult(protocol.ErrInvalidTarget, "location not found")
	}
	return r.solvePuzzle(p, loc, act.Solution)
}

func (r *Room) actNPCInteract(p *Player, act protocol.ActionMsg) protocol.Result {
	n, ok := r.npcs[act.NPCID]
	if !ok {
		return protocol.FailResult(protocol.ErrInvalidTarget, "npc not found")
	}
	now := r.now()
	if now.Sub(n.lastInteraction) < npcInteractCooldown {
		return protocol.FailResult(protocol.ErrCooldown, "npc is busy, try again later")
	}
	if dist(p.Pos, n.Pos) > npcInteractRange {
		return protocol.FailResult(protocol.ErrOutOfRange, "too far from npc")
	}

	switch n.Kind {
	case npcKindTrader:
		n.State = npcTrading
		n.lastInteraction = now
		stock := make([]map[string]any, 0, len(n.Stock))
		for i, it := range n.Stock {
			stock = append(stock, map[string]any{
				"index": i, "type": it.Type, "price": it.Price, "quantity": it.Quantity, "is_rare": it.IsRare,
			})
		}
		return protocol.OKResult("trading with merchant", map[string]any{
			"kind":          n.Kind,
			"stock":         stock,
			"currency_type": n.CurrencyType,
		})
	case npcKindPirate:
		return protocol.OKResult("facing a pirate", map[string]any{
			"kind":    n.Kind,
			"options": []string{"attack", "bribe"},
		})
	}
	return protocol.FailResult(protocol.ErrInternal, "unknown npc kind")
}

// actNPCTrade buys stock line ItemIndex from a trading merchant, paying in
// the merchant's currency type.
func (r *Room) actNPCTrade(p *Player, act protocol.ActionMsg) protocol.Result {
	n, ok := r.npcs[act.NPCID]
	if !ok || n.Kind != npcKindTrader {
		return protocol.FailResult(protocol.ErrInvalidTarget, "trader not found")
	}
	if n.State != npcTrading {
		return protocol.FailResult(protocol.ErrConflict, "trader is not in a trade")
	}
	if act.ItemIndex < 0 || act.ItemIndex >= len(n.Stock) {
		return protocol.FailResult(protocol.ErrBadRequest, "no such stock item")
	}
	qty := act.Quantity
	if qty <= 0 {
		qty = 1
	}
	item := &n.Stock[act.ItemIndex]
	if item.Quantity < qty {
		return protocol.FailResult(protocol.ErrConflict, "trader is out of stock")
	}

	total := int(math.Ceil(item.Price * float64(qty)))
	if p.Inv[n.CurrencyType] < total {
		return protocol.FailResult(protocol.ErrBadRequest,
			fmt.Sprintf("need %d %s", total, n.CurrencyType))
	}

	p.Inv[n.CurrencyType] -= total
	p.Inv[item.Type] += qty
	item.Quantity -= qty
	boughtType := item.Type
	if item.Quantity <= 0 {
		n.Stock = append(n.Stock[:act.ItemIndex], n.Stock[act.ItemIndex+1:]...)
	}

	return protocol.OKResult(fmt.Sprintf("bought %d %s", qty, boughtType), map[string]any{
		"type":     boughtType,
		"quantity": qty,
		"paid":     total,
		"currency": n.CurrencyType,
	})
}

func (r *Room) actPirateAttack(p *Player, act protocol.ActionMsg) protocol.Result {
	n, ok := r.npcs[act.NPCID]
	if !ok || n.Kind != npcKindPirate {
		return protocol.FailResult(protocol.ErrInvalidTarget, "pirate not found")
	}
	if dist(p.Pos, n.Pos) > attackRange {
		return protocol.FailResult(protocol.ErrOutOfRange, "pirate out of reach")
	}
	loot := r.damagePirate(n, hitDamage(act.Damage))
	if loot != nil {
		for _, l := range loot {
			p.Inv[l.Type] += l.Amount
		}
		lootData := make([]map[string]any, 0, len(loot))
		for _, l := range loot {
			lootData = append(lootData, map[string]any{"type": l.Type, "amount": l.Amount})
		}
		return protocol.OKResult("pirate defeated", map[string]any{"loot": lootData})
	}
	return protocol.OKResult("pirate hit", map[string]any{"remaining_health": n.Health})
}

// actPirateBribe pays off a pirate with resources. A satisfied pirate leaves
// the payer alone for five minutes.
func (r *Room) actPirateBribe(p *Player, act protocol.ActionMsg) protocol.Result {
	n, ok := r.npcs[act.NPCID]
	if !ok || n.Kind != npcKindPirate {
		return protocol.FailResult(protocol.ErrInvalidTarget, "pirate not found")
	}
	if act.Amount < minimumBribe {
		return protocol.FailResult(protocol.ErrBadRequest,
			fmt.Sprintf("pirate wants at least %d", minimumBribe))
	}
	kind := act.ResourceType
	if kind == "" {
		kind = "metal"
	}
	if p.Inv[kind] < act.Amount {
		return protocol.FailResult(protocol.ErrBadRequest, "not enough "+kind+" to bribe")
	}

	p.Inv[kind] -= act.Amount
	now := r.now()
	n.bribedBy[p.ID] = now.Add(bribeDuration)
	if n.TargetID == p.ID {
		n.TargetID = ""
		n.State = npcIdle
	}
	return protocol.OKResult("pirate accepted the bribe", map[string]any{
		"safe_seconds": bribeDuration.Seconds(),
	})
}

func (r *Room) actRaftBuild(p *Player, act protocol.ActionMsg) protocol.Result {
	qty := act.Quantity
	if qty <= 0 {
		qty = 1
	}
	layout, _ := r.builder.LayoutInfo(p.Raft.Layout)
	if len(p.Raft.Components)+qty > layout.MaxComponents {
		return protocol.FailResult(protocol.ErrConflict, "raft layout is full, upgrade first")
	}
	if !r.builder.ConsumeResources(p.Inv, act.ComponentType, qty) {
		return protocol.FailResult(protocol.ErrBadRequest, "cannot build: unknown type or missing resources")
	}

	var built []string
	for i := 0; i < qty; i++ {
		c, _ := r.builder.CreateComponent(act.ComponentType)
		c.ID = r.newID("comp", &r.nextCompNum)
		c.Position = p.Pos
		c.CreatedAt = r.now()
		p.Raft.Components = append(p.Raft.Components, c)
		built = append(built, c.ID)
	}
	r.recalcRaft(p)
	r.tasks.AdvanceByType("raft_building", p.ID, 10)

	return protocol.OKResult(fmt.Sprintf("built %d %s", qty, act.ComponentType), map[string]any{
		"component_ids": built,
		"max_health":    p.Raft.Props.MaxHealth,
	})
}

func (r *Room) actRaftRepair(p *Player, act protocol.ActionMsg) protocol.Result {
	for _, c := range p.Raft.Components {
		if c.ID != act.ComponentID {
			continue
		}
		res := r.builder.Repair(c, p.Inv, repairAmount)
		if !res.OK {
			return protocol.FailResult(protocol.ErrBadRequest, res.Message)
		}
		return protocol.OKResult(res.Message, map[string]any{
			"component_id": c.ID,
			"restored":     res.Restored,
			"health":       c.Health,
		})
	}
	return protocol.FailResult(protocol.ErrInvalidTarget, "component not found")
}

func (r *Room) actRaftUpgrade(p *Player, act protocol.ActionMsg) protocol.Result {
	res := r.builder.UpgradeLayout(p.Raft.Layout, p.Inv)
	if !res.OK {
		return protocol.FailResult(protocol.ErrBadRequest, res.Message)
	}
	p.Raft.Layout = res.NewLayout
	r.recalcRaft(p)
	p.Raft.Health = p.Raft.Props.MaxHealth

	r.broadcastEvent("raft.upgraded", map[string]any{
		"player_id": p.ID,
		"layout":    res.NewLayout,
	}, p.ID)
	return protocol.OKResult(res.Message, map[string]any{
		"layout":     res.NewLayout,
		"max_health": p.Raft.Props.MaxHealth,
	})
}

// recalcRaft recomputes derived stats. A grown hit-point cap carries the
// current damage over rather than healing it.
func (r *Room) recalcRaft(p *Player) {
	oldMax := p.Raft.Props.MaxHealth
	p.Raft.Props = r.builder.CalculateProperties(p.Raft.Components, p.Raft.Layout)
	if delta := p.Raft.Props.MaxHealth - oldMax; delta > 0 {
		p.Raft.Health += delta
	}
	if p.Raft.Health > p.Raft.Props.MaxHealth {
		p.Raft.Health = p.Raft.Props.MaxHealth
	}
}

func (r *Room) actCoopCreate(p *Player, act protocol.ActionMsg) protocol.Result {
	res := r.tasks.Create(act.TaskType, p.ID, act.Role, r.now())
	if !res.OK {
		return protocol.FailResult(protocol.ErrBadRequest, res.Message)
	}
	r.broadcastEvent("cooperation.created", map[string]any{
		"task_id":   res.Task.ID,
		"task_type": res.Task.Type,
		"initiator": p.ID,
	}, p.ID)
	return protocol.OKResult(res.Message, map[string]any{
		"task_id": res.Task.ID,
		"status":  res.Task.Status,
	})
}

func (r *Room) actCoopJoin(p *Player, act protocol.ActionMsg) protocol.Result {
	res := r.tasks.Join(act.TaskID, p.ID, act.Role)
	if !res.OK {
		return protocol.FailResult(protocol.ErrConflict, res.Message)
	}
	return protocol.OKResult(res.Message, map[string]any{
		"task_id":      res.Task.ID,
		"status":       res.Task.Status,
		"participants": res.Task.Participants(),
	})
}

func (r *Room) actCoopLeave(p *Player, act protocol.ActionMsg) protocol.Result {
	res := r.tasks.Leave(act.TaskID, p.ID)
	if !res.OK {
		return protocol.FailResult(protocol.ErrConflict, res.Message)
	}
	if res.Task.Status == "failed" {
		r.broadcastEvent("cooperation.failed", map[string]any{"task_id": res.Task.ID}, "")
	}
	return protocol.OKResult(res.Message, map[string]any{"status": res.Task.Status})
}

// actCoopUpdate adds Progress points to a running task the player is part of.
func (r *Room) actCoopUpdate(p *Player, act protocol.ActionMsg) protocol.Result {
	t, ok := r.tasks.Get(act.TaskID)
	if !ok {
		return protocol.FailResult(protocol.ErrInvalidTarget, "task not found")
	}
	if _, ok := t.Roles[p.ID]; !ok {
		return protocol.FailResult(protocol.ErrConflict, "not participating in this task")
	}
	res := r.tasks.AddProgress(act.TaskID, act.Progress)
	if !res.OK {
		return protocol.FailResult(protocol.ErrConflict, res.Message)
	}
	if res.Task.Status == "completed" {
		r.broadcastEvent("cooperation.completed", map[string]any{
			"task_id": res.Task.ID,
			"bonus":   r.tasks.Bonus(res.Task),
		}, "")
	}
	return protocol.OKResult("progress updated", map[string]any{
		"progress": res.Task.Progress,
		"status":   res.Task.Status,
	})
}

func (r *Room) actConsume(p *Player, act protocol.ActionMsg) protocol.Result {
	if p.Inv[act.ResourceType] < 1 {
		return protocol.FailResult(protocol.ErrBadRequest, "nothing to consume")
	}
	res := r.surv.Consume(&p.Vitals, act.ResourceType, r.now())
	if !res.OK {
		return protocol.FailResult(protocol.ErrBadRequest, res.Message)
	}
	p.Inv[act.ResourceType]--
	r.tasks.AdvanceByType("cooking", p.ID, 5)
	return protocol.OKResult(res.Message, map[string]any{
		"hunger": p.Vitals.Hunger,
		"thirst": p.Vitals.Thirst,
		"health": p.Vitals.Health,
		"status": p.Vitals.Status(),
	})
}

func (r *Room) actChat(p *Player, act protocol.ActionMsg) protocol.Result {
	text := strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(act.Text))
	if text == "" {
		return protocol.FailResult(protocol.ErrBadRequest, "empty message")
	}
	if len(text) > 100 {
		return protocol.FailResult(protocol.ErrBadRequest, "message too long")
	}
	r.broadcastEvent("chat", map[string]any{
		"from": p.ID,
		"name": p.Name,
		"text": text,
	}, "")
	return protocol.OKResult("", nil)
}
