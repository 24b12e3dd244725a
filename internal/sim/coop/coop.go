// Package coop manages shared player tasks and the bonuses extra
// participants and specialist roles contribute.
package coop

import (
	"fmt"
	"math"
	"time"

	"adrift.gg/internal/sim/catalog"
)

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Task is one cooperative effort. A task waits until enough players join,
// runs while staffed, and fails if its initiator walks away.
type Task struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	InitiatorID string             `json:"initiator_id"`
	Roles       map[string]string  `json:"roles"` // player id -> role
	Progress    float64            `json:"progress"`
	Status      string             `json:"status"`
	Data        map[string]float64 `json:"data,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (t *Task) Participants() int { return len(t.Roles) }

type Manager struct {
	cat     *catalog.Catalog
	tasks   map[string]*Task
	nextNum int
}

func NewManager(cat *catalog.Catalog) *Manager {
	return &Manager{cat: cat, tasks: make(map[string]*Task)}
}

type OpResult struct {
	OK      bool
	Message string
	Task    *Task
}

// Create opens a task with the initiator as its first participant.
func (m *Manager) Create(taskType, initiatorID, role string, now time.Time) OpResult {
	def, ok := m.cat.TaskTypes[taskType]
	if !ok {
		return OpResult{Message: "unknown task type"}
	}
	if role != "" {
		if _, ok := m.cat.Roles[role]; !ok {
			return OpResult{Message: "unknown role"}
		}
	}
	m.nextNum++
	t := &Task{
		ID:          fmt.Sprintf("task_%04d", m.nextNum),
		Type:        taskType,
		InitiatorID: initiatorID,
		Roles:       map[string]string{initiatorID: role},
		Status:      StatusWaiting,
		CreatedAt:   now,
	}
	if t.Participants() >= def.MinPlayers {
		t.Status = StatusInProgress
	}
	m.tasks[t.ID] = t
	return OpResult{OK: true, Message: fmt.Sprintf("started %s", def.Name), Task: t}
}

// Join adds a participant. Completed and failed tasks cannot be joined.
func (m *Manager) Join(taskID, playerID, role string) OpResult {
	t, ok := m.tasks[taskID]
	if !ok {
		return OpResult{Message: "task not found"}
	}
	if t.Status == StatusCompleted || t.Status == StatusFailed {
		return OpResult{Message: "task is over"}
	}
	if _, ok := t.Roles[playerID]; ok {
		return OpResult{Message: "already participating"}
	}
	if role != "" {
		if _, ok := m.cat.Roles[role]; !ok {
			return OpResult{Message: "unknown role"}
		}
	}
	t.Roles[playerID] = role
	if def, ok := m.cat.TaskTypes[t.Type]; ok && t.Participants() >= def.MinPlayers {
		t.Status = StatusInProgress
	}
	return OpResult{OK: true, Message: "joined task", Task: t}
}

// Leave removes a participant. The initiator leaving fails the task; dropping
// below the minimum head count sends it back to waiting.
func (m *Manager) Leave(taskID, playerID string) OpResult {
	t, ok := m.tasks[taskID]
	if !ok {
		return OpResult{Message: "task not found"}
	}
	if _, ok := t.Roles[playerID]; !ok {
		return OpResult{Message: "not participating"}
	}
	delete(t.Roles, playerID)

	if playerID == t.InitiatorID {
		t.Status = StatusFailed
		return OpResult{OK: true, Message: "task abandoned by initiator", Task: t}
	}
	if def, ok := m.cat.TaskTypes[t.Type]; ok && t.Status == StatusInProgress && t.Participants() < def.MinPlayers {
		t.Status = StatusWaiting
	}
	return OpResult{OK: true, Message: "left task", Task: t}
}

// AddProgress advances a running task, completing it at 100.
func (m *Manager) AddProgress(taskID string, delta float64) OpResult {
	t, ok := m.tasks[taskID]
	if !ok {
		return OpResult{Message: "task not found"}
	}
	if t.Status != StatusInProgress {
		return OpResult{Message: "task is not running"}
	}
	t.Progress = math.Min(100, math.Max(0, t.Progress+delta))
	if t.Progress >= 100 {
		t.Status = StatusCompleted
	}
	return OpResult{OK: true, Message: "progress updated", Task: t}
}

// AdvanceByType adds progress to every running task of the given type that
// the player participates in. Used for implicit progress, e.g. gathering.
func (m *Manager) AdvanceByType(taskType, playerID string, delta float64) {
	for _, t := range m.tasks {
		if t.Type != taskType || t.Status != StatusInProgress {
			continue
		}
		if _, ok := t.Roles[playerID]; !ok {
			continue
		}
		m.AddProgress(t.ID, delta)
	}
}

// Bonus computes a task's total bonus: a capped per-extra-participant
// increment plus each participant's role bonus for this task type.
func (m *Manager) Bonus(t *Task) float64 {
	def, ok := m.cat.TaskTypes[t.Type]
	if !ok {
		return 0
	}
	extra := float64(t.Participants() - 1)
	if extra < 0 {
		extra = 0
	}
	bonus := math.Min(def.MaxBonus, extra*def.PerParticipant)
	for _, role := range t.Roles {
		if rdef, ok := m.cat.Roles[role]; ok {
			bonus += rdef.TaskBonuses[t.Type]
		}
	}
	return bonus
}

func (m *Manager) Get(taskID string) (*Task, bool) {
	t, ok := m.tasks[taskID]
	return t, ok
}

// Tasks returns every live (waiting or running) task.
func (m *Manager) Tasks() []*Task {
	out := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.Status == StatusWaiting || t.Status == StatusInProgress {
			out = append(out, t)
		}
	}
	return out
}

// DropPlayer removes the player from every live task on disconnect.
func (m *Manager) DropPlayer(playerID string) {
	for id, t := range m.tasks {
		if t.Status != StatusWaiting && t.Status != StatusInProgress {
			continue
		}
		if _, ok := t.Roles[playerID]; ok {
			m.Leave(id, playerID)
		}
	}
}
