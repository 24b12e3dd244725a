package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	RoomPreference  string `json:"room_preference,omitempty"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerID        string     `json:"player_id"`
	RoomID          string     `json:"room_id"`
	RoomParams      RoomParams `json:"room_params"`
}

type RoomParams struct {
	TickRateHz    int     `json:"tick_rate_hz"`
	AreaHalfSize  float64 `json:"area_half_size"`
	MaxPlayers    int     `json:"max_players"`
	MinutesPerSec float64 `json:"minutes_per_real_second"`
}

// Action names carried in ActionMsg.Action.
const (
	ActMove            = "player.move"
	ActCollect         = "resource.collect"
	ActCraft           = "craft.item"
	ActAttackShark     = "shark.attack"
	ActLocationUse     = "location.interact"
	ActSolvePuzzle     = "location.solvePuzzle"
	ActNPCInteract     = "npc.interact"
	ActNPCTrade        = "npc.trade"
	ActPirateAttack    = "pirate.attack"
	ActPirateBribe     = "pirate.bribe"
	ActRaftBuild       = "raft.build"
	ActRaftRepair      = "raft.repair"
	ActRaftUpgrade     = "raft.upgrade"
	ActCoopCreate      = "cooperation.create"
	ActCoopJoin        = "cooperation.join"
	ActCoopLeave       = "cooperation.leave"
	ActCoopUpdate      = "cooperation.update"
	ActSurvivalConsume = "survival.consume"
	ActChat            = "chat.message"
)

// ACTION (client -> server). One struct covers every action; unused fields are
// ignored by the handler for that action type.
type ActionMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Action          string `json:"action"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	ResourceID   string  `json:"resource_id,omitempty"`
	ResourceType string  `json:"resource_type,omitempty"`
	Amount       int     `json:"amount,omitempty"`
	ItemType     string  `json:"item_type,omitempty"`
	SharkID      string  `json:"shark_id,omitempty"`
	Damage       float64 `json:"damage,omitempty"`
	LocationID   string  `json:"location_id,omitempty"`
	Solution     string  `json:"solution,omitempty"`
	NPCID        string  `json:"npc_id,omitempty"`
	ItemIndex    int     `json:"item_index,omitempty"`
	Quantity     int     `json:"quantity,omitempty"`

	ComponentType string `json:"component_type,omitempty"`
	ComponentID   string `json:"component_id,omitempty"`

	TaskID   string         `json:"task_id,omitempty"`
	TaskType string         `json:"task_type,omitempty"`
	Role     string         `json:"role,omitempty"`
	Progress float64        `json:"progress,omitempty"`
	TaskData map[string]any `json:"task_data,omitempty"`

	Text string `json:"text,omitempty"`
}

// RESULT (server -> client): synchronous reply to an ACTION.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	Result
}

// Result is the structured outcome of an action handler. Failed actions never
// mutate room state.
type Result struct {
	OK      bool           `json:"ok"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func OKResult(message string, data map[string]any) Result {
	return Result{OK: true, Message: message, Data: data}
}

func FailResult(code, message string) Result {
	if !IsKnownCode(code) {
		code = ErrInternal
	}
	return Result{OK: false, Code: code, Message: message}
}

// STATE (server -> client): per-tick snapshot plus queued events.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Sharks    []SharkObs    `json:"sharks"`
	NPCs      []NPCObs      `json:"npcs"`
	Players   []PlayerObs   `json:"players"`
	Weather   WeatherObs    `json:"weather"`
	Resources []ResourceObs `json:"resources"`

	Events []Event `json:"events,omitempty"`
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SharkObs struct {
	ID       string  `json:"id"`
	Position Vec2    `json:"position"`
	State    string  `json:"state"`
	Health   float64 `json:"health"`
}

type NPCObs struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Position Vec2     `json:"position"`
	State    string   `json:"state"`
	Health   *float64 `json:"health,omitempty"` // pirates only
}

type PlayerObs struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Position   Vec2         `json:"position"`
	RaftHealth float64      `json:"raft_health"`
	Survival   *SurvivalObs `json:"survival,omitempty"`
}

type SurvivalObs struct {
	Hunger    float64 `json:"hunger"`
	Thirst    float64 `json:"thirst"`
	Health    float64 `json:"health"`
	Energy    float64 `json:"energy"`
	IsHungry  bool    `json:"is_hungry"`
	IsThirsty bool    `json:"is_thirsty"`
	IsInjured bool    `json:"is_injured"`
}

type WeatherObs struct {
	Weather   string             `json:"weather"`
	Time      string             `json:"time"`
	TimeOfDay int                `json:"time_of_day"`
	Effects   map[string]float64 `json:"effects"`
}

type ResourceObs struct {
	ID       string `json:"id"`
	Kind     string `json:"type"`
	Position Vec2   `json:"position"`
}

// LocationObs appears in INIT and in location.spawn events; ongoing STATE
// frames omit locations because they rarely change.
type LocationObs struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Position     Vec2    `json:"position"`
	Size         float64 `json:"size"`
	Depleted     bool    `json:"depleted"`
	PuzzleSolved bool    `json:"puzzle_solved"`
}

// INIT (server -> client): full picture sent once after WELCOME.
type InitMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	RoomID          string        `json:"room_id"`
	Player          PlayerObs     `json:"player"`
	Players         []PlayerObs   `json:"players"`
	Sharks          []SharkObs    `json:"sharks"`
	NPCs            []NPCObs      `json:"npcs"`
	Locations       []LocationObs `json:"locations"`
	Resources       []ResourceObs `json:"resources"`
	Weather         WeatherObs    `json:"weather"`
}
