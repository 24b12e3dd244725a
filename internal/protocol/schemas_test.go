package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	actionSchema := compile("action.schema.json")
	resultSchema := compile("result.schema.json")
	stateSchema := compile("state.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"castaway",
	  "room_preference":"",
	  "max_queue":8
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "player_id":"P1",
	  "room_id":"room-1",
	  "room_params":{
	    "tick_rate_hz":60,
	    "area_half_size":2000,
	    "max_players":4,
	    "minutes_per_real_second":1.0
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var action any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACTION",
	  "protocol_version":"1.0",
	  "id":"a_000001",
	  "action":"resource.collect",
	  "resource_id":"res_wood_001"
	}`), &action)
	validate(actionSchema, action)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "ref":"a_000001",
	  "ok":false,
	  "code":"E_OUT_OF_RANGE",
	  "message":"too far from resource"
	}`), &result)
	validate(resultSchema, result)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "tick":120,
	  "sharks":[{"id":"shark_1","position":{"x":100,"y":-50},"state":"patrolling","health":100}],
	  "npcs":[{"id":"npc_1","kind":"trader","position":{"x":0,"y":300},"state":"idle"}],
	  "players":[{
	    "id":"P1","name":"castaway","position":{"x":0,"y":0},"raft_health":100,
	    "survival":{"hunger":80,"thirst":75,"health":100,"energy":90,
	      "is_hungry":false,"is_thirsty":false,"is_injured":false}
	  }],
	  "weather":{"weather":"clear","time":"day","time_of_day":542,"effects":{"visibility":1.0}},
	  "resources":[{"id":"res_wood_001","type":"wood","position":{"x":40,"y":-12}}],
	  "events":[{"type":"chat.message","player_id":"P1","text":"land ho"}]
	}`), &state)
	validate(stateSchema, state)
}
