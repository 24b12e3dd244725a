package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"adrift.gg/internal/protocol"
)

// A throwaway client that joins a room, drifts around, and grabs whatever
// floats within reach. Useful for smoke-testing a running server.
func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		MaxQueue:        8,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{conn: conn, log: logger, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.playerID = w.PlayerID
			logger.Printf("WELCOME player_id=%s room=%s tick_rate=%d", w.PlayerID, w.RoomID, w.RoomParams.TickRateHz)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			b.handleState(&st)

		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			if !res.OK {
				logger.Printf("RESULT ref=%s %s: %s", res.Ref, res.Code, res.Message)
			}
		}
	}
}

type bot struct {
	conn     *websocket.Conn
	log      *log.Logger
	rng      *rand.Rand
	playerID string
	pos      protocol.Vec2
	actNum   int
}

func (b *bot) handleState(st *protocol.StateMsg) {
	for _, p := range st.Players {
		if p.ID == b.playerID {
			b.pos = p.Position
		}
	}

	// Collect the nearest resource in reach, otherwise drift toward one.
	var nearest *protocol.ResourceObs
	best := math.Inf(1)
	for i := range st.Resources {
		res := &st.Resources[i]
		d := math.Hypot(res.Position.X-b.pos.X, res.Position.Y-b.pos.Y)
		if d < best {
			best = d
			nearest = res
		}
	}
	switch {
	case nearest != nil && best < 140:
		b.send(protocol.ActionMsg{Action: protocol.ActCollect, ResourceID: nearest.ID})
	case nearest != nil && st.Tick%30 == 0:
		b.send(protocol.ActionMsg{Action: protocol.ActMove, X: nearest.Position.X, Y: nearest.Position.Y})
	case st.Tick%300 == 0:
		b.send(protocol.ActionMsg{
			Action: protocol.ActMove,
			X:      b.pos.X + float64(b.rng.Intn(400)-200),
			Y:      b.pos.Y + float64(b.rng.Intn(400)-200),
		})
	}
}

func (b *bot) send(act protocol.ActionMsg) {
	b.actNum++
	act.Type = protocol.TypeAction
	act.ProtocolVersion = protocol.Version
	act.ID = fmt.Sprintf("a_%06d", b.actNum)
	_ = b.conn.WriteJSON(act)
}
