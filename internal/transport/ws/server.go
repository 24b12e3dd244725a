// Package ws exposes rooms over a WebSocket endpoint. One connection is one
// player session: HELLO in, WELCOME and INIT out, then ACTION/RESULT pairs
// interleaved with per-tick STATE frames.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/roommgr"
)

const (
	handshakeDeadline = 5 * time.Second
	readDeadline      = 60 * time.Second
	writeDeadline     = 5 * time.Second
)

type Server struct {
	rooms *roommgr.Manager
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(rooms *roommgr.Manager, logger *log.Logger) *Server {
	return &Server{
		rooms: rooms,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess, out, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine drains the room's frames and the action replies.
		// It is the connection's only writer after the handshake. Replies
		// ride their own channel: the room may drop a stale frame from out
		// under backpressure, and a RESULT must never be the one dropped.
		results := make(chan []byte, 16)
		go func() {
			write := func(b []byte) bool {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return false
				}
				return true
			}
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-results:
					if !write(b) {
						return
					}
				case b, open := <-out:
					if !open {
						return
					}
					if !write(b) {
						return
					}
				}
			}
		}()

		s.readLoop(ctx, conn, sess, results)
		s.rooms.Leave(sess)
	}
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess roommgr.Session, results chan []byte) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeAction {
			continue
		}
		var act protocol.ActionMsg
		if err := json.Unmarshal(msg, &act); err != nil {
			continue
		}
		if act.ProtocolVersion != protocol.Version {
			queueResult(ctx, results, act.ID, protocol.FailResult(protocol.ErrProtoBadRequest, "bad protocol_version"))
			continue
		}

		res, err := s.rooms.Act(ctx, sess, act)
		if err != nil {
			res = protocol.FailResult(protocol.ErrInternal, "room unavailable")
		}
		queueResult(ctx, results, act.ID, res)
	}
}

// queueResult hands the RESULT frame to the writer goroutine.
func queueResult(ctx context.Context, out chan []byte, ref string, res protocol.Result) {
	b, err := json.Marshal(protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             ref,
		Result:          res,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

// handshake reads HELLO and joins the player into a room. The WELCOME and
// INIT frames go out on the connection before any STATE frame.
func (s *Server) handshake(conn *websocket.Conn) (roommgr.Session, chan []byte, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeDeadline))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return roommgr.Session{}, nil, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return roommgr.Session{}, nil, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return roommgr.Session{}, nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return roommgr.Session{}, nil, false
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "castaway"
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out := make(chan []byte, maxQ)

	ctx, cancel := context.WithTimeout(context.Background(), handshakeDeadline)
	defer cancel()
	sess, resp, err := s.rooms.Join(ctx, hello.PlayerName, hello.RoomPreference, out)
	if err != nil {
		s.log.Printf("ws: join for %q failed: %v", hello.PlayerName, err)
		closePolicy(conn, "join failed")
		return roommgr.Session{}, nil, false
	}

	if !writeJSON(conn, resp.Welcome) || !writeJSON(conn, resp.Init) {
		s.rooms.Leave(sess)
		return roommgr.Session{}, nil, false
	}
	return sess, out, true
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteMessage(websocket.TextMessage, b) == nil
}
