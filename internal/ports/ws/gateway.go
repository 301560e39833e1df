// Package ws serves Truco rooms to websocket clients outside Nakama.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"truco/internal/app"
	"truco/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

const requestTimeout = 5 * time.Second

// Rooms is the room API the gateway drives. *app.Registry implements it.
type Rooms interface {
	JoinRoom(ctx context.Context, roomID string, id app.Identity) (int, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error
	PlayerDisconnected(ctx context.Context, roomID, playerID string) error
	StartRound(ctx context.Context, roomID, playerID string) error
	PlayCard(ctx context.Context, roomID, playerID string, cardIndex int, hidden bool) error
	CallTruco(ctx context.Context, roomID, playerID string) error
	RespondTruco(ctx context.Context, roomID, playerID string, resp domain.Response) error
	RequestNewRound(ctx context.Context, roomID, playerID string) error
	Snapshot(ctx context.Context, roomID, playerID string) (app.Snapshot, error)
}

var (
	errNotInRoom = fmt.Errorf("%w: join a room first", domain.ErrNotAllowed)
	errMalformed = fmt.Errorf("%w: malformed message", domain.ErrNotAllowed)
	errReplaced  = fmt.Errorf("%w: seat taken over by a new connection", domain.ErrNotAllowed)
)

// Gateway upgrades HTTP requests to websocket clients and routes room events
// back to them. It is the app.Sink of the registry it drives.
type Gateway struct {
	logger   runtime.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	rooms   Rooms
	clients map[string]map[string]*client // room id -> user id -> client
}

// NewGateway creates a gateway. Bind must be called before serving.
func NewGateway(logger runtime.Logger) *Gateway {
	return &Gateway{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]map[string]*client),
	}
}

// Bind sets the rooms the gateway forwards client actions to.
func (g *Gateway) Bind(rooms Rooms) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms = rooms
}

func (g *Gateway) roomAPI() Rooms {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rooms
}

// Connections returns the number of clients seated through this gateway.
func (g *Gateway) Connections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, room := range g.clients {
		n += len(room)
	}
	return n
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("ws: Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	c := newClient(g, conn)
	go c.writeLoop()
	go c.readLoop()
}

// Deliver sends room events to the clients of roomID. Events with recipients
// go only to those users and are dropped when none is connected here.
func (g *Gateway) Deliver(roomID string, events []app.Event) {
	g.mu.RLock()
	conns := make(map[string]*client, len(g.clients[roomID]))
	for uid, c := range g.clients[roomID] {
		conns[uid] = c
	}
	g.mu.RUnlock()

	for _, ev := range events {
		data, err := encode(string(ev.Kind), ev.Payload)
		if err != nil {
			g.logger.Error("ws: Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if c, ok := conns[uid]; ok {
					c.enqueue(data)
				}
			}
			continue
		}
		for _, c := range conns {
			c.enqueue(data)
		}
	}
}

// attach maps (roomID, userID) to c and returns the client it displaced.
func (g *Gateway) attach(roomID, userID string, c *client) *client {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.clients[roomID]
	if !ok {
		room = make(map[string]*client)
		g.clients[roomID] = room
	}
	prev := room[userID]
	room[userID] = c
	return prev
}

// detach removes the mapping if it still points at c.
func (g *Gateway) detach(roomID, userID string, c *client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.clients[roomID]
	if room[userID] != c {
		return false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(g.clients, roomID)
	}
	return true
}

// restore puts prev back after a failed join by c.
func (g *Gateway) restore(roomID, userID string, c, prev *client) {
	if prev == nil {
		g.detach(roomID, userID, c)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if room := g.clients[roomID]; room != nil && room[userID] == c {
		room[userID] = prev
	}
}

// disconnected runs when a client's connection ends.
func (g *Gateway) disconnected(c *client) {
	if c.roomID == "" || !g.detach(c.roomID, c.userID, c) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := g.roomAPI().PlayerDisconnected(ctx, c.roomID, c.userID); err != nil && !errors.Is(err, app.ErrRoomNotFound) {
		g.logger.Warn("ws: PlayerDisconnected %s in %s: %v", c.userID, c.roomID, err)
	}
}

// handle runs one client message. Only the client's read loop calls it.
func (g *Gateway) handle(c *client, msg Message) {
	rooms := g.roomAPI()
	if rooms == nil {
		c.sendError(fmt.Errorf("%w: server not ready", domain.ErrNotAllowed))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case TypeJoin:
		err = g.handleJoin(ctx, rooms, c, msg.Payload)
	case TypeLeave:
		err = g.handleLeave(ctx, rooms, c)
	case TypeStartRound:
		err = c.inRoom(func(room, user string) error { return rooms.StartRound(ctx, room, user) })
	case TypePlayCard:
		var req playCardRequest
		if err = decode(msg.Payload, &req); err == nil {
			err = c.inRoom(func(room, user string) error {
				return rooms.PlayCard(ctx, room, user, req.CardIndex, req.Hidden)
			})
		}
	case TypeCallTruco:
		err = c.inRoom(func(room, user string) error { return rooms.CallTruco(ctx, room, user) })
	case TypeRespondTruco:
		var req respondTrucoRequest
		if err = decode(msg.Payload, &req); err == nil {
			err = c.inRoom(func(room, user string) error { return rooms.RespondTruco(ctx, room, user, req.Response) })
		}
	case TypeRequestNewRound:
		err = c.inRoom(func(room, user string) error { return rooms.RequestNewRound(ctx, room, user) })
	case TypeSnapshot:
		err = c.inRoom(func(room, user string) error {
			snap, err := rooms.Snapshot(ctx, room, user)
			if err != nil {
				return err
			}
			return c.send(TypeSnapshot, snap)
		})
	default:
		err = fmt.Errorf("%w: unknown message type %q", domain.ErrNotAllowed, msg.Type)
	}

	if err != nil {
		g.logger.Debug("ws: %s from %s rejected: %v", msg.Type, c.remote(), err)
		c.sendError(err)
	}
}

func (g *Gateway) handleJoin(ctx context.Context, rooms Rooms, c *client, payload json.RawMessage) error {
	if c.roomID != "" {
		return fmt.Errorf("%w: already in room %s", domain.ErrNotAllowed, c.roomID)
	}
	var req joinRequest
	if err := decode(payload, &req); err != nil {
		return err
	}
	if req.RoomID == "" {
		return fmt.Errorf("%w: room_id is required", domain.ErrNotAllowed)
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}

	// The client must be reachable before the join so it gets the join snapshots.
	prev := g.attach(req.RoomID, req.UserID, c)
	seat, err := rooms.JoinRoom(ctx, req.RoomID, app.Identity{UserID: req.UserID, Username: req.Username})
	if err != nil {
		g.restore(req.RoomID, req.UserID, c, prev)
		return err
	}
	if prev != nil {
		prev.roomLost()
	}
	c.roomID, c.userID = req.RoomID, req.UserID
	g.logger.Info("ws: %s joined %s as %s (seat %d)", c.remote(), req.RoomID, req.UserID, seat)
	return c.send(TypeJoined, joinedEvent{RoomID: req.RoomID, UserID: req.UserID, Seat: seat})
}

func (g *Gateway) handleLeave(ctx context.Context, rooms Rooms, c *client) error {
	return c.inRoom(func(room, user string) error {
		if err := rooms.LeaveRoom(ctx, room, user); err != nil {
			return err
		}
		g.detach(room, user, c)
		c.roomID, c.userID = "", ""
		return c.send(TypeLeft, joinedEvent{RoomID: room, UserID: user, Seat: -1})
	})
}

func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", domain.ErrNotAllowed, err)
	}
	return nil
}
