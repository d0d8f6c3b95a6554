package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/oplog"
)

// DefaultSaveInterval is how often dirty boards are persisted.
const DefaultSaveInterval = 30 * time.Second

// BoardLoader returns the persisted board for a room. A nil board with a
// nil error starts the room empty.
type BoardLoader func(roomID string) (*document.Board, error)

// BoardSaver persists a room's board.
type BoardSaver func(roomID string, board *document.Board) error

type Room struct {
	roomID   string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *oplog.BoardState
}

func NewRoom(roomID string, board *document.Board) *Room {
	return &Room{
		roomID:   roomID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		state:    oplog.NewBoardState(board),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // roomID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	loader       BoardLoader
	saver        BoardSaver
	saveInterval time.Duration
}

func NewHub(loader BoardLoader, saver BoardSaver) *Hub {
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		loader:       loader,
		saver:        saver,
		saveInterval: DefaultSaveInterval,
	}
}

// SetSaveInterval changes the periodic save cadence. Call before Run.
func (h *Hub) SetSaveInterval(d time.Duration) {
	if d > 0 {
		h.saveInterval = d
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	ticker := time.NewTicker(h.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirty()
		case <-h.stop:
			h.saveDirty()
			return
		}
	}
}

// Stop ends Run after saving every dirty board. It blocks until Run has
// returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) loadBoard(roomID string) *document.Board {
	if h.loader == nil {
		return nil
	}
	board, err := h.loader(roomID)
	if err != nil {
		slog.Warn("load board, starting empty", "room", roomID, "error", err)
		return nil
	}
	return board
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RoomID]
	if !ok {
		room = NewRoom(client.RoomID, h.loadBoard(client.RoomID))
		h.rooms[client.RoomID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, UserID: client.UserID}))
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Board: room.state.Board(), ServerSeq: room.state.Seq()}))
	client.Send(room.presence.StateMessage())

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.RoomID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "room", client.RoomID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RoomID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.RoomID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.RoomID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "room", client.RoomID)
}

func (h *Hub) saveDirty() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

func (h *Hub) saveRoom(room *Room) {
	if h.saver == nil || !room.state.TakeDirty() {
		return
	}
	if err := h.saver(room.roomID, room.state.Board()); err != nil {
		slog.Error("save board", "room", room.roomID, "error", err)
		return
	}
	slog.Info("board saved", "room", room.roomID, "seq", room.state.Seq())
}

func (h *Hub) room(roomID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[roomID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "unknown message type: " + msg.Type}))
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.room(sender.RoomID)
	if !ok {
		return
	}

	merged := room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outMsg := newMessage(TypePresenceUpdate, merged)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.RoomID, outMsg, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{Reason: "invalid payload"}))
		return
	}
	op := submit.Operation

	room, ok := h.room(sender.RoomID)
	if !ok {
		return
	}

	seq, err := room.state.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.ID, "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{OperationID: op.ID, Reason: err.Error()}))
		return
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: oplog.ServerTimestamp(),
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.RoomID, out, sender.ClientID)
}

func (h *Hub) broadcastToRoom(roomID string, msg *Message, excludeClientID string) {
	// Send never blocks, and holding the read lock keeps removeClient from
	// closing a send channel mid-broadcast.
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
