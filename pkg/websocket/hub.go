package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub tracks connected clients and their per-user rooms. Every client
// joins the room named after its user id on registration, so a ride
// change can be pushed to whichever devices that user has open.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	config     *Config
	mutex      sync.RWMutex
}

type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Config controls connection buffering, keepalive timing and the
// origins allowed to open a socket.
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	AllowedOrigins  []string
}

func (c *Config) withDefaults() *Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = 1024
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = 1024
	}
	if out.PongWait <= 0 {
		out.PongWait = 60 * time.Second
	}
	if out.PingPeriod <= 0 {
		out.PingPeriod = out.PongWait * 9 / 10
	}
	if out.WriteWait <= 0 {
		out.WriteWait = 10 * time.Second
	}
	return &out
}

func NewHub(config *Config) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		config:     config.withDefaults(),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	log.Printf("Client registered: %s", client.UserID.Hex())

	// Join user to their personal room
	personalRoom := "user_" + client.UserID.Hex()
	h.joinRoom(client, personalRoom)

	// Riders share a room for fleet-wide announcements
	if client.UserType == "rider" {
		h.joinRoom(client, "riders")
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeClientLocked(client)
}

// dropClient removes a saturated client. It is safe to call from any
// goroutine and to call more than once for the same client; only the
// first removal closes the send channel.
func (h *Hub) dropClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeClientLocked(client)
}

// removeClientLocked is the single place a client leaves the hub: it
// deletes the client from the client set and every room, then closes
// the send channel. Caller must hold the write lock. Because removal
// and close are atomic here, senders iterating under the read lock can
// never see a closed channel.
func (h *Hub) removeClientLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)

	for roomID, room := range h.rooms {
		if _, exists := room[client]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	close(client.send)

	log.Printf("Client unregistered: %s", client.UserID.Hex())
}

func (h *Hub) broadcastMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	if msg.RoomID != "" {
		h.sendToRoom(msg.RoomID, msg)
		return
	}
	h.sendToAll(msg)
}

// sendToAll and sendToRoom only read hub state under the read lock;
// clients that cannot keep up are collected and removed afterwards
// under the write lock, so concurrent senders never mutate the maps
// they are iterating.

func (h *Hub) sendToAll(message Message) {
	data, _ := json.Marshal(message)

	h.mutex.RLock()
	var stalled []*Client
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stalled {
		h.dropClient(client)
	}
}

func (h *Hub) sendToRoom(roomID string, message Message) {
	data, _ := json.Marshal(message)

	h.mutex.RLock()
	var stalled []*Client
	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stalled {
		h.dropClient(client)
	}
}

// SendToUser delivers a message to every connection of the user.
// Delivery is best-effort: a saturated client is dropped, never
// waited on.
func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) {
	roomID := "user_" + userID.Hex()
	h.sendToRoom(roomID, message)
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)

		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
