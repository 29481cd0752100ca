package server

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/game"
)

// gateway tracks the websocket clients of one room and implements
// game.Notifier for it.
type gateway struct {
	mode    game.Mode
	log     *logrus.Entry
	mu      sync.RWMutex
	clients map[string]*client
}

func newGateway(mode game.Mode, log logrus.FieldLogger) *gateway {
	return &gateway{
		mode:    mode,
		log:     log.WithField("mode", string(mode)),
		clients: make(map[string]*client),
	}
}

func (g *gateway) register(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.id] = c
}

// unregister removes c and closes its send queue. It reports whether c was
// still registered.
func (g *gateway) unregister(c *client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.clients[c.id] != c {
		return false
	}
	delete(g.clients, c.id)
	close(c.send)
	return true
}

func (g *gateway) closeAll() {
	g.mu.Lock()
	clients := make([]*client, 0, len(g.clients))
	for id, c := range g.clients {
		delete(g.clients, id)
		close(c.send)
		clients = append(clients, c)
	}
	g.mu.Unlock()
	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (g *gateway) count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

func (g *gateway) Broadcast(msg game.Message) {
	g.BroadcastExcept("", msg)
}

func (g *gateway) BroadcastExcept(playerID string, msg game.Message) {
	data, ok := g.encode(msg)
	if !ok {
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for id, c := range g.clients {
		if id != playerID {
			c.enqueue(data)
		}
	}
}

func (g *gateway) Send(playerID string, msg game.Message) {
	data, ok := g.encode(msg)
	if !ok {
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.clients[playerID]; ok {
		c.enqueue(data)
	}
}

func (g *gateway) encode(msg game.Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		g.log.WithError(err).WithField("type", msg.Type).Warn("failed to encode message")
		return nil, false
	}
	return data, true
}
