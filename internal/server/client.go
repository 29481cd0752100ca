package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"vive-gamer/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// client is one websocket connection. Its id doubles as the player id.
type client struct {
	id       string
	gw       *gateway
	conn     *websocket.Conn
	send     chan []byte
	limiter  *rate.Limiter
	dispatch func(game.Action)
	log      *logrus.Entry
}

// enqueue must be called with the gateway read lock held. A client that
// cannot keep up is disconnected.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("send queue full, dropping client")
		go c.conn.Close()
	}
}

func (c *client) readPump() {
	defer func() {
		if c.gw.unregister(c) {
			c.dispatch(game.Action{Kind: game.ActionLeave, PlayerID: c.id})
		}
		_ = c.conn.Close()
		c.log.Info("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("websocket read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if !c.limiter.Allow() {
			c.log.Debug("rate limited, dropping event")
			continue
		}
		action, err := decodeAction(data)
		if err != nil {
			c.log.WithError(err).Debug("rejected event")
			continue
		}
		action.PlayerID = c.id
		c.dispatch(action)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
