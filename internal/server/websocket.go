package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"vive-gamer/internal/game"
)

func (s *Server) handleWebsocket(c *gin.Context) {
	var req roomURI
	if !bindURI(c, &req) {
		return
	}
	mode := game.Mode(req.Mode)
	room, ok := s.manager.Room(mode)
	gw := s.gateways[mode]
	if !ok || gw == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	id := uuid.NewString()
	cl := &client{
		id:       id,
		gw:       gw,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		limiter:  rate.NewLimiter(rate.Limit(s.cfg.WSEventsPerSecond), s.cfg.WSEventBurst),
		dispatch: room.Dispatch,
		log: s.log.WithFields(logrus.Fields{
			"conn_id": id,
			"mode":    string(mode),
			"remote":  c.Request.RemoteAddr,
		}),
	}
	gw.register(cl)
	cl.log.Info("client connected")
	gw.Send(id, game.Message{Type: "connected", Payload: map[string]any{"playerId": id, "mode": string(mode)}})

	go cl.writePump()
	go cl.readPump()
}
