package server

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"vive-gamer/internal/game"
	"vive-gamer/internal/web"
)

const summaryTimeout = 2 * time.Second

var roomTitles = map[game.Mode]string{
	game.ModeBattle:   "AI お絵かきバトル",
	game.ModeOjama:    "おじゃま早押し",
	game.ModeSketch:   "みんなで完成スケッチ",
	game.ModeTeleport: "イメージ伝言ゲーム",
}

type roomURI struct {
	Mode string `uri:"mode" binding:"required,mode"`
}

func (s *Server) handleHome(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), summaryTimeout)
	defer cancel()

	summaries := s.manager.Summaries(ctx)
	rooms := make([]web.RoomStatus, 0, len(summaries))
	for _, summary := range summaries {
		status := web.RoomStatus{
			Mode:        string(summary.Mode),
			Title:       roomTitles[summary.Mode],
			Phase:       summary.Phase,
			Round:       summary.Round,
			TotalRounds: summary.TotalRounds,
		}
		for _, p := range summary.Players {
			status.Players = append(status.Players, web.RoomPlayer{Nickname: p.Nickname, Score: p.Score, Connected: p.Connected})
		}
		rooms = append(rooms, status)
	}
	templ.Handler(web.Home(rooms)).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": s.db != nil})
}

func (s *Server) handleRooms(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), summaryTimeout)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{"rooms": s.manager.Summaries(ctx)})
}

func (s *Server) handleRoom(c *gin.Context) {
	var req roomURI
	if !bindURI(c, &req) {
		return
	}
	room, ok := s.manager.Room(game.Mode(req.Mode))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), summaryTimeout)
	defer cancel()
	summary, err := room.Summary(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room is busy"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
