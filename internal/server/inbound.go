package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"

	"vive-gamer/internal/game"
)

// inboundEvent is the JSON a client sends over the websocket.
type inboundEvent struct {
	Type     string       `json:"type" binding:"required,oneof=join start_game draw clear_canvas guess canvas_snapshot submit_prompt submit_description start_voting vote return_to_lobby"`
	Nickname string       `json:"nickname" binding:"omitempty,nickname"`
	Text     string       `json:"text" binding:"max=200"`
	Points   []game.Point `json:"points" binding:"max=2000"`
	Color    string       `json:"color" binding:"max=32"`
	Width    float64      `json:"width" binding:"gte=0,lte=100"`
	TargetID string       `json:"targetId" binding:"max=64"`
	Image    string       `json:"imageBase64" binding:"max=409600"`
}

var inboundMessages = bindMessages{
	"Type":     {"required": "type is required", "oneof": "unknown event type"},
	"Nickname": {"nickname": "nickname must be 1 to 12 characters"},
	"Text":     {"max": "text is too long"},
	"Points":   {"max": "stroke has too many points"},
	"Width":    {"gte": "stroke width out of range", "lte": "stroke width out of range"},
	"Image":    {"max": "snapshot is too large"},
}

var errMissingNickname = errors.New("nickname is required to join")

// decodeAction parses and validates one client event. PlayerID is left for
// the caller to fill in from the connection.
func decodeAction(data []byte) (game.Action, error) {
	registerValidators()
	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return game.Action{}, fmt.Errorf("decode event: %w", err)
	}
	if err := binding.Validator.ValidateStruct(&ev); err != nil {
		return game.Action{}, errors.New(resolveBindError(err, inboundMessages, "invalid event"))
	}

	action := game.Action{
		Kind:     ev.Type,
		Nickname: strings.TrimSpace(ev.Nickname),
		Text:     ev.Text,
		TargetID: ev.TargetID,
		Image:    ev.Image,
	}
	switch ev.Type {
	case game.ActionJoin:
		if action.Nickname == "" {
			return game.Action{}, errMissingNickname
		}
	case game.ActionDraw:
		if len(ev.Points) == 0 {
			return game.Action{}, errors.New("stroke has no points")
		}
		action.Stroke = &game.Stroke{Points: ev.Points, Color: ev.Color, Width: ev.Width}
	}
	return action, nil
}
