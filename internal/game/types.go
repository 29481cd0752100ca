// Package game holds the four party-game rooms. Each room is a state
// machine mutated only from its own executor.
package game

import "math"

type Mode string

const (
	ModeBattle   Mode = "battle"
	ModeOjama    Mode = "ojama"
	ModeSketch   Mode = "sketch"
	ModeTeleport Mode = "teleport"
)

var Modes = []Mode{ModeBattle, ModeOjama, ModeSketch, ModeTeleport}

func ParseMode(raw string) (Mode, bool) {
	for _, mode := range Modes {
		if string(mode) == raw {
			return mode, true
		}
	}
	return "", false
}

const (
	ActionJoin              = "join"
	ActionLeave             = "leave"
	ActionStart             = "start_game"
	ActionDraw              = "draw"
	ActionClearCanvas       = "clear_canvas"
	ActionGuess             = "guess"
	ActionSnapshot          = "canvas_snapshot"
	ActionSubmitPrompt      = "submit_prompt"
	ActionSubmitDescription = "submit_description"
	ActionStartVoting       = "start_voting"
	ActionVote              = "vote"
	ActionReturnToLobby     = "return_to_lobby"
)

// Action is an inbound player event, already scoped to one room.
type Action struct {
	Kind     string
	PlayerID string
	Nickname string
	Text     string
	Stroke   *Stroke
	TargetID string
	Image    string
}

// Message is an outbound event.
type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier delivers messages to the connections of one room.
type Notifier interface {
	Broadcast(msg Message)
	BroadcastExcept(playerID string, msg Message)
	Send(playerID string, msg Message)
}

// Recorder stores notable game events. Implementations must not block.
type Recorder interface {
	Record(mode Mode, eventType string, payload map[string]any)
}

type nopRecorder struct{}

func (nopRecorder) Record(Mode, string, map[string]any) {}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// Length is the Euclidean length of the polyline.
func (s Stroke) Length() float64 {
	total := 0.0
	for i := 1; i < len(s.Points); i++ {
		total += math.Hypot(s.Points[i].X-s.Points[i-1].X, s.Points[i].Y-s.Points[i-1].Y)
	}
	return total
}

// Summary is a read-only view of a room for status pages.
type Summary struct {
	Mode        Mode         `json:"mode"`
	Phase       string       `json:"phase"`
	Round       int          `json:"round"`
	TotalRounds int          `json:"totalRounds"`
	Players     []PlayerView `json:"players"`
}
