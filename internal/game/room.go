package game

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/scoring"
)

const (
	phaseLobby           = "lobby"
	phasePlaying         = "playing"
	phaseRoundEnd        = "round_end"
	phaseGameEnd         = "game_end"
	phaseCountdown       = "countdown"
	phaseShowIncomplete  = "show_incomplete"
	phaseDrawing         = "drawing"
	phaseCompositeReveal = "composite_reveal"
	phaseVoting          = "voting"
	phaseResult          = "result"
	phasePromptWrite     = "prompt_write"
	phaseGenerating      = "ai_generating"
	phaseDescribe        = "describe"
	phaseGenerating2     = "ai_generating_2"
	phaseReveal          = "reveal"
)

const minPlayers = 2

// Deps are the collaborators shared by every room.
type Deps struct {
	Notifier Notifier
	Recorder Recorder
}

// room is the state and plumbing common to every mode. Everything on it
// must be touched from the executor only.
type room struct {
	mode        Mode
	rt          Runtime
	notify      Notifier
	record      Recorder
	log         *logrus.Entry
	players     *roster
	phase       string
	transitions map[string][]string
	gen         uint64
	round       int
	totalRounds int
	remaining   int
	tick        timerSlot
	aux         timerSlot
	handle      func(Action)
	reset       func()
}

func newRoom(mode Mode, rt Runtime, deps Deps, transitions map[string][]string) *room {
	rt = rt.withDefaults()
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &room{
		mode:        mode,
		rt:          rt,
		notify:      deps.Notifier,
		record:      recorder,
		log:         rt.Log.WithField("mode", string(mode)),
		players:     newRoster(),
		phase:       phaseLobby,
		transitions: transitions,
	}
}

func (r *room) Mode() Mode {
	return r.mode
}

// Dispatch queues an action for the room's executor.
func (r *room) Dispatch(a Action) {
	r.rt.Exec.Post(func() { r.handle(a) })
}

// Summary reads the room state through the executor.
func (r *room) Summary(ctx context.Context) (Summary, error) {
	out := make(chan Summary, 1)
	r.rt.Exec.Post(func() {
		out <- Summary{
			Mode:        r.mode,
			Phase:       r.phase,
			Round:       r.round,
			TotalRounds: r.totalRounds,
			Players:     r.players.views(),
		}
	})
	select {
	case summary := <-out:
		return summary, nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

// setPhase moves to next if the transition table allows it. Returning to
// the lobby is always allowed.
func (r *room) setPhase(next string) bool {
	if next != phaseLobby && !r.allowed(next) {
		r.log.WithFields(logrus.Fields{"from": r.phase, "to": next}).Warn("rejected phase transition")
		return false
	}
	r.log.WithFields(logrus.Fields{"from": r.phase, "to": next, "round": r.round}).Info("phase changed")
	r.phase = next
	r.gen++
	return true
}

func (r *room) allowed(next string) bool {
	for _, candidate := range r.transitions[r.phase] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (r *room) after(slot *timerSlot, d time.Duration, fn func()) {
	slot.stop()
	id := slot.seq
	slot.cancel = r.rt.Sched.After(d, func() {
		r.rt.Exec.Post(func() {
			if slot.seq != id {
				return
			}
			slot.cancel = nil
			fn()
		})
	})
}

func (r *room) every(slot *timerSlot, d time.Duration, fn func()) {
	slot.stop()
	id := slot.seq
	slot.cancel = r.rt.Sched.Every(d, func() {
		r.rt.Exec.Post(func() {
			if slot.seq != id {
				return
			}
			fn()
		})
	})
}

func (r *room) stopTimers() {
	r.tick.stop()
	r.aux.stop()
}

// countdown broadcasts a tick every second and calls onEnd when it runs out.
func (r *room) countdown(seconds int, onEnd func()) {
	r.remaining = seconds
	r.broadcast("timer_tick", map[string]any{"remaining": r.remaining})
	r.every(&r.tick, time.Second, func() {
		r.remaining--
		r.broadcast("timer_tick", map[string]any{"remaining": r.remaining})
		if r.remaining <= 0 {
			r.tick.stop()
			onEnd()
		}
	})
}

// spawn runs work off the executor and applies its result back on it.
func (r *room) spawn(work func(ctx context.Context) func()) {
	ctx := r.rt.Context
	r.rt.Go(func() {
		apply := work(ctx)
		if apply != nil {
			r.rt.Exec.Post(apply)
		}
	})
}

func (r *room) broadcast(kind string, payload map[string]any) {
	if r.notify == nil {
		return
	}
	r.notify.Broadcast(Message{Type: kind, Payload: payload})
}

func (r *room) broadcastExcept(playerID, kind string, payload map[string]any) {
	if r.notify == nil {
		return
	}
	r.notify.BroadcastExcept(playerID, Message{Type: kind, Payload: payload})
}

func (r *room) send(playerID, kind string, payload map[string]any) {
	if r.notify == nil {
		return
	}
	r.notify.Send(playerID, Message{Type: kind, Payload: payload})
}

func (r *room) broadcastLobby() {
	r.broadcast("lobby_update", map[string]any{"players": r.players.views(), "phase": r.phase})
}

// join registers a new player. A second join from the same connection is
// ignored.
func (r *room) join(a Action) *Player {
	if a.PlayerID == "" || !ValidNickname(a.Nickname) {
		return nil
	}
	if r.players.get(a.PlayerID) != nil {
		return nil
	}
	p := r.players.add(a.PlayerID, strings.TrimSpace(a.Nickname))
	r.log.WithFields(logrus.Fields{"player_id": p.ID, "nickname": p.Nickname}).Info("player joined")
	r.broadcastLobby()
	return p
}

// leave marks a player disconnected. Lobby players are dropped outright and
// a room with nobody connected returns to the lobby.
func (r *room) leave(playerID string) *Player {
	p := r.players.get(playerID)
	if p == nil || !p.Connected {
		return nil
	}
	p.Connected = false
	if r.phase == phaseLobby {
		r.players.remove(playerID)
	}
	r.log.WithField("player_id", playerID).Info("player left")
	if r.phase != phaseLobby && len(r.players.connected()) == 0 {
		r.log.Info("room abandoned")
		r.reset()
		return nil
	}
	r.broadcastLobby()
	return p
}

// canStart reports whether a lobby member may start a game now.
func (r *room) canStart(playerID string) bool {
	p := r.players.get(playerID)
	return r.phase == phaseLobby && p != nil && p.Connected && len(r.players.connected()) >= minPlayers
}

// returnToLobby resets the room and drops players that left mid-game.
func (r *room) returnToLobby() {
	r.stopTimers()
	r.setPhase(phaseLobby)
	r.round = 0
	r.totalRounds = 0
	r.remaining = 0
	r.players.purgeDisconnected()
	r.players.resetPlayers()
	r.broadcastLobby()
}

func (r *room) scoreTable(deltas map[string]int) []scoring.Entry {
	entries := make([]scoring.Entry, 0, r.players.len())
	for _, p := range r.players.all() {
		entries = append(entries, scoring.Entry{
			PlayerID:   p.ID,
			Nickname:   p.Nickname,
			Score:      p.Score,
			RoundDelta: deltas[p.ID],
		})
	}
	return scoring.Sort(entries)
}

func (r *room) finish() []scoring.Entry {
	r.stopTimers()
	r.setPhase(phaseGameEnd)
	final := r.scoreTable(nil)
	winner := scoring.Winner(final)
	r.broadcast("game_end", map[string]any{"finalScores": final, "winner": winner})
	r.record.Record(r.mode, "game_ended", map[string]any{"winner": winner, "scores": final})
	return final
}
