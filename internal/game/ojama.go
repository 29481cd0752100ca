package game

import (
	"time"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/scoring"
	"vive-gamer/internal/words"
)

var ojamaTransitions = map[string][]string{
	phaseLobby:     {phaseCountdown},
	phaseCountdown: {phasePlaying},
	phasePlaying:   {phaseRoundEnd},
	phaseRoundEnd:  {phaseCountdown, phaseGameEnd},
	phaseGameEnd:   {phaseLobby},
}

// Ojama is a fill-in-the-blank race. The first correct answer wins the
// round and splats everyone else.
type Ojama struct {
	*room
	settings OjamaSettings
	pool     *words.Pool[words.Word]

	word      words.Word
	hint      string
	winnerID  string
	earned    int
	countLeft int
	nextSplat int
}

func NewOjama(rt Runtime, deps Deps, settings OjamaSettings, list []words.Word) *Ojama {
	o := &Ojama{
		room:     newRoom(ModeOjama, rt, deps, ojamaTransitions),
		settings: settings,
	}
	o.pool = words.NewPool(list, words.WordText, words.WordTier, o.rt.Rand)
	o.handle = o.Handle
	o.reset = o.returnToLobby
	return o
}

func (o *Ojama) Handle(a Action) {
	switch a.Kind {
	case ActionJoin:
		o.join(a)
	case ActionLeave:
		o.leave(a.PlayerID)
	case ActionStart:
		o.start(a.PlayerID)
	case ActionGuess:
		o.guess(a)
	case ActionReturnToLobby:
		if o.phase == phaseGameEnd {
			o.returnToLobby()
		}
	default:
		o.log.WithField("kind", a.Kind).Debug("ignored action")
	}
}

func (o *Ojama) ReplaceWords(list []words.Word) {
	o.rt.Exec.Post(func() {
		if len(list) > 0 {
			o.pool.Replace(list)
		}
	})
}

func (o *Ojama) start(playerID string) {
	if !o.canStart(playerID) {
		return
	}
	o.players.resetPlayers()
	o.pool.Reset()
	o.round = 0
	o.totalRounds = o.settings.Rounds
	o.record.Record(o.mode, "game_started", map[string]any{"players": len(o.players.connected())})
	o.startCountdown()
}

func (o *Ojama) startCountdown() {
	o.stopTimers()
	o.round++
	o.winnerID = ""
	o.earned = 0
	tier := words.OjamaTier(o.round)
	word, ok := o.pool.Pick(tier)
	if !ok {
		o.log.Error("word pool is empty")
		o.finish()
		return
	}
	o.word = word
	o.hint = words.Hint(word.Text, o.settings.HintFraction, o.rt.Rand)
	if !o.setPhase(phaseCountdown) {
		return
	}

	o.broadcast("countdown", map[string]any{"round": o.round, "totalRounds": o.totalRounds})
	o.countLeft = o.settings.Countdown
	o.broadcast("countdown_tick", map[string]any{"count": o.countLeft})
	o.every(&o.tick, time.Second, func() {
		o.countLeft--
		if o.countLeft > 0 {
			o.broadcast("countdown_tick", map[string]any{"count": o.countLeft})
			return
		}
		o.tick.stop()
		o.startRound()
	})
}

func (o *Ojama) startRound() {
	if !o.setPhase(phasePlaying) {
		return
	}
	o.broadcast("start", map[string]any{
		"round":       o.round,
		"totalRounds": o.totalRounds,
		"hint":        o.hint,
		"difficulty":  o.word.Tier,
		"timeLimit":   o.settings.RoundSeconds,
	})
	o.countdown(o.settings.RoundSeconds, o.endRound)
}

func (o *Ojama) guess(a Action) {
	if o.phase != phasePlaying {
		return
	}
	p := o.players.get(a.PlayerID)
	if p == nil || !p.Connected || words.Normalize(a.Text) == "" {
		return
	}
	if !words.Matches(a.Text, o.word.Text) {
		o.send(p.ID, "wrong", map[string]any{"text": a.Text})
		return
	}

	o.winnerID = p.ID
	o.earned = scoring.OjamaReward(o.remaining, o.settings.RoundSeconds)
	p.Score += o.earned
	o.log.WithFields(logrus.Fields{"player_id": p.ID, "earned": o.earned}).Info("round won")
	o.broadcast("correct", map[string]any{"playerId": p.ID, "nickname": p.Nickname, "earned": o.earned})

	for _, other := range o.players.connected() {
		if other.ID == p.ID {
			continue
		}
		o.nextSplat++
		splat := Splat{ID: o.nextSplat, From: p.Nickname}
		payload := map[string]any{"splatId": splat.ID, "fromNickname": splat.From}
		var evicted *Splat
		other.Splats, evicted = pushSplat(other.Splats, splat, o.settings.SplatCap)
		if evicted != nil {
			payload["evictedId"] = evicted.ID
		}
		o.send(other.ID, "splat", payload)
	}
	if len(p.Splats) > 0 {
		cleared := p.Splats[0]
		p.Splats = p.Splats[1:]
		o.send(p.ID, "clear_splat", map[string]any{"splatId": cleared.ID})
	}
	o.endRound()
}

func (o *Ojama) endRound() {
	if o.phase != phasePlaying {
		return
	}
	o.stopTimers()
	o.setPhase(phaseRoundEnd)

	var winnerNickname any
	deltas := map[string]int{}
	if winner := o.players.get(o.winnerID); winner != nil {
		winnerNickname = winner.Nickname
		deltas[winner.ID] = o.earned
	}
	o.broadcast("round_end", map[string]any{
		"word":           o.word.Text,
		"winnerId":       o.winnerID,
		"winnerNickname": winnerNickname,
		"scores":         o.scoreTable(deltas),
	})
	o.record.Record(o.mode, "round_ended", map[string]any{"round": o.round, "word": o.word.Text, "winnerId": o.winnerID})
	o.after(&o.tick, o.settings.Intermission, func() {
		if o.round >= o.totalRounds {
			o.finish()
			return
		}
		o.startCountdown()
	})
}

func (o *Ojama) returnToLobby() {
	o.word = words.Word{}
	o.hint = ""
	o.winnerID = ""
	o.earned = 0
	o.countLeft = 0
	o.pool.Reset()
	o.room.returnToLobby()
}

// pushSplat appends s, evicting the oldest splat when the list is at cap.
// A cap of zero or less means unlimited.
func pushSplat(list []Splat, s Splat, limit int) ([]Splat, *Splat) {
	var evicted *Splat
	if limit > 0 && len(list) >= limit {
		oldest := list[0]
		evicted = &oldest
		list = list[1:]
	}
	return append(list, s), evicted
}
