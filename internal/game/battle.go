package game

import (
	"context"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/ai"
	"vive-gamer/internal/scoring"
	"vive-gamer/internal/words"
)

var battleTransitions = map[string][]string{
	phaseLobby:    {phasePlaying},
	phasePlaying:  {phaseRoundEnd},
	phaseRoundEnd: {phasePlaying, phaseGameEnd},
	phaseGameEnd:  {phaseLobby},
}

// Battle is draw-and-guess against the AI. Every player draws once.
type Battle struct {
	*room
	settings BattleSettings
	ai       ai.Responder
	pool     *words.Pool[words.Word]

	drawerOrder  []string
	drawerIndex  int
	drawerID     string
	word         string
	correct      map[string]bool
	firstGuesser string
	deltas       map[string]int
	awards       map[string]scoring.GuessAward

	aiAttempts int
	aiCorrect  bool
	aiInFlight bool

	ink         float64
	inkDepleted bool
	strokes     []Stroke
	snapshot    string
}

func NewBattle(rt Runtime, deps Deps, settings BattleSettings, responder ai.Responder, list []words.Word) *Battle {
	b := &Battle{
		room:     newRoom(ModeBattle, rt, deps, battleTransitions),
		settings: settings,
		ai:       responder,
	}
	b.pool = words.NewPool(list, words.WordText, words.WordTier, b.rt.Rand)
	b.handle = b.Handle
	b.reset = b.returnToLobby
	b.clearRound()
	return b
}

// Handle applies one action. It must run on the room executor.
func (b *Battle) Handle(a Action) {
	switch a.Kind {
	case ActionJoin:
		b.onJoin(a)
	case ActionLeave:
		b.onLeave(a.PlayerID)
	case ActionStart:
		b.start(a.PlayerID)
	case ActionDraw:
		b.draw(a)
	case ActionClearCanvas:
		b.clearCanvas(a.PlayerID)
	case ActionSnapshot:
		b.storeSnapshot(a)
	case ActionGuess:
		b.guess(a)
	case ActionReturnToLobby:
		if b.phase == phaseGameEnd {
			b.returnToLobby()
		}
	default:
		b.log.WithField("kind", a.Kind).Debug("ignored action")
	}
}

// ReplaceWords swaps the word list used by future games.
func (b *Battle) ReplaceWords(list []words.Word) {
	b.rt.Exec.Post(func() {
		if len(list) > 0 {
			b.pool.Replace(list)
		}
	})
}

func (b *Battle) clearRound() {
	b.drawerID = ""
	b.word = ""
	b.correct = make(map[string]bool)
	b.firstGuesser = ""
	b.deltas = make(map[string]int)
	b.awards = make(map[string]scoring.GuessAward)
	b.aiAttempts = 0
	b.aiCorrect = false
	b.aiInFlight = false
	b.ink = b.settings.InkBudget
	b.inkDepleted = false
	b.strokes = nil
	b.snapshot = ""
}

func (b *Battle) onJoin(a Action) {
	p := b.join(a)
	if p == nil || b.phase != phasePlaying {
		return
	}
	b.send(p.ID, "game_start", b.roundPayload())
	b.send(p.ID, "canvas_history", map[string]any{"strokes": b.strokes})
	b.send(p.ID, "timer_tick", map[string]any{"remaining": b.remaining})
}

func (b *Battle) onLeave(playerID string) {
	if b.leave(playerID) == nil || b.phase != phasePlaying {
		return
	}
	if playerID == b.drawerID {
		b.log.WithField("player_id", playerID).Info("drawer left, ending round")
		b.endRound()
		return
	}
	if b.allGuessed() {
		b.endRound()
	}
}

func (b *Battle) start(playerID string) {
	if !b.canStart(playerID) {
		return
	}
	b.players.resetPlayers()
	b.pool.Reset()
	b.drawerOrder = b.drawerOrder[:0]
	for _, p := range b.players.connected() {
		b.drawerOrder = append(b.drawerOrder, p.ID)
	}
	b.rt.Rand.Shuffle(len(b.drawerOrder), func(i, j int) {
		b.drawerOrder[i], b.drawerOrder[j] = b.drawerOrder[j], b.drawerOrder[i]
	})
	b.drawerIndex = 0
	b.round = 0
	b.totalRounds = len(b.drawerOrder)
	b.record.Record(b.mode, "game_started", map[string]any{"players": len(b.drawerOrder)})
	b.startRound()
}

func (b *Battle) startRound() {
	b.stopTimers()
	var drawer *Player
	for drawer == nil && b.drawerIndex < len(b.drawerOrder) {
		candidate := b.players.get(b.drawerOrder[b.drawerIndex])
		b.drawerIndex++
		if candidate != nil && candidate.Connected {
			drawer = candidate
		}
	}
	if drawer == nil {
		b.finish()
		return
	}
	b.clearRound()
	word, ok := b.pool.Pick(-1)
	if !ok {
		b.log.Error("word pool is empty")
		b.finish()
		return
	}
	b.round = b.drawerIndex
	b.drawerID = drawer.ID
	b.word = word.Text
	if !b.setPhase(phasePlaying) {
		return
	}
	b.log.WithFields(logrus.Fields{"round": b.round, "drawer_id": drawer.ID}).Info("round started")

	b.broadcast("game_start", b.roundPayload())
	b.send(drawer.ID, "your_word", map[string]any{"word": b.word})
	b.countdown(b.settings.RoundSeconds, b.endRound)
	b.after(&b.aux, b.settings.AIFirst, func() {
		b.askAI()
		if b.phase == phasePlaying && !b.aiCorrect {
			b.every(&b.aux, b.settings.AIInterval, b.askAI)
		}
	})
}

func (b *Battle) roundPayload() map[string]any {
	nickname := ""
	if drawer := b.players.get(b.drawerID); drawer != nil {
		nickname = drawer.Nickname
	}
	return map[string]any{
		"round":          b.round,
		"totalRounds":    b.totalRounds,
		"drawerId":       b.drawerID,
		"drawerNickname": nickname,
		"timeLimit":      b.settings.RoundSeconds,
		"maxInk":         b.settings.InkBudget,
	}
}

func (b *Battle) askAI() {
	if b.phase != phasePlaying || b.aiCorrect || b.aiInFlight || b.ai == nil {
		return
	}
	b.aiInFlight = true
	gen := b.gen
	req := ai.Request{Word: b.word, Attempt: b.aiAttempts, Snapshot: b.snapshot}
	b.aiAttempts++
	b.spawn(func(ctx context.Context) func() {
		result := b.ai.Guess(ctx, req)
		return func() { b.applyAI(gen, result) }
	})
}

func (b *Battle) applyAI(gen uint64, result ai.Result) {
	if gen != b.gen || b.phase != phasePlaying {
		b.log.WithField("text", result.Text).Debug("discarded stale ai guess")
		return
	}
	b.aiInFlight = false
	if b.aiCorrect {
		return
	}
	if !result.IsCorrect {
		b.broadcast("new_guess", map[string]any{"nickname": ai.Nickname, "text": result.Text, "isAI": true})
		return
	}
	b.aiCorrect = true
	b.aux.stop()
	if drawer := b.players.get(b.drawerID); drawer != nil {
		drawer.Score -= scoring.AIPenalty
		b.deltas[drawer.ID] -= scoring.AIPenalty
	}
	b.broadcast("correct_guess", map[string]any{
		"nickname": ai.Nickname,
		"isAI":     true,
		"penalty":  scoring.AIPenalty,
	})
}

func (b *Battle) draw(a Action) {
	if b.phase != phasePlaying || a.PlayerID != b.drawerID || a.Stroke == nil {
		return
	}
	if b.ink <= 0 {
		return
	}
	b.ink -= a.Stroke.Length()
	b.strokes = append(b.strokes, *a.Stroke)
	b.broadcastExcept(b.drawerID, "draw", map[string]any{"stroke": a.Stroke})
	b.send(b.drawerID, "ink_update", map[string]any{
		"inkRemaining": max(b.ink, 0),
		"maxInk":       b.settings.InkBudget,
		"strokesUsed":  len(b.strokes),
	})
	if b.ink <= 0 && !b.inkDepleted {
		b.inkDepleted = true
		b.send(b.drawerID, "ink_depleted", map[string]any{"maxInk": b.settings.InkBudget})
	}
}

func (b *Battle) clearCanvas(playerID string) {
	if b.phase != phasePlaying || playerID != b.drawerID {
		return
	}
	b.strokes = nil
	b.snapshot = ""
	b.broadcastExcept(b.drawerID, "clear_canvas", nil)
}

func (b *Battle) storeSnapshot(a Action) {
	if b.phase != phasePlaying || a.PlayerID != b.drawerID {
		return
	}
	b.snapshot = a.Image
}

func (b *Battle) guess(a Action) {
	if b.phase != phasePlaying || a.PlayerID == b.drawerID || b.correct[a.PlayerID] {
		return
	}
	p := b.players.get(a.PlayerID)
	if p == nil || !p.Connected || words.Normalize(a.Text) == "" {
		return
	}
	if !words.Matches(a.Text, b.word) {
		b.broadcast("new_guess", map[string]any{"nickname": p.Nickname, "text": a.Text, "isAI": false})
		b.send(p.ID, "wrong_guess", map[string]any{"text": a.Text})
		return
	}

	b.correct[p.ID] = true
	first := b.firstGuesser == ""
	if first {
		b.firstGuesser = p.ID
	}
	p.Combo++
	award := scoring.GuessReward(b.remaining, b.settings.RoundSeconds, p.Combo, first)
	p.Score += award.TotalEarned
	b.deltas[p.ID] += award.TotalEarned
	b.awards[p.ID] = award
	if drawer := b.players.get(b.drawerID); drawer != nil {
		drawer.Score += scoring.DrawerFlatBonus
		b.deltas[drawer.ID] += scoring.DrawerFlatBonus
	}
	b.broadcast("correct_guess", map[string]any{
		"playerId":        p.ID,
		"nickname":        p.Nickname,
		"isAI":            false,
		"timeBonus":       award.TimeBonus,
		"comboCount":      p.Combo,
		"comboMultiplier": award.ComboMultiplier,
		"firstBonus":      award.FirstBonus,
		"totalEarned":     award.TotalEarned,
		"drawerBonus":     scoring.DrawerFlatBonus,
	})
	if b.allGuessed() {
		b.endRound()
	}
}

// allGuessed reports whether every connected guesser has answered.
func (b *Battle) allGuessed() bool {
	for _, p := range b.players.connected() {
		if p.ID != b.drawerID && !b.correct[p.ID] {
			return false
		}
	}
	return true
}

func (b *Battle) endRound() {
	if b.phase != phasePlaying {
		return
	}
	b.stopTimers()
	b.setPhase(phaseRoundEnd)

	inkBonus := 0
	if drawer := b.players.get(b.drawerID); drawer != nil && !b.aiCorrect {
		used := b.settings.InkBudget - max(b.ink, 0)
		inkBonus = scoring.DrawerInkBonus(used, b.settings.InkBudget)
		drawer.Score += inkBonus
		b.deltas[drawer.ID] += inkBonus
	}
	for _, p := range b.players.all() {
		if p.ID != b.drawerID && !b.correct[p.ID] {
			p.Combo = 0
		}
	}

	scores := b.scoreTable(b.deltas)
	for i := range scores {
		if award, ok := b.awards[scores[i].PlayerID]; ok {
			scores[i].TimeBonus = award.TimeBonus
			scores[i].ComboMultiplier = award.ComboMultiplier
			scores[i].FirstGuesser = scores[i].PlayerID == b.firstGuesser
		}
	}
	b.broadcast("round_end", map[string]any{
		"word":      b.word,
		"scores":    scores,
		"aiCorrect": b.aiCorrect,
		"inkBonus":  inkBonus,
	})
	b.record.Record(b.mode, "round_ended", map[string]any{
		"round":     b.round,
		"word":      b.word,
		"drawerId":  b.drawerID,
		"aiCorrect": b.aiCorrect,
		"correct":   len(b.correct),
	})
	b.after(&b.tick, b.settings.Intermission, b.startRound)
}

func (b *Battle) returnToLobby() {
	b.clearRound()
	b.drawerOrder = nil
	b.drawerIndex = 0
	b.pool.Reset()
	b.room.returnToLobby()
}
