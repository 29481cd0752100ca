package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vive-gamer/internal/ai"
	"vive-gamer/internal/scoring"
	"vive-gamer/internal/words"
)

func newTestBattle(h *harness, responder ai.Responder) *Battle {
	return NewBattle(h.rt, h.deps, DefaultSettings().Battle, responder, []words.Word{{Text: "猫"}})
}

func wrongAI(calls *int) ai.Responder {
	return ai.ResponderFunc(func(_ context.Context, req ai.Request) ai.Result {
		*calls++
		return ai.Result{Text: "犬"}
	})
}

func startBattle(t *testing.T, b *Battle, ids ...string) (string, []string) {
	t.Helper()
	join(b, ids...)
	b.Dispatch(Action{Kind: ActionStart, PlayerID: ids[0]})
	require.Equal(t, phasePlaying, b.phase)
	var guessers []string
	for _, id := range ids {
		if id != b.drawerID {
			guessers = append(guessers, id)
		}
	}
	return b.drawerID, guessers
}

func TestBattleStartNeedsTwoPlayers(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)

	join(b, "a")
	b.Dispatch(Action{Kind: ActionStart, PlayerID: "a"})
	assert.Equal(t, phaseLobby, b.phase)

	join(b, "b")
	b.Dispatch(Action{Kind: ActionStart, PlayerID: "b"})
	require.Equal(t, phasePlaying, b.phase)
	assert.Equal(t, 1, b.round)
	assert.Equal(t, 2, b.totalRounds)
	assert.ElementsMatch(t, []string{"a", "b"}, b.drawerOrder)

	word := h.notifier.private(b.drawerID, "your_word")
	require.Len(t, word, 1)
	assert.Equal(t, "猫", word[0].Payload["word"])
	for _, s := range h.notifier.log {
		if s.msg.Type == "your_word" {
			assert.Equal(t, b.drawerID, s.to)
		}
	}
	assert.Equal(t, b.drawerID, h.notifier.last("game_start").Payload["drawerId"])
}

func TestBattleFirstCorrectGuess(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	drawerID, guessers := startBattle(t, b, "a", "b", "c")

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: " 猫 "})

	first := b.players.get(guessers[0])
	assert.True(t, b.correct[first.ID])
	assert.Equal(t, first.ID, b.firstGuesser)
	assert.Equal(t, 1, first.Combo)
	assert.Equal(t, 250, first.Score)
	assert.Equal(t, scoring.DrawerFlatBonus, b.players.get(drawerID).Score)

	msg := h.notifier.last("correct_guess")
	assert.Equal(t, 250, msg.Payload["totalEarned"])
	assert.Equal(t, 50, msg.Payload["firstBonus"])
	assert.Equal(t, 100, msg.Payload["timeBonus"])
	assert.Equal(t, 1.0, msg.Payload["comboMultiplier"])
	assert.Equal(t, false, msg.Payload["isAI"])
	assert.Equal(t, phasePlaying, b.phase)

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[1], Text: "ねこ"})
	assert.Equal(t, phasePlaying, b.phase, "kana folding must not match a kanji answer")

	h.sched.Advance(30 * time.Second)
	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[1], Text: "猫"})
	second := b.players.get(guessers[1])
	assert.Equal(t, 150, second.Score)
	assert.Equal(t, 0, h.notifier.last("correct_guess").Payload["firstBonus"])

	require.Equal(t, phaseRoundEnd, b.phase)
	drawer := b.players.get(drawerID)
	assert.Equal(t, 2*scoring.DrawerFlatBonus+200, drawer.Score)

	scores := h.notifier.last("round_end").Payload["scores"].([]scoring.Entry)
	require.Len(t, scores, 3)
	assert.Equal(t, drawerID, scores[0].PlayerID)
	assert.Equal(t, 300, scores[0].RoundDelta)
	assert.Equal(t, guessers[0], scores[1].PlayerID)
	assert.True(t, scores[1].FirstGuesser)
	assert.False(t, scores[2].FirstGuesser)
}

func TestBattleDrawerGuessHasNoEffect(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	drawerID, _ := startBattle(t, b, "a", "b")

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: drawerID, Text: "猫"})

	assert.Empty(t, b.correct)
	assert.Equal(t, 0, b.players.get(drawerID).Score)
	assert.Equal(t, 0, h.notifier.count("correct_guess"))
	assert.Equal(t, 0, h.notifier.count("new_guess"))
}

func TestBattleCorrectGuesserCannotGuessAgain(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	_, guessers := startBattle(t, b, "a", "b", "c")

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "猫"})
	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "猫"})
	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "犬"})

	assert.Equal(t, 250, b.players.get(guessers[0]).Score)
	assert.Equal(t, 1, h.notifier.count("correct_guess"))
	assert.Equal(t, 0, h.notifier.count("new_guess"))
}

func TestBattleWrongGuessIsPublicAndPrivate(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	_, guessers := startBattle(t, b, "a", "b")

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "犬"})

	public := h.notifier.public("new_guess")
	require.Len(t, public, 1)
	assert.Equal(t, "犬", public[0].Payload["text"])
	assert.Len(t, h.notifier.private(guessers[0], "wrong_guess"), 1)
	assert.Equal(t, 0, b.players.get(guessers[0]).Score)
}

func TestBattleInkDepletion(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	drawerID, guessers := startBattle(t, b, "a", "b", "c")

	b.Dispatch(Action{Kind: ActionDraw, PlayerID: guessers[0], Stroke: line(0, 0, 10, 0)})
	assert.Equal(t, 0, h.notifier.count("draw"))

	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 1000, 0)})
	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 0, 2000)})
	assert.InDelta(t, 12000, b.ink, 1e-9)
	assert.Equal(t, 0, h.notifier.count("ink_depleted"))

	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 12500, 0)})
	assert.LessOrEqual(t, b.ink, 0.0)
	assert.Len(t, h.notifier.private(drawerID, "ink_depleted"), 1)

	b.Dispatch(Action{Kind: ActionClearCanvas, PlayerID: drawerID})
	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 5, 0)})
	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 5, 0)})

	assert.Equal(t, 1, h.notifier.count("ink_depleted"))
	assert.Equal(t, 3, h.notifier.count("draw"))
	assert.LessOrEqual(t, b.ink, 0.0)
	assert.Empty(t, b.strokes)

	update := h.notifier.private(drawerID, "ink_update")
	require.Len(t, update, 3)
	assert.Equal(t, 0.0, update[2].Payload["inkRemaining"])
	for _, s := range h.notifier.log {
		if s.msg.Type == "draw" {
			assert.Equal(t, drawerID, s.except)
		}
	}
}

func TestBattleRoundEndIsIdempotent(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	drawerID, guessers := startBattle(t, b, "a", "b", "c")

	b.endRound()
	b.endRound()
	assert.Equal(t, 1, h.notifier.count("round_end"))
	assert.Equal(t, 200, b.players.get(drawerID).Score)

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "猫"})
	assert.Equal(t, 0, b.players.get(guessers[0]).Score)
}

func TestBattleTimerExpiryThenLateGuess(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	drawerID, guessers := startBattle(t, b, "a", "b")

	h.sched.Advance(60 * time.Second)
	require.Equal(t, phaseRoundEnd, b.phase)
	assert.Equal(t, 0, h.notifier.last("timer_tick").Payload["remaining"])

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "猫"})
	assert.Equal(t, 1, h.notifier.count("round_end"))
	assert.Equal(t, 200, b.players.get(drawerID).Score)
	assert.Equal(t, 0, b.players.get(guessers[0]).Score)
}

func TestBattleAIPenalty(t *testing.T) {
	h := newHarness(t)
	calls := 0
	responder := ai.ResponderFunc(func(_ context.Context, req ai.Request) ai.Result {
		calls++
		return ai.Result{Text: req.Word, IsCorrect: true}
	})
	b := newTestBattle(h, responder)
	drawerID, _ := startBattle(t, b, "a", "b")

	h.sched.Advance(4 * time.Second)
	assert.Equal(t, 0, calls)
	h.sched.Advance(time.Second)
	require.Equal(t, 1, calls)

	msg := h.notifier.last("correct_guess")
	assert.Equal(t, ai.Nickname, msg.Payload["nickname"])
	assert.Equal(t, true, msg.Payload["isAI"])
	assert.Equal(t, -scoring.AIPenalty, b.players.get(drawerID).Score)

	h.sched.Advance(30 * time.Second)
	assert.Equal(t, 1, calls)

	h.sched.Advance(25 * time.Second)
	require.Equal(t, phaseRoundEnd, b.phase)
	assert.Equal(t, -scoring.AIPenalty, b.players.get(drawerID).Score)
	assert.Equal(t, true, h.notifier.last("round_end").Payload["aiCorrect"])
}

func TestBattleAISingleFlightAndStaleDiscard(t *testing.T) {
	h := newHarness(t)
	var held []func()
	h.rt.Go = func(fn func()) { held = append(held, fn) }
	calls := 0
	b := newTestBattle(h, wrongAI(&calls))
	drawerID, _ := startBattle(t, b, "a", "b", "c")

	h.sched.Advance(5 * time.Second)
	require.Len(t, held, 1)
	h.sched.Advance(8 * time.Second)
	assert.Len(t, held, 1, "no overlapping ai calls")

	held[0]()
	guesses := h.notifier.public("new_guess")
	require.Len(t, guesses, 1)
	assert.Equal(t, ai.Nickname, guesses[0].Payload["nickname"])

	h.sched.Advance(8 * time.Second)
	require.Len(t, held, 2)

	b.Dispatch(Action{Kind: ActionLeave, PlayerID: drawerID})
	require.Equal(t, phaseRoundEnd, b.phase)

	held[1]()
	assert.Equal(t, 2, calls)
	assert.Len(t, h.notifier.public("new_guess"), 1)
}

func TestBattleDrawerLeavingIsSkipped(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	join(b, "a", "b", "c")
	b.Dispatch(Action{Kind: ActionStart, PlayerID: "a"})
	order := append([]string(nil), b.drawerOrder...)

	b.Dispatch(Action{Kind: ActionLeave, PlayerID: order[1]})
	assert.Equal(t, phasePlaying, b.phase)
	assert.False(t, b.players.get(order[1]).Connected)

	b.Dispatch(Action{Kind: ActionLeave, PlayerID: order[0]})
	require.Equal(t, phaseRoundEnd, b.phase)

	h.sched.Advance(4 * time.Second)
	require.Equal(t, phasePlaying, b.phase)
	assert.Equal(t, order[2], b.drawerID)
	assert.Equal(t, 3, b.round)
}

func TestBattleLateJoinerGetsCanvasHistory(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	drawerID, _ := startBattle(t, b, "a", "b")

	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 10, 0)})
	b.Dispatch(Action{Kind: ActionDraw, PlayerID: drawerID, Stroke: line(0, 0, 0, 10)})
	join(b, "late")

	history := h.notifier.private("late", "canvas_history")
	require.Len(t, history, 1)
	assert.Len(t, history[0].Payload["strokes"], 2)
	assert.Len(t, h.notifier.private("late", "game_start"), 1)
}

func TestBattleComboResetsForMissedGuessers(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	_, guessers := startBattle(t, b, "a", "b", "c")
	b.players.get(guessers[0]).Combo = 2
	b.players.get(guessers[1]).Combo = 3

	b.Dispatch(Action{Kind: ActionGuess, PlayerID: guessers[0], Text: "猫"})
	assert.Equal(t, 1.5, h.notifier.last("correct_guess").Payload["comboMultiplier"])

	h.sched.Advance(60 * time.Second)
	require.Equal(t, phaseRoundEnd, b.phase)
	assert.Equal(t, 3, b.players.get(guessers[0]).Combo)
	assert.Equal(t, 0, b.players.get(guessers[1]).Combo)
}

func TestBattleFullGameAndReturnToLobby(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	join(b, "a", "b")
	b.Dispatch(Action{Kind: ActionStart, PlayerID: "a"})

	for round := 1; round <= 2; round++ {
		require.Equal(t, phasePlaying, b.phase)
		require.Equal(t, round, b.round)
		for _, id := range []string{"a", "b"} {
			if id != b.drawerID {
				b.Dispatch(Action{Kind: ActionGuess, PlayerID: id, Text: "猫"})
			}
		}
		require.Equal(t, phaseRoundEnd, b.phase)
		b.Dispatch(Action{Kind: ActionReturnToLobby, PlayerID: "a"})
		require.Equal(t, phaseRoundEnd, b.phase)
		h.sched.Advance(4 * time.Second)
	}

	require.Equal(t, phaseGameEnd, b.phase)
	end := h.notifier.last("game_end")
	final := end.Payload["finalScores"].([]scoring.Entry)
	require.Len(t, final, 2)
	assert.Equal(t, final[0].Nickname, end.Payload["winner"])
	assert.Equal(t, []string{"game_started", "round_ended", "round_ended", "game_ended"}, h.recorder.types())

	b.Dispatch(Action{Kind: ActionReturnToLobby, PlayerID: "b"})
	assert.Equal(t, phaseLobby, b.phase)
	for _, p := range b.players.all() {
		assert.Equal(t, 0, p.Score)
		assert.Equal(t, 0, p.Combo)
	}
	assert.Equal(t, b.settings.InkBudget, b.ink)
	assert.Equal(t, 0, h.sched.Live())
}

func TestBattleAbandonedRoomResets(t *testing.T) {
	h := newHarness(t)
	b := newTestBattle(h, nil)
	startBattle(t, b, "a", "b")

	b.Dispatch(Action{Kind: ActionLeave, PlayerID: "a"})
	b.Dispatch(Action{Kind: ActionLeave, PlayerID: "b"})

	assert.Equal(t, phaseLobby, b.phase)
	assert.Equal(t, 0, b.players.len())
	assert.Equal(t, 0, h.sched.Live())
}
