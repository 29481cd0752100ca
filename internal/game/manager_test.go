package game

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vive-gamer/internal/ai"
	"vive-gamer/internal/words"
)

// silentRoom never answers summary requests.
type silentRoom struct{ mode Mode }

func (s silentRoom) Mode() Mode        { return s.mode }
func (s silentRoom) Dispatch(a Action) {}
func (s silentRoom) Summary(ctx context.Context) (Summary, error) {
	<-ctx.Done()
	return Summary{}, ctx.Err()
}

func TestManagerSummaries(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()
	settings := DefaultSettings()

	battleRT, battleExec := NewRuntime(ctx, logger)
	defer battleExec.Close()
	ojamaRT, ojamaExec := NewRuntime(ctx, logger)
	defer ojamaExec.Close()

	deps := Deps{Notifier: &captureNotifier{}}
	battle := NewBattle(battleRT, deps, settings.Battle, ai.NewMock(), words.BattleWords)
	ojama := NewOjama(ojamaRT, Deps{Notifier: &captureNotifier{}}, settings.Ojama, words.OjamaWords)
	m := NewManager(silentRoom{mode: ModeTeleport}, ojama, battle)

	require.True(t, m.Dispatch(ModeBattle, Action{Kind: ActionJoin, PlayerID: "p1", Nickname: "たろう"}))
	assert.False(t, m.Dispatch(ModeSketch, Action{Kind: ActionJoin, PlayerID: "p1", Nickname: "たろう"}))
	_, ok := m.Room(ModeSketch)
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	summaries := m.Summaries(ctx)
	require.Len(t, summaries, 2)
	assert.Equal(t, ModeBattle, summaries[0].Mode)
	assert.Equal(t, ModeOjama, summaries[1].Mode)
	assert.Equal(t, phaseLobby, summaries[0].Phase)
	require.Len(t, summaries[0].Players, 1)
	assert.Equal(t, "たろう", summaries[0].Players[0].Nickname)
	assert.Empty(t, summaries[1].Players)
}
