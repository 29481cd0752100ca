package game

import (
	"vive-gamer/internal/scoring"
	"vive-gamer/internal/words"
)

var sketchTransitions = map[string][]string{
	phaseLobby:           {phaseShowIncomplete},
	phaseShowIncomplete:  {phaseDrawing},
	phaseDrawing:         {phaseCompositeReveal},
	phaseCompositeReveal: {phaseVoting},
	phaseVoting:          {phaseResult},
	phaseResult:          {phaseShowIncomplete, phaseGameEnd},
	phaseGameEnd:         {phaseLobby},
}

type StrokeGroup struct {
	PlayerID string   `json:"playerId"`
	Nickname string   `json:"nickname,omitempty"`
	Strokes  []Stroke `json:"strokes"`
}

// Sketch has everyone finish the same incomplete template, then vote on
// the best contribution.
type Sketch struct {
	*room
	settings SketchSettings
	pool     *words.Pool[words.Subject]

	subject words.Subject
	artists []string
	strokes map[string][]Stroke
	votes   map[string]string
}

func NewSketch(rt Runtime, deps Deps, settings SketchSettings, subjects []words.Subject) *Sketch {
	s := &Sketch{
		room:     newRoom(ModeSketch, rt, deps, sketchTransitions),
		settings: settings,
		strokes:  make(map[string][]Stroke),
		votes:    make(map[string]string),
	}
	s.pool = words.NewPool(subjects, words.SubjectID, nil, s.rt.Rand)
	s.handle = s.Handle
	s.reset = s.returnToLobby
	return s
}

func (s *Sketch) Handle(a Action) {
	switch a.Kind {
	case ActionJoin:
		s.join(a)
	case ActionLeave:
		if s.leave(a.PlayerID) != nil && s.phase == phaseVoting {
			s.checkVotes()
		}
	case ActionStart:
		s.start(a.PlayerID)
	case ActionDraw:
		s.draw(a)
	case ActionVote:
		s.vote(a)
	case ActionReturnToLobby:
		if s.phase == phaseGameEnd {
			s.returnToLobby()
		}
	default:
		s.log.WithField("kind", a.Kind).Debug("ignored action")
	}
}

func (s *Sketch) start(playerID string) {
	if !s.canStart(playerID) {
		return
	}
	s.players.resetPlayers()
	s.pool.Reset()
	s.round = 0
	s.totalRounds = s.settings.Rounds
	s.record.Record(s.mode, "game_started", map[string]any{"players": len(s.players.connected())})
	s.startRound()
}

func (s *Sketch) startRound() {
	s.stopTimers()
	subject, ok := s.pool.Pick(-1)
	if !ok {
		s.log.Error("subject pool is empty")
		s.finish()
		return
	}
	s.round++
	s.subject = subject
	s.artists = s.artists[:0]
	s.strokes = make(map[string][]Stroke)
	s.votes = make(map[string]string)
	for _, p := range s.players.connected() {
		s.artists = append(s.artists, p.ID)
		s.strokes[p.ID] = nil
	}
	if !s.setPhase(phaseShowIncomplete) {
		return
	}
	s.broadcast("phase", s.roundPayload(phaseShowIncomplete, int(s.settings.ShowTime.Seconds())))
	s.after(&s.tick, s.settings.ShowTime, s.startDrawing)
}

func (s *Sketch) roundPayload(phase string, timeLimit int) map[string]any {
	return map[string]any{
		"phase":       phase,
		"subject":     s.subject,
		"round":       s.round,
		"totalRounds": s.totalRounds,
		"timeLimit":   timeLimit,
	}
}

func (s *Sketch) startDrawing() {
	if !s.setPhase(phaseDrawing) {
		return
	}
	s.broadcast("phase", s.roundPayload(phaseDrawing, s.settings.DrawSeconds))
	s.every(&s.aux, s.settings.CompositeInterval, func() {
		s.broadcast("composite", map[string]any{"allStrokes": s.groups(false)})
	})
	s.countdown(s.settings.DrawSeconds, s.reveal)
}

func (s *Sketch) draw(a Action) {
	if s.phase != phaseDrawing || a.Stroke == nil {
		return
	}
	p := s.players.get(a.PlayerID)
	if p == nil || !p.Connected {
		return
	}
	if _, ok := s.strokes[p.ID]; !ok {
		s.artists = append(s.artists, p.ID)
	}
	s.strokes[p.ID] = append(s.strokes[p.ID], *a.Stroke)
}

// groups layers every artist's strokes in join order.
func (s *Sketch) groups(withNames bool) []StrokeGroup {
	out := make([]StrokeGroup, 0, len(s.artists))
	for _, id := range s.artists {
		group := StrokeGroup{PlayerID: id, Strokes: s.strokes[id]}
		if group.Strokes == nil {
			group.Strokes = []Stroke{}
		}
		if withNames {
			group.Nickname = "???"
			if p := s.players.get(id); p != nil {
				group.Nickname = p.Nickname
			}
		}
		out = append(out, group)
	}
	return out
}

func (s *Sketch) reveal() {
	s.aux.stop()
	if !s.setPhase(phaseCompositeReveal) {
		return
	}
	payload := s.roundPayload(phaseCompositeReveal, int(s.settings.RevealTime.Seconds()))
	payload["allStrokes"] = s.groups(true)
	s.broadcast("phase", payload)
	s.after(&s.tick, s.settings.RevealTime, s.startVoting)
}

func (s *Sketch) startVoting() {
	if !s.setPhase(phaseVoting) {
		return
	}
	s.votes = make(map[string]string)
	candidates := make([]map[string]any, 0, len(s.artists))
	for _, id := range s.artists {
		if p := s.players.get(id); p != nil {
			candidates = append(candidates, map[string]any{"id": p.ID, "nickname": p.Nickname})
		}
	}
	s.broadcast("phase", map[string]any{
		"phase":       phaseVoting,
		"players":     candidates,
		"round":       s.round,
		"totalRounds": s.totalRounds,
		"timeLimit":   s.settings.VoteSeconds,
	})
	s.countdown(s.settings.VoteSeconds, s.tally)
}

func (s *Sketch) vote(a Action) {
	if s.phase != phaseVoting || a.PlayerID == a.TargetID {
		return
	}
	voter := s.players.get(a.PlayerID)
	if voter == nil || !voter.Connected {
		return
	}
	if _, ok := s.strokes[a.TargetID]; !ok || s.players.get(a.TargetID) == nil {
		return
	}
	s.votes[voter.ID] = a.TargetID
	s.broadcast("vote_update", map[string]any{"votedCount": len(s.votes)})
	s.checkVotes()
}

// checkVotes tallies once every connected player has voted.
func (s *Sketch) checkVotes() {
	for _, p := range s.players.connected() {
		if _, ok := s.votes[p.ID]; !ok {
			return
		}
	}
	s.tally()
}

func (s *Sketch) tally() {
	if s.phase != phaseVoting {
		return
	}
	s.stopTimers()
	s.setPhase(phaseResult)

	points := scoring.TallyVotes(s.votes)
	counts := make(map[string]int, len(points))
	for id, earned := range points {
		if p := s.players.get(id); p != nil {
			p.Score += earned
		}
		counts[id] = earned / scoring.PointsPerVote
	}
	s.broadcast("phase", map[string]any{
		"phase":       phaseResult,
		"scores":      s.scoreTable(points),
		"voteCounts":  counts,
		"round":       s.round,
		"totalRounds": s.totalRounds,
	})
	s.record.Record(s.mode, "votes_tallied", map[string]any{"round": s.round, "subject": s.subject.ID, "voteCounts": counts})
	s.after(&s.tick, s.settings.Intermission, func() {
		if s.round >= s.totalRounds {
			s.finish()
			return
		}
		s.startRound()
	})
}

func (s *Sketch) returnToLobby() {
	s.subject = words.Subject{}
	s.artists = nil
	s.strokes = make(map[string][]Stroke)
	s.votes = make(map[string]string)
	s.pool.Reset()
	s.room.returnToLobby()
}
