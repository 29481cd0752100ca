package game

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"vive-gamer/internal/imagegen"
	"vive-gamer/internal/scoring"
	"vive-gamer/internal/words"
)

var teleportTransitions = map[string][]string{
	phaseLobby:       {phasePromptWrite},
	phasePromptWrite: {phaseGenerating},
	phaseGenerating:  {phaseDescribe},
	phaseDescribe:    {phaseGenerating2},
	phaseGenerating2: {phaseReveal},
	phaseReveal:      {phaseVoting},
	phaseVoting:      {phaseResult},
	phaseResult:      {phaseLobby},
}

// Chain is one prompt traced through both syntheses.
type Chain struct {
	PlayerID          string `json:"playerId"`
	Nickname          string `json:"nickname"`
	OriginalPrompt    string `json:"originalPrompt"`
	StyleCard         string `json:"styleCard"`
	Image1            string `json:"image1"`
	DescriberID       string `json:"describerId"`
	DescriberNickname string `json:"describerNickname"`
	Description       string `json:"description"`
	Image2            string `json:"image2"`
}

type synthesisJob struct {
	key    string
	prompt string
	style  string
}

// Teleport relays prompt -> image -> description -> image around the table.
type Teleport struct {
	*room
	settings TeleportSettings
	synth    imagegen.Synthesizer
	styles   []string

	participants []string
	styleOf      map[string]string
	describerOf  map[string]string
	prompts      map[string]string
	descriptions map[string]string
	images1      map[string]string
	images2      map[string]string
	chains       []Chain
	votes        map[string]string

	imagesReady bool
	pauseDone   bool
}

func NewTeleport(rt Runtime, deps Deps, settings TeleportSettings, synth imagegen.Synthesizer, styles []string) *Teleport {
	t := &Teleport{
		room:     newRoom(ModeTeleport, rt, deps, teleportTransitions),
		settings: settings,
		synth:    synth,
		styles:   append([]string(nil), styles...),
	}
	t.handle = t.Handle
	t.reset = t.returnToLobby
	t.clearGame()
	return t
}

func (t *Teleport) Handle(a Action) {
	switch a.Kind {
	case ActionJoin:
		t.join(a)
	case ActionLeave:
		if t.leave(a.PlayerID) != nil {
			t.recheck()
		}
	case ActionStart:
		t.start(a.PlayerID)
	case ActionSubmitPrompt:
		t.submitPrompt(a)
	case ActionSubmitDescription:
		t.submitDescription(a)
	case ActionStartVoting:
		t.startVoting(a.PlayerID)
	case ActionVote:
		t.vote(a)
	case ActionReturnToLobby:
		if t.phase == phaseResult {
			t.returnToLobby()
		}
	default:
		t.log.WithField("kind", a.Kind).Debug("ignored action")
	}
}

func (t *Teleport) clearGame() {
	t.participants = nil
	t.styleOf = make(map[string]string)
	t.describerOf = make(map[string]string)
	t.prompts = make(map[string]string)
	t.descriptions = make(map[string]string)
	t.images1 = make(map[string]string)
	t.images2 = make(map[string]string)
	t.chains = nil
	t.votes = make(map[string]string)
	t.imagesReady = false
	t.pauseDone = false
}

func (t *Teleport) isParticipant(id string) bool {
	_, ok := t.styleOf[id]
	return ok
}

func (t *Teleport) start(playerID string) {
	if !t.canStart(playerID) {
		return
	}
	t.clearGame()
	t.players.resetPlayers()
	for _, p := range t.players.connected() {
		t.participants = append(t.participants, p.ID)
		t.styleOf[p.ID] = t.pickStyle()
	}
	t.describerOf = ChainOrder(t.participants, t.rt.Rand.Shuffle)
	t.round = 1
	t.totalRounds = 1
	t.record.Record(t.mode, "game_started", map[string]any{"players": len(t.participants)})

	if !t.setPhase(phasePromptWrite) {
		return
	}
	for _, id := range t.participants {
		t.send(id, "phase", map[string]any{
			"phase":     phasePromptWrite,
			"styleCard": t.styleOf[id],
			"timeLimit": t.settings.PromptSeconds,
		})
	}
	t.countdown(t.settings.PromptSeconds, t.startGenerating)
}

func (t *Teleport) pickStyle() string {
	if len(t.styles) == 0 {
		return ""
	}
	return t.styles[t.rt.Rand.IntN(len(t.styles))]
}

// ChainOrder maps each owner to the player describing their image. Owners
// are shuffled into a ring and each is described by the next in the ring,
// so nobody describes their own prompt when there are two or more owners.
func ChainOrder(owners []string, shuffle func(n int, swap func(i, j int))) map[string]string {
	ring := append([]string(nil), owners...)
	if shuffle != nil {
		shuffle(len(ring), func(i, j int) { ring[i], ring[j] = ring[j], ring[i] })
	}
	out := make(map[string]string, len(ring))
	for i, owner := range ring {
		out[owner] = ring[(i+1)%len(ring)]
	}
	return out
}

func (t *Teleport) submitPrompt(a Action) {
	if t.phase != phasePromptWrite || !t.isParticipant(a.PlayerID) {
		return
	}
	text := strings.TrimSpace(a.Text)
	if text == "" {
		text = words.DefaultPrompt
	}
	t.prompts[a.PlayerID] = text
	t.broadcast("submission_update", map[string]any{"submitted": len(t.prompts), "total": len(t.participants)})
	if t.allSubmitted(t.hasPrompt) {
		t.startGenerating()
	}
}

func (t *Teleport) submitDescription(a Action) {
	if t.phase != phaseDescribe || !t.isParticipant(a.PlayerID) {
		return
	}
	text := strings.TrimSpace(a.Text)
	if text == "" {
		text = words.DefaultDescription
	}
	t.descriptions[a.PlayerID] = text
	t.broadcast("submission_update", map[string]any{"submitted": len(t.descriptions), "total": len(t.participants)})
	if t.allSubmitted(t.hasDescription) {
		t.startGenerating2()
	}
}

// allSubmitted reports whether every connected participant has done.
func (t *Teleport) allSubmitted(done func(id string) bool) bool {
	for _, id := range t.participants {
		p := t.players.get(id)
		if p != nil && p.Connected && !done(id) {
			return false
		}
	}
	return true
}

func (t *Teleport) hasPrompt(id string) bool {
	_, ok := t.prompts[id]
	return ok
}

func (t *Teleport) hasDescription(id string) bool {
	_, ok := t.descriptions[id]
	return ok
}

func (t *Teleport) hasVoted(id string) bool {
	_, ok := t.votes[id]
	return ok
}

func (t *Teleport) recheck() {
	switch t.phase {
	case phasePromptWrite:
		if t.allSubmitted(t.hasPrompt) {
			t.startGenerating()
		}
	case phaseDescribe:
		if t.allSubmitted(t.hasDescription) {
			t.startGenerating2()
		}
	case phaseVoting:
		t.checkVotes()
	}
}

func (t *Teleport) startGenerating() {
	if t.phase != phasePromptWrite {
		return
	}
	t.stopTimers()
	for _, id := range t.participants {
		if _, ok := t.prompts[id]; !ok {
			t.prompts[id] = words.DefaultPrompt
		}
	}
	if !t.setPhase(phaseGenerating) {
		return
	}
	t.broadcast("phase", map[string]any{"phase": phaseGenerating, "timeLimit": int(t.settings.GeneratePause.Seconds())})

	jobs := make([]synthesisJob, 0, len(t.participants))
	for _, id := range t.participants {
		jobs = append(jobs, synthesisJob{key: id, prompt: t.prompts[id], style: t.styleOf[id]})
	}
	t.generate(jobs, func(images map[string]string) { t.images1 = images }, t.startDescribe)
}

func (t *Teleport) startDescribe() {
	if !t.setPhase(phaseDescribe) {
		return
	}
	for _, owner := range t.participants {
		t.send(t.describerOf[owner], "phase", map[string]any{
			"phase":           phaseDescribe,
			"image":           t.images1[owner],
			"originalOwnerId": owner,
			"timeLimit":       t.settings.DescribeSeconds,
		})
	}
	t.countdown(t.settings.DescribeSeconds, t.startGenerating2)
}

func (t *Teleport) startGenerating2() {
	if t.phase != phaseDescribe {
		return
	}
	t.stopTimers()
	for _, owner := range t.participants {
		describer := t.describerOf[owner]
		if _, ok := t.descriptions[describer]; !ok {
			t.descriptions[describer] = words.DefaultDescription
		}
	}
	if !t.setPhase(phaseGenerating2) {
		return
	}
	t.broadcast("phase", map[string]any{"phase": phaseGenerating2, "timeLimit": int(t.settings.GeneratePause.Seconds())})

	jobs := make([]synthesisJob, 0, len(t.participants))
	for _, owner := range t.participants {
		describer := t.describerOf[owner]
		jobs = append(jobs, synthesisJob{key: describer, prompt: t.descriptions[describer]})
	}
	t.generate(jobs, func(images map[string]string) { t.images2 = images }, t.startReveal)
}

// generate synthesizes every job in parallel and calls next once both the
// images are ready and the pause has elapsed. Results from an earlier phase
// are dropped.
func (t *Teleport) generate(jobs []synthesisJob, store func(map[string]string), next func()) {
	t.imagesReady = false
	t.pauseDone = false
	gen := t.gen
	advance := func() {
		if t.imagesReady && t.pauseDone {
			next()
		}
	}
	t.after(&t.tick, t.settings.GeneratePause, func() {
		t.pauseDone = true
		advance()
	})
	t.spawn(func(ctx context.Context) func() {
		results := t.synthesizeAll(ctx, jobs)
		return func() {
			if gen != t.gen {
				t.log.Debug("discarded stale images")
				return
			}
			store(results)
			t.imagesReady = true
			advance()
		}
	})
}

func (t *Teleport) synthesizeAll(ctx context.Context, jobs []synthesisJob) map[string]string {
	images := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if t.settings.Parallelism > 0 {
		g.SetLimit(t.settings.Parallelism)
	}
	for i, job := range jobs {
		g.Go(func() error {
			if t.synth == nil {
				images[i] = imagegen.Placeholder(job.prompt, job.style)
				return nil
			}
			images[i] = t.synth.Synthesize(gctx, job.prompt, job.style)
			return nil
		})
	}
	_ = g.Wait()
	out := make(map[string]string, len(jobs))
	for i, job := range jobs {
		out[job.key] = images[i]
	}
	return out
}

func (t *Teleport) startReveal() {
	if !t.setPhase(phaseReveal) {
		return
	}
	t.chains = make([]Chain, 0, len(t.participants))
	for _, owner := range t.participants {
		describer := t.describerOf[owner]
		chain := Chain{
			PlayerID:       owner,
			OriginalPrompt: t.prompts[owner],
			StyleCard:      t.styleOf[owner],
			Image1:         t.images1[owner],
			DescriberID:    describer,
			Description:    t.descriptions[describer],
			Image2:         t.images2[describer],
		}
		if p := t.players.get(owner); p != nil {
			chain.Nickname = p.Nickname
		}
		if p := t.players.get(describer); p != nil {
			chain.DescriberNickname = p.Nickname
		}
		t.chains = append(t.chains, chain)
	}
	t.broadcast("phase", map[string]any{"phase": phaseReveal, "chains": t.chains})
}

func (t *Teleport) startVoting(playerID string) {
	if t.phase != phaseReveal || t.players.get(playerID) == nil {
		return
	}
	if !t.setPhase(phaseVoting) {
		return
	}
	t.votes = make(map[string]string)
	t.broadcast("phase", map[string]any{"phase": phaseVoting, "chains": t.chains})
}

func (t *Teleport) vote(a Action) {
	if t.phase != phaseVoting || a.PlayerID == a.TargetID {
		return
	}
	if !t.isParticipant(a.PlayerID) || !t.isParticipant(a.TargetID) {
		return
	}
	if p := t.players.get(a.PlayerID); p == nil || !p.Connected {
		return
	}
	t.votes[a.PlayerID] = a.TargetID
	t.broadcast("vote_update", map[string]any{"votedCount": len(t.votes)})
	t.checkVotes()
}

func (t *Teleport) checkVotes() {
	if t.allSubmitted(t.hasVoted) {
		t.tally()
	}
}

func (t *Teleport) tally() {
	if t.phase != phaseVoting || !t.setPhase(phaseResult) {
		return
	}
	points := scoring.TallyVotes(t.votes)
	counts := make(map[string]int, len(points))
	for id, earned := range points {
		if p := t.players.get(id); p != nil {
			p.Score += earned
		}
		counts[id] = earned / scoring.PointsPerVote
	}
	scores := t.scoreTable(points)
	winner := scoring.Winner(scores)
	t.broadcast("phase", map[string]any{
		"phase":      phaseResult,
		"scores":     scores,
		"voteCounts": counts,
		"winner":     winner,
	})
	t.record.Record(t.mode, "votes_tallied", map[string]any{"voteCounts": counts, "winner": winner})
}

func (t *Teleport) returnToLobby() {
	t.clearGame()
	t.room.returnToLobby()
}
