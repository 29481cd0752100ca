package game

import (
	"context"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

// queueExecutor runs tasks synchronously but never re-enters: work posted
// while a task is running waits until that task returns.
type queueExecutor struct {
	queue   []func()
	running bool
}

func (e *queueExecutor) Post(fn func()) {
	e.queue = append(e.queue, fn)
	if e.running {
		return
	}
	e.running = true
	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		next()
	}
	e.running = false
}

type fakeTimer struct {
	id      int
	at      time.Duration
	period  time.Duration
	fn      func()
	stopped bool
}

// fakeScheduler advances virtual time on demand.
type fakeScheduler struct {
	now    time.Duration
	nextID int
	timers []*fakeTimer
}

func (s *fakeScheduler) add(d, period time.Duration, fn func()) func() {
	s.nextID++
	timer := &fakeTimer{id: s.nextID, at: s.now + d, period: period, fn: fn}
	s.timers = append(s.timers, timer)
	return func() { timer.stopped = true }
}

func (s *fakeScheduler) After(d time.Duration, fn func()) func() {
	return s.add(d, 0, fn)
}

func (s *fakeScheduler) Every(d time.Duration, fn func()) func() {
	return s.add(d, d, fn)
}

func (s *fakeScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		due := s.due(target)
		if due == nil {
			break
		}
		s.now = due.at
		if due.period > 0 {
			due.at += due.period
		} else {
			due.stopped = true
		}
		due.fn()
	}
	s.now = target
}

func (s *fakeScheduler) due(target time.Duration) *fakeTimer {
	live := s.timers[:0]
	for _, timer := range s.timers {
		if !timer.stopped {
			live = append(live, timer)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at == s.timers[j].at {
			return s.timers[i].id < s.timers[j].id
		}
		return s.timers[i].at < s.timers[j].at
	})
	if len(s.timers) == 0 || s.timers[0].at > target {
		return nil
	}
	return s.timers[0]
}

func (s *fakeScheduler) Live() int {
	count := 0
	for _, timer := range s.timers {
		if !timer.stopped {
			count++
		}
	}
	return count
}

type sent struct {
	to     string
	except string
	msg    Message
}

// captureNotifier records every outbound message.
type captureNotifier struct {
	log []sent
}

func (n *captureNotifier) Broadcast(msg Message) {
	n.log = append(n.log, sent{msg: msg})
}

func (n *captureNotifier) BroadcastExcept(playerID string, msg Message) {
	n.log = append(n.log, sent{except: playerID, msg: msg})
}

func (n *captureNotifier) Send(playerID string, msg Message) {
	n.log = append(n.log, sent{to: playerID, msg: msg})
}

// public returns broadcast messages of kind.
func (n *captureNotifier) public(kind string) []Message {
	var out []Message
	for _, s := range n.log {
		if s.to == "" && s.msg.Type == kind {
			out = append(out, s.msg)
		}
	}
	return out
}

// private returns messages of kind sent to playerID alone.
func (n *captureNotifier) private(playerID, kind string) []Message {
	var out []Message
	for _, s := range n.log {
		if s.to == playerID && s.msg.Type == kind {
			out = append(out, s.msg)
		}
	}
	return out
}

func (n *captureNotifier) count(kind string) int {
	total := 0
	for _, s := range n.log {
		if s.msg.Type == kind {
			total++
		}
	}
	return total
}

func (n *captureNotifier) last(kind string) Message {
	for i := len(n.log) - 1; i >= 0; i-- {
		if n.log[i].msg.Type == kind {
			return n.log[i].msg
		}
	}
	return Message{}
}

func (n *captureNotifier) reset() {
	n.log = nil
}

type recorded struct {
	mode      Mode
	eventType string
	payload   map[string]any
}

type captureRecorder struct {
	events []recorded
}

func (r *captureRecorder) Record(mode Mode, eventType string, payload map[string]any) {
	r.events = append(r.events, recorded{mode: mode, eventType: eventType, payload: payload})
}

func (r *captureRecorder) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.eventType)
	}
	return out
}

type harness struct {
	rt       Runtime
	sched    *fakeScheduler
	notifier *captureNotifier
	recorder *captureRecorder
	deps     Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	sched := &fakeScheduler{}
	notifier := &captureNotifier{}
	recorder := &captureRecorder{}
	return &harness{
		rt: Runtime{
			Context: context.Background(),
			Exec:    &queueExecutor{},
			Sched:   sched,
			Go:      func(fn func()) { fn() },
			Rand:    rand.New(rand.NewPCG(1, 2)),
			Log:     logger,
		},
		sched:    sched,
		notifier: notifier,
		recorder: recorder,
		deps:     Deps{Notifier: notifier, Recorder: recorder},
	}
}

func join(r interface{ Dispatch(Action) }, ids ...string) {
	for _, id := range ids {
		r.Dispatch(Action{Kind: ActionJoin, PlayerID: id, Nickname: "nick-" + id})
	}
}

func line(x1, y1, x2, y2 float64) *Stroke {
	return &Stroke{Points: []Point{{X: x1, Y: y1}, {X: x2, Y: y2}}, Color: "#000", Width: 3}
}
