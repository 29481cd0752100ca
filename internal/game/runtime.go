package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Executor runs posted functions one at a time.
type Executor interface {
	Post(fn func())
}

// Scheduler fires callbacks after a delay or on an interval. The returned
// func cancels the timer.
type Scheduler interface {
	After(d time.Duration, fn func()) func()
	Every(d time.Duration, fn func()) func()
}

// Runtime is everything a room needs from its environment. Go runs slow
// external calls off the executor.
type Runtime struct {
	Context context.Context
	Exec    Executor
	Sched   Scheduler
	Go      func(fn func())
	Rand    *rand.Rand
	Log     logrus.FieldLogger
}

// NewRuntime builds a production runtime backed by a serial executor.
func NewRuntime(ctx context.Context, log logrus.FieldLogger) (Runtime, *SerialExecutor) {
	exec := NewSerialExecutor(log, 256)
	return Runtime{
		Context: ctx,
		Exec:    exec,
		Sched:   ClockScheduler{},
		Go:      func(fn func()) { go fn() },
		Rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Log:     log,
	}, exec
}

func (rt Runtime) withDefaults() Runtime {
	if rt.Context == nil {
		rt.Context = context.Background()
	}
	if rt.Sched == nil {
		rt.Sched = ClockScheduler{}
	}
	if rt.Go == nil {
		rt.Go = func(fn func()) { go fn() }
	}
	if rt.Rand == nil {
		rt.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if rt.Log == nil {
		rt.Log = logrus.StandardLogger()
	}
	return rt
}

// SerialExecutor drains a queue on a single goroutine. A panicking task is
// logged and the loop keeps running.
type SerialExecutor struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	log   logrus.FieldLogger
}

func NewSerialExecutor(log logrus.FieldLogger, buffer int) *SerialExecutor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &SerialExecutor{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
		log:   log,
	}
	go e.loop()
	return e
}

func (e *SerialExecutor) Post(fn func()) {
	select {
	case <-e.done:
	case e.tasks <- fn:
	}
}

func (e *SerialExecutor) Close() {
	e.once.Do(func() { close(e.done) })
}

func (e *SerialExecutor) loop() {
	for {
		select {
		case <-e.done:
			return
		case fn := <-e.tasks:
			e.run(fn)
		}
	}
}

func (e *SerialExecutor) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", fmt.Sprint(r)).WithField("stack", string(debug.Stack())).Error("room task panicked")
		}
	}()
	fn()
}

// ClockScheduler uses wall-clock timers.
type ClockScheduler struct{}

func (ClockScheduler) After(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

func (ClockScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
		})
	}
}

// timerSlot holds at most one live timer. Callbacks that fire after the
// slot was stopped or reused are dropped by comparing seq.
type timerSlot struct {
	seq    uint64
	cancel func()
}

func (s *timerSlot) stop() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *timerSlot) active() bool {
	return s.cancel != nil
}
