package engine

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/cellterm/core"
	"github.com/lixenwraith/cellterm/screen"
	"github.com/lixenwraith/cellterm/status"
	"github.com/lixenwraith/cellterm/terminal"
)

// Update is the user state transition: consume one message, return the
// next state and an effect for the scheduler to interpret
type Update[S any] func(S, Msg) (S, Cmd)

// View paints the current state into a frame. It must not retain the
// frame past the call
type View[S any] func(S, *screen.Frame)

// Options configures a scheduler run. The zero value gets sensible
// defaults filled in
type Options struct {
	// FPS sets the frame tick rate. Default 60
	FPS int

	// PollTimeout bounds the queue wait per loop iteration. Default 50ms
	PollTimeout time.Duration

	// Mouse selects which mouse events the terminal reports
	Mouse terminal.MouseMode

	// BracketedPaste delivers pastes as single PasteMsg values
	BracketedPaste bool

	// ReportFocus delivers FocusMsg on terminal focus changes
	ReportFocus bool

	// OnError maps a run-loop panic to an exit code after the terminal
	// has been restored. Nil means ErrorExitCode
	OnError func(error) int

	// ErrorExitCode is the exit code for unhandled errors when OnError
	// is nil. Default 1
	ErrorExitCode int

	// OnSignal overrides the exit code for a termination signal.
	// Nil means 128 + signal number
	OnSignal func(os.Signal) int

	// OnCleanup runs during shutdown, after terminal restore
	OnCleanup func()

	// Clock is the time source for staleness checks. Default real time
	Clock Clock

	// Stats receives runtime counters. Default fresh registry
	Stats *status.Registry
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 50 * time.Millisecond
	}
	if o.ErrorExitCode == 0 {
		o.ErrorExitCode = 1
	}
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.Stats == nil {
		o.Stats = status.NewRegistry()
	}
	return o
}

// Scheduler drives the single-threaded run loop: one goroutine owns the
// state, the screen, and message delivery. Input, timers, and tasks run
// on their own goroutines but only ever touch the queue
type Scheduler[S any] struct {
	backend  terminal.Backend
	viewport screen.Viewport
	scr      *screen.Screen
	queue    *Queue

	init   S
	update Update[S]
	view   View[S]
	opts   Options
	clock  Clock

	frameInterval time.Duration
	frameStop     chan struct{}
	userTick      chan struct{} // close stops the active user timer

	// epoch is the cancellation token: bumped on quit, compared by task
	// goroutines before enqueueing results
	epoch atomic.Uint64

	quitting     bool
	exitCode     int
	shutdownDone bool

	pumpStop chan struct{}

	statMessages  *atomic.Int64
	statStale     *atomic.Int64
	statCoalesced *atomic.Int64
	statTicks     *atomic.Int64
	statTasks     *atomic.Int64
	statLastMsg   *status.Text
}

// New creates a scheduler for the given backend and viewport.
// Run performs all terminal setup; nothing touches the terminal before
func New[S any](backend terminal.Backend, vp screen.Viewport, init S, update Update[S], view View[S], opts Options) *Scheduler[S] {
	opts = opts.withDefaults()
	s := &Scheduler[S]{
		backend:       backend,
		viewport:      vp,
		queue:         NewQueue(),
		init:          init,
		update:        update,
		view:          view,
		opts:          opts,
		clock:         opts.Clock,
		frameInterval: time.Second / time.Duration(opts.FPS),
		pumpStop:      make(chan struct{}),
		statMessages:  opts.Stats.Ints.Get("engine.messages"),
		statStale:     opts.Stats.Ints.Get("engine.stale_dropped"),
		statCoalesced: opts.Stats.Ints.Get("engine.coalesced"),
		statTicks:     opts.Stats.Ints.Get("engine.ticks"),
		statTasks:     opts.Stats.Ints.Get("engine.tasks"),
		statLastMsg:   opts.Stats.Strings.Get("engine.last_msg"),
	}
	return s
}

// Run executes the loop until a quit command, an unhandled error, or a
// termination signal. Returns the process exit code
func (s *Scheduler[S]) Run() (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			// Terminal modes come back before anything else happens,
			// then the normal teardown releases pumps and tickers
			s.backend.Fini()
			s.shutdown()
			err = fmt.Errorf("engine: run loop panic: %v", r)
			if s.opts.OnError != nil {
				code = s.opts.OnError(err)
			} else {
				code = s.opts.ErrorExitCode
			}
		}
	}()

	if err := s.backend.Init(); err != nil {
		return s.opts.ErrorExitCode, fmt.Errorf("engine: %w", err)
	}
	s.scr = screen.NewScreen(s.backend, s.viewport, s.opts.Stats)

	if s.opts.Mouse != terminal.MouseModeNone {
		if err := s.backend.SetMouseMode(s.opts.Mouse); err != nil {
			s.backend.Fini()
			return s.opts.ErrorExitCode, fmt.Errorf("engine: %w", err)
		}
	}
	if s.opts.BracketedPaste {
		s.backend.SetBracketedPaste(true)
	}
	if s.opts.ReportFocus {
		s.backend.SetFocusReporting(true)
	}

	s.startInputPump()
	sigCh := s.startSignals()
	defer signal.Stop(sigCh)

	state := s.init

	// Init message runs exactly once, then the first paint happens
	// before the frame clock starts
	state, cmd := s.update(state, InitMsg{})
	if s.interpret(cmd) {
		s.render(state)
		s.startFrameTick()

		for !s.quitting {
			if n := s.queue.Coalesce(); n > 0 {
				s.statCoalesced.Add(int64(n))
			}
			msg := s.queue.Next(s.opts.PollTimeout)

			if s.isStale(msg) {
				s.statStale.Add(1)
				continue
			}
			if sm, ok := msg.(signalMsg); ok {
				s.interpret(QuitCmd{Code: s.signalCode(sm.sig)})
				break
			}

			s.statMessages.Add(1)
			s.statLastMsg.Store(fmt.Sprintf("%T", msg))

			_, isFrame := msg.(FrameMsg)
			state, cmd = s.update(state, msg)
			if !s.interpret(cmd) {
				break
			}
			if isFrame {
				s.render(state)
			}
		}
	}

	s.shutdown()
	return s.exitCode, nil
}

// Push enqueues a message from outside the loop. Safe from any goroutine
func (s *Scheduler[S]) Push(m Msg) {
	s.queue.Push(m)
}

func (s *Scheduler[S]) render(state S) {
	s.scr.Draw(func(f *screen.Frame) {
		s.view(state, f)
	})
}

// interpret executes a command tree. Returns false when the loop must stop
func (s *Scheduler[S]) interpret(cmd Cmd) bool {
	switch c := cmd.(type) {
	case nil:
		return true
	case QuitCmd:
		s.epoch.Add(1)
		s.stopUserTick()
		s.stopFrameTick()
		s.exitCode = c.Code
		s.quitting = true
		return false
	case BatchCmd:
		for _, sub := range c.Cmds {
			if !s.interpret(sub) {
				return false
			}
		}
		return true
	case EmitCmd:
		s.queue.Push(c.Msg)
		return true
	case TickCmd:
		s.startUserTick(c.Interval)
		return true
	case StopTickCmd:
		s.stopUserTick()
		return true
	case TaskCmd:
		s.launchTask(c)
		return true
	case InsertBeforeCmd:
		if s.viewport.Kind == screen.KindInline && c.Height > 0 && c.Fn != nil {
			s.scr.InsertBefore(c.Height, c.Fn)
		}
		return true
	}
	return true
}

// isStale reports whether a frame tick outlived its usefulness: older
// than twice the frame interval means a stall happened and rendering a
// backlog of frames would only add lag
func (s *Scheduler[S]) isStale(m Msg) bool {
	fm, ok := m.(FrameMsg)
	if !ok {
		return false
	}
	return s.clock.Now().Sub(fm.At) > 2*s.frameInterval
}

func (s *Scheduler[S]) launchTask(c TaskCmd) {
	epoch := s.epoch.Load()
	s.statTasks.Add(1)
	core.Go(func() {
		res, taskErr := c.Run()

		// A quit since launch means nobody wants this result
		if s.epoch.Load() != epoch {
			return
		}

		var m Msg = NoneMsg{}
		if taskErr != nil {
			if c.OnError != nil {
				m = c.OnError(taskErr)
			}
		} else if c.OnResult != nil {
			m = c.OnResult(res)
		}
		if m != nil {
			s.queue.Push(m)
		}
	})
}

// startUserTick starts the periodic user timer, replacing any existing
// one. TickMsg carries cumulative elapsed time since this start
func (s *Scheduler[S]) startUserTick(interval time.Duration) {
	s.stopUserTick()
	stop := make(chan struct{})
	s.userTick = stop
	start := s.clock.Now()

	core.Go(func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.statTicks.Add(1)
				s.queue.Push(TickMsg{Elapsed: s.clock.Now().Sub(start)})
			}
		}
	})
}

func (s *Scheduler[S]) stopUserTick() {
	if s.userTick != nil {
		close(s.userTick)
		s.userTick = nil
	}
}

func (s *Scheduler[S]) startFrameTick() {
	stop := make(chan struct{})
	s.frameStop = stop
	interval := s.frameInterval

	core.Go(func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var n uint64
		last := s.clock.Now()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				now := s.clock.Now()
				s.queue.Push(FrameMsg{Delta: now.Sub(last), Frame: n, At: now})
				last = now
				n++
			}
		}
	})
}

func (s *Scheduler[S]) stopFrameTick() {
	if s.frameStop != nil {
		close(s.frameStop)
		s.frameStop = nil
	}
}

// startInputPump forwards backend events onto the queue until the
// backend closes or shutdown begins
func (s *Scheduler[S]) startInputPump() {
	core.Go(func() {
		events := s.backend.Events()
		for {
			select {
			case <-s.pumpStop:
				return
			case ev, ok := <-events:
				if !ok || ev.Type == terminal.EventClosed {
					return
				}
				if m := fromEvent(ev); m != nil {
					s.queue.Push(m)
				}
			}
		}
	})
}

// startSignals routes interrupt/terminate through the queue so they are
// handled on the scheduler goroutine like any other message
func (s *Scheduler[S]) startSignals() chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	core.Go(func() {
		for {
			select {
			case <-s.pumpStop:
				return
			case sig := <-sigCh:
				s.queue.Push(signalMsg{sig: sig})
			}
		}
	})
	return sigCh
}

func (s *Scheduler[S]) signalCode(sig os.Signal) int {
	if s.opts.OnSignal != nil {
		return s.opts.OnSignal(sig)
	}
	if n, ok := sig.(syscall.Signal); ok {
		return 128 + int(n)
	}
	return s.opts.ErrorExitCode
}

// shutdown tears the run down in a fixed order: timers, cancellation
// token, input, terminal modes, user cleanup, final flush. Runs at most
// once; the panic path and the normal exit path both land here
func (s *Scheduler[S]) shutdown() {
	if s.shutdownDone {
		return
	}
	s.shutdownDone = true

	s.stopUserTick()
	s.stopFrameTick()
	s.epoch.Add(1)
	close(s.pumpStop)
	s.backend.Fini()
	if s.opts.OnCleanup != nil {
		s.opts.OnCleanup()
	}
	s.backend.Flush()
}
