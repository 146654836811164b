package engine

import (
	"time"

	"github.com/lixenwraith/cellterm/screen"
)

// Cmd describes an effect for the scheduler to interpret after an
// update. A nil Cmd means no effect. Commands are data; all execution
// happens inside the scheduler so update functions stay pure
type Cmd interface {
	isCmd()
}

// QuitCmd stops the run loop with the given process exit code
type QuitCmd struct {
	Code int
}

// BatchCmd interprets sub-commands in order, stopping early if one quits
type BatchCmd struct {
	Cmds []Cmd
}

// EmitCmd enqueues a message; it becomes visible on the next loop
// iteration, never synchronously within the current one
type EmitCmd struct {
	Msg Msg
}

// TickCmd starts the periodic user timer, replacing any existing one
type TickCmd struct {
	Interval time.Duration
}

// StopTickCmd cancels the user timer, if any
type StopTickCmd struct{}

// TaskCmd runs Run off the scheduler goroutine; its result is mapped
// through OnResult or OnError and enqueued, unless the run was quit in
// the meantime, in which case the result is discarded. A nil mapper
// yields a NoneMsg
type TaskCmd struct {
	Run      func() (any, error)
	OnResult func(any) Msg
	OnError  func(error) Msg
}

// InsertBeforeCmd prints lines above an inline viewport, pushing them
// into scrollback. Ignored for other viewport kinds
type InsertBeforeCmd struct {
	Height int
	Fn     func(*screen.Frame)
}

func (QuitCmd) isCmd()         {}
func (BatchCmd) isCmd()        {}
func (EmitCmd) isCmd()         {}
func (TickCmd) isCmd()         {}
func (StopTickCmd) isCmd()     {}
func (TaskCmd) isCmd()         {}
func (InsertBeforeCmd) isCmd() {}

// Quit returns a command stopping the run loop with the given exit code
func Quit(code int) Cmd {
	return QuitCmd{Code: code}
}

// Batch combines commands; nils are dropped. Returns nil when nothing
// remains
func Batch(cmds ...Cmd) Cmd {
	kept := make([]Cmd, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return BatchCmd{Cmds: kept}
}

// Emit returns a command enqueueing msg for the next iteration
func Emit(msg Msg) Cmd {
	return EmitCmd{Msg: msg}
}

// Tick returns a command starting the periodic user timer
func Tick(interval time.Duration) Cmd {
	return TickCmd{Interval: interval}
}

// StopTick returns a command cancelling the user timer
func StopTick() Cmd {
	return StopTickCmd{}
}

// Task returns a command running fn off the scheduler goroutine
func Task(fn func() (any, error), onResult func(any) Msg, onError func(error) Msg) Cmd {
	return TaskCmd{Run: fn, OnResult: onResult, OnError: onError}
}

// InsertBefore returns a command printing height lines above an inline
// viewport via fn
func InsertBefore(height int, fn func(*screen.Frame)) Cmd {
	return InsertBeforeCmd{Height: height, Fn: fn}
}
