// Package terminal provides the backend capability consumed by the screen
// and engine packages, plus two implementations:
//
//   - a direct ANSI backend for xterm-compatible terminals (raw stdin
//     parsing, SIGWINCH resize detection, style-coalesced output, no
//     terminfo/termcap)
//   - a tcell-backed backend for full-screen use where portability
//     matters more than inline viewports
//
// The core never parses terminal bytes itself; backends deliver typed
// events and accept cell updates.
package terminal
