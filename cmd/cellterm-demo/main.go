package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/cellterm/core"
	"github.com/lixenwraith/cellterm/engine"
	"github.com/lixenwraith/cellterm/render"
	"github.com/lixenwraith/cellterm/screen"
	"github.com/lixenwraith/cellterm/terminal"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type model struct {
	width, height int
	frame         uint64
	elapsed       time.Duration
	keys          []string
	focused       bool
	inline        bool
}

func update(m model, msg engine.Msg) (model, engine.Cmd) {
	switch msg := msg.(type) {
	case engine.InitMsg:
		m.focused = true
		return m, engine.Tick(time.Second)

	case engine.KeyMsg:
		switch {
		case msg.Key == terminal.KeyCtrlC, msg.Rune == 'q':
			return m, engine.Quit(0)
		case msg.Key == terminal.KeyRune:
			m.keys = append(m.keys, string(msg.Rune))
		default:
			m.keys = append(m.keys, msg.Key.String())
		}
		if len(m.keys) > 8 {
			m.keys = m.keys[len(m.keys)-8:]
		}
		if m.inline && msg.Rune == 'p' {
			line := fmt.Sprintf("printed above the viewport at frame %d", m.frame)
			return m, engine.InsertBefore(1, func(f *screen.Frame) {
				render.DrawText(f.Buffer(), 0, 0, line, core.DefaultStyle(core.RGB{R: 120, G: 120, B: 140}))
			})
		}
		return m, nil

	case engine.ResizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case engine.TickMsg:
		m.elapsed = msg.Elapsed
		return m, nil

	case engine.FocusMsg:
		m.focused = msg.Focused
		return m, nil

	case engine.FrameMsg:
		m.frame = msg.Frame
		return m, nil
	}
	return m, nil
}

func view(m model, f *screen.Frame) {
	buf := f.Buffer()
	w, h := f.Size()
	rect := core.Area{Width: w, Height: h}

	top := core.RGB{R: 40, G: 40, B: 70}
	bottom := core.RGB{R: 20, G: 20, B: 30}
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		buf.Fill(core.Area{Y: y, Width: w, Height: 1}, " ", core.Style{Bg: top.Mix(bottom, t)})
	}

	title := render.Line{
		{Text: spinner[int(m.frame)%len(spinner)] + " ", Style: core.Style{Fg: core.RGB{R: 100, G: 255, B: 100}}},
		{Text: "cellterm demo", Style: core.Style{Fg: core.RGBWhite, Attrs: core.AttrBold}},
		{Text: " — q quits", Style: core.Style{Fg: core.RGB{R: 140, G: 140, B: 160}}},
	}
	render.DrawLine(buf, rect, 0, title, core.Style{}, render.AlignCenter)

	status := fmt.Sprintf("up %s | frame %d | focus %v", m.elapsed.Truncate(time.Second), m.frame, m.focused)
	render.DrawLine(buf, rect, h-1, render.Line{{Text: status}},
		core.DefaultStyle(core.RGB{R: 140, G: 140, B: 160}), render.AlignLeft)

	for i, k := range m.keys {
		y := 2 + i
		if y >= h-1 {
			break
		}
		render.DrawText(buf, 2, y, k, core.DefaultStyle(core.RGB{R: 180, G: 180, B: 180}))
	}
}

func main() {
	inline := flag.Int("inline", 0, "run in an inline viewport of this height instead of full screen")
	useTcell := flag.Bool("tcell", false, "use the tcell backend")
	fps := flag.Int("fps", 60, "frame rate")
	flag.Parse()

	var backend terminal.Backend
	if *useTcell {
		backend = terminal.NewTcellBackend()
	} else {
		backend = terminal.NewBackend()
	}

	vp := screen.FullScreen()
	if *inline > 0 {
		vp = screen.Inline(*inline)
	}

	sched := engine.New(backend, vp, model{inline: *inline > 0}, update, view, engine.Options{
		FPS:            *fps,
		Mouse:          terminal.MouseModeClick,
		BracketedPaste: true,
		ReportFocus:    true,
	})

	code, err := sched.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cellterm-demo: %v\n", err)
	}
	os.Exit(code)
}
