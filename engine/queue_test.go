package engine

import (
	"testing"
	"time"

	"github.com/lixenwraith/cellterm/terminal"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(KeyMsg{Rune: 'a'})
	q.Push(KeyMsg{Rune: 'b'})
	q.Push(KeyMsg{Rune: 'c'})

	for _, want := range []rune{'a', 'b', 'c'} {
		m := q.Next(time.Millisecond)
		km, ok := m.(KeyMsg)
		if !ok || km.Rune != want {
			t.Fatalf("got %+v, want rune %q", m, want)
		}
	}
}

func TestQueueNextTimeoutReturnsNone(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	m := q.Next(20 * time.Millisecond)
	if _, ok := m.(NoneMsg); !ok {
		t.Fatalf("got %T, want NoneMsg", m)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("Next returned before timeout with empty queue")
	}
}

func TestQueueNextWakesOnPush(t *testing.T) {
	q := NewQueue()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(KeyMsg{Rune: 'x'})
	}()
	m := q.Next(time.Second)
	if km, ok := m.(KeyMsg); !ok || km.Rune != 'x' {
		t.Fatalf("got %+v, want pushed message", m)
	}
}

func TestCoalesceKeepsMostRecentFrame(t *testing.T) {
	q := NewQueue()
	q.Push(FrameMsg{Frame: 1})
	q.Push(KeyMsg{Rune: 'a'})
	q.Push(FrameMsg{Frame: 2})
	q.Push(FrameMsg{Frame: 3})

	dropped := q.Coalesce()
	if dropped != 2 {
		t.Errorf("dropped %d, want 2", dropped)
	}
	if q.Len() != 2 {
		t.Fatalf("queue length %d, want 2", q.Len())
	}

	first := q.Next(time.Millisecond)
	if km, ok := first.(KeyMsg); !ok || km.Rune != 'a' {
		t.Errorf("first survivor = %+v, want key 'a'", first)
	}
	second := q.Next(time.Millisecond)
	if fm, ok := second.(FrameMsg); !ok || fm.Frame != 3 {
		t.Errorf("second survivor = %+v, want frame 3", second)
	}
}

func TestCoalesceMouseMotion(t *testing.T) {
	q := NewQueue()
	q.Push(MouseMsg{X: 1, Action: terminal.MouseActionMove})
	q.Push(MouseMsg{X: 2, Action: terminal.MouseActionMove})
	q.Push(MouseMsg{X: 3, Action: terminal.MouseActionMove})

	q.Coalesce()
	if q.Len() != 1 {
		t.Fatalf("queue length %d, want 1", q.Len())
	}
	m := q.Next(time.Millisecond).(MouseMsg)
	if m.X != 3 {
		t.Errorf("survivor X = %d, want most recent 3", m.X)
	}
}

func TestCoalesceLeavesClicksAlone(t *testing.T) {
	q := NewQueue()
	q.Push(MouseMsg{X: 1})
	q.Push(MouseMsg{X: 2})
	if dropped := q.Coalesce(); dropped != 0 {
		t.Errorf("press events coalesced: dropped %d", dropped)
	}
}

func TestCoalescePreservesSurvivorOrder(t *testing.T) {
	q := NewQueue()
	q.Push(KeyMsg{Rune: 'a'})
	q.Push(FrameMsg{Frame: 1})
	q.Push(KeyMsg{Rune: 'b'})
	q.Push(ResizeMsg{Width: 80})
	q.Push(FrameMsg{Frame: 2})
	q.Push(ResizeMsg{Width: 100})

	q.Coalesce()
	var kinds []string
	for q.Len() > 0 {
		switch m := q.Next(time.Millisecond).(type) {
		case KeyMsg:
			kinds = append(kinds, "key:"+string(m.Rune))
		case FrameMsg:
			kinds = append(kinds, "frame")
		case ResizeMsg:
			kinds = append(kinds, "resize")
		}
	}
	want := []string{"key:a", "key:b", "frame", "resize"}
	if len(kinds) != len(want) {
		t.Fatalf("survivors = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("survivor %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}
