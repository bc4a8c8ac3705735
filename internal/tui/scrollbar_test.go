package tui

import (
	"strings"
	"testing"
)

func TestRenderScrollbar(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		thumbLine int
	}{
		{"top", 0, 0},
		{"bottom", 90, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(renderScrollbar(10, 100, tt.offset), "\n")
			if len(lines) != 10 {
				t.Fatalf("expected 10 lines, got %d", len(lines))
			}
			if !strings.Contains(lines[tt.thumbLine], scrollbarThumb) {
				t.Errorf("expected thumb on line %d", tt.thumbLine)
			}
		})
	}
}

func TestRenderScrollbarContentFits(t *testing.T) {
	for i, line := range strings.Split(renderScrollbar(10, 5, 0), "\n") {
		if !strings.Contains(line, scrollbarTrack) {
			t.Errorf("expected track on line %d", i)
		}
	}
}

func TestRenderScrollbarZeroHeight(t *testing.T) {
	if got := renderScrollbar(0, 10, 0); got != "" {
		t.Errorf("expected empty scrollbar, got %q", got)
	}
}

func TestNetIndicatorBounces(t *testing.T) {
	n := NewNetIndicator()
	n, _ = n.Update(NetIndicatorTickMsg{})
	if n.position != 0 {
		t.Error("idle indicator should not move")
	}

	n.SetActivity(NetActivityGhost)
	for i := 0; i < n.width+2; i++ {
		n, _ = n.Update(NetIndicatorTickMsg{})
	}
	if n.direction != -1 {
		t.Error("expected indicator to bounce off the right edge")
	}
	if !strings.Contains(n.View(), "listening") {
		t.Errorf("unexpected view %q", n.View())
	}
}
