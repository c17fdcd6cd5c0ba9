package rnode

import "testing"

type fakeNode struct{}

func (*fakeNode) AppendChild(child Node) Node { return child }
func (*fakeNode) InsertBefore(child, ref Node, isViewRoot bool) error { return nil }
func (*fakeNode) RemoveChild(child Node) error { return nil }

func TestIsNil(t *testing.T) {
	var typed *fakeNode
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"nil interface", nil, true},
		{"typed nil", typed, true},
		{"node", &fakeNode{}, false},
	}
	for _, tt := range tests {
		if got := IsNil(tt.node); got != tt.want {
			t.Errorf("%s: IsNil = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEventFlags(t *testing.T) {
	ev := NewEvent("click", 7)
	if ev.DefaultPrevented() || ev.PropagationStopped() {
		t.Fatal("new event has flags set")
	}
	ev.PreventDefault()
	ev.StopPropagation()
	if !ev.DefaultPrevented() || !ev.PropagationStopped() {
		t.Error("flags not recorded")
	}
	if ev.Detail != 7 {
		t.Errorf("detail = %v", ev.Detail)
	}
}
