package pinio

import "testing"

func TestSimLogsOnlyTransitions(t *testing.T) {
	s := NewSim()
	s.WriteStepPin(0) // no-op, already low
	s.WriteStepPin(1)
	s.WriteStepPin(1) // no-op, already high
	s.WriteStepPin(0)

	if len(s.Log) != 2 {
		t.Fatalf("expected 2 logged edges, got %d: %+v", len(s.Log), s.Log)
	}
	if s.Log[0].Level != 1 || s.Log[1].Level != 0 {
		t.Fatalf("unexpected edge sequence: %+v", s.Log)
	}
}

func TestSimAdvanceStampsMicros(t *testing.T) {
	s := NewSim()
	s.Advance(100)
	s.WriteDirPin(1)
	if got := s.Log[0].Micros; got != 100 {
		t.Fatalf("expected edge stamped at 100us, got %d", got)
	}
	if s.DirLevel() != 1 {
		t.Fatalf("expected dir level 1, got %d", s.DirLevel())
	}
}
