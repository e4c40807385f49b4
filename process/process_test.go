package process

import (
	"testing"
)

func TestParsePIDs(t *testing.T) {
	pids := ParsePIDs("123\n456\n789\n")
	if len(pids) != 3 {
		t.Fatalf("len = %d, want 3", len(pids))
	}
	if pids[0] != 123 || pids[1] != 456 || pids[2] != 789 {
		t.Errorf("pids = %v", pids)
	}
}

func TestParsePIDs_SkipsGarbage(t *testing.T) {
	pids := ParsePIDs("123\nabc\n456")
	if len(pids) != 2 {
		t.Fatalf("len = %d, want 2", len(pids))
	}
	if pids[0] != 123 || pids[1] != 456 {
		t.Errorf("pids = %v", pids)
	}
}

func TestParsePIDs_Empty(t *testing.T) {
	if pids := ParsePIDs(""); len(pids) != 0 {
		t.Errorf("pids = %v, want empty", pids)
	}
}
