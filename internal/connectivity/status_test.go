package connectivity

import "testing"

func TestStatusTransitions(t *testing.T) {
	var s Status

	if s.Get() != Unknown {
		t.Fatalf("Expected Unknown, got %s", s.Get())
	}
	if s.UsingMockData() {
		t.Error("Unknown state must not report mock data")
	}

	s.Set(false)
	if s.Get() != Unavailable || !s.UsingMockData() {
		t.Errorf("Expected Unavailable with mock data, got %s", s.Get())
	}

	s.Set(true)
	if s.Get() != Available || s.UsingMockData() {
		t.Errorf("Expected Available without mock data, got %s", s.Get())
	}

	s.Reset()
	if s.Get() != Unknown {
		t.Errorf("Expected Unknown after reset, got %s", s.Get())
	}
}
