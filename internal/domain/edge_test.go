package domain

import "testing"

func TestNewEdge(t *testing.T) {
	t.Run("creates edge with generated ID", func(t *testing.T) {
		edge := NewEdge("node1", "node2")

		if edge.From != "node1" {
			t.Errorf("expected From 'node1', got %s", edge.From)
		}
		if edge.To != "node2" {
			t.Errorf("expected To 'node2', got %s", edge.To)
		}
		if edge.ID == "" {
			t.Error("expected ID to be generated")
		}
	})
}

func TestEdgeGenerateID(t *testing.T) {
	t.Run("generates consistent IDs", func(t *testing.T) {
		edge1 := &Edge{From: "a", To: "b"}
		edge2 := &Edge{From: "a", To: "b"}
		if edge1.GenerateID() != edge2.GenerateID() {
			t.Error("expected same ID for identical edges")
		}
	})

	t.Run("normalizes endpoint order", func(t *testing.T) {
		edge1 := &Edge{From: "a", To: "b"}
		edge2 := &Edge{From: "b", To: "a"}
		if edge1.GenerateID() != edge2.GenerateID() {
			t.Error("expected same ID regardless of direction")
		}
	})

	t.Run("different endpoints produce different IDs", func(t *testing.T) {
		edge1 := &Edge{From: "a", To: "b"}
		edge2 := &Edge{From: "a", To: "c"}
		if edge1.GenerateID() == edge2.GenerateID() {
			t.Error("expected different IDs")
		}
	})

	t.Run("ID is 16 hex characters", func(t *testing.T) {
		edge := &Edge{From: "a", To: "b"}
		if len(edge.GenerateID()) != 16 {
			t.Errorf("expected 16 characters, got %d", len(edge.GenerateID()))
		}
	})
}

func TestDelayFormatting(t *testing.T) {
	tests := []struct {
		in       string
		trimmed  string
		persists string
	}{
		{"20", "20", "20ms"},
		{"20ms", "20", "20ms"},
		{" 5 ms ", "5", "5ms"},
		{"", "", "ms"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TrimDelay(tt.in); got != tt.trimmed {
				t.Errorf("TrimDelay: expected %q, got %q", tt.trimmed, got)
			}
			if got := FormatDelay(tt.in); got != tt.persists {
				t.Errorf("FormatDelay: expected %q, got %q", tt.persists, got)
			}
		})
	}

	t.Run("formatting is idempotent", func(t *testing.T) {
		once := FormatDelay("5")
		if FormatDelay(once) != once {
			t.Errorf("expected %q to stay unchanged, got %q", once, FormatDelay(once))
		}
	})
}

func TestEdgeTitle(t *testing.T) {
	tests := []struct {
		delay     string
		bandwidth float64
		want      string
	}{
		{"20", 100, "<p>Delay: 20ms<br>Bandwidth: 100</p>"},
		{"5ms", 10, "<p>Delay: 5ms<br>Bandwidth: 10</p>"},
		{"1.5", 0.25, "<p>Delay: 1.5ms<br>Bandwidth: 0.25</p>"},
	}

	for _, tt := range tests {
		if got := EdgeTitle(tt.delay, tt.bandwidth); got != tt.want {
			t.Errorf("EdgeTitle(%q, %v): expected %q, got %q", tt.delay, tt.bandwidth, tt.want, got)
		}
	}
}
