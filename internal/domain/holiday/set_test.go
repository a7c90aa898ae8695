package holiday

import "testing"

// TestNormalizeDate tests separator and padding canonicalization.
func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "2025-01-01", "2025-01-01"},
		{"slash separators", "2025/01/01", "2025-01-01"},
		{"unpadded slash", "2025/1/1", "2025-01-01"},
		{"unpadded dash", "2025-1-9", "2025-01-09"},
		{"surrounding space", " 2025/02/11 ", "2025-02-11"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeDate(tc.in)
			if err != nil {
				t.Fatalf("NormalizeDate(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	for _, bad := range []string{"", "not a date", "01-02-2025", "2025-13-40"} {
		if _, err := NormalizeDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

// TestNewSet tests that raw server strings end up canonical and malformed
// entries are skipped.
func TestNewSet(t *testing.T) {
	s := NewSet([]string{"2025/01/01", "2025-02-11", "garbage"})
	if len(s) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(s))
	}
	if !s.Contains("2025-01-01") {
		t.Fatal("slash-separated holiday should be found under canonical key")
	}
	if !s.Contains("2025-02-11") {
		t.Fatal("canonical holiday should be found")
	}
	if s.Contains("2025-01-02") {
		t.Fatal("non-holiday should not be found")
	}
}
