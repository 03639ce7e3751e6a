package logging

import "testing"

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"trace", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHasFmtVerb(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"plain message", false},
		{"value is %d", true},
		{"loaded %s from %s", true},
		{"100%% certain", false},
		{"%", false},
		{"trailing %", false},
	}
	for _, c := range cases {
		if got := hasFmtVerb(c.in); got != c.want {
			t.Errorf("hasFmtVerb(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
