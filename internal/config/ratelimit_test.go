package config

import (
	"testing"
	"time"
)

func TestParseRate(t *testing.T) {
	def := RateRule{Limit: 5, Window: time.Minute}

	cases := []struct {
		in   string
		want RateRule
	}{
		{"", def},
		{"10/min", RateRule{Limit: 10, Window: time.Minute}},
		{"3/hour", RateRule{Limit: 3, Window: time.Hour}},
		{" 7 / min ", RateRule{Limit: 7, Window: time.Minute}},
		{"10/minute", RateRule{Limit: 10, Window: time.Minute}},
		{"10/hours", RateRule{Limit: 10, Window: time.Hour}},
		// Malformed values fall back to the default.
		{"banana", def},
		{"0/min", def},
		{"-3/min", def},
		{"10/day", def},
		{"/min", def},
		{"10/", def},
	}
	for _, tc := range cases {
		if got := parseRate(tc.in, def); got != tc.want {
			t.Errorf("parseRate(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
