package broker

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in      string
		wantDur time.Duration
		wantErr bool
	}{
		{"5Min", 5 * time.Minute, false},
		{"1minute", time.Minute, false},
		{"4Hour", 4 * time.Hour, false},
		{"1Day", 24 * time.Hour, false},
		{"Min", 0, true},
		{"5", 0, true},
		{"0Min", 0, true},
		{"5Fortnight", 0, true},
	}
	for _, tc := range cases {
		_, dur, err := ParsePeriod(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		if dur != tc.wantDur {
			t.Errorf("%q: dur = %v, want %v", tc.in, dur, tc.wantDur)
		}
	}
}
