package http

import (
	"testing"

	"github.com/harrysonduke/bsc-project/internal/attendance"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"Bearer  spaced ", " spaced"},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestRoundMeters(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{15.4567, 15.46},
		{19.994, 19.99},
		{20.005, 20.01},
		{4000.129, 4000.13},
	}
	for _, tc := range cases {
		if got := roundMeters(tc.in); got != tc.want {
			t.Errorf("roundMeters(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMapRecordRoundsDistance(t *testing.T) {
	d := 15.456789
	rec := attendance.Record{DistanceFromSession: &d, IsVerified: true}
	resp := mapRecord(rec)
	if resp.DistanceFromSession == nil || *resp.DistanceFromSession != 15.46 {
		t.Fatalf("distance = %v, want 15.46", resp.DistanceFromSession)
	}
	if resp.Outcome != attendance.OutcomeVerified {
		t.Fatalf("outcome = %q, want %q", resp.Outcome, attendance.OutcomeVerified)
	}
	// original record must not be mutated through the shared pointer later on
	if d != 15.456789 {
		t.Fatalf("source value changed: %v", d)
	}
}

func TestMapRecordWithoutLocation(t *testing.T) {
	rec := attendance.Record{IsVerified: true, FlaggedForReview: true}
	resp := mapRecord(rec)
	if resp.DistanceFromSession != nil {
		t.Fatalf("distance = %v, want nil", resp.DistanceFromSession)
	}
	if resp.Outcome != attendance.OutcomeUnlocated {
		t.Fatalf("outcome = %q, want %q", resp.Outcome, attendance.OutcomeUnlocated)
	}
}
