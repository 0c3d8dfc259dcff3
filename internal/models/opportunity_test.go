package models

import (
	"encoding/json"
	"testing"
)

func TestValidDeadline(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{DeadlineOngoing, true},
		{DeadlineRolling, true},
		{"2026-03-01", true},
		{"03/01/2026", false},
		{"next week", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidDeadline(tt.in); got != tt.want {
			t.Errorf("ValidDeadline(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("taxonomy member %q rejected", c)
		}
	}
	if ValidCategory("technology") {
		t.Error("categories are case-sensitive")
	}
}

func TestSentinelDeadlineSurvivesSerialization(t *testing.T) {
	in := Opportunity{ID: "un-volunteers-2024", Title: "UN Online Volunteering", Deadline: DeadlineRolling}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Opportunity
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Deadline != DeadlineRolling {
		t.Fatalf("deadline = %q, want %q", out.Deadline, DeadlineRolling)
	}
	if out.ID != in.ID || out.Title != in.Title {
		t.Fatal("identity fields changed in round-trip")
	}
}
