// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"testing"

	"pgregory.net/rapid"
)

func TestDecodeColor(t *testing.T) {
	tests := []struct {
		color    string
		status   Status
		building bool
	}{
		{"blue", Succeeded, false},
		{"blue_anime", Succeeded, true},
		{"red", Failed, false},
		{"red_anime", Failed, true},
		{"yellow", Unstable, false},
		{"disabled", Disabled, false},
		{"aborted_anime", Aborted, true},
		{"notbuilt", NotBuilt, false},
		{"notbuilt_anime", NotBuilt, true},
		{"grey", Unknown, false},
		{"", Unknown, false},
		{"purple_anime", Unknown, true},
	}
	for _, test := range tests {
		status, building := DecodeColor(test.color)
		if status != test.status || building != test.building {
			t.Errorf("DecodeColor(%q) = (%v, %v), want (%v, %v)",
				test.color, status, building, test.status, test.building)
		}
	}
}

func TestDecodeColorBuildingIndependentOfBase(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SampledFrom([]string{"blue", "red", "yellow", "disabled", "aborted", "notbuilt", "grey", "nobuilt"}).Draw(t, "base")
		idle, idleBuilding := DecodeColor(base)
		running, runningBuilding := DecodeColor(base + "_anime")
		if idleBuilding {
			t.Fatalf("%q decoded as building", base)
		}
		if !runningBuilding {
			t.Fatalf("%q_anime not decoded as building", base)
		}
		if idle != running {
			t.Fatalf("suffix changed status: %v vs %v", idle, running)
		}
	})
}

func TestWorstOrdering(t *testing.T) {
	ordered := []Status{Failed, Unstable, Aborted, NotBuilt, Succeeded, Disabled, Unknown}
	for i := range ordered {
		for j := range ordered {
			want := ordered[min(i, j)]
			if got := Worst(ordered[i], ordered[j]); got != want {
				t.Errorf("Worst(%v, %v) = %v, want %v", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func TestWorstIsCommutativeAndAssociative(t *testing.T) {
	statusGen := rapid.SampledFrom([]Status{Unknown, Succeeded, Unstable, Failed, Aborted, NotBuilt, Disabled})
	rapid.Check(t, func(t *rapid.T) {
		a, b, c := statusGen.Draw(t, "a"), statusGen.Draw(t, "b"), statusGen.Draw(t, "c")
		if Worst(a, b) != Worst(b, a) {
			t.Fatalf("Worst not commutative for %v, %v", a, b)
		}
		if Worst(Worst(a, b), c) != Worst(a, Worst(b, c)) {
			t.Fatalf("Worst not associative for %v, %v, %v", a, b, c)
		}
	})
}

func TestFailingAndPassingSets(t *testing.T) {
	failing := map[Status]bool{Failed: true, Unstable: true, Aborted: true}
	passing := map[Status]bool{Succeeded: true, NotBuilt: true}
	for _, status := range []Status{Unknown, Succeeded, Unstable, Failed, Aborted, NotBuilt, Disabled} {
		if status.IsFailing() != failing[status] {
			t.Errorf("%v.IsFailing() = %v", status, status.IsFailing())
		}
		if status.IsPassing() != passing[status] {
			t.Errorf("%v.IsPassing() = %v", status, status.IsPassing())
		}
	}
}

func TestStatusText(t *testing.T) {
	for _, status := range []Status{Unknown, Succeeded, Unstable, Failed, Aborted, NotBuilt, Disabled} {
		text, err := status.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", status, err)
		}
		var decoded Status
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if decoded != status {
			t.Errorf("text round trip of %v gave %v", status, decoded)
		}
	}
	if NotBuilt.String() != "not_built" {
		t.Errorf("NotBuilt.String() = %q", NotBuilt.String())
	}
}
