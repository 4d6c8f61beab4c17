package validate

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"alice@shop.test", true},
		{"  alice@shop.test  ", true},
		{"not-an-email", false},
		{"", false},
		{"a@b", false},
	}
	for _, tc := range cases {
		if _, ok := Email(tc.in); ok != tc.ok {
			t.Errorf("Email(%q) ok=%v, want %v", tc.in, ok, tc.ok)
		}
	}
}

func TestQtyClampsAndDefaults(t *testing.T) {
	cases := map[string]int{
		"3":    3,
		"0":    1,
		"-5":   1,
		"":     1,
		"junk": 1,
		"999":  50,
	}
	for in, want := range cases {
		if got := Qty(in); got != want {
			t.Errorf("Qty(%q)=%d, want %d", in, got, want)
		}
	}
}

func TestPreset(t *testing.T) {
	for _, ok := range []string{"today", "thisWeek", "thisMonth", "thisYear", ""} {
		if _, valid := Preset(ok); !valid {
			t.Errorf("Preset(%q) should be valid", ok)
		}
	}
	for _, bad := range []string{"yesterday", "THISWEEK", "all"} {
		if _, valid := Preset(bad); valid {
			t.Errorf("Preset(%q) should be rejected", bad)
		}
	}
}

func TestStatus(t *testing.T) {
	if _, ok := Status("shipped"); !ok {
		t.Error("shipped should be a valid status")
	}
	if _, ok := Status("lost-in-transit"); ok {
		t.Error("unknown status should be rejected")
	}
}

func TestPage(t *testing.T) {
	if Page("4") != 4 || Page("") != 1 || Page("-2") != 1 {
		t.Error("Page parsing wrong")
	}
}

func TestPrice(t *testing.T) {
	if _, ok := Price(""); !ok {
		t.Error("empty price filter is allowed")
	}
	if _, ok := Price("19.99"); !ok {
		t.Error("valid price rejected")
	}
	if _, ok := Price("-1"); ok {
		t.Error("negative price accepted")
	}
	if _, ok := Price("abc"); ok {
		t.Error("junk price accepted")
	}
}
