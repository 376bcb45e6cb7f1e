package country

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		code     string
		ok       bool
		currency string
	}{
		{"nl", true, "EUR"},
		{"NL", true, "EUR"},
		{"ch", true, "CHF"},
		{"se", true, "SEK"},
		{"xx", false, ""},
		{"us", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		p, ok := Lookup(tt.code)
		if ok != tt.ok {
			t.Errorf("Lookup(%q) ok = %v, expected %v", tt.code, ok, tt.ok)
			continue
		}
		if ok && p.Currency != tt.currency {
			t.Errorf("Lookup(%q) currency = %q, expected %q", tt.code, p.Currency, tt.currency)
		}
	}
}

func TestAllOrderedByCode(t *testing.T) {
	all := All()
	if len(all) != 9 {
		t.Fatalf("expected 9 countries, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Errorf("profiles not sorted: %q before %q", all[i-1].Code, all[i].Code)
		}
	}
}

func TestVatPercent(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"nl", "21%"},
		{"de", "19%"},
		{"ch", "8%"}, // 0.077 rounds to 8
		{"dk", "25%"},
	}

	for _, tt := range tests {
		p, ok := Lookup(tt.code)
		if !ok {
			t.Fatalf("Lookup(%q) failed", tt.code)
		}
		if s := p.VatPercent(); s != tt.expected {
			t.Errorf("VatPercent(%s) = %q, expected %q", tt.code, s, tt.expected)
		}
	}
}

func TestLocationLoads(t *testing.T) {
	for _, p := range All() {
		loc := p.Location()
		if loc == nil {
			t.Errorf("nil location for %s", p.Code)
		}
	}
}
