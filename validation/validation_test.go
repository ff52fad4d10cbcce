package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Required("title", "Flat", v)
	if v["name"] != "required" {
		t.Errorf("expected name required, got %v", v)
	}
	if _, ok := v["title"]; ok {
		t.Errorf("title should be valid")
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"jane@example.com", true},
		{"not-an-email", false},
		{"Jane <jane@example.com>", false},
		{"", false},
	}
	for _, tt := range tests {
		v := make(Violations)
		Email("email", tt.in, v)
		if v.Empty() != tt.valid {
			t.Errorf("Email(%q) valid=%v, want %v", tt.in, v.Empty(), tt.valid)
		}
	}
}

func TestEmail_KeepsRequired(t *testing.T) {
	v := make(Violations)
	Required("email", "", v)
	Email("email", "", v)
	if v["email"] != "required" {
		t.Errorf("expected required to win, got %q", v["email"])
	}
}

func TestNumbers(t *testing.T) {
	v := make(Violations)
	neg := -1
	zero := 0
	PositiveFloat("price", 0, v)
	NonNegativeInt("bedrooms", &neg, v)
	NonNegativeInt("bathrooms", &zero, v)
	NonNegativeInt("floors", nil, v)
	if v["price"] != "must_be_positive" || v["bedrooms"] != "must_not_be_negative" {
		t.Errorf("unexpected violations %v", v)
	}
	if len(v) != 2 {
		t.Errorf("expected 2 violations, got %v", v)
	}
}

func TestOneOfAndMaxLen(t *testing.T) {
	v := make(Violations)
	OneOf("status", "archived", []string{"pending", "approved"}, v)
	MaxLen("title", "abcdef", 5, v)
	if v["status"] != "invalid_value" || v["title"] != "too_long" {
		t.Errorf("unexpected violations %v", v)
	}
}
