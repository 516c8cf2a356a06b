package budget

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		amount float64
		ok     bool
	}{
		{200, true},
		{225, true},
		{250, true},
		{275, true},
		{300, true},
		{1075, true},
		{210, false}, // bad ending
		{226, false},
		{150, false}, // below minimum
		{0, false},
		{199, false},
	}
	for _, tt := range tests {
		ok, reason := Validate(tt.amount)
		if ok != tt.ok {
			t.Errorf("Validate(%v) = %v (%s), want %v", tt.amount, ok, reason, tt.ok)
		}
	}
}

func TestRoundUp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 200},
		{1, 200},
		{200, 200},
		{201, 225},
		{224, 225},
		{225, 225},
		{226, 250},
		{500, 500},
		{501, 525},
	}
	for _, tt := range tests {
		if got := RoundUp(tt.in); got != tt.want {
			t.Errorf("RoundUp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoundUpIdempotent(t *testing.T) {
	for x := 0.0; x <= 2000; x += 7 {
		once := RoundUp(x)
		if twice := RoundUp(once); twice != once {
			t.Fatalf("RoundUp not idempotent at %v: %v != %v", x, twice, once)
		}
	}
}

func TestRoundUpAlwaysValid(t *testing.T) {
	for x := 0.0; x <= 2000; x += 3 {
		if ok, reason := Validate(RoundUp(x)); !ok {
			t.Fatalf("RoundUp(%v) = %v invalid: %s", x, RoundUp(x), reason)
		}
	}
}

func TestCalcIncrement(t *testing.T) {
	if got := CalcIncrement(200, 0); got != 225 {
		t.Errorf("CalcIncrement(200, 0) = %v, want 225", got)
	}
	if got := CalcIncrement(225, 25); got != 250 {
		t.Errorf("CalcIncrement(225, 25) = %v, want 250", got)
	}
	if got := CalcIncrement(200, 100); got != 300 {
		t.Errorf("CalcIncrement(200, 100) = %v, want 300", got)
	}
	// Floors to minimum for tiny current budgets.
	if got := CalcIncrement(0, 0); got != 200 {
		t.Errorf("CalcIncrement(0, 0) = %v, want 200", got)
	}
}
