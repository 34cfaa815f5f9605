package msf

import "testing"

func TestEOMMarkerTooShort(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 5
	for b := 0; b <= 4; b++ {
		d.bitsA[b] = bitOf(frameA[b])
	}
	if d.EndOfMinuteMarkerPresent() {
		t.Error("fewer than eight seconds cannot hold the marker")
	}
}

func TestEOMMarkerAbsent(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 59
	for b := 52; b <= 59; b++ {
		d.bitsA[b] = bitOf(frameA[b])
	}
	d.bitsA[57] = BitUnknown
	if d.EndOfMinuteMarkerPresent() {
		t.Error("an unknown bit inside the window must fail the match")
	}
}

func TestEOMMarkerPresent(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 59
	for b := 52; b <= 59; b++ {
		d.bitsA[b] = bitOf(frameA[b])
	}
	if !d.EndOfMinuteMarkerPresent() {
		t.Error("expected the end-of-minute marker")
	}
	// Idempotent: no state was mutated by the check.
	if !d.EndOfMinuteMarkerPresent() {
		t.Error("repeated check must give the same answer")
	}
	if d.MinuteLength() != 60 {
		t.Errorf("minute length: got %d, want 60", d.MinuteLength())
	}
	if d.MinuteLength() != 60 {
		t.Errorf("repeated minute length: got %d, want 60", d.MinuteLength())
	}
}

func TestRunningNegativeLeapSecond(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 51
	for b := 51; b <= 57; b++ {
		d.bitsA[b] = bitOf(frameA[b+1])
		if d.EndOfMinuteMarkerPresent() {
			t.Fatalf("marker must not match at second %d", d.second)
		}
		if got := d.MinuteLength(); got != 60 {
			t.Fatalf("minute length at second %d: got %d, want 60", d.second, got)
		}
		if !d.IncreaseSecond() {
			t.Fatalf("unexpected overflow at second %d", d.second)
		}
	}
	if d.second != 58 {
		t.Fatalf("second: got %d, want 58", d.second)
	}
	d.bitsA[58] = bitOf(frameA[59])
	if !d.EndOfMinuteMarkerPresent() {
		t.Error("expected the end-of-minute marker")
	}
	if got := d.MinuteLength(); got != 59 {
		t.Errorf("minute length: got %d, want 59", got)
	}
}

func TestRunningNoLeapSecond(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 52
	for b := 52; b <= 58; b++ {
		d.bitsA[b] = bitOf(frameA[b])
		if d.EndOfMinuteMarkerPresent() {
			t.Fatalf("marker must not match at second %d", d.second)
		}
		if got := d.MinuteLength(); got != 60 {
			t.Fatalf("minute length at second %d: got %d, want 60", d.second, got)
		}
		if !d.IncreaseSecond() {
			t.Fatalf("unexpected overflow at second %d", d.second)
		}
	}
	if d.second != 59 {
		t.Fatalf("second: got %d, want 59", d.second)
	}
	d.bitsA[59] = bitOf(frameA[59])
	if !d.EndOfMinuteMarkerPresent() {
		t.Error("expected the end-of-minute marker")
	}
	if got := d.MinuteLength(); got != 60 {
		t.Errorf("minute length: got %d, want 60", got)
	}
}

func TestRunningPositiveLeapSecond(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 53
	for b := 53; b <= 58; b++ {
		d.bitsA[b] = bitOf(frameA[b-1])
		if d.EndOfMinuteMarkerPresent() {
			t.Fatalf("marker must not match at second %d", d.second)
		}
		if got := d.MinuteLength(); got != 60 {
			t.Fatalf("minute length at second %d: got %d, want 60", d.second, got)
		}
		if !d.IncreaseSecond() {
			t.Fatalf("unexpected overflow at second %d", d.second)
		}
	}
	if d.second != 59 {
		t.Fatalf("second: got %d, want 59", d.second)
	}
	d.bitsA[59] = bitOf(frameA[58])
	if d.EndOfMinuteMarkerPresent() {
		t.Error("marker must not be complete yet")
	}
	if !d.searchEOMMarker(true) {
		t.Error("expected the marker one second ahead")
	}
	if got := d.MinuteLength(); got != 61 {
		t.Errorf("minute length: got %d, want 61", got)
	}
	if !d.IncreaseSecond() {
		t.Error("unexpected overflow entering the leap second")
	}
	if d.second != 60 {
		t.Fatalf("second: got %d, want 60", d.second)
	}
	d.bitsA[60] = bitOf(frameA[59])
	if !d.EndOfMinuteMarkerPresent() {
		t.Error("expected the completed end-of-minute marker")
	}
	if d.searchEOMMarker(true) {
		t.Error("look-ahead must not match once the marker completed")
	}
	if got := d.MinuteLength(); got != 61 {
		t.Errorf("minute length: got %d, want 61", got)
	}
}

func TestIncreaseSecondSameMinute(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 37
	if !d.IncreaseSecond() {
		t.Error("unexpected overflow")
	}
	if d.second != 38 {
		t.Errorf("second: got %d, want 38", d.second)
	}
}

func TestIncreaseSecondSameMinuteOverflow(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.second = 59
	// Empty buffer: no marker, so the minute never formally ends.
	if d.IncreaseSecond() {
		t.Error("expected the overflow guard to fire")
	}
	if d.second != 0 {
		t.Errorf("second: got %d, want 0", d.second)
	}
	if !d.FirstMinute() {
		t.Error("overflow must not clear the first-minute flag")
	}
}

func TestIncreaseSecondNewMinute(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.newMinute = true
	d.second = 59
	for b := 52; b <= 59; b++ {
		d.bitsA[b] = bitOf(frameA[b])
	}
	if !d.EndOfMinuteMarkerPresent() {
		t.Error("expected the end-of-minute marker")
	}
	if !d.IncreaseSecond() {
		t.Error("a marked minute boundary is not an overflow")
	}
	if d.second != 0 {
		t.Errorf("second: got %d, want 0", d.second)
	}
	if d.EndOfMinuteMarkerPresent() {
		t.Error("marker check must fail again at second 0")
	}
}

func TestIncreaseSecondNewMinuteEmptyBuffer(t *testing.T) {
	d := NewDecoder(DefaultConfig())
	d.newMinute = true
	d.second = 59
	if d.EndOfMinuteMarkerPresent() {
		t.Error("empty buffer cannot hold the marker")
	}
	if !d.IncreaseSecond() {
		t.Error("the forced minute flag wins over the missing marker")
	}
	if d.second != 0 {
		t.Errorf("second: got %d, want 0", d.second)
	}
}
