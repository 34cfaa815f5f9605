package radiotime

import "testing"

// populate fills every calendar field with 2022-10-23 (Sunday, broadcast
// weekday 6 in MSF's 0=Sunday scheme is Saturday; the broadcast value is
// taken as-is) 14:58.
func populate(dt *DateTime) {
	dt.SetYear(22, true, true, false)
	dt.SetMonth(10, true, true, false)
	dt.SetDay(23, true, true, false)
	dt.SetWeekday(6, true, true, false)
	dt.SetHour(14, true, true, false)
	dt.SetMinute(58, true, true, false)
}

func expectValue(t *testing.T, name string, got uint8, ok bool, want uint8) {
	t.Helper()
	if !ok {
		t.Errorf("%s: absent, want %d", name, want)
		return
	}
	if got != want {
		t.Errorf("%s: got %d, want %d", name, got, want)
	}
}

func TestNewIsEmpty(t *testing.T) {
	dt := New(0)
	if _, ok := dt.Year(); ok {
		t.Error("year must start absent")
	}
	if _, ok := dt.DST(); ok {
		t.Error("dst must start absent")
	}
	if dt.IsValid() {
		t.Error("an empty accumulator is not valid")
	}
	if dt.MinutesRunning() != 0 {
		t.Error("minutes running must start at 0")
	}
}

func TestSettersStoreValidValues(t *testing.T) {
	dt := New(0)
	populate(&dt)
	year, ok := dt.Year()
	expectValue(t, "year", year, ok, 22)
	month, ok := dt.Month()
	expectValue(t, "month", month, ok, 10)
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 23)
	weekday, ok := dt.Weekday()
	expectValue(t, "weekday", weekday, ok, 6)
	hour, ok := dt.Hour()
	expectValue(t, "hour", hour, ok, 14)
	minute, ok := dt.Minute()
	expectValue(t, "minute", minute, ok, 58)
	if !dt.IsValid() {
		t.Error("fully populated accumulator must be valid")
	}
}

func TestSettersKeepStaleValue(t *testing.T) {
	dt := New(0)
	populate(&dt)

	dt.SetMinute(30, false, true, false) // absent
	dt.SetMinute(30, true, false, false) // invalid
	dt.SetMinute(77, true, true, false)  // out of range
	minute, ok := dt.Minute()
	expectValue(t, "minute", minute, ok, 58)

	dt.SetMonth(0, true, true, false)
	dt.SetMonth(13, true, true, false)
	month, ok := dt.Month()
	expectValue(t, "month", month, ok, 10)

	dt.SetDay(0, true, true, false)
	dt.SetDay(32, true, true, false)
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 23)

	dt.SetHour(24, true, true, false)
	hour, ok := dt.Hour()
	expectValue(t, "hour", hour, ok, 14)

	dt.SetWeekday(7, true, true, false)
	weekday, ok := dt.Weekday()
	expectValue(t, "weekday", weekday, ok, 6)
}

func TestWeekdayRangeFollowsSundayScheme(t *testing.T) {
	dt := New(0)
	dt.SetWeekday(0, true, true, false)
	weekday, ok := dt.Weekday()
	expectValue(t, "weekday", weekday, ok, 0)

	dt7 := New(7)
	dt7.SetWeekday(0, true, true, false)
	if _, ok := dt7.Weekday(); ok {
		t.Error("weekday 0 is out of range for a 1-7 scheme")
	}
	dt7.SetWeekday(7, true, true, false)
	weekday, ok = dt7.Weekday()
	expectValue(t, "weekday", weekday, ok, 7)
}

func TestSettersTrackJumps(t *testing.T) {
	dt := New(0)
	populate(&dt)
	if dt.JumpMinute() {
		t.Error("no jump expected on first store")
	}

	dt.SetMinute(58, true, true, true) // same value: no jump
	if dt.JumpMinute() {
		t.Error("storing the same value is not a jump")
	}
	dt.SetMinute(12, true, true, true)
	if !dt.JumpMinute() {
		t.Error("expected a minute jump")
	}
	minute, ok := dt.Minute()
	expectValue(t, "minute", minute, ok, 12) // jumped value is still stored

	dt.SetHour(3, true, true, false) // jump tracking off
	if dt.JumpHour() {
		t.Error("jump tracking was off")
	}

	dt.ClearJumps()
	if dt.JumpMinute() {
		t.Error("ClearJumps must reset the minute jump")
	}
}

func TestAddMinuteRequiresAllFields(t *testing.T) {
	dt := New(0)
	dt.SetMinute(58, true, true, false)
	if dt.AddMinute() {
		t.Error("AddMinute must refuse with unknown fields")
	}
	minute, ok := dt.Minute()
	expectValue(t, "minute", minute, ok, 58)
}

func TestAddMinuteSimple(t *testing.T) {
	dt := New(0)
	populate(&dt)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	minute, ok := dt.Minute()
	expectValue(t, "minute", minute, ok, 59)
	hour, ok := dt.Hour()
	expectValue(t, "hour", hour, ok, 14)
}

func TestAddMinuteHourRollover(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetMinute(59, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	minute, ok := dt.Minute()
	expectValue(t, "minute", minute, ok, 0)
	hour, ok := dt.Hour()
	expectValue(t, "hour", hour, ok, 15)
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 23)
}

func TestAddMinuteDayRollover(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetHour(23, true, true, false)
	dt.SetMinute(59, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	hour, ok := dt.Hour()
	expectValue(t, "hour", hour, ok, 0)
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 24)
	weekday, ok := dt.Weekday()
	expectValue(t, "weekday", weekday, ok, 0) // 6 wraps to 0 in the 0-6 scheme
}

func TestAddMinuteMonthRollover(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetDay(31, true, true, false)
	dt.SetHour(23, true, true, false)
	dt.SetMinute(59, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 1)
	month, ok := dt.Month()
	expectValue(t, "month", month, ok, 11)
}

func TestAddMinuteYearRollover(t *testing.T) {
	dt := New(0)
	dt.SetYear(99, true, true, false)
	dt.SetMonth(12, true, true, false)
	dt.SetDay(31, true, true, false)
	dt.SetWeekday(5, true, true, false)
	dt.SetHour(23, true, true, false)
	dt.SetMinute(59, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	year, ok := dt.Year()
	expectValue(t, "year", year, ok, 0)
	month, ok := dt.Month()
	expectValue(t, "month", month, ok, 1)
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 1)
}

func TestAddMinuteLeapFebruary(t *testing.T) {
	dt := New(0)
	dt.SetYear(24, true, true, false)
	dt.SetMonth(2, true, true, false)
	dt.SetDay(28, true, true, false)
	dt.SetWeekday(3, true, true, false)
	dt.SetHour(23, true, true, false)
	dt.SetMinute(59, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 29) // 2024 is a leap year
	month, ok := dt.Month()
	expectValue(t, "month", month, ok, 2)

	dt.SetYear(23, true, true, false)
	dt.SetDay(28, true, true, false)
	dt.SetMinute(59, true, true, false)
	dt.SetHour(23, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	day, ok = dt.Day()
	expectValue(t, "day", day, ok, 1)
	month, ok = dt.Month()
	expectValue(t, "month", month, ok, 3)
}

func TestIsValidRejectsImpossibleDay(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetMonth(2, true, true, false)
	day, ok := dt.Day()
	expectValue(t, "day", day, ok, 23)
	dt.SetDay(30, true, true, false) // in setter range, but not in February
	if dt.IsValid() {
		t.Error("February 30th must not validate")
	}
}

func TestSetDSTAnnounceAndProcess(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetMinute(59, true, true, false)

	dt.SetDST(true, true, true, false)
	dst, ok := dt.DST()
	if !ok || dst != DSTSummer|DSTAnnounced {
		t.Fatalf("dst: got %#x (known %v), want announced summer", dst, ok)
	}

	// Hour boundary: the announced transition is processed and the
	// dropped summer bit is not a jump.
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	dt.SetDST(false, true, true, true)
	dst, ok = dt.DST()
	if !ok || dst != DSTProcessed {
		t.Errorf("dst: got %#x (known %v), want processed winter", dst, ok)
	}
	if dt.JumpDST() {
		t.Error("an announced transition is not a jump")
	}

	// Next hour boundary with no announcement pending clears processed.
	dt.SetMinute(59, true, true, false)
	if !dt.AddMinute() {
		t.Fatal("expected a normal advance")
	}
	dt.SetDST(false, false, true, false)
	dst, ok = dt.DST()
	if !ok || dst != 0 {
		t.Errorf("dst: got %#x (known %v), want plain winter", dst, ok)
	}
}

func TestSetDSTUnannouncedFlipJumps(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetDST(false, false, true, false)
	dt.SetDST(true, false, true, true)
	dst, ok := dt.DST()
	if !ok || dst != DSTSummer|DSTJump {
		t.Errorf("dst: got %#x (known %v), want jumped summer", dst, ok)
	}
	if !dt.JumpDST() {
		t.Error("expected a DST jump")
	}
	dt.ClearJumps()
	if dt.JumpDST() {
		t.Error("ClearJumps must reset the DST jump")
	}
	dst, ok = dt.DST()
	if !ok || dst != DSTSummer {
		t.Errorf("dst after ClearJumps: got %#x (known %v), want summer", dst, ok)
	}
}

func TestSetDSTAbsentKeepsState(t *testing.T) {
	dt := New(0)
	dt.SetDST(true, false, false, false)
	if _, ok := dt.DST(); ok {
		t.Error("absent bits must not establish a DST state")
	}
}

func TestSetLeapSecond(t *testing.T) {
	dt := New(0)
	populate(&dt)

	dt.SetLeapSecond(true, true, 60)
	leap, ok := dt.LeapSecond()
	if !ok || leap != LeapAnnounced {
		t.Fatalf("leap: got %#x (known %v), want announced", leap, ok)
	}

	// The announced leap second arrives in minute 59 and the minute
	// really is 61 seconds long.
	dt.SetMinute(59, true, true, false)
	dt.SetLeapSecond(true, true, 61)
	leap, ok = dt.LeapSecond()
	if !ok || leap != LeapProcessed {
		t.Errorf("leap: got %#x (known %v), want processed", leap, ok)
	}
}

func TestSetLeapSecondMissing(t *testing.T) {
	dt := New(0)
	populate(&dt)
	dt.SetLeapSecond(true, true, 60)
	dt.SetMinute(59, true, true, false)
	// Announced, but the minute stayed 60 seconds long.
	dt.SetLeapSecond(true, true, 60)
	leap, ok := dt.LeapSecond()
	if !ok || leap != LeapProcessed|LeapMissing {
		t.Errorf("leap: got %#x (known %v), want processed and missing", leap, ok)
	}
}

func TestBumpMinutesRunningSaturates(t *testing.T) {
	dt := New(0)
	for i := 0; i < 300; i++ {
		dt.BumpMinutesRunning()
	}
	if dt.MinutesRunning() != 255 {
		t.Errorf("minutes running: got %d, want 255", dt.MinutesRunning())
	}
}
