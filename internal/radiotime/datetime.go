// Package radiotime accumulates the date/time fields decoded from a radio
// time signal, one minute at a time. It has NO external dependencies and no
// notion of wall-clock time: fields arrive as (value, present, valid)
// triples, and stale values are deliberately kept when a minute decodes
// badly; blanking is the consumer's policy, not ours.
//
// stdlib time.Time is not used because the accumulator must represent
// partial and possibly inconsistent dates (e.g. a known minute with an
// unknown day) that time.Time cannot express.
package radiotime

// DST flag bits, see DST().
const (
	// DSTSummer is set while summer time is in effect.
	DSTSummer uint8 = 1 << iota
	// DSTAnnounced is set while a DST transition is being announced.
	DSTAnnounced
	// DSTProcessed is set once an announced transition has reached its
	// hour boundary.
	DSTProcessed
	// DSTJump is set when the summer time bit flipped without an
	// announcement.
	DSTJump
)

// Leap second flag bits, see LeapSecond().
const (
	// LeapAnnounced is set while a leap second is being announced.
	LeapAnnounced uint8 = 1 << iota
	// LeapProcessed is set once the announced leap second's minute has
	// passed.
	LeapProcessed
	// LeapMissing is set when an announced leap second did not
	// materialize as a 61-second minute.
	LeapMissing
)

// DateTime tracks a broadcast calendar. Each field is absent until a valid
// decode supplies it. The zero value is not ready for use; call New.
//
// DateTime is a value type: copying it yields an independent snapshot.
type DateTime struct {
	year, month, day, weekday, hour, minute                         uint8
	yearSet, monthSet, daySet, weekdaySet, hourSet, minuteSet       bool
	dst                                                             uint8
	dstSet                                                          bool
	leap                                                            uint8
	leapSet                                                         bool
	jumpYear, jumpMonth, jumpDay, jumpWeekday, jumpHour, jumpMinute bool
	minutesRunning                                                  uint8
	sunday                                                          uint8 // weekday number broadcast for Sunday (0 for MSF, 7 for DCF77-style codes)
}

// New creates an empty DateTime. sunday is the weekday number the station
// broadcasts for Sunday: 0 for MSF (0=Sunday..6=Saturday), 7 for codes
// counting 1=Monday..7=Sunday.
func New(sunday uint8) DateTime {
	if sunday != 0 {
		sunday = 7
	}
	return DateTime{sunday: sunday}
}

// Year returns the two-digit year, if known.
func (dt *DateTime) Year() (uint8, bool) { return dt.year, dt.yearSet }

// Month returns the month (1-12), if known.
func (dt *DateTime) Month() (uint8, bool) { return dt.month, dt.monthSet }

// Day returns the day of month, if known.
func (dt *DateTime) Day() (uint8, bool) { return dt.day, dt.daySet }

// Weekday returns the broadcast weekday number, if known.
func (dt *DateTime) Weekday() (uint8, bool) { return dt.weekday, dt.weekdaySet }

// Hour returns the hour (0-23), if known.
func (dt *DateTime) Hour() (uint8, bool) { return dt.hour, dt.hourSet }

// Minute returns the minute (0-59), if known.
func (dt *DateTime) Minute() (uint8, bool) { return dt.minute, dt.minuteSet }

// DST returns the DST flag bits, if known.
func (dt *DateTime) DST() (uint8, bool) { return dt.dst, dt.dstSet }

// LeapSecond returns the leap second flag bits, if known.
func (dt *DateTime) LeapSecond() (uint8, bool) { return dt.leap, dt.leapSet }

// JumpYear reports whether the last decode moved the year unexpectedly.
func (dt *DateTime) JumpYear() bool { return dt.jumpYear }

// JumpMonth reports whether the last decode moved the month unexpectedly.
func (dt *DateTime) JumpMonth() bool { return dt.jumpMonth }

// JumpDay reports whether the last decode moved the day unexpectedly.
func (dt *DateTime) JumpDay() bool { return dt.jumpDay }

// JumpWeekday reports whether the last decode moved the weekday unexpectedly.
func (dt *DateTime) JumpWeekday() bool { return dt.jumpWeekday }

// JumpHour reports whether the last decode moved the hour unexpectedly.
func (dt *DateTime) JumpHour() bool { return dt.jumpHour }

// JumpMinute reports whether the last decode moved the minute unexpectedly.
func (dt *DateTime) JumpMinute() bool { return dt.jumpMinute }

// JumpDST reports whether summer time flipped without an announcement.
func (dt *DateTime) JumpDST() bool { return dt.dstSet && dt.dst&DSTJump != 0 }

// MinutesRunning returns the number of minutes accumulated since the first
// decode, saturating at 255.
func (dt *DateTime) MinutesRunning() uint8 { return dt.minutesRunning }

// ClearJumps resets all jump flags. Call once per decode cycle, before the
// new fields are pushed.
func (dt *DateTime) ClearJumps() {
	dt.jumpYear = false
	dt.jumpMonth = false
	dt.jumpDay = false
	dt.jumpWeekday = false
	dt.jumpHour = false
	dt.jumpMinute = false
	dt.dst &^= DSTJump
}

// BumpMinutesRunning increments the running minute counter, saturating.
func (dt *DateTime) BumpMinutesRunning() {
	if dt.minutesRunning < 255 {
		dt.minutesRunning++
	}
}

// SetYear stores the two-digit year. Absent, invalid, or out-of-range
// values leave the previous year in place. With trackJump, an unexpected
// change of an already-known year sets the year jump flag.
func (dt *DateTime) SetYear(value uint8, present, valid, trackJump bool) {
	if !present || !valid || value > 99 {
		return
	}
	if trackJump && dt.yearSet && dt.year != value {
		dt.jumpYear = true
	}
	dt.year = value
	dt.yearSet = true
}

// SetMonth stores the month (1-12); see SetYear for the argument contract.
func (dt *DateTime) SetMonth(value uint8, present, valid, trackJump bool) {
	if !present || !valid || value < 1 || value > 12 {
		return
	}
	if trackJump && dt.monthSet && dt.month != value {
		dt.jumpMonth = true
	}
	dt.month = value
	dt.monthSet = true
}

// SetDay stores the day of month (1-31); see SetYear for the argument
// contract. Consistency with the month is checked by IsValid, not here,
// because month and year may arrive in a later minute.
func (dt *DateTime) SetDay(value uint8, present, valid, trackJump bool) {
	if !present || !valid || value < 1 || value > 31 {
		return
	}
	if trackJump && dt.daySet && dt.day != value {
		dt.jumpDay = true
	}
	dt.day = value
	dt.daySet = true
}

// SetWeekday stores the weekday; see SetYear for the argument contract.
func (dt *DateTime) SetWeekday(value uint8, present, valid, trackJump bool) {
	min := uint8(0)
	if dt.sunday == 7 {
		min = 1
	}
	if !present || !valid || value < min || value > min+6 {
		return
	}
	if trackJump && dt.weekdaySet && dt.weekday != value {
		dt.jumpWeekday = true
	}
	dt.weekday = value
	dt.weekdaySet = true
}

// SetHour stores the hour (0-23); see SetYear for the argument contract.
func (dt *DateTime) SetHour(value uint8, present, valid, trackJump bool) {
	if !present || !valid || value > 23 {
		return
	}
	if trackJump && dt.hourSet && dt.hour != value {
		dt.jumpHour = true
	}
	dt.hour = value
	dt.hourSet = true
}

// SetMinute stores the minute (0-59); see SetYear for the argument contract.
func (dt *DateTime) SetMinute(value uint8, present, valid, trackJump bool) {
	if !present || !valid || value > 59 {
		return
	}
	if trackJump && dt.minuteSet && dt.minute != value {
		dt.jumpMinute = true
	}
	dt.minute = value
	dt.minuteSet = true
}

// SetDST stores the summer time and announcement bits as broadcast. Both
// bits must be present or the stored state is left untouched. An
// announcement only counts before the transition's hour boundary: while
// DSTProcessed is set the raised announce bit is ignored. With trackJump,
// a summer time flip that was not processed sets DSTJump.
func (dt *DateTime) SetDST(summer, announced, present, trackJump bool) {
	if !present {
		return
	}
	flags := dt.dst
	if announced && flags&DSTProcessed == 0 {
		flags |= DSTAnnounced
	} else {
		flags &^= DSTAnnounced
	}
	if trackJump && dt.dstSet && flags&DSTProcessed == 0 && summer != (dt.dst&DSTSummer != 0) {
		flags |= DSTJump
	}
	if summer {
		flags |= DSTSummer
	} else {
		flags &^= DSTSummer
	}
	dt.dst = flags
	dt.dstSet = true
}

// SetLeapSecond records the broadcast leap second announcement and, once
// the announced minute has arrived (minute 59 of the hour), whether the
// minute actually stretched to 61 seconds. MSF broadcasts no announcement
// bit, so an MSF decoder never calls this; it exists for codes that do.
func (dt *DateTime) SetLeapSecond(announced, present bool, minuteLength uint8) {
	if !present {
		return
	}
	flags := dt.leap &^ (LeapProcessed | LeapMissing)
	if announced {
		flags |= LeapAnnounced
	} else {
		flags &^= LeapAnnounced
	}
	if dt.leap&LeapAnnounced != 0 && dt.minuteSet && dt.minute == 59 {
		flags |= LeapProcessed
		flags &^= LeapAnnounced
		if minuteLength != 61 {
			flags |= LeapMissing
		}
	}
	dt.leap = flags
	dt.leapSet = true
}

// AddMinute advances the calendar by one minute, cascading through hour,
// day, weekday, month, and two-digit year (leap years per 2000-2099).
// At an hour boundary an announced DST transition is marked processed, so
// the summer time flip broadcast in the next minutes is not flagged as a
// jump. Returns false, leaving state untouched, when any field needed for
// the advance is still unknown.
func (dt *DateTime) AddMinute() bool {
	if !dt.yearSet || !dt.monthSet || !dt.daySet || !dt.weekdaySet || !dt.hourSet || !dt.minuteSet {
		return false
	}
	dt.minute++
	if dt.minute < 60 {
		return true
	}
	dt.minute = 0
	if dt.dstSet {
		if dt.dst&DSTAnnounced != 0 {
			dt.dst |= DSTProcessed
		} else {
			dt.dst &^= DSTProcessed
		}
	}
	dt.hour++
	if dt.hour < 24 {
		return true
	}
	dt.hour = 0
	dt.weekday++
	min := uint8(0)
	if dt.sunday == 7 {
		min = 1
	}
	if dt.weekday > min+6 {
		dt.weekday = min
	}
	dt.day++
	if dt.day <= daysInMonth(dt.year, dt.month) {
		return true
	}
	dt.day = 1
	dt.month++
	if dt.month <= 12 {
		return true
	}
	dt.month = 1
	dt.year = (dt.year + 1) % 100
	return true
}

// IsValid reports whether all fields are known and the day fits the month.
// The broadcast weekday is taken as authoritative and is not cross-checked
// against the date.
func (dt *DateTime) IsValid() bool {
	if !dt.yearSet || !dt.monthSet || !dt.daySet || !dt.weekdaySet || !dt.hourSet || !dt.minuteSet {
		return false
	}
	return dt.day >= 1 && dt.day <= daysInMonth(dt.year, dt.month)
}

// daysInMonth for two-digit years 2000-2099, where every year divisible by
// four is a leap year (2000 is, 2100 is out of range).
func daysInMonth(year, month uint8) uint8 {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 {
			return 29
		}
		return 28
	default:
		return 0
	}
}
