package msf

// Nominal (60-second frame) bit positions. A leap second shifts every
// position by the frame offset, except the DUT1 fields which sit before
// the leap second's insertion point.
const (
	yearLSB, yearMSB       = 24, 17
	monthLSB, monthMSB     = 29, 25
	dayLSB, dayMSB         = 35, 30
	weekdayLSB, weekdayMSB = 38, 36
	hourLSB, hourMSB       = 44, 39
	minuteLSB, minuteMSB   = 51, 45

	dut1PosStart, dut1PosStop = 1, 8
	dut1NegStart, dut1NegStop = 9, 16

	dstAnnouncedBit = 53
	parity1Bit      = 54
	parity2Bit      = 55
	parity3Bit      = 56
	parity4Bit      = 57
	dstSummerBit    = 58
)

// DecodeTime decodes the minute that just completed: parity checks, BCD
// calendar fields, unary DUT1, and DST flags, pushed into the accumulated
// date/time with per-field validity. In strict mode a single global gate
// (all parities OK, DUT1 decodable, end-of-minute marker present) certifies
// every field; in relaxed mode each field is certified by its own parity
// group, except the day, which has no parity bit of its own and needs the
// year, month+day, and weekday groups together.
//
// The accumulator is always advanced by one minute first (after the first
// minute), so its jump tracking compares the previous decode against this
// one. Field extraction only happens when the second counter sits exactly
// at the minute boundary.
//
// Call when a minute flag fires, before IncreaseSecond.
func (d *Decoder) DecodeTime(strict bool) {
	d.dateTime.ClearJumps()
	minuteLength := d.MinuteLength() // depends on d.second, evaluate first
	addedMinute := false
	if !d.firstMinute {
		addedMinute = d.dateTime.AddMinute()
	}
	if d.second+1 != minuteLength {
		return
	}

	// Frame offset against the nominal 60-second minute: -1 after a
	// negative leap second, +1 after a positive one.
	offset := 0
	switch {
	case minuteLength > 60:
		offset = 1
	case minuteLength < 60:
		offset = -1
	}

	a := d.bitsA[:]
	b := d.bitsB[:]
	d.parity1 = parity(a, yearMSB+offset, yearLSB+offset, b[parity1Bit+offset])
	d.parity2 = parity(a, monthMSB+offset, dayLSB+offset, b[parity2Bit+offset])
	d.parity3 = parity(a, weekdayMSB+offset, weekdayLSB+offset, b[parity3Bit+offset])
	d.parity4 = parity(a, hourMSB+offset, minuteLSB+offset, b[parity4Bit+offset])

	// DUT1 sits in seconds 1-16, before the leap second insertion point,
	// so its positions never shift. A negative leap second instead drops
	// nominal bit 16 from the negative count entirely.
	negStop := dut1NegStop
	if offset == -1 {
		negStop = dut1NegStop - 1
	}
	d.dut1 = 0
	d.dut1Known = false
	if pos, ok := unaryValue(b, dut1PosStart, dut1PosStop); ok {
		if neg, ok := unaryValue(b, dut1NegStart, negStop); ok {
			// Both counts nonzero at once is a contradiction.
			if pos == 0 || neg == 0 {
				d.dut1 = pos - neg
				d.dut1Known = true
			}
		}
	}

	strictOK := d.parity1 == CheckOK &&
		d.parity2 == CheckOK &&
		d.parity3 == CheckOK &&
		d.parity4 == CheckOK &&
		d.dut1Known &&
		d.EndOfMinuteMarkerPresent()

	gate := func(own bool) bool {
		if strict {
			return strictOK
		}
		return own
	}
	trackJump := addedMinute && !d.firstMinute

	year, yearOK := bcdValue(a, yearLSB+offset, yearMSB+offset)
	d.dateTime.SetYear(year, yearOK, gate(d.parity1 == CheckOK), trackJump)

	month, monthOK := bcdValue(a, monthLSB+offset, monthMSB+offset)
	d.dateTime.SetMonth(month, monthOK, gate(d.parity2 == CheckOK), trackJump)

	weekday, weekdayOK := bcdValue(a, weekdayLSB+offset, weekdayMSB+offset)
	d.dateTime.SetWeekday(weekday, weekdayOK, gate(d.parity3 == CheckOK), trackJump)

	day, dayOK := bcdValue(a, dayLSB+offset, dayMSB+offset)
	d.dateTime.SetDay(day, dayOK,
		gate(d.parity1 == CheckOK && d.parity2 == CheckOK && d.parity3 == CheckOK), trackJump)

	hour, hourOK := bcdValue(a, hourLSB+offset, hourMSB+offset)
	d.dateTime.SetHour(hour, hourOK, gate(d.parity4 == CheckOK), trackJump)

	minute, minuteOK := bcdValue(a, minuteLSB+offset, minuteMSB+offset)
	d.dateTime.SetMinute(minute, minuteOK, gate(d.parity4 == CheckOK), trackJump)

	summer := b[dstSummerBit+offset]
	announced := b[dstAnnouncedBit+offset]
	d.dateTime.SetDST(summer == BitOne, announced == BitOne,
		summer != BitUnknown && announced != BitUnknown, trackJump)

	if gate(d.dut1Known) && d.dateTime.IsValid() {
		// First properly decoded minute: results are displayable.
		d.firstMinute = false
	}

	d.dateTime.BumpMinutesRunning()
}
