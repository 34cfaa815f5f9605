package msf

// timeDiff returns t1 - t0 on the wrapping 32-bit microsecond clock.
// Correct across the 2^32 rollover (about every 71.6 minutes).
func timeDiff(t0, t1 uint32) uint32 {
	return t1 - t0
}

// parity checks odd parity over bits[start..stop] inclusive together with
// the designated check bit. Any unknown input yields CheckUnknown.
func parity(bits []Bit, start, stop int, check Bit) Check {
	if check == BitUnknown {
		return CheckUnknown
	}
	odd := check == BitOne
	for _, b := range bits[start : stop+1] {
		if b == BitUnknown {
			return CheckUnknown
		}
		if b == BitOne {
			odd = !odd
		}
	}
	if odd {
		return CheckOK
	}
	return CheckBad
}

// bcdValue decodes two BCD nibbles from bits[msb..lsb], most significant
// bit first (lsb > msb numerically). Returns false for any unknown bit or
// a ones nibble above 9.
func bcdValue(bits []Bit, lsb, msb int) (uint8, bool) {
	var value uint8
	mult := uint8(1)
	for idx := lsb; idx >= msb; idx-- {
		switch bits[idx] {
		case BitUnknown:
			return 0, false
		case BitOne:
			value += mult
		}
		if mult == 8 {
			if value > 9 {
				return 0, false
			}
			mult = 10
		} else {
			mult *= 2
		}
	}
	return value, true
}

// unaryValue counts the leading 1 bits in bits[start..stop] inclusive.
// A 1 may never follow a 0; that, or any unknown bit, makes the count
// undecodable.
func unaryValue(bits []Bit, start, stop int) (int8, bool) {
	var sum int8
	prev := BitUnknown
	for _, b := range bits[start : stop+1] {
		if b == BitUnknown {
			return 0, false
		}
		if b == BitOne {
			if prev == BitZero {
				return 0, false
			}
			sum++
		}
		prev = b
	}
	return sum, true
}
