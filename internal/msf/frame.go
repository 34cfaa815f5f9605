package msf

// eomMarker is the fixed end-of-minute pattern in the last eight A bits.
var eomMarker = [8]Bit{BitZero, BitOne, BitOne, BitOne, BitOne, BitOne, BitOne, BitZero}

// MinuteLength returns the length of the current minute in seconds: 59 for
// a negative leap second, 61 for a positive one (detected one second ahead
// of the marker completing), 60 otherwise. Idempotent, so both the field
// decoder and the second advance can call it for the same second.
func (d *Decoder) MinuteLength() uint8 {
	if d.second >= 58 && d.second <= 60 && d.searchEOMMarker(false) {
		return d.second + 1
	}
	if d.second == 59 && d.searchEOMMarker(true) {
		return 61
	}
	return 60
}

// EndOfMinuteMarkerPresent reports whether the end-of-minute pattern ends
// exactly at the current second. Call before IncreaseSecond.
func (d *Decoder) EndOfMinuteMarkerPresent() bool {
	return d.searchEOMMarker(false)
}

// searchEOMMarker matches the marker pattern against the A bits ending at
// the current second. With predict, only the first seven marker bits are
// matched one position later, testing for a marker that will complete
// next second, which is how a positive leap second announces itself.
// Any unknown bit fails the match.
func (d *Decoder) searchEOMMarker(predict bool) bool {
	if d.second < 7 {
		return false
	}
	start := int(d.second) - 7
	if predict {
		start++
	}
	for i, b := range d.bitsA[start : int(d.second)+1] {
		if b == BitUnknown || b != eomMarker[i] {
			return false
		}
	}
	return true
}

// IncreaseSecond advances the second-of-minute, wrapping to 0 when the
// minute completes. Returns false when the wrap was forced by overflow
// protection (a missed minute marker) rather than a normal minute
// boundary. The guard keeps the counter inside the bit buffer no matter
// how long the marker stays missing.
//
// Call strictly after HandleEdge and DecodeTime for the completed second.
func (d *Decoder) IncreaseSecond() bool {
	minuteLength := d.MinuteLength()
	if d.newMinute {
		d.second = 0
		return true
	}
	d.second++
	if d.second >= minuteLength || int(d.second) >= BitBufferLen {
		d.second = 0
		return false
	}
	return true
}
