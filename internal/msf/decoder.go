package msf

import "github.com/sweeney/msf-receiver/internal/radiotime"

// Decoder is one receiver's decoding state: the per-minute bit buffers, the
// second-of-minute counter, the edge classifier's timing state, and the
// accumulated date/time. It is exclusively owned by its driver and must not
// be shared between goroutines; create one Decoder per receiver. All
// storage is fixed-size; nothing allocates after NewDecoder.
type Decoder struct {
	cfg Config

	firstMinute   bool
	newMinute     bool // end-of-minute pattern seen
	pastNewMinute bool // 500 ms begin-of-minute interval seen
	newSecond     bool
	second        uint8
	bitsA         [BitBufferLen]Bit
	bitsB         [BitBufferLen]Bit

	dateTime radiotime.DateTime

	parity1   Check // year
	parity2   Check // month+day
	parity3   Check // weekday
	parity4   Check // hour+minute
	dut1      int8  // UT1-UTC in deciseconds
	dut1Known bool

	// edge classifier state
	beforeFirstEdge bool
	t0              uint32
	oldTDiff        uint32
	spikeLimit      uint32
}

// NewDecoder creates a Decoder at rest: buffers all unknown, counters zero,
// first-minute gate closed. There is no teardown; to reset a receiver,
// replace its Decoder with a fresh one.
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{
		cfg:             cfg,
		firstMinute:     true,
		dateTime:        radiotime.New(0),
		beforeFirstEdge: true,
		spikeLimit:      cfg.SpikeLimit,
	}
}

// FirstMinute reports whether no minute has decoded cleanly yet. Once
// cleared it never becomes true again.
func (d *Decoder) FirstMinute() bool { return d.firstMinute }

// NewMinute reports whether the last edge completed the end-of-minute
// pattern. Sample before IncreaseSecond.
func (d *Decoder) NewMinute() bool { return d.newMinute }

// PastNewMinute reports whether the last edge was the 500 ms begin-of-
// minute interval. Sample before IncreaseSecond.
func (d *Decoder) PastNewMinute() bool { return d.pastNewMinute }

// NewSecond reports whether the last edge ended a full passive interval,
// i.e. a new second has started.
func (d *Decoder) NewSecond() bool { return d.newSecond }

// Second returns the current second-of-minute.
func (d *Decoder) Second() uint8 { return d.second }

// CurrentBitA returns the current second's channel A bit.
func (d *Decoder) CurrentBitA() Bit { return d.bitsA[d.second] }

// CurrentBitB returns the current second's channel B bit.
func (d *Decoder) CurrentBitB() Bit { return d.bitsB[d.second] }

// SetCurrentBitA overrides the current second's channel A bit and clears
// the minute flags. Useful when replaying recorded bits instead of edges.
// Call before IncreaseSecond.
func (d *Decoder) SetCurrentBitA(value Bit) {
	d.bitsA[d.second] = value
	d.newMinute = false
	d.pastNewMinute = false
}

// SetCurrentBitB overrides the current second's channel B bit and clears
// the minute flags. Call before IncreaseSecond.
func (d *Decoder) SetCurrentBitB(value Bit) {
	d.bitsB[d.second] = value
	d.newMinute = false
	d.pastNewMinute = false
}

// ForceNewMinute fakes arrival of the end-of-minute pattern, for replay
// drivers. Call before IncreaseSecond.
func (d *Decoder) ForceNewMinute() {
	d.newMinute = true
	d.pastNewMinute = false
}

// ForcePastNewMinute fakes arrival of the begin-of-minute interval, for
// replay drivers. Call before IncreaseSecond.
func (d *Decoder) ForcePastNewMinute() {
	d.newMinute = false
	d.pastNewMinute = true
	d.second = 0
	d.bitsA[0] = BitOne
	d.bitsB[0] = BitOne
}

// DateTime returns a copy of the accumulated date/time.
func (d *Decoder) DateTime() radiotime.DateTime { return d.dateTime }

// AddMinute advances the accumulated date/time by one minute without
// decoding, clearing any jump flags first. Useful for consumers that skip
// decoding some minutes but still want their clock to keep running.
func (d *Decoder) AddMinute() bool {
	d.dateTime.ClearJumps()
	return d.dateTime.AddMinute()
}

// Parity1 returns the year parity check result.
func (d *Decoder) Parity1() Check { return d.parity1 }

// Parity2 returns the month+day parity check result.
func (d *Decoder) Parity2() Check { return d.parity2 }

// Parity3 returns the weekday parity check result.
func (d *Decoder) Parity3() Check { return d.parity3 }

// Parity4 returns the hour+minute parity check result.
func (d *Decoder) Parity4() Check { return d.parity4 }

// DUT1 returns the last minute's UT1-UTC correction in deciseconds, if it
// decoded cleanly.
func (d *Decoder) DUT1() (int8, bool) { return d.dut1, d.dut1Known }

// SpikeLimit returns the current spike-rejection threshold in microseconds.
func (d *Decoder) SpikeLimit() uint32 { return d.spikeLimit }

// SetSpikeLimit sets the spike-rejection threshold in microseconds, valid
// range [0, Active0Limit). Out-of-range values are silently ignored and the
// previous limit stays in effect; there is no error channel back to the
// interrupt path that calls into this type.
func (d *Decoder) SetSpikeLimit(value uint32) {
	if value < d.cfg.Active0Limit {
		d.spikeLimit = value
	}
}

// HandleEdge classifies one edge of the demodulated input line, updating
// the current second's bit pair and the new-second/new-minute flags.
// Timestamps are microseconds on a monotonic clock wrapping at 2^32.
//
// Call order per second: HandleEdge for every edge, DecodeTime when a
// minute flag fires, then IncreaseSecond.
func (d *Decoder) HandleEdge(dir EdgeDirection, t uint32) {
	if d.beforeFirstEdge {
		// First edge ever: no preceding interval to classify.
		d.beforeFirstEdge = false
		d.t0 = t
		return
	}
	tDiff := timeDiff(d.t0, t)
	if tDiff < d.spikeLimit {
		// Shift t0 so a train of spikes adding up to more than the
		// limit still classifies as one interval.
		d.t0 += tDiff
		return
	}
	d.newMinute = false
	d.pastNewMinute = false
	d.t0 = t
	if dir == Falling {
		d.newSecond = false
		switch {
		case tDiff < d.cfg.Active0Limit:
			if d.oldTDiff > 0 && d.oldTDiff < d.cfg.Active0Limit {
				// Second active interval within the same second:
				// the B channel's mid-second pulse.
				d.bitsA[d.second] = BitZero
				d.bitsB[d.second] = BitOne
			} else if d.oldTDiff > d.cfg.MinGapZero {
				d.bitsA[d.second] = BitZero
				d.bitsB[d.second] = BitZero
			}
			d.newMinute = d.EndOfMinuteMarkerPresent()
		case tDiff < d.cfg.ActiveALimit && d.oldTDiff > d.cfg.MinGapOne:
			d.bitsA[d.second] = BitOne
			d.bitsB[d.second] = BitZero
		case tDiff < d.cfg.ActiveABLimit && d.oldTDiff > d.cfg.MinGapOne:
			d.bitsA[d.second] = BitOne
			d.bitsB[d.second] = BitOne
		case tDiff < d.cfg.MinuteLimit && d.oldTDiff > d.cfg.MinGapMarker:
			d.pastNewMinute = true
			d.second = 0
			d.bitsA[0] = BitOne
			d.bitsB[0] = BitOne
		default:
			// Active runaway (broken bit) or ambiguous lead-in.
			d.bitsA[d.second] = BitUnknown
			d.bitsB[d.second] = BitUnknown
		}
	} else if tDiff < d.cfg.PassiveRunaway {
		d.newSecond = tDiff > d.cfg.MinGapZero
	} else {
		// Passive runaway: carrier lost.
		d.bitsA[d.second] = BitUnknown
		d.bitsB[d.second] = BitUnknown
	}
	d.oldTDiff = tDiff
}
