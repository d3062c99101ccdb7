package fitraw

import (
	"fmt"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// accelerometer_data global message number and its field numbers.
const (
	accelerometerMesgNum = 165

	fieldTimestamp        = 253
	fieldTimestampMs      = 0
	fieldSampleTimeOffset = 1
	fieldAccelX           = 2
	fieldAccelY           = 3
	fieldAccelZ           = 4
	fieldCalibratedX      = 5
	fieldCalibratedY      = 6
	fieldCalibratedZ      = 7
)

// defaultCountsPerG converts raw ADC counts to g when a file carries no
// calibrated samples and the caller supplies no scale.
const defaultCountsPerG = 4096

var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// Options configures sample extraction.
type Options struct {
	// CountsPerG scales raw accelerometer counts when calibrated values are
	// absent. Zero uses defaultCountsPerG.
	CountsPerG float64
}

// Stream is a decoded accelerometer recording: unix timestamps in seconds
// and parallel triaxial samples in g. Messages counts every message type in
// the file by profile name. CRCValid is false when a stored checksum did not
// match; the samples are still returned.
type Stream struct {
	Time     []float64
	Accel    [][3]float64
	Messages map[string]int
	CRCValid bool
}

// ReadFile decodes the FIT file at path.
func ReadFile(path string, opt Options) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fit file: %w", err)
	}
	return Decode(data, opt)
}

// Decode extracts the accelerometer sample stream from FIT bytes.
func Decode(data []byte, opt Options) (*Stream, error) {
	p, err := parse(data)
	if err != nil {
		return nil, err
	}

	countsPerG := opt.CountsPerG
	if countsPerG <= 0 {
		countsPerG = defaultCountsPerG
	}

	s := &Stream{
		Messages: make(map[string]int),
		CRCValid: p.crcValid,
	}
	for i := range p.messages {
		msg := &p.messages[i]
		s.Messages[fit.MesgNum(msg.global).String()]++
		if msg.global != accelerometerMesgNum {
			continue
		}
		if err := appendSamples(s, msg, countsPerG); err != nil {
			return nil, err
		}
	}
	if len(s.Time) == 0 {
		return nil, fmt.Errorf("no accelerometer samples in fit file")
	}
	return s, nil
}

// appendSamples unpacks one accelerometer_data message. Calibrated float
// samples are preferred; raw counts are scaled by countsPerG. Sample time
// offsets are used when present, otherwise samples are spread evenly across
// one second.
func appendSamples(s *Stream, msg *message, countsPerG float64) error {
	base, ok := messageEpochSeconds(msg)
	if !ok {
		return fmt.Errorf("accelerometer message without timestamp")
	}

	xs, ys, zs, n := axisSamples(msg, countsPerG)
	if n == 0 {
		return nil
	}

	offsets, haveOffsets := msg.field(fieldSampleTimeOffset)
	for i := 0; i < n; i++ {
		t := base
		if haveOffsets && i < offsets.count() {
			t += float64(offsets.uint32At(i)) / 1000
		} else {
			t += float64(i) * (1.0 / float64(n))
		}
		s.Time = append(s.Time, t)
		s.Accel = append(s.Accel, [3]float64{xs[i], ys[i], zs[i]})
	}
	return nil
}

func messageEpochSeconds(msg *message) (float64, bool) {
	ts := msg.timestamp
	if ts == 0 {
		f, ok := msg.field(fieldTimestamp)
		if !ok || f.count() == 0 {
			return 0, false
		}
		ts = f.uint32At(0)
		if ts == 0xFFFFFFFF {
			return 0, false
		}
	}
	base := float64(fitEpoch.Unix()) + float64(ts)
	if f, ok := msg.field(fieldTimestampMs); ok && f.count() > 0 {
		if ms := f.uint32At(0); ms != 0xFFFF {
			base += float64(ms) / 1000
		}
	}
	return base, true
}

func axisSamples(msg *message, countsPerG float64) (xs, ys, zs []float64, n int) {
	xs = oneAxis(msg, fieldCalibratedX, fieldAccelX, countsPerG)
	ys = oneAxis(msg, fieldCalibratedY, fieldAccelY, countsPerG)
	zs = oneAxis(msg, fieldCalibratedZ, fieldAccelZ, countsPerG)
	n = len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if len(zs) < n {
		n = len(zs)
	}
	return xs, ys, zs, n
}

func oneAxis(msg *message, calibratedNum, rawNum uint8, countsPerG float64) []float64 {
	if f, ok := msg.field(calibratedNum); ok && f.base == baseFloat32 {
		out := make([]float64, f.count())
		for i := range out {
			out[i] = float64(f.float32At(i))
		}
		return out
	}
	if f, ok := msg.field(rawNum); ok && (f.base == baseSint16 || f.base == baseUint16) {
		out := make([]float64, f.count())
		for i := range out {
			out[i] = float64(f.int16At(i)) / countsPerG
		}
		return out
	}
	return nil
}
