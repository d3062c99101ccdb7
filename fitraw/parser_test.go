package fitraw

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/tormoder/fit/dyncrc16"
)

func buildFITFile(records []byte) []byte {
	header := make([]byte, 14)
	header[0] = 14
	header[1] = 0x20
	binary.LittleEndian.PutUint16(header[2:4], 2195)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(records)))
	copy(header[8:12], ".FIT")
	binary.LittleEndian.PutUint16(header[12:14], dyncrc16.Checksum(header[:12]))

	file := append(header, records...)
	crc := make([]byte, 2)
	binary.LittleEndian.PutUint16(crc, dyncrc16.Checksum(file))
	return append(file, crc...)
}

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// calibratedAccelRecords builds a definition plus one data message carrying
// two calibrated samples per axis.
func calibratedAccelRecords(ts uint32, ms uint16) []byte {
	var rec []byte
	rec = append(rec,
		0x40,       // definition, local 0
		0x00,       // reserved
		0x00,       // little endian
		165, 0,     // accelerometer_data
		5,          // field count
		253, 4, 0x86, // timestamp
		0, 2, 0x84, // timestamp_ms
		5, 8, 0x88, // calibrated x, 2 float32
		6, 8, 0x88, // calibrated y
		7, 8, 0x88, // calibrated z
	)

	data := make([]byte, 1+4+2+24)
	data[0] = 0x00
	binary.LittleEndian.PutUint32(data[1:5], ts)
	binary.LittleEndian.PutUint16(data[5:7], ms)
	putFloat32(data[7:11], 0.1)
	putFloat32(data[11:15], 0.2)
	putFloat32(data[15:19], 0)
	putFloat32(data[19:23], 0)
	putFloat32(data[23:27], 1)
	putFloat32(data[27:31], 1)
	return append(rec, data...)
}

func TestDecodeCalibratedSamples(t *testing.T) {
	file := buildFITFile(calibratedAccelRecords(1000000, 500))

	s, err := Decode(file, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !s.CRCValid {
		t.Error("valid checksums reported as invalid")
	}
	if len(s.Time) != 2 || len(s.Accel) != 2 {
		t.Fatalf("got %d samples, want 2", len(s.Time))
	}

	base := float64(fitEpoch.Unix()) + 1000000 + 0.5
	if math.Abs(s.Time[0]-base) > 1e-9 {
		t.Errorf("first timestamp = %f, want %f", s.Time[0], base)
	}
	if math.Abs(s.Time[1]-(base+0.5)) > 1e-9 {
		t.Errorf("second timestamp = %f, want %f", s.Time[1], base+0.5)
	}

	want := [2][3]float64{{0.1, 0, 1}, {0.2, 0, 1}}
	for i := range want {
		for axis := 0; axis < 3; axis++ {
			if math.Abs(s.Accel[i][axis]-want[i][axis]) > 1e-6 {
				t.Errorf("sample %d axis %d = %f, want %f", i, axis, s.Accel[i][axis], want[i][axis])
			}
		}
	}

	if s.Messages["accelerometer_data"] != 1 {
		t.Errorf("message counts = %v, want one accelerometer_data", s.Messages)
	}
}

func TestDecodeRawCounts(t *testing.T) {
	var rec []byte
	rec = append(rec,
		0x40,
		0x00,
		0x00,
		165, 0,
		4,
		253, 4, 0x86,
		2, 4, 0x83, // raw x, 2 sint16
		3, 4, 0x83,
		4, 4, 0x83,
	)
	data := make([]byte, 1+4+12)
	data[0] = 0x00
	binary.LittleEndian.PutUint32(data[1:5], 2000000)
	binary.LittleEndian.PutUint16(data[5:7], 500)
	negX := int16(-500)
	binary.LittleEndian.PutUint16(data[7:9], uint16(negX))
	binary.LittleEndian.PutUint16(data[9:11], 0)
	binary.LittleEndian.PutUint16(data[11:13], 0)
	binary.LittleEndian.PutUint16(data[13:15], 1000)
	binary.LittleEndian.PutUint16(data[15:17], 1000)
	file := buildFITFile(append(rec, data...))

	s, err := Decode(file, Options{CountsPerG: 1000})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(s.Accel) != 2 {
		t.Fatalf("got %d samples, want 2", len(s.Accel))
	}
	if math.Abs(s.Accel[0][0]-0.5) > 1e-9 || math.Abs(s.Accel[1][0]-(-0.5)) > 1e-9 {
		t.Errorf("scaled x samples = %f, %f, want 0.5, -0.5", s.Accel[0][0], s.Accel[1][0])
	}
	if math.Abs(s.Accel[0][2]-1) > 1e-9 {
		t.Errorf("scaled z sample = %f, want 1", s.Accel[0][2])
	}
}

func TestDecodeBadCRC(t *testing.T) {
	file := buildFITFile(calibratedAccelRecords(1000000, 0))
	file[len(file)-1] ^= 0xFF

	s, err := Decode(file, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s.CRCValid {
		t.Error("corrupted checksum reported as valid")
	}
	if len(s.Time) != 2 {
		t.Fatalf("got %d samples, want 2", len(s.Time))
	}
}

func TestDecodeTruncated(t *testing.T) {
	file := buildFITFile(calibratedAccelRecords(1000000, 0))
	if _, err := Decode(file[:20], Options{}); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestDecodeNoAccelerometer(t *testing.T) {
	var rec []byte
	rec = append(rec,
		0x40, 0x00, 0x00,
		20, 0, // record message
		1,
		253, 4, 0x86,
	)
	data := make([]byte, 5)
	data[0] = 0x00
	binary.LittleEndian.PutUint32(data[1:5], 123456)
	file := buildFITFile(append(rec, data...))

	if _, err := Decode(file, Options{}); err == nil {
		t.Fatal("expected error when no accelerometer messages exist")
	}
}
