// Package fitraw decodes FIT files at the byte level, exposing the raw
// accelerometer_data messages that profile-driven decoders skip.
package fitraw

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tormoder/fit/dyncrc16"
)

const (
	compressedHeaderMask = 0x80
	compressedLocalMask  = 0x60
	compressedTimeMask   = 0x1F
	definitionMask       = 0x40
	devDataMask          = 0x20
	localMesgNumMask     = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14
)

type baseType uint8

const (
	baseEnum    baseType = 0x00
	baseSint8   baseType = 0x01
	baseUint8   baseType = 0x02
	baseSint16  baseType = 0x03
	baseUint16  baseType = 0x04
	baseSint32  baseType = 0x05
	baseUint32  baseType = 0x06
	baseString  baseType = 0x07
	baseFloat32 baseType = 0x08
	baseFloat64 baseType = 0x09
	baseUint8z  baseType = 0x0A
	baseUint16z baseType = 0x0B
	baseUint32z baseType = 0x0C
	baseByte    baseType = 0x0D
	baseSint64  baseType = 0x0E
	baseUint64  baseType = 0x0F
	baseUint64z baseType = 0x10
)

var baseSizes = map[baseType]int{
	baseEnum: 1, baseSint8: 1, baseUint8: 1, baseSint16: 2, baseUint16: 2,
	baseSint32: 4, baseUint32: 4, baseString: 1, baseFloat32: 4, baseFloat64: 8,
	baseUint8z: 1, baseUint16z: 2, baseUint32z: 4, baseByte: 1,
	baseSint64: 8, baseUint64: 8, baseUint64z: 8,
}

type fieldDef struct {
	num  uint8
	size uint8
	base baseType
}

type definition struct {
	global       uint16
	arch         binary.ByteOrder
	fields       []fieldDef
	devFieldSize int
}

// fieldValue is one undecoded field of a data message; accessors interpret
// the raw bytes on demand.
type fieldValue struct {
	num  uint8
	base baseType
	arch binary.ByteOrder
	raw  []byte
}

func (f fieldValue) count() int {
	sz := baseSizes[f.base]
	if sz <= 0 || len(f.raw)%sz != 0 {
		return 0
	}
	return len(f.raw) / sz
}

func (f fieldValue) uint32At(i int) uint32 {
	switch f.base {
	case baseUint8, baseUint8z, baseEnum:
		return uint32(f.raw[i])
	case baseUint16, baseUint16z:
		return uint32(f.arch.Uint16(f.raw[i*2:]))
	case baseUint32, baseUint32z:
		return f.arch.Uint32(f.raw[i*4:])
	}
	return 0
}

func (f fieldValue) int16At(i int) int16 {
	return int16(f.arch.Uint16(f.raw[i*2:]))
}

func (f fieldValue) float32At(i int) float32 {
	return math.Float32frombits(f.arch.Uint32(f.raw[i*4:]))
}

type message struct {
	global uint16
	fields []fieldValue
	// timestamp is the accumulated FIT timestamp for messages carrying a
	// compressed time header, zero otherwise.
	timestamp uint32
}

func (m *message) field(num uint8) (fieldValue, bool) {
	for _, f := range m.fields {
		if f.num == num {
			return f, true
		}
	}
	return fieldValue{}, false
}

type parser struct {
	data        []byte
	pos         int
	definitions map[uint8]definition
	lastStamp   uint32
	lastOffset  int32
	messages    []message
	crcValid    bool
}

func parse(data []byte) (*parser, error) {
	if len(data) < headerSizeNoCRC+2 {
		return nil, fmt.Errorf("fit file too short: %d bytes", len(data))
	}
	hSize := int(data[0])
	if hSize != headerSizeNoCRC && hSize != headerSizeCRC {
		return nil, fmt.Errorf("invalid fit header size %d", hSize)
	}
	if string(data[8:12]) != ".FIT" {
		return nil, fmt.Errorf("missing .FIT marker in header")
	}
	dataSize := int(binary.LittleEndian.Uint32(data[4:8]))
	if len(data) < hSize+dataSize+2 {
		return nil, fmt.Errorf("fit file truncated: have %d bytes, need %d", len(data), hSize+dataSize+2)
	}

	p := &parser{
		data:        data[hSize : hSize+dataSize],
		definitions: make(map[uint8]definition),
		crcValid:    true,
	}

	if hSize == headerSizeCRC {
		stored := binary.LittleEndian.Uint16(data[12:14])
		if stored != 0 && stored != dyncrc16.Checksum(data[:12]) {
			p.crcValid = false
		}
	}
	stored := binary.LittleEndian.Uint16(data[hSize+dataSize:])
	if stored != dyncrc16.Checksum(data[:hSize+dataSize]) {
		p.crcValid = false
	}

	if err := p.walk(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) walk() error {
	for p.pos < len(p.data) {
		hdr := p.data[p.pos]
		p.pos++

		switch {
		case hdr&compressedHeaderMask == compressedHeaderMask:
			local := (hdr & compressedLocalMask) >> 5
			if err := p.readData(local, hdr, true); err != nil {
				return err
			}
		case hdr&definitionMask == definitionMask:
			if err := p.readDefinition(hdr); err != nil {
				return err
			}
		default:
			if err := p.readData(hdr&localMesgNumMask, hdr, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) take(n int) ([]byte, error) {
	if p.pos+n > len(p.data) {
		return nil, fmt.Errorf("record truncated at byte %d", p.pos)
	}
	out := p.data[p.pos : p.pos+n]
	p.pos += n
	return out, nil
}

func (p *parser) readDefinition(hdr uint8) error {
	local := hdr & localMesgNumMask
	fixed, err := p.take(5)
	if err != nil {
		return err
	}
	var arch binary.ByteOrder
	switch fixed[1] {
	case 0:
		arch = binary.LittleEndian
	case 1:
		arch = binary.BigEndian
	default:
		return fmt.Errorf("invalid architecture byte %d", fixed[1])
	}
	def := definition{
		global: arch.Uint16(fixed[2:4]),
		arch:   arch,
	}
	nFields := int(fixed[4])
	for i := 0; i < nFields; i++ {
		raw, err := p.take(3)
		if err != nil {
			return err
		}
		def.fields = append(def.fields, fieldDef{
			num:  raw[0],
			size: raw[1],
			base: baseType(raw[2] & 0x1F),
		})
	}
	if hdr&devDataMask == devDataMask {
		nDev, err := p.take(1)
		if err != nil {
			return err
		}
		for i := 0; i < int(nDev[0]); i++ {
			raw, err := p.take(3)
			if err != nil {
				return err
			}
			def.devFieldSize += int(raw[1])
		}
	}
	p.definitions[local] = def
	return nil
}

func (p *parser) readData(local, hdr uint8, compressed bool) error {
	def, ok := p.definitions[local]
	if !ok {
		return fmt.Errorf("data message for undefined local type %d", local)
	}
	msg := message{global: def.global}

	if compressed && p.lastStamp != 0 {
		offset := int32(hdr & compressedTimeMask)
		p.lastStamp += uint32((offset - p.lastOffset) & int32(compressedTimeMask))
		p.lastOffset = offset
		msg.timestamp = p.lastStamp
	}

	for _, fd := range def.fields {
		raw, err := p.take(int(fd.size))
		if err != nil {
			return err
		}
		fv := fieldValue{num: fd.num, base: fd.base, arch: def.arch, raw: raw}
		if fd.num == 253 && fv.count() > 0 {
			ts := fv.uint32At(0)
			if ts != 0xFFFFFFFF {
				p.lastStamp = ts
				p.lastOffset = int32(ts & compressedTimeMask)
				msg.timestamp = ts
			}
		}
		msg.fields = append(msg.fields, fv)
	}
	if def.devFieldSize > 0 {
		if _, err := p.take(def.devFieldSize); err != nil {
			return err
		}
	}
	p.messages = append(p.messages, msg)
	return nil
}
