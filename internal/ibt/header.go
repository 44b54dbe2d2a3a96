package ibt

import (
	"encoding/binary"
	"math"
)

// Byte offsets and sizes from the IBT binary layout, spec.md §3.2/§6.
// All multi-byte fields are little-endian.
const (
	fileHeaderSize    = 48
	bufDescriptorSize = 16
	bufDescriptorBase = 48
	diskHeaderOffset  = 112
	diskHeaderSize    = 32
	varHeaderEntrySize = 144

	varNameLen = 32
	varDescLen = 64
	varUnitLen = 32

	// acceptedVersion is the only header version this parser accepts,
	// per spec.md §4.2.
	acceptedVersion = 2
)

// fileHeader is the 48-byte fixed header at offset 0: 10 named int32
// fields followed by 2 padding int32s to reach 48 bytes.
type fileHeader struct {
	Version               int32
	Status                int32
	TickRate              int32
	SessionInfoUpdate     int32
	SessionInfoLen        int32
	SessionInfoOffset     int32
	NumVars               int32
	VarHeaderOffset       int32
	NumBuf                int32
	BufLen                int32
}

func parseFileHeader(buf []byte, fileSize int64) (fileHeader, error) {
	if len(buf) < fileHeaderSize {
		return fileHeader{}, truncated("ibt.parseFileHeader")
	}
	var h fileHeader
	le := binary.LittleEndian
	h.Version = int32(le.Uint32(buf[0:4]))
	h.Status = int32(le.Uint32(buf[4:8]))
	h.TickRate = int32(le.Uint32(buf[8:12]))
	h.SessionInfoUpdate = int32(le.Uint32(buf[12:16]))
	h.SessionInfoLen = int32(le.Uint32(buf[16:20]))
	h.SessionInfoOffset = int32(le.Uint32(buf[20:24]))
	h.NumVars = int32(le.Uint32(buf[24:28]))
	h.VarHeaderOffset = int32(le.Uint32(buf[28:32]))
	h.NumBuf = int32(le.Uint32(buf[32:36]))
	h.BufLen = int32(le.Uint32(buf[36:40]))
	// buf[40:48] is reserved padding, ignored.

	if h.NumBuf < 1 || h.NumBuf > 4 {
		return fileHeader{}, malformedf("ibt.parseFileHeader", "buffer count %d out of [1,4]", h.NumBuf)
	}
	if h.NumVars < 0 || int64(h.VarHeaderOffset) < 0 || int64(h.VarHeaderOffset) > fileSize {
		return fileHeader{}, malformedf("ibt.parseFileHeader", "variable table offset %d out of file bounds", h.VarHeaderOffset)
	}
	if int64(h.SessionInfoOffset) < 0 || int64(h.SessionInfoOffset) > fileSize {
		return fileHeader{}, malformedf("ibt.parseFileHeader", "session info offset %d out of file bounds", h.SessionInfoOffset)
	}
	return h, nil
}

// bufDescriptor is one 16-byte rotating-buffer descriptor.
type bufDescriptor struct {
	TickCount int32
	BufOffset int32
}

func parseBufDescriptor(buf []byte) (bufDescriptor, error) {
	if len(buf) < bufDescriptorSize {
		return bufDescriptor{}, truncated("ibt.parseBufDescriptor")
	}
	le := binary.LittleEndian
	return bufDescriptor{
		TickCount: int32(le.Uint32(buf[0:4])),
		BufOffset: int32(le.Uint32(buf[4:8])),
	}, nil
}

// diskSubHeader is the 32-byte header at offset 112.
type diskSubHeader struct {
	StartDate   int64
	StartTime   float64
	EndTime     float64
	LapCount    int32
	RecordCount int32
}

func parseDiskSubHeader(buf []byte) (diskSubHeader, error) {
	if len(buf) < diskHeaderSize {
		return diskSubHeader{}, truncated("ibt.parseDiskSubHeader")
	}
	le := binary.LittleEndian
	return diskSubHeader{
		StartDate:   int64(le.Uint64(buf[0:8])),
		StartTime:   math.Float64frombits(le.Uint64(buf[8:16])),
		EndTime:     math.Float64frombits(le.Uint64(buf[16:24])),
		LapCount:    int32(le.Uint32(buf[24:28])),
		RecordCount: int32(le.Uint32(buf[28:32])),
	}, nil
}

// VarHeader describes one variable-table entry, spec.md §3.2.
type VarHeader struct {
	Type        VarType
	Offset      int32
	Count       int32
	CountAsTime bool
	Name        string
	Description string
	Unit        string
}

func parseVarHeader(buf []byte) (VarHeader, error) {
	if len(buf) < varHeaderEntrySize {
		return VarHeader{}, truncated("ibt.parseVarHeader")
	}
	le := binary.LittleEndian
	vh := VarHeader{
		Type:        VarType(int32(le.Uint32(buf[0:4]))),
		Offset:      int32(le.Uint32(buf[4:8])),
		Count:       int32(le.Uint32(buf[8:12])),
		CountAsTime: buf[12] != 0,
	}
	if !vh.Type.valid() {
		return VarHeader{}, malformedf("ibt.parseVarHeader", "unknown variable type code %d", vh.Type)
	}
	off := 16
	vh.Name = cString(buf[off : off+varNameLen])
	off += varNameLen
	vh.Description = cString(buf[off : off+varDescLen])
	off += varDescLen
	vh.Unit = cString(buf[off : off+varUnitLen])
	return vh, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
