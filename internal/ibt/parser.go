// Package ibt decodes iRacing's binary telemetry (.ibt) file format:
// fixed header, rotating buffer descriptors, disk sub-header, variable
// table and embedded session YAML, per spec.md §3.2/§4.2. Grounded on
// toonknapen/accbroadcastingsdk's network/buffer.go binary decode style
// (explicit encoding/binary, no reflection, no struct tags).
package ibt

import (
	"os"

	"github.com/racetelem/ibtstream/internal/apierr"
)

// SessionInfo holds the subset of the embedded session YAML that the
// normalizer and replay engine consume, per spec.md §4.2.
type SessionInfo struct {
	TrackName        string
	TrackDisplayName string
	TrackConfigName  string
	TrackLength      string // raw form, e.g. "5.891 km"; unit conversion is the normalizer's job
	CarScreenName    string
	UserName         string
	DriverCarIdx     int
	SessionType      string
}

// Recording is a parsed, read-only view over an .ibt file. It owns the
// open file handle for its lifetime; callers must call Close when done.
type Recording struct {
	f        *os.File
	fileSize int64

	header  fileHeader
	buf0    bufDescriptor
	disk    diskSubHeader
	vars    []VarHeader
	byName  map[string]int
	session SessionInfo

	baseOffset int64
}

// Open reads and validates every fixed-layout region of path and
// returns a ready-to-query Recording. The file stays open for
// subsequent ReadSample/ReadSamplesRange calls.
func Open(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierr.New(apierr.KindMalformedInput, "ibt.Open", err)
	}
	rec, err := open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rec, nil
}

func open(f *os.File) (*Recording, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, apierr.New(apierr.KindMalformedInput, "ibt.Open", err)
	}
	fileSize := info.Size()

	fixed := make([]byte, diskHeaderOffset+diskHeaderSize)
	if _, err := f.ReadAt(fixed, 0); err != nil {
		return nil, truncated("ibt.Open")
	}

	h, err := parseFileHeader(fixed[:fileHeaderSize], fileSize)
	if err != nil {
		return nil, err
	}
	if h.Version != acceptedVersion {
		return nil, unsupportedf("ibt.Open", "header version %d is not accepted (want %d)", h.Version, acceptedVersion)
	}

	bd, err := parseBufDescriptor(fixed[bufDescriptorBase : bufDescriptorBase+bufDescriptorSize])
	if err != nil {
		return nil, err
	}

	disk, err := parseDiskSubHeader(fixed[diskHeaderOffset : diskHeaderOffset+diskHeaderSize])
	if err != nil {
		return nil, err
	}

	varTableLen := int64(h.NumVars) * varHeaderEntrySize
	if int64(h.VarHeaderOffset)+varTableLen > fileSize {
		return nil, truncated("ibt.Open")
	}
	varBuf := make([]byte, varTableLen)
	if varTableLen > 0 {
		if _, err := f.ReadAt(varBuf, int64(h.VarHeaderOffset)); err != nil {
			return nil, truncated("ibt.Open")
		}
	}
	vars := make([]VarHeader, 0, h.NumVars)
	byName := make(map[string]int, h.NumVars)
	for i := 0; i < int(h.NumVars); i++ {
		entry := varBuf[i*varHeaderEntrySize : (i+1)*varHeaderEntrySize]
		vh, err := parseVarHeader(entry)
		if err != nil {
			return nil, err
		}
		byName[vh.Name] = len(vars)
		vars = append(vars, vh)
	}

	sessionLen := int64(h.SessionInfoLen)
	if int64(h.SessionInfoOffset)+sessionLen > fileSize {
		return nil, truncated("ibt.Open")
	}
	yamlBuf := make([]byte, sessionLen)
	if sessionLen > 0 {
		if _, err := f.ReadAt(yamlBuf, int64(h.SessionInfoOffset)); err != nil {
			return nil, truncated("ibt.Open")
		}
	}

	return &Recording{
		f:          f,
		fileSize:   fileSize,
		header:     h,
		buf0:       bd,
		disk:       disk,
		vars:       vars,
		byName:     byName,
		session:    parseSessionYAML(yamlBuf),
		baseOffset: int64(bd.BufOffset),
	}, nil
}

// Close releases the underlying file handle.
func (r *Recording) Close() error { return r.f.Close() }

// RecordCount is the number of samples recorded to disk.
func (r *Recording) RecordCount() int { return int(r.disk.RecordCount) }

// TickRate is the source's sample rate in Hz.
func (r *Recording) TickRate() int { return int(r.header.TickRate) }

// DurationSecs is the wall-clock length of the recorded session.
func (r *Recording) DurationSecs() float64 { return r.disk.EndTime - r.disk.StartTime }

// FileSize is the total size in bytes of the underlying file.
func (r *Recording) FileSize() int64 { return r.fileSize }

// SessionInfo returns the parsed session YAML fields.
func (r *Recording) SessionInfo() SessionInfo { return r.session }

// VarHeaders returns the decoded variable table, in on-disk order.
func (r *Recording) VarHeaders() []VarHeader {
	out := make([]VarHeader, len(r.vars))
	copy(out, r.vars)
	return out
}

// Sample is one decoded row of the sample array: variable name to typed
// value, per spec.md §4.2.
type Sample map[string]Value

// ReadSample decodes the i'th recorded sample.
func (r *Recording) ReadSample(i int) (Sample, error) {
	if i < 0 || i >= r.RecordCount() {
		return nil, outOfRangef("ibt.ReadSample", "index %d out of range [0,%d)", i, r.RecordCount())
	}
	buf := make([]byte, r.header.BufLen)
	off := r.baseOffset + int64(i)*int64(r.header.BufLen)
	if _, err := r.f.ReadAt(buf, off); err != nil {
		return nil, truncated("ibt.ReadSample")
	}
	return r.decodeSample(buf), nil
}

// ReadSamplesRange performs one positional read covering count samples
// starting at start and decodes each in memory. count is clamped to
// RecordCount()-start; this is the batch path every bulk client must
// use, per spec.md §4.2.
func (r *Recording) ReadSamplesRange(start, count int) ([]Sample, error) {
	total := r.RecordCount()
	if start < 0 || start >= total {
		return nil, outOfRangef("ibt.ReadSamplesRange", "start %d out of range [0,%d)", start, total)
	}
	if count > total-start {
		count = total - start
	}
	if count <= 0 {
		return nil, nil
	}
	bufLen := int(r.header.BufLen)
	block := make([]byte, bufLen*count)
	off := r.baseOffset + int64(start)*int64(bufLen)
	if _, err := r.f.ReadAt(block, off); err != nil {
		return nil, truncated("ibt.ReadSamplesRange")
	}
	out := make([]Sample, count)
	for i := 0; i < count; i++ {
		out[i] = r.decodeSample(block[i*bufLen : (i+1)*bufLen])
	}
	return out, nil
}

func (r *Recording) decodeSample(buf []byte) Sample {
	s := make(Sample, len(r.vars))
	for _, vh := range r.vars {
		elemSize := vh.Type.elemSize()
		width := elemSize * int(vh.Count)
		end := int(vh.Offset) + width
		if vh.Offset < 0 || end > len(buf) {
			continue // outside the sample buffer: silently skipped, spec.md §4.2
		}
		window := buf[vh.Offset:end]
		v, ok := decodeValue(vh.Type, int(vh.Count), window)
		if !ok {
			continue
		}
		s[vh.Name] = v
	}
	return s
}

func decodeValue(t VarType, count int, window []byte) (Value, bool) {
	le := leGet
	switch t {
	case VarTypeChar:
		if count == 1 {
			return scalarChar(window[0]), true
		}
		return arrayChar(append([]byte(nil), window...)), true
	case VarTypeBool:
		if count == 1 {
			return scalarBool(window[0] != 0), true
		}
		out := make([]bool, count)
		for i := range out {
			out[i] = window[i] != 0
		}
		return arrayBool(out), true
	case VarTypeInt32:
		if count == 1 {
			return scalarInt32(int32(le(window))), true
		}
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(le(window[i*4 : i*4+4]))
		}
		return arrayInt32(out), true
	case VarTypeBitfield32:
		if count == 1 {
			return scalarBits(le(window)), true
		}
		out := make([]uint32, count)
		for i := range out {
			out[i] = le(window[i*4 : i*4+4])
		}
		return arrayBits(out), true
	case VarTypeFloat32:
		if count == 1 {
			return scalarFloat32(float32FromBits(le(window))), true
		}
		out := make([]float32, count)
		for i := range out {
			out[i] = float32FromBits(le(window[i*4 : i*4+4]))
		}
		return arrayFloat32(out), true
	case VarTypeFloat64:
		if count == 1 {
			return scalarFloat64(float64FromBits(le64(window))), true
		}
		out := make([]float64, count)
		for i := range out {
			out[i] = float64FromBits(le64(window[i*8 : i*8+8]))
		}
		return arrayFloat64(out), true
	default:
		return Value{}, false
	}
}
