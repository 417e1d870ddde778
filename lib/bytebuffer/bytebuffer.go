// Package bytebuffer implements a segmented, append-dominated byte store
// with independent read and write cursors.
//
// # Overview
//
// Buffer can be configured as either a single contiguous segment that grows
// by reallocation (ContinuousStorage) or as a linked chain of fixed-minimum
// -size segments (the default). It optionally retains already-read bytes to
// support absolute seeking (KeepBytes), and can optionally pull more bytes
// from a caller-supplied Source once it has been drained.
//
// # Segment arena
//
// Segments live in a single []*segment arena owned by the Buffer and are
// addressed by index rather than by pointer; -1 means "no segment". A
// consumed segment is retired from the addressable window (it stops
// counting toward capacity) but is never recycled onto the free list or
// unlinked purely by the reader advancing past it — only Clear does that,
// on request. That is what lets SeekRestore and SeekSet walk back across
// segment boundaries safely: there is no pointer-to-a-since-recycled-segment
// footgun to begin with, since nothing is freed out from under a cursor
// that might still reference it.
//
// # Dependencies
//
// Uses the Go standard library plus github.com/pkg/errors for wrapped
// sentinel errors. Higher layers (lib/bfm, cmd/bfmc) are
// responsible for logging and error presentation; Buffer only returns errors.
//
// # Thread Safety
//
// Buffer is NOT thread-safe. A single owner drives one Buffer; concurrent
// access from multiple goroutines requires external synchronization.
package bytebuffer

import (
	"github.com/pkg/errors"
)

// Options is a bitmask of buffer configuration and per-call flags.
type Options uint

const (
	// ContinuousStorage keeps a single realloc-grown segment instead of a
	// linked chain. At most one live segment exists in the main chain; the
	// free list is unused.
	ContinuousStorage Options = 1 << iota
	// KeepBytes retains already-read bytes so GetOffset and SeekSet work.
	// Without it, GetOffset always returns -1 and SeekSet fails. Segments
	// the reader has advanced past stay allocated in either mode; only
	// Clear frees or recycles them.
	KeepBytes
	// DiscardReaded, passed to Clear, frees only segments the reader has
	// already advanced past, instead of the whole chain.
	DiscardReaded
	// ReuseStorage, passed to Clear, moves freed segments onto the free
	// list instead of releasing them to the garbage collector.
	ReuseStorage
)

// Seek modes, passed to Buffer.Seek.
const (
	SeekRestore Options = 1 << iota
	SeekSet
)

// MinSegmentSize is the minimum size of any newly allocated segment (16
// KiB). Chosen to match the fragment size the teacher's own PER encoder
// uses for unconstrained length determinants (lib/per's FRAGMENT_SIZE) —
// both exist to pick a sane chunk size for data of unknown total length.
const MinSegmentSize = 0x4000

// moreStorageFactor over-allocates on growth so repeated small writes don't
// each trigger a new segment or reallocation.
const moreStorageFactor = 1.25

var (
	// ErrAllocFailure is returned when a segment could not be grown or
	// allocated.
	ErrAllocFailure = errors.New("bytebuffer: allocation failure")
	// ErrSourceError is returned when the attached Source reported an error.
	ErrSourceError = errors.New("bytebuffer: source read error")
	// ErrInvalidSeek is returned when a seek mode is unsupported in the
	// buffer's current configuration.
	ErrInvalidSeek = errors.New("bytebuffer: invalid seek")
)

// Source pulls more bytes into a drained Buffer. Read should write directly
// into dst via dst.WriteBytes and return the number of bytes produced: 0
// means EOF, a non-nil error means failure.
type Source interface {
	Read(dst *Buffer) (int, error)
}

// segment is one chunk of the backing store. A linked-mode segment's
// capacity is immutable once allocated so a recycled segment is safe to
// hand out regardless of what the previous writer left behind; the single
// ContinuousStorage segment is instead regrown by replacing its data.
type segment struct {
	data []byte
	prev int
	next int
}

func (s *segment) capacity() int { return len(s.data) }

// Buffer is a segmented byte store with independent read and write cursors.
type Buffer struct {
	options Options

	segments []*segment
	freeHead int // index into segments, or -1

	firstSegment int
	writeSegment int
	readSegment  int

	writeCursor int // offset within segments[writeSegment].data
	writeEnd    int
	readCursor  int // offset within segments[readSegment].data
	readEnd     int

	capacity int // total bytes across currently-addressable segments
	readSize int // bytes dropped off the front, for absolute offsets

	source Source
}

// New creates a Buffer with the given options and, if initSize > 0,
// pre-allocates initSize bytes of storage.
func New(initSize int, options Options) (*Buffer, error) {
	b := &Buffer{
		options:      options,
		firstSegment: -1,
		writeSegment: -1,
		readSegment:  -1,
		freeHead:     -1,
	}
	if initSize > 0 {
		if err := b.pushStorage(initSize); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// SetSource attaches (or clears, with nil) the pull-source callback.
func (b *Buffer) SetSource(source Source) {
	b.source = source
}

// Dispose releases every segment the buffer owns, live or free-listed, and
// resets the buffer to its zero state. A buffer whose New returned an error
// must not be disposed.
func (b *Buffer) Dispose() {
	b.segments = nil
	b.freeHead = -1
	b.firstSegment = -1
	b.writeSegment = -1
	b.readSegment = -1
	b.writeCursor, b.writeEnd = 0, 0
	b.readCursor, b.readEnd = 0, 0
	b.capacity = 0
	b.readSize = 0
	b.source = nil
}

// allocSegment appends a new segment of the given capacity to the arena and
// returns its index.
func (b *Buffer) allocSegment(capacity int) int {
	b.segments = append(b.segments, &segment{
		data: make([]byte, capacity),
		prev: -1,
		next: -1,
	})
	return len(b.segments) - 1
}

// pushStorage grows the buffer by at least preferred bytes.
func (b *Buffer) pushStorage(preferred int) error {
	if b.options&ContinuousStorage != 0 {
		return b.pushContinuousStorage(preferred)
	}
	return b.pushLinkedStorage(preferred)
}

func (b *Buffer) pushContinuousStorage(preferred int) error {
	var (
		usedSize   int
		readOffset int
		capacity   int
		haveSeg    = b.readSegment >= 0
	)

	if haveSeg {
		seg := b.segments[b.readSegment]
		if b.options&KeepBytes != 0 {
			// Keep everything written so far; it may still be seeked to.
			usedSize = b.writeCursor
			readOffset = b.readCursor
		} else {
			// Only unread bytes need to survive the grow.
			usedSize = b.writeCursor - b.readCursor
			readOffset = 0
		}
		capacity = seg.capacity()
	}

	want := int(float64(usedSize+preferred) * moreStorageFactor)
	if want < MinSegmentSize {
		want = MinSegmentSize
	}

	if !haveSeg {
		idx := b.allocSegment(want)
		b.firstSegment = idx
		b.writeSegment = idx
		b.readSegment = idx
		b.writeCursor = 0
		b.writeEnd = want
		b.readCursor = 0
		b.readEnd = 0
		b.capacity = want
		return nil
	}

	if want <= capacity {
		// Existing capacity is already sufficient; nothing to reallocate.
		// Without KeepBytes the unread bytes are moved to the front so the
		// consumed prefix becomes write room.
		if b.options&KeepBytes == 0 && b.readCursor > 0 {
			seg := b.segments[b.readSegment]
			copy(seg.data, seg.data[b.readCursor:b.writeCursor])
			b.writeCursor = usedSize
			b.readCursor = 0
			b.readEnd = b.writeCursor
		}
		return nil
	}

	seg := b.segments[b.readSegment]
	newData := make([]byte, want)
	if b.options&KeepBytes != 0 {
		copy(newData, seg.data[:usedSize])
	} else {
		copy(newData, seg.data[b.readCursor:b.readCursor+usedSize])
	}
	seg.data = newData

	b.capacity = want
	b.writeCursor = usedSize
	b.writeEnd = want
	b.readCursor = readOffset
	if b.options&KeepBytes == 0 {
		b.readCursor = 0
	}
	b.readEnd = b.writeCursor
	return nil
}

func (b *Buffer) pushLinkedStorage(preferred int) error {
	var idx int

	if b.freeHead >= 0 {
		idx = b.freeHead
		b.freeHead = b.segments[idx].next
		b.segments[idx].next = -1
		b.segments[idx].prev = -1
	} else {
		want := int(float64(preferred) * moreStorageFactor)
		if want < MinSegmentSize {
			want = MinSegmentSize
		}
		idx = b.allocSegment(want)
	}

	seg := b.segments[idx]
	seg.prev = b.writeSegment
	seg.next = -1

	if b.writeSegment >= 0 {
		b.segments[b.writeSegment].next = idx
	} else {
		b.firstSegment = idx
		b.readSegment = idx
		b.readCursor = 0
		b.readEnd = 0
	}

	b.capacity += seg.capacity()
	b.writeSegment = idx
	b.writeCursor = 0
	b.writeEnd = seg.capacity()

	return nil
}

// shiftStorage advances the reader past the current segment, or pulls more
// bytes from the attached source. Returns the next segment's capacity when
// the reader moved on, else the source's byte count: 0 is EOF.
func (b *Buffer) shiftStorage() (int, error) {
	if b.options&ContinuousStorage != 0 {
		if b.source == nil {
			return 0, nil
		}
		n, err := b.source.Read(b)
		if err != nil {
			return -1, errors.Wrapf(ErrSourceError, "bytebuffer: %v", err)
		}
		return n, nil
	}

	if b.readSegment >= 0 && b.segments[b.readSegment].next >= 0 {
		cur := b.readSegment
		next := b.segments[cur].next

		// The consumed segment is never recycled or unlinked here, only
		// retired from the addressable window (capacity). It stays attached
		// via prev/next so restoreBytes can always walk back to it; only
		// Clear(DiscardReaded) or a full Clear ever actually frees it. This
		// is what keeps a recycled segment from ever being reachable through
		// a stale index (see the package doc's arena note).
		if b.options&KeepBytes != 0 {
			b.readSize += b.segments[cur].capacity()
		}

		b.capacity -= b.segments[cur].capacity()
		b.readSegment = next
		b.readCursor = 0

		if b.readSegment == b.writeSegment {
			b.readEnd = b.writeCursor
		} else {
			b.readEnd = b.segments[next].capacity()
		}

		return b.segments[next].capacity(), nil
	}

	if b.source != nil {
		n, err := b.source.Read(b)
		if err != nil {
			return -1, errors.Wrapf(ErrSourceError, "bytebuffer: %v", err)
		}
		return n, nil
	}

	return 0, nil
}

// WriteBytes copies p into the buffer, growing storage as needed. Partial
// writes are not rolled back on failure — already-accepted bytes stay.
func (b *Buffer) WriteBytes(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		remaining := 0
		if b.writeSegment >= 0 {
			remaining = b.writeEnd - b.writeCursor
		}

		if remaining == 0 {
			if err := b.pushStorage(len(p)); err != nil {
				return written, errors.Wrap(err, "bytebuffer: write failed")
			}
			continue
		}

		n := remaining
		if n > len(p) {
			n = len(p)
		}

		seg := b.segments[b.writeSegment]
		copy(seg.data[b.writeCursor:], p[:n])
		b.writeCursor += n
		if b.readSegment == b.writeSegment {
			b.readEnd = b.writeCursor
		}

		written += n
		p = p[n:]
	}
	return written, nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	_, err := b.WriteBytes([]byte{c})
	return err
}

// ReadBytes copies up to n bytes from the read cursor into dst, which must
// hold at least n bytes. A nil dst discards n bytes. Returns the number of bytes delivered; fewer
// than requested means EOF was reached.
func (b *Buffer) ReadBytes(dst []byte, n int) (int, error) {
	read := 0
	for n > 0 {
		remaining := 0
		if b.readSegment >= 0 {
			remaining = b.readEnd - b.readCursor
		}

		if remaining > 0 {
			chunk := remaining
			if chunk > n {
				chunk = n
			}
			if dst != nil {
				seg := b.segments[b.readSegment]
				copy(dst[read:], seg.data[b.readCursor:b.readCursor+chunk])
			}
			b.readCursor += chunk
			read += chunk
			n -= chunk
			continue
		}

		shifted, err := b.shiftStorage()
		if err != nil {
			return read, err
		}
		if shifted == 0 {
			break
		}
	}
	return read, nil
}

// ReadByte reads a single byte, returning (-1, nil) at EOF.
func (b *Buffer) ReadByte() (int, error) {
	var out [1]byte
	n, err := b.ReadBytes(out[:], 1)
	if err != nil {
		return -1, err
	}
	if n == 0 {
		return -1, nil
	}
	return int(out[0]), nil
}

// GetBytes returns the unread-to-written region of the live segment's
// backing slice. Only meaningful for ContinuousStorage buffers; returns
// nil otherwise.
func (b *Buffer) GetBytes() []byte {
	if b.options&ContinuousStorage != 0 && b.readSegment >= 0 {
		return b.segments[b.readSegment].data[b.readCursor:b.writeCursor]
	}
	return nil
}

// GetSize returns the number of bytes currently available to read.
func (b *Buffer) GetSize() int {
	size := b.capacity
	if b.writeSegment >= 0 {
		size -= b.writeEnd - b.writeCursor
	}
	if b.readSegment >= 0 {
		size -= b.readCursor - 0
	}
	return size
}

// GetOffset returns the absolute read position if KeepBytes is set, else -1.
func (b *Buffer) GetOffset() int {
	if b.options&KeepBytes == 0 {
		return -1
	}
	offset := b.readSize
	if b.readSegment >= 0 {
		offset += b.readCursor
	}
	return offset
}

func (b *Buffer) restoreBytes(n int) int {
	restored := 0
	remaining := b.readCursor

	for n > 0 {
		if n <= remaining {
			b.readCursor -= n
			restored += n
			break
		}

		b.readCursor -= remaining
		restored += remaining
		n -= remaining

		prev := b.segments[b.readSegment].prev
		if prev < 0 {
			break
		}

		b.readSegment = prev
		seg := b.segments[prev]
		b.readEnd = seg.capacity()
		b.readCursor = seg.capacity()
		b.capacity += seg.capacity()
		if b.options&KeepBytes != 0 {
			b.readSize -= seg.capacity()
		}
		remaining = b.readCursor
	}

	return restored
}

func (b *Buffer) seekToOffset(offset int) (int, error) {
	if b.firstSegment < 0 {
		return -1, errors.Wrap(ErrInvalidSeek, "bytebuffer: seek on empty buffer")
	}

	// Segments before firstSegment may have been discarded by Clear; the
	// absolute offset of firstSegment's first byte is readSize minus the
	// capacities from firstSegment up to readSegment.
	base := b.readSize
	for i := b.firstSegment; i >= 0 && i != b.readSegment; i = b.segments[i].next {
		base -= b.segments[i].capacity()
	}
	if offset < base {
		return -1, errors.Wrap(ErrInvalidSeek, "bytebuffer: offset precedes retained bytes")
	}
	offset -= base

	segIdx := b.firstSegment
	readSize := base

	for offset > b.segments[segIdx].capacity() {
		offset -= b.segments[segIdx].capacity()
		readSize += b.segments[segIdx].capacity()
		next := b.segments[segIdx].next
		if next < 0 {
			return -1, errors.Wrap(ErrInvalidSeek, "bytebuffer: offset beyond end")
		}
		segIdx = next
	}

	if segIdx == b.writeSegment {
		if offset > b.writeCursor {
			return -1, errors.Wrap(ErrInvalidSeek, "bytebuffer: offset beyond write cursor")
		}
		b.readEnd = b.writeCursor
	} else {
		b.readEnd = b.segments[segIdx].capacity()
	}

	b.readSegment = segIdx
	b.readCursor = offset
	b.readSize = readSize

	capacity := 0
	for i := segIdx; i >= 0; i = b.segments[i].next {
		capacity += b.segments[i].capacity()
	}
	b.capacity = capacity

	return 0, nil
}

// Seek repositions the read cursor. SeekRestore moves it back by offset
// bytes (requires those segments still be attached, i.e. not released by
// Clear since they were read). SeekSet moves it to an absolute offset
// and requires KeepBytes. Any other combination returns ErrInvalidSeek.
func (b *Buffer) Seek(offset int, mode Options) (int, error) {
	switch {
	case mode&SeekRestore != 0:
		if offset > 0 {
			return b.restoreBytes(offset), nil
		}
	case mode&SeekSet != 0:
		if offset >= 0 && b.options&KeepBytes != 0 {
			return b.seekToOffset(offset)
		}
	}
	return -1, errors.Wrap(ErrInvalidSeek, "bytebuffer: unsupported seek mode")
}

// Clear releases segments per the given options (DiscardReaded, ReuseStorage).
func (b *Buffer) Clear(options Options) {
	if options&DiscardReaded != 0 {
		// Segments strictly before read_segment were already excluded from
		// capacity the moment the reader advanced past them (shiftStorage);
		// this only reclaims the memory, it never re-touches the
		// bookkeeping counters. read_size keeps meaning "capacity preceding
		// the current read_segment", which after first_segment catches up
		// to read_segment is exactly the same set of bytes, so it needs no
		// adjustment either.
		if b.options&ContinuousStorage == 0 && b.readSegment >= 0 {
			for idx := b.segments[b.readSegment].prev; idx >= 0; {
				prev := b.segments[idx].prev
				if options&ReuseStorage != 0 {
					b.segments[idx].next = b.freeHead
					b.segments[idx].prev = -1
					b.freeHead = idx
				} else {
					b.segments[idx] = nil
				}
				idx = prev
			}
			b.segments[b.readSegment].prev = -1
			b.firstSegment = b.readSegment
		}
		return
	}

	if options&ReuseStorage != 0 {
		if b.firstSegment >= 0 {
			b.segments[b.writeSegment].next = b.freeHead
			b.freeHead = b.firstSegment
		}
	} else {
		for idx := b.firstSegment; idx >= 0; {
			next := b.segments[idx].next
			b.segments[idx] = nil
			idx = next
		}
		for idx := b.freeHead; idx >= 0; {
			next := b.segments[idx].next
			b.segments[idx] = nil
			idx = next
		}
		b.freeHead = -1
	}

	b.capacity = 0
	b.readSize = 0
	b.firstSegment = -1
	b.writeSegment = -1
	b.writeCursor, b.writeEnd = 0, 0
	b.readSegment = -1
	b.readCursor, b.readEnd = 0, 0
}
