// Package key implements the bit-packed 64-bit cell key: a tuple of
// per-dimension element ids packed into disjoint bit fields of a
// single uint64, as described for the cube's identifier codec.
package key

import (
	"github.com/grailbio/stoap/bitutil"
	"github.com/grailbio/stoap/errs"
)

// None is the reserved sentinel key: all bits set. The codec refuses
// to construct a layout under which a legal tuple could pack to this
// value (see NewCodec), so it is always safe to use as an "empty
// slot" marker in open-addressing storage.
const None uint64 = ^uint64(0)

// Field describes one dimension's bit field within a packed key.
type Field struct {
	Pos   uint // bit offset of the field's low bit
	Width uint // field width in bits
	Mask  uint64 // inclusive mask, pre-shift: (1<<Width)-1
}

// Codec packs and unpacks n-tuples of dimension element ids into a
// single uint64, one field per dimension in a fixed order.
type Codec struct {
	fields []Field
}

// NewCodec computes (dimPos, width, mask) for each dimension from its
// maximum legal element id, in the given order. It fails if the total
// width exceeds 64 bits, or if an all-ones tuple (every dimension at
// its per-field all-ones value) would be legal — i.e. if the fields
// fill all 64 bits and every dimension's maxID is its field's all-ones
// value, so that the tuple of maxIDs would collide with the None
// sentinel.
func NewCodec(maxIDs []uint64) (*Codec, error) {
	fields := make([]Field, len(maxIDs))
	var pos uint
	for i, maxID := range maxIDs {
		width := uint(bitutil.Width(maxID))
		if pos+width > 64 {
			return nil, errs.New(errs.Internal,
				"key: total bit width %d exceeds 64 at dimension %d (width %d)", pos+width, i, width)
		}
		fields[i] = Field{Pos: pos, Width: width, Mask: (uint64(1) << width) - 1}
		pos += width
	}
	if pos == 64 {
		full := true
		for i, f := range fields {
			if maxIDs[i] != f.Mask {
				full = false
				break
			}
		}
		if full {
			return nil, errs.New(errs.Internal, "key: the tuple of maximum ids would pack to the reserved sentinel key")
		}
	}
	return &Codec{fields: fields}, nil
}

// NumFields returns the number of dimensions the codec was built for.
func (c *Codec) NumFields() int { return len(c.fields) }

// Field returns the bit-field layout for dimension i.
func (c *Codec) Field(i int) Field { return c.fields[i] }

// Encode packs a tuple of per-dimension ids into one key. The caller
// must supply exactly NumFields() ids. Encode rejects an id that does
// not fit its field's bit width, but does not check it against the
// dimension's maxID or the dimension model (callers check membership
// against the dimension model, which is the authoritative source of
// "legal").
func (c *Codec) Encode(ids []uint64) (uint64, error) {
	if len(ids) != len(c.fields) {
		return 0, errs.New(errs.InvalidCoordinates,
			"key: wrong number of coordinates: got %d, want %d", len(ids), len(c.fields))
	}
	var k uint64
	for i, f := range c.fields {
		if ids[i] > f.Mask {
			return 0, errs.New(errs.InvalidCoordinates,
				"key: id %d out of range for dimension %d (mask %#x)", ids[i], i, f.Mask)
		}
		k |= ids[i] << f.Pos
	}
	return k, nil
}

// Decode unpacks a key into its per-dimension ids, writing into dst
// (which must have length NumFields()) and returning it.
func (c *Codec) Decode(k uint64, dst []uint64) []uint64 {
	for i, f := range c.fields {
		dst[i] = (k >> f.Pos) & f.Mask
	}
	return dst
}

// DecodeNew is Decode into a freshly allocated slice.
func (c *Codec) DecodeNew(k uint64) []uint64 {
	return c.Decode(k, make([]uint64, len(c.fields)))
}
