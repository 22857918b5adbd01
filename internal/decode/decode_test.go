package decode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openashp/aerona3-bridge/internal/schema"
)

func TestRaw_Signed16(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.S16, Scale: schema.One}

	for _, tc := range []struct {
		word uint16
		want int64
	}{
		{0x0000, 0},
		{0x0001, 1},
		{0x7FFF, 32767},
		{0xFFFF, -1},
		{0xFF9C, -100},
		{0x8000, -32768},
	} {
		got, err := Raw(d, []uint16{tc.word})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "word 0x%04X", tc.word)
	}
}

func TestRaw_Unsigned16(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.U16, Scale: schema.One}

	got, err := Raw(d, []uint16{0xFFFF})
	require.NoError(t, err)
	assert.Equal(t, int64(65535), got)
}

func TestValue_Signed32PairScaled(t *testing.T) {
	d := &schema.Descriptor{
		ID:    "energy",
		Kind:  schema.S32,
		Order: schema.HighLow,
		Scale: schema.Scale{Num: 1, Den: 100},
	}

	v, err := Value(d, []uint16{0x0000, 0x03E8})
	require.NoError(t, err)
	assert.InDelta(t, 10.00, v, 1e-9)
}

func TestRaw_Signed32Negative(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.S32, Scale: schema.One}

	got, err := Raw(d, []uint16{0xFFFF, 0xFFFF})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
}

func TestRaw_WordOrder(t *testing.T) {
	hl := &schema.Descriptor{ID: "hl", Kind: schema.U32, Order: schema.HighLow, Scale: schema.One}
	lh := &schema.Descriptor{ID: "lh", Kind: schema.U32, Order: schema.LowHigh, Scale: schema.One}

	words := []uint16{0x0001, 0x0002}

	v, err := Raw(hl, words)
	require.NoError(t, err)
	assert.Equal(t, int64(0x00010002), v)

	v, err = Raw(lh, words)
	require.NoError(t, err)
	assert.Equal(t, int64(0x00020001), v)
}

func TestRaw_ShortBuffer(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.U32, Scale: schema.One}

	_, err := Raw(d, []uint16{0x0001})
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "t", derr.ID)
}

func TestBits(t *testing.T) {
	run := schema.BitSpec{Bit: 0, ID: "compressor_running", Name: "Compressor Running"}
	def := schema.BitSpec{Bit: 3, ID: "defrosting", Name: "Defrosting"}
	d := &schema.Descriptor{
		ID: "status", Kind: schema.Bitfield, Scale: schema.One,
		Bits: []schema.BitSpec{run, def},
	}

	got := Bits(d, 0x0008)
	assert.False(t, got[run])
	assert.True(t, got[def])
}

func TestWords_ScaledRoundTrip(t *testing.T) {
	d := &schema.Descriptor{ID: "sp", Kind: schema.S16, Scale: schema.Scale{Num: 1, Den: 10}}

	words, err := Words(d, 45.5)
	require.NoError(t, err)
	require.Equal(t, []uint16{455}, words)

	back, err := Value(d, words)
	require.NoError(t, err)
	assert.InDelta(t, 45.5, back, 1e-9)
}

func TestWords_NegativeScaled(t *testing.T) {
	d := &schema.Descriptor{ID: "sp", Kind: schema.S16, Scale: schema.Scale{Num: 1, Den: 10}}

	words, err := Words(d, -7.5)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, int64(-75), int64(int16(words[0])))
}

func TestWords_RejectsOverflow(t *testing.T) {
	u := &schema.Descriptor{ID: "u", Kind: schema.U16, Scale: schema.One}
	s := &schema.Descriptor{ID: "s", Kind: schema.S16, Scale: schema.One}

	_, err := Words(u, -1)
	assert.Error(t, err)
	_, err = Words(u, 70000)
	assert.Error(t, err)
	_, err = Words(s, 40000)
	assert.Error(t, err)
}

func TestWords_RejectsNonFinite(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.U16, Scale: schema.One}

	_, err := Words(d, math.NaN())
	assert.Error(t, err)
	_, err = Words(d, math.Inf(1))
	assert.Error(t, err)
}

func TestWords_32BitOrder(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.U32, Order: schema.LowHigh, Scale: schema.One}

	words, err := Words(d, float64(0x00010002))
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0002, 0x0001}, words)
}

func TestWords_BitfieldNotWritable(t *testing.T) {
	d := &schema.Descriptor{ID: "t", Kind: schema.Bitfield, Scale: schema.One}

	_, err := Words(d, 1)
	assert.Error(t, err)
}
