package rowstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCell(t *testing.T) {
	assert.Nil(t, DecodeCell(""))
	assert.Nil(t, DecodeCell("   "))
	assert.Equal(t, json.Number("37.25"), DecodeCell("37.25"))
	assert.Equal(t, "1 2", DecodeCell("1 2"))
	assert.Equal(t, true, DecodeCell("true"))
	assert.Equal(t, "TRUE", DecodeCell("TRUE"))
	assert.Equal(t, "plain text", DecodeCell("plain text"))
	assert.Equal(t, []any{"a", "b"}, DecodeCell(`["a","b"]`))
}

func TestEncodeCell(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"raw", "raw"},
		{42, "42"},
		{false, "false"},
		{[]string{"x"}, `["x"]`},
		{ts, "2025-03-01T09:30:00Z"},
		{&ts, "2025-03-01T09:30:00Z"},
		{(*time.Time)(nil), ""},
		{time.Time{}, ""},
	}
	for _, tc := range cases {
		got, err := EncodeCell(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestRecordGetters(t *testing.T) {
	rec := fromRow(
		[]string{"id", "nickname", "xp", "lat", "flag", "when", "list"},
		[]string{"u-1", "1004", "250", "37.2636", "TRUE", "2025-03-01T09:30:00Z", `["a"]`},
	)

	// numeric looking strings come back formatted the same way
	assert.Equal(t, "1004", rec.String("nickname"))
	assert.Equal(t, 250, rec.Int("xp"))
	assert.InDelta(t, 37.2636, rec.Float("lat"), 1e-9)
	assert.True(t, rec.Bool("flag"))
	assert.Equal(t, 2025, rec.Time("when").Year())
	assert.Equal(t, []string{"a"}, rec.Strings("list"))

	assert.Equal(t, "", rec.String("missing"))
	assert.Equal(t, 0, rec.Int("missing"))
	assert.Nil(t, rec.TimePtr("missing"))
	assert.Nil(t, rec.Strings("missing"))
}

func TestFromRowShortRow(t *testing.T) {
	rec := fromRow([]string{"a", "b", "c"}, []string{"1"})
	assert.Len(t, rec, 1)
	assert.Equal(t, 1, rec.Int("a"))
}

func TestRecordString_NumericTextRoundTrips(t *testing.T) {
	header := []string{"description", "code", "amount"}
	rec := fromRow(header, []string{"1.50", "12345678901234567890", "3"})

	assert.Equal(t, "1.50", rec.String("description"))
	assert.Equal(t, "12345678901234567890", rec.String("code"))
	assert.Equal(t, 3, rec.Int("amount"))
	assert.InDelta(t, 1.5, rec.Float("description"), 1e-9)

	row, err := toRow(header, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.50", "12345678901234567890", "3"}, row)
}
