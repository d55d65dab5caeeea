package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDatetime_ISOWithSpacedOffset(t *testing.T) {
	got, ok := NormalizeDatetime("2019-01-30 09:39:19 -0500", "", true, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T09:39:19-05:00", got)
}

func TestNormalizeDatetime_ISOWithoutTimezone(t *testing.T) {
	got, ok := NormalizeDatetime("2019-01-30T09:39:19-05:00", "", false, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T09:39:19", got)
}

func TestNormalizeDatetime_FormatHint(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		format string
		want   string
	}{
		{"slash date", "30/01/2019", "DD/MM/YYYY", "2019-01-30T00:00:00"},
		{"long form", "January 30, 2019 9:39 AM", "MMMM D, YYYY h:mm A", "2019-01-30T09:39:00"},
		{"lowercase meridiem upcased", "January 30, 2019 9:39 am", "MMMM D, YYYY h:mm A", "2019-01-30T09:39:00"},
		{"sept normalized", "Sept 3, 2020", "MMM D, YYYY", "2020-09-03T00:00:00"},
		{"numeric", "2019-01-30 09:39", "YYYY-MM-DD HH:mm", "2019-01-30T09:39:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDatetime(tt.value, tt.format, false, false)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDatetime_Epoch(t *testing.T) {
	got, ok := NormalizeDatetime("1548859159", "unix", false, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T14:39:19", got)

	got, ok = NormalizeDatetime("1548859159000", "unix_milliseconds", false, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T14:39:19", got)
}

func TestNormalizeDatetime_TwoDigitYearHint(t *testing.T) {
	// A YY hint must still accept the 4-digit year the site actually prints.
	got, ok := NormalizeDatetime("30/01/2019", "DD/MM/YY", false, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T00:00:00", got)

	got, ok = NormalizeDatetime("2019/01/30", "YY/MM/DD", false, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T00:00:00", got)
}

func TestNormalizeDatetime_SimplifiedFormats(t *testing.T) {
	got, ok := NormalizeDatetime("30. 01. 2019", "DD.MM.YYYY", false, true)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T00:00:00", got)
}

func TestNormalizeDatetime_PermissiveFallback(t *testing.T) {
	// No hint and not ISO: the free-form parser has to find it.
	got, ok := NormalizeDatetime("January 30, 2019", "", false, false)
	assert.True(t, ok)
	assert.Equal(t, "2019-01-30T00:00:00", got)
}

func TestNormalizeDatetime_Unparseable(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		format string
	}{
		{"garbage with hint", "garbage", "DD/MM/YYYY"},
		{"garbage without hint", "certainly not a date at all zzz", ""},
		{"empty", "", ""},
		{"non-numeric epoch", "soon", "unix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDatetime(tt.value, tt.format, false, false)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestConvertLayout(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"YYYY-MM-DD", "2006-01-02"},
		{"DD/MM/YY", "02/01/06"},
		{"MMMM D, YYYY h:mm A", "January 2, 2006 3:04 PM"},
		{"ddd MMM DD HH:mm:ss ZZ YYYY", "Mon Jan 02 15:04:05 -0700 2006"},
		{"YYYY-MM-DDTHH:mm:ssZ", "2006-01-02T15:04:05-07:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertLayout(tt.format), "format %q", tt.format)
	}
}
