package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:00", 360, false},
		{"12:30", 750, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"12:30xyz", 0, true}, // trailing input is not silently dropped
		{"12:30:00", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinute(0))
	assert.Equal(t, "06:00", FormatMinute(360))
	assert.Equal(t, "23:59", FormatMinute(1439))
	// values outside the day wrap
	assert.Equal(t, "00:10", FormatMinute(1450))
	assert.Equal(t, "23:50", FormatMinute(-10))
}

func TestOverlaps(t *testing.T) {
	// breakfast 360-540 against various neighbours
	assert.True(t, Overlaps(360, 540, 500, 700))
	assert.True(t, Overlaps(360, 540, 300, 400))
	assert.True(t, Overlaps(360, 540, 400, 500)) // contained
	assert.False(t, Overlaps(360, 540, 540, 700)) // adjacent is fine
	assert.False(t, Overlaps(360, 540, 100, 360))
	assert.False(t, Overlaps(360, 540, 720, 960))
}

func TestValidateShiftWindow(t *testing.T) {
	ok := &domain.ShiftDraft{Name: "COMIDA", StartMinute: 720, EndMinute: 960}
	assert.NoError(t, ValidateShiftWindow(ok))

	var validationErr *domain.ValidationError

	overnight := &domain.ShiftDraft{Name: "NOCTURNO", StartMinute: 1320, EndMinute: 120}
	err := ValidateShiftWindow(overnight)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "endMinute", validationErr.Field)

	empty := &domain.ShiftDraft{Name: "VACIO", StartMinute: 720, EndMinute: 720}
	assert.Error(t, ValidateShiftWindow(empty))

	// each bound names its own field
	endTooLarge := &domain.ShiftDraft{Name: "LARGO", StartMinute: 0, EndMinute: 1440}
	err = ValidateShiftWindow(endTooLarge)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "endMinute", validationErr.Field)

	startNegative := &domain.ShiftDraft{Name: "TEMPRANO", StartMinute: -5, EndMinute: 120}
	err = ValidateShiftWindow(startNegative)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "startMinute", validationErr.Field)
}
