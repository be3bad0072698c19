package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripReference(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{"plain id", "TO16750", "TO16750"},
		{"trailing annotation", "TO16750  re-entry-2", "TO16750"},
		{"single trailing word", "SO20916 redelivery", "SO20916"},
		{"leading whitespace", "  SO20916", "SO20916"},
		{"tab separated", "SO20916\tnote", "SO20916"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripReference(tt.ref))
		})
	}
}

func TestSyncTargetField(t *testing.T) {
	assert.Equal(t, FieldDeliveryDate, TargetDeliveryDate.Field())
	assert.Equal(t, FieldStatus, TargetStatus.Field())
}

func TestKindIsValid(t *testing.T) {
	assert.True(t, KindSalesOrder.IsValid())
	assert.True(t, KindTransferOrder.IsValid())
	assert.False(t, Kind("invoice").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	w := DefaultWindow(now)

	assert.Equal(t, now, w.Before)
	assert.Equal(t, now.AddDate(0, 0, -28), w.After)
}
