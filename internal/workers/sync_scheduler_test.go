package workers

import (
	"testing"
	"time"
)

func TestCalculateNextSyncTime(t *testing.T) {
	from := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cronExpr string
		expected *time.Time
	}{
		{
			name:     "hourly on the hour",
			cronExpr: "0 * * * *",
			expected: timePtr(time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC)),
		},
		{
			name:     "every fifteen minutes",
			cronExpr: "*/15 * * * *",
			expected: timePtr(time.Date(2026, 8, 20, 10, 45, 0, 0, time.UTC)),
		},
		{
			name:     "daily at midnight",
			cronExpr: "0 0 * * *",
			expected: timePtr(time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "empty schedule",
			cronExpr: "",
			expected: nil,
		},
		{
			name:     "invalid expression",
			cronExpr: "not a cron",
			expected: nil,
		},
		{
			name:     "six fields rejected",
			cronExpr: "0 0 * * * *",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateNextSyncTime(tt.cronExpr, from)

			if tt.expected == nil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}

			if got == nil {
				t.Fatal("expected a next sync time, got nil")
			}
			if !got.Equal(*tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
