package cache

import (
	"testing"
	"time"
)

func TestTimeUntilNext(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load America/New_York timezone: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "before the hour on the same day",
			now:  time.Date(2019, 7, 8, 6, 30, 0, 0, ny),
			want: 90 * time.Minute,
		},
		{
			name: "after the hour rolls to next day",
			now:  time.Date(2019, 7, 8, 16, 0, 0, 0, ny),
			want: 16 * time.Hour,
		},
		{
			name: "exactly on the hour waits a full day",
			now:  time.Date(2019, 7, 8, 8, 0, 0, 0, ny),
			want: 24 * time.Hour,
		},
		{
			name: "input in another zone is converted",
			now:  time.Date(2019, 7, 8, 11, 0, 0, 0, time.UTC), // 07:00 in New York
			want: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := TimeUntilNext(8, ny, tt.now)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTimeUntilNext_AlwaysPositiveAndBounded(t *testing.T) {
	t.Parallel()

	now := time.Now()
	for hour := 0; hour < 24; hour++ {
		d := TimeUntilNext(hour, nil, now)
		if d <= 0 || d > 24*time.Hour {
			t.Errorf("hour %d: expected duration in (0, 24h], got %v", hour, d)
		}
	}
}
