package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbillhq/notifykit/pkg/notify"
)

// instant builds a UTC time at the given wall clock on a fixed date.
func instant(t *testing.T, hour, minute int, zone string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	require.NoError(t, err)
	return time.Date(2026, 3, 10, hour, minute, 0, 0, loc)
}

func TestQuietHoursSuppressed(t *testing.T) {
	t.Parallel()

	window := func(start, end string) notify.QuietHours {
		return notify.QuietHours{
			Enabled:  true,
			Start:    start,
			End:      end,
			Timezone: "UTC",
			Bypass:   notify.NewSeveritySet(notify.SeverityCritical),
		}
	}

	tests := []struct {
		name       string
		qh         notify.QuietHours
		severity   notify.Severity
		now        time.Time
		suppressed bool
	}{
		{
			name:       "disabled window never suppresses",
			qh:         notify.QuietHours{Enabled: false, Start: "22:00", End: "08:00", Timezone: "UTC"},
			severity:   notify.SeverityLow,
			now:        instant(t, 23, 0, "UTC"),
			suppressed: false,
		},
		{
			name:       "inside same-day window",
			qh:         window("09:00", "17:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 12, 30, "UTC"),
			suppressed: true,
		},
		{
			name:       "outside same-day window",
			qh:         window("09:00", "17:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 18, 0, "UTC"),
			suppressed: false,
		},
		{
			name:       "wraparound window before midnight",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 23, 30, "UTC"),
			suppressed: true,
		},
		{
			name:       "wraparound window after midnight",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 7, 59, "UTC"),
			suppressed: true,
		},
		{
			name:       "wraparound window daytime gap",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 9, 0, "UTC"),
			suppressed: false,
		},
		{
			name:       "start boundary is inside",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 22, 0, "UTC"),
			suppressed: true,
		},
		{
			name:       "end boundary is outside",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 8, 0, "UTC"),
			suppressed: false,
		},
		{
			name:       "equal start and end suppresses all day",
			qh:         window("10:00", "10:00"),
			severity:   notify.SeverityLow,
			now:        instant(t, 3, 15, "UTC"),
			suppressed: true,
		},
		{
			name:       "bypass severity ignores window",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityCritical,
			now:        instant(t, 23, 30, "UTC"),
			suppressed: false,
		},
		{
			name:       "non-bypass high severity still suppressed",
			qh:         window("22:00", "08:00"),
			severity:   notify.SeverityHigh,
			now:        instant(t, 23, 30, "UTC"),
			suppressed: true,
		},
		{
			name: "window evaluated in the user's zone",
			qh: notify.QuietHours{
				Enabled:  true,
				Start:    "22:00",
				End:      "08:00",
				Timezone: "America/Chicago",
			},
			severity: notify.SeverityLow,
			// 04:00 UTC is 22:00 or 23:00 in Chicago depending on DST;
			// either way it falls inside the window.
			now:        instant(t, 4, 30, "UTC"),
			suppressed: true,
		},
		{
			name: "invalid timezone fails toward delivery",
			qh: notify.QuietHours{
				Enabled:  true,
				Start:    "22:00",
				End:      "08:00",
				Timezone: "Not/AZone",
			},
			severity:   notify.SeverityLow,
			now:        instant(t, 23, 0, "UTC"),
			suppressed: false,
		},
		{
			name: "invalid start time fails toward delivery",
			qh: notify.QuietHours{
				Enabled:  true,
				Start:    "25:00",
				End:      "08:00",
				Timezone: "UTC",
			},
			severity:   notify.SeverityLow,
			now:        instant(t, 23, 0, "UTC"),
			suppressed: false,
		},
		{
			name: "malformed end time fails toward delivery",
			qh: notify.QuietHours{
				Enabled:  true,
				Start:    "22:00",
				End:      "0800",
				Timezone: "UTC",
			},
			severity:   notify.SeverityLow,
			now:        instant(t, 23, 0, "UTC"),
			suppressed: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := notify.QuietHoursSuppressed(tt.qh, tt.severity, tt.now)
			assert.Equal(t, tt.suppressed, got)
		})
	}
}
