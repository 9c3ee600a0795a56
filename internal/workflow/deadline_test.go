package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestJustificationDate(t *testing.T) {
	require.Equal(t, date(2024, time.January, 12), JustificationDate(date(2024, time.January, 10)))

	// Month boundary
	require.Equal(t, date(2024, time.February, 1), JustificationDate(date(2024, time.January, 30)))
}

func TestDaysUntilDeadline(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		now      time.Time
		want     int
	}{
		{"two days overdue", date(2024, time.January, 10), date(2024, time.January, 12), -2},
		{"due today", date(2024, time.January, 10), date(2024, time.January, 10), 0},
		{"three days left", date(2024, time.January, 13), date(2024, time.January, 10), 3},
		{"partial day rounds up", date(2024, time.January, 11), time.Date(2024, time.January, 10, 18, 0, 0, 0, time.UTC), 1},
		{"partial overdue rounds toward zero days", time.Date(2024, time.January, 10, 6, 0, 0, 0, time.UTC), date(2024, time.January, 11), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DaysUntilDeadline(tt.deadline, tt.now))
		})
	}
}

func TestIsOverdueMatchesNegativeDays(t *testing.T) {
	deadline := date(2024, time.January, 10)
	for _, now := range []time.Time{
		date(2024, time.January, 8),
		date(2024, time.January, 10),
		date(2024, time.January, 12),
		date(2024, time.February, 1),
	} {
		require.Equal(t, DaysUntilDeadline(deadline, now) < 0, IsOverdue(deadline, now), "now=%s", now)
	}
}

func TestExpiryCutoff(t *testing.T) {
	now := time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
	require.Equal(t, date(2024, time.January, 10), ExpiryCutoff(now))
}

func TestExpiryCutoffMatchesOverdue(t *testing.T) {
	// Deadline dates live in date columns at midnight; a raw "deadline < now"
	// comparison would already fire during the deadline day itself, while the
	// row still reads "Vence hoy". The truncated cutoff keeps both in sync.
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	today := date(2024, time.January, 10)
	require.True(t, today.Before(now), "raw comparison selects the deadline day")
	require.False(t, today.Before(ExpiryCutoff(now)))
	require.False(t, IsOverdue(today, now))
	require.Equal(t, "Vence hoy", DeadlineLabel(today, now))

	for _, deadline := range []time.Time{
		date(2024, time.January, 8),
		date(2024, time.January, 9),
		date(2024, time.January, 10),
		date(2024, time.January, 11),
	} {
		require.Equal(t, IsOverdue(deadline, now), deadline.Before(ExpiryCutoff(now)), "deadline=%s", deadline)
	}
}

func TestIsApproaching(t *testing.T) {
	deadline := date(2024, time.January, 10)

	require.True(t, IsApproaching(deadline, date(2024, time.January, 10)))
	require.True(t, IsApproaching(deadline, date(2024, time.January, 7)))
	require.False(t, IsApproaching(deadline, date(2024, time.January, 6)))
	require.False(t, IsApproaching(deadline, date(2024, time.January, 11)), "overdue is not approaching")
}

func TestDeadlineLabel(t *testing.T) {
	deadline := date(2024, time.January, 10)

	require.Equal(t, "Vencido hace 2 días", DeadlineLabel(deadline, date(2024, time.January, 12)))
	require.Equal(t, "Vencido hace 1 día", DeadlineLabel(deadline, date(2024, time.January, 11)))
	require.Equal(t, "Vence hoy", DeadlineLabel(deadline, date(2024, time.January, 10)))
	require.Equal(t, "Vence en 1 día", DeadlineLabel(deadline, date(2024, time.January, 9)))
	require.Equal(t, "Vence en 5 días", DeadlineLabel(deadline, date(2024, time.January, 5)))
}
