package workflow

import (
	"fmt"
	"math"
	"time"
)

const (
	// JustificationGraceDays is how long after delivery a voucher may remain
	// unjustified before its tracking goes overdue.
	JustificationGraceDays = 2

	// DeadlineWarningDays is the window, in days before the deadline, in which
	// a tracking is flagged as approaching its deadline.
	DeadlineWarningDays = 3
)

// JustificationDate derives the justification deadline from a delivery date.
// Recomputed whenever the delivery date changes; never stored independently.
func JustificationDate(deliveryDate time.Time) time.Time {
	return deliveryDate.AddDate(0, 0, JustificationGraceDays)
}

// DaysUntilDeadline returns the whole days remaining until deadline, rounding
// partial days up with ceil. Negative once the deadline has passed.
func DaysUntilDeadline(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

// IsOverdue reports whether the deadline has passed.
func IsOverdue(deadline, now time.Time) bool {
	return DaysUntilDeadline(deadline, now) < 0
}

// ExpiryCutoff truncates now to the start of its day. Deadlines are stored at
// day granularity, so a deadline is overdue only once it is strictly before
// today; on the deadline day itself the tracking still reads "Vence hoy".
func ExpiryCutoff(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// IsApproaching reports whether the deadline falls inside the warning window.
func IsApproaching(deadline, now time.Time) bool {
	d := DaysUntilDeadline(deadline, now)
	return d >= 0 && d <= DeadlineWarningDays
}

// DeadlineLabel renders the user-facing deadline status for a tracking row.
func DeadlineLabel(deadline, now time.Time) string {
	d := DaysUntilDeadline(deadline, now)
	switch {
	case d < 0:
		if d == -1 {
			return "Vencido hace 1 día"
		}
		return fmt.Sprintf("Vencido hace %d días", -d)
	case d == 0:
		return "Vence hoy"
	case d == 1:
		return "Vence en 1 día"
	default:
		return fmt.Sprintf("Vence en %d días", d)
	}
}
