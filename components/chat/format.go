package chat

import (
	"fmt"
	"time"
)

// FormatTime renders ts relative to now the way conversation lists show it:
// "Now" under a minute, minutes under an hour, the clock time under a day,
// and the date otherwise. lang "ar" yields Arabic labels. Clock times and
// dates are read in ts's location; convert with In before calling.
func FormatTime(ts, now time.Time, lang string) string {
	diff := now.Sub(ts)
	arabic := lang == "ar"
	switch {
	case diff < time.Minute:
		if arabic {
			return "الآن"
		}
		return "Now"
	case diff < time.Hour:
		minutes := int(diff / time.Minute)
		if arabic {
			return fmt.Sprintf("%dد", minutes)
		}
		return fmt.Sprintf("%dm", minutes)
	case diff < 24*time.Hour:
		return ts.Format("15:04")
	default:
		if arabic {
			return ts.Format("02/01/2006")
		}
		return ts.Format("1/2/2006")
	}
}
