package notifyroutines

import (
	"fmt"
	"time"

	"github.com/habitflow-app/habitflow-backend/internal/utils"
)

//Bucket Minute-granularity matching key for upcoming routines: a calendar date plus
//a 12-hour formatted time of day. Routines are matched by exact string equality on
//both fields; the one minute poll cadence is what bounds each routine to a single
//match per day.
type Bucket struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// bucketAt computes the bucket for the given UTC instant: shift to the civil time
// of the operating region, then forward by the warning lead.
func bucketAt(now time.Time, utcOffsetMinutes int, leadMinutes int) Bucket {
	target := utils.CivilTime(now, utcOffsetMinutes).Add(time.Duration(leadMinutes) * time.Minute)

	return Bucket{
		Date: utils.FormatDate(target),
		Time: formatAMPM(target),
	}
}

// formatAMPM renders the time of day the way the app stores routine start times:
// 12-hour clock without leading zero on the hour, zero-padded minutes, AM/PM suffix.
// Must stay in sync with the client, a format drift silently kills all matches.
func formatAMPM(t time.Time) string {
	hours := t.Hour()

	meridiem := "AM"
	if hours >= 12 {
		meridiem = "PM"
	}

	hours = hours % 12
	if hours == 0 {
		hours = 12
	}

	return fmt.Sprintf("%d:%02d %s", hours, t.Minute(), meridiem)
}
