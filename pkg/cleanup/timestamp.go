package cleanup

import (
	"fmt"
	"time"
)

const collectedAtLayout = "2006-01-02T15:04:05-07:00"

// FixedOffsetTimestamp renders t in a fixed UTC offset, independent of the
// device zone, as YYYY-MM-DDTHH:MM:SS±HH:MM. Sub-second precision is dropped.
func FixedOffsetTimestamp(t time.Time, offsetMinutes int) string {
	zone := time.FixedZone(offsetName(offsetMinutes), offsetMinutes*60)
	return t.In(zone).Format(collectedAtLayout)
}

func offsetName(offsetMinutes int) string {
	sign := '+'
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}
