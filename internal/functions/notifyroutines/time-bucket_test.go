package notifyroutines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAMPM(t *testing.T) {
	tables := []struct {
		hour   int
		minute int
		want   string
	}{
		{0, 0, "12:00 AM"},
		{0, 5, "12:05 AM"},
		{1, 30, "1:30 AM"},
		{11, 59, "11:59 AM"},
		{12, 0, "12:00 PM"},
		{13, 7, "1:07 PM"},
		{23, 59, "11:59 PM"},
	}

	for _, table := range tables {
		instant := time.Date(2024, 6, 1, table.hour, table.minute, 0, 0, time.UTC)
		assert.Equal(t, table.want, formatAMPM(instant))
	}
}

func TestBucketAt(t *testing.T) {
	// 14:50 UTC with the Seoul offset is 23:50 civil, plus 10 minutes lead
	// rolls over to midnight of the next day
	now := time.Date(2024, 5, 31, 14, 50, 0, 0, time.UTC)

	bucket := bucketAt(now, 540, 10)

	assert.Equal(t, Bucket{Date: "2024-06-01", Time: "12:00 AM"}, bucket)
}

func TestBucketAtNoOffset(t *testing.T) {
	now := time.Date(2024, 6, 1, 6, 50, 0, 0, time.UTC)

	bucket := bucketAt(now, 0, 10)

	assert.Equal(t, Bucket{Date: "2024-06-01", Time: "7:00 AM"}, bucket)
}

func TestBucketAtIgnoresHostTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	instant := time.Date(2024, 6, 1, 9, 0, 0, 0, loc)

	// 02:00 UTC + 540 minutes = 11:00 civil
	bucket := bucketAt(instant, 540, 0)

	assert.Equal(t, Bucket{Date: "2024-06-01", Time: "11:00 AM"}, bucket)
}
