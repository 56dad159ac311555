package utils

import (
	"time"

	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"gopkg.in/go-playground/validator.v9"
)

//Validate -_-
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// GetTimeNow Gets current time in UTC.
func GetTimeNow() time.Time {
	return time.Now().UTC()
}

// CivilTime shifts given UTC instant to the civil time of the operating region.
// The offset is a fixed configured constant so results do not depend on the
// timezone database of the host.
func CivilTime(t time.Time, offsetMinutes int) time.Time {
	return t.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
}

// FormatDate formats the calendar date the way routine logs key it.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}
