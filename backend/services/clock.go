package services

import (
	"time"

	"github.com/kassslll/philosofium/backend/models"
)

// Clock supplies the current time and the location that defines calendar days.
type Clock struct {
	NowFunc  func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{NowFunc: time.Now, Location: loc}
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Clock) Now() time.Time {
	if c.NowFunc == nil {
		return time.Now().In(c.loc())
	}
	return c.NowFunc().In(c.loc())
}

// Today is midnight of the current calendar day.
func (c Clock) Today() time.Time {
	return StartOfDay(c.Now())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format(models.DateLayout)
}
