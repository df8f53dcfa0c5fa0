package servicedate

import "time"

// ServiceDate is a calendar date in a fixed timezone, with no time-of-day
// component. Two ServiceDates in different locations are never compared;
// callers are expected to use one timezone (the agency's) consistently.
type ServiceDate struct {
	year, month, day int
	loc              *time.Location
}

// FromTime truncates t (in its own location, converted to loc) to a
// calendar date in loc.
func FromTime(t time.Time, loc *time.Location) ServiceDate {
	lt := t.In(loc)
	y, m, d := lt.Date()
	return ServiceDate{year: y, month: int(m), day: d, loc: loc}
}

// FromUnix truncates an epoch-seconds timestamp to a calendar date in loc.
func FromUnix(epochSeconds int64, loc *time.Location) ServiceDate {
	return FromTime(time.Unix(epochSeconds, 0), loc)
}

// Previous returns the calendar day immediately before sd.
func (sd ServiceDate) Previous() ServiceDate {
	t := sd.midnight().AddDate(0, 0, -1)
	y, m, d := t.Date()
	return ServiceDate{year: y, month: int(m), day: d, loc: sd.loc}
}

// midnight returns the wall-clock instant of sd's nominal midnight, in
// sd's own location.
func (sd ServiceDate) midnight() time.Time {
	return time.Date(sd.year, time.Month(sd.month), sd.day, 0, 0, 0, 0, sd.loc)
}

// MidnightUnix returns the epoch-seconds offset of sd's nominal midnight,
// used to convert a wall-clock timestamp into seconds-since-service-day-
// midnight.
func (sd ServiceDate) MidnightUnix() int64 {
	return sd.midnight().Unix()
}

// SecondsSinceMidnight converts an epoch-seconds timestamp into seconds
// elapsed since sd's nominal midnight. The result is unbounded upward (may
// exceed 86400) and may be negative if the timestamp precedes sd's
// midnight; callers working with the 26-hour service day should expect and
// tolerate values above 86400.
func (sd ServiceDate) SecondsSinceMidnight(epochSeconds int64) int {
	return int(epochSeconds - sd.MidnightUnix())
}

// YYYYMMDD renders sd in the GTFS calendar date format, e.g. "20260802".
func (sd ServiceDate) YYYYMMDD() string {
	return sd.midnight().Format("20060102")
}

// Equal reports whether two ServiceDates name the same calendar day. Their
// locations are not compared.
func (sd ServiceDate) Equal(other ServiceDate) bool {
	return sd.year == other.year && sd.month == other.month && sd.day == other.day
}

func (sd ServiceDate) String() string {
	return sd.YYYYMMDD()
}
