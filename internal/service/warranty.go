package service

import (
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
)

// Policy holds warranty durations per sales channel. Channels absent
// from ChannelDays use DefaultDays.
type Policy struct {
	DefaultDays int
	ChannelDays map[entity.Channel]int
}

func (p Policy) Days(ch entity.Channel) int {
	if d, ok := p.ChannelDays[ch]; ok && d > 0 {
		return d
	}
	return p.DefaultDays
}

// ComputeWarrantyUntil derives the expiry date from a base timestamp.
// The base is truncated to a UTC calendar date first, so two
// registrations on the same day get the same expiry regardless of
// time of day. The returned date is exclusive: claims filed on it are
// still in warranty, claims filed after it are not.
func ComputeWarrantyUntil(base time.Time, days int) time.Time {
	utc := base.UTC()
	date := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return date.AddDate(0, 0, days)
}

// inWarranty reports whether a claim at the given instant falls within
// the warranty window ending at until.
func inWarranty(at time.Time, until time.Time) bool {
	day := at.UTC()
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !date.After(until)
}
