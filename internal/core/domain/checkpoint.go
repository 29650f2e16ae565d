package domain

import "time"

// CheckpointQueryLayout is the minute resolution honoured by remote query
// languages. Seconds are dropped when a checkpoint is rendered into a query.
const CheckpointQueryLayout = "2006-01-02 15:04"

// FullHarvestTime is the sentinel instant meaning "harvest everything".
var FullHarvestTime = time.Unix(0, 0).UTC()

// Checkpoint is the UTC instant a harvest filters versions against.
// It is immutable once resolved.
type Checkpoint struct {
	at time.Time
}

// ResolveCheckpoint normalises a caller supplied instant to UTC.
// A nil input maps to the full harvest sentinel.
func ResolveCheckpoint(from *time.Time) Checkpoint {
	if from == nil || from.IsZero() {
		return Checkpoint{at: FullHarvestTime}
	}
	return Checkpoint{at: from.UTC()}
}

// FullHarvest returns the full harvest sentinel checkpoint.
func FullHarvest() Checkpoint {
	return Checkpoint{at: FullHarvestTime}
}

// Time returns the checkpoint instant at full resolution.
func (c Checkpoint) Time() time.Time {
	if c.at.IsZero() {
		return FullHarvestTime
	}
	return c.at
}

// IsFullHarvest reports whether c is the full harvest sentinel.
func (c Checkpoint) IsFullHarvest() bool {
	return c.Time().Equal(FullHarvestTime)
}

// Epoch returns the checkpoint as float seconds since the UNIX epoch.
func (c Checkpoint) Epoch() float64 {
	return EpochSeconds(c.Time())
}

// QueryValue renders the checkpoint truncated to minutes for remote queries.
func (c Checkpoint) QueryValue() string {
	return c.Time().Truncate(time.Minute).Format(CheckpointQueryLayout)
}

// Admits reports whether something updated at t passes the checkpoint filter.
func (c Checkpoint) Admits(t time.Time) bool {
	if c.IsFullHarvest() {
		return true
	}
	return !t.Before(c.Time())
}

// String implements fmt.Stringer.
func (c Checkpoint) String() string {
	return c.Time().Format(time.RFC3339)
}

// EpochSeconds converts t to float seconds since the UNIX epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromEpochSeconds is the inverse of EpochSeconds, in UTC.
func FromEpochSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second))).UTC()
}
