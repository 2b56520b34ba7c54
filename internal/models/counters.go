package models

// CounterKey names one field of [Counters].
type CounterKey string

const (
	CounterTotal           CounterKey = "total"
	CounterProcessed       CounterKey = "processed"
	CounterSuccess         CounterKey = "success"
	CounterError           CounterKey = "error"
	CounterExists          CounterKey = "exists"
	CounterSkippedDuration CounterKey = "skipped_duration"
	CounterPending         CounterKey = "pending"
)

// CounterPatch carries only the counters an update wants to overwrite.
type CounterPatch map[CounterKey]int

// Counters tallies item outcomes for a task.
type Counters struct {
	Total           int `json:"total"`
	Processed       int `json:"processed"`
	Success         int `json:"success"`
	Error           int `json:"error"`
	Exists          int `json:"exists"`
	SkippedDuration int `json:"skipped_duration"`
	Pending         int `json:"pending"`
}

// Merge overwrites the keys present in p and leaves the rest untouched.
//
// Negative values are clamped to zero.
func (c *Counters) Merge(p CounterPatch) {
	for k, v := range p {
		if v < 0 {
			v = 0
		}
		switch k {
		case CounterTotal:
			c.Total = v
		case CounterProcessed:
			c.Processed = v
		case CounterSuccess:
			c.Success = v
		case CounterError:
			c.Error = v
		case CounterExists:
			c.Exists = v
		case CounterSkippedDuration:
			c.SkippedDuration = v
		case CounterPending:
			c.Pending = v
		}
	}
}

// Record increments the counter matching o and recomputes Pending.
func (c *Counters) Record(o Outcome) {
	switch o {
	case OutcomeSuccess:
		c.Success++
		c.Processed++
	case OutcomeError:
		c.Error++
	case OutcomeExists:
		c.Exists++
	case OutcomeSkippedDuration:
		c.SkippedDuration++
	}
	c.Pending = c.Remaining()
}

// Remaining derives the number of items without an outcome yet.
func (c Counters) Remaining() int {
	n := c.Total - c.Success - c.Error - c.Exists - c.SkippedDuration
	if n < 0 {
		return 0
	}
	return n
}

// Patch returns every field as a [CounterPatch].
func (c Counters) Patch() CounterPatch {
	return CounterPatch{
		CounterTotal:           c.Total,
		CounterProcessed:       c.Processed,
		CounterSuccess:         c.Success,
		CounterError:           c.Error,
		CounterExists:          c.Exists,
		CounterSkippedDuration: c.SkippedDuration,
		CounterPending:         c.Pending,
	}
}
