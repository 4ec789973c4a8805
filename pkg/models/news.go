package models

// Interval is the recency window of a news query. Values match the
// upstream API's query parameter verbatim.
type Interval string

const (
	IntervalOneDay    Interval = "one_day"
	IntervalThreeDays Interval = "three_days"
	IntervalSevenDays Interval = "seven_days"
)

// Valid reports whether i is one of the known intervals.
func (i Interval) Valid() bool {
	switch i {
	case IntervalOneDay, IntervalThreeDays, IntervalSevenDays:
		return true
	}
	return false
}

// Label returns the human-readable button label for the interval.
func (i Interval) Label() string {
	switch i {
	case IntervalOneDay:
		return "1 Day"
	case IntervalThreeDays:
		return "3 Days"
	case IntervalSevenDays:
		return "7 Days"
	}
	return string(i)
}

// allUniversities is the upstream sentinel for an unfiltered query.
const allUniversities = "all"

// Scope is the university filter of a news query: either all
// universities or one named university.
type Scope struct {
	Name string
}

// AllUniversities returns the unfiltered scope.
func AllUniversities() Scope {
	return Scope{Name: allUniversities}
}

// NamedUniversity returns a scope restricted to one university.
func NamedUniversity(name string) Scope {
	return Scope{Name: name}
}

// IsAll reports whether the scope covers every university.
func (s Scope) IsAll() bool {
	return s.Name == allUniversities
}

// IsZero reports whether no scope has been chosen yet.
func (s Scope) IsZero() bool {
	return s.Name == ""
}

// QueryValue returns the value for the upstream "name" parameter.
func (s Scope) QueryValue() string {
	return s.Name
}

// NewsRecord is one news item as returned by the upstream news API.
type NewsRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PubDate     string `json:"pub_date"`
}
