package models

import "time"

// MetricSet holds the daily wellbeing metrics for one scope date. All value
// fields are optional; the set is upserted as a whole, so the client always
// sends the full merged object.
type MetricSet struct {
	Date                 Date       `json:"date"`
	AsleepBy             *time.Time `json:"asleep_by,omitempty"`
	AwokeAt              *time.Time `json:"awoke_at,omitempty"`
	OutOfBedAt           *time.Time `json:"out_of_bed_at,omitempty"`
	SleepQuality         *int       `json:"sleep_quality,omitempty"`
	PhysicalActivity     *int       `json:"physical_activity,omitempty"`
	OverallMood          *int       `json:"overall_mood,omitempty"`
	PaidProductivity     *float64   `json:"paid_productivity,omitempty"`
	PersonalProductivity *float64   `json:"personal_productivity,omitempty"`
	CreatedAt            time.Time  `json:"created_at,omitzero"`
	UpdatedAt            time.Time  `json:"updated_at,omitzero"`
}

// RatingMin and RatingMax bound the 1..7 rating fields
// (sleep quality, physical activity, overall mood).
const (
	RatingMin = 1
	RatingMax = 7
)

// Complete reports whether every core metric field has been filled in. The
// completion chainer only prompts for dates whose sets are incomplete.
func (m *MetricSet) Complete() bool {
	if m == nil {
		return false
	}
	return m.AsleepBy != nil &&
		m.AwokeAt != nil &&
		m.SleepQuality != nil &&
		m.PhysicalActivity != nil &&
		m.OverallMood != nil &&
		m.PaidProductivity != nil &&
		m.PersonalProductivity != nil
}

// ValidateRatings checks the 1..7 bounds on the rating fields. A nil field
// passes; the bounds mirror the server-side validators.
func (m *MetricSet) ValidateRatings() bool {
	for _, v := range []*int{m.SleepQuality, m.PhysicalActivity, m.OverallMood} {
		if v != nil && (*v < RatingMin || *v > RatingMax) {
			return false
		}
	}
	return true
}
