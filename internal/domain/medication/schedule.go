package medication

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

// DateKey formats t as the YYYY-MM-DD log key in its own location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekdayTag returns the schedule tag (Mon..Sun) for t.
func WeekdayTag(t time.Time) string {
	return t.Format("Mon")
}

// IsDueToday reports whether m should appear on the schedule for today.
// Daily medications are always due regardless of their day selection.
func IsDueToday(m Medication, today time.Time) bool {
	if strings.EqualFold(m.Frequency, FrequencyDaily) {
		return true
	}
	tag := WeekdayTag(today)
	for _, day := range m.Days {
		if day == tag {
			return true
		}
	}
	return false
}

// DueToday filters to due medications sorted ascending by dose time. The
// zero-padded HH:MM representation sorts correctly as text; the sort is
// stable so equal times keep their stored order.
func DueToday(meds []Medication, today time.Time) []Medication {
	due := make([]Medication, 0, len(meds))
	for _, m := range meds {
		if IsDueToday(m, today) {
			due = append(due, m)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Time < due[j].Time
	})
	return due
}

// WeekDateKeys returns the seven date keys for the Monday..Sunday week
// containing ref. A Sunday reference wraps backward to the preceding Monday.
func WeekDateKeys(ref time.Time) []string {
	weekday := int(ref.Weekday()) // Sunday=0
	offset := 1 - weekday
	if weekday == 0 {
		offset = -6
	}
	monday := ref.AddDate(0, 0, offset)

	keys := make([]string, 7)
	for i := range keys {
		keys[i] = DateKey(monday.AddDate(0, 0, i))
	}
	return keys
}

// Toggle flips the taken flag for dateKey and returns the updated medication.
// Marking taken debits one dose from the inventory, floored at zero. Unmarking
// leaves the inventory unchanged; pills are not credited back.
func Toggle(m Medication, dateKey string) Medication {
	log := make(map[string]bool, len(m.TakenLog)+1)
	for k, v := range m.TakenLog {
		log[k] = v
	}
	taken := !log[dateKey]
	log[dateKey] = taken
	m.TakenLog = log

	if taken {
		m.PillsRemaining -= m.PillsPerDose
		if m.PillsRemaining < 0 {
			m.PillsRemaining = 0
		}
	}
	return m
}

// Normalize validates a draft and applies the day-selection and counter
// coercion rules. Daily frequency forces all seven day tags, as does an empty
// selection for any other frequency.
func Normalize(d Draft) (Medication, error) {
	name := strings.TrimSpace(d.Name)
	dosage := strings.TrimSpace(d.Dosage)
	doseTime := strings.TrimSpace(d.Time)
	if name == "" || dosage == "" || doseTime == "" {
		return Medication{}, apperrors.Wrap("invalid_input", "name, dosage and time are required", nil)
	}

	frequency := strings.TrimSpace(d.Frequency)
	if frequency == "" {
		frequency = FrequencyDaily
	}

	days := append([]string(nil), d.Days...)
	if strings.EqualFold(frequency, FrequencyDaily) || len(days) == 0 {
		days = append([]string(nil), WeekdayTags...)
	}

	return Medication{
		Name:            name,
		Dosage:          dosage,
		Time:            doseTime,
		Frequency:       frequency,
		Days:            days,
		PillsRemaining:  atLeast(orDefault(d.PillsRemaining, DefaultPillsRemaining), 0),
		PillsPerDose:    atLeast(orDefault(d.PillsPerDose, DefaultPillsPerDose), 1),
		RefillThreshold: atLeast(orDefault(d.RefillThreshold, DefaultRefillThreshold), 0),
	}, nil
}

func orDefault(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
