package medication

// Frequency values accepted by the tracker.
const (
	FrequencyDaily    = "Daily"
	FrequencyWeekly   = "Weekly"
	FrequencyAsNeeded = "As Needed"
)

// Refill counter defaults applied when a draft omits them.
const (
	DefaultPillsRemaining  = 30
	DefaultPillsPerDose    = 1
	DefaultRefillThreshold = 5
)

// WeekdayTags lists the weekday labels in schedule order, Monday first.
var WeekdayTags = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Medication is one tracked medication with its adherence log and inventory.
type Medication struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Dosage          string          `json:"dosage"`
	Time            string          `json:"time"` // HH:MM, 24h
	Frequency       string          `json:"frequency"`
	Days            []string        `json:"days"`
	TakenLog        map[string]bool `json:"takenLog"` // YYYY-MM-DD -> taken
	PillsRemaining  int             `json:"pillsRemaining"`
	PillsPerDose    int             `json:"pillsPerDose"`
	RefillThreshold int             `json:"refillThreshold"`
}

// IsLow reports whether the inventory is at or below the refill threshold.
func (m Medication) IsLow() bool {
	return m.PillsRemaining <= m.RefillThreshold
}

// TakenOn reports the logged taken flag for a date key, absent meaning false.
func (m Medication) TakenOn(dateKey string) bool {
	return m.TakenLog[dateKey]
}

// Draft captures the add/edit form payload before normalization. Counter
// fields are pointers so an omitted value falls back to its default.
type Draft struct {
	Name            string   `json:"name"`
	Dosage          string   `json:"dosage"`
	Time            string   `json:"time"`
	Frequency       string   `json:"frequency"`
	Days            []string `json:"days"`
	PillsRemaining  *int     `json:"pillsRemaining"`
	PillsPerDose    *int     `json:"pillsPerDose"`
	RefillThreshold *int     `json:"refillThreshold"`
}

// DefaultMedications returns the seed list written the first time a user with
// an empty collection signs in.
func DefaultMedications() []Medication {
	seeds := []struct {
		id, name, dosage, time string
	}{
		{"1", "Lisinopril", "10mg", "08:00"},
		{"2", "Metformin", "500mg", "12:00"},
		{"3", "Atorvastatin", "20mg", "20:00"},
	}

	meds := make([]Medication, 0, len(seeds))
	for _, s := range seeds {
		meds = append(meds, Medication{
			ID:              s.id,
			Name:            s.name,
			Dosage:          s.dosage,
			Time:            s.time,
			Frequency:       FrequencyDaily,
			Days:            append([]string(nil), WeekdayTags...),
			TakenLog:        map[string]bool{},
			PillsRemaining:  DefaultPillsRemaining,
			PillsPerDose:    DefaultPillsPerDose,
			RefillThreshold: DefaultRefillThreshold,
		})
	}
	return meds
}
