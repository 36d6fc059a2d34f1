package profile

import "time"

// Profile is the per-user record of everything submitted through aura.
// It lives only in memory and is never evicted.
type Profile struct {
	Name           string          `json:"name"`
	SymptomHistory []SymptomRecord `json:"symptom_history"`
	PeriodLogs     []PeriodLog     `json:"period_logs"`
	Lifestyle      Lifestyle       `json:"lifestyle_preferences"`

	// LastInteraction and MoodScores are reserved and not written by any
	// operation yet. They are kept so the profile shape stays stable for
	// clients that already read them.
	LastInteraction *time.Time `json:"last_interaction"`
	MoodScores      []int      `json:"mood_scores"`
}

// Period regularity values accepted by the symptom checker.
const (
	RegularityRegular   = "regular"
	RegularityIrregular = "irregular"
	RegularityAbsent    = "absent"
)

// SymptomFlags is the raw symptom checker submission.
type SymptomFlags struct {
	LastPeriodDate   string `json:"last_period_date,omitempty"`
	PeriodRegularity string `json:"irregular_periods,omitempty"`
	ExcessHair       bool   `json:"excess_hair"`
	Acne             bool   `json:"acne"`
	WeightGain       bool   `json:"weight_gain"`
	HairLoss         bool   `json:"hair_loss"`
	Fatigue          bool   `json:"fatigue"`
	MoodSwings       bool   `json:"mood_swings"`
	Other            string `json:"other_symptoms,omitempty"`
}

// SymptomRecord is one entry of the symptom history.
type SymptomRecord struct {
	Date     time.Time    `json:"date"`
	Symptoms SymptomFlags `json:"symptoms"`
}

// PeriodLog is one entry of the period tracker.
type PeriodLog struct {
	Date     string `json:"date"`
	Severity string `json:"severity"`
	Duration int    `json:"duration"`
	Notes    string `json:"notes"`
}

// Lifestyle holds the latest lifestyle questionnaire answers.
type Lifestyle struct {
	DietHabits        string `json:"diet_habits,omitempty"`
	ExerciseFrequency string `json:"exercise_frequency,omitempty"`
}
