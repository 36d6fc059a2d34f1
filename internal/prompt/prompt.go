package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/kalambet/aura/internal/profile"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// Name identifies one of the embedded instruction templates.
type Name string

const (
	SymptomAssessment Name = "symptom_assessment"
	PeriodLog         Name = "period_log"
	LifestyleTips     Name = "lifestyle_tips"
	Understanding     Name = "understanding"
	ExpertConnect     Name = "expert_connect"

	ChatSymptoms         Name = "chat_symptoms"
	ChatDiet             Name = "chat_diet"
	ChatExercise         Name = "chat_exercise"
	ChatIrregularPeriods Name = "chat_irregular_periods"
	ChatWeight           Name = "chat_weight"
	ChatSkinHair         Name = "chat_skin_hair"
	ChatGeneral          Name = "chat_general"
)

// Placeholders used when a lifestyle answer is missing.
const (
	NoDietHabits        = "You did not specify your diet habits."
	NoExerciseFrequency = "You did not specify your exercise frequency."
)

// Data is the union of values any template may reference.
type Data struct {
	Name         string
	Message      string
	MessageLower string
	Symptoms     string
	Period       profile.PeriodLog
	Diet         string
	Exercise     string
}

// Render executes the named template with data.
func Render(name Name, data Data) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, string(name), data); err != nil {
		return "", fmt.Errorf("rendering prompt %q: %w", name, err)
	}
	return sb.String(), nil
}

// LifestyleAnswers returns the diet and exercise answers to show in the
// prompt, substituting the placeholder sentences for blank fields.
func LifestyleAnswers(l profile.Lifestyle) (diet, exercise string) {
	diet = strings.TrimSpace(l.DietHabits)
	if diet == "" {
		diet = NoDietHabits
	}
	exercise = strings.TrimSpace(l.ExerciseFrequency)
	if exercise == "" {
		exercise = NoExerciseFrequency
	}
	return diet, exercise
}
