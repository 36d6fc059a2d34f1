package prompt

import (
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"

	"github.com/kalambet/aura/internal/profile"
)

// NoSymptoms is used instead of a symptom list when nothing was reported.
const NoSymptoms = "You haven't reported any specific PCOD/PCOS-related symptoms at this time, which is great!"

type symptomPhrase struct {
	present bool
	text    string
}

// SymptomPhrases returns the human-readable phrase for every reported
// symptom, in checklist order.
func SymptomPhrases(f profile.SymptomFlags) []string {
	other := strings.TrimSpace(f.Other)
	phrases := []symptomPhrase{
		{f.PeriodRegularity == profile.RegularityIrregular, "irregular periods"},
		{f.PeriodRegularity == profile.RegularityAbsent, "absent periods"},
		{f.ExcessHair, "excessive hair growth"},
		{f.Acne, "persistent acne"},
		{f.WeightGain, "unexplained weight gain"},
		{f.HairLoss, "hair thinning or loss"},
		{f.Fatigue, "fatigue"},
		{f.MoodSwings, "mood swings or anxiety/depression"},
		{other != "", "other concerns like: " + other},
	}

	reported := pie.Filter(phrases, func(p symptomPhrase) bool { return p.present })
	return pie.Map(reported, func(p symptomPhrase) string { return p.text })
}

// DescribeSymptoms turns the checklist into the sentence embedded in the
// symptom assessment prompt. It yields either the list of reported
// symptoms or NoSymptoms, never both.
func DescribeSymptoms(f profile.SymptomFlags) string {
	phrases := SymptomPhrases(f)
	if len(phrases) == 0 {
		return NoSymptoms
	}
	return fmt.Sprintf("You've mentioned experiencing: %s.", strings.Join(phrases, ", "))
}
