package prompt

import (
	"strings"
	"testing"

	"github.com/kalambet/aura/internal/profile"
)

// TestDescribeSymptoms_AllCombinations enumerates every checklist combination
// and verifies the description names exactly the reported symptoms.
func TestDescribeSymptoms_AllCombinations(t *testing.T) {
	regularities := []string{"", profile.RegularityRegular, profile.RegularityIrregular, profile.RegularityAbsent}
	others := []string{"", "bloating"}

	for mask := 0; mask < 1<<6; mask++ {
		for _, reg := range regularities {
			for _, other := range others {
				f := profile.SymptomFlags{
					PeriodRegularity: reg,
					ExcessHair:       mask&1 != 0,
					Acne:             mask&2 != 0,
					WeightGain:       mask&4 != 0,
					HairLoss:         mask&8 != 0,
					Fatigue:          mask&16 != 0,
					MoodSwings:       mask&32 != 0,
					Other:            other,
				}
				got := DescribeSymptoms(f)

				expected := map[string]bool{
					"irregular periods":                 reg == profile.RegularityIrregular,
					"absent periods":                    reg == profile.RegularityAbsent,
					"excessive hair growth":             f.ExcessHair,
					"persistent acne":                   f.Acne,
					"unexplained weight gain":           f.WeightGain,
					"hair thinning or loss":             f.HairLoss,
					"fatigue":                           f.Fatigue,
					"mood swings or anxiety/depression": f.MoodSwings,
					"other concerns like: bloating":     other != "",
				}

				anySet := false
				for phrase, want := range expected {
					anySet = anySet || want
					if strings.Contains(got, phrase) != want {
						t.Fatalf("flags %+v: phrase %q present=%v, want %v (got %q)", f, phrase, !want, want, got)
					}
				}

				hasNone := strings.Contains(got, NoSymptoms)
				hasList := strings.HasPrefix(got, "You've mentioned experiencing: ")
				if hasNone == hasList {
					t.Fatalf("flags %+v: expected exactly one form, got %q", f, got)
				}
				if hasNone == anySet {
					t.Fatalf("flags %+v: no-symptoms sentence=%v with anySet=%v", f, hasNone, anySet)
				}
			}
		}
	}
}

func TestDescribeSymptoms_Format(t *testing.T) {
	got := DescribeSymptoms(profile.SymptomFlags{
		PeriodRegularity: profile.RegularityIrregular,
		Acne:             true,
		Other:            "  bloating ",
	})
	want := "You've mentioned experiencing: irregular periods, persistent acne, other concerns like: bloating."
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestDescribeSymptoms_BlankOtherIgnored(t *testing.T) {
	if got := DescribeSymptoms(profile.SymptomFlags{Other: "   "}); got != NoSymptoms {
		t.Errorf("got %q, want %q", got, NoSymptoms)
	}
}

func TestLifestyleAnswers(t *testing.T) {
	tests := []struct {
		name         string
		in           profile.Lifestyle
		wantDiet     string
		wantExercise string
	}{
		{"both", profile.Lifestyle{DietHabits: "vegetarian", ExerciseFrequency: "3x week"}, "vegetarian", "3x week"},
		{"none", profile.Lifestyle{}, NoDietHabits, NoExerciseFrequency},
		{"diet only", profile.Lifestyle{DietHabits: "keto"}, "keto", NoExerciseFrequency},
		{"blank exercise", profile.Lifestyle{DietHabits: "keto", ExerciseFrequency: "  "}, "keto", NoExerciseFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diet, exercise := LifestyleAnswers(tt.in)
			if diet != tt.wantDiet || exercise != tt.wantExercise {
				t.Errorf("got (%q, %q), want (%q, %q)", diet, exercise, tt.wantDiet, tt.wantExercise)
			}
		})
	}
}

func TestRender_AllTemplates(t *testing.T) {
	names := []Name{
		SymptomAssessment, PeriodLog, LifestyleTips, Understanding, ExpertConnect,
		ChatSymptoms, ChatDiet, ChatExercise, ChatIrregularPeriods, ChatWeight, ChatSkinHair, ChatGeneral,
	}
	data := Data{Name: "Asha", Message: "Hello", MessageLower: "hello"}
	for _, n := range names {
		t.Run(string(n), func(t *testing.T) {
			out, err := Render(n, data)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(out, "Aura") {
				t.Error("prompt does not name the persona")
			}
			if !strings.Contains(out, "Asha") {
				t.Error("prompt does not address the user")
			}
		})
	}
}

func TestRender_ChatUsesPersona(t *testing.T) {
	out, err := Render(ChatDiet, Data{Name: "Asha"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Do NOT use bullet points, asterisks or numbered lists") {
		t.Errorf("chat prompt missing persona preamble: %s", out)
	}
}

func TestRender_PeriodLog(t *testing.T) {
	out, err := Render(PeriodLog, Data{
		Name:   "Asha",
		Period: profile.PeriodLog{Date: "2024-01-10", Severity: "heavy", Duration: 5, Notes: "cramps"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := `starting on 2024-01-10 with a heavy flow, lasting 5 days. You noted: "cramps".`
	if !strings.Contains(out, want) {
		t.Errorf("prompt missing %q:\n%s", want, out)
	}
}

func TestRender_PeriodLogOptionalFields(t *testing.T) {
	out, err := Render(PeriodLog, Data{Name: "Asha", Period: profile.PeriodLog{Date: "2024-01-10"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "starting on 2024-01-10.") {
		t.Errorf("unexpected period sentence:\n%s", out)
	}
	if strings.Contains(out, "You noted") || strings.Contains(out, "lasting") {
		t.Errorf("empty fields leaked into prompt:\n%s", out)
	}
}

func TestRender_SkinHairEchoesLoweredMessage(t *testing.T) {
	out, err := Render(ChatSkinHair, Data{Name: "Asha", Message: "My ACNE is bad", MessageLower: "my acne is bad"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "concerns like my acne is bad") {
		t.Errorf("lowered message missing:\n%s", out)
	}
}

func TestRender_GeneralEchoesRawMessage(t *testing.T) {
	out, err := Render(ChatGeneral, Data{Name: "Asha", Message: "Feeling Low Today", MessageLower: "feeling low today"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `Asha said: "Feeling Low Today".`) {
		t.Errorf("raw message missing:\n%s", out)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	if _, err := Render(Name("nope"), Data{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
