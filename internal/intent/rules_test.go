package intent

import (
	"testing"

	"github.com/kalambet/aura/internal/prompt"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		message string
		want    Topic
	}{
		{"What are the SYMPTOMS?", TopicSymptoms},
		{"what are pcos symptoms", TopicSymptoms},
		{"Any diet advice?", TopicDiet},
		{"what to eat for breakfast", TopicDiet},
		{"good food for PCOS", TopicDiet},
		{"Which workouts help?", TopicExercise},
		{"how much physical activity", TopicExercise},
		{"I have irregular periods", TopicIrregularPeriods},
		{"missed periods again", TopicIrregularPeriods},
		{"weight gain is hard", TopicWeight},
		{"tips for losing weight", TopicWeight},
		{"unwanted hair growth", TopicSkinHair},
		{"My ACNE flares", TopicSkinHair},
		{"hair loss help", TopicSkinHair},
		{"hello there", TopicGeneral},
		{"", TopicGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := c.Classify(tt.message).Topic; got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		message string
		want    Topic
	}{
		{"should I change my diet or my exercise routine?", TopicDiet},
		{"exercise and diet", TopicDiet},
		{"symptoms like acne and weight gain", TopicSymptoms},
		{"exercise for weight gain", TopicExercise},
		{"missed periods and acne", TopicIrregularPeriods},
		{"losing weight and hair loss", TopicWeight},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.message).Topic; got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestDefaultRules_Order(t *testing.T) {
	want := []Topic{TopicSymptoms, TopicDiet, TopicExercise, TopicIrregularPeriods, TopicWeight, TopicSkinHair}
	rules := DefaultRules()
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for i, r := range rules {
		if r.Topic != want[i] {
			t.Errorf("rules[%d] = %q, want %q", i, r.Topic, want[i])
		}
		if r.Template == "" {
			t.Errorf("rules[%d] has no template", i)
		}
	}
}

func TestClassify_TemplatePairing(t *testing.T) {
	c := NewClassifier(DefaultRules())
	if got := c.Classify("diet").Template; got != prompt.ChatDiet {
		t.Errorf("template = %q, want %q", got, prompt.ChatDiet)
	}
	if got := c.Classify("nothing relevant").Template; got != prompt.ChatGeneral {
		t.Errorf("fallback template = %q, want %q", got, prompt.ChatGeneral)
	}
}

func TestClassify_CustomRules(t *testing.T) {
	c := NewClassifier([]Rule{
		{Topic: "sleep", Match: AnyKeyword("insomnia"), Template: prompt.ChatGeneral},
	})
	if got := c.Classify("Insomnia again").Topic; got != "sleep" {
		t.Errorf("Topic = %q, want sleep", got)
	}
	if got := c.Classify("diet").Topic; got != TopicGeneral {
		t.Errorf("Topic = %q, want %q", got, TopicGeneral)
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	c := NewClassifier(DefaultRules())
	rules := c.Rules()
	rules[0].Topic = "mutated"
	if c.Rules()[0].Topic != TopicSymptoms {
		t.Error("Rules exposed internal slice")
	}
}
