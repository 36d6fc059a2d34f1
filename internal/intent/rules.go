package intent

import (
	"strings"

	"github.com/elliotchance/pie/v2"

	"github.com/kalambet/aura/internal/prompt"
)

// Topic is the intent tag reported for a free-text chat message.
type Topic string

const (
	TopicSymptoms         Topic = "symptoms"
	TopicDiet             Topic = "diet"
	TopicExercise         Topic = "exercise"
	TopicIrregularPeriods Topic = "irregular_periods"
	TopicWeight           Topic = "weight"
	TopicSkinHair         Topic = "skin_hair"
	TopicGeneral          Topic = "general"
)

// Matcher reports whether a lowercased message belongs to a topic.
type Matcher func(lowered string) bool

// AnyKeyword matches when the message contains at least one keyword as a substring.
func AnyKeyword(keywords ...string) Matcher {
	return func(lowered string) bool {
		return pie.Any(keywords, func(k string) bool { return strings.Contains(lowered, k) })
	}
}

// Rule pairs a predicate with the template used when it matches.
type Rule struct {
	Topic    Topic
	Match    Matcher
	Template prompt.Name
}

// Fallback is used when no rule matches.
var Fallback = Rule{Topic: TopicGeneral, Template: prompt.ChatGeneral}

// DefaultRules returns the chat rules in priority order. The first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{TopicSymptoms, AnyKeyword("symptoms", "what are pcos symptoms"), prompt.ChatSymptoms},
		{TopicDiet, AnyKeyword("diet", "what to eat", "food for pcos"), prompt.ChatDiet},
		{TopicExercise, AnyKeyword("exercise", "workouts", "physical activity"), prompt.ChatExercise},
		{TopicIrregularPeriods, AnyKeyword("irregular periods", "missed periods"), prompt.ChatIrregularPeriods},
		{TopicWeight, AnyKeyword("weight gain", "losing weight"), prompt.ChatWeight},
		{TopicSkinHair, AnyKeyword("hair growth", "acne", "hair loss"), prompt.ChatSkinHair},
	}
}

// Classifier selects a chat rule for a message.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier evaluating rules in the given order.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify lowercases message and returns the first matching rule, or
// Fallback when nothing matches.
func (c *Classifier) Classify(message string) Rule {
	lowered := strings.ToLower(message)
	for _, r := range c.rules {
		if r.Match != nil && r.Match(lowered) {
			return r
		}
	}
	return Fallback
}

// Rules returns a copy of the rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
