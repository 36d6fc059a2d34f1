package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kalambet/aura/internal/completion"
	"github.com/kalambet/aura/internal/intent"
	"github.com/kalambet/aura/internal/observability"
	"github.com/kalambet/aura/internal/profile"
	"github.com/kalambet/aura/internal/prompt"
)

// mockCompleter records prompts and returns a canned reply or error.
type mockCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (m *mockCompleter) Complete(_ context.Context, p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)
	return m.reply, m.err
}

func (m *mockCompleter) lastPrompt(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		t.Fatal("completer was not called")
	}
	return m.prompts[len(m.prompts)-1]
}

func newTestService(reply string) (*Service, *profile.MemoryStore, *mockCompleter) {
	store := profile.NewMemoryStore()
	mc := &mockCompleter{reply: reply}
	return New(store, mc, Options{Provider: "mock"}), store, mc
}

var ctx = context.Background()

func TestLogPeriod_RecordsEntryAndReplies(t *testing.T) {
	svc, _, mc := newTestService("Thanks for logging, Asha 🌸")

	entry := profile.PeriodLog{Date: "2024-01-10", Severity: "heavy", Duration: 5, Notes: "cramps"}
	reply, err := svc.LogPeriod(ctx, "Asha", entry)
	if err != nil {
		t.Fatalf("LogPeriod: %v", err)
	}
	if reply == "" {
		t.Error("empty reply")
	}

	p := svc.Profile("Asha")
	if len(p.PeriodLogs) != 1 {
		t.Fatalf("period logs = %d, want 1", len(p.PeriodLogs))
	}
	if p.PeriodLogs[0] != entry {
		t.Errorf("stored %+v, want %+v", p.PeriodLogs[0], entry)
	}
	if !strings.Contains(mc.lastPrompt(t), "2024-01-10") {
		t.Error("prompt does not mention the period date")
	}
}

func TestAssessSymptoms(t *testing.T) {
	svc, _, mc := newTestService("reply")

	flags := profile.SymptomFlags{PeriodRegularity: profile.RegularityIrregular, Acne: true}
	if _, err := svc.AssessSymptoms(ctx, "Asha", flags); err != nil {
		t.Fatalf("AssessSymptoms: %v", err)
	}

	p := svc.Profile("Asha")
	if len(p.SymptomHistory) != 1 || p.SymptomHistory[0].Symptoms != flags {
		t.Fatalf("symptom history = %+v", p.SymptomHistory)
	}
	if got := mc.lastPrompt(t); !strings.Contains(got, prompt.DescribeSymptoms(flags)) {
		t.Errorf("prompt missing symptom description:\n%s", got)
	}
}

func TestAssessSymptoms_NoneReported(t *testing.T) {
	svc, _, mc := newTestService("reply")

	if _, err := svc.AssessSymptoms(ctx, "Asha", profile.SymptomFlags{}); err != nil {
		t.Fatalf("AssessSymptoms: %v", err)
	}
	got := mc.lastPrompt(t)
	if !strings.Contains(got, prompt.NoSymptoms) {
		t.Errorf("prompt missing no-symptoms sentence:\n%s", got)
	}
	if strings.Contains(got, "You've mentioned experiencing") {
		t.Errorf("prompt has both forms:\n%s", got)
	}
}

func TestLifestyleTips_LastWinsAndPlaceholders(t *testing.T) {
	svc, _, mc := newTestService("reply")

	if _, err := svc.LifestyleTips(ctx, "Asha", profile.Lifestyle{DietHabits: "vegetarian", ExerciseFrequency: "daily"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LifestyleTips(ctx, "Asha", profile.Lifestyle{DietHabits: "keto"}); err != nil {
		t.Fatal(err)
	}

	p := svc.Profile("Asha")
	want := profile.Lifestyle{DietHabits: "keto"}
	if p.Lifestyle != want {
		t.Errorf("lifestyle = %+v, want %+v", p.Lifestyle, want)
	}
	if got := mc.lastPrompt(t); !strings.Contains(got, prompt.NoExerciseFrequency) {
		t.Errorf("prompt missing exercise placeholder:\n%s", got)
	}
}

func TestStatelessIntents_DoNotTouchProfile(t *testing.T) {
	svc, store, _ := newTestService("reply")

	calls := []func() error{
		func() error { _, err := svc.Understanding(ctx, "Asha"); return err },
		func() error { _, err := svc.ExpertConnect(ctx, "Asha"); return err },
		func() error { _, err := svc.Chat(ctx, "Asha", "what should my diet be?"); return err },
	}
	for _, call := range calls {
		if err := call(); err != nil {
			t.Fatal(err)
		}
	}

	if n := store.Count(); n != 0 {
		t.Errorf("profiles = %d, want 0", n)
	}
}

func TestChat_Intent(t *testing.T) {
	tests := []struct {
		message string
		want    intent.Topic
	}{
		{"Any tips on diet and exercise?", intent.TopicDiet},
		{"What are PCOS symptoms?", intent.TopicSymptoms},
		{"I have missed periods lately", intent.TopicIrregularPeriods},
		{"My ACNE is bad", intent.TopicSkinHair},
		{"hello there", intent.TopicGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			svc, _, _ := newTestService("reply")
			got, err := svc.Chat(ctx, "Asha", tt.message)
			if err != nil {
				t.Fatalf("Chat: %v", err)
			}
			if got.Intent != tt.want {
				t.Errorf("intent = %q, want %q", got.Intent, tt.want)
			}
		})
	}
}

func TestChat_GeneralEchoesMessage(t *testing.T) {
	svc, _, mc := newTestService("reply")
	if _, err := svc.Chat(ctx, "Asha", "Feeling Low Today"); err != nil {
		t.Fatal(err)
	}
	if got := mc.lastPrompt(t); !strings.Contains(got, "Feeling Low Today") {
		t.Errorf("prompt missing raw message:\n%s", got)
	}
}

func TestReplyTrimmed(t *testing.T) {
	svc, _, _ := newTestService("\n  Hello Asha ✨  \n")
	got, err := svc.Understanding(ctx, "Asha")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello Asha ✨" {
		t.Errorf("reply = %q", got)
	}
}

func TestCompletionError_KeepsSubmission(t *testing.T) {
	svc, _, mc := newTestService("")
	mc.err = &completion.Error{Provider: "mock", Kind: completion.ErrUnavailable}

	_, err := svc.LogPeriod(ctx, "Asha", profile.PeriodLog{Date: "2024-01-10"})
	if !errors.Is(err, completion.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if n := len(svc.Profile("Asha").PeriodLogs); n != 1 {
		t.Errorf("period logs = %d, want 1 after failed completion", n)
	}
}

func TestChat_ErrorKeepsIntent(t *testing.T) {
	svc, _, mc := newTestService("")
	mc.err = &completion.Error{Provider: "mock", Kind: completion.ErrRefused}

	reply, err := svc.Chat(ctx, "Asha", "tell me about acne")
	if !errors.Is(err, completion.ErrRefused) {
		t.Fatalf("err = %v, want ErrRefused", err)
	}
	if reply.Intent != intent.TopicSkinHair {
		t.Errorf("intent = %q, want skin_hair", reply.Intent)
	}
}

func TestCustomClassifier(t *testing.T) {
	rules := []intent.Rule{{Topic: intent.TopicExercise, Match: intent.AnyKeyword("yoga"), Template: prompt.ChatExercise}}
	svc := New(profile.NewMemoryStore(), &mockCompleter{reply: "ok"}, Options{Classifier: intent.NewClassifier(rules)})

	got, err := svc.Chat(ctx, "Asha", "is yoga good?")
	if err != nil {
		t.Fatal(err)
	}
	if got.Intent != intent.TopicExercise {
		t.Errorf("intent = %q, want exercise", got.Intent)
	}
}

func TestMetricsRecorded(t *testing.T) {
	m := observability.NewMetrics(nil)
	mc := &mockCompleter{err: &completion.Error{Provider: "mock", Kind: completion.ErrTimeout}}
	svc := New(profile.NewMemoryStore(), mc, Options{Provider: "mock", Metrics: m})

	svc.ExpertConnect(ctx, "Asha")
	svc.ExpertConnect(ctx, "Asha")

	if got := testutil.ToFloat64(m.CompletionErrors.WithLabelValues("timeout")); got != 2 {
		t.Errorf("timeout errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Intents.WithLabelValues(IntentExpertConnect)); got != 2 {
		t.Errorf("intent count = %v, want 2", got)
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	svc, _, _ := newTestService("ok")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.LogPeriod(ctx, "Asha", profile.PeriodLog{Date: time.Now().Format(time.DateOnly)})
		}()
	}
	wg.Wait()

	if n := len(svc.Profile("Asha").PeriodLogs); n != 50 {
		t.Errorf("period logs = %d, want 50", n)
	}
}
