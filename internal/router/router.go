// Package router turns each user-facing intent into a prompt, records the
// submission in the user's profile and asks the completion service for a reply.
package router

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/kalambet/aura/internal/completion"
	"github.com/kalambet/aura/internal/intent"
	"github.com/kalambet/aura/internal/observability"
	"github.com/kalambet/aura/internal/profile"
	"github.com/kalambet/aura/internal/prompt"
)

// Intent names used for logging and metrics.
const (
	IntentAssessSymptoms = "assess_symptoms"
	IntentLogPeriod      = "log_period"
	IntentLifestyleTips  = "lifestyle_tips"
	IntentUnderstanding  = "understanding_pcos"
	IntentExpertConnect  = "expert_connect"
	IntentChat           = "chat"
)

// Reply is the result of a free-text chat turn.
type Reply struct {
	Text   string
	Intent intent.Topic
}

// Options holds the optional collaborators of a Service.
type Options struct {
	// Provider labels completion metrics.
	Provider   string
	Metrics    *observability.Metrics
	Classifier *intent.Classifier
}

// Service routes intents to prompts and the completion client.
type Service struct {
	profiles   profile.Store
	completer  completion.Client
	classifier *intent.Classifier
	metrics    *observability.Metrics
	provider   string
}

// New creates a Service. A nil Classifier selects intent.DefaultRules.
func New(profiles profile.Store, completer completion.Client, opts Options) *Service {
	if opts.Classifier == nil {
		opts.Classifier = intent.NewClassifier(intent.DefaultRules())
	}
	if opts.Provider == "" {
		opts.Provider = "unknown"
	}
	return &Service{
		profiles:   profiles,
		completer:  completer,
		classifier: opts.Classifier,
		metrics:    opts.Metrics,
		provider:   opts.Provider,
	}
}

// AssessSymptoms records the checklist and asks for a supportive assessment.
func (s *Service) AssessSymptoms(ctx context.Context, name string, flags profile.SymptomFlags) (string, error) {
	s.profiles.AppendSymptom(name, flags)
	return s.respond(ctx, IntentAssessSymptoms, prompt.SymptomAssessment, prompt.Data{
		Name:     name,
		Symptoms: prompt.DescribeSymptoms(flags),
	})
}

// LogPeriod records the cycle entry and asks for an acknowledgement.
func (s *Service) LogPeriod(ctx context.Context, name string, entry profile.PeriodLog) (string, error) {
	s.profiles.AppendPeriodLog(name, entry)
	return s.respond(ctx, IntentLogPeriod, prompt.PeriodLog, prompt.Data{
		Name:   name,
		Period: entry,
	})
}

// LifestyleTips replaces the stored lifestyle answers and asks for tips.
func (s *Service) LifestyleTips(ctx context.Context, name string, prefs profile.Lifestyle) (string, error) {
	s.profiles.SetLifestyle(name, prefs)
	diet, exercise := prompt.LifestyleAnswers(prefs)
	return s.respond(ctx, IntentLifestyleTips, prompt.LifestyleTips, prompt.Data{
		Name:     name,
		Diet:     diet,
		Exercise: exercise,
	})
}

func (s *Service) Understanding(ctx context.Context, name string) (string, error) {
	return s.respond(ctx, IntentUnderstanding, prompt.Understanding, prompt.Data{Name: name})
}

func (s *Service) ExpertConnect(ctx context.Context, name string) (string, error) {
	return s.respond(ctx, IntentExpertConnect, prompt.ExpertConnect, prompt.Data{Name: name})
}

// Chat classifies a free-text message and answers it with the matching
// topic template. The profile is not touched.
func (s *Service) Chat(ctx context.Context, name, message string) (Reply, error) {
	rule := s.classifier.Classify(message)
	text, err := s.respond(ctx, IntentChat+":"+string(rule.Topic), rule.Template, prompt.Data{
		Name:         name,
		Message:      message,
		MessageLower: strings.ToLower(message),
	})
	if err != nil {
		return Reply{Intent: rule.Topic}, err
	}
	return Reply{Text: text, Intent: rule.Topic}, nil
}

// Profile returns the user's profile, creating an empty one if needed.
func (s *Service) Profile(name string) profile.Profile {
	return s.profiles.GetOrCreate(name)
}

func (s *Service) respond(ctx context.Context, intentName string, tmpl prompt.Name, data prompt.Data) (string, error) {
	s.metrics.ObserveIntent(intentName)

	p, err := prompt.Render(tmpl, data)
	if err != nil {
		return "", oops.In("router").With("intent", intentName).Wrapf(err, "building prompt")
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, p)
	if err != nil {
		s.metrics.ObserveCompletion(s.provider, time.Since(start), completion.KindLabel(err))
		return "", oops.In("router").With("intent", intentName, "user", data.Name).Wrapf(err, "generating reply")
	}
	s.metrics.ObserveCompletion(s.provider, time.Since(start), "")

	return strings.TrimSpace(reply), nil
}
