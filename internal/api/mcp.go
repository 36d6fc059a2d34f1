package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/aura/internal/profile"
	"github.com/kalambet/aura/internal/session"
)

const profileURIPrefix = "aura://profile/"

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Assistant   Assistant
	DefaultUser string // used when a tool call omits user_name
	Version     string
}

// NewMCPServer creates an MCP server exposing every intent as a tool and
// profiles as a resource template.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	if deps.DefaultUser == "" {
		deps.DefaultUser = session.DefaultUserName
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	s := server.NewMCPServer(
		"aura",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("Aura, a supportive PCOD/PCOS companion. Replies are general guidance and never a diagnosis."),
		server.WithRecovery(),
	)

	userArg := mcp.WithString("user_name", mcp.Description("Name of the user the request is for (default "+deps.DefaultUser+")"))

	s.AddTool(
		mcp.NewTool("assess_symptoms",
			mcp.WithDescription("Record a symptom checklist and get a supportive assessment."),
			userArg,
			mcp.WithString("last_period_date", mcp.Description("Date of the last period")),
			mcp.WithString("period_regularity", mcp.Description("Cycle regularity"), mcp.Enum(profile.RegularityRegular, profile.RegularityIrregular, profile.RegularityAbsent)),
			mcp.WithBoolean("excess_hair", mcp.Description("Excessive hair growth")),
			mcp.WithBoolean("acne", mcp.Description("Persistent acne")),
			mcp.WithBoolean("weight_gain", mcp.Description("Unexplained weight gain")),
			mcp.WithBoolean("hair_loss", mcp.Description("Hair thinning or loss")),
			mcp.WithBoolean("fatigue", mcp.Description("Fatigue")),
			mcp.WithBoolean("mood_swings", mcp.Description("Mood swings, anxiety or depression")),
			mcp.WithString("other_symptoms", mcp.Description("Anything else worth mentioning")),
		),
		mcpAssessSymptoms(deps),
	)

	s.AddTool(
		mcp.NewTool("log_period",
			mcp.WithDescription("Log a period and get an acknowledgement."),
			userArg,
			mcp.WithString("date", mcp.Description("Start date of the period"), mcp.Required()),
			mcp.WithString("severity", mcp.Description("Flow severity, e.g. light, medium, heavy")),
			mcp.WithNumber("duration", mcp.Description("Length in days")),
			mcp.WithString("notes", mcp.Description("Free-form notes")),
		),
		mcpLogPeriod(deps),
	)

	s.AddTool(
		mcp.NewTool("lifestyle_tips",
			mcp.WithDescription("Record diet and exercise habits and get lifestyle tips."),
			userArg,
			mcp.WithString("diet_habits", mcp.Description("Current diet habits")),
			mcp.WithString("exercise_frequency", mcp.Description("How often the user exercises")),
		),
		mcpLifestyleTips(deps),
	)

	s.AddTool(
		mcp.NewTool("understanding_pcos",
			mcp.WithDescription("Get a plain-language explanation of PCOD/PCOS."),
			userArg,
		),
		mcpUnderstanding(deps),
	)

	s.AddTool(
		mcp.NewTool("expert_connect",
			mcp.WithDescription("Get guidance on which specialists to see and how to prepare."),
			userArg,
		),
		mcpExpertConnect(deps),
	)

	s.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Ask Aura a free-form question."),
			userArg,
			mcp.WithString("message", mcp.Description("The question or message"), mcp.Required()),
		),
		mcpChat(deps),
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			profileURIPrefix+"{name}",
			"User Profile",
			mcp.WithTemplateDescription("Everything recorded for a user, as JSON"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	return s
}

func userName(deps MCPDeps, req mcp.CallToolRequest) string {
	return session.Resolve(req.GetString("user_name", ""), "", deps.DefaultUser)
}

// mcpReply runs fn and turns its outcome into a tool result.
func mcpReply(fn func() (string, error)) (*mcp.CallToolResult, error) {
	text, err := fn()
	if err != nil {
		_, _, msg := classifyError(err)
		return mcpError(msg), nil
	}
	return mcpText(text), nil
}

func mcpAssessSymptoms(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flags := profile.SymptomFlags{
			LastPeriodDate:   req.GetString("last_period_date", ""),
			PeriodRegularity: req.GetString("period_regularity", ""),
			ExcessHair:       req.GetBool("excess_hair", false),
			Acne:             req.GetBool("acne", false),
			WeightGain:       req.GetBool("weight_gain", false),
			HairLoss:         req.GetBool("hair_loss", false),
			Fatigue:          req.GetBool("fatigue", false),
			MoodSwings:       req.GetBool("mood_swings", false),
			Other:            req.GetString("other_symptoms", ""),
		}
		switch flags.PeriodRegularity {
		case "", profile.RegularityRegular, profile.RegularityIrregular, profile.RegularityAbsent:
		default:
			return mcpError("period_regularity must be one of: regular irregular absent"), nil
		}

		name := userName(deps, req)
		return mcpReply(func() (string, error) {
			return deps.Assistant.AssessSymptoms(ctx, name, flags)
		})
	}
}

func mcpLogPeriod(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := req.RequireString("date")
		if err != nil || strings.TrimSpace(date) == "" {
			return mcpError("date is required"), nil
		}
		duration := req.GetInt("duration", 0)
		if duration < 0 {
			return mcpError("duration must be at least 0"), nil
		}

		entry := profile.PeriodLog{
			Date:     date,
			Severity: req.GetString("severity", ""),
			Duration: duration,
			Notes:    req.GetString("notes", ""),
		}
		name := userName(deps, req)
		return mcpReply(func() (string, error) {
			return deps.Assistant.LogPeriod(ctx, name, entry)
		})
	}
}

func mcpLifestyleTips(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prefs := profile.Lifestyle{
			DietHabits:        req.GetString("diet_habits", ""),
			ExerciseFrequency: req.GetString("exercise_frequency", ""),
		}
		name := userName(deps, req)
		return mcpReply(func() (string, error) {
			return deps.Assistant.LifestyleTips(ctx, name, prefs)
		})
	}
}

func mcpUnderstanding(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := userName(deps, req)
		return mcpReply(func() (string, error) {
			return deps.Assistant.Understanding(ctx, name)
		})
	}
}

func mcpExpertConnect(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := userName(deps, req)
		return mcpReply(func() (string, error) {
			return deps.Assistant.ExpertConnect(ctx, name)
		})
	}
}

func mcpChat(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil || message == "" {
			return mcpError("message is required"), nil
		}
		name := userName(deps, req)
		return mcpReply(func() (string, error) {
			reply, err := deps.Assistant.Chat(ctx, name, message)
			return reply.Text, err
		})
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := strings.TrimPrefix(req.Params.URI, profileURIPrefix)
		name, err := url.PathUnescape(raw)
		if err != nil || strings.TrimSpace(name) == "" || raw == req.Params.URI {
			return nil, fmt.Errorf("invalid profile uri %q", req.Params.URI)
		}

		b, err := json.Marshal(deps.Assistant.Profile(name))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
