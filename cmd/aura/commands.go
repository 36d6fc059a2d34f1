package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/aura/internal/config"
)

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "name to address and record under (default: the server's default user)")
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask Aura a free-form question",
	Long: `Ask Aura a free-form question.

Examples:
  aura chat "what should I eat with PCOS?"
  aura chat --user Asha "I have missed periods lately"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/chat", map[string]any{
			"message":   strings.Join(args, " "),
			"user_name": user,
		})
		if err != nil {
			return err
		}

		var result struct {
			Response string `json:"response"`
			Intent   string `json:"intent"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printReply(cmd.OutOrStdout(), result.Response, result.Intent)
		return nil
	},
}

func init() {
	addUserFlag(chatCmd)
}

// --- assess ---

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the symptom checker",
	Long: `Record which symptoms you notice and get a supportive assessment.

Examples:
  aura assess --regularity irregular --acne --fatigue
  aura assess --user Asha --last-period 2024-01-10 --other "bloating"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		user, _ := f.GetString("user")
		regularity, _ := f.GetString("regularity")
		lastPeriod, _ := f.GetString("last-period")
		other, _ := f.GetString("other")

		switch regularity {
		case "", "regular", "irregular", "absent":
		default:
			return fmt.Errorf("--regularity must be one of: regular, irregular, absent")
		}

		req := map[string]any{
			"user_name":         user,
			"last_period_date":  lastPeriod,
			"period_regularity": regularity,
			"other_symptoms":    other,
		}
		for flag, field := range map[string]string{
			"excess-hair": "excess_hair",
			"acne":        "acne",
			"weight-gain": "weight_gain",
			"hair-loss":   "hair_loss",
			"fatigue":     "fatigue",
			"mood-swings": "mood_swings",
		} {
			v, _ := f.GetBool(flag)
			req[field] = v
		}

		return runReply(cmd, "/api/assess_symptoms", req)
	},
}

func init() {
	addUserFlag(assessCmd)
	assessCmd.Flags().String("last-period", "", "date of your last period")
	assessCmd.Flags().String("regularity", "", "cycle regularity: regular, irregular or absent")
	assessCmd.Flags().Bool("excess-hair", false, "excessive hair growth")
	assessCmd.Flags().Bool("acne", false, "persistent acne")
	assessCmd.Flags().Bool("weight-gain", false, "unexplained weight gain")
	assessCmd.Flags().Bool("hair-loss", false, "hair thinning or loss")
	assessCmd.Flags().Bool("fatigue", false, "fatigue")
	assessCmd.Flags().Bool("mood-swings", false, "mood swings, anxiety or depression")
	assessCmd.Flags().String("other", "", "anything else you have noticed")
}

// --- log-period ---

var logPeriodCmd = &cobra.Command{
	Use:   "log-period",
	Short: "Log a period",
	Long: `Log a period and get a short acknowledgement.

Examples:
  aura log-period --date 2024-01-10 --severity heavy --duration 5 --notes cramps`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		user, _ := f.GetString("user")
		date, _ := f.GetString("date")
		severity, _ := f.GetString("severity")
		duration, _ := f.GetInt("duration")
		notes, _ := f.GetString("notes")

		if date == "" {
			return fmt.Errorf("--date is required")
		}
		if duration < 0 {
			return fmt.Errorf("--duration must not be negative")
		}

		return runReply(cmd, "/api/log_period", map[string]any{
			"user_name": user,
			"date":      date,
			"severity":  severity,
			"duration":  duration,
			"notes":     notes,
		})
	},
}

func init() {
	addUserFlag(logPeriodCmd)
	logPeriodCmd.Flags().String("date", "", "start date of the period (required)")
	logPeriodCmd.Flags().String("severity", "", "flow severity, e.g. light, medium, heavy")
	logPeriodCmd.Flags().Int("duration", 0, "length in days")
	logPeriodCmd.Flags().String("notes", "", "free-form notes")
}

// --- tips ---

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Get lifestyle tips for your habits",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		diet, _ := cmd.Flags().GetString("diet")
		exercise, _ := cmd.Flags().GetString("exercise")

		return runReply(cmd, "/api/get_lifestyle_tips", map[string]any{
			"user_name":          user,
			"diet_habits":        diet,
			"exercise_frequency": exercise,
		})
	},
}

func init() {
	addUserFlag(tipsCmd)
	tipsCmd.Flags().String("diet", "", "your current diet habits")
	tipsCmd.Flags().String("exercise", "", "how often you exercise")
}

// --- learn / experts ---

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn what PCOD/PCOS is",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		return runReply(cmd, "/api/understanding_pcos", map[string]any{"user_name": user})
	},
}

var expertsCmd = &cobra.Command{
	Use:   "experts",
	Short: "Find out which specialists can help",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		return runReply(cmd, "/api/expert_connect", map[string]any{"user_name": user})
	},
}

func init() {
	addUserFlag(learnCmd)
	addUserFlag(expertsCmd)
}

func runReply(cmd *cobra.Command, path string, body any) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	text, err := client.reply(cmd.Context(), path, body)
	if err != nil {
		return err
	}
	printReply(cmd.OutOrStdout(), text, "")
	return nil
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect a stored profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), profilePath(user))
		if err != nil {
			return err
		}

		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

func init() {
	addUserFlag(profileShowCmd)
	profileCmd.AddCommand(profileShowCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Peek()
		if err := cfg.Validate(); err != nil {
			printWarning("%v", err)
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value.\n\nValid keys:\n  " + strings.Join(config.ValidKeys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
