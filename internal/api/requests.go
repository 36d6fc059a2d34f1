package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kalambet/aura/internal/profile"
)

const maxRequestBodySize = 1 << 20 // 1MB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type chatRequest struct {
	UserName string `json:"user_name"`
	Message  string `json:"message" validate:"required"`
}

type symptomsRequest struct {
	UserName         string `json:"user_name"`
	LastPeriodDate   string `json:"last_period_date"`
	PeriodRegularity string `json:"period_regularity" validate:"omitempty,oneof=regular irregular absent"`
	ExcessHair       bool   `json:"excess_hair"`
	Acne             bool   `json:"acne"`
	WeightGain       bool   `json:"weight_gain"`
	HairLoss         bool   `json:"hair_loss"`
	Fatigue          bool   `json:"fatigue"`
	MoodSwings       bool   `json:"mood_swings"`
	OtherSymptoms    string `json:"other_symptoms"`
}

func (s symptomsRequest) flags() profile.SymptomFlags {
	return profile.SymptomFlags{
		LastPeriodDate:   s.LastPeriodDate,
		PeriodRegularity: s.PeriodRegularity,
		ExcessHair:       s.ExcessHair,
		Acne:             s.Acne,
		WeightGain:       s.WeightGain,
		HairLoss:         s.HairLoss,
		Fatigue:          s.Fatigue,
		MoodSwings:       s.MoodSwings,
		Other:            s.OtherSymptoms,
	}
}

type periodRequest struct {
	UserName string `json:"user_name"`
	Date     string `json:"date" validate:"required"`
	Severity string `json:"severity"`
	Duration days   `json:"duration" validate:"gte=0"`
	Notes    string `json:"notes"`
}

func (p periodRequest) entry() profile.PeriodLog {
	return profile.PeriodLog{
		Date:     p.Date,
		Severity: p.Severity,
		Duration: int(p.Duration),
		Notes:    p.Notes,
	}
}

type lifestyleRequest struct {
	UserName          string `json:"user_name"`
	DietHabits        string `json:"diet_habits"`
	ExerciseFrequency string `json:"exercise_frequency"`
}

type userRequest struct {
	UserName string `json:"user_name"`
}

// days is a whole number of days sent either as a JSON number or a numeric string.
type days int

func (d *days) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
		if s == "" {
			*d = 0
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("duration must be a whole number of days, got %s", b)
	}
	*d = days(n)
	return nil
}

// decodeRequest reads a JSON body into v and validates it. An empty body is
// accepted when optional is set.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return false
		}
	}

	if err := validate.Struct(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}
