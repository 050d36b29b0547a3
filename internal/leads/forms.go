package leads

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]*[0-9]$`)

// MeetingForm is the body of POST /api/meetings.
type MeetingForm struct {
	Name              string `form:"name" validate:"required,min=2,max=120"`
	Phone             string `form:"phone" validate:"required,min=6,max=40,intlphone"`
	Email             string `form:"email" validate:"omitempty,max=160,email"`
	PreferredDate     string `form:"preferred_date"`
	PreferredTimeSlot string `form:"preferred_time_slot" validate:"max=40"`
	Message           string `form:"message" validate:"max=1000"`
	SourcePage        string `form:"source_page" validate:"max=255"`
}

// FeedbackForm is the body of POST /api/feedback.
type FeedbackForm struct {
	Name    string `form:"name" validate:"required,min=2,max=120"`
	Phone   string `form:"phone" validate:"required,min=6,max=40,intlphone"`
	Email   string `form:"email" validate:"omitempty,max=160,email"`
	Message string `form:"message" validate:"max=1000"`
}

// LandownerForm is the body of POST /api/landowner.
type LandownerForm struct {
	Name         string `form:"name" validate:"required,min=2,max=120"`
	Phone        string `form:"phone" validate:"required,min=6,max=40,intlphone"`
	Email        string `form:"email" validate:"omitempty,max=160,email"`
	LandLocation string `form:"land_location" validate:"max=255"`
	LandSize     string `form:"land_size" validate:"max=120"`
	Message      string `form:"message" validate:"max=1000"`
}

func parseMeeting(v url.Values) MeetingForm {
	return MeetingForm{
		Name:              field(v, "name"),
		Phone:             field(v, "phone"),
		Email:             field(v, "email"),
		PreferredDate:     field(v, "preferred_date"),
		PreferredTimeSlot: field(v, "preferred_time_slot"),
		Message:           field(v, "message"),
		SourcePage:        field(v, "source_page"),
	}
}

func parseFeedback(v url.Values) FeedbackForm {
	return FeedbackForm{
		Name:    field(v, "name"),
		Phone:   field(v, "phone"),
		Email:   field(v, "email"),
		Message: field(v, "message"),
	}
}

func parseLandowner(v url.Values) LandownerForm {
	return LandownerForm{
		Name:         field(v, "name"),
		Phone:        field(v, "phone"),
		Email:        field(v, "email"),
		LandLocation: field(v, "land_location"),
		LandSize:     field(v, "land_size"),
		Message:      field(v, "message"),
	}
}

func field(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

// NewValidator returns a validator that reports fields by their form names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("intlphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// fieldErrors maps validation failures to user-facing messages keyed by form field.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be " + fe.Param() + " characters or fewer."
	case "email":
		return "That email doesn't look valid."
	case "intlphone":
		return "Use a valid international format (+880..., +1..., etc)."
	default:
		return "Please correct this field."
	}
}

// parseDate accepts YYYY-MM-DD. Anything else is stored as NULL.
func parseDate(s string) pgtype.Date {
	if s == "" {
		return pgtype.Date{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func optional(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
