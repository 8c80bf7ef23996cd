// Package payload holds the request and response documents shared by the gRPC
// and HTTP transports, with their validation and conversion to service calls.
package payload

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

const maxPageSize = 100

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode unmarshals a JSON document into dst and validates it.
func Decode(data []byte, dst any) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &calendar.ParseError{Field: typeErr.Field, Value: typeErr.Value, Reason: "expected " + typeErr.Type.String()}
		}
		return &calendar.ParseError{Field: "body", Reason: err.Error()}
	}
	return Validate(dst)
}

// Validate runs the struct tags and reports the first failure as a ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), message(fe))
	}
	return domain.NewValidationError("", err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be an email address"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "is longer than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// Page is the common paging block; zero values fall back to the store defaults.
type Page struct {
	Page     int32 `json:"page" validate:"gte=0"`
	PageSize int32 `json:"page_size" validate:"gte=0,lte=100"`
}

func (p Page) Size() int32 {
	if p.PageSize > maxPageSize {
		return maxPageSize
	}
	return p.PageSize
}

func parseDates(start, end string) (calendar.Date, calendar.Date, error) {
	s, err := calendar.ParseDate(start)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, withField(err, "start_date")
	}
	e, err := calendar.ParseDate(end)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, withField(err, "end_date")
	}
	return s, e, nil
}

func withField(err error, field string) error {
	var pe *calendar.ParseError
	if errors.As(err, &pe) {
		cp := *pe
		cp.Field = field
		return &cp
	}
	return err
}
