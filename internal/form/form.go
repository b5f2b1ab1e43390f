// Package form defines the two HTML forms of the application and validates
// them before any store mutation happens.
package form

import (
	"errors"
	"html"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/iliyamo/top-movies/internal/model"
)

// AddForm starts the add-by-title flow.
type AddForm struct {
	Title string `form:"title" validate:"required,max=250"`
}

// RateForm edits the rating and review of a stored movie.  Rating is kept
// as the submitted text so an invalid value can be shown back to the user.
type RateForm struct {
	Rating string `form:"rating" validate:"required,rating"`
	Review string `form:"review" validate:"required,max=250"`
}

// Value returns the parsed rating.  Call it only after validation passed.
// "-0" passes validation and is returned as plain zero.
func (f *RateForm) Value() float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(f.Rating), 64)
	if v == 0 {
		return 0
	}
	return v
}

// Errors maps a form field name to a user-facing message.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var policy = bluemonday.StrictPolicy()

// Sanitize strips markup and surrounding whitespace from free text fields.
// Entities are decoded again; templates escape on output.
func (f *AddForm) Sanitize() {
	f.Title = clean(f.Title)
}

// Sanitize strips markup and surrounding whitespace from free text fields.
func (f *RateForm) Sanitize() {
	f.Rating = strings.TrimSpace(f.Rating)
	f.Review = clean(f.Review)
}

func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Validator implements echo.Validator on top of go-playground/validator.
// Failures are returned as Errors keyed by the form field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator registers the custom "rating" rule and reports field names
// by their form tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		r, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && r >= model.MinRating && r <= model.MaxRating
	})
	return &Validator{v: v}
}

// Validate checks i and returns nil or Errors.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "rating":
		return "Rating must be between 0 and 10"
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	}
	return "Invalid value."
}
