package forms

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"qcr/internal/models"
	"qcr/internal/validation"

	"github.com/shopspring/decimal"
)

// Today returns the default date for date fields left empty.
var Today = func() string {
	return time.Now().Format(validation.DateLayout)
}

// cleaner converts raw values while collecting field errors.
type cleaner struct {
	ve *validation.ValidationErrors
}

func newCleaner() cleaner {
	return cleaner{ve: &validation.ValidationErrors{}}
}

// err returns the collected errors, or nil when there are none.
func (c cleaner) err() error {
	if c.ve.HasErrors() {
		return c.ve
	}
	return nil
}

func (c cleaner) text(field string, v Value, required bool, max int) string {
	s := v.String()
	if required {
		validation.RequireField(c.ve, field, s)
	}
	if max > 0 {
		validation.ValidateMaxLength(c.ve, field, s, max)
	}
	return s
}

func (c cleaner) sapID(field string, v Value, digits int, required bool) string {
	s := v.String()
	if required {
		validation.RequireField(c.ve, field, s)
	}
	validation.ValidateSapID(c.ve, field, s, digits)
	return s
}

func (c cleaner) dec(field string, v Value, required bool) decimal.Decimal {
	s := v.String()
	if s == "" {
		if required {
			c.ve.Add(field, "is required")
		}
		return decimal.Zero
	}
	d, ok := validation.ParseDecimal(c.ve, field, s)
	if ok {
		validation.ValidateNonNegativeDecimal(c.ve, field, d)
	}
	return d
}

func (c cleaner) optDec(field string, v Value) decimal.NullDecimal {
	if v == "" {
		return decimal.NullDecimal{}
	}
	d := c.dec(field, v, false)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func (c cleaner) integer(field string, v Value, required bool) int {
	s := v.String()
	if s == "" {
		if required {
			c.ve.Add(field, "is required")
		}
		return 0
	}
	n, _ := validation.ParseInt(c.ve, field, s)
	return n
}

func (c cleaner) optInt(field string, v Value) *int {
	if v == "" {
		return nil
	}
	n, ok := validation.ParseInt(c.ve, field, v.String())
	if !ok {
		return nil
	}
	return &n
}

func (c cleaner) choice(field string, v Value, allowed []string, def string) string {
	s := v.String()
	if s == "" {
		return def
	}
	validation.ValidateEnum(c.ve, field, s, allowed)
	return s
}

// date returns v, or def when v is empty. An empty def makes the field
// required.
func (c cleaner) date(field string, v Value, def string) string {
	s := v.String()
	if s == "" {
		if def == "" {
			c.ve.Add(field, "is required")
		}
		return def
	}
	validation.ValidateDate(c.ve, field, s)
	return s
}

// FormSetErrors collects the errors of several forms submitted together,
// keyed by form name ("order", "report", "measurements.0", ...).
type FormSetErrors struct {
	Forms map[string]*validation.ValidationErrors `json:"forms"`
}

// Add records every error of ve under form. Nil or empty sets are skipped.
func (fe *FormSetErrors) Add(form string, err error) {
	ve, ok := err.(*validation.ValidationErrors)
	if !ok || !ve.HasErrors() {
		return
	}
	for _, e := range ve.Errors {
		fe.AddField(form, e.Field, e.Message)
	}
}

func (fe *FormSetErrors) AddField(form, field, message string) {
	if fe.Forms == nil {
		fe.Forms = make(map[string]*validation.ValidationErrors)
	}
	ve := fe.Forms[form]
	if ve == nil {
		ve = &validation.ValidationErrors{}
		fe.Forms[form] = ve
	}
	ve.Add(field, message)
}

// Get returns the errors of one form, or nil.
func (fe *FormSetErrors) Get(form string) *validation.ValidationErrors {
	if fe == nil {
		return nil
	}
	return fe.Forms[form]
}

func (fe *FormSetErrors) HasErrors() bool {
	return fe != nil && len(fe.Forms) > 0
}

func (fe *FormSetErrors) Error() string {
	names := make([]string, 0, len(fe.Forms))
	for name := range fe.Forms {
		names = append(names, name)
	}
	sort.Strings(names)

	var msgs []string
	for _, name := range names {
		for _, e := range fe.Forms[name].Errors {
			msgs = append(msgs, fmt.Sprintf("%s.%s: %s", name, e.Field, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func (fe *FormSetErrors) err() error {
	if fe.HasErrors() {
		return fe
	}
	return nil
}

func bandOf(c cleaner, prefix string, target, top, bottom Value) models.Band {
	return models.Band{
		Target: c.dec(prefix+"_target", target, true),
		Top:    c.dec(prefix+"_top", top, false),
		Bottom: c.dec(prefix+"_bottom", bottom, false),
	}
}

func intBandOf(c cleaner, prefix string, target, top, bottom Value) models.IntBand {
	return models.IntBand{
		Target: c.integer(prefix+"_target", target, true),
		Top:    c.integer(prefix+"_top", top, false),
		Bottom: c.integer(prefix+"_bottom", bottom, false),
	}
}
