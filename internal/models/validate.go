package models

import (
	"fmt"
	"strings"
)

// checker collects schema problems so a single re-prompt can report all of them.
type checker struct {
	persona  Persona
	problems []string
}

func newChecker(p Persona) *checker { return &checker{persona: p} }

func (c *checker) addf(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

func (c *checker) required(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.addf("%s is required", field)
	}
}

func (c *checker) rating(field string, r Rating) {
	if !r.Valid() {
		c.addf("%s must be between %d and %d, got %d", field, MinRating, MaxRating, r)
	}
}

func (c *checker) recommendation(field string, r Recommendation) {
	if !r.Valid() {
		c.addf("%s must be one of Buy, Hold, Sell, got %q", field, r)
	}
}

func (c *checker) between(field string, v, lo, hi float64) {
	if v < lo || v > hi {
		c.addf("%s must be between %g and %g, got %g", field, lo, hi, v)
	}
}

func (c *checker) nonNegative(field string, v int) {
	if v < 0 {
		c.addf("%s must not be negative, got %d", field, v)
	}
}

func (c *checker) present(field string, items []string) {
	if items == nil {
		c.addf("%s is required", field)
		return
	}
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			c.addf("%s[%d] is empty", field, i)
		}
	}
}

// entries checks list items only; a nil list is allowed.
func (c *checker) entries(field string, items []string) {
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			c.addf("%s[%d] is empty", field, i)
		}
	}
}

// fields takes alternating name/value pairs of required text assessments.
func (c *checker) fields(prefix string, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		c.required(prefix+"."+pairs[i], pairs[i+1])
	}
}

func (c *checker) err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return &ValidationError{Persona: c.persona, Problems: c.problems}
}
