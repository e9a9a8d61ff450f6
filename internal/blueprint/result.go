package blueprint

import "fmt"

// ValidationResult aggregates everything found in one full pass over a
// document. Errors block later workflow stages; warnings never do.
type ValidationResult struct {
	OK       bool     `json:"ok"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type collector struct {
	errors   []string
	warnings []string
}

func (c *collector) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *collector) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *collector) result() ValidationResult {
	errs := c.errors
	if errs == nil {
		errs = []string{}
	}
	warns := c.warnings
	if warns == nil {
		warns = []string{}
	}
	return ValidationResult{
		OK:       len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
	}
}
