package diagnostics

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"
)

// Collection accumulates diagnostics for a run. It is used to not bail out
// early and instead surface every degraded unit at once, in the order the
// problems were observed.
type Collection struct {
	diags []Diagnostic
}

// NewCollection creates an empty Collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Push appends one diagnostic.
func (c *Collection) Push(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// PushAll appends a batch of diagnostics.
func (c *Collection) PushAll(ds []Diagnostic) {
	c.diags = append(c.diags, ds...)
}

// All returns the accumulated diagnostics in observation order.
func (c *Collection) All() []Diagnostic {
	return c.diags
}

// Len returns the number of accumulated diagnostics.
func (c *Collection) Len() int {
	return len(c.diags)
}

// HasFatal reports whether any diagnostic should fail the batch.
func (c *Collection) HasFatal() bool {
	for _, d := range c.diags {
		if d.Kind.Fatal() {
			return true
		}
	}
	return false
}

// ToResult returns an error describing the fatal diagnostics, or nil.
func (c *Collection) ToResult() error {
	fatal := 0
	for _, d := range c.diags {
		if d.Kind.Fatal() {
			fatal++
		}
	}
	if fatal == 0 {
		return nil
	}
	return fmt.Errorf("generation finished with %d failed units", fatal)
}

// ToPrettyString formats every diagnostic as a colored digest, fatal entries
// first rendered as errors and the rest as warnings.
func (c *Collection) ToPrettyString() string {
	var buf bytes.Buffer

	errTitle := color.New(color.FgRed, color.Bold)
	warnTitle := color.New(color.FgYellow, color.Bold)
	desc := color.New(color.Bold)
	unit := color.New(color.FgCyan)

	for _, d := range c.diags {
		if d.Kind.Fatal() {
			errTitle.Fprint(&buf, "error")
		} else {
			warnTitle.Fprint(&buf, "warning")
		}
		fmt.Fprintf(&buf, "[%s]: ", d.Kind)
		desc.Fprintf(&buf, "%s\n", d.Message)

		if d.Model != "" {
			unit.Fprint(&buf, "  --> ")
			fmt.Fprint(&buf, "model ", d.Model)
			if d.Field != "" {
				fmt.Fprint(&buf, ", field ", d.Field)
			}
			fmt.Fprintln(&buf)
		}
		if d.Path != "" {
			unit.Fprint(&buf, "  --> ")
			fmt.Fprintln(&buf, d.Path)
		}
	}
	return buf.String()
}
