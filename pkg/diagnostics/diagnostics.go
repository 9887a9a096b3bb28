// Package diagnostics implements the opt-in capture pipeline the driver
// consults during a migration call (spec.md §3, §6): DiagnosticOptions
// configures what gets captured, DiagnosticContext accumulates it over
// one call, and MigrationReport is the immutable result.
package diagnostics

import (
	"fmt"
	"strings"
	"time"

	"github.com/astronomer/datafixers/pkg/dynamic"
)

// DiagnosticOptions configures what a DiagnosticContext captures.
type DiagnosticOptions struct {
	CaptureSnapshots   bool
	CaptureRuleDetails bool
	MaxSnapshotLength  int
	PrettyPrint        bool
}

// DefaultOptions captures nothing: a driver call with no
// DiagnosticContext allocates no report state (spec.md §8 scenario 6).
func DefaultOptions() DiagnosticOptions { return DiagnosticOptions{} }

// RuleApplication records one rewrite rule's execution within a fix.
type RuleApplication struct {
	RuleName    string
	TypeName    dynamic.TypeReference
	Timestamp   time.Time
	Duration    time.Duration
	Matched     bool
	Description string
}

// FixExecution records one DataFix's execution within a migration.
type FixExecution struct {
	FixName     string
	FromVersion string
	ToVersion   string
	Duration    time.Duration
	Rules       []RuleApplication
	BeforeSnapshot string
	AfterSnapshot  string
}

// MigrationReport is the immutable result of one migration call,
// produced on demand from a DiagnosticContext (spec.md §3, §6).
type MigrationReport struct {
	Type          dynamic.TypeReference
	FromVersion   string
	ToVersion     string
	StartTime     time.Time
	EndTime       time.Time
	TotalDuration time.Duration
	FixExecutions []FixExecution
	TouchedTypes  []dynamic.TypeReference
	Warnings      []string
	InputSnapshot  string
	OutputSnapshot string
}

// RuleApplicationCount sums rule applications across every recorded fix
// execution (spec.md §6: "derived sum").
func (r MigrationReport) RuleApplicationCount() int {
	n := 0
	for _, fe := range r.FixExecutions {
		n += len(fe.Rules)
	}
	return n
}

// Summary renders a human-readable one-paragraph description of the
// report, suitable for logging.
func (r MigrationReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "migrated %s from %s to %s in %s (%d fix(es), %d rule application(s))",
		r.Type, r.FromVersion, r.ToVersion, r.TotalDuration, len(r.FixExecutions), r.RuleApplicationCount())
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "; %d warning(s): %s", len(r.Warnings), strings.Join(r.Warnings, "; "))
	}
	return b.String()
}

// Context is a mutable, single-migration-call accumulator (spec.md §3,
// §5: "owned by exactly one migration call", "not thread-safe"). The
// zero value is not usable; build with New.
type Context struct {
	options      DiagnosticOptions
	typeRef      dynamic.TypeReference
	from, to     string
	start        time.Time
	fixes        []FixExecution
	touched      map[dynamic.TypeReference]bool
	warnings     []string
	inputSnap    string

	currentRules []RuleApplication
}

// New starts a DiagnosticContext for a migration of typeRef from from
// to to, configured by options.
func New(options DiagnosticOptions, typeRef dynamic.TypeReference, from, to string) *Context {
	return &Context{
		options: options,
		typeRef: typeRef,
		from:    from,
		to:      to,
		start:   time.Now(),
		touched: make(map[dynamic.TypeReference]bool),
	}
}

// CaptureInput records the input tree's snapshot, if snapshot capture
// is enabled.
func (c *Context) CaptureInput(d dynamic.Dynamic) {
	if c == nil || !c.options.CaptureSnapshots {
		return
	}
	c.inputSnap = d.Snapshot(c.options.MaxSnapshotLength)
}

// TouchType marks ref as having been visited during this migration.
func (c *Context) TouchType(ref dynamic.TypeReference) {
	if c == nil {
		return
	}
	c.touched[ref] = true
}

// Warn records a warning message emitted by a fix or the driver.
func (c *Context) Warn(message string) {
	if c == nil || message == "" {
		return
	}
	c.warnings = append(c.warnings, message)
}

// RecordRule appends one rule application to the fix currently being
// built, if rule-detail capture is enabled. No-op otherwise: the caller
// still pays the Apply cost, but no report state is allocated.
func (c *Context) RecordRule(app RuleApplication) {
	if c == nil || !c.options.CaptureRuleDetails {
		return
	}
	c.currentRules = append(c.currentRules, app)
}

// BeginFix starts timing a fix's execution; returns a finisher to call
// once the fix has run.
func (c *Context) BeginFix() (finish func(fixName, fromVersion, toVersion string, before, after dynamic.Dynamic)) {
	if c == nil {
		return func(string, string, string, dynamic.Dynamic, dynamic.Dynamic) {}
	}
	started := time.Now()
	c.currentRules = nil
	return func(fixName, fromVersion, toVersion string, before, after dynamic.Dynamic) {
		fe := FixExecution{
			FixName:     fixName,
			FromVersion: fromVersion,
			ToVersion:   toVersion,
			Duration:    time.Since(started),
			Rules:       c.currentRules,
		}
		if c.options.CaptureSnapshots {
			fe.BeforeSnapshot = before.Snapshot(c.options.MaxSnapshotLength)
			fe.AfterSnapshot = after.Snapshot(c.options.MaxSnapshotLength)
		}
		c.fixes = append(c.fixes, fe)
		c.currentRules = nil
	}
}

// Report builds the immutable MigrationReport for this call, tagging
// output with its final snapshot if capture is enabled.
func (c *Context) Report(output dynamic.Dynamic) MigrationReport {
	end := time.Now()
	touched := make([]dynamic.TypeReference, 0, len(c.touched))
	for t := range c.touched {
		touched = append(touched, t)
	}
	report := MigrationReport{
		Type:          c.typeRef,
		FromVersion:   c.from,
		ToVersion:     c.to,
		StartTime:     c.start,
		EndTime:       end,
		TotalDuration: end.Sub(c.start),
		FixExecutions: c.fixes,
		TouchedTypes:  touched,
		Warnings:      c.warnings,
	}
	if c.options.CaptureSnapshots {
		report.InputSnapshot = c.inputSnap
		report.OutputSnapshot = output.Snapshot(c.options.MaxSnapshotLength)
	}
	return report
}
