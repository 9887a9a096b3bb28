// Package driver implements the migration engine's one operational
// entry point (spec.md §6): bootstrap from a caller's schema and fix
// registration callbacks, then Update to run a TaggedDynamic from one
// DataVersion to another.
package driver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/astronomer/datafixers/pkg/dataversion"
	"github.com/astronomer/datafixers/pkg/diagnostics"
	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/fix"
	"github.com/astronomer/datafixers/pkg/result"
	"github.com/astronomer/datafixers/pkg/schema"
)

// Driver ties together a frozen SchemaRegistry and FixRegistry plus the
// newest DataVersion the caller's code understands (spec.md §6).
// Immutable after Bootstrap: safe for concurrent Update calls from any
// number of goroutines (spec.md §5).
type Driver struct {
	schemas        *schema.Registry
	fixes          *fix.Registry
	currentVersion dataversion.DataVersion
}

// Bootstrap builds a Driver from two registration callbacks and the
// current DataVersion, then validates every registered fix before
// returning (spec.md §6). Bootstrap fails if a fix has fromVersion >=
// toVersion, references a TypeReference with no corresponding Schema
// entry, or has a step that cannot be covered by Schemas in the
// registry via closest-or-below.
func Bootstrap(
	currentVersion dataversion.DataVersion,
	registerSchemas func(*schema.Registry),
	registerFixes func(*fix.Registry),
) (*Driver, error) {
	schemas := schema.NewRegistry()
	registerSchemas(schemas)

	fixes := fix.NewRegistry()
	registerFixes(fixes)

	if err := validateFixes(schemas, fixes); err != nil {
		return nil, err
	}

	return &Driver{schemas: schemas, fixes: fixes, currentVersion: currentVersion}, nil
}

func validateFixes(schemas *schema.Registry, fixes *fix.Registry) error {
	for _, typeRef := range fixes.Types() {
		for _, f := range fixes.Fixes(typeRef) {
			if !f.FromVersion.Less(f.ToVersion) {
				return fmt.Errorf("driver bootstrap: fix %q for type %q has fromVersion %s >= toVersion %s", f.Name, typeRef, f.FromVersion, f.ToVersion)
			}

			fromSchema, ok := schemas.ClosestOrBelow(f.FromVersion)
			if !ok {
				return fmt.Errorf("driver bootstrap: fix %q for type %q: no schema covers fromVersion %s", f.Name, typeRef, f.FromVersion)
			}
			toSchema, ok := schemas.ClosestOrBelow(f.ToVersion)
			if !ok {
				return fmt.Errorf("driver bootstrap: fix %q for type %q: no schema covers toVersion %s", f.Name, typeRef, f.ToVersion)
			}
			if _, ok := fromSchema.GetType(typeRef); !ok {
				return fmt.Errorf("driver bootstrap: fix %q references type %q with no Schema entry at or below %s", f.Name, typeRef, f.FromVersion)
			}
			if _, ok := toSchema.GetType(typeRef); !ok {
				return fmt.Errorf("driver bootstrap: fix %q references type %q with no Schema entry at or below %s", f.Name, typeRef, f.ToVersion)
			}
		}
	}
	return nil
}

// CurrentVersion returns the newest DataVersion this driver's bootstrap
// declared.
func (d *Driver) CurrentVersion() dataversion.DataVersion { return d.currentVersion }

// Update migrates input from from to to, recording diagnostics into ctx
// if non-nil (spec.md §4.9, §6, §7). ctx may be nil: every diagnostics
// call on a nil *diagnostics.Context is a safe no-op.
func (d *Driver) Update(input dynamic.TaggedDynamic, from, to dataversion.DataVersion, ctx *diagnostics.Context) result.Result[dynamic.TaggedDynamic] {
	ctx.CaptureInput(input.Value)

	if !from.Less(to) {
		return result.Success(input)
	}

	planned := d.fixes.Plan(input.Type, from, to)
	if planned.IsError() {
		return result.Error[dynamic.TaggedDynamic](planned.Message())
	}
	selected := planned.Get()
	if len(selected) == 0 {
		return result.Success(dynamic.NewTagged(input.Type, input.Value))
	}

	ctx.TouchType(input.Type)

	current := input.Value
	for _, f := range selected {
		fromSchema, ok := d.schemaAt(f.FromVersion)
		if !ok {
			return result.Errorf[dynamic.TaggedDynamic]("update %s: no schema found at or below %s", input.Type, f.FromVersion)
		}
		toSchema, ok := d.schemaAt(f.ToVersion)
		if !ok {
			return result.Errorf[dynamic.TaggedDynamic]("update %s: no schema found at or below %s", input.Type, f.ToVersion)
		}

		rule := f.Build(fromSchema, toSchema)
		if !rule.AppliesTo(input.Type) {
			continue
		}
		finish := ctx.BeginFix()
		before := current
		started := time.Now()
		after := rule.Apply(current)

		if msg, isErr := after.IsErrorMarked(); isErr {
			ctx.RecordRule(diagnostics.RuleApplication{
				RuleName:  rule.Label,
				TypeName:  input.Type,
				Timestamp: started,
				Duration:  time.Since(started),
				Matched:   false,
			})
			finish(f.Name, f.FromVersion.String(), f.ToVersion.String(), before, before)
			ctx.Warn(msg)
			return result.Partial(dynamic.NewTagged(input.Type, before), msg)
		}

		ctx.RecordRule(diagnostics.RuleApplication{
			RuleName:  rule.Label,
			TypeName:  input.Type,
			Timestamp: started,
			Duration:  time.Since(started),
			Matched:   true,
		})
		finish(f.Name, f.FromVersion.String(), f.ToVersion.String(), before, after)
		current = after
	}

	return result.Success(dynamic.NewTagged(input.Type, current))
}

// schemaAt resolves a Schema at version using exact lookup, falling
// back to closest-or-below (spec.md §4.9).
func (d *Driver) schemaAt(version dataversion.DataVersion) (*schema.Schema, bool) {
	if s, ok := d.schemas.Get(version); ok {
		return s, true
	}
	return d.schemas.ClosestOrBelow(version)
}

// UpdateAll runs Update for every input concurrently, returning results
// in the same order as inputs. Nothing on the Driver's fast path locks
// (spec.md §5: registries and Schemas are immutable after Bootstrap) —
// this is a convenience for callers who want to fan a batch of records
// out across goroutines rather than a capability the driver itself
// requires; each call gets its own DiagnosticContext since a context is
// owned by exactly one migration call.
func (d *Driver) UpdateAll(ctx context.Context, inputs []dynamic.TaggedDynamic, from, to dataversion.DataVersion, options diagnostics.DiagnosticOptions) ([]result.Result[dynamic.TaggedDynamic], error) {
	results := make([]result.Result[dynamic.TaggedDynamic], len(inputs))
	group, _ := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		group.Go(func() error {
			dctx := diagnostics.New(options, input.Type, from.String(), to.String())
			results[i] = d.Update(input, from, to, dctx)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
