package driver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/astronomer/datafixers/pkg/backend/sonicops"
	"github.com/astronomer/datafixers/pkg/codec"
	"github.com/astronomer/datafixers/pkg/dataversion"
	"github.com/astronomer/datafixers/pkg/diagnostics"
	"github.com/astronomer/datafixers/pkg/driver"
	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/fix"
	"github.com/astronomer/datafixers/pkg/ops"
	"github.com/astronomer/datafixers/pkg/rewrite"
	"github.com/astronomer/datafixers/pkg/schema"
)

const playerType = dynamic.TypeReference("player")

func playerInput(table *sonicops.Ops) dynamic.Dynamic {
	return dynamic.New(table, table.CreateMap([]ops.Entry{
		{Key: "playerName", Value: table.CreateString("Steve")},
		{Key: "xp", Value: table.CreateInt(1500)},
	}))
}

func schemaAt(v dataversion.DataVersion, parent *schema.Schema) *schema.Schema {
	s, err := schema.New(v, parent, func() []schema.Type {
		return []schema.Type{schema.NewType(playerType, codec.String)}
	})
	Expect(err).NotTo(HaveOccurred())
	return s
}

// chainedSchemas registers a four-version Schema history (v1..v4),
// usable directly as driver.Bootstrap's registerSchemas callback.
func chainedSchemas(r *schema.Registry) {
	v1 := schemaAt(dataversion.DataVersion(1), nil)
	v2 := schemaAt(dataversion.DataVersion(2), v1)
	v3 := schemaAt(dataversion.DataVersion(3), v2)
	v4 := schemaAt(dataversion.DataVersion(4), v3)
	Expect(r.Register(v1)).NotTo(HaveOccurred())
	Expect(r.Register(v2)).NotTo(HaveOccurred())
	Expect(r.Register(v3)).NotTo(HaveOccurred())
	Expect(r.Register(v4)).NotTo(HaveOccurred())
}

// threeStepFixes registers the three scenario-4 fixes: a rename
// (v1->v2), a restructure that groups xp under a stats map (v2->v3),
// and an add-field-with-default (v3->v4).
func threeStepFixes(r *fix.Registry) {
	rename, err := fix.New("rename playerName", playerType, dataversion.DataVersion(1), dataversion.DataVersion(2),
		func(from, to *schema.Schema) rewrite.Rule { return rewrite.RenameField("playerName", "name") })
	Expect(err).NotTo(HaveOccurred())

	restructure, err := fix.New("group stats", playerType, dataversion.DataVersion(2), dataversion.DataVersion(3),
		func(from, to *schema.Schema) rewrite.Rule { return rewrite.GroupFields("stats", "xp") })
	Expect(err).NotTo(HaveOccurred())

	addField, err := fix.New("add level", playerType, dataversion.DataVersion(3), dataversion.DataVersion(4),
		func(from, to *schema.Schema) rewrite.Rule {
			return rewrite.AddField(playerType, "level", func(d dynamic.Dynamic) dynamic.Dynamic {
				return d.CreateInt(1)
			})
		})
	Expect(err).NotTo(HaveOccurred())

	Expect(r.Register(rename)).NotTo(HaveOccurred())
	Expect(r.Register(restructure)).NotTo(HaveOccurred())
	Expect(r.Register(addField)).NotTo(HaveOccurred())
}

var _ = Describe("Bootstrap validation", func() {
	It("rejects a fix whose fromVersion is not strictly less than toVersion", func() {
		_, err := driver.Bootstrap(dataversion.DataVersion(4), chainedSchemas, func(r *fix.Registry) {
			bad, buildErr := fix.New("noop", playerType, dataversion.DataVersion(2), dataversion.DataVersion(3), noopBuild)
			Expect(buildErr).NotTo(HaveOccurred())
			bad.FromVersion = dataversion.DataVersion(3)
			Expect(r.Register(bad)).NotTo(HaveOccurred())
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a fix referencing a type with no Schema entry", func() {
		_, err := driver.Bootstrap(dataversion.DataVersion(4), chainedSchemas, func(r *fix.Registry) {
			f, buildErr := fix.New("noop", "unknownType", dataversion.DataVersion(1), dataversion.DataVersion(2), noopBuild)
			Expect(buildErr).NotTo(HaveOccurred())
			Expect(r.Register(f)).NotTo(HaveOccurred())
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a fix step with no Schema coverage via closest-or-below", func() {
		_, err := driver.Bootstrap(dataversion.DataVersion(4), func(r *schema.Registry) {
			v5 := schemaAt(dataversion.DataVersion(5), nil)
			Expect(r.Register(v5)).NotTo(HaveOccurred())
		}, func(r *fix.Registry) {
			f, buildErr := fix.New("noop", playerType, dataversion.DataVersion(1), dataversion.DataVersion(2), noopBuild)
			Expect(buildErr).NotTo(HaveOccurred())
			Expect(r.Register(f)).NotTo(HaveOccurred())
		})
		Expect(err).To(HaveOccurred())
	})

	It("succeeds for a well-formed chain", func() {
		d, err := driver.Bootstrap(dataversion.DataVersion(4), chainedSchemas, threeStepFixes)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.CurrentVersion()).To(Equal(dataversion.DataVersion(4)))
	})
})

func noopBuild(from, to *schema.Schema) rewrite.Rule { return rewrite.Noop() }

var _ = Describe("Update", func() {
	var d *driver.Driver
	var table *sonicops.Ops

	BeforeEach(func() {
		var err error
		d, err = driver.Bootstrap(dataversion.DataVersion(4), chainedSchemas, threeStepFixes)
		Expect(err).NotTo(HaveOccurred())
		table = sonicops.New()
	})

	It("is identity when from equals to, for any version", func() {
		input := dynamic.NewTagged(playerType, playerInput(table))
		for _, v := range []dataversion.DataVersion{1, 2, 3, 4} {
			out := d.Update(input, dataversion.DataVersion(v), dataversion.DataVersion(v), nil)
			Expect(out.IsSuccess()).To(BeTrue())
			Expect(out.Get().Value.Snapshot(0)).To(Equal(input.Value.Snapshot(0)))
		}
	})

	It("scenario 4: applies all three fixes in order across the full range", func() {
		input := dynamic.NewTagged(playerType, playerInput(table))
		out := d.Update(input, dataversion.DataVersion(1), dataversion.DataVersion(4), nil)
		Expect(out.IsSuccess()).To(BeTrue())

		migrated := out.Get().Value
		Expect(migrated.Has("name")).To(BeTrue())
		Expect(migrated.Has("playerName")).To(BeFalse())
		Expect(migrated.Get("stats").Get("xp").AsInt().Get()).To(Equal(int32(1500)))
		Expect(migrated.Get("level").AsInt().Get()).To(Equal(int32(1)))
	})

	It("applies only the restructure and add-field fixes for v2 to v4", func() {
		renamed := dynamic.New(table, table.CreateMap([]ops.Entry{
			{Key: "name", Value: table.CreateString("Steve")},
			{Key: "xp", Value: table.CreateInt(1500)},
		}))
		input := dynamic.NewTagged(playerType, renamed)
		out := d.Update(input, dataversion.DataVersion(2), dataversion.DataVersion(4), nil)
		Expect(out.IsSuccess()).To(BeTrue())

		migrated := out.Get().Value
		Expect(migrated.Get("stats").Get("xp").AsInt().Get()).To(Equal(int32(1500)))
		Expect(migrated.Get("level").AsInt().Get()).To(Equal(int32(1)))
	})

	It("applies only the rename fix for v1 to v2", func() {
		input := dynamic.NewTagged(playerType, playerInput(table))
		out := d.Update(input, dataversion.DataVersion(1), dataversion.DataVersion(2), nil)
		Expect(out.IsSuccess()).To(BeTrue())

		migrated := out.Get().Value
		Expect(migrated.Has("name")).To(BeTrue())
		Expect(migrated.Has("stats")).To(BeFalse())
		Expect(migrated.Has("level")).To(BeFalse())
	})

	It("scenario 5: halts on a rule failure and returns Partial with the prior step's state", func() {
		failing, err := driver.Bootstrap(dataversion.DataVersion(3), chainedSchemas, func(r *fix.Registry) {
			rename, buildErr := fix.New("rename playerName", playerType, dataversion.DataVersion(1), dataversion.DataVersion(2),
				func(from, to *schema.Schema) rewrite.Rule { return rewrite.RenameField("playerName", "name") })
			Expect(buildErr).NotTo(HaveOccurred())

			breaks, buildErr := fix.New("broken restructure", playerType, dataversion.DataVersion(2), dataversion.DataVersion(3),
				func(from, to *schema.Schema) rewrite.Rule {
					return rewrite.Transform(playerType, func(d dynamic.Dynamic) dynamic.Dynamic {
						return d.Get("xp").Set("nope", d)
					})
				})
			Expect(buildErr).NotTo(HaveOccurred())

			Expect(r.Register(rename)).NotTo(HaveOccurred())
			Expect(r.Register(breaks)).NotTo(HaveOccurred())
		})
		Expect(err).NotTo(HaveOccurred())

		input := dynamic.NewTagged(playerType, playerInput(table))
		out := failing.Update(input, dataversion.DataVersion(1), dataversion.DataVersion(3), nil)

		Expect(out.IsPartial()).To(BeTrue())
		Expect(out.Message()).NotTo(BeEmpty())

		partial, ok := out.Value()
		Expect(ok).To(BeTrue())
		Expect(partial.Value.Has("name")).To(BeTrue())
		Expect(partial.Value.Has("stats")).To(BeFalse())
	})

	It("scenario 6: a configured DiagnosticContext captures all three fix executions in order", func() {
		input := dynamic.NewTagged(playerType, playerInput(table))
		ctx := diagnostics.New(diagnostics.DiagnosticOptions{CaptureSnapshots: true}, playerType, "v1", "v4")

		out := d.Update(input, dataversion.DataVersion(1), dataversion.DataVersion(4), ctx)
		Expect(out.IsSuccess()).To(BeTrue())

		report := ctx.Report(out.Get().Value)
		Expect(report.FixExecutions).To(HaveLen(3))
		Expect(report.FixExecutions[0].FixName).To(Equal("rename playerName"))
		Expect(report.FixExecutions[1].FixName).To(Equal("group stats"))
		Expect(report.FixExecutions[2].FixName).To(Equal("add level"))
		Expect(report.TouchedTypes).To(ContainElement(playerType))
		Expect(report.TotalDuration).To(Equal(report.EndTime.Sub(report.StartTime)))
	})

	It("runs with a nil DiagnosticContext with no panics or allocation-dependent behavior", func() {
		input := dynamic.NewTagged(playerType, playerInput(table))
		Expect(func() {
			out := d.Update(input, dataversion.DataVersion(1), dataversion.DataVersion(4), nil)
			Expect(out.IsSuccess()).To(BeTrue())
		}).NotTo(Panic())
	})
})

var _ = Describe("UpdateAll", func() {
	It("migrates every input concurrently and preserves result order", func() {
		d, err := driver.Bootstrap(dataversion.DataVersion(4), chainedSchemas, threeStepFixes)
		Expect(err).NotTo(HaveOccurred())

		table := sonicops.New()
		inputs := make([]dynamic.TaggedDynamic, 5)
		for i := range inputs {
			inputs[i] = dynamic.NewTagged(playerType, playerInput(table))
		}

		results, err := d.UpdateAll(context.Background(), inputs, dataversion.DataVersion(1), dataversion.DataVersion(4), diagnostics.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(5))
		for _, r := range results {
			Expect(r.IsSuccess()).To(BeTrue())
			Expect(r.Get().Value.Has("name")).To(BeTrue())
		}
	})
})
