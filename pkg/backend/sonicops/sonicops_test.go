package sonicops_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/astronomer/datafixers/pkg/backend/sonicops"
	"github.com/astronomer/datafixers/pkg/ops"
)

var _ = Describe("Ops", func() {
	o := sonicops.New()

	Describe("primitives round-trip through their matching reader", func() {
		It("strings", func() {
			v := o.CreateString("hello")
			Expect(o.IsString(v)).To(BeTrue())
			s, ok := o.GetStringValue(v).Value()
			Expect(ok).To(BeTrue())
			Expect(s).To(Equal("hello"))
		})

		It("booleans", func() {
			v := o.CreateBoolean(true)
			Expect(o.IsBoolean(v)).To(BeTrue())
			b, ok := o.GetBooleanValue(v).Value()
			Expect(ok).To(BeTrue())
			Expect(b).To(BeTrue())
		})

		It("numbers", func() {
			v := o.CreateDouble(3.5)
			Expect(o.IsNumber(v)).To(BeTrue())
			n, ok := o.GetNumberValue(v).Value()
			Expect(ok).To(BeTrue())
			Expect(n).To(Equal(3.5))
		})
	})

	Describe("reading the wrong shape", func() {
		It("returns an Error result instead of panicking", func() {
			v := o.CreateString("not a number")
			r := o.GetNumberValue(v)
			Expect(r.IsError()).To(BeTrue())
		})
	})

	Describe("map operations", func() {
		It("set/get/has round-trip", func() {
			m := o.EmptyMap()
			m = o.Set(m, "name", o.CreateString("Steve"))
			Expect(o.Has(m, "name")).To(BeTrue())
			v, ok := o.Get(m, "name")
			Expect(ok).To(BeTrue())
			s, _ := o.GetStringValue(v).Value()
			Expect(s).To(Equal("Steve"))
		})

		It("remove makes the key absent again", func() {
			m := o.Set(o.EmptyMap(), "x", o.CreateInt(1))
			m = o.Remove(m, "x")
			Expect(o.Has(m, "x")).To(BeFalse())
		})

		It("set does not mutate the original map (Dynamic immutability)", func() {
			original := o.EmptyMap()
			updated := o.Set(original, "k", o.CreateInt(1))
			Expect(o.Has(original, "k")).To(BeFalse())
			Expect(o.Has(updated, "k")).To(BeTrue())
		})

		It("mergeToMap fails on a non-map value", func() {
			r := o.MergeToMap(o.CreateString("nope"), "k", o.CreateInt(1))
			Expect(r.IsError()).To(BeTrue())
		})

		It("mergeMaps is right-biased on collision", func() {
			left := o.Set(o.EmptyMap(), "k", o.CreateInt(1))
			right := o.Set(o.EmptyMap(), "k", o.CreateInt(2))
			merged, ok := o.MergeMaps(left, right).Value()
			Expect(ok).To(BeTrue())
			v, _ := o.Get(merged, "k")
			n, _ := o.GetNumberValue(v).Value()
			Expect(n).To(Equal(float64(2)))
		})

		It("round-trips entries via GetMapEntries", func() {
			m := o.Set(o.Set(o.EmptyMap(), "a", o.CreateInt(1)), "b", o.CreateInt(2))
			entries, ok := o.GetMapEntries(m).Value()
			Expect(ok).To(BeTrue())
			Expect(entries).To(HaveLen(2))
		})
	})

	Describe("list operations", func() {
		It("creates and reads back a list", func() {
			list := o.CreateList([]any{o.CreateInt(1), o.CreateInt(2)})
			Expect(o.IsList(list)).To(BeTrue())
			items, ok := o.GetList(list).Value()
			Expect(ok).To(BeTrue())
			Expect(items).To(HaveLen(2))
		})

		It("mergeToList appends", func() {
			list := o.CreateList([]any{o.CreateInt(1)})
			merged, ok := o.MergeToList(list, o.CreateInt(2)).Value()
			Expect(ok).To(BeTrue())
			items, _ := o.GetList(merged).Value()
			Expect(items).To(HaveLen(2))
		})

		It("mergeToList fails when the target is not a list", func() {
			r := o.MergeToList(o.CreateString("nope"), o.CreateInt(1))
			Expect(r.IsError()).To(BeTrue())
		})
	})

	Describe("ConvertTo", func() {
		It("round-trips a structurally well-formed tree to another Operations instance", func() {
			other := sonicops.New()
			m := o.Set(o.EmptyMap(), "name", o.CreateString("Alex"))
			converted := o.ConvertTo(ops.Operations(other), m)
			Expect(other.IsMap(converted)).To(BeTrue())
			v, ok := other.Get(converted, "name")
			Expect(ok).To(BeTrue())
			s, _ := other.GetStringValue(v).Value()
			Expect(s).To(Equal("Alex"))
		})
	})

	Describe("ToStringSnapshot", func() {
		It("renders a readable value", func() {
			m := o.Set(o.EmptyMap(), "k", o.CreateInt(1))
			s, ok := o.ToStringSnapshot(m)
			Expect(ok).To(BeTrue())
			Expect(s).To(ContainSubstring("k"))
		})
	})
})
