package schema_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/astronomer/datafixers/pkg/codec"
	"github.com/astronomer/datafixers/pkg/dataversion"
	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/schema"
)

var _ = Describe("Schema", func() {
	It("resolves types registered on itself", func() {
		s, err := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type {
			return []schema.Type{schema.NewType("player", codec.String)}
		})
		Expect(err).NotTo(HaveOccurred())

		typ, ok := s.GetType("player")
		Expect(ok).To(BeTrue())
		Expect(typ.Codec).To(Equal(codec.String))
	})

	It("rejects duplicate type references within one schema", func() {
		_, err := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type {
			return []schema.Type{
				schema.NewType("player", codec.String),
				schema.NewType("player", codec.Int),
			}
		})
		Expect(err).To(HaveOccurred())
	})

	It("falls back to the parent chain for references it doesn't bind itself", func() {
		parent, err := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type {
			return []schema.Type{schema.NewType("player", codec.String)}
		})
		Expect(err).NotTo(HaveOccurred())

		child, err := schema.New(dataversion.DataVersion(2), parent, func() []schema.Type {
			return []schema.Type{schema.NewType("inventory", codec.String)}
		})
		Expect(err).NotTo(HaveOccurred())

		_, ok := child.GetType("player")
		Expect(ok).To(BeTrue(), "child should inherit parent's types")

		_, ok = child.GetType("inventory")
		Expect(ok).To(BeTrue())
	})

	It("lets a child override a parent's binding for the same reference", func() {
		parent, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type {
			return []schema.Type{schema.NewType("player", codec.String)}
		})
		child, _ := schema.New(dataversion.DataVersion(2), parent, func() []schema.Type {
			return []schema.Type{schema.NewType("player", codec.Int)}
		})

		typ, ok := child.GetType("player")
		Expect(ok).To(BeTrue())
		Expect(typ.Codec).To(Equal(codec.Int))
	})

	It("reports every reference reachable through the parent chain", func() {
		parent, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type {
			return []schema.Type{schema.NewType("player", codec.String)}
		})
		child, _ := schema.New(dataversion.DataVersion(2), parent, func() []schema.Type {
			return []schema.Type{schema.NewType("inventory", codec.String)}
		})

		Expect(child.References()).To(Equal([]dynamic.TypeReference{"inventory", "player"}))
	})
})

var _ = Describe("Registry", func() {
	It("requires strictly increasing versions", func() {
		r := schema.NewRegistry()
		s1, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type { return nil })
		s2, _ := schema.New(dataversion.DataVersion(2), nil, func() []schema.Type { return nil })
		s1Again, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type { return nil })

		Expect(r.Register(s1)).To(Succeed())
		Expect(r.Register(s2)).To(Succeed())
		Expect(r.Register(s1Again)).To(HaveOccurred())
	})

	It("looks up exact versions", func() {
		r := schema.NewRegistry()
		s1, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type { return nil })
		Expect(r.Register(s1)).To(Succeed())

		got, ok := r.Get(dataversion.DataVersion(1))
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(s1))

		_, ok = r.Get(dataversion.DataVersion(2))
		Expect(ok).To(BeFalse())
	})

	It("finds the closest registered schema at or below a version, tolerating gaps", func() {
		r := schema.NewRegistry()
		s1, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type { return nil })
		s5, _ := schema.New(dataversion.DataVersion(5), nil, func() []schema.Type { return nil })
		Expect(r.Register(s1)).To(Succeed())
		Expect(r.Register(s5)).To(Succeed())

		got, ok := r.ClosestOrBelow(dataversion.DataVersion(3))
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(s1))

		got, ok = r.ClosestOrBelow(dataversion.DataVersion(5))
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(s5))

		got, ok = r.ClosestOrBelow(dataversion.DataVersion(100))
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(s5))

		_, ok = r.ClosestOrBelow(dataversion.DataVersion(0))
		Expect(ok).To(BeFalse())
	})

	It("lists registered versions in ascending order", func() {
		r := schema.NewRegistry()
		s5, _ := schema.New(dataversion.DataVersion(5), nil, func() []schema.Type { return nil })
		s1, _ := schema.New(dataversion.DataVersion(1), nil, func() []schema.Type { return nil })
		Expect(r.Register(s1)).To(Succeed())
		Expect(r.Register(s5)).To(Succeed())

		Expect(r.Versions()).To(Equal([]dataversion.DataVersion{1, 5}))
	})
})
