package dsl_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/astronomer/datafixers/pkg/backend/sonicops"
	"github.com/astronomer/datafixers/pkg/codec"
	"github.com/astronomer/datafixers/pkg/dsl"
	"github.com/astronomer/datafixers/pkg/dynamic"
	"github.com/astronomer/datafixers/pkg/ops"
)

type emptyFamily struct{}

func (emptyFamily) Resolve(dynamic.TypeReference) (codec.Codec, bool) { return nil, false }

var _ = Describe("Template", func() {
	var family dsl.TypeFamily = emptyFamily{}

	It("builds a record codec from field/remainder templates", func() {
		player := dsl.And(
			dsl.Field("name", dsl.String()),
			dsl.Field("xp", dsl.IntType()),
			dsl.Remainder(),
		)

		built := player.Build(family)
		table := sonicops.New()
		input := dynamic.New(table, table.CreateMap([]ops.Entry{
			{Key: "name", Value: table.CreateString("Alex")},
			{Key: "xp", Value: table.CreateInt(10)},
			{Key: "extra", Value: table.CreateBoolean(true)},
		}))

		decoded := built.Decode(input)
		Expect(decoded.IsSuccess()).To(BeTrue())

		values := decoded.Get().Value.(map[string]any)
		Expect(values["name"]).To(Equal("Alex"))
		Expect(values["xp"]).To(Equal(int32(10)))
		Expect(values).To(HaveKey("extra"))
	})

	It("builds a list-of template", func() {
		template := dsl.List(dsl.String())
		built := template.Build(family)
		table := sonicops.New()

		encoded := built.EncodeStart(table, []any{"a", "b"})
		Expect(encoded.IsSuccess()).To(BeTrue())
	})

	It("bind attaches a label without changing behaviour", func() {
		plain := dsl.IntType()
		bound := dsl.Bind("score", plain)

		table := sonicops.New()
		a := plain.Build(family).EncodeStart(table, int32(7))
		b := bound.Build(family).EncodeStart(table, int32(7))
		Expect(a.IsSuccess()).To(Equal(b.IsSuccess()))
	})
})
