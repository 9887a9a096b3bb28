package result_test

import (
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/astronomer/datafixers/pkg/result"
)

var _ = Describe("Result", func() {
	Describe("construction", func() {
		It("builds a Success arm", func() {
			r := result.Success(42)
			Expect(r.IsSuccess()).To(BeTrue())
			Expect(r.IsError()).To(BeFalse())
			Expect(r.IsPartial()).To(BeFalse())
			v, ok := r.Value()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(42))
		})

		It("builds an Error arm with no value", func() {
			r := result.Error[int]("boom")
			Expect(r.IsError()).To(BeTrue())
			Expect(r.Message()).To(Equal("boom"))
			_, ok := r.Value()
			Expect(ok).To(BeFalse())
		})

		It("builds a Partial arm carrying a best-effort value and message", func() {
			r := result.Partial(7, "fell back to default")
			Expect(r.IsPartial()).To(BeTrue())
			v, ok := r.Value()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(7))
			Expect(r.Message()).To(Equal("fell back to default"))
		})
	})

	Describe("Map", func() {
		It("transforms the Success value", func() {
			r := result.Map(result.Success(3), func(i int) string { return strconv.Itoa(i * 2) })
			Expect(r.Get()).To(Equal("6"))
		})

		It("transforms the Partial value while keeping the message", func() {
			r := result.Map(result.Partial(3, "warn"), func(i int) int { return i + 1 })
			Expect(r.IsPartial()).To(BeTrue())
			Expect(r.ValueOrZero()).To(Equal(4))
			Expect(r.Message()).To(Equal("warn"))
		})

		It("leaves Error untouched", func() {
			r := result.Map(result.Error[int]("nope"), func(i int) int { return i + 1 })
			Expect(r.IsError()).To(BeTrue())
			Expect(r.Message()).To(Equal("nope"))
		})
	})

	Describe("FlatMap", func() {
		div := func(n int) func(int) result.Result[int] {
			return func(d int) result.Result[int] {
				if d == 0 {
					return result.Error[int]("division by zero")
				}
				return result.Success(n / d)
			}
		}

		It("behaves as a monad over Success", func() {
			r := result.FlatMap(result.Success(10), div(10))
			Expect(r.Get()).To(Equal(1))
		})

		It("short-circuits Error", func() {
			r := result.FlatMap(result.Error[int]("upstream failure"), div(10))
			Expect(r.IsError()).To(BeTrue())
			Expect(r.Message()).To(Equal("upstream failure"))
		})

		It("accumulates messages when chaining off a Partial", func() {
			r := result.FlatMap(result.Partial(10, "first warning"), func(n int) result.Result[int] {
				return result.Partial(n*2, "second warning")
			})
			Expect(r.IsPartial()).To(BeTrue())
			Expect(r.Message()).To(Equal("first warning; second warning"))
			Expect(r.ValueOrZero()).To(Equal(20))
		})

		It("downgrades a Success continuation to Partial, preserving the earlier warning", func() {
			r := result.FlatMap(result.Partial(10, "earlier warning"), div(2))
			Expect(r.IsPartial()).To(BeTrue())
			Expect(r.Message()).To(Equal("earlier warning"))
			Expect(r.ValueOrZero()).To(Equal(5))
		})
	})

	Describe("ToPartial", func() {
		It("keeps the value for Success and Partial", func() {
			Expect(result.Success(1).ToPartial(0).ValueOrZero()).To(Equal(1))
			Expect(result.Partial(2, "m").ToPartial(0).ValueOrZero()).To(Equal(2))
		})

		It("uses the supplied fallback for Error, retaining the message", func() {
			r := result.Error[int]("bad shape").ToPartial(-1)
			Expect(r.IsPartial()).To(BeTrue())
			Expect(r.ValueOrZero()).To(Equal(-1))
			Expect(r.Message()).To(Equal("bad shape"))
		})
	})

	Describe("CombinePartial", func() {
		It("concatenates non-empty messages", func() {
			r := result.CombinePartial(1, "a", "", "b")
			Expect(r.IsPartial()).To(BeTrue())
			Expect(r.Message()).To(Equal("a; b"))
		})

		It("returns Success when every message is empty", func() {
			r := result.CombinePartial(1, "", "")
			Expect(r.IsSuccess()).To(BeTrue())
		})
	})
})

var _ = Describe("Pair", func() {
	It("maps each side independently", func() {
		p := result.NewPair("k", 1)
		Expect(result.MapFirst(p, func(s string) int { return len(s) }).First).To(Equal(1))
		Expect(result.MapSecond(p, func(i int) int { return i + 1 }).Second).To(Equal(2))
	})
})

var _ = Describe("Either", func() {
	It("folds Left and Right through the supplied functions", func() {
		left := result.Left[int, string](5)
		right := result.Right[int, string]("ok")

		Expect(left.IsLeft()).To(BeTrue())
		Expect(right.IsRight()).To(BeTrue())

		describe := func(e result.Either[int, string]) string {
			return result.Fold(e, func(i int) string { return strconv.Itoa(i) }, func(s string) string { return s })
		}
		Expect(describe(left)).To(Equal("5"))
		Expect(describe(right)).To(Equal("ok"))
	})
})
