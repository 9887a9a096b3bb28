package dataversion_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/astronomer/datafixers/pkg/dataversion"
)

var _ = Describe("DataVersion", func() {
	It("compares by integer value", func() {
		Expect(dataversion.DataVersion(1).Compare(dataversion.DataVersion(2))).To(Equal(-1))
		Expect(dataversion.DataVersion(2).Compare(dataversion.DataVersion(1))).To(Equal(1))
		Expect(dataversion.DataVersion(2).Compare(dataversion.DataVersion(2))).To(Equal(0))
	})

	It("tolerates gaps: nothing requires density", func() {
		versions := []dataversion.DataVersion{1, 5, 100}
		Expect(versions[0].Less(versions[1])).To(BeTrue())
		Expect(versions[1].Less(versions[2])).To(BeTrue())
	})
})
