package category

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Discover", func() {
	enc := Encoding{Field: "material", Categories: []string{"1", "2"}, Prefix: "mat"}

	It("should count known, unknown and missing values", func() {
		values := []string{"1", "1.0", "2", "3", "3.0", "", "NA", "x"}
		result := Discover(context.Background(), values, enc)

		Expect(result.Known).To(Equal([]ValueCount{{Value: "1", Count: 2}, {Value: "2", Count: 1}}))
		Expect(result.Unknown).To(Equal([]ValueCount{{Value: "3", Count: 2}, {Value: "x", Count: 1}}))
		Expect(result.Missing).To(Equal(2))
		Expect(result.HasUnknown()).To(BeTrue())
	})

	It("should report nothing unknown for configured values only", func() {
		result := Discover(context.Background(), []string{"2", "1"}, enc)
		Expect(result.HasUnknown()).To(BeFalse())
		Expect(result.Missing).To(BeZero())
	})
})
