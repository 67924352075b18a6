package category

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Canonical", func() {
	DescribeTable("numeric spellings",
		func(raw, want string) {
			got, ok := Canonical(raw)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(want))
		},
		Entry("integer", "1", "1"),
		Entry("float with zero fraction", "1.0", "1"),
		Entry("surrounding space", " 2 ", "2"),
		Entry("exponent", "2e0", "2"),
		Entry("fraction kept", "1.5", "1.5"),
		Entry("text trimmed", " steel ", "steel"),
	)

	It("should report every missing token as missing", func() {
		for _, tok := range MissingTokens {
			_, ok := Canonical(tok)
			Expect(ok).To(BeFalse(), "token %q", tok)
		}
		Expect(IsMissing("  NA ")).To(BeTrue())
		Expect(IsMissing("0")).To(BeFalse())
	})
})

var _ = Describe("Match", func() {
	var enc Encoding

	BeforeEach(func() {
		var err error
		enc, err = Encoding{Field: "material", Categories: []string{"1", "2.0"}, Prefix: "mat"}.Normalize()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should normalise configured categories", func() {
		Expect(enc.Categories).To(Equal([]string{"1", "2"}))
		Expect(enc.Columns()).To(Equal([]string{"mat_1", "mat_2"}))
	})

	It("should match equivalent spellings", func() {
		Expect(Match("1.0", enc)).To(Equal(0))
		Expect(Match(" 2", enc)).To(Equal(1))
	})

	It("should return Unknown for other and missing values", func() {
		Expect(Match("3", enc)).To(Equal(Unknown))
		Expect(Match("NaN", enc)).To(Equal(Unknown))
		Expect(Match("", enc)).To(Equal(Unknown))
	})

	It("should reject colliding categories", func() {
		_, err := Encoding{Field: "material", Categories: []string{"1", "1.0"}}.Normalize()
		Expect(err).To(MatchError(errDuplicateValue))
	})

	It("should reject an empty category list", func() {
		_, err := Encoding{Field: "material"}.Normalize()
		Expect(err).To(MatchError(errNoCategories))
	})
})
