package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/text/language"
)

var _ = Describe("Options", func() {
	It("should provide defaults", func() {
		opts := DefaultOptions()
		Expect(opts.TotalSearch).To(Equal(TotalDeep))
		Expect(opts.DateSearch).To(Equal(DateNormal))
		Expect(opts.ProductsSearch).To(Equal(ProductsDeep))
		Expect(opts.Orientation).To(Equal(OrientationNormal))
		Expect(opts.PriceEditing).To(Equal(PriceEditingAllowStrict))
		Expect(opts.Locale).To(Equal(language.Italian))
	})

	It("should parse names case-insensitively", func() {
		total, err := ParseTotalSearch("extended-search")
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(TotalExtended))

		orientation, err := ParseOrientation(" allow_upside_down ")
		Expect(err).NotTo(HaveOccurred())
		Expect(orientation).To(Equal(OrientationAllowUpsideDown))

		editing, err := ParsePriceEditing("ALLOW_LOOSE")
		Expect(err).NotTo(HaveOccurred())
		Expect(editing).To(Equal(PriceEditingAllowLoose))

		products, err := ParseProductsSearch("normal")
		Expect(err).NotTo(HaveOccurred())
		Expect(products).To(Equal(ProductsNormal))

		date, err := ParseDateSearch("skip")
		Expect(err).NotTo(HaveOccurred())
		Expect(date).To(Equal(DateSkip))
	})

	It("should reject unknown names", func() {
		_, err := ParseTotalSearch("FAST")
		Expect(err).To(MatchError(ContainSubstring("invalid total search")))
	})

	It("should print names", func() {
		Expect(TotalExtended.String()).To(Equal("EXTENDED_SEARCH"))
		Expect(OrientationForceUpsideDown.String()).To(Equal("FORCE_UPSIDE_DOWN"))
		Expect(PriceEditing(9).String()).To(Equal("UNKNOWN(9)"))
	})
})
