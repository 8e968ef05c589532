package extract

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Date resolution", func() {
	It("should parse the receipt date day first", func() {
		date := resolveDate(Classify(italianReceipt()), true)
		Expect(date).NotTo(BeNil())
		Expect(*date).To(Equal(time.Date(2023, time.May, 12, 0, 0, 0, 0, time.UTC)))
	})

	It("should parse the receipt date month first", func() {
		date := resolveDate(Classify(italianReceipt()), false)
		Expect(date).NotTo(BeNil())
		Expect(*date).To(Equal(time.Date(2023, time.December, 5, 0, 0, 0, 0, time.UTC)))
	})

	It("should find a date among other words", func() {
		layout := Classify([]Fragment{
			frag("SCONTRINO N. 42", 10, 0, 200, 20),
			frag("DATA 03-11-2017 ORA 12:30", 10, 30, 300, 50),
		})
		date := resolveDate(layout, true)
		Expect(date).NotTo(BeNil())
		Expect(*date).To(Equal(time.Date(2017, time.November, 3, 0, 0, 0, 0, time.UTC)))
	})

	It("should skip tokens that look like dates but do not parse", func() {
		layout := Classify([]Fragment{
			frag("31/02/2023", 10, 0, 120, 20),
			frag("28/02/2023", 10, 30, 120, 50),
		})
		date := resolveDate(layout, true)
		Expect(date).NotTo(BeNil())
		Expect(*date).To(Equal(time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)))
	})

	It("should report nothing without a date", func() {
		frags := italianReceipt()
		Expect(resolveDate(Classify(frags[:12]), true)).To(BeNil())
	})
})
