package scanning

import (
	"image"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/receipt-reader/internal/geometry"
)

var _ = Describe("fragmentsFromBoxes", func() {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(10, 150, 100, 170), Word: "TOTALE", Confidence: 91},
		{Box: image.Rect(120, 150, 125, 170), Word: "  ", Confidence: 95},
		{Box: image.Rect(200, 150, 210, 170), Word: "~", Confidence: 12},
		{Box: image.Rect(390, 170, 330, 150), Word: "20,00", Confidence: 88},
	}

	It("should keep the non-blank words above the confidence floor", func() {
		set := fragmentsFromBoxes(boxes, 30)
		Expect(set.Fragments).To(HaveLen(2))
		Expect(set.Fragments[0].Value).To(Equal("TOTALE"))
		Expect(set.Fragments[1].Value).To(Equal("20,00"))
	})

	It("should number fragments densely", func() {
		set := fragmentsFromBoxes(boxes, 30)
		Expect(set.Fragments[0].ID).To(Equal(0))
		Expect(set.Fragments[1].ID).To(Equal(1))
	})

	It("should produce well-formed boxes", func() {
		set := fragmentsFromBoxes(boxes, 0)
		Expect(set.Fragments).To(HaveLen(3))
		Expect(set.Fragments[2].Box).To(Equal(geometry.Rect{Left: 330, Top: 150, Right: 390, Bottom: 170}))
	})

	It("should return an empty non-nil list for no words", func() {
		set := fragmentsFromBoxes(nil, 0)
		Expect(set.Fragments).NotTo(BeNil())
		Expect(set.Fragments).To(BeEmpty())
	})
})
