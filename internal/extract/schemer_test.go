package extract

import (
	"math/bits"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-reader/internal/geometry"
)

var _ = Describe("zoneOf", func() {
	envelope := geometry.Rect{Left: 0, Top: 0, Right: 130, Bottom: 100}
	at := func(centerX float64) geometry.Rect {
		return geometry.Rect{Left: centerX - 2, Top: 10, Right: centerX + 2, Bottom: 20}
	}

	It("should put 3/13 on the left", func() {
		Expect(zoneOf(at(30), envelope)).To(Equal(TagLeft))
	})

	It("should put 7/13 in the center", func() {
		Expect(zoneOf(at(70), envelope)).To(Equal(TagCenter))
	})

	It("should put 12/13 on the right", func() {
		Expect(zoneOf(at(120), envelope)).To(Equal(TagRight))
	})

	It("should resolve grid lines to the lower bucket", func() {
		Expect(zoneOf(at(40), envelope)).To(Equal(TagLeft))
		Expect(zoneOf(at(90), envelope)).To(Equal(TagCenter))
	})

	It("should measure from the envelope's left edge", func() {
		shifted := geometry.Rect{Left: 100, Top: 0, Right: 230, Bottom: 100}
		Expect(zoneOf(at(130), shifted)).To(Equal(TagLeft))
		Expect(zoneOf(at(220), shifted)).To(Equal(TagRight))
	})

	It("should fall back to center on a degenerate envelope", func() {
		Expect(zoneOf(at(30), geometry.Rect{Left: 30, Top: 0, Right: 30, Bottom: 100})).To(Equal(TagCenter))
	})
})

var _ = Describe("Classify", func() {
	var layout *Layout

	When("classifying a regular receipt", func() {
		BeforeEach(func() {
			layout = Classify(italianReceipt())
		})

		It("should compute the envelope of the text", func() {
			Expect(layout.Envelope()).To(Equal(geometry.Rect{Left: 10, Top: 0, Right: 390, Bottom: 310}))
		})

		It("should tag the centered header as introduction", func() {
			Expect(layout.Tags(0)).To(Equal(TagCenter | TagIntroduction))
			Expect(layout.Tags(1)).To(Equal(TagCenter | TagIntroduction))
		})

		It("should tag the left column as products and the right column as prices", func() {
			for _, id := range []int{2, 4, 6, 8, 10} {
				Expect(layout.Tags(id)).To(Equal(TagLeft|TagProducts), "fragment %d", id)
			}
			for _, id := range []int{3, 5, 7, 9, 11} {
				Expect(layout.Tags(id)).To(Equal(TagRight|TagPrices), "fragment %d", id)
			}
		})

		It("should tag the centered footer as conclusion", func() {
			Expect(layout.Tags(12)).To(Equal(TagCenter | TagConclusion))
			Expect(layout.Tags(13)).To(Equal(TagCenter | TagConclusion))
		})

		It("should expose the region of each structural tag", func() {
			prices, ok := layout.Region(TagPrices)
			Expect(ok).To(BeTrue())
			Expect(prices).To(Equal(geometry.Rect{Left: 330, Top: 80, Right: 390, Bottom: 230}))
		})

		It("should list tagged fragments in natural order", func() {
			var values []string
			for _, f := range layout.Tagged(TagConclusion) {
				values = append(values, f.Value)
			}
			Expect(values).To(Equal([]string{"GRAZIE", "12/05/2023"}))
		})

		It("should average glyph sizes over non-empty fragments", func() {
			Expect(layout.AverageCharHeight()).To(Equal(20.0))
			Expect(layout.AverageCharWidth()).To(BeNumerically(">", 0))
		})
	})

	When("no text is centered", func() {
		BeforeEach(func() {
			var frags []Fragment
			for row := 0; row < 10; row++ {
				top := float64(row * 25)
				frags = append(frags, frag("ITEM", 10, top, 90, top+20), frag("1,00", 340, top, 390, top+20))
			}
			layout = Classify(frags)
		})

		It("should leave the introduction and conclusion empty", func() {
			_, ok := layout.Region(TagIntroduction)
			Expect(ok).To(BeFalse())
			_, ok = layout.Region(TagConclusion)
			Expect(ok).To(BeFalse())
		})

		It("should split the columns into products and prices", func() {
			for id := 0; id < layout.Len(); id += 2 {
				Expect(layout.Tags(id)).To(Equal(TagLeft | TagProducts))
				Expect(layout.Tags(id + 1)).To(Equal(TagRight | TagPrices))
			}
		})
	})

	When("only a footer is centered", func() {
		BeforeEach(func() {
			var frags []Fragment
			for row := 0; row < 10; row++ {
				top := float64(row * 25)
				frags = append(frags, frag("ITEM", 10, top, 90, top+20), frag("1,00", 340, top, 390, top+20))
			}
			frags = append(frags, frag("GRAZIE", 150, 250, 250, 270), frag("ARRIVEDERCI", 150, 275, 250, 295))
			layout = Classify(frags)
		})

		It("should leave the introduction empty", func() {
			_, ok := layout.Region(TagIntroduction)
			Expect(ok).To(BeFalse())
		})

		It("should tag the footer as conclusion", func() {
			Expect(layout.Tags(20)).To(Equal(TagCenter | TagConclusion))
			Expect(layout.Tags(21)).To(Equal(TagCenter | TagConclusion))
			region, ok := layout.Region(TagConclusion)
			Expect(ok).To(BeTrue())
			Expect(region).To(Equal(geometry.Rect{Left: 150, Top: 250, Right: 250, Bottom: 295}))
		})

		It("should keep the columns as products and prices", func() {
			for id := 0; id < 20; id += 2 {
				Expect(layout.Tags(id)).To(Equal(TagLeft | TagProducts))
				Expect(layout.Tags(id + 1)).To(Equal(TagRight | TagPrices))
			}
		})
	})

	It("should leave exactly one zone and one structural tag on every fragment", func() {
		var frags []Fragment
		for row := 0; row < 40; row++ {
			top := float64(row * 25)
			switch {
			case row%7 == 0:
				frags = append(frags, frag("HEADER", 120, top, 280, top+20))
			case row%5 == 0:
				frags = append(frags, frag("ITEM", 10, top, 90, top+20), frag("NOTE", 170, top, 230, top+20))
			default:
				frags = append(frags, frag("ITEM", 10, top, 90, top+20), frag("1,00", 340, top, 390, top+20))
			}
		}
		layout := Classify(frags)
		Expect(layout.Len()).To(Equal(len(frags)))
		for id := range frags {
			tags := layout.Tags(id)
			Expect(bits.OnesCount8(uint8(tags.Zone()))).To(Equal(1), "fragment %d has %s", id, tags)
			Expect(bits.OnesCount8(uint8(tags.Structure()))).To(Equal(1), "fragment %d has %s", id, tags)
		}
	})

	It("should reassign ids to positions", func() {
		frags := []Fragment{
			{ID: 42, Value: "A", Box: geometry.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}},
			{ID: 7, Value: "B", Box: geometry.Rect{Left: 0, Top: 20, Right: 10, Bottom: 30}},
		}
		layout := Classify(frags)
		Expect(layout.Fragment(0).ID).To(Equal(0))
		Expect(layout.Fragment(1).ID).To(Equal(1))
		Expect(frags[0].ID).To(Equal(42))
	})

	It("should handle an empty set", func() {
		layout := Classify([]Fragment{})
		Expect(layout.Len()).To(Equal(0))
		Expect(layout.Fragments()).To(BeEmpty())
	})
})

var _ = Describe("TagSet", func() {
	It("should retag only the structural axis", func() {
		s := TagLeft | TagIntroduction | TagConclusion
		Expect(s.Retag(TagProducts)).To(Equal(TagLeft | TagProducts))
	})

	It("should render names", func() {
		Expect((TagRight | TagPrices).String()).To(Equal("RIGHT|PRICES"))
	})
})
