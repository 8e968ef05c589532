package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-reader/internal/extract"
	"github.com/zombor/receipt-reader/internal/geometry"
)

var _ = Describe("DecodeFragments", func() {
	var (
		input string
		set   *extract.FragmentSet
		err   error
	)

	JustBeforeEach(func() {
		set, err = DecodeFragments([]byte(input))
	})

	When("decoding a full document", func() {
		BeforeEach(func() {
			input = `{
				"width": 400,
				"height": 320,
				"fragments": [
					{"id": 7, "value": "TOTALE", "box": {"left": 10, "top": 150, "right": 100, "bottom": 170}},
					{"id": 3, "value": "20,00", "box": {"left": 330, "top": 150, "right": 390, "bottom": 170}}
				]
			}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should read the image size", func() {
			Expect(set.Width).To(Equal(400.0))
			Expect(set.Height).To(Equal(320.0))
		})

		It("should read the fragments", func() {
			Expect(set.Fragments).To(HaveLen(2))
			Expect(set.Fragments[0].Value).To(Equal("TOTALE"))
			Expect(set.Fragments[1].Box).To(Equal(geometry.Rect{Left: 330, Top: 150, Right: 390, Bottom: 170}))
		})

		It("should reassign ids by position", func() {
			Expect(set.Fragments[0].ID).To(Equal(0))
			Expect(set.Fragments[1].ID).To(Equal(1))
		})
	})

	When("decoding a bare array", func() {
		BeforeEach(func() {
			input = `[{"value": "TOTALE", "box": {"left": 10, "top": 150, "right": 100, "bottom": 170}}]`
		})

		It("should decode the fragments without an image size", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Fragments).To(HaveLen(1))
			Expect(set.Width).To(BeZero())
		})
	})

	When("the document is wrapped in a markdown code block", func() {
		BeforeEach(func() {
			input = "```json\n{\"fragments\": []}\n```"
		})

		It("should decode an empty fragment list", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Fragments).NotTo(BeNil())
			Expect(set.Fragments).To(BeEmpty())
		})
	})

	When("the document has no fragments array", func() {
		BeforeEach(func() {
			input = `{"width": 400, "height": 320}`
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("no fragments array")))
		})
	})

	When("the document is empty", func() {
		BeforeEach(func() {
			input = "  "
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the document is not JSON", func() {
		BeforeEach(func() {
			input = "TOTALE 20,00"
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("no JSON object or array")))
		})
	})

	When("the document is malformed", func() {
		BeforeEach(func() {
			input = `{"fragments": [{"value": 12}]}`
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("unmarshaling fragment document")))
		})
	})
})
