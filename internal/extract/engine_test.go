package extract

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/text/language"

	"github.com/zombor/receipt-reader/internal/geometry"
)

var _ = Describe("Engine", func() {
	var (
		opts   Options
		engine *Engine
		set    FragmentSet
		res    *Result
		err    error
	)

	BeforeEach(func() {
		opts = DefaultOptions()
		set = FragmentSet{Width: 400, Height: 320, Fragments: italianReceipt()}
	})

	JustBeforeEach(func() {
		engine = NewEngine(opts)
		res, err = engine.Analyze(set)
	})

	When("the receipt is readable", func() {
		It("should extract the total and the date", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Amount.Decimal.StringFixed(2)).To(Equal("20.00"))
			Expect(res.AmountScore).To(Equal(80))
			Expect(res.Date).NotTo(BeNil())
			Expect(*res.Date).To(Equal(time.Date(2023, time.May, 12, 0, 0, 0, 0, time.UTC)))
			Expect(res.Scheme).To(Equal("IT_PCC"))
			Expect(res.UpsideDown).To(BeFalse())
		})

		It("should encode the result as JSON", func() {
			data, err := json.Marshal(res)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{
				"amount": "20.00",
				"date": "2023-05-12",
				"scheme": "IT_PCC",
				"confidence": 80,
				"upside_down": false,
				"evidence": {
					"amount": "20.00",
					"subtotal": null,
					"price_list": "20.00",
					"cash": "50.00",
					"change": "30.00",
					"addends": 2,
					"hits": 3
				}
			}`))
		})
	})

	When("the date search is skipped", func() {
		BeforeEach(func() {
			opts.DateSearch = DateSkip
		})

		It("should not report a date", func() {
			Expect(res.Date).To(BeNil())
			Expect(res.Amount.Valid).To(BeTrue())
		})
	})

	When("the receipt is upside down", func() {
		BeforeEach(func() {
			frame := geometry.Rect{Right: set.Width, Bottom: set.Height}
			for i := range set.Fragments {
				set.Fragments[i].Box = set.Fragments[i].Box.Rotate180(frame)
			}
			opts.Orientation = OrientationForceUpsideDown
		})

		It("should turn it around before reading", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.UpsideDown).To(BeTrue())
			Expect(res.Amount.Decimal.StringFixed(2)).To(Equal("20.00"))
			Expect(res.AmountScore).To(Equal(80))
		})
	})

	When("upside down receipts are allowed", func() {
		BeforeEach(func() {
			opts.Orientation = OrientationAllowUpsideDown
		})

		It("should keep a receipt that reads fine", func() {
			Expect(res.UpsideDown).To(BeFalse())
			Expect(res.Amount.Decimal.StringFixed(2)).To(Equal("20.00"))
		})
	})

	When("the locale is American", func() {
		BeforeEach(func() {
			opts.Locale = language.AmericanEnglish
			set = FragmentSet{Fragments: []Fragment{
				frag("STORE", 100, 0, 300, 20),
				frag("MAIN ST", 130, 30, 270, 50),
				frag("BREAD", 10, 80, 80, 100),
				frag("12.00", 330, 80, 390, 100),
				frag("MILK", 10, 110, 80, 130),
				frag("8.00", 340, 110, 390, 130),
				frag("TOTAL", 10, 150, 100, 170),
				frag("20.00", 330, 150, 390, 170),
				frag("CASH", 10, 180, 120, 200),
				frag("50.00", 330, 180, 390, 200),
				frag("CHANGE", 10, 210, 80, 230),
				frag("30.00", 330, 210, 390, 230),
				frag("THANK YOU", 150, 260, 250, 280),
				frag("05/12/2023", 140, 290, 260, 310),
			}}
		})

		It("should use the US scheme", func() {
			Expect(res.Scheme).To(Equal("US"))
			Expect(res.Amount.Decimal.StringFixed(2)).To(Equal("20.00"))
			Expect(*res.Date).To(Equal(time.Date(2023, time.May, 12, 0, 0, 0, 0, time.UTC)))
		})
	})

	When("the fragment list is empty", func() {
		BeforeEach(func() {
			set = FragmentSet{Fragments: []Fragment{}}
		})

		It("should report nothing found", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Amount.Valid).To(BeFalse())
			Expect(res.Date).To(BeNil())
			Expect(res.Scheme).To(Equal("IT_PCC"))
		})
	})

	When("the fragment list is nil", func() {
		BeforeEach(func() {
			set = FragmentSet{}
		})

		It("should fail with a contract violation", func() {
			Expect(errors.Is(err, ErrContractViolation)).To(BeTrue())
			Expect(res).To(BeNil())
		})
	})

	When("a box is inverted", func() {
		BeforeEach(func() {
			set.Fragments[3].Box = geometry.Rect{Left: 390, Top: 80, Right: 330, Bottom: 100}
		})

		It("should fail with a contract violation", func() {
			Expect(errors.Is(err, ErrContractViolation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("fragment 3"))
		})
	})

	When("the image size is negative", func() {
		BeforeEach(func() {
			set.Width = -1
		})

		It("should fail with a contract violation", func() {
			Expect(errors.Is(err, ErrContractViolation)).To(BeTrue())
		})
	})

	It("should serve concurrent analyses", func() {
		var wg sync.WaitGroup
		amounts := make([]string, 8)
		for i := range amounts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				r, err := engine.Analyze(FragmentSet{Fragments: italianReceipt()})
				Expect(err).NotTo(HaveOccurred())
				amounts[i] = r.Amount.Decimal.StringFixed(2)
			}(i)
		}
		wg.Wait()
		Expect(amounts).To(HaveEach("20.00"))
	})
})

var _ = Describe("SchemeFor", func() {
	It("should pick the scheme of the region", func() {
		Expect(SchemeFor(language.MustParse("it-IT")).Code).To(Equal("IT_PCC"))
		Expect(SchemeFor(language.BritishEnglish).Code).To(Equal("UK"))
		Expect(SchemeFor(language.AmericanEnglish).Code).To(Equal("US"))
	})

	It("should fall back to the Italian scheme", func() {
		Expect(SchemeFor(language.MustParse("fr-FR")).Code).To(Equal("IT_PCC"))
	})

	It("should carry date order and decimal separator", func() {
		Expect(SchemeITPCC.DayFirst).To(BeTrue())
		Expect(SchemeITPCC.DecimalComma).To(BeTrue())
		Expect(SchemeUS.DayFirst).To(BeFalse())
		Expect(SchemeUK.DecimalComma).To(BeFalse())
	})
})
