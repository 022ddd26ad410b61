package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/truscore/internal/domain/model"
	"github.com/okian/truscore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func uniformBreakdown(v int) model.Breakdown {
	return model.Breakdown{
		Project:      v,
		Userbase:     v,
		Utility:      v,
		Security:     v,
		Team:         v,
		Tokenomics:   v,
		Marketing:    v,
		Roadmap:      v,
		Clarity:      v,
		Partnerships: v,
	}
}

func TestCriteria(t *testing.T) {
	Convey("Given the fixed criterion table", t, func() {
		criteria := scoring.Criteria()

		Convey("Then it should enumerate exactly ten criteria", func() {
			So(len(criteria), ShouldEqual, 10)
			So(scoring.CriterionCount(), ShouldEqual, 10)
		})

		Convey("And the weights should sum to exactly 10", func() {
			var sum float64
			for _, c := range criteria {
				sum += c.Weight
			}
			So(sum, ShouldAlmostEqual, 10.0, 1e-9)
		})

		Convey("And every criterion should carry a distinct name", func() {
			names := make(map[string]bool)
			for _, c := range criteria {
				names[c.Name] = true
			}
			So(len(names), ShouldEqual, 10)
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given the aggregation function", t, func() {
		Convey("When every criterion is 5 (mid-range, untouched by normalization)", func() {
			score := scoring.Aggregate(uniformBreakdown(5))

			Convey("Then the score should be exactly 50.00", func() {
				So(score, ShouldEqual, 50.00)
			})
		})

		Convey("When every criterion is 10 (damped to 9.8)", func() {
			score := scoring.Aggregate(uniformBreakdown(10))

			Convey("Then the score should be exactly 98.00", func() {
				So(score, ShouldEqual, 98.00)
			})
		})

		Convey("When every criterion is 1 (boosted to 1.1)", func() {
			score := scoring.Aggregate(uniformBreakdown(1))

			Convey("Then the score should be exactly 11.00", func() {
				So(score, ShouldEqual, 11.00)
			})
		})

		Convey("When every criterion is 0", func() {
			score := scoring.Aggregate(uniformBreakdown(0))

			Convey("Then the score should be 0", func() {
				So(score, ShouldEqual, 0.00)
			})
		})

		Convey("When aggregating any valid breakdown", func() {
			Convey("Then the score should stay within [0, 100]", func() {
				for v := 0; v <= 10; v++ {
					score := scoring.Aggregate(uniformBreakdown(v))
					So(score, ShouldBeGreaterThanOrEqualTo, 0)
					So(score, ShouldBeLessThanOrEqualTo, 100)
				}
			})
		})

		Convey("When called twice with an identical breakdown", func() {
			b := model.Breakdown{
				Project: 7, Userbase: 3, Utility: 9, Security: 2, Team: 5,
				Tokenomics: 6, Marketing: 10, Roadmap: 1, Clarity: 8, Partnerships: 4,
			}

			Convey("Then both calls should yield the same score", func() {
				So(scoring.Aggregate(b), ShouldEqual, scoring.Aggregate(b))
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given breakdown validation", t, func() {
		Convey("When every criterion is within range", func() {
			So(scoring.Validate(uniformBreakdown(7)), ShouldBeNil)
		})

		Convey("When a criterion exceeds 10", func() {
			b := uniformBreakdown(5)
			b.Security = 11
			err := scoring.Validate(b)

			Convey("Then it should report the out-of-range criterion", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, scoring.ErrCriterionOutOfRange), ShouldBeTrue)
			})
		})

		Convey("When a criterion is negative", func() {
			b := uniformBreakdown(5)
			b.Team = -1

			So(errors.Is(scoring.Validate(b), scoring.ErrCriterionOutOfRange), ShouldBeTrue)
		})
	})
}

func TestFromMap(t *testing.T) {
	Convey("Given a criterion-name keyed value map", t, func() {
		full := func() map[string]int {
			values := make(map[string]int)
			for _, c := range scoring.Criteria() {
				values[c.Name] = 5
			}
			return values
		}

		Convey("When the map holds exactly the known criteria", func() {
			b, err := scoring.FromMap(full())

			Convey("Then it should build the breakdown", func() {
				So(err, ShouldBeNil)
				So(b, ShouldResemble, uniformBreakdown(5))
			})
		})

		Convey("When a criterion is missing", func() {
			values := full()
			delete(values, "roadmap")
			_, err := scoring.FromMap(values)

			So(errors.Is(err, scoring.ErrMalformedBreakdown), ShouldBeTrue)
		})

		Convey("When an unknown criterion is present", func() {
			values := full()
			values["sentiment"] = 5
			_, err := scoring.FromMap(values)

			So(errors.Is(err, scoring.ErrMalformedBreakdown), ShouldBeTrue)
		})

		Convey("When a value is out of range", func() {
			values := full()
			values["marketing"] = 42
			_, err := scoring.FromMap(values)

			So(errors.Is(err, scoring.ErrCriterionOutOfRange), ShouldBeTrue)
		})
	})
}
