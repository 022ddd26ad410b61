package engine_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/truscore/internal/adapters/repository"
	"github.com/okian/truscore/internal/domain/model"
	"github.com/okian/truscore/internal/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func newOrchestrator(fetcher *stubFetcher, oracleStub *stubOracle) (*engine.Orchestrator, repository.Store) {
	cache := repository.NewMemStore()
	runner := engine.NewRunner(fetcher, oracleStub)
	return engine.New(cache, runner), cache
}

func TestOrchestrator_Score(t *testing.T) {
	Convey("Given an orchestrator over stub collaborators", t, func() {
		ctx := context.Background()
		fetcher := newStubFetcher()
		oracleStub := newStubOracle()
		orchestrator, cache := newOrchestrator(fetcher, oracleStub)

		Convey("When scoring a mixed batch of cached, missing, and fresh ids", func() {
			cache.Set(ctx, "A", 42.0)
			fetcher.missing["B"] = true
			oracleStub.breakdowns["C"] = uniform(7)

			resp := orchestrator.Score(ctx, []string{"A", "B", "C"})

			Convey("Then the response should align positionally with the query", func() {
				So(len(resp), ShouldEqual, 3)
				So(*resp[0], ShouldEqual, 42.0)
				So(resp[1], ShouldBeNil)
				So(*resp[2], ShouldEqual, 70.00)
			})

			Convey("And the cached id should not touch the collaborators", func() {
				So(fetcher.callCount("A"), ShouldEqual, 0)
				So(oracleStub.callCount("A"), ShouldEqual, 0)
			})

			Convey("And only the fresh success should be written to the cache", func() {
				score, ok := cache.Get(ctx, "C")
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 70.00)

				_, ok = cache.Get(ctx, "B")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the oracle fails once for an existing product", func() {
			oracleStub.failFirst["D"] = 1
			oracleStub.breakdowns["D"] = uniform(7)

			resp := orchestrator.Score(ctx, []string{"D"})

			Convey("Then the retry should recover the score", func() {
				So(*resp[0], ShouldEqual, 70.00)
			})

			Convey("And the oracle should have been invoked exactly twice", func() {
				So(oracleStub.callCount("D"), ShouldEqual, 2)
			})

			Convey("And the recovered score should be cached", func() {
				score, ok := cache.Get(ctx, "D")
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 70.00)
			})
		})

		Convey("When the oracle fails both attempts for an existing product", func() {
			oracleStub.failFirst["E"] = 2

			resp := orchestrator.Score(ctx, []string{"E"})

			Convey("Then the fallback score should fill the slot", func() {
				So(*resp[0], ShouldEqual, engine.FallbackScore)
			})

			Convey("And the oracle should not be invoked a third time", func() {
				So(oracleStub.callCount("E"), ShouldEqual, 2)
			})

			Convey("And the fallback should be cached", func() {
				score, ok := cache.Get(ctx, "E")
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, engine.FallbackScore)
			})
		})

		Convey("When the batch repeats a product id", func() {
			resp := orchestrator.Score(ctx, []string{"F", "F", "F"})

			Convey("Then every position should carry the same score", func() {
				So(len(resp), ShouldEqual, 3)
				So(*resp[0], ShouldEqual, 50.00)
				So(*resp[1], ShouldEqual, 50.00)
				So(*resp[2], ShouldEqual, 50.00)
			})

			Convey("And the pipeline should have run only once", func() {
				So(fetcher.callCount("F"), ShouldEqual, 1)
				So(oracleStub.callCount("F"), ShouldEqual, 1)
			})
		})

		Convey("When an id was scored by an earlier batch", func() {
			_ = orchestrator.Score(ctx, []string{"G"})
			firstFetches := fetcher.callCount("G")

			resp := orchestrator.Score(ctx, []string{"G"})

			Convey("Then the second batch should answer from the cache", func() {
				So(*resp[0], ShouldEqual, 50.00)
				So(fetcher.callCount("G"), ShouldEqual, firstFetches)
				So(oracleStub.callCount("G"), ShouldEqual, 1)
			})
		})

		Convey("When the batch is empty", func() {
			resp := orchestrator.Score(ctx, []string{})

			Convey("Then the response should be empty", func() {
				So(len(resp), ShouldEqual, 0)
			})
		})
	})
}

// indexRunner settles out of order and derives scores from ids so
// positional alignment can be checked against completion order.
type indexRunner struct {
	mu    sync.Mutex
	calls map[string]int
	panic map[string]bool
}

func (r *indexRunner) Run(_ context.Context, productID string) engine.Outcome {
	r.mu.Lock()
	r.calls[productID]++
	shouldPanic := r.panic[productID]
	r.mu.Unlock()

	if shouldPanic {
		panic("oracle client blew up")
	}

	n, err := strconv.Atoi(strings.TrimPrefix(productID, "prod-"))
	if err != nil {
		return engine.Outcome{Status: engine.StatusNotFound}
	}
	// Later ids settle first.
	time.Sleep(time.Duration(50-n) * time.Millisecond)
	return engine.Outcome{Status: engine.StatusSuccess, Score: float64(n)}
}

func TestOrchestrator_Dispatch(t *testing.T) {
	Convey("Given an orchestrator over an out-of-order runner", t, func() {
		ctx := context.Background()
		runner := &indexRunner{calls: make(map[string]int), panic: make(map[string]bool)}
		orchestrator := engine.New(repository.NewMemStore(), runner,
			engine.WithMaxConcurrency(4),
		)

		Convey("When scoring a batch whose tasks settle in reverse order", func() {
			ids := make([]string, 20)
			for i := range ids {
				ids[i] = "prod-" + strconv.Itoa(i)
			}
			resp := orchestrator.Score(ctx, ids)

			Convey("Then the response should preserve the request order", func() {
				So(len(resp), ShouldEqual, 20)
				for i, s := range resp {
					So(s, ShouldNotBeNil)
					So(*s, ShouldEqual, float64(i))
				}
			})
		})

		Convey("When a task panics on both attempts", func() {
			runner.panic["prod-7"] = true
			resp := orchestrator.Score(ctx, []string{"prod-7"})

			Convey("Then the panic should be contained and fall back", func() {
				So(*resp[0], ShouldEqual, engine.FallbackScore)
				So(runner.calls["prod-7"], ShouldEqual, 2)
			})
		})
	})
}

func uniform(v int) (b model.Breakdown) {
	b.Project = v
	b.Userbase = v
	b.Utility = v
	b.Security = v
	b.Team = v
	b.Tokenomics = v
	b.Marketing = v
	b.Roadmap = v
	b.Clarity = v
	b.Partnerships = v
	return b
}
