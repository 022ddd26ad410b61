package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	repository "github.com/okian/truscore/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	Convey("Given a new in-memory score cache", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("When reading an unknown product id", func() {
			_, ok := store.Get(ctx, "unknown")

			Convey("Then it should report a miss", func() {
				So(ok, ShouldBeFalse)
				So(store.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When storing a score", func() {
			store.Set(ctx, "prod-1", 82.5)

			Convey("Then it should be readable", func() {
				score, ok := store.Get(ctx, "prod-1")
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 82.5)
				So(store.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When overwriting an existing score", func() {
			store.Set(ctx, "prod-1", 82.5)
			store.Set(ctx, "prod-1", 41.0)

			Convey("Then the last write should win", func() {
				score, ok := store.Get(ctx, "prod-1")
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 41.0)
				So(store.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When configured with a custom shard count", func() {
			sharded := repository.NewMemStore(repository.WithShardCount(3))
			for i := 0; i < 100; i++ {
				sharded.Set(ctx, fmt.Sprintf("prod-%d", i), float64(i))
			}

			Convey("Then every entry should remain reachable", func() {
				So(sharded.Len(ctx), ShouldEqual, 100)
				for i := 0; i < 100; i++ {
					score, ok := sharded.Get(ctx, fmt.Sprintf("prod-%d", i))
					So(ok, ShouldBeTrue)
					So(score, ShouldEqual, float64(i))
				}
			})
		})
	})
}

func TestMemStoreConcurrency(t *testing.T) {
	Convey("Given concurrent readers and writers", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					id := fmt.Sprintf("prod-%d", i%50)
					store.Set(ctx, id, float64(g))
					_, _ = store.Get(ctx, id)
				}
			}(g)
		}
		wg.Wait()

		Convey("Then the store should hold one entry per distinct key", func() {
			So(store.Len(ctx), ShouldEqual, 50)
		})
	})
}
