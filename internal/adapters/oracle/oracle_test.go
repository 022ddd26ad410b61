package oracle_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/truscore/internal/adapters/oracle"
	"github.com/okian/truscore/internal/domain/model"
	"github.com/okian/truscore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// chatReply packages a raw content string as a chat completions
// response body.
func chatReply(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return body
}

func reviewContent(rating int) string {
	breakdown := make(map[string]int)
	for _, c := range scoring.Criteria() {
		breakdown[c.Name] = rating
	}
	content, _ := json.Marshal(map[string]any{
		"product":   "Acme Protocol",
		"breakdown": breakdown,
	})
	return string(content)
}

func TestClient_Review(t *testing.T) {
	Convey("Given an oracle client against a chat completions server", t, func() {
		ctx := context.Background()
		product := &model.Product{
			ID:          "prod-1",
			Name:        "Acme Protocol",
			Description: "A settlement layer for acme widgets.",
			Category:    "DeFi",
		}

		Convey("When the server replies with a well-formed review", func() {
			var gotPath, gotAuth string
			var gotReq map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&gotReq)
				_, _ = w.Write(chatReply(reviewContent(7)))
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test", oracle.WithModel("gpt-4o-mini"))
			review, err := client.Review(ctx, product)

			Convey("Then the review should carry the validated breakdown", func() {
				So(err, ShouldBeNil)
				So(review.Product, ShouldEqual, "Acme Protocol")
				So(review.Breakdown.Security, ShouldEqual, 7)
				So(scoring.Aggregate(review.Breakdown), ShouldEqual, 70.00)
			})

			Convey("And the request should target the completions endpoint with auth", func() {
				So(gotPath, ShouldEqual, "/chat/completions")
				So(gotAuth, ShouldEqual, "Bearer sk-test")
				So(gotReq["model"], ShouldEqual, "gpt-4o-mini")
			})

			Convey("And the prompt should mention the product under review", func() {
				messages := gotReq["messages"].([]any)
				So(len(messages), ShouldEqual, 2)
				user := messages[1].(map[string]any)
				So(user["content"], ShouldContainSubstring, "Acme Protocol")
			})
		})

		Convey("When the reply breakdown misses a criterion", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				content := `{"product":"Acme Protocol","breakdown":{"project":5}}`
				_, _ = w.Write(chatReply(content))
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should mark the reply malformed", func() {
				So(errors.Is(err, oracle.ErrMalformedReply), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrMalformedBreakdown), ShouldBeTrue)
			})
		})

		Convey("When the reply breakdown carries an unknown criterion", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				breakdown := make(map[string]int)
				for _, c := range scoring.Criteria() {
					breakdown[c.Name] = 5
				}
				breakdown["sentiment"] = 5
				content, _ := json.Marshal(map[string]any{
					"product":   "Acme Protocol",
					"breakdown": breakdown,
				})
				_, _ = w.Write(chatReply(string(content)))
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should mark the reply malformed", func() {
				So(errors.Is(err, oracle.ErrMalformedReply), ShouldBeTrue)
			})
		})

		Convey("When a rating falls outside the 0 to 10 range", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(chatReply(reviewContent(11)))
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should carry the range violation", func() {
				So(errors.Is(err, oracle.ErrMalformedReply), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrCriterionOutOfRange), ShouldBeTrue)
			})
		})

		Convey("When the reply content is not JSON", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(chatReply("I cannot rate this product."))
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should mark the reply malformed", func() {
				So(errors.Is(err, oracle.ErrMalformedReply), ShouldBeTrue)
			})
		})

		Convey("When the server replies with no choices", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should be the empty reply sentinel", func() {
				So(errors.Is(err, oracle.ErrEmptyReply), ShouldBeTrue)
			})
		})

		Convey("When the server replies with an error status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			}))
			defer server.Close()

			client := oracle.NewClient(server.URL, "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should mark the call failed", func() {
				So(errors.Is(err, oracle.ErrGenerateFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "429")
			})
		})

		Convey("When the server is unreachable", func() {
			client := oracle.NewClient("http://127.0.0.1:1", "sk-test")
			_, err := client.Review(ctx, product)

			Convey("Then the error should mark the call failed", func() {
				So(errors.Is(err, oracle.ErrGenerateFailed), ShouldBeTrue)
			})
		})
	})
}
