package narrative_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/moniratna/reconcile/internal/adapters/narrative"
)

func sampleRequest() narrative.Request {
	return narrative.Request{
		InvoiceID:     "inv-1",
		TransactionID: "txn-1",
		Currency:      "USD",
		Composite:     90,
		Label:         "Very High",
		AmountReason:  "exact amount match",
		DateReason:    "posted on the invoice date",
		TextReason:    "invoice number \"inv-001\" found in the transaction description",
	}
}

func TestNew(t *testing.T) {
	Convey("Given the provider registry", t, func() {
		Convey("When asking for each known provider", func() {
			for _, name := range []string{"openai", "anthropic", "mock", "", " OpenAI "} {
				g, err := narrative.New(name)
				So(err, ShouldBeNil)
				So(g, ShouldNotBeNil)
			}
		})

		Convey("When asking for an unknown provider", func() {
			g, err := narrative.New("bard")

			Convey("Then the registry refuses instead of guessing", func() {
				So(g, ShouldBeNil)
				So(errors.Is(err, narrative.ErrUnknownProvider), ShouldBeTrue)
			})
		})
	})
}

func TestMock(t *testing.T) {
	Convey("Given the mock provider", t, func() {
		ctx := context.Background()

		Convey("When used with defaults", func() {
			m := narrative.NewMock()
			text, err := m.Generate(ctx, sampleRequest())

			Convey("Then it is available and deterministic", func() {
				So(m.Available(ctx), ShouldBeTrue)
				So(err, ShouldBeNil)
				So(text, ShouldContainSubstring, "inv-1")
				So(text, ShouldContainSubstring, "txn-1")
				So(text, ShouldContainSubstring, "Very High")

				again, err := m.Generate(ctx, sampleRequest())
				So(err, ShouldBeNil)
				So(again, ShouldEqual, text)
			})
		})

		Convey("When configured unavailable", func() {
			m := narrative.NewMock(narrative.WithMockUnavailable())

			So(m.Available(ctx), ShouldBeFalse)
			_, err := m.Generate(ctx, sampleRequest())
			So(errors.Is(err, narrative.ErrUnavailable), ShouldBeTrue)
		})

		Convey("When configured to fail", func() {
			boom := errors.New("boom")
			m := narrative.NewMock(narrative.WithMockError(boom))

			So(m.Available(ctx), ShouldBeTrue)
			_, err := m.Generate(ctx, sampleRequest())
			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("When configured with fixed text", func() {
			m := narrative.NewMock(narrative.WithMockText("canned answer"))
			text, err := m.Generate(ctx, sampleRequest())

			So(err, ShouldBeNil)
			So(text, ShouldEqual, "canned answer")
		})
	})
}

func TestOpenAI(t *testing.T) {
	Convey("Given the openai provider", t, func() {
		ctx := context.Background()

		Convey("When no API key is configured", func() {
			g, err := narrative.New("openai")
			So(err, ShouldBeNil)

			Convey("Then it reports unavailable and refuses to generate", func() {
				So(g.Available(ctx), ShouldBeFalse)
				_, err := g.Generate(ctx, sampleRequest())
				So(errors.Is(err, narrative.ErrUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the API answers normally", func() {
			var gotAuth string
			var gotBody map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"role": "assistant", "content": "  a solid match  "}},
					},
				})
			}))
			defer srv.Close()

			g, err := narrative.New("openai",
				narrative.WithAPIKey("test-key"),
				narrative.WithBaseURL(srv.URL),
				narrative.WithModel("test-model"))
			So(err, ShouldBeNil)

			text, err := g.Generate(ctx, sampleRequest())

			Convey("Then the trimmed completion comes back", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "a solid match")
				So(gotAuth, ShouldEqual, "Bearer test-key")
				So(gotBody["model"], ShouldEqual, "test-model")
			})
		})

		Convey("When the API reports an error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "rate limited", "type": "rate_limit_error"},
				})
			}))
			defer srv.Close()

			g, err := narrative.New("openai",
				narrative.WithAPIKey("test-key"),
				narrative.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)

			_, err = g.Generate(ctx, sampleRequest())

			Convey("Then the API message is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "rate limited")
			})
		})

		Convey("When the API returns no choices", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
			}))
			defer srv.Close()

			g, err := narrative.New("openai",
				narrative.WithAPIKey("test-key"),
				narrative.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)

			_, err = g.Generate(ctx, sampleRequest())
			So(errors.Is(err, narrative.ErrEmptyResponse), ShouldBeTrue)
		})
	})
}

func TestAnthropic(t *testing.T) {
	Convey("Given the anthropic provider", t, func() {
		ctx := context.Background()

		Convey("When no API key is configured", func() {
			g, err := narrative.New("anthropic")
			So(err, ShouldBeNil)

			So(g.Available(ctx), ShouldBeFalse)
			_, err = g.Generate(ctx, sampleRequest())
			So(errors.Is(err, narrative.ErrUnavailable), ShouldBeTrue)
		})

		Convey("When the API answers normally", func() {
			var gotKey, gotVersion string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotKey = r.Header.Get("x-api-key")
				gotVersion = r.Header.Get("anthropic-version")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"content": []map[string]any{
						{"type": "tool_use", "text": ""},
						{"type": "text", "text": "a convincing match"},
					},
				})
			}))
			defer srv.Close()

			g, err := narrative.New("anthropic",
				narrative.WithAPIKey("test-key"),
				narrative.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)

			text, err := g.Generate(ctx, sampleRequest())

			Convey("Then the first text block comes back", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "a convincing match")
				So(gotKey, ShouldEqual, "test-key")
				So(gotVersion, ShouldNotBeEmpty)
			})
		})

		Convey("When the response carries no text blocks", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
			}))
			defer srv.Close()

			g, err := narrative.New("anthropic",
				narrative.WithAPIKey("test-key"),
				narrative.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)

			_, err = g.Generate(ctx, sampleRequest())
			So(errors.Is(err, narrative.ErrEmptyResponse), ShouldBeTrue)
		})
	})
}
