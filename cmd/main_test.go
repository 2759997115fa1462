package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/rentura/internal/config"
	"github.com/okian/rentura/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func analysisStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"checks":[],"summary":"• Kaution drei Monatsmieten\nWahrscheinlichkeit der Unwirksamkeit: 9/10"}`)
	}))
}

func pdfUpload(target string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "vertrag.pdf")
	_, _ = part.Write([]byte("%PDF-1.7"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMux(t *testing.T) {
	convey.Convey("Given the wired application", t, func() {
		ctx := context.Background()
		up := analysisStub()
		defer up.Close()

		cfg := config.New()
		cfg.UpstreamURL = up.URL
		cfg.UpstreamTimeout = 5 * time.Second

		log := logger.Get()
		svc, err := newService(ctx, cfg, log)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc, log)

		convey.Convey("When a PDF is posted to the API", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, pdfUpload("/api/analyse"))

			convey.Convey("Then the upstream summary is ranked into findings", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var body struct {
					Findings []struct {
						Text      string `json:"text"`
						Intensity int    `json:"intensity"`
					} `json:"findings"`
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body.Findings, convey.ShouldHaveLength, 1)
				convey.So(body.Findings[0].Text, convey.ShouldEqual, "Kaution drei Monatsmieten")
				convey.So(body.Findings[0].Intensity, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When a PDF is posted to the page", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, pdfUpload("/"))

			convey.Convey("Then the result page is rendered", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Kaution drei Monatsmieten")
			})
		})

		convey.Convey("When the docs and probes are requested", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestNewMetrics(t *testing.T) {
	convey.Convey("Given metrics settings in the configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.MetricsNamespace = "tenant"
		cfg.MetricsLabels = []string{"env=staging"}
		cfg.MetricsRefreshInterval = 3 * time.Second

		mm := newMetrics(cfg)

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc, logger.Get())

		convey.Convey("Then the manager carries the refresh interval", func() {
			convey.So(mm.RefreshInterval(), convey.ShouldEqual, 3*time.Second)
		})

		convey.Convey("And /healthz exposes the configured namespace and labels", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `tenant_leasecheck_findings_emitted_total{env="staging"}`)
		})
	})
}

func TestWriteTimeout(t *testing.T) {
	convey.Convey("The write timeout outlasts the upstream timeout", t, func() {
		cfg := config.New()
		cfg.UpstreamTimeout = time.Minute
		convey.So(writeTimeout(cfg), convey.ShouldBeGreaterThan, cfg.UpstreamTimeout)
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a server on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Get()) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the address is unusable", func() {
			cfg.Addr = "256.0.0.1:bad"
			err := run(context.Background(), cfg, logger.Get())

			convey.Convey("Then the listen error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
