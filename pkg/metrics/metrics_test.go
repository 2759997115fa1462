package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "": "dropped"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				So(manager.customLabels, ShouldResemble, map[string]string{"env": "test"})
			})

			Convey("And metric names carry namespace and subsystem", func() {
				manager.findingsEmitted.Add(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, mf := range families {
					if mf.GetName() == "test_namespace_leasecheck_findings_emitted_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithRefreshInterval(0),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "rentura")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.customLabels, ShouldBeEmpty)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the global manager is rebuilt from configuration", t, func() {
		prevManager, prevRegistry := globalManager, customRegistry
		defer func() { globalManager, customRegistry = prevManager, prevRegistry }()

		m := Init(
			WithNamespace("tenant"),
			WithRefreshInterval(3*time.Second),
			WithCustomLabels(map[string]string{"env": "staging"}),
		)

		Convey("Then helpers record on the new registry", func() {
			So(Global(), ShouldPointTo, m)
			So(GetRegistry() != prevRegistry, ShouldBeTrue)
			So(m.RefreshInterval(), ShouldEqual, 3*time.Second)

			RecordExtraction(1, 0, 0, 0)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			found := false
			for _, mf := range families {
				if mf.GetName() == "tenant_leasecheck_findings_emitted_total" {
					found = true
					So(mf.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "staging")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then disabling stops the analysis counters", func() {
			Init(WithMetricsEnabled(false))
			RecordExtraction(4, 0, 0, 0)
			So(testutil.ToFloat64(globalManager.findingsEmitted), ShouldEqual, 0.0)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When an extraction run is recorded", func() {
			before := testutil.ToFloat64(globalManager.findingsEmitted)
			discarded := testutil.ToFloat64(globalManager.findingsDiscarded)
			outOfRange := testutil.ToFloat64(globalManager.scoresOutOfRange)

			RecordExtraction(3, 2, 1, 1)

			Convey("Then the counters advance by the run's values", func() {
				So(testutil.ToFloat64(globalManager.findingsEmitted)-before, ShouldEqual, 3.0)
				So(testutil.ToFloat64(globalManager.findingsDiscarded)-discarded, ShouldEqual, 2.0)
				So(testutil.ToFloat64(globalManager.scoresOutOfRange)-outOfRange, ShouldEqual, 1.0)
			})
		})

		Convey("When analyses finish with different outcomes", func() {
			c := globalManager.analyses.WithLabelValues("upload", OutcomeEmpty)
			before := testutil.ToFloat64(c)

			RecordAnalysis("upload", OutcomeEmpty)
			RecordAnalysis("upload", OutcomeEmpty)

			Convey("Then each outcome is counted separately", func() {
				So(testutil.ToFloat64(c)-before, ShouldEqual, 2.0)
			})
		})

		Convey("When upstream calls are tracked", func() {
			IncUpstreamInFlight()
			IncUpstreamInFlight()
			DecUpstreamInFlight()

			Convey("Then the in-flight gauge reflects open calls", func() {
				So(testutil.ToFloat64(globalManager.upstreamInFlight), ShouldBeGreaterThanOrEqualTo, 1)
				DecUpstreamInFlight()
			})
		})

		Convey("When every helper is called", func() {
			So(func() {
				RecordFindingIntensity("3")
				RecordExtractionLatency(1.5)
				RecordSummaryLength(420)
				RecordEmptySummary()
				RecordUploadSize(128 * 1024)
				RecordRejectedUpload("not_pdf")
				RecordUpstreamLatency(1200)
				RecordUpstreamError("status")
				RecordHTTPRequest("analyse", "POST", "200")
				RecordHTTPRequestDuration("analyse", "POST", "200", 12)
				RecordErrorByComponent("upstream", "timeout")
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("analyse", "POST", "server_error")
				RecordErrorLatency("http", "server_error", 30)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("When the registry is gathered", func() {
			RecordUpstreamError("transport")
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			names := make([]string, 0, len(families))
			for _, mf := range families {
				names = append(names, mf.GetName())
			}

			Convey("Then domain metrics are exposed under the service namespace", func() {
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "rentura_leasecheck_upstream_errors_total")
				So(joined, ShouldContainSubstring, "rentura_leasecheck_findings_emitted_total")
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.findingsEmitted)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordExtraction(1, 0, 0, 0)
			}()
		}
		wg.Wait()

		Convey("Then no update is lost", func() {
			So(testutil.ToFloat64(globalManager.findingsEmitted)-before, ShouldEqual, 50.0)
		})
	})
}
