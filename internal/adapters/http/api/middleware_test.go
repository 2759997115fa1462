package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(502), ShouldEqual, "upstream_error")
		So(getErrorType(504), ShouldEqual, "upstream_error")
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(413), ShouldEqual, "payload_too_large")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(502), ShouldEqual, "high")
		So(getErrorSeverity(400), ShouldEqual, "medium")
		So(getErrorSeverity(200), ShouldEqual, "low")
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a wrapped handler", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

		Convey("Then the response passes through unchanged", func() {
			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(w.Body.String(), ShouldEqual, "short and stout")
		})
	})
}

func TestCORSMiddleware_Disabled(t *testing.T) {
	Convey("Given no allowed origins", t, func() {
		called := false
		h := CORSMiddleware(nil)(func(w http.ResponseWriter, _ *http.Request) {
			called = true
		})

		req := httptest.NewRequest(http.MethodOptions, "/api/analyse", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		h(w, req)

		Convey("Then requests reach the handler without CORS headers", func() {
			So(called, ShouldBeTrue)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})

	Convey("Given a wildcard origin", t, func() {
		h := CORSMiddleware([]string{"*"})(func(w http.ResponseWriter, _ *http.Request) {})

		req := httptest.NewRequest(http.MethodPost, "/api/findings", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()
		h(w, req)

		Convey("Then any origin is allowed", func() {
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}
