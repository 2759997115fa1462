package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rentura/internal/adapters/upstream"
	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/model"
	"github.com/okian/rentura/internal/domain/presenter"
)

type stubAnalyser struct {
	summary string
	err     error
	calls   int
}

func (s *stubAnalyser) AnalyseDocument(_ context.Context, _ string, r io.Reader) (model.Report, error) {
	s.calls++
	_, _ = io.Copy(io.Discard, r)
	if s.err != nil {
		return model.Report{}, s.err
	}
	list := findings.Extract(s.summary)
	return model.Report{ID: "r-1", Findings: list, View: presenter.New().Present(list)}, nil
}

func upload(filename string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSiteHandler(t *testing.T) {
	Convey("Given a registered site handler", t, func() {
		ctx := context.Background()
		stub := &stubAnalyser{}
		mux := http.NewServeMux()
		Register(ctx, mux, NewRootHandler(stub))

		Convey("When the page is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			body := w.Body.String()

			Convey("Then the upload form, intro and disclaimer are rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(body, ShouldContainSubstring, `enctype="multipart/form-data"`)
				So(body, ShouldContainSubstring, "Prüfen Sie hier Ihren Mietvertrag!")
				So(body, ShouldContainSubstring, "Rentura ersetzt keine Rechtsberatung")
				So(body, ShouldNotContainSubstring, "langrechtsanwalt.com")
				So(body, ShouldContainSubstring, "max. 20 MB")
			})
		})

		Convey("When the stylesheet is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))

			Convey("Then it is served from the embedded assets", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, ".dot.filled")
			})
		})

		Convey("When an unknown path is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/some-asset", nil))

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the method is not supported", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/", nil))

			Convey("Then 405 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestSiteUpload(t *testing.T) {
	Convey("Given the upload page", t, func() {
		ctx := context.Background()

		Convey("When a lease with risky clauses is uploaded", func() {
			stub := &stubAnalyser{summary: "• **Kleinreparaturen** bis 300 €\nWahrscheinlichkeit der Unwirksamkeit: 8/10\n" +
				"• Staffelmiete\nWahrscheinlichkeit der Unwirksamkeit: 10/10"}
			mux := http.NewServeMux()
			Register(ctx, mux, NewRootHandler(stub))

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, upload("vertrag.pdf", []byte("%PDF")))
			body := w.Body.String()

			Convey("Then ranked rows with dots and lawyer links are rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(stub.calls, ShouldEqual, 1)
				So(strings.Index(body, "Staffelmiete"), ShouldBeLessThan, strings.Index(body, "Kleinreparaturen"))
				So(body, ShouldContainSubstring, "<strong>Kleinreparaturen</strong> bis 300 €")
				So(strings.Count(body, `class="dot filled"`), ShouldEqual, 5+3)
				So(strings.Count(body, `class="dot empty"`), ShouldEqual, 2)
				So(body, ShouldContainSubstring, "https://schmid-mietrecht.de")
				So(body, ShouldContainSubstring, "Fachanwältin Dr. Berger")
				So(body, ShouldContainSubstring, `enctype="multipart/form-data"`)
			})
		})

		Convey("When nothing looks risky", func() {
			mux := http.NewServeMux()
			Register(ctx, mux, NewRootHandler(&stubAnalyser{summary: ""}))

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, upload("vertrag.pdf", []byte("%PDF")))

			Convey("Then the empty message is shown", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Es scheint als wären alle Klausel in Ihrem Vertrag zulässig.")
				So(w.Body.String(), ShouldNotContainSubstring, `class="dot`)
			})
		})

		Convey("When a non-PDF file is uploaded", func() {
			stub := &stubAnalyser{}
			mux := http.NewServeMux()
			Register(ctx, mux, NewRootHandler(stub))

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, upload("vertrag.txt", []byte("hello")))

			Convey("Then the error replaces the results and the form stays", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(stub.calls, ShouldEqual, 0)
				So(w.Body.String(), ShouldContainSubstring, "Nur PDF-Dateien akzeptiert")
				So(w.Body.String(), ShouldContainSubstring, `enctype="multipart/form-data"`)
			})
		})

		Convey("When the analysis service fails", func() {
			stub := &stubAnalyser{err: &upstream.StatusError{StatusCode: 500, Body: "<b>kaputt</b>"}}
			mux := http.NewServeMux()
			Register(ctx, mux, NewRootHandler(stub))

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, upload("vertrag.pdf", []byte("%PDF")))

			Convey("Then the upstream text is shown escaped", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(w.Body.String(), ShouldContainSubstring, "&lt;b&gt;kaputt&lt;/b&gt;")
				So(w.Body.String(), ShouldContainSubstring, `data-code="upstream_error"`)
			})
		})

		Convey("When the upload is larger than allowed", func() {
			stub := &stubAnalyser{}
			mux := http.NewServeMux()
			Register(ctx, mux, NewRootHandler(stub, WithMaxUploadBytes(16)))

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, upload("vertrag.pdf", bytes.Repeat([]byte("x"), 64)))

			Convey("Then 413 is rendered", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(stub.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then registering should panic", func() {
			So(func() {
				Register(context.Background(), nil, NewRootHandler(&stubAnalyser{}))
			}, ShouldPanic)
		})
	})
}

func TestSiteErrors(t *testing.T) {
	Convey("Given site error constants", t, func() {
		So(ErrRender, ShouldNotBeNil)
		So(errors.Is(errors.Join(ErrRender, errors.New("x")), ErrRender), ShouldBeTrue)
	})
}
