package presenter_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/presenter"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIndicator(t *testing.T) {
	Convey("Given intensities across and beyond the scale", t, func() {
		So(presenter.Indicator(0), ShouldResemble, []presenter.Cell{"empty", "empty", "empty", "empty", "empty"})
		So(presenter.Indicator(3), ShouldResemble, []presenter.Cell{"filled", "filled", "filled", "empty", "empty"})
		So(presenter.Indicator(5), ShouldResemble, []presenter.Cell{"filled", "filled", "filled", "filled", "filled"})
		So(presenter.Indicator(9), ShouldHaveLength, presenter.IndicatorCells)
		So(presenter.Filled(presenter.Indicator(9)), ShouldEqual, 5)
		So(presenter.Filled(presenter.Indicator(-2)), ShouldEqual, 0)
	})
}

func TestPresenter_Present(t *testing.T) {
	Convey("Given a presenter with defaults", t, func() {
		p := presenter.New()

		Convey("When the list is empty", func() {
			view := p.Present(nil)

			Convey("Then only the empty message is shown", func() {
				So(view.Empty, ShouldBeTrue)
				So(view.Rows, ShouldBeEmpty)
				So(view.Message, ShouldEqual, presenter.DefaultEmptyMessage)
			})
		})

		Convey("When the list holds ranked findings", func() {
			list := findings.List{
				{Text: "**Schönheitsreparaturen** starr", Score: findings.ScoreOf(9), Intensity: 4},
				{Text: "Staffelmiete", Score: findings.ScoreOf(6), Intensity: 1},
			}

			view := p.Present(list)

			Convey("Then each finding becomes a row in the same order", func() {
				So(view.Empty, ShouldBeFalse)
				So(view.Message, ShouldBeEmpty)
				So(view.Rows, ShouldHaveLength, 2)
				So(view.Rows[0].Text, ShouldEqual, "**Schönheitsreparaturen** starr")
				So(view.Rows[1].Text, ShouldEqual, "Staffelmiete")
			})

			Convey("And emphasis is rendered inline without a paragraph", func() {
				So(view.Rows[0].HTML, ShouldEqual, template.HTML("<strong>Schönheitsreparaturen</strong> starr"))
				So(view.Rows[1].HTML, ShouldEqual, template.HTML("Staffelmiete"))
			})

			Convey("And the indicator matches the intensity", func() {
				So(presenter.Filled(view.Rows[0].Indicator), ShouldEqual, 4)
				So(presenter.Filled(view.Rows[1].Indicator), ShouldEqual, 1)
				So(view.Rows[1].Indicator, ShouldHaveLength, presenter.IndicatorCells)
			})
		})

		Convey("When clause text carries raw HTML", func() {
			out := string(p.Inline("Klausel <script>alert(1)</script>"))

			Convey("Then the markup is not passed through", func() {
				So(strings.Contains(out, "<script>"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a presenter with a custom empty message", t, func() {
		p := presenter.New(presenter.WithEmptyMessage("All clauses look fine."))

		Convey("Then the custom message is used", func() {
			So(p.Present(findings.List{}).Message, ShouldEqual, "All clauses look fine.")
			So(p.EmptyMessage(), ShouldEqual, "All clauses look fine.")
		})
	})
}
