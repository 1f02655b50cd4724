package deck

import (
	"strings"
	"testing"
)

const sampleSpec = `{
  "deck_title": "Weekly Sync",
  "date": "2026-08-29",
  "org": "Acme",
  "slides": [
    {"type": "title", "subtitle": "Engineering", "description": "Status"},
    {"type": "bullets", "num": "01", "section": "Agenda", "title": "Topics",
     "bullets": ["Roadmap", "Hiring"]},
    {"type": "cards", "num": "02", "section": "Work", "title": "Streams",
     "cards": [{"title": "API", "body": "v2 rollout"}, {"title": "Infra", "body": "migration"}]},
    {"type": "twoColumn", "num": "03", "section": "Review", "title": "Pros and Cons",
     "left": {"title": "Pros", "bullets": ["fast"]},
     "right": {"title": "Cons", "bullets": ["risky"]}},
    {"type": "table", "num": "04", "section": "Data", "title": "Metrics",
     "headers": ["Metric", "Value"], "rows": [["Uptime", "99.9%"]]},
    {"type": "diagram", "num": "05", "section": "Arch", "title": "Flow",
     "nodes": [{"name": "In", "desc": "ingest"}, {"name": "Out", "desc": "publish"}]},
    {"type": "closing", "message": "Questions?"}
  ]
}`

func TestParseSpecAndBuild(t *testing.T) {
	spec, err := ParseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	if spec.Title != "Weekly Sync" {
		t.Errorf("title = %q", spec.Title)
	}

	d := FromSpec(spec).Deck()
	if len(d.Slides) != 7 {
		t.Fatalf("slides = %d, want 7", len(d.Slides))
	}
	if d.Slides[0].Background != d.Theme.BackgroundDark {
		t.Error("cover background is not the dark theme background")
	}
	if d.Slides[1].Background != d.Theme.BackgroundLight {
		t.Error("content background is not the light theme background")
	}
}

func TestParseSpecRejectsMissingTitle(t *testing.T) {
	_, err := ParseSpec([]byte(`{"slides": []}`))
	if err == nil || !strings.Contains(err.Error(), "deck_title") {
		t.Errorf("err = %v, want missing deck_title", err)
	}
}

func TestParseSpecRejectsUnknownSlideType(t *testing.T) {
	_, err := ParseSpec([]byte(`{"deck_title": "x", "slides": [{"type": "chart"}]}`))
	if err == nil || !strings.Contains(err.Error(), `unknown type "chart"`) {
		t.Errorf("err = %v, want unknown type", err)
	}
}

func TestParseSpecRejectsMissingSlideType(t *testing.T) {
	_, err := ParseSpec([]byte(`{"deck_title": "x", "slides": [{"title": "no type"}]}`))
	if err == nil || !strings.Contains(err.Error(), "missing type") {
		t.Errorf("err = %v, want missing type", err)
	}
}

func TestParseSpecRejectsRaggedTableRows(t *testing.T) {
	_, err := ParseSpec([]byte(`{
	  "deck_title": "x",
	  "slides": [{"type": "table", "headers": ["a", "b"], "rows": [["only one"]]}]
	}`))
	if err == nil || !strings.Contains(err.Error(), "1 cells, want 2") {
		t.Errorf("err = %v, want ragged-row error", err)
	}
}

func TestParseSpecRejectsEmptyVariants(t *testing.T) {
	cases := []string{
		`{"type": "bullets"}`,
		`{"type": "cards"}`,
		`{"type": "twoColumn"}`,
		`{"type": "table"}`,
		`{"type": "diagram"}`,
	}
	for _, c := range cases {
		_, err := ParseSpec([]byte(`{"deck_title": "x", "slides": [` + c + `]}`))
		if err == nil {
			t.Errorf("spec with %s parsed, want error", c)
		}
	}
}

func TestParseSpecMalformedJSON(t *testing.T) {
	if _, err := ParseSpec([]byte(`{not json`)); err == nil {
		t.Error("malformed JSON parsed, want error")
	}
}
