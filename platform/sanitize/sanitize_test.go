package sanitize

import "testing"

func TestStripHTMLRemovesEncodedTags(t *testing.T) {
	got := StripHTML(`<b>Janitorial</b> &lt;script&gt;alert(1)&lt;/script&gt;`)
	if got != "Janitorial" {
		t.Fatalf("expected %q, got %q", "Janitorial", got)
	}
}

func TestStripHTMLKeepsPlainText(t *testing.T) {
	got := StripHTML("  Route with 40 machines  ")
	if got != "Route with 40 machines" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestStripHTMLDecodesEntities(t *testing.T) {
	got := StripHTML("Smith &amp; Sons <i>Cleaning</i>")
	if got != "Smith & Sons Cleaning" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestLineCollapsesAndTruncates(t *testing.T) {
	got := Line("Mozilla/5.0\n\n  (X11;   Linux)", 12)
	if got != "Mozilla/5.0" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestLineWithoutLimit(t *testing.T) {
	got := Line("<p>Austin,\n TX</p>", 0)
	if got != "Austin, TX" {
		t.Fatalf("unexpected result %q", got)
	}
}
