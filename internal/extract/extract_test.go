package extract

import (
	"strings"
	"testing"
)

const schedulePage = `<!DOCTYPE html>
<html><head><title>Football Schedule - Official Athletics Website</title></head>
<body>
<nav><a href="/tickets">Tickets</a><a href="/shop">Shop</a></nav>
<main>
<h1>2025 Football Schedule</h1>
<table>
<tr><td>09/06/25</td><td>vs East State</td><td><a href="/boxscore/123">Box Score</a></td></tr>
<tr><td>09/13/25</td><td>at Coastal Tech</td></tr>
</table>
</main>
<footer>Copyright 2025</footer>
</body></html>`

func TestTextPrefersMainAndSkipsChrome(t *testing.T) {
	got := Text([]byte(schedulePage))
	if !strings.Contains(got, "2025 Football Schedule") {
		t.Fatalf("main content missing: %q", got)
	}
	if !strings.Contains(got, "East State") {
		t.Fatalf("table content missing: %q", got)
	}
	if strings.Contains(got, "Tickets") || strings.Contains(got, "Copyright") {
		t.Fatalf("nav/footer should be skipped: %q", got)
	}
}

func TestTextRowsBecomeLines(t *testing.T) {
	got := Text([]byte(schedulePage))
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "09/06/25") && !strings.Contains(line, "East State") {
			t.Fatalf("row cells should share a line: %q", got)
		}
	}
}

func TestVisibleTextExcludesHeaderFooter(t *testing.T) {
	page := `<html><body><header>Site Header</header><div>Referee: John Smith</div><footer>foot</footer></body></html>`
	got := VisibleText([]byte(page))
	if !strings.Contains(got, "Referee: John Smith") {
		t.Fatalf("content missing: %q", got)
	}
	if strings.Contains(got, "Site Header") || strings.Contains(got, "foot") {
		t.Fatalf("header/footer should be excluded: %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title([]byte(schedulePage)); got != "Football Schedule - Official Athletics Website" {
		t.Fatalf("Title = %q", got)
	}
	if got := Title([]byte("<html><body>no head</body></html>")); got != "" {
		t.Fatalf("missing title should be empty, got %q", got)
	}
}

func TestHasOfficiatingKeyword(t *testing.T) {
	if !HasOfficiatingKeyword("Referee: John Smith") {
		t.Fatal("referee should match")
	}
	if !HasOfficiatingKeyword("LINE JUDGE - R. Davis") {
		t.Fatal("judge should match case-insensitively")
	}
	if HasOfficiatingKeyword("Final score 21-14") {
		t.Fatal("plain score text should not match")
	}
}

func TestDominatedByBoilerplate(t *testing.T) {
	if !DominatedByBoilerplate("The Official Athletics Website of Nowhere U") {
		t.Fatal("slogan-only page should be boilerplate")
	}
	if DominatedByBoilerplate("Official Athletics Website\nReferee: John Smith\nUmpire: A. Jones") {
		t.Fatal("page with officials content should pass")
	}
	long := "Official Athletics Website " + strings.Repeat("play-by-play data ", 40)
	if DominatedByBoilerplate(long) {
		t.Fatal("long content should not count as boilerplate")
	}
	if !DominatedByBoilerplate("   ") {
		t.Fatal("empty text is boilerplate")
	}
}
