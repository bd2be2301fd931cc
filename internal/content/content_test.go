package content_test

import (
	"strings"
	"testing"

	"packwright/internal/content"
)

const sampleTranscript = `HOST: Welcome to the show.
GUEST: Thanks. I want to talk about discipline today.
HOST: Discipline matters. How does discipline relate to habits?
GUEST: Habits build discipline. Habits compound. Discipline sustains habits.
`

func TestSummarizeIsDeterministic(t *testing.T) {
	first := content.Summarize(sampleTranscript, 5)
	second := content.Summarize(sampleTranscript, 5)

	if first.Hook != "Welcome to the show." {
		t.Fatalf("unexpected hook %q", first.Hook)
	}
	if len(first.Topics) == 0 {
		t.Fatal("expected topics")
	}
	if first.Topics[0] != "discipline" && first.Topics[0] != "habits" {
		t.Fatalf("unexpected top topic %q", first.Topics[0])
	}
	if strings.Join(first.Topics, ",") != strings.Join(second.Topics, ",") {
		t.Fatalf("summaries differ: %v vs %v", first.Topics, second.Topics)
	}
}

func TestGenerateTitleOptionsCoversAllStrategies(t *testing.T) {
	summary := content.Summarize(sampleTranscript, 5)
	options := content.GenerateTitleOptions("Jane Doe", summary, []string{"morning routines"})

	if len(options) != 5 {
		t.Fatalf("expected 5 options, got %d", len(options))
	}
	seen := map[string]bool{}
	for i, opt := range options {
		if opt.Rank != i+1 {
			t.Fatalf("option %d has rank %d", i, opt.Rank)
		}
		if opt.ID == "" || opt.Text == "" || opt.Rationale == "" {
			t.Fatalf("incomplete option: %#v", opt)
		}
		seen[opt.Strategy] = true
	}
	for _, strategy := range []string{
		content.StrategyFOMO,
		content.StrategyReversal,
		content.StrategyChallenge,
		content.StrategyCuriosityGap,
		content.StrategyAuthority,
	} {
		if !seen[strategy] {
			t.Fatalf("missing strategy %s", strategy)
		}
	}

	// Trending terms steer the FOMO angle.
	if !strings.Contains(options[0].Text, "Morning Routines") {
		t.Fatalf("expected trending term in FOMO title, got %q", options[0].Text)
	}
}

func TestArtifactNames(t *testing.T) {
	names := content.ArtifactNames("Jane Doe")
	if len(names) != 5 {
		t.Fatalf("expected 5 artifact names, got %d", len(names))
	}
	for _, name := range names {
		if !strings.HasPrefix(name, "Jane Doe - ") {
			t.Fatalf("artifact name %q missing guest prefix", name)
		}
	}
	if content.GuestPackageFolder("Guest Package", "Jane Doe") != "Guest Package - Jane Doe" {
		t.Fatal("unexpected guest package folder name")
	}
}

func TestDocumentsMentionSelection(t *testing.T) {
	summary := content.Summarize(sampleTranscript, 5)
	options := content.GenerateTitleOptions("Jane Doe", summary, nil)
	selected := options[1]

	doc := content.TitleOptionsDoc(options, selected.ID)
	if !strings.Contains(doc, "* 2.") {
		t.Fatalf("selected option not marked:\n%s", doc)
	}

	desc := content.Description("Jane Doe", selected, summary)
	if !strings.Contains(desc, selected.Text) || !strings.Contains(desc, "Jane Doe") {
		t.Fatalf("description missing title or guest:\n%s", desc)
	}

	host := content.HostSocialPosts("Jane Doe", selected, summary)
	guest := content.GuestSocialPosts("Jane Doe", selected, summary)
	if !strings.Contains(host, selected.Text) || !strings.Contains(guest, selected.Text) {
		t.Fatal("social posts missing the selected title")
	}
}
