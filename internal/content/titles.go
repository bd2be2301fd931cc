package content

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"packwright/internal/run"
)

// The five titling strategies, in presentation order.
const (
	StrategyFOMO         = "FOMO"
	StrategyReversal     = "Reversal"
	StrategyChallenge    = "Challenge"
	StrategyCuriosityGap = "Curiosity Gap"
	StrategyAuthority    = "Authority-Transformation"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// GenerateTitleOptions produces one ranked candidate per strategy. Trending
// terms from research sharpen the FOMO and curiosity angles when available;
// without them the generator falls back to transcript topics alone.
func GenerateTitleOptions(guest string, summary Summary, trending []string) []run.TitleOption {
	primary := topicOr(summary.Topics, 0, "success")
	secondary := topicOr(summary.Topics, 1, primary)
	trend := primary
	if len(trending) > 0 && strings.TrimSpace(trending[0]) != "" {
		trend = strings.TrimSpace(trending[0])
	}

	options := []run.TitleOption{
		{
			Text:      fmt.Sprintf("What Everyone Gets Wrong About %s (Before It's Too Late)", titleCaser.String(trend)),
			Strategy:  StrategyFOMO,
			Rationale: "urgency angle on the episode's dominant theme",
		},
		{
			Text:      fmt.Sprintf("Forget %s. %s Says Do This Instead", titleCaser.String(secondary), guest),
			Strategy:  StrategyReversal,
			Rationale: "contrarian take that flips the expected advice",
		},
		{
			Text:      fmt.Sprintf("Can You Really Master %s? %s Thinks So", titleCaser.String(primary), guest),
			Strategy:  StrategyChallenge,
			Rationale: "direct challenge that invites the listener to test themselves",
		},
		{
			Text:      fmt.Sprintf("The One Thing About %s Nobody Talks About", titleCaser.String(trend)),
			Strategy:  StrategyCuriosityGap,
			Rationale: "withholds the payoff to pull the listener in",
		},
		{
			Text:      fmt.Sprintf("How %s Turned %s Into a Superpower", guest, titleCaser.String(primary)),
			Strategy:  StrategyAuthority,
			Rationale: "leans on the guest's credibility and transformation arc",
		},
	}

	for i := range options {
		options[i].ID = fmt.Sprintf("opt-%d", i+1)
		options[i].Rank = i + 1
	}
	return options
}

func topicOr(topics []string, index int, fallback string) string {
	if index < len(topics) && strings.TrimSpace(topics[index]) != "" {
		return topics[index]
	}
	return fallback
}
