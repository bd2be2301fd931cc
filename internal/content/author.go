package content

import (
	"fmt"
	"strings"

	"packwright/internal/run"
)

// Description builds the episode description document body.
func Description(guest string, title run.TitleOption, summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title.Text)
	if summary.Hook != "" {
		fmt.Fprintf(&b, "%q\n\n", summary.Hook)
	}
	fmt.Fprintf(&b, "In this episode we sit down with %s", guest)
	if len(summary.Topics) > 0 {
		fmt.Fprintf(&b, " to dig into %s", joinTopics(summary.Topics))
	}
	b.WriteString(".\n\nListen wherever you get your podcasts.\n")
	return b.String()
}

// TitleOptionsDoc renders every candidate with its strategy and marks the
// selected one. The document preserves the full option set so the choice can
// be revisited later without rerunning analysis.
func TitleOptionsDoc(options []run.TitleOption, selectedID string) string {
	var b strings.Builder
	b.WriteString("Title Options\n\n")
	for _, opt := range options {
		marker := " "
		if opt.ID == selectedID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. [%s] %s\n", marker, opt.Rank, opt.Strategy, opt.Text)
		if opt.Rationale != "" {
			fmt.Fprintf(&b, "     %s\n", opt.Rationale)
		}
	}
	if selectedID != "" {
		b.WriteString("\n* selected\n")
	}
	return b.String()
}

// HostSocialPosts builds the show-account social copy.
func HostSocialPosts(guest string, title run.TitleOption, summary Summary) string {
	var b strings.Builder
	b.WriteString("Social Posts (show account)\n\n")
	fmt.Fprintf(&b, "1. New episode: %s\n   %s joins us. Link in bio.\n\n", title.Text, guest)
	if len(summary.Topics) > 0 {
		fmt.Fprintf(&b, "2. We asked %s about %s. The answer surprised us. Full episode out now.\n\n", guest, joinTopics(summary.Topics[:min(2, len(summary.Topics))]))
	}
	fmt.Fprintf(&b, "3. %s\n   Hear the whole story in our latest episode with %s.\n", title.Text, guest)
	return b.String()
}

// GuestSocialPosts builds copy the guest can post from their own accounts.
func GuestSocialPosts(guest string, title run.TitleOption, summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Social Posts for %s\n\n", guest)
	fmt.Fprintf(&b, "1. I joined the show to talk about %s. Have a listen: %s\n\n", joinTopics(summary.Topics[:min(2, len(summary.Topics))]), title.Text)
	b.WriteString("2. Grateful for this conversation. We went deeper than I expected. Episode link below.\n")
	return b.String()
}

func joinTopics(topics []string) string {
	switch len(topics) {
	case 0:
		return "the conversation"
	case 1:
		return topics[0]
	case 2:
		return topics[0] + " and " + topics[1]
	default:
		return strings.Join(topics[:len(topics)-1], ", ") + ", and " + topics[len(topics)-1]
	}
}
