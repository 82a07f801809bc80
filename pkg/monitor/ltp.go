package monitor

import (
	"fmt"
	"strings"
)

// LTPRecipient receives the LTP maintainers' notifications.
const LTPRecipient = "LTP Mailing List <ltp@lists.linux.it>"

// LTPMaintainers notifies the LTP mailing list about checkouts with failed
// or aborted LTP tests. Failures take precedence over errors.
func LTPMaintainers() Subscription {
	return Subscription{
		Name:     "ltp_maintainers",
		Checkout: matchLTP,
	}
}

func isLTP(path string) bool {
	return path == "ltp" || strings.HasPrefix(path, "ltp.")
}

func matchLTP(c *Checkout) []Message {
	var failed, aborted []*Test
	for _, t := range c.Tests() {
		if !isLTP(t.Path()) {
			continue
		}
		switch t.Status() {
		case "FAIL":
			failed = append(failed, t)
		case "ERROR":
			aborted = append(aborted, t)
		}
	}

	// Test order comes from storage, so precedence keeps the summary stable.
	switch {
	case len(failed) > 0:
		return []Message{ltpMessage("LTP failed for ", c, failed)}
	case len(aborted) > 0:
		return []Message{ltpMessage("LTP aborted for ", c, aborted)}
	}
	return nil
}

func ltpMessage(summary string, c *Checkout, tests []*Test) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", summary, c.Summary())
	for _, t := range tests {
		fmt.Fprintf(&b, "  %s %s\n", t.Status(), t.Summary())
	}
	return Message{
		To:          []string{LTPRecipient},
		Summary:     summary,
		Description: b.String(),
	}
}
