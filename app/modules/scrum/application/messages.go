package scrumservice

import (
	"fmt"
	"strings"

	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
)

func pollMessage(date scrumdomain.Date, markers channel.MarkerSet) string {
	return fmt.Sprintf("Scrum check for %s: react %s if you can make it, %s if you can't.",
		date, markers.Positive, markers.Negative)
}

func closedNotice(date scrumdomain.Date) string {
	return fmt.Sprintf("Scrum check for %s: voting is closed.", date)
}

func outcomeLine(outcome scrumdomain.Outcome) string {
	switch outcome {
	case scrumdomain.OutcomePossible:
		return "scrum is on"
	case scrumdomain.OutcomeImpossible:
		return "scrum is off"
	default:
		return "no decision was reached"
	}
}

func summaryMessage(date scrumdomain.Date, outcome scrumdomain.Outcome, notAvailable []scrumdomain.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scrum for %s: %s.", date, outcomeLine(outcome))
	if len(notAvailable) == 0 {
		b.WriteString("\nEveryone is available.")
		return b.String()
	}
	names := make([]string, len(notAvailable))
	for i, p := range notAvailable {
		names[i] = p.DisplayName
	}
	fmt.Fprintf(&b, "\nNot available: %s", strings.Join(names, ", "))
	return b.String()
}

func rewardMemo(date scrumdomain.Date) string {
	return fmt.Sprintf("Scrum reward for %s", date)
}
