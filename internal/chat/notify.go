package chat

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"
)

func sendNotification(title, body string) error {
	return beeep.Notify(title, body, "")
}

// notifyf posts a desktop notification when enabled. Failures go to the log;
// the session carries on without them.
func (m *Model) notifyf(title, format string, args ...any) {
	if !m.notify || m.notifier == nil {
		return
	}
	body := truncateNotification(fmt.Sprintf(format, args...), 100)
	if err := m.notifier(title, body); err != nil {
		m.logger.Printf("notification failed: %v", err)
	}
}

func truncateNotification(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
