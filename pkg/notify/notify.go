package notify

import (
	"fmt"
	"os/exec"
)

// Notifier sends desktop notifications using notify-send.
type Notifier struct {
	Binary string
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{Binary: "notify-send"}
}

// Info sends an informational desktop notification.
func (n *Notifier) Info(title, message string) error {
	if _, err := exec.LookPath(n.Binary); err != nil {
		return fmt.Errorf("notifications unavailable: %w", err)
	}
	if err := exec.Command(n.Binary, "-a", "journal-ai", title, message).Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Error sends an error notification with critical urgency.
func (n *Notifier) Error(title, message string) error {
	if _, err := exec.LookPath(n.Binary); err != nil {
		return fmt.Errorf("notifications unavailable: %w", err)
	}
	if err := exec.Command(n.Binary, "-a", "journal-ai", "-u", "critical", title, message).Run(); err != nil {
		return fmt.Errorf("failed to send error notification: %w", err)
	}
	return nil
}
