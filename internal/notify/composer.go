// internal/notify/composer.go
package notify

import (
	"context"

	"fleet-backoffice/internal/ai"
	"fleet-backoffice/internal/models"
)

// TextGenerator produces message text for a task; the bool reports whether
// generation succeeded.
type TextGenerator interface {
	Execute(ctx context.Context, task ai.TaskType, prompt, systemContext string) (string, bool)
}

// ComposeReminder generates the reminder text for a rider, falling back to
// the static copy when every provider fails. It never returns an empty
// message.
func ComposeReminder(ctx context.Context, gen TextGenerator, rider models.Rider) string {
	prompt := ai.ReminderPrompt(rider.FullName, rider.WalletAmount)
	message, ok := gen.Execute(ctx, ai.TaskCreative, prompt, "")
	if !ok || message == "" {
		return ai.FallbackReminder
	}
	return message
}
