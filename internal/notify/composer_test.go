// internal/notify/composer_test.go
package notify

import (
	"context"
	"strings"
	"testing"

	"fleet-backoffice/internal/ai"
	"fleet-backoffice/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	content       string
	ok            bool
	task          ai.TaskType
	prompt        string
	systemContext string
}

func (f *fakeGenerator) Execute(ctx context.Context, task ai.TaskType, prompt, systemContext string) (string, bool) {
	f.task = task
	f.prompt = prompt
	f.systemContext = systemContext
	return f.content, f.ok
}

func TestComposeReminder_UsesGeneratedText(t *testing.T) {
	gen := &fakeGenerator{content: "Hi Asha, please recharge Rs 1500.", ok: true}
	rider := models.Rider{FullName: "Asha", WalletAmount: -1500}

	message := ComposeReminder(context.Background(), gen, rider)

	assert.Equal(t, "Hi Asha, please recharge Rs 1500.", message)
	assert.Equal(t, ai.TaskCreative, gen.task)
	assert.True(t, strings.Contains(gen.prompt, "Asha"))
	assert.True(t, strings.Contains(gen.prompt, "1500"))
	// The generator owns the global instruction wrap; composer sends no context.
	assert.Equal(t, "", gen.systemContext)
}

func TestComposeReminder_FallsBackOnFailure(t *testing.T) {
	gen := &fakeGenerator{ok: false}

	message := ComposeReminder(context.Background(), gen, models.Rider{FullName: "Asha"})

	assert.Equal(t, ai.FallbackReminder, message)
}

func TestComposeReminder_FallsBackOnEmptyContent(t *testing.T) {
	gen := &fakeGenerator{content: "", ok: true}

	message := ComposeReminder(context.Background(), gen, models.Rider{FullName: "Asha"})

	assert.Equal(t, ai.FallbackReminder, message)
}
