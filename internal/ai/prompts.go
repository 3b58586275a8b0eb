// internal/ai/prompts.go
package ai

import (
	"fmt"
	"strings"
)

// globalInstruction is prepended to every caller-supplied system context.
const globalInstruction = `You are the assistant of an electric-vehicle fleet back office.
Be concise and factual. Amounts are in Indian Rupees. Never invent rider or leader data;
answer only from the context you are given.`

// BuildSystemContext concatenates the fixed global instruction block with
// the caller-supplied context.
func BuildSystemContext(callerContext string) string {
	if strings.TrimSpace(callerContext) == "" {
		return globalInstruction
	}
	return globalInstruction + "\n\n" + callerContext
}

// ReminderPrompt builds the payment-reminder generation prompt.
func ReminderPrompt(riderName string, walletAmount int64) string {
	var parts []string

	parts = append(parts, "Write a short, polite payment reminder SMS for an EV fleet rider.")
	parts = append(parts, fmt.Sprintf("Rider name: %s", riderName))
	parts = append(parts, fmt.Sprintf("Outstanding balance: Rs %d", -walletAmount))
	parts = append(parts, "Keep it under 300 characters. No emojis.")

	return strings.Join(parts, "\n")
}

// InsightPrompt builds the dashboard insight prompt over a stats summary.
func InsightPrompt(statsSummary string) string {
	var parts []string

	parts = append(parts, "Summarize the fleet's current state in 2-3 sentences for an operations manager.")
	parts = append(parts, "Call out anything that needs attention (negative wallets, idle riders, stalled leads).")
	parts = append(parts, "\nFleet stats:")
	parts = append(parts, statsSummary)

	return strings.Join(parts, "\n")
}

// ChatReplyPrompt builds the support chat reply suggestion prompt.
func ChatReplyPrompt(conversation, question string) string {
	var parts []string

	parts = append(parts, "Draft a helpful reply for a back-office agent in a rider support chat.")
	if conversation != "" {
		parts = append(parts, "\nConversation so far:")
		parts = append(parts, conversation)
	}
	parts = append(parts, fmt.Sprintf("\nRider's last message: %s", question))
	parts = append(parts, "\nReply:")

	return strings.Join(parts, "\n")
}

// Static fallback strings callers display when generation fails entirely.
const (
	FallbackReminder = "Hi, this is a reminder from your fleet team: your wallet balance is due. Please recharge at the earliest."
	FallbackInsight  = "Insights are temporarily unavailable. Please review the dashboard numbers directly."
	FallbackReply    = "Thanks for reaching out. Our team is looking into this and will get back to you shortly."
)
