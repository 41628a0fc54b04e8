package rag

import (
	"fmt"
	"strings"
)

// systemPrompt is the instruction block sent with every question.
// Supported response languages are English and Amharic; the model answers
// in whichever the user wrote, never mixing the two.
const systemPrompt = `You are a helpful support assistant for Ethiopian government services.
Use ONLY the provided context to answer the question.
If the answer is not in the context, say you don't know rather than guessing.
Detect whether the user wrote in English or Amharic and respond entirely in that language; never mix languages in one reply.`

// firstTurnGreeting is appended to the system prompt only when the caller
// marks the request as the first turn of a conversation. The server is
// stateless: without that flag no greeting is emitted.
const firstTurnGreeting = `
This is the user's first message: open your reply with one short bilingual greeting (English and Amharic) before answering.`

// buildSystemPrompt assembles the instruction block.
func buildSystemPrompt(firstTurn bool) string {
	if firstTurn {
		return systemPrompt + firstTurnGreeting
	}
	return systemPrompt
}

// buildUserPrompt fills the question template. Retrieved chunk contents are
// joined with a blank line in ranked order; extraContext is inserted
// verbatim.
func buildUserPrompt(contents []string, extraContext, message string) string {
	return fmt.Sprintf(`Context:
%s

Extra_user_context:
%s

Question:
%s`, strings.Join(contents, "\n\n"), extraContext, message)
}
