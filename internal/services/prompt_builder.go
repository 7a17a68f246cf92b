package services

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"profadvisor/internal/models"
	"profadvisor/internal/repositories"
)

// DefaultSystemPrompt is the assistant instruction sent as the first message
// of every completion request.
const DefaultSystemPrompt = `You are an AI assistant created to help students find the best professors for their courses. Your knowledge base includes a comprehensive database of professor reviews from students across various subjects and universities.

When a user asks you a question about finding a good professor, your goal is to provide them with the top 3 most relevant professor recommendations based on their query. You will use a Retrieval Augmented Generation (RAG) model to search your knowledge base, extract relevant information, and generate a concise response.

Your responses should be structured as follows:
Here are the top 3 professors that match your query:

[Professor Name] - [Department/Subject]
Rating: [Rating out of 5 stars]
Review: [Sample review text]

You should aim to provide a diverse set of professors across different departments and subjects, with a range of ratings and review sentiments to give the user a well-rounded perspective.

When responding to user questions, please keep your language natural, conversational, and helpful. Avoid overly technical jargon unless it is necessary to accurately describe the professor information.

Remember, your role is to be a knowledgeable and trustworthy advisor to students looking for the best professors to suit their needs. Use your professor review data to provide insightful recommendations that will help them make informed decisions about their course selections.`

// Retrieval block serialization. The completion model reads this block as
// natural language, but the format is fixed so prompt behavior stays
// reproducible across turns.
const (
	retrievalBlockHeader = "Returned results from vector db (done automatically):"
	retrievalEntryFormat = "Professor: %s\nReview: %s\nSubject: %s\nStars: %g"
)

// PromptBuilder assembles the message list sent to the completion provider.
// The system instruction is injected at construction so it can be swapped in
// tests; it is not a hidden global.
type PromptBuilder struct {
	systemPrompt string
}

// NewPromptBuilder creates a prompt builder with the given system instruction
func NewPromptBuilder(systemPrompt string) *PromptBuilder {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &PromptBuilder{systemPrompt: systemPrompt}
}

// Build produces the ordered prompt for one turn: the system instruction,
// every session message except the last verbatim, then a final user message
// whose content is the original last message plus the serialized retrieval
// block. The session slice itself is never mutated; only the outgoing copy
// carries the augmentation.
func (b *PromptBuilder) Build(session []models.ChatMessage, matches []*repositories.Match) []openai.ChatCompletionMessage {
	prompt := make([]openai.ChatCompletionMessage, 0, len(session)+1)

	prompt = append(prompt, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: b.systemPrompt,
	})

	for _, m := range session[:len(session)-1] {
		prompt = append(prompt, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	last := session[len(session)-1]
	prompt = append(prompt, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: last.Content + "\n\n" + SerializeMatches(matches),
	})

	return prompt
}

// SerializeMatches renders the retrieval block. Matches are rendered in the
// order received. With no matches the header is still emitted so the model is
// told that retrieval ran and found nothing.
func SerializeMatches(matches []*repositories.Match) string {
	var sb strings.Builder
	sb.WriteString(retrievalBlockHeader)

	for _, m := range matches {
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, retrievalEntryFormat, m.ID, m.Metadata.Review, m.Metadata.Subject, m.Metadata.Stars)
	}

	return sb.String()
}
