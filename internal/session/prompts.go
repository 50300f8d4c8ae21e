package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/prepdeck/PrepDeck/internal/genai"
	"github.com/prepdeck/PrepDeck/internal/models"
)

// Responder produces collaborator text for a user prompt. The interviewer
// flag selects the persona: probing interviewer vs. constructive coach.
type Responder interface {
	Respond(ctx context.Context, prompt, contextStr string, interviewer bool) (string, error)
}

// interviewerSystemPrompt is the persona for live interview follow-ups.
const interviewerSystemPrompt = `You are a senior software engineering interviewer. You are professional, thorough, and realistic.

You should:
1. Ask probing follow-up questions to test deeper understanding
2. Challenge assumptions and explore edge cases
3. Evaluate the candidate's problem-solving approach
4. Test their ability to reason about trade-offs and optimizations
5. Assess communication skills and technical depth
6. Stay in character as a real interviewer - be encouraging but maintain professional standards

Respond naturally as if you're in a real interview room. Keep responses focused and ask specific follow-up questions.`

// coachSystemPrompt is the persona for coaching and feedback requests.
const coachSystemPrompt = `You are an expert software engineering interview coach. You provide detailed, constructive feedback and guidance.

Provide a response that includes:
1. A direct answer to the question or request
2. Specific feedback and suggestions
3. Areas for improvement
4. Actionable advice for upcoming interviews`

// feedbackRequestPrompt asks the collaborator for a mid-session performance review.
const feedbackRequestPrompt = "Please provide detailed feedback on the candidate's interview performance so far"

// evaluationPrompt builds the scoring request for an answer. The collaborator
// is expected to lead with a "Score: X/10" line; ParseScore falls back to a
// neutral default when it doesn't.
func evaluationPrompt(question models.Question, answer string, category models.Category) string {
	return fmt.Sprintf(`Evaluate this %s interview answer:

Question: %s
Answer: %s

Provide evaluation in this format:
Score: X/10
Strengths: [list specific strengths]
Weaknesses: [list areas for improvement]
Suggestions: [actionable suggestions for improvement]`, category, question.Prompt, answer)
}

// interviewContext summarizes the live session for the collaborator.
func interviewContext(state *models.SessionState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview type: %s\n", state.Category)
	if state.Question != nil {
		fmt.Fprintf(&b, "Current question: %s\n", state.Question.Prompt)
		if len(state.Question.FollowUps) > 0 {
			fmt.Fprintf(&b, "Prepared follow-ups: %s\n", strings.Join(state.Question.FollowUps, "; "))
		}
	}
	fmt.Fprintf(&b, "Follow-up count: %d", state.FollowUpCount)
	return b.String()
}

// ModelResponder adapts a genai client to the Responder interface by
// selecting the persona system prompt.
type ModelResponder struct {
	Client genai.ClientInterface
}

// Respond forwards the prompt to the language model under the selected persona.
func (r *ModelResponder) Respond(ctx context.Context, prompt, contextStr string, interviewer bool) (string, error) {
	systemPrompt := coachSystemPrompt
	if interviewer {
		systemPrompt = interviewerSystemPrompt
	}
	userPrompt := prompt
	if contextStr != "" {
		userPrompt = "Context:\n" + contextStr + "\n\n" + prompt
	}
	return r.Client.Generate(ctx, systemPrompt, userPrompt)
}
