package services

import (
	"fmt"
	"strings"
)

// The collaborator proposes; the engine validates. The contract below is
// best-effort on the model side, which is why the reply still goes through
// llmjson extraction and the validation gate.
func brainstormSystemPrompt(state BrainstormState) string {
	var b strings.Builder
	b.WriteString("You are a coach guiding a learner through the causes-brainstorming stage of a productivity-improvement case exercise.\n")
	if state.Problem == nil {
		b.WriteString("The problem statement has not been confirmed yet. Help the learner articulate one concrete problem.\n")
	} else {
		b.WriteString("The problem statement is confirmed. Each learner message should be treated as a candidate cause/idea for that problem.\n")
	}
	b.WriteString(`
Reply with ONLY a JSON object of this exact shape:
{
  "assistantMessage": "<your reply to the learner>",
  "updates": {
    "action": "set_problem | add_idea | ask_clarify | redirect | reject_ambiguous",
    "nextState": {"problem": {"text": "..."} | null, "ideas": [{"text": "..."}], "minIdeas": <unchanged>}
  }
}

Rules:
- set_problem only when no problem is set yet and the learner stated one clearly.
- add_idea appends exactly one new idea; never rephrase or drop existing ideas.
- reject_ambiguous when the candidate idea is vague or unrelated to the problem; do not add it.
- ask_clarify when you need more detail before acting.
- redirect when the message is off-topic for this stage (greetings, unrelated questions); never change state.
- Never modify minIdeas and never reset a confirmed problem.
`)
	return b.String()
}

func brainstormUserPrompt(state BrainstormState, summaries []string, history []HistoryTurn, message string) string {
	var b strings.Builder

	if len(summaries) > 0 {
		b.WriteString("Context from earlier stages:\n")
		for _, s := range summaries {
			b.WriteString("- " + s + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Current state:\n")
	if state.Problem != nil {
		fmt.Fprintf(&b, "problem: %s\n", state.Problem.Text)
	} else {
		b.WriteString("problem: (not set)\n")
	}
	if len(state.Ideas) == 0 {
		b.WriteString("ideas: (none yet)\n")
	} else {
		b.WriteString("ideas:\n")
		for i, idea := range state.Ideas {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, idea.Text)
		}
	}
	fmt.Fprintf(&b, "minIdeas: %d\n\n", state.MinIdeas)

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, h := range history {
			fmt.Fprintf(&b, "%s: %s\n", h.Role, h.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Learner message:\n%s\n", message)
	return b.String()
}
