package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/llmjson"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
)

type HistoryTurn struct {
	Role    string
	Content string
}

type BrainstormTurnInput struct {
	State          BrainstormState
	StageSummaries []string
	History        []HistoryTurn
	Message        string
}

type BrainstormTurnResult struct {
	AssistantMessage string
	Action           string
	State            BrainstormState
	StateChanged     bool
	// ThresholdReached is set only on the turn where len(Ideas) first
	// reaches MinIdeas, so the caller can offer continue-or-finalize.
	ThresholdReached bool
}

// BrainstormEngine runs one learner turn: the generation collaborator
// proposes, the engine validates and enforces. Nothing is adopted from a
// proposal that fails the validation gate.
type BrainstormEngine interface {
	RunTurn(ctx context.Context, in BrainstormTurnInput) (BrainstormTurnResult, error)
}

type brainstormEngine struct {
	log *logger.Logger
	gen GenerationClient
}

func NewBrainstormEngine(log *logger.Logger, gen GenerationClient) BrainstormEngine {
	return &brainstormEngine{log: log.With("service", "BrainstormEngine"), gen: gen}
}

// proposedUpdate is the shape the collaborator is asked to produce. It is
// transient: validated here and never persisted as-is.
type proposedUpdate struct {
	AssistantMessage string `json:"assistantMessage"`
	Updates          struct {
		Action    string          `json:"action"`
		NextState BrainstormState `json:"nextState"`
	} `json:"updates"`
}

func (e *brainstormEngine) RunTurn(ctx context.Context, in BrainstormTurnInput) (BrainstormTurnResult, error) {
	var result BrainstormTurnResult

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return result, apierr.Newf(apierr.CodeBadRequest, "message is required")
	}

	system := brainstormSystemPrompt(in.State)
	user := brainstormUserPrompt(in.State, in.StageSummaries, in.History, message)

	raw, err := e.gen.GenerateText(ctx, system, user)
	if err != nil {
		return result, apierr.New(apierr.CodeInternal, err)
	}

	proposal, err := parseProposedUpdate(raw)
	if err != nil {
		e.log.Warn("Collaborator returned unusable output", "error", err)
		return result, err
	}

	return applyProposal(in.State, message, proposal)
}

// parseProposedUpdate distinguishes "no structured payload" from "payload
// with the wrong shape"; both are collaborator-output failures but with
// different messages for the caller.
func parseProposedUpdate(raw string) (proposedUpdate, error) {
	var proposal proposedUpdate

	obj, ok := llmjson.Extract(raw)
	if !ok {
		return proposal, apierr.Newf(apierr.CodeCollaboratorOutput, "no structured payload in collaborator response")
	}

	encoded, err := json.Marshal(obj)
	if err != nil {
		return proposal, apierr.New(apierr.CodeCollaboratorOutput, err)
	}
	if err := json.Unmarshal(encoded, &proposal); err != nil {
		return proposal, apierr.Newf(apierr.CodeCollaboratorOutput, "collaborator payload has wrong shape: %v", err)
	}
	if strings.TrimSpace(proposal.AssistantMessage) == "" {
		return proposal, apierr.Newf(apierr.CodeCollaboratorOutput, "collaborator payload missing assistantMessage")
	}
	return proposal, nil
}

// applyProposal is the transition policy. It never trusts nextState
// wholesale: the adopted state is rebuilt from the prior state plus the
// single validated change the action permits.
func applyProposal(prior BrainstormState, message string, proposal proposedUpdate) (BrainstormTurnResult, error) {
	result := BrainstormTurnResult{
		AssistantMessage: strings.TrimSpace(proposal.AssistantMessage),
		State:            prior,
	}

	action := strings.ToLower(strings.TrimSpace(proposal.Updates.Action))
	switch action {
	case ActionSetProblem, ActionAddIdea, ActionAskClarify, ActionRedirect, ActionRejectAmbiguous:
	default:
		action = ActionAskClarify
	}
	result.Action = action

	switch action {
	case ActionSetProblem:
		if prior.Problem != nil {
			// Problem transitions only nil -> non-nil; a late set_problem
			// becomes a clarification with no state change.
			result.Action = ActionAskClarify
			return result, nil
		}
		proposed := proposal.Updates.NextState.Problem
		if proposed == nil || strings.TrimSpace(proposed.Text) == "" {
			return BrainstormTurnResult{}, apierr.Newf(apierr.CodeCollaboratorOutput, "set_problem without a non-empty problem")
		}
		next := prior
		next.Problem = &Problem{Text: strings.TrimSpace(proposed.Text)}
		result.State = next
		result.StateChanged = true

	case ActionAddIdea:
		if prior.Problem == nil {
			result.Action = ActionAskClarify
			return result, nil
		}
		candidate, err := newIdeaFrom(prior, proposal.Updates.NextState, message)
		if err != nil {
			return BrainstormTurnResult{}, err
		}
		if prior.hasIdea(candidate) {
			// Duplicate modulo case/whitespace: keep the reply, keep the state.
			result.Action = ActionAskClarify
			return result, nil
		}
		next := prior
		next.Ideas = append(append([]Idea{}, prior.Ideas...), Idea{Text: candidate})
		result.State = next
		result.StateChanged = true
		result.ThresholdReached = next.MinIdeas > 0 &&
			len(prior.Ideas) < prior.MinIdeas &&
			len(next.Ideas) >= next.MinIdeas

	case ActionAskClarify, ActionRedirect, ActionRejectAmbiguous:
		// Advisory reply only; stored state untouched.
	}

	return result, nil
}

// newIdeaFrom pulls the single appended idea out of the proposed next
// state. Exactly one addition is allowed; anything else fails the gate.
// When the collaborator echoes the prior list unchanged, the learner's own
// wording is used as the candidate.
func newIdeaFrom(prior BrainstormState, next BrainstormState, message string) (string, error) {
	existing := make(map[string]struct{}, len(prior.Ideas))
	for _, idea := range prior.Ideas {
		existing[normalizeIdeaText(idea.Text)] = struct{}{}
	}

	var added []string
	for _, idea := range next.Ideas {
		text := strings.TrimSpace(idea.Text)
		if text == "" {
			continue
		}
		if _, ok := existing[normalizeIdeaText(text)]; !ok {
			added = append(added, text)
		}
	}

	switch len(added) {
	case 0:
		if strings.TrimSpace(message) == "" {
			return "", apierr.Newf(apierr.CodeCollaboratorOutput, "add_idea without a new idea")
		}
		return strings.TrimSpace(message), nil
	case 1:
		return added[0], nil
	default:
		return "", apierr.Newf(apierr.CodeCollaboratorOutput, "add_idea proposed %d new ideas, expected exactly one", len(added))
	}
}
