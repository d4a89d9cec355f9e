package services

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Brainstorm stage actions. The collaborator emits these as open strings;
// anything outside the set is downgraded to ask_clarify at the boundary.
const (
	ActionSetProblem      = "set_problem"
	ActionAddIdea         = "add_idea"
	ActionAskClarify      = "ask_clarify"
	ActionRedirect        = "redirect"
	ActionRejectAmbiguous = "reject_ambiguous"
)

type Problem struct {
	Text string `json:"text"`
}

type Idea struct {
	Text string `json:"text"`
}

// BrainstormState is the stage payload for the causes-brainstorming stage.
// Problem moves only from nil to non-nil; Ideas keep insertion order;
// MinIdeas comes from configuration and is never touched by the engine.
type BrainstormState struct {
	Problem  *Problem `json:"problem"`
	Ideas    []Idea   `json:"ideas"`
	MinIdeas int      `json:"minIdeas"`
}

func NewBrainstormState(minIdeas int) BrainstormState {
	if minIdeas < 0 {
		minIdeas = 0
	}
	return BrainstormState{Ideas: []Idea{}, MinIdeas: minIdeas}
}

func BrainstormStateFromJSON(m datatypes.JSONMap) (BrainstormState, error) {
	var state BrainstormState
	raw, err := json.Marshal(map[string]any(m))
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, err
	}
	if state.Ideas == nil {
		state.Ideas = []Idea{}
	}
	return state, nil
}

func (s BrainstormState) ToJSON() datatypes.JSONMap {
	raw, _ := json.Marshal(s)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	return datatypes.JSONMap(m)
}

// normalizeIdeaText lowercases and collapses whitespace so duplicate
// detection ignores case and spacing.
func normalizeIdeaText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (s BrainstormState) hasIdea(text string) bool {
	norm := normalizeIdeaText(text)
	for _, idea := range s.Ideas {
		if normalizeIdeaText(idea.Text) == norm {
			return true
		}
	}
	return false
}
