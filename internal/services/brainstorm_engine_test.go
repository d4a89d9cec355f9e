package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
)

type stubGeneration struct {
	reply string
	err   error
}

func (s *stubGeneration) GenerateText(ctx context.Context, system, user string) (string, error) {
	return s.reply, s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func collaboratorReply(t *testing.T, assistantMessage, action string, next BrainstormState) string {
	t.Helper()
	payload := map[string]any{
		"assistantMessage": assistantMessage,
		"updates": map[string]any{
			"action":    action,
			"nextState": next,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return string(raw)
}

func runTurn(t *testing.T, reply string, state BrainstormState, message string) (BrainstormTurnResult, error) {
	t.Helper()
	engine := NewBrainstormEngine(testLogger(t), &stubGeneration{reply: reply})
	return engine.RunTurn(context.Background(), BrainstormTurnInput{
		State:   state,
		Message: message,
	})
}

func TestRunTurnSetProblem(t *testing.T) {
	prior := NewBrainstormState(3)
	next := prior
	next.Problem = &Problem{Text: "Las entregas llegan tarde"}

	reply := collaboratorReply(t, "Perfecto, ese es el problema.", ActionSetProblem, next)
	result, err := runTurn(t, reply, prior, "el problema es que las entregas llegan tarde")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if result.State.Problem == nil || result.State.Problem.Text != "Las entregas llegan tarde" {
		t.Fatalf("problem not adopted: %+v", result.State.Problem)
	}
	if !result.StateChanged {
		t.Fatalf("StateChanged=false after set_problem")
	}
}

func TestRunTurnRejectsEmptyProblem(t *testing.T) {
	prior := NewBrainstormState(3)
	next := prior
	next.Problem = &Problem{Text: ""}

	reply := collaboratorReply(t, "Listo.", ActionSetProblem, next)
	_, err := runTurn(t, reply, prior, "mmm")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeCollaboratorOutput {
		t.Fatalf("empty problem should be a collaborator-output failure, got %v", err)
	}
}

func TestRunTurnProblemNeverReset(t *testing.T) {
	prior := NewBrainstormState(3)
	prior.Problem = &Problem{Text: "maquinaria se detiene"}

	next := prior
	next.Problem = &Problem{Text: "otro problema"}
	reply := collaboratorReply(t, "Cambiemos el problema.", ActionSetProblem, next)

	result, err := runTurn(t, reply, prior, "mejor cambiemos el problema")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if result.Action != ActionAskClarify {
		t.Fatalf("late set_problem should downgrade to ask_clarify, got %s", result.Action)
	}
	if result.StateChanged || result.State.Problem.Text != "maquinaria se detiene" {
		t.Fatalf("problem must not be reset: %+v", result.State.Problem)
	}
}

func TestRunTurnAddIdea(t *testing.T) {
	prior := NewBrainstormState(3)
	prior.Problem = &Problem{Text: "maquinaria se detiene"}
	prior.Ideas = []Idea{{Text: "falta de mantenimiento"}}

	next := prior
	next.Ideas = append(append([]Idea{}, prior.Ideas...), Idea{Text: "operadores sin capacitación"})
	reply := collaboratorReply(t, "Buena idea, la agrego.", ActionAddIdea, next)

	result, err := runTurn(t, reply, prior, "puede ser que los operadores no están capacitados")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if len(result.State.Ideas) != 2 {
		t.Fatalf("ideas len=%d, want 2", len(result.State.Ideas))
	}
	if result.State.Ideas[1].Text != "operadores sin capacitación" {
		t.Fatalf("appended idea=%q", result.State.Ideas[1].Text)
	}
	if result.ThresholdReached {
		t.Fatalf("threshold flagged at 2/3 ideas")
	}
}

func TestRunTurnDuplicateIdeaNotAppended(t *testing.T) {
	prior := NewBrainstormState(3)
	prior.Problem = &Problem{Text: "maquinaria se detiene"}
	prior.Ideas = []Idea{{Text: "falta de mantenimiento"}}

	// Collaborator tries to append a duplicate differing only in case and
	// whitespace.
	next := prior
	next.Ideas = append(append([]Idea{}, prior.Ideas...), Idea{Text: "  Falta De   Mantenimiento "})
	reply := collaboratorReply(t, "La agrego.", ActionAddIdea, next)

	result, err := runTurn(t, reply, prior, "Falta De   Mantenimiento")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if len(result.State.Ideas) != 1 {
		t.Fatalf("duplicate appended: %+v", result.State.Ideas)
	}
	if result.StateChanged {
		t.Fatalf("StateChanged=true on duplicate")
	}
	if result.Action != ActionAskClarify {
		t.Fatalf("duplicate should downgrade to ask_clarify, got %s", result.Action)
	}
}

func TestRunTurnThresholdCrossing(t *testing.T) {
	prior := NewBrainstormState(3)
	prior.Problem = &Problem{Text: "maquinaria se detiene"}
	prior.Ideas = []Idea{{Text: "falta de mantenimiento"}, {Text: "repuestos de mala calidad"}}

	next := prior
	next.Ideas = append(append([]Idea{}, prior.Ideas...), Idea{Text: "sobrecarga de turnos"})
	reply := collaboratorReply(t, "Excelente, ya tienes varias causas.", ActionAddIdea, next)

	result, err := runTurn(t, reply, prior, "también hay sobrecarga de turnos")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if !result.ThresholdReached {
		t.Fatalf("threshold crossing 2->3 with minIdeas=3 not surfaced")
	}

	// A fourth idea does not re-trigger the flag.
	prior = result.State
	next = prior
	next.Ideas = append(append([]Idea{}, prior.Ideas...), Idea{Text: "mala planificación"})
	reply = collaboratorReply(t, "Anotada.", ActionAddIdea, next)
	result, err = runTurn(t, reply, prior, "mala planificación")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if result.ThresholdReached {
		t.Fatalf("threshold flagged again past the first crossing")
	}
}

func TestRunTurnRedirectLeavesStateAlone(t *testing.T) {
	prior := NewBrainstormState(3)
	prior.Problem = &Problem{Text: "maquinaria se detiene"}
	prior.Ideas = []Idea{{Text: "falta de mantenimiento"}}

	reply := collaboratorReply(t, "Volvamos al ejercicio.", ActionRedirect, prior)
	result, err := runTurn(t, reply, prior, "hola, cómo estás?")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if result.StateChanged || len(result.State.Ideas) != 1 {
		t.Fatalf("redirect changed state: %+v", result.State)
	}
}

func TestRunTurnUnknownActionBecomesAskClarify(t *testing.T) {
	prior := NewBrainstormState(3)
	prior.Problem = &Problem{Text: "maquinaria se detiene"}

	reply := collaboratorReply(t, "No sé qué hacer.", "do_something_weird", prior)
	result, err := runTurn(t, reply, prior, "algo")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if result.Action != ActionAskClarify {
		t.Fatalf("unknown action mapped to %s, want ask_clarify", result.Action)
	}
	if result.StateChanged {
		t.Fatalf("unknown action changed state")
	}
}

func TestRunTurnMalformedCollaboratorOutput(t *testing.T) {
	prior := NewBrainstormState(3)

	cases := []struct {
		name  string
		reply string
	}{
		{name: "no_json", reply: "lo siento, no puedo ayudar con eso"},
		{name: "empty_assistant_message", reply: `{"assistantMessage":"","updates":{"action":"ask_clarify","nextState":{"problem":null,"ideas":[],"minIdeas":3}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runTurn(t, tc.reply, prior, "mensaje")
			var ae *apierr.Error
			if !errors.As(err, &ae) || ae.Code != apierr.CodeCollaboratorOutput {
				t.Fatalf("want COLLABORATOR_OUTPUT, got %v", err)
			}
		})
	}
}

func TestRunTurnFencedCollaboratorOutput(t *testing.T) {
	prior := NewBrainstormState(3)
	next := prior
	next.Problem = &Problem{Text: "las entregas llegan tarde"}
	inner := collaboratorReply(t, "Anotado el problema.", ActionSetProblem, next)

	result, err := runTurn(t, "```json\n"+inner+"\n```", prior, "las entregas llegan tarde")
	if err != nil {
		t.Fatalf("RunTurn on fenced reply: %v", err)
	}
	if result.State.Problem == nil {
		t.Fatalf("fenced payload not adopted")
	}
}
