package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Evaluator runs a JavaScript expression in the game page and returns the JSON encoded result.
type Evaluator interface {
	Evaluate(ctx context.Context, script string) ([]byte, error)
}

// ScriptHost implements Host by injecting scripts through an Evaluator, so the loosely typed
// page responses never leave this file.
type ScriptHost struct {
	eval Evaluator
}

func NewScriptHost(eval Evaluator) *ScriptHost {
	return &ScriptHost{eval: eval}
}

type scriptResponse struct {
	Stale   bool       `json:"stale"`
	Ores    []OreState `json:"ores"`
	Found   bool       `json:"found"`
	ItemID  string     `json:"itemID"`
	HP      int        `json:"hp"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
}

func (h *ScriptHost) QueryState(ctx context.Context, q Query) (State, error) {
	script, err := buildQueryScript(q)
	if err != nil {
		return State{}, err
	}

	resp, err := h.run(ctx, "query "+q.Kind.String(), script)
	if err != nil {
		return State{}, err
	}

	st := State{ItemID: resp.ItemID, HP: resp.HP, Found: resp.Found}
	if q.Kind == QueryOres {
		st.Ores = make(Snapshot, len(resp.Ores))
		for _, o := range resp.Ores {
			st.Ores[o.ID] = o
		}
		st.Found = true
	}

	return st, nil
}

func (h *ScriptHost) IssueCommand(ctx context.Context, cmd Command) (Result, error) {
	script, err := buildCommandScript(cmd)
	if err != nil {
		return Result{}, err
	}

	resp, err := h.run(ctx, "command "+cmd.Kind.String(), script)
	if err != nil {
		return Result{}, err
	}

	res := Result{Status: ResultStatus(resp.Status), HP: resp.HP, Message: resp.Message}
	switch res.Status {
	case StatusOK, StatusNotFound, StatusDepleted, StatusFailed:
		return res, nil
	}

	return Result{}, &CommunicationError{Op: "command " + cmd.Kind.String(), Err: fmt.Errorf("unexpected command status %q", resp.Status)}
}

func (h *ScriptHost) run(ctx context.Context, op, script string) (scriptResponse, error) {
	raw, err := h.eval.Evaluate(ctx, script)
	if err != nil {
		var ce *CommunicationError
		if errors.As(err, &ce) {
			return scriptResponse{}, err
		}
		return scriptResponse{}, &CommunicationError{Op: op, Err: err}
	}

	var resp scriptResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return scriptResponse{}, &CommunicationError{Op: op, Err: fmt.Errorf("decoding script result: %w", err)}
	}
	if resp.Stale {
		return scriptResponse{}, &CommunicationError{Op: op, Transient: true, Err: ErrStaleReference}
	}

	return resp, nil
}
