package agent

import (
	"fmt"

	"github.com/zentest-dev/zentest/internal/model"
)

// validateActions enforces the model-response validation contract: an
// unrecognized action type truncates the batch at that point and replaces
// it with a failing done, since the driver has nothing to execute for a
// type it doesn't know. An empty batch (the model returned {"actions":[]})
// is itself replaced with its own failing done rather than retried forever.
func validateActions(actions []model.Action) []model.Action {
	if len(actions) == 0 {
		return []model.Action{unknownActionDone("No actions returned")}
	}
	for i, a := range actions {
		if a.Type.IsKnown() {
			continue
		}
		valid := append([]model.Action{}, actions[:i]...)
		return append(valid, unknownActionDone(fmt.Sprintf("Unknown action: %s", a.Type)))
	}
	return actions
}

func unknownActionDone(reason string) model.Action {
	return model.Action{Type: model.ActionDone, Success: false, Reason: reason}
}
