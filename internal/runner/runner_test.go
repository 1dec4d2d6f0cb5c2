package runner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/replay"
)

func TestCountExecutedExcludesDone(t *testing.T) {
	steps := []model.RecordedStep{
		{Action: model.Action{Type: model.ActionClick}},
		{Action: model.Action{Type: model.ActionTyping}},
		{Action: model.Action{Type: model.ActionDone}},
	}
	if got := countExecuted(steps); got != 2 {
		t.Errorf("countExecuted = %d, want 2", got)
	}
}

func TestCountExecutedEmpty(t *testing.T) {
	if got := countExecuted(nil); got != 0 {
		t.Errorf("countExecuted(nil) = %d, want 0", got)
	}
}

func TestErrorsAsFindsFailedStepError(t *testing.T) {
	fse := &replay.FailedStepError{Index: 3, Err: errors.New("button missing")}
	wrapped := fmt.Errorf("static replay failed: %w", fse)

	var got *replay.FailedStepError
	if !errorsAs(wrapped, &got) {
		t.Fatal("expected errorsAs to unwrap to a *FailedStepError")
	}
	if got.Index != 3 {
		t.Errorf("Index = %d, want 3", got.Index)
	}
}

func TestErrorsAsMissesUnrelatedError(t *testing.T) {
	var got *replay.FailedStepError
	if errorsAs(errors.New("some other failure"), &got) {
		t.Error("expected errorsAs to return false for an unrelated error")
	}
}

func TestTokenTotalsZeroWithoutUsage(t *testing.T) {
	in, out := tokenTotals([]model.RecordedStep{{}, {}})
	if in != 0 || out != 0 {
		t.Errorf("tokenTotals = (%d, %d), want (0, 0)", in, out)
	}
}
