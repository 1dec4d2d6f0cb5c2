package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/provider"
)

type fakeClient struct {
	responses []string
	calls     int
}

func (f *fakeClient) Next(ctx context.Context, req provider.Request) (*provider.Response, error) {
	if f.calls >= len(f.responses) {
		return &provider.Response{Text: `{"reasoning":"done","actions":[{"type":"done","success":true}]}`}, nil
	}
	text := f.responses[f.calls]
	f.calls++
	return &provider.Response{Text: text}, nil
}

type fakeExecutor struct {
	results []model.ActionResult
	errs    []error
	calls   int
}

func (f *fakeExecutor) Execute(a model.Action) (model.ActionResult, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return model.ActionResult{}, f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return model.ActionResult{Action: a}, nil
}

func (f *fakeExecutor) Screenshot() (string, error) {
	return "", nil
}

func TestDriverRunCompletesOnDone(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"clicking","actions":[{"type":"click_button","name":"Sign In"},{"type":"done","success":true,"reason":"logged in"}]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	steps, err := d.Run(context.Background(), model.Test{Name: "login", Description: "log in"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps (click + done), got %d: %+v", len(steps), steps)
	}
	if steps[1].Action.Type != model.ActionDone {
		t.Errorf("last step should be done, got %+v", steps[1].Action)
	}
}

func TestDriverRunFailsOnDoneUnsuccessful(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"giving up","actions":[{"type":"done","success":false,"reason":"could not find button"}]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	_, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err == nil {
		t.Fatal("expected an error for unsuccessful done")
	}
}

func TestDriverTrimsPrematureDone(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"still need to fill the password field","actions":[{"type":"type","text":"hunter2"},{"type":"done","success":true}]}`,
		`{"reasoning":"now done","actions":[{"type":"done","success":true}]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	steps, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected type step + done step, got %d: %+v", len(steps), steps)
	}
	if steps[0].Action.Type != model.ActionTyping {
		t.Errorf("first step should be the type action, got %+v", steps[0].Action)
	}
}

func TestDriverStopsOnExecutorError(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"clicking","actions":[{"type":"click_button","name":"Missing"}]}`,
	}}
	exec := &fakeExecutor{errs: []error{errors.New("boom")}}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	_, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err == nil {
		t.Fatal("expected an error when the executor returns one")
	}
}

func TestDriverStalls(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"r","actions":[{"type":"wait","ms":10}]}`,
		`{"reasoning":"r","actions":[{"type":"wait","ms":10}]}`,
		`{"reasoning":"r","actions":[{"type":"wait","ms":10}]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	_, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err == nil {
		t.Fatal("expected a stall error after repeating the same action 3 times")
	}
}

func TestDriverCoercesEmptyActionsArray(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"nothing to do","actions":[]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	steps, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err == nil {
		t.Fatal("expected an error for an empty actions array")
	}
	if len(steps) != 1 || steps[0].Action.Type != model.ActionDone || steps[0].Action.Success {
		t.Fatalf("expected one failing done step, got %+v", steps)
	}
	if steps[0].Action.Reason != "No actions returned" {
		t.Errorf("expected reason %q, got %q", "No actions returned", steps[0].Action.Reason)
	}
}

func TestDriverCoercesUnknownActionType(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"trying something new","actions":[{"type":"teleport","x":1,"y":2}]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	steps, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err == nil {
		t.Fatal("expected an error for an unknown action type")
	}
	if len(steps) != 1 || steps[0].Action.Type != model.ActionDone || steps[0].Action.Success {
		t.Fatalf("expected one failing done step, got %+v", steps)
	}
	if steps[0].Action.Reason != "Unknown action: teleport" {
		t.Errorf("expected reason %q, got %q", "Unknown action: teleport", steps[0].Action.Reason)
	}
}

func TestDriverCoercesUnknownActionMidBatch(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"reasoning":"two steps","actions":[{"type":"wait","ms":10},{"type":"bogus"}]}`,
	}}
	exec := &fakeExecutor{}
	d := New(client, exec, 10, Viewport{Width: 1280, Height: 720})

	steps, err := d.Run(context.Background(), model.Test{Name: "t", Description: "d"})
	if err == nil {
		t.Fatal("expected an error once the coerced done is reached")
	}
	if len(steps) != 2 {
		t.Fatalf("expected the wait step plus the coerced done, got %d: %+v", len(steps), steps)
	}
	if steps[0].Action.Type != model.ActionWait {
		t.Errorf("expected first step to be the valid wait action, got %+v", steps[0].Action)
	}
	if steps[1].Action.Type != model.ActionDone || steps[1].Action.Reason != "Unknown action: bogus" {
		t.Errorf("expected a coerced done with reason naming the bad type, got %+v", steps[1].Action)
	}
}

func TestHasPrematureDoneSignal(t *testing.T) {
	if !hasPrematureDoneSignal("I still need to verify the email field") {
		t.Error("expected match for 'still need'")
	}
	if hasPrematureDoneSignal("all checks passed") {
		t.Error("expected no match")
	}
}
