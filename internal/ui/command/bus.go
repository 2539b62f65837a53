package command

import (
	"context"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Action performs the side effects of a command and returns a message for
// the status line.
type Action func(ctx context.Context) (info string, err error)

// Request encapsulates an action invocation.
type Request struct {
	ID      string
	Label   string
	Handler Action
}

// Result is delivered to the model once a request has run.
type Result struct {
	ID    string
	Label string
	Info  string
	Err   error
}

// Bus coordinates the execution of popup commands.
type Bus struct {
	timeout time.Duration
}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{timeout: 10 * time.Second}
}

// Execute wraps an action into a Bubble Tea command while emitting trace
// logs. Requests without an ID get a fresh one so their trace entries can be
// correlated.
func (b *Bus) Execute(req Request) tea.Cmd {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Handler == nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		info, err := req.Handler(ctx)
		res := Result{ID: req.ID, Label: req.Label, Info: info, Err: err}
		events.Command.Result(req.ID, req.Label, err)
		return res
	}
}
