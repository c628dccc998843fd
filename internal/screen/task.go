// Package screen holds the state of the task, product and sign-up screens.
//
// A screen owns its form fields and a projection of the latest snapshot of
// its collection. The projection is never edited locally: every snapshot
// replaces it, and mutations only reach it through the next snapshot.
package screen

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"firelist/internal/service"
	"firelist/internal/validate"
)

// Alert is a blocking validation message shown to the user.
type Alert struct {
	Title   string
	Message string
}

func (a *Alert) Error() string { return a.Message }

// ErrAlreadyMounted is returned when Mount is called a second time.
var ErrAlreadyMounted = errors.New("screen already mounted")

// Alert messages.
const (
	MsgEnterTask     = "Please enter a task"
	MsgTaskEmpty     = "Task cannot be empty"
	MsgFillAllFields = "Please fill in all fields"
	MsgInvalidPrice  = "Price must be a number"
)

const alertTitle = "Error"

func newAlert(msg string) *Alert {
	return &Alert{Title: alertTitle, Message: msg}
}

// TaskScreen is the todo list screen.
type TaskScreen struct {
	svc service.Service
	log *zap.Logger

	mu      sync.Mutex
	input   string
	items   []service.Task
	mounted bool
}

// NewTaskScreen creates an unmounted task screen.
func NewTaskScreen(svc service.Service, log *zap.Logger) *TaskScreen {
	return &TaskScreen{svc: svc, log: log}
}

// Mount subscribes to the tasks collection and applies every snapshot until
// ctx ends or the subscription fails. render, if non-nil, is called after each
// snapshot with the new items. Cancelling ctx unmounts the screen; it cannot
// be mounted again.
func (s *TaskScreen) Mount(ctx context.Context, render func([]service.Task)) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.mounted = true
	s.mu.Unlock()

	return mount(ctx, s.svc.WatchTasks, s.apply, render)
}

func (s *TaskScreen) apply(items []service.Task) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Items returns the latest snapshot.
func (s *TaskScreen) Items() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Task(nil), s.items...)
}

// Find returns the task with id from the latest snapshot.
func (s *TaskScreen) Find(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// SetInput sets the add-task input field.
func (s *TaskScreen) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// Input returns the add-task input field.
func (s *TaskScreen) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Add creates a task from the input field.
// A blank input returns an *Alert without contacting the backend. Backend
// failures are logged and the input is kept; on success the input is cleared.
func (s *TaskScreen) Add(ctx context.Context) error {
	text := s.Input()
	if err := validate.Task(validate.TaskForm{Text: text}); err != nil {
		return newAlert(MsgEnterTask)
	}

	id, err := s.svc.AddTask(ctx, text)
	if err != nil {
		s.log.Error("error adding task", zap.Error(err))
		return nil
	}
	s.log.Debug("task added", zap.String("id", id))

	s.mu.Lock()
	if s.input == text {
		s.input = ""
	}
	s.mu.Unlock()
	return nil
}

// Update replaces the text of a task present in the latest snapshot.
// Unknown IDs are ignored. Blank text returns an *Alert.
func (s *TaskScreen) Update(ctx context.Context, id, text string) error {
	if _, ok := s.Find(id); !ok {
		return nil
	}
	if err := validate.Task(validate.TaskForm{Text: text}); err != nil {
		return newAlert(MsgTaskEmpty)
	}

	if err := s.svc.UpdateTask(ctx, id, text); err != nil {
		s.log.Error("error updating task", zap.String("id", id), zap.Error(err))
	}
	return nil
}

// Delete removes a task. Failures are logged.
func (s *TaskScreen) Delete(ctx context.Context, id string) {
	if err := s.svc.DeleteTask(ctx, id); err != nil {
		s.log.Error("error deleting task", zap.String("id", id), zap.Error(err))
	}
}

// mount runs the subscription loop shared by the list screens.
// Stop is called on the subscribing goroutine once Next returns.
func mount[T any](ctx context.Context, watch func(context.Context) service.Snapshots[T], apply func([]T), render func([]T)) error {
	sub := watch(ctx)
	defer sub.Stop()

	for {
		items, err := sub.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, service.ErrSubscriptionStopped) {
				return nil
			}
			return err
		}
		apply(items)
		if render != nil {
			render(items)
		}
	}
}
