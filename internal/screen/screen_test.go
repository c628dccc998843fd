package screen_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"firelist/internal/logging"
	"firelist/internal/screen"
	"firelist/internal/service"
	"firelist/internal/testutil"
)

// mountTasks mounts a task screen and returns a channel of rendered snapshots.
func mountTasks(t *testing.T, s *screen.TaskScreen) <-chan []service.Task {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	renders := make(chan []service.Task, 16)
	done := make(chan error, 1)

	go func() {
		done <- s.Mount(ctx, func(items []service.Task) { renders <- items })
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return renders
}

func mountProducts(t *testing.T, s *screen.ProductScreen) <-chan []service.Product {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	renders := make(chan []service.Product, 16)
	done := make(chan error, 1)

	go func() {
		done <- s.Mount(ctx, func(items []service.Product) { renders <- items })
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return renders
}

func next[T any](t *testing.T, renders <-chan []T) []T {
	t.Helper()
	select {
	case items := <-renders:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func texts(tasks []service.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Text)
	}
	return out
}

func TestTaskScreen_SnapshotsReplaceItemsNewestFirst(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedTask("t1", "first")
	svc.SeedTask("t2", "second")

	s := screen.NewTaskScreen(svc, zap.NewNop())
	renders := mountTasks(t, s)

	assert.Equal(t, []string{"second", "first"}, texts(next(t, renders)))

	svc.SeedTask("t3", "third")
	got := next(t, renders)
	assert.Equal(t, []string{"third", "second", "first"}, texts(got))

	if diff := cmp.Diff(got, s.Items(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Items() differs from last render (-render +items):\n%s", diff)
	}
}

func TestTaskScreen_AddEmptyInputRejectedBeforeRemoteCall(t *testing.T) {
	svc := testutil.NewFakeService()
	s := screen.NewTaskScreen(svc, zap.NewNop())

	for _, input := range []string{"", "   "} {
		s.SetInput(input)
		err := s.Add(context.Background())

		var alert *screen.Alert
		require.True(t, errors.As(err, &alert), "input %q", input)
		assert.Equal(t, "Error", alert.Title)
		assert.Equal(t, screen.MsgEnterTask, alert.Message)
	}
	assert.Equal(t, 0, svc.CallCount("AddTask"))
}

func TestTaskScreen_AddClearsInputAndArrivesBySnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	s := screen.NewTaskScreen(svc, zap.NewNop())
	renders := mountTasks(t, s)
	assert.Empty(t, next(t, renders))

	s.SetInput("Buy milk")
	require.NoError(t, s.Add(context.Background()))

	assert.Equal(t, "", s.Input())
	assert.Equal(t, []string{"Buy milk"}, texts(next(t, renders)))
}

func TestTaskScreen_AddRemoteFailureIsLoggedAndKeepsInput(t *testing.T) {
	var logBuf bytes.Buffer
	svc := testutil.NewFakeService()
	svc.AddTaskErr = service.ErrUnavailable

	s := screen.NewTaskScreen(svc, logging.New(&logBuf, false, false))
	s.SetInput("Buy milk")

	require.NoError(t, s.Add(context.Background()))
	assert.Equal(t, "Buy milk", s.Input())
	assert.Contains(t, logBuf.String(), "error adding task")
}

func TestTaskScreen_Update(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedTask("t1", "Buy milk")

	s := screen.NewTaskScreen(svc, zap.NewNop())
	renders := mountTasks(t, s)
	next(t, renders)

	err := s.Update(context.Background(), "t1", " ")
	var alert *screen.Alert
	require.True(t, errors.As(err, &alert))
	assert.Equal(t, screen.MsgTaskEmpty, alert.Message)
	assert.Equal(t, 0, svc.CallCount("UpdateTask"))

	require.NoError(t, s.Update(context.Background(), "missing", "text"))
	assert.Equal(t, 0, svc.CallCount("UpdateTask"))

	require.NoError(t, s.Update(context.Background(), "t1", "Buy oat milk"))
	assert.Equal(t, []string{"Buy oat milk"}, texts(next(t, renders)))
}

func TestTaskScreen_UpdateHasNoOptimisticChange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedTask("t1", "Buy milk")
	svc.UpdateTaskErr = service.ErrPermissionDenied

	s := screen.NewTaskScreen(svc, zap.NewNop())
	renders := mountTasks(t, s)
	next(t, renders)

	require.NoError(t, s.Update(context.Background(), "t1", "changed"))
	assert.Equal(t, []string{"Buy milk"}, texts(s.Items()))
}

func TestTaskScreen_DeleteRemovesFromNextSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedTask("t1", "keep")
	svc.SeedTask("t2", "drop")

	s := screen.NewTaskScreen(svc, zap.NewNop())
	renders := mountTasks(t, s)
	next(t, renders)

	s.Delete(context.Background(), "t2")
	assert.Equal(t, []string{"keep"}, texts(next(t, renders)))
}

func TestTaskScreen_DeleteFailureLogged(t *testing.T) {
	var logBuf bytes.Buffer
	svc := testutil.NewFakeService()
	svc.DeleteTaskErr = service.ErrUnavailable

	s := screen.NewTaskScreen(svc, logging.New(&logBuf, false, false))
	s.Delete(context.Background(), "t1")
	assert.Contains(t, logBuf.String(), "error deleting task")
}

func TestTaskScreen_UnmountStopsSubscription(t *testing.T) {
	svc := testutil.NewFakeService()
	s := screen.NewTaskScreen(svc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	rendered := make(chan struct{}, 1)
	go func() {
		done <- s.Mount(ctx, func([]service.Task) {
			select {
			case rendered <- struct{}{}:
			default:
			}
		})
	}()

	<-rendered
	assert.Equal(t, 1, svc.OpenSubscriptions())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, svc.OpenSubscriptions())

	assert.ErrorIs(t, s.Mount(context.Background(), nil), screen.ErrAlreadyMounted)
}

func TestTaskScreen_MountReturnsSubscriptionError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.WatchTasksErr = service.ErrPermissionDenied

	s := screen.NewTaskScreen(svc, zap.NewNop())
	err := s.Mount(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestProductScreen_AddValidation(t *testing.T) {
	svc := testutil.NewFakeService()
	s := screen.NewProductScreen(svc, zap.NewNop())

	tests := []struct {
		form screen.ProductForm
		msg  string
	}{
		{screen.ProductForm{Name: "", Type: "Food", Price: "1"}, screen.MsgFillAllFields},
		{screen.ProductForm{Name: "Pho", Type: " ", Price: "1"}, screen.MsgFillAllFields},
		{screen.ProductForm{Name: "Pho", Type: "Food", Price: ""}, screen.MsgFillAllFields},
		{screen.ProductForm{Name: "Pho", Type: "Food", Price: "abc"}, screen.MsgInvalidPrice},
	}

	for _, tt := range tests {
		s.SetForm(tt.form)
		err := s.Add(context.Background())

		var alert *screen.Alert
		require.True(t, errors.As(err, &alert), "form %+v", tt.form)
		assert.Equal(t, tt.msg, alert.Message)
		assert.Equal(t, tt.form, s.Form(), "form must be kept on alert")
	}
	assert.Equal(t, 0, svc.CallCount("AddProduct"))
}

func TestProductScreen_AddClearsForm(t *testing.T) {
	svc := testutil.NewFakeService()
	s := screen.NewProductScreen(svc, zap.NewNop())
	renders := mountProducts(t, s)
	assert.Empty(t, next(t, renders))

	s.SetForm(screen.ProductForm{Name: "Pho", Type: "Food", Price: "45000"})
	require.NoError(t, s.Add(context.Background()))
	assert.Equal(t, screen.ProductForm{}, s.Form())

	got := next(t, renders)
	require.Len(t, got, 1)
	assert.Equal(t, service.ProductFields{Name: "Pho", Type: "Food", Price: 45000}, got[0].Fields())
}

func TestProductScreen_EditorFlow(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedProduct("p1", service.ProductFields{Name: "Pho", Type: "Food", Price: 45000.5})

	s := screen.NewProductScreen(svc, zap.NewNop())
	renders := mountProducts(t, s)
	next(t, renders)

	assert.False(t, s.OpenEditor("missing"))
	assert.Equal(t, screen.EditorIdle, s.State())

	require.True(t, s.OpenEditor("p1"))
	assert.Equal(t, screen.EditorOpen, s.State())
	assert.Equal(t, "p1", s.Selected())
	assert.Equal(t, screen.ProductForm{Name: "Pho", Type: "Food", Price: "45000.5"}, s.Draft())

	// Blank draft keeps the editor open and sends nothing.
	s.SetDraft(screen.ProductForm{Name: "Pho", Type: "", Price: "1"})
	var alert *screen.Alert
	require.True(t, errors.As(s.SubmitEdit(context.Background()), &alert))
	assert.Equal(t, screen.MsgFillAllFields, alert.Message)
	assert.Equal(t, screen.EditorOpen, s.State())
	assert.Equal(t, 0, svc.CallCount("UpdateProduct"))

	s.SetDraft(screen.ProductForm{Name: "Bun bo", Type: "Food", Price: "50000"})
	require.NoError(t, s.SubmitEdit(context.Background()))
	assert.Equal(t, screen.EditorIdle, s.State())
	assert.Equal(t, screen.ProductForm{}, s.Draft())

	got := next(t, renders)
	require.Len(t, got, 1)
	assert.Equal(t, "Bun bo", got[0].Name)
	assert.Equal(t, 50000.0, got[0].Price)
}

func TestProductScreen_CancelEditSendsNothing(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedProduct("p1", service.ProductFields{Name: "Pho", Type: "Food", Price: 1})

	s := screen.NewProductScreen(svc, zap.NewNop())
	renders := mountProducts(t, s)
	next(t, renders)

	require.True(t, s.OpenEditor("p1"))
	s.CancelEdit()
	assert.Equal(t, screen.EditorIdle, s.State())
	assert.ErrorIs(t, s.SubmitEdit(context.Background()), screen.ErrEditorClosed)
	assert.Equal(t, 0, svc.CallCount("UpdateProduct"))
}

func TestProductScreen_SubmitFailureKeepsEditorOpen(t *testing.T) {
	var logBuf bytes.Buffer
	svc := testutil.NewFakeService()
	svc.SeedProduct("p1", service.ProductFields{Name: "Pho", Type: "Food", Price: 1})
	svc.UpdateProductErr = service.ErrUnavailable

	s := screen.NewProductScreen(svc, logging.New(&logBuf, false, false))
	renders := mountProducts(t, s)
	next(t, renders)

	require.True(t, s.OpenEditor("p1"))
	require.NoError(t, s.SubmitEdit(context.Background()))
	assert.Equal(t, screen.EditorOpen, s.State())
	assert.Contains(t, logBuf.String(), "error updating product")
}

func TestProductScreen_DeleteRemovesFromNextSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedProduct("p1", service.ProductFields{Name: "Pho", Type: "Food", Price: 1})

	s := screen.NewProductScreen(svc, zap.NewNop())
	renders := mountProducts(t, s)
	require.Len(t, next(t, renders), 1)

	s.Delete(context.Background(), "p1")
	assert.Empty(t, next(t, renders))
}

type recordingNavigator struct {
	routes []string
}

func (n *recordingNavigator) Navigate(route string) { n.routes = append(n.routes, route) }

func TestSignUpScreen_FailureShowsProviderTextAndStays(t *testing.T) {
	svc := testutil.NewFakeService()
	nav := &recordingNavigator{}
	s := screen.NewSignUpScreen(svc, zap.NewNop(), nav)

	s.SetEmail("a@example.com")
	s.SetPassword("123")
	_, err := s.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, "password must be a string at least 6 characters long", s.ErrorText())
	assert.Empty(t, nav.routes)
}

func TestSignUpScreen_NonProviderError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SignUpErr = errors.New("network is unreachable")
	nav := &recordingNavigator{}
	s := screen.NewSignUpScreen(svc, zap.NewNop(), nav)

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "network is unreachable", s.ErrorText())
	assert.Empty(t, nav.routes)
}

func TestSignUpScreen_SuccessNavigatesToLogin(t *testing.T) {
	svc := testutil.NewFakeService()
	nav := &recordingNavigator{}
	s := screen.NewSignUpScreen(svc, zap.NewNop(), nav)

	s.SetEmail("a@example.com")
	s.SetPassword("123")
	_, err := s.Submit(context.Background())
	require.Error(t, err)

	s.SetPassword("secret-password")
	user, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", user.Email)
	assert.NotEmpty(t, user.UID)
	assert.Empty(t, s.ErrorText())
	assert.Equal(t, []string{screen.RouteLogin}, nav.routes)
}

func TestSignUpScreen_DuplicateEmail(t *testing.T) {
	svc := testutil.NewFakeService()
	s := screen.NewSignUpScreen(svc, zap.NewNop(), nil)

	s.SetEmail("a@example.com")
	s.SetPassword("secret-password")
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	_, err = s.Submit(context.Background())
	var perr *service.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "email-already-exists", perr.Code)
	assert.Equal(t, perr.Message, s.ErrorText())
}
