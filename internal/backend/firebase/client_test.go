package firebase

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"firelist/internal/config"
	"firelist/internal/service"
)

func TestDecodeTask(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	got := decodeTask("abc", map[string]interface{}{
		"task":      "Buy milk",
		"createdAt": created,
	})
	want := service.Task{ID: "abc", Text: "Buy milk", CreatedAt: created}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decodeTask mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTask_MissingFields(t *testing.T) {
	got := decodeTask("abc", map[string]interface{}{})
	assert.Equal(t, service.Task{ID: "abc"}, got)
}

func TestDecodeProduct(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		price interface{}
		want  float64
	}{
		{"double", 12.5, 12.5},
		{"integer", int64(45000), 45000},
		{"nan", math.NaN(), 0},
		{"string", "12", 0},
		{"missing", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]interface{}{
				"productName": "Pho",
				"productType": "Food",
				"createdAt":   created,
			}
			if tt.price != nil {
				data["price"] = tt.price
			}
			got := decodeProduct("p1", data)
			want := service.Product{ID: "p1", Name: "Pho", Type: "Food", Price: tt.want, CreatedAt: created}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("decodeProduct mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProductUpdates_LeaveCreatedAt(t *testing.T) {
	updates := productUpdates(service.ProductFields{Name: "Pho", Type: "Food", Price: 3})
	require.Len(t, updates, 3)

	paths := make([]string, 0, len(updates))
	for _, u := range updates {
		paths = append(paths, u.Path)
	}
	assert.Equal(t, []string{"productName", "productType", "price"}, paths)
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", status.Error(codes.NotFound, "no document"), service.ErrNotFound},
		{"permission", status.Error(codes.PermissionDenied, "rules"), service.ErrPermissionDenied},
		{"unauthenticated", status.Error(codes.Unauthenticated, "token"), service.ErrUnauthenticated},
		{"deadline status", status.Error(codes.DeadlineExceeded, "slow"), service.ErrTimeout},
		{"deadline ctx", context.DeadlineExceeded, service.ErrTimeout},
		{"unavailable", status.Error(codes.Unavailable, "down"), service.ErrUnavailable},
		{"canceled", status.Error(codes.Canceled, "bye"), context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(wrapError(tt.err), tt.want), "got %v", wrapError(tt.err))
		})
	}

	assert.NoError(t, wrapError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, wrapError(plain))
}

func TestWrapAuthError_KeepsMessage(t *testing.T) {
	err := wrapAuthError(errors.New("malformed email string: \"nope\""))

	var perr *service.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "malformed email string: \"nope\"", perr.Error())
	assert.Equal(t, "internal-error", perr.Code)
}

func TestClientOptions_Emulator(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:8080")

	cfg := config.New(t.TempDir())
	projectID, opts, err := clientOptions(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, EmulatorProjectID, projectID)
	assert.Len(t, opts, 1)
}

func TestClientOptions_TokenWithoutProject(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")

	dir := t.TempDir()
	cfg := config.New(dir)
	oauthClient := `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(cfg.OAuthClientPath(), []byte(oauthClient), 0600))
	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte(`{"refresh_token":"r"}`), 0600))

	_, _, err := clientOptions(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project id not set")
	assert.ErrorIs(t, err, service.ErrNotConfigured)
}

// TestEmulator_TaskLifecycle runs against the Firestore emulator when
// FIRESTORE_EMULATOR_HOST is set.
func TestEmulator_TaskLifecycle(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.New(t.TempDir())
	cfg.Settings.TasksCollection = "tasks-" + t.Name()

	c, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	watchCtx, stopWatch := context.WithCancel(ctx)
	sub := c.WatchTasks(watchCtx)
	defer sub.Stop()
	defer stopWatch()

	first, err := sub.Next()
	require.NoError(t, err)
	require.Empty(t, first)

	id, err := c.AddTask(ctx, "Buy milk")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	waitFor(t, sub, func(tasks []service.Task) bool {
		return len(tasks) == 1 && tasks[0].ID == id && tasks[0].Text == "Buy milk"
	})

	require.NoError(t, c.UpdateTask(ctx, id, "Buy oat milk"))
	waitFor(t, sub, func(tasks []service.Task) bool {
		return len(tasks) == 1 && tasks[0].Text == "Buy oat milk"
	})

	require.NoError(t, c.DeleteTask(ctx, id))
	waitFor(t, sub, func(tasks []service.Task) bool { return len(tasks) == 0 })

	err = c.UpdateTask(ctx, id, "gone")
	assert.True(t, errors.Is(err, service.ErrNotFound), "got %v", err)
}

func waitFor(t *testing.T, sub service.Snapshots[service.Task], done func([]service.Task) bool) {
	t.Helper()
	for {
		tasks, err := sub.Next()
		require.NoError(t, err)
		if done(tasks) {
			return
		}
	}
}
