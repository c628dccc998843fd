// Package service defines the backend-agnostic interface for task and product operations.
package service

import "context"

// Snapshots is a live query subscription.
// Each call to Next returns the complete, remotely ordered result set; the
// first call returns the current data and later calls block until it changes.
// A subscription cannot be restarted: once Stop is called or the context it
// was opened with ends, Next keeps returning an error.
//
// Stop must not be called concurrently with Next. Cancel the subscription
// context to unblock a pending Next, then call Stop.
type Snapshots[T any] interface {
	Next() ([]T, error)
	Stop()
}

// Service defines the interface for backend operations.
// All Firestore and Firebase Auth calls go through this interface.
// Commands and screens never import the Firebase SDK directly.
type Service interface {
	// WatchTasks subscribes to the tasks collection ordered by createdAt, newest first.
	WatchTasks(ctx context.Context) Snapshots[Task]

	// AddTask creates a task and returns its server-assigned ID.
	AddTask(ctx context.Context, text string) (string, error)

	// UpdateTask overwrites the text of an existing task.
	UpdateTask(ctx context.Context, id, text string) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// WatchProducts subscribes to the products collection ordered by createdAt, newest first.
	WatchProducts(ctx context.Context) Snapshots[Product]

	// AddProduct creates a product and returns its server-assigned ID.
	AddProduct(ctx context.Context, fields ProductFields) (string, error)

	// UpdateProduct overwrites name, type and price of an existing product.
	// createdAt is left untouched.
	UpdateProduct(ctx context.Context, id string, fields ProductFields) error

	// DeleteProduct deletes a product.
	DeleteProduct(ctx context.Context, id string) error

	// SignUp creates an email/password account with the auth provider.
	// Provider rejections are returned as *ProviderError.
	SignUp(ctx context.Context, email, password string) (User, error)

	// Close releases backend connections.
	Close() error
}

// First opens a subscription, returns its first snapshot and stops it.
func First[T any](ctx context.Context, watch func(context.Context) Snapshots[T]) ([]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := watch(ctx)
	defer sub.Stop()

	return sub.Next()
}
