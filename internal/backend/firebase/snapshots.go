package firebase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"firelist/internal/service"
)

// snapshots adapts a Firestore query snapshot iterator to service.Snapshots.
// Every QuerySnapshot is read in full; document changes are ignored.
type snapshots[T any] struct {
	ctx     context.Context
	it      *firestore.QuerySnapshotIterator
	decode  func(id string, data map[string]interface{}) T
	stopped bool
}

func watch[T any](ctx context.Context, coll *firestore.CollectionRef, orderField string, decode func(string, map[string]interface{}) T) *snapshots[T] {
	q := coll.OrderBy(orderField, firestore.Desc)
	return &snapshots[T]{
		ctx:    ctx,
		it:     q.Snapshots(ctx),
		decode: decode,
	}
}

// Next implements service.Snapshots.
func (s *snapshots[T]) Next() ([]T, error) {
	if s.stopped {
		return nil, service.ErrSubscriptionStopped
	}

	qs, err := s.it.Next()
	if err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, service.ErrSubscriptionStopped
		}
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, wrapError(err)
	}

	docs, err := qs.Documents.GetAll()
	if err != nil {
		return nil, wrapError(err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, s.decode(doc.Ref.ID, doc.Data()))
	}
	return items, nil
}

// Stop implements service.Snapshots.
func (s *snapshots[T]) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.it.Stop()
}

// decodeTask maps a tasks document. Missing or mistyped fields decode to zero values.
func decodeTask(id string, data map[string]interface{}) service.Task {
	return service.Task{
		ID:        id,
		Text:      stringField(data, fieldTask),
		CreatedAt: timeField(data, fieldCreatedAt),
	}
}

// decodeProduct maps a products document. Missing or mistyped fields decode to zero values.
func decodeProduct(id string, data map[string]interface{}) service.Product {
	return service.Product{
		ID:        id,
		Name:      stringField(data, fieldProductName),
		Type:      stringField(data, fieldProductType),
		Price:     numberField(data, fieldPrice),
		CreatedAt: timeField(data, fieldCreatedAt),
	}
}

func stringField(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func numberField(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		if math.IsNaN(v) {
			return 0
		}
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func timeField(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}
