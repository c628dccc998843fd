// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"firelist/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Every mutation pushes a fresh full snapshot, ordered by CreatedAt descending,
// to all open subscriptions of the affected collection.
type FakeService struct {
	mu       sync.Mutex
	tasks    map[string]service.Task
	products map[string]service.Product
	users    map[string]service.User
	now      time.Time

	taskSubs    map[*fakeSnapshots[service.Task]]struct{}
	productSubs map[*fakeSnapshots[service.Product]]struct{}

	// Calls counts calls by method name. Watch calls count as reads.
	Calls map[string]int

	// Error injection for testing
	WatchTasksErr    error
	WatchProductsErr error
	AddTaskErr       error
	UpdateTaskErr    error
	DeleteTaskErr    error
	AddProductErr    error
	UpdateProductErr error
	DeleteProductErr error
	SignUpErr        error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		tasks:       make(map[string]service.Task),
		products:    make(map[string]service.Product),
		users:       make(map[string]service.User),
		now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		taskSubs:    make(map[*fakeSnapshots[service.Task]]struct{}),
		productSubs: make(map[*fakeSnapshots[service.Product]]struct{}),
		Calls:       make(map[string]int),
	}
}

// tick returns a strictly increasing creation time. Caller holds f.mu.
func (f *FakeService) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

// SeedTask stores a task with a fixed ID without counting it as a call.
// Later seeds are newer.
func (f *FakeService) SeedTask(id, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[id] = service.Task{ID: id, Text: text, CreatedAt: f.tick()}
	f.publishTasks()
}

// SeedProduct stores a product with a fixed ID without counting it as a call.
func (f *FakeService) SeedProduct(id string, fields service.ProductFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = service.Product{
		ID: id, Name: fields.Name, Type: fields.Type, Price: fields.Price, CreatedAt: f.tick(),
	}
	f.publishProducts()
}

// Tasks returns the stored tasks, newest first.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskList()
}

// Products returns the stored products, newest first.
func (f *FakeService) Products() []service.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productList()
}

// Users returns the created accounts keyed by email.
func (f *FakeService) Users() map[string]service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make(map[string]service.User, len(f.users))
	for k, v := range f.users {
		users[k] = v
	}
	return users
}

// CallCount returns how many times a method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// OpenSubscriptions returns the number of live subscriptions.
func (f *FakeService) OpenSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taskSubs) + len(f.productSubs)
}

func (f *FakeService) taskList() []service.Task {
	list := make([]service.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (f *FakeService) productList() []service.Product {
	list := make([]service.Product, 0, len(f.products))
	for _, p := range f.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (f *FakeService) publishTasks() {
	list := f.taskList()
	for sub := range f.taskSubs {
		sub.push(list)
	}
}

func (f *FakeService) publishProducts() {
	list := f.productList()
	for sub := range f.productSubs {
		sub.push(list)
	}
}

// BreakTasks makes every open tasks subscription fail with err once its
// pending snapshot has been read. The returned channel is closed when the
// contexts of those subscriptions are done.
func (f *FakeService) BreakTasks(err error) <-chan struct{} {
	f.mu.Lock()
	var ctxs []context.Context
	for sub := range f.taskSubs {
		sub.fail(err)
		ctxs = append(ctxs, sub.ctx)
	}
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, ctx := range ctxs {
			<-ctx.Done()
		}
		close(done)
	}()
	return done
}

// WatchTasks implements service.Service.
func (f *FakeService) WatchTasks(ctx context.Context) service.Snapshots[service.Task] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["WatchTasks"]++

	sub := newFakeSnapshots[service.Task](ctx, f.WatchTasksErr, func(s *fakeSnapshots[service.Task]) {
		f.mu.Lock()
		delete(f.taskSubs, s)
		f.mu.Unlock()
	})
	if f.WatchTasksErr == nil {
		f.taskSubs[sub] = struct{}{}
		sub.push(f.taskList())
	}
	return sub
}

// WatchProducts implements service.Service.
func (f *FakeService) WatchProducts(ctx context.Context) service.Snapshots[service.Product] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["WatchProducts"]++

	sub := newFakeSnapshots[service.Product](ctx, f.WatchProductsErr, func(s *fakeSnapshots[service.Product]) {
		f.mu.Lock()
		delete(f.productSubs, s)
		f.mu.Unlock()
	})
	if f.WatchProductsErr == nil {
		f.productSubs[sub] = struct{}{}
		sub.push(f.productList())
	}
	return sub
}

// AddTask implements service.Service.
func (f *FakeService) AddTask(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["AddTask"]++

	if f.AddTaskErr != nil {
		return "", f.AddTaskErr
	}

	id := uuid.NewString()
	f.tasks[id] = service.Task{ID: id, Text: text, CreatedAt: f.tick()}
	f.publishTasks()
	return id, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["UpdateTask"]++

	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}

	t, ok := f.tasks[id]
	if !ok {
		return service.ErrNotFound
	}
	t.Text = text
	f.tasks[id] = t
	f.publishTasks()
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["DeleteTask"]++

	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	delete(f.tasks, id)
	f.publishTasks()
	return nil
}

// AddProduct implements service.Service.
func (f *FakeService) AddProduct(ctx context.Context, fields service.ProductFields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["AddProduct"]++

	if f.AddProductErr != nil {
		return "", f.AddProductErr
	}

	id := uuid.NewString()
	f.products[id] = service.Product{
		ID: id, Name: fields.Name, Type: fields.Type, Price: fields.Price, CreatedAt: f.tick(),
	}
	f.publishProducts()
	return id, nil
}

// UpdateProduct implements service.Service.
func (f *FakeService) UpdateProduct(ctx context.Context, id string, fields service.ProductFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["UpdateProduct"]++

	if f.UpdateProductErr != nil {
		return f.UpdateProductErr
	}

	p, ok := f.products[id]
	if !ok {
		return service.ErrNotFound
	}
	p.Name, p.Type, p.Price = fields.Name, fields.Type, fields.Price
	f.products[id] = p
	f.publishProducts()
	return nil
}

// DeleteProduct implements service.Service.
func (f *FakeService) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["DeleteProduct"]++

	if f.DeleteProductErr != nil {
		return f.DeleteProductErr
	}

	delete(f.products, id)
	f.publishProducts()
	return nil
}

// SignUp implements service.Service.
// It mimics the provider's checks for duplicate emails and short passwords.
func (f *FakeService) SignUp(ctx context.Context, email, password string) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["SignUp"]++

	if f.SignUpErr != nil {
		return service.User{}, f.SignUpErr
	}
	if email == "" {
		return service.User{}, &service.ProviderError{Code: "invalid-email", Message: "email must be a non-empty string"}
	}
	if len(password) < 6 {
		return service.User{}, &service.ProviderError{Code: "invalid-password", Message: "password must be a string at least 6 characters long"}
	}
	if _, ok := f.users[email]; ok {
		return service.User{}, &service.ProviderError{Code: "email-already-exists", Message: "user with the provided email already exists"}
	}

	u := service.User{UID: uuid.NewString(), Email: email}
	f.users[email] = u
	return u, nil
}

// Close implements service.Service.
func (f *FakeService) Close() error {
	return nil
}

// fakeSnapshots keeps only the latest pending snapshot, like a live query
// that coalesces changes the reader has not consumed yet.
type fakeSnapshots[T any] struct {
	ctx     context.Context
	err     error
	onStop  func(*fakeSnapshots[T])
	notify  chan struct{}
	mu      sync.Mutex
	pending []T
	has     bool
	broken  error
	stopped bool
}

func newFakeSnapshots[T any](ctx context.Context, err error, onStop func(*fakeSnapshots[T])) *fakeSnapshots[T] {
	return &fakeSnapshots[T]{
		ctx:    ctx,
		err:    err,
		onStop: onStop,
		notify: make(chan struct{}, 1),
	}
}

func (s *fakeSnapshots[T]) push(list []T) {
	s.mu.Lock()
	s.pending = append([]T(nil), list...)
	s.has = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *fakeSnapshots[T]) fail(err error) {
	s.mu.Lock()
	s.broken = err
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next implements service.Snapshots.
func (s *fakeSnapshots[T]) Next() ([]T, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return nil, service.ErrSubscriptionStopped
		}
		if err := s.ctx.Err(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		if !s.has && s.broken != nil {
			err := s.broken
			s.mu.Unlock()
			return nil, err
		}
		if s.has {
			list := s.pending
			s.pending, s.has = nil, false
			s.mu.Unlock()
			return list, nil
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-s.ctx.Done():
		}
	}
}

// Stop implements service.Snapshots.
func (s *fakeSnapshots[T]) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if s.onStop != nil {
		s.onStop(s)
	}
}
