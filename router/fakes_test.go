package router

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/events"
	"github.com/rayansaffron/storefront/models"
)

type fakeUsers struct {
	mu    sync.Mutex
	users []*models.User
}

func (f *fakeUsers) Register(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return apperr.Errorf(apperr.KindConflict, "fake.Register", "user already exists")
		}
	}
	u.Role = models.RoleCustomer
	if len(f.users) == 0 {
		u.Role = models.RoleAdmin
	}
	u.ID = uint(len(f.users) + 1)
	f.users = append(f.users, u)
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.Errorf(apperr.KindNotFound, "fake.FindByEmail", "user not found")
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if strconv.FormatUint(uint64(u.ID), 10) == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return apperr.Errorf(apperr.KindNotFound, "fake.Delete", "user not found")
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (f *fakeOrders) Create(ctx context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = uint(len(f.orders) + 1)
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrders) List(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if strconv.FormatUint(uint64(o.ID), 10) == id && !o.IsCancelled {
			o.IsCancelled = true
			return nil
		}
	}
	return apperr.Errorf(apperr.KindNotFound, "fake.Cancel", "order not found or already cancelled")
}

func (f *fakeOrders) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.orders)), nil
}

// fakeDocs mimics a mongo collection by round-tripping documents through bson.
type fakeDocs[T any] struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]*T
	order []primitive.ObjectID
	id    func(*T) *primitive.ObjectID
	fail  error
}

func newFakeDocs[T any](id func(*T) *primitive.ObjectID) *fakeDocs[T] {
	return &fakeDocs[T]{docs: make(map[primitive.ObjectID]*T), id: id}
}

func (f *fakeDocs[T]) Create(ctx context.Context, doc *T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	oid := primitive.NewObjectID()
	*f.id(doc) = oid
	f.docs[oid] = doc
	f.order = append(f.order, oid)
	return nil
}

func (f *fakeDocs[T]) List(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]T, 0, len(f.order))
	for _, oid := range f.order {
		out = append(out, *f.docs[oid])
	}
	return out, nil
}

func (f *fakeDocs[T]) Get(ctx context.Context, id string) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || f.docs[oid] == nil {
		return nil, apperr.Errorf(apperr.KindNotFound, "fake.Get", "not found")
	}
	return f.docs[oid], nil
}

func (f *fakeDocs[T]) Update(ctx context.Context, id string, set bson.M) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || f.docs[oid] == nil {
		return nil, apperr.Errorf(apperr.KindNotFound, "fake.Update", "not found")
	}

	raw, err := bson.Marshal(f.docs[oid])
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}
	if raw, err = bson.Marshal(doc); err != nil {
		return nil, err
	}
	updated := new(T)
	if err := bson.Unmarshal(raw, updated); err != nil {
		return nil, err
	}
	f.docs[oid] = updated
	return updated, nil
}

func (f *fakeDocs[T]) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || f.docs[oid] == nil {
		return apperr.Errorf(apperr.KindNotFound, "fake.Delete", "not found")
	}
	delete(f.docs, oid)
	for i, o := range f.order {
		if o == oid {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDocs[T]) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	orders   []*models.Order
	contacts []string
	err      error
}

func (f *fakeNotifier) NotifyOrder(ctx context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
	return f.err
}

func (f *fakeNotifier) NotifyContact(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.contacts = append(f.contacts, email)
	return nil
}

type fakeChat struct {
	reply string
	err   error
}

func (f fakeChat) Reply(ctx context.Context, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// recordingBus keeps every event and reports a broker failure, which the
// upload middleware only logs.
type recordingBus struct {
	mu     sync.Mutex
	events []events.UploadEvent
}

func (b *recordingBus) PublishUpload(ev events.UploadEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return errors.New("nats: no responders")
}
