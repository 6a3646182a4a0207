package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrent/rental-backend/internal/car"
	"github.com/carrent/rental-backend/internal/db"
	"github.com/carrent/rental-backend/internal/notify"
	"github.com/carrent/rental-backend/internal/user"
)

type memRepo struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	seq      int
	failOn   string
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[string]*Booking{}}
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && b.CarID == r.failOn {
		return assert.AnError
	}
	r.seq++
	b.ID = fmt.Sprintf("b%d", r.seq)
	b.CreatedAt = time.Now()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, id string) (*Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memRepo) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memRepo) Update(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) LockCar(context.Context, string) error { return nil }

func (r *memRepo) HasOverlap(_ context.Context, carID string, start, end time.Time, exclude string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.CarID != carID || b.ID == exclude || b.Status == StatusCancelled || b.Status == StatusCompleted {
			continue
		}
		effectiveEnd := b.EndDate
		if b.NewEndDate != nil {
			effectiveEnd = *b.NewEndDate
		}
		if b.StartDate.Before(end) && effectiveEnd.After(start) {
			return true, nil
		}
	}
	return false, nil
}

type stubCars struct {
	car.Service
	cars map[string]*car.Car
}

func (s stubCars) GetBookable(_ context.Context, id string) (*car.Car, error) {
	c, ok := s.cars[id]
	if !ok {
		return nil, car.ErrNotFound
	}
	if !c.IsAvailable {
		return nil, car.ErrUnavailable
	}
	return c, nil
}

type stubUsers struct {
	user.Service
	users map[string]*user.User
}

func (s stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.msgs {
		out = append(out, m.Kind)
	}
	return out
}

type fixture struct {
	svc      *service
	repo     *memRepo
	notifier *recordingNotifier
	hook     *test.Hook
	clock    time.Time
}

var (
	customer = Actor{UserID: "cust-1"}
	stranger = Actor{UserID: "cust-2"}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	cars := stubCars{cars: map[string]*car.Car{
		"car-1":   {ID: "car-1", Brand: "Toyota", Model: "Vios", PlateNumber: "ABC 123", DailyRate: 1000, IsAvailable: true},
		"car-2":   {ID: "car-2", Brand: "Honda", Model: "City", PlateNumber: "XYZ 789", DailyRate: 1500, IsAvailable: true},
		"retired": {ID: "retired", DailyRate: 900},
	}}
	driverName := "Dan"
	users := stubUsers{users: map[string]*user.User{
		"driver-1":   {ID: "driver-1", Role: user.RoleDriver, IsActive: true, DisplayName: &driverName},
		"staff-1":    {ID: "staff-1", Role: user.RoleStaff, IsActive: true},
		"inactive-1": {ID: "inactive-1", Role: user.RoleDriver},
	}}
	notifier := &recordingNotifier{}
	log, hook := test.NewNullLogger()

	f := &fixture{repo: repo, notifier: notifier, hook: hook, clock: date(2025, 1, 1)}
	svc := NewService(repo, db.NoTx{}, cars, users, notifier, log, Options{ExtensionPaymentWindow: 24 * time.Hour}).(*service)
	svc.now = func() time.Time { return f.clock }
	f.svc = svc
	return f
}

func (f *fixture) book(t *testing.T, carID string, start, end time.Time) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateRequest{
		CustomerID: customer.UserID,
		CarID:      carID,
		Trip:       Trip{StartDate: start, EndDate: end, PickupLocation: " Main Office "},
	})
	require.NoError(t, err)
	return b
}

func TestCreatePricesByRentalDays(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, int64(1000), b.DailyRate)
	assert.Equal(t, int64(5000), b.TotalAmount)
	assert.Equal(t, "Main Office", b.PickupLocation)
	assert.Equal(t, []string{"booking.created"}, f.notifier.kinds())
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, CreateRequest{CustomerID: "c", CarID: "car-1", Trip: Trip{StartDate: date(2025, 1, 10), EndDate: date(2025, 1, 10)}})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = f.svc.Create(ctx, CreateRequest{CustomerID: "c", CarID: "car-1", Trip: Trip{StartDate: date(2024, 12, 1), EndDate: date(2025, 1, 10)}})
	assert.ErrorIs(t, err, ErrStartTimePast)

	_, err = f.svc.Create(ctx, CreateRequest{CustomerID: "c", CarID: "nope", Trip: Trip{StartDate: date(2025, 1, 10), EndDate: date(2025, 1, 12)}})
	assert.ErrorIs(t, err, ErrCarNotFound)

	_, err = f.svc.Create(ctx, CreateRequest{CustomerID: "c", CarID: "retired", Trip: Trip{StartDate: date(2025, 1, 10), EndDate: date(2025, 1, 12)}})
	assert.ErrorIs(t, err, car.ErrUnavailable)
}

func TestCreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))

	_, err := f.svc.Create(ctx, CreateRequest{CustomerID: "c", CarID: "car-1", Trip: Trip{StartDate: date(2025, 1, 14), EndDate: date(2025, 1, 16)}})
	assert.ErrorIs(t, err, ErrTimeConflict)

	// back to back is fine
	f.book(t, "car-1", date(2025, 1, 15), date(2025, 1, 17))
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bookings, err := f.svc.CreateGroup(ctx, GroupRequest{
		CustomerID: customer.UserID,
		CarIDs:     []string{"car-1", "car-2"},
		Trip:       Trip{StartDate: date(2025, 1, 10), EndDate: date(2025, 1, 12)},
	})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.NotNil(t, bookings[0].BookingGroupID)
	assert.Equal(t, *bookings[0].BookingGroupID, *bookings[1].BookingGroupID)
	assert.Equal(t, int64(2000), bookings[0].TotalAmount)
	assert.Equal(t, int64(3000), bookings[1].TotalAmount)

	_, err = f.svc.CreateGroup(ctx, GroupRequest{CustomerID: "c"})
	assert.ErrorIs(t, err, ErrEmptyGroup)

	_, err = f.svc.CreateGroup(ctx, GroupRequest{
		CustomerID: "c",
		CarIDs:     []string{"car-1", "car-1"},
		Trip:       Trip{StartDate: date(2025, 2, 10), EndDate: date(2025, 2, 12)},
	})
	assert.ErrorIs(t, err, ErrDuplicateCar)
}

func TestCancellationRequestIsOwnerOnlyAndRejectsRepeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))

	_, err := f.svc.RequestCancellation(ctx, b.ID, stranger)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := f.svc.RequestCancellation(ctx, b.ID, customer)
	require.NoError(t, err)
	assert.True(t, got.IsCancel)

	_, err = f.svc.RequestCancellation(ctx, b.ID, customer)
	assert.ErrorIs(t, err, ErrAlreadyPending)

	got, err = f.svc.ApproveCancellation(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	// a cancelled booking frees the car
	f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))
}

func TestWithdrawCancellation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))

	_, err := f.svc.RequestCancellation(ctx, b.ID, customer)
	require.NoError(t, err)
	got, err := f.svc.WithdrawCancellation(ctx, b.ID, customer)
	require.NoError(t, err)
	assert.False(t, got.IsCancel)
	assert.Equal(t, StatusPending, got.Status)

	_, err = f.svc.RejectCancellation(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestExtensionScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))

	_, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	f.clock = date(2025, 1, 10)
	_, err = f.svc.Release(ctx, b.ID)
	require.NoError(t, err)

	f.clock = date(2025, 1, 12)
	got, err := f.svc.RequestExtension(ctx, b.ID, customer, date(2025, 1, 20))
	require.NoError(t, err)
	assert.True(t, got.IsExtend)
	assert.Equal(t, int64(5*1000), got.ExtensionCost)
	assert.Equal(t, date(2025, 1, 13), *got.ExtensionDeadline)

	// staged days are held against other customers
	_, err = f.svc.Create(ctx, CreateRequest{CustomerID: "other", CarID: "car-1", Trip: Trip{StartDate: date(2025, 1, 17), EndDate: date(2025, 1, 18)}})
	assert.ErrorIs(t, err, ErrTimeConflict)

	_, err = f.svc.Return(ctx, b.ID)
	assert.ErrorIs(t, err, ErrConflictingRequest)

	got, err = f.svc.ApproveExtension(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 20), got.EndDate)
	assert.Equal(t, int64(10000), got.TotalAmount)
	assert.False(t, got.IsExtend)

	got, err = f.svc.Return(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Contains(t, f.notifier.kinds(), "booking.extended")
}

func TestExtensionRoundTripRestoresBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))
	_, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	before, err := f.svc.Release(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.svc.RequestExtension(ctx, b.ID, customer, date(2025, 1, 18))
	require.NoError(t, err)
	after, err := f.svc.WithdrawExtension(ctx, b.ID, customer)
	require.NoError(t, err)

	assert.Equal(t, before.EndDate, after.EndDate)
	assert.Equal(t, before.TotalAmount, after.TotalAmount)
	assert.False(t, after.IsExtend)
	assert.Nil(t, after.NewEndDate)
}

func TestExtensionBlockedByNextBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))
	f.book(t, "car-1", date(2025, 1, 16), date(2025, 1, 18))

	_, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Release(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.svc.RequestExtension(ctx, b.ID, customer, date(2025, 1, 17))
	assert.ErrorIs(t, err, ErrTimeConflict)

	// the failed request left nothing staged
	got, err := f.svc.Get(ctx, b.ID, customer)
	require.NoError(t, err)
	assert.False(t, got.IsExtend)
}

func TestAssignDriver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))

	_, err := f.svc.AssignDriver(ctx, b.ID, "staff-1")
	assert.ErrorIs(t, err, ErrDriverNotFound)
	_, err = f.svc.AssignDriver(ctx, b.ID, "inactive-1")
	assert.ErrorIs(t, err, ErrDriverNotFound)
	_, err = f.svc.AssignDriver(ctx, b.ID, "ghost")
	assert.ErrorIs(t, err, ErrDriverNotFound)

	got, err := f.svc.AssignDriver(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, "driver-1", *got.DriverID)
	assert.Equal(t, "Dan", *got.DriverName)
	assert.True(t, got.WithDriver)

	// the driver can read the booking they drive
	_, err = f.svc.Get(ctx, b.ID, Actor{UserID: "driver-1"})
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, b.ID, stranger)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "car-1", date(2025, 1, 10), date(2025, 1, 15))
	f.notifier.err = assert.AnError

	got, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	require.NotNil(t, f.hook.LastEntry())
	assert.Equal(t, "booking.confirmed", f.hook.LastEntry().Data["event"])
}

func TestUnknownBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Confirm(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
