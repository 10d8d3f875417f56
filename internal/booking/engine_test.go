package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservebite/reservebite-api/internal/model"
)

// The fakes below mirror the repository contracts with a mutex taking
// the place of the serializable transaction, so the admission
// properties can be exercised concurrently without a database.

type memCatalog struct {
	restaurants map[uint64]*model.Restaurant
	slots       map[uint64]map[string]uint32
	lookupErr   error // injected fault for every lookup
}

func (c *memCatalog) Restaurant(_ context.Context, id uint64) (*model.Restaurant, error) {
	if c.lookupErr != nil {
		return nil, c.lookupErr
	}
	r, ok := c.restaurants[id]
	if !ok || !r.IsActive {
		return nil, ErrRestaurantNotFound
	}
	return r, nil
}

func (c *memCatalog) GetByID(_ context.Context, id uint64) (*model.Restaurant, error) {
	if c.lookupErr != nil {
		return nil, c.lookupErr
	}
	r, ok := c.restaurants[id]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return r, nil
}

func (c *memCatalog) Capacity(_ context.Context, restaurantID uint64, slot string) (model.Capacity, error) {
	if bySlot, ok := c.slots[restaurantID]; ok {
		if seats, ok := bySlot[slot]; ok {
			return model.BoundedCapacity(seats), nil
		}
	}
	r, ok := c.restaurants[restaurantID]
	if !ok || r.SeatCapacity == nil {
		return model.Unbounded(), nil
	}
	return model.BoundedCapacity(*r.SeatCapacity), nil
}

type memLedger struct {
	mu         sync.Mutex
	rows       map[uint64]*model.Reservation
	userRefs   map[uint64]map[uint64]bool // user id -> reservation ids
	nextID     uint64
	now        time.Time
	commitErrs []error // injected, drained one per Commit call
}

func newMemLedger(now time.Time) *memLedger {
	return &memLedger{
		rows:     make(map[uint64]*model.Reservation),
		userRefs: make(map[uint64]map[uint64]bool),
		now:      now,
	}
}

func (l *memLedger) Commit(_ context.Context, draft *model.Reservation, limit model.Capacity, staleBefore time.Time) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.commitErrs) > 0 {
		err := l.commitErrs[0]
		l.commitErrs = l.commitErrs[1:]
		if err != nil {
			return 0, err
		}
	}

	bucket := model.BucketOf(draft)
	var sum uint32
	for _, r := range l.rows {
		if model.BucketOf(r) != bucket {
			continue
		}
		if r.Status == model.StatusPending && !r.CreatedAt.After(staleBefore) {
			r.Status = model.StatusCancelled
			delete(l.userRefs[r.UserID], r.ID)
			continue
		}
		if r.Status != model.StatusCancelled {
			sum += r.PartySize
		}
	}
	if limit.Bounded && sum+draft.PartySize > limit.Seats {
		return 0, ErrCapacityExceeded
	}

	l.nextID++
	row := *draft
	row.ID = l.nextID
	row.CreatedAt = l.now
	row.UpdatedAt = l.now
	l.rows[row.ID] = &row
	if l.userRefs[row.UserID] == nil {
		l.userRefs[row.UserID] = make(map[uint64]bool)
	}
	l.userRefs[row.UserID][row.ID] = true
	return row.ID, nil
}

func (l *memLedger) Confirm(_ context.Context, id uint64, mealsOrdered bool, staleBefore time.Time) (*model.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch {
	case r.Status == model.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case r.Status == model.StatusPending && !r.CreatedAt.After(staleBefore):
		r.Status = model.StatusCancelled
		delete(l.userRefs[r.UserID], r.ID)
		return nil, ErrAlreadyCancelled
	case r.Status == model.StatusConfirmed:
		out := *r
		return &out, nil
	}
	r.Status = model.StatusConfirmed
	r.MealsOrdered = mealsOrdered
	out := *r
	return &out, nil
}

func (l *memLedger) Cancel(_ context.Context, id uint64) (*model.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	r.Status = model.StatusCancelled
	delete(l.userRefs[r.UserID], r.ID)
	out := *r
	return &out, nil
}

func (l *memLedger) Get(_ context.Context, id uint64) (*model.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r
	return &out, nil
}

func (l *memLedger) PartySum(_ context.Context, b model.Bucket) (uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum uint32
	for _, r := range l.rows {
		if model.BucketOf(r) == b && r.Status != model.StatusCancelled {
			sum += r.PartySize
		}
	}
	return sum, nil
}

func (l *memLedger) ListByUser(_ context.Context, userID uint64) ([]*model.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.Reservation
	for id := range l.userRefs[userID] {
		r := *l.rows[id]
		out = append(out, &r)
	}
	return out, nil
}

func (l *memLedger) ListByRestaurantDate(_ context.Context, restaurantID uint64, date string) ([]*model.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.Reservation
	for _, r := range l.rows {
		if r.RestaurantID == restaurantID && r.Date == date {
			row := *r
			out = append(out, &row)
		}
	}
	return out, nil
}

type memDirectory struct {
	contacts map[uint64]model.Contact
}

func (d *memDirectory) Resolve(_ context.Context, userID uint64) (model.Contact, error) {
	return d.contacts[userID], nil
}

type memEvents struct {
	mu        sync.Mutex
	confirmed []uint64
	cancelled []uint64
}

func (e *memEvents) ReservationConfirmed(_ context.Context, r *model.Reservation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmed = append(e.confirmed, r.ID)
	return nil
}

func (e *memEvents) ReservationCancelled(_ context.Context, r *model.Reservation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled = append(e.cancelled, r.ID)
	return nil
}

const (
	ownerID    = uint64(100)
	customerID = uint64(200)
	otherID    = uint64(201)
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func u32Ptr(v uint32) *uint32 { return &v }

func newTestEngine() (*Engine, *memCatalog, *memLedger, *memEvents) {
	catalog := &memCatalog{
		restaurants: map[uint64]*model.Restaurant{
			1: {
				ID: 1, OwnerID: ownerID, Name: "Trattoria Da Lina",
				Timezone: "UTC", OpenTime: strPtr("10:00"), CloseTime: strPtr("22:00"),
				SeatCapacity: u32Ptr(10), IsActive: true,
			},
			2: {
				ID: 2, OwnerID: ownerID, Name: "The Open Table",
				Timezone: "UTC", IsActive: true,
			},
			3: {
				ID: 3, OwnerID: ownerID, Name: "Closed Doors",
				Timezone: "UTC", IsActive: false,
			},
			4: {
				ID: 4, OwnerID: ownerID, Name: "Early Bird",
				Timezone: "UTC", SeatCapacity: u32Ptr(10), IsActive: true,
			},
		},
		slots: map[uint64]map[string]uint32{
			1: {"21:00": 4},
			4: {"09:00": 5},
		},
	}
	ledger := newMemLedger(testNow)
	directory := &memDirectory{contacts: map[uint64]model.Contact{
		customerID: {FirstName: "Ada", LastName: "Byron", Email: "ada@example.com", Phone: "+49 30 123456"},
		otherID:    {FirstName: "Tom", LastName: "Hall", Email: "tom@example.com", Phone: "+49 30 654321"},
	}}
	events := &memEvents{}
	engine := NewEngine(catalog, ledger, directory, events, 3, 15*time.Minute)
	engine.now = func() time.Time { return testNow }
	return engine, catalog, ledger, events
}

func reserveReq(partySize int) ReserveRequest {
	return ReserveRequest{
		RestaurantID: 1,
		UserID:       customerID,
		PartySize:    partySize,
		Date:         "2026-03-02",
		Time:         "19:00",
	}
}

func TestTryReserveValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	cases := []struct {
		name string
		req  ReserveRequest
		want error
	}{
		{"zero party size", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: 0, Date: "2026-03-02", Time: "19:00"}, ErrInvalidPartySize},
		{"negative party size", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: -2, Date: "2026-03-02", Time: "19:00"}, ErrInvalidPartySize},
		{"bad date", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: 2, Date: "02.03.2026", Time: "19:00"}, ErrInvalidDateTime},
		{"bad time", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: 2, Date: "2026-03-02", Time: "7pm"}, ErrInvalidDateTime},
		{"past moment", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: 2, Date: "2026-02-28", Time: "19:00"}, ErrPastDateTime},
		{"before opening", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: 2, Date: "2026-03-02", Time: "09:00"}, ErrOutsideOpeningHours},
		{"after closing", ReserveRequest{RestaurantID: 1, UserID: customerID, PartySize: 2, Date: "2026-03-02", Time: "23:00"}, ErrOutsideOpeningHours},
		{"unknown restaurant", ReserveRequest{RestaurantID: 99, UserID: customerID, PartySize: 2, Date: "2026-03-02", Time: "19:00"}, ErrRestaurantNotFound},
		{"inactive restaurant", ReserveRequest{RestaurantID: 3, UserID: customerID, PartySize: 2, Date: "2026-03-02", Time: "19:00"}, ErrRestaurantNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.TryReserve(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTryReserveAdmits(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(4))
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.Equal(t, "Ada", res.Contact.FirstName)

	sum, err := ledger.PartySum(ctx, model.BucketOf(res))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), sum)
}

func TestTryReserveContactOverride(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	req := reserveReq(2)
	req.Contact = model.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "+1 555 0100"}
	res, err := engine.TryReserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Grace", res.Contact.FirstName)
}

func TestTryReserveExactFit(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.TryReserve(ctx, reserveReq(7))
	require.NoError(t, err)

	// Three more seats fit exactly against capacity 10.
	_, err = engine.TryReserve(ctx, reserveReq(3))
	require.NoError(t, err)

	// The bucket is now full.
	_, err = engine.TryReserve(ctx, reserveReq(1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestTryReserveOverCapacity(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	_, err := engine.TryReserve(context.Background(), reserveReq(11))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestTryReserveSlotOverride(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	req := reserveReq(5)
	req.Time = "21:00" // per-slot capacity 4
	_, err := engine.TryReserve(ctx, req)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	req.PartySize = 4
	_, err = engine.TryReserve(ctx, req)
	assert.NoError(t, err)
}

func TestTryReserveUnbounded(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	req := reserveReq(250)
	req.RestaurantID = 2
	res, err := engine.TryReserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint32(250), res.PartySize)
}

func TestTryReserveConcurrentRace(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	// Capacity 10 with one seat booked: a party of 6 and a party of 5
	// race for the remaining 9 seats.  Exactly one must win.
	_, err := engine.TryReserve(ctx, reserveReq(1))
	require.NoError(t, err)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, size := range []int{6, 5} {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			_, err := engine.TryReserve(ctx, reserveReq(size))
			results <- err
		}(size)
	}
	wg.Wait()
	close(results)

	var ok, full int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			full++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, full)
}

func TestTryReserveManyConcurrentSingles(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()
	ctx := context.Background()

	const callers = 25
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.TryReserve(ctx, reserveReq(1))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 10, ok)

	sum, err := ledger.PartySum(ctx, model.Bucket{RestaurantID: 1, Date: "2026-03-02", SlotTime: "19:00"})
	require.NoError(t, err)
	assert.Equal(t, uint32(10), sum)
}

func TestTryReserveConflictRetry(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()

	// Two transient conflicts, then success within the attempt budget.
	ledger.commitErrs = []error{ErrConflict, ErrConflict}
	res, err := engine.TryReserve(context.Background(), reserveReq(2))
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
}

func TestTryReserveConflictExhausted(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()

	ledger.commitErrs = []error{ErrConflict, ErrConflict, ErrConflict}
	_, err := engine.TryReserve(context.Background(), reserveReq(2))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTryReserveCanonicalizesSlotTime(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()
	ctx := context.Background()

	// Restaurant 4 caps the 09:00 slot at 5 via an override; a request
	// spelled "9:00" must land in the same bucket and hit that limit.
	req := reserveReq(3)
	req.RestaurantID = 4
	req.Time = "9:00"
	res, err := engine.TryReserve(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "09:00", res.SlotTime)

	sum, err := ledger.PartySum(ctx, model.Bucket{RestaurantID: 4, Date: "2026-03-02", SlotTime: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), sum)

	// The zero-padded spelling accounts against the same bucket.
	req.Time = "09:00"
	_, err = engine.TryReserve(ctx, req)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	av, err := engine.Availability(ctx, 4, "2026-03-02", "9:00")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), av.Capacity)
	assert.Equal(t, uint32(3), av.Booked)
	assert.Equal(t, uint32(2), av.Remaining)
}

func TestTryReserveExpiresStalePending(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(10))
	require.NoError(t, err)

	// Age the draft past the pending TTL; the next commit in the same
	// bucket reclaims its seats.
	ledger.mu.Lock()
	ledger.rows[res.ID].CreatedAt = testNow.Add(-16 * time.Minute)
	ledger.mu.Unlock()

	res2, err := engine.TryReserve(ctx, reserveReq(10))
	require.NoError(t, err)
	assert.NotEqual(t, res.ID, res2.ID)

	stale, err := ledger.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, stale.Status)
}

func TestConfirm(t *testing.T) {
	engine, _, _, events := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(4))
	require.NoError(t, err)

	out, err := engine.Confirm(ctx, res.ID, customerID, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, out.Status)
	assert.True(t, out.MealsOrdered)
	assert.Equal(t, []uint64{res.ID}, events.confirmed)

	// Confirming again is a state no-op; delivery is at-least-once.
	again, err := engine.Confirm(ctx, res.ID, customerID, false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, again.Status)
	assert.True(t, again.MealsOrdered)
	assert.Len(t, events.confirmed, 2)
}

func TestConfirmForbidden(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(2))
	require.NoError(t, err)

	_, err = engine.Confirm(ctx, res.ID, otherID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	// Even the restaurant owner cannot complete someone else's booking.
	_, err = engine.Confirm(ctx, res.ID, ownerID, true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmStalePending(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(2))
	require.NoError(t, err)

	ledger.mu.Lock()
	ledger.rows[res.ID].CreatedAt = testNow.Add(-time.Hour)
	ledger.mu.Unlock()

	_, err = engine.Confirm(ctx, res.ID, customerID, true)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestConfirmUnknown(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	_, err := engine.Confirm(context.Background(), 999, customerID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelFreesCapacity(t *testing.T) {
	engine, _, _, events := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(10))
	require.NoError(t, err)

	// Bucket full.
	_, err = engine.TryReserve(ctx, reserveReq(1))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	out, err := engine.Cancel(ctx, res.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, out.Status)
	assert.Equal(t, []uint64{res.ID}, events.cancelled)

	// The freed seats are bookable again.
	_, err = engine.TryReserve(ctx, reserveReq(10))
	assert.NoError(t, err)
}

func TestCancelIdempotent(t *testing.T) {
	engine, _, _, events := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(3))
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, res.ID, customerID)
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, res.ID, customerID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Len(t, events.cancelled, 1)
}

func TestCancelByRestaurantOwner(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(3))
	require.NoError(t, err)

	out, err := engine.Cancel(ctx, res.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, out.Status)
}

func TestCancelByOwnerOfDelistedRestaurant(t *testing.T) {
	engine, catalog, _, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(3))
	require.NoError(t, err)

	// Delisting stops new bookings but not the owner's control over
	// the existing ones.
	catalog.restaurants[1].IsActive = false

	got, err := engine.Get(ctx, res.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	list, err := engine.ListForRestaurant(ctx, 1, "2026-03-02", ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	out, err := engine.Cancel(ctx, res.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, out.Status)
}

func TestCancelCatalogFaultIsNotForbidden(t *testing.T) {
	engine, catalog, _, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(3))
	require.NoError(t, err)

	catalog.lookupErr = errors.New("catalog unavailable")
	_, err = engine.Cancel(ctx, res.ID, ownerID)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestCancelForbidden(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(3))
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, res.ID, otherID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelUnknown(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	_, err := engine.Cancel(context.Background(), 12345, customerID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAuthorization(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(2))
	require.NoError(t, err)

	got, err := engine.Get(ctx, res.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = engine.Get(ctx, res.ID, ownerID)
	assert.NoError(t, err)

	_, err = engine.Get(ctx, res.ID, otherID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBackReferenceMaintained(t *testing.T) {
	engine, _, ledger, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.TryReserve(ctx, reserveReq(2))
	require.NoError(t, err)

	list, err := engine.ListForUser(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)
	assert.Len(t, ledger.userRefs[customerID], 1)

	_, err = engine.Cancel(ctx, res.ID, customerID)
	require.NoError(t, err)

	list, err = engine.ListForUser(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListForRestaurant(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.TryReserve(ctx, reserveReq(2))
	require.NoError(t, err)

	list, err := engine.ListForRestaurant(ctx, 1, "2026-03-02", ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = engine.ListForRestaurant(ctx, 1, "2026-03-02", customerID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = engine.ListForRestaurant(ctx, 1, "not-a-date", ownerID)
	assert.ErrorIs(t, err, ErrInvalidDateTime)
}

func TestAvailability(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.TryReserve(ctx, reserveReq(6))
	require.NoError(t, err)

	av, err := engine.Availability(ctx, 1, "2026-03-02", "19:00")
	require.NoError(t, err)
	assert.True(t, av.Bounded)
	assert.Equal(t, uint32(10), av.Capacity)
	assert.Equal(t, uint32(6), av.Booked)
	assert.Equal(t, uint32(4), av.Remaining)

	av, err = engine.Availability(ctx, 2, "2026-03-02", "19:00")
	require.NoError(t, err)
	assert.False(t, av.Bounded)
	assert.Zero(t, av.Booked)

	_, err = engine.Availability(ctx, 99, "2026-03-02", "19:00")
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}
