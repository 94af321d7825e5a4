package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

type feeTable map[int]int64

func (f feeTable) Get(_ context.Context, regionID int) (int64, bool, error) {
	fee, ok := f[regionID]

	return fee, ok, nil
}

type fakeDispatcher struct {
	calls   atomic.Int32
	errs    []error
	block   chan struct{}
	started chan struct{}
	mu      sync.Mutex
	seen    []order.FrozenDraft
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, frozen order.FrozenDraft) error {
	n := int(d.calls.Add(1))

	d.mu.Lock()
	d.seen = append(d.seen, frozen)
	d.mu.Unlock()

	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n <= len(d.errs) {
		return d.errs[n-1]
	}

	return nil
}

type fakeJournal struct {
	mu     sync.Mutex
	orders []order.Order
	errs   []error
	calls  int
}

func (j *fakeJournal) Append(_ context.Context, o order.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.calls++
	if j.calls <= len(j.errs) && j.errs[j.calls-1] != nil {
		return j.errs[j.calls-1]
	}
	j.orders = append(j.orders, o)

	return nil
}

var testProduct = product.Product{
	ID:       1,
	Name:     "Wireless headphones",
	Price:    7500,
	Category: product.CategoryElectronics,
	Images:   []string{"/images/headphones.jpg"},
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMachine(d Dispatcher, j Journal, opts ...Option) *Machine {
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() (string, error) { return "order-1", nil }),
	}, opts...)

	return New(context.Background(), testProduct, feeTable{16: 500}, d, j, opts...)
}

func ptr[T any](v T) *T {
	return &v
}

func fillDraft(t *testing.T, m *Machine, quantity int) {
	t.Helper()

	_, err := m.Edit(context.Background(), order.DraftPatch{
		CustomerName: ptr("Amina Benali"),
		Phone:        ptr("0550123456"),
		RegionID:     ptr(16),
		Address:      ptr("12 rue Didouche Mourad"),
		Quantity:     ptr(quantity),
	})
	require.NoError(t, err)
}

func TestMachineEditRecomputesQuote(t *testing.T) {
	m := newMachine(&fakeDispatcher{}, &fakeJournal{})
	assert.Equal(t, StateIdle, m.View().State)

	fillDraft(t, m, 2)

	v := m.View()
	assert.Equal(t, StateEditing, v.State)
	assert.Equal(t, int64(15000), v.Quote.Subtotal)
	assert.Equal(t, int64(500), v.Quote.DeliveryFee)
	assert.Equal(t, int64(15500), v.Quote.Total)
	assert.True(t, v.Quote.FeeConfigured)

	v, err := m.Edit(context.Background(), order.DraftPatch{RegionID: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), v.Quote.Total)
	assert.False(t, v.Quote.FeeConfigured)
}

func TestMachineSubmitRejectsInvalidDraft(t *testing.T) {
	d := &fakeDispatcher{}
	m := newMachine(d, &fakeJournal{})
	fillDraft(t, m, 0)

	v, err := m.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")
	assert.Equal(t, StateEditing, v.State)
	assert.Equal(t, verr.Fields, v.Errors)
	assert.Zero(t, d.calls.Load())

	_, err2 := m.Submit(context.Background())
	assert.Equal(t, err.Error(), err2.Error())

	v, err = m.Edit(context.Background(), order.DraftPatch{Quantity: ptr(1)})
	require.NoError(t, err)
	assert.Empty(t, v.Errors)
}

func TestMachineSubmitEmptyDraft(t *testing.T) {
	m := newMachine(&fakeDispatcher{}, &fakeJournal{})

	_, err := m.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
	assert.Equal(t, StateEditing, m.View().State)
}

func TestMachineSubmitSuccess(t *testing.T) {
	d := &fakeDispatcher{}
	j := &fakeJournal{}
	m := newMachine(d, j)
	fillDraft(t, m, 2)

	v, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, v.State)
	require.NotNil(t, v.Order)
	assert.Equal(t, "order-1", v.Order.ID)
	assert.Equal(t, order.StatusNew, v.Order.Status)
	assert.Equal(t, int64(15500), v.Order.TotalPrice)
	assert.Equal(t, "Alger", v.Order.RegionName)
	assert.Equal(t, fixedNow, v.Order.CreatedAt)

	require.Len(t, j.orders, 1)
	assert.Equal(t, int32(1), d.calls.Load())

	_, err = m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFinished)
	_, err = m.Edit(context.Background(), order.DraftPatch{Quantity: ptr(3)})
	assert.ErrorIs(t, err, ErrFinished)
}

func TestMachineRetryAfterDispatchFailure(t *testing.T) {
	d := &fakeDispatcher{errs: []error{errors.New("network is unreachable")}}
	j := &fakeJournal{}
	m := newMachine(d, j)
	fillDraft(t, m, 2)

	v, err := m.Submit(context.Background())
	var derr *DispatchError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, StateFailed, v.State)
	assert.Equal(t, "network is unreachable", v.Reason)
	assert.Empty(t, j.orders)

	_, err = m.Edit(context.Background(), order.DraftPatch{Quantity: ptr(5)})
	assert.ErrorIs(t, err, ErrDraftFrozen)

	v, err = m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, v.State)
	assert.Equal(t, int32(2), d.calls.Load())
	require.Len(t, j.orders, 1)
	assert.Equal(t, order.StatusNew, j.orders[0].Status)
	assert.Equal(t, d.seen[0], d.seen[1])
}

func TestMachineConcurrentSubmitDispatchesOnce(t *testing.T) {
	d := &fakeDispatcher{block: make(chan struct{}), started: make(chan struct{}, 1)}
	j := &fakeJournal{}
	m := newMachine(d, j)
	fillDraft(t, m, 1)

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background())
		done <- err
	}()
	<-d.started

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Submit(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, StateSubmitting, v.State)
		}()
	}
	wg.Wait()

	assert.ErrorIs(t, m.Close(), ErrCloseWhileSubmitting)

	close(d.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), d.calls.Load())
	assert.Len(t, j.orders, 1)
}

func TestMachineJournalFailureRetriesAppendOnly(t *testing.T) {
	d := &fakeDispatcher{}
	j := &fakeJournal{errs: []error{errors.New("connection reset")}}
	m := newMachine(d, j)
	fillDraft(t, m, 1)

	v, err := m.Submit(context.Background())
	require.ErrorIs(t, err, ErrJournal)
	assert.Equal(t, StateFailed, v.State)
	failed, ok := m.State().(Failed)
	require.True(t, ok)
	assert.True(t, failed.Dispatched)

	v, err = m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, v.State)
	assert.Equal(t, int32(1), d.calls.Load())
	assert.Len(t, j.orders, 1)
}

func TestMachineDispatchTimeout(t *testing.T) {
	d := &fakeDispatcher{block: make(chan struct{})}
	m := newMachine(d, &fakeJournal{}, WithDispatchTimeout(20*time.Millisecond))
	fillDraft(t, m, 1)

	v, err := m.Submit(context.Background())
	var derr *DispatchError
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, reasonTimeout, v.Reason)
}

func TestMachineClose(t *testing.T) {
	m := newMachine(&fakeDispatcher{}, &fakeJournal{})
	fillDraft(t, m, 1)

	require.NoError(t, m.Close())
	assert.Equal(t, StateClosed, m.View().State)

	_, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFinished)
	require.NoError(t, m.Close())
}

func TestMachineCloseAfterFailure(t *testing.T) {
	t.Run("not sent", func(t *testing.T) {
		m := newMachine(&fakeDispatcher{errs: []error{errors.New("relay down")}}, &fakeJournal{})
		fillDraft(t, m, 1)

		_, err := m.Submit(context.Background())
		require.Error(t, err)
		assert.False(t, m.Unrecorded())
		require.NoError(t, m.Close())
		assert.Equal(t, StateClosed, m.View().State)
	})

	t.Run("sent but not recorded", func(t *testing.T) {
		j := &fakeJournal{errs: []error{errors.New("db down")}}
		m := newMachine(&fakeDispatcher{}, j)
		fillDraft(t, m, 1)

		_, err := m.Submit(context.Background())
		require.ErrorIs(t, err, ErrJournal)
		assert.True(t, m.Unrecorded())
		assert.ErrorIs(t, m.Close(), ErrCloseWhileUnrecorded)
		assert.Equal(t, StateFailed, m.View().State)

		_, err = m.Submit(context.Background())
		require.NoError(t, err)
		assert.False(t, m.Unrecorded())
		require.NoError(t, m.Close())
	})
}

type recordingObserver struct {
	mu          sync.Mutex
	transitions [][2]StateName
	dispatches  int
}

func (o *recordingObserver) Transition(from, to StateName) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, [2]StateName{from, to})
}

func (o *recordingObserver) Dispatched(time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatches++
}

func TestMachineObserver(t *testing.T) {
	obs := &recordingObserver{}
	m := newMachine(&fakeDispatcher{}, &fakeJournal{}, WithObserver(obs))
	fillDraft(t, m, 1)

	_, err := m.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][2]StateName{
		{StateIdle, StateEditing},
		{StateEditing, StateSubmitting},
		{StateSubmitting, StateSucceeded},
	}, obs.transitions)
	assert.Equal(t, 1, obs.dispatches)
}
