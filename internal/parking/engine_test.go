package parking_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-lot-api/internal/billing"
	"github.com/iliyamo/parking-lot-api/internal/config"
	"github.com/iliyamo/parking-lot-api/internal/model"
	"github.com/iliyamo/parking-lot-api/internal/parking"
	"github.com/iliyamo/parking-lot-api/internal/repository"
)

// memStore is an in-memory parking.Store with serializable
// transactions: the store mutex is held from Begin until Commit or
// Rollback, and Rollback restores a snapshot taken at Begin.  That is
// stricter than MySQL's row-level locking but produces the same
// externally visible outcomes the engine relies on.
type memStore struct {
	mu       sync.Mutex
	spaces   map[uint64]*model.Space
	clients  map[string]model.Client
	records  map[string]*model.ParkingRecord
	nextID   uint64
	failOpen bool // force OpenSession to fail, for rollback tests
}

func newMemStore() *memStore {
	return &memStore{
		spaces:  make(map[uint64]*model.Space),
		clients: make(map[string]model.Client),
		records: make(map[string]*model.ParkingRecord),
	}
}

func (s *memStore) addSpace(code string) uint64 {
	s.nextID++
	s.spaces[s.nextID] = &model.Space{ID: s.nextID, Code: code, Status: model.SpaceFree}
	return s.nextID
}

func (s *memStore) addClient(name, cpf string) model.Client {
	s.nextID++
	c := model.Client{ID: s.nextID, Name: name, CPF: cpf}
	s.clients[cpf] = c
	return c
}

// addClosedVisits seeds n completed stays for the client.
func (s *memStore) addClosedVisits(clientID uint64, n int) {
	base := time.Now().UTC().Add(-24 * time.Hour)
	for i := 0; i < n; i++ {
		s.nextID++
		entry := base.Add(time.Duration(i) * time.Minute)
		end := entry.Add(10 * time.Minute)
		fee := decimal.RequireFromString("5.00")
		zero := decimal.Zero
		receipt := entry.Format("20060102-150405")
		s.records[receipt] = &model.ParkingRecord{
			ID: s.nextID, Receipt: receipt, ClientID: clientID,
			EntryDate: entry, EndDate: &end, Value: &fee, Discount: &zero,
		}
	}
}

func (s *memStore) spaceStatus(id uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spaces[id].Status
}

func (s *memStore) snapshot() (map[uint64]*model.Space, map[string]*model.ParkingRecord) {
	spaces := make(map[uint64]*model.Space, len(s.spaces))
	for id, sp := range s.spaces {
		cp := *sp
		spaces[id] = &cp
	}
	records := make(map[string]*model.ParkingRecord, len(s.records))
	for r, rec := range s.records {
		cp := *rec
		records[r] = &cp
	}
	return spaces, records
}

func (s *memStore) Begin(ctx context.Context) (parking.StoreTx, error) {
	s.mu.Lock()
	spaces, records := s.snapshot()
	return &memTx{s: s, snapSpaces: spaces, snapRecords: records}, nil
}

func (s *memStore) FindByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[receipt]
	if !ok {
		return model.ParkingRecord{}, repository.ErrReceiptNotFound
	}
	return *rec, nil
}

type memTx struct {
	s           *memStore
	snapSpaces  map[uint64]*model.Space
	snapRecords map[string]*model.ParkingRecord
	done        bool
}

func (t *memTx) Commit() error {
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.spaces = t.snapSpaces
	t.s.records = t.snapRecords
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) ClientByCPF(ctx context.Context, cpf string) (model.Client, error) {
	c, ok := t.s.clients[cpf]
	if !ok {
		return model.Client{}, repository.ErrClientNotFound
	}
	return c, nil
}

func (t *memTx) ClaimFreeSpace(ctx context.Context) (model.Space, error) {
	ids := make([]uint64, 0, len(t.s.spaces))
	for id := range t.s.spaces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if sp := t.s.spaces[id]; sp.Status == model.SpaceFree {
			sp.Status = model.SpaceOccupied
			return *sp, nil
		}
	}
	return model.Space{}, repository.ErrNoFreeSpace
}

func (t *memTx) ReleaseSpace(ctx context.Context, spaceID uint64) error {
	sp, ok := t.s.spaces[spaceID]
	if !ok {
		return repository.ErrSpaceNotFound
	}
	if sp.Status != model.SpaceOccupied {
		return repository.ErrSpaceNotOccupied
	}
	sp.Status = model.SpaceFree
	return nil
}

func (t *memTx) OpenSession(ctx context.Context, rec *model.ParkingRecord) error {
	if t.s.failOpen {
		return errors.New("ledger unavailable")
	}
	if _, exists := t.s.records[rec.Receipt]; exists {
		return repository.ErrDuplicateReceipt
	}
	t.s.nextID++
	rec.ID = t.s.nextID
	cp := *rec
	t.s.records[rec.Receipt] = &cp
	return nil
}

func (t *memTx) FindOpenByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	rec, ok := t.s.records[receipt]
	if !ok || rec.EndDate != nil {
		return model.ParkingRecord{}, repository.ErrReceiptNotFound
	}
	return *rec, nil
}

func (t *memTx) CountClosedVisits(ctx context.Context, clientID uint64) (int64, error) {
	var n int64
	for _, rec := range t.s.records {
		if rec.ClientID == clientID && rec.EndDate != nil {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CloseSession(ctx context.Context, receipt string, endDate time.Time, value, discount decimal.Decimal) error {
	rec, ok := t.s.records[receipt]
	if !ok {
		return repository.ErrReceiptNotFound
	}
	if rec.EndDate != nil {
		return repository.ErrSessionClosed
	}
	end := endDate
	rec.EndDate = &end
	rec.Value = &value
	rec.Discount = &discount
	return nil
}

func newEngine(store parking.Store) *parking.Engine {
	tariff := billing.NewTariff(config.Tariff{
		First15:  decimal.RequireFromString("5.00"),
		First60:  decimal.RequireFromString("9.25"),
		Extra15:  decimal.RequireFromString("1.75"),
		Discount: decimal.RequireFromString("0.30"),
	})
	return parking.NewEngine(store, tariff)
}

func checkInInput(cpf string) parking.CheckInInput {
	return parking.CheckInInput{
		LicensePlate: "ABC1D23",
		CarBrand:     "Fiat",
		CarModel:     "Argo",
		CarColor:     "Blue",
		ClientCPF:    cpf,
	}
}

func TestCheckInCheckOutRoundTrip(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	spaceID := store.addSpace("A-01")
	eng := newEngine(store)
	ctx := context.Background()

	rec, err := eng.CheckIn(ctx, checkInInput(client.CPF))
	require.NoError(t, err)
	assert.Equal(t, "A-01", rec.SpaceCode)
	assert.Equal(t, client.CPF, rec.ClientCPF)
	assert.Len(t, rec.Receipt, 15)
	assert.True(t, rec.Open())
	assert.Equal(t, model.SpaceOccupied, store.spaceStatus(spaceID))

	closed, err := eng.CheckOut(ctx, rec.Receipt)
	require.NoError(t, err)
	assert.False(t, closed.Open())
	require.NotNil(t, closed.Value)
	require.NotNil(t, closed.Discount)
	assert.Equal(t, "5.00", closed.Value.StringFixed(2))
	assert.True(t, closed.Discount.IsZero())
	assert.Equal(t, model.SpaceFree, store.spaceStatus(spaceID))

	// The freed space is claimable again.
	again, err := eng.CheckIn(ctx, checkInInput(client.CPF))
	require.NoError(t, err)
	assert.Equal(t, "A-01", again.SpaceCode)
}

func TestCheckOutTwiceFails(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	store.addSpace("A-01")
	eng := newEngine(store)
	ctx := context.Background()

	rec, err := eng.CheckIn(ctx, checkInInput(client.CPF))
	require.NoError(t, err)

	_, err = eng.CheckOut(ctx, rec.Receipt)
	require.NoError(t, err)

	_, err = eng.CheckOut(ctx, rec.Receipt)
	assert.ErrorIs(t, err, repository.ErrReceiptNotFound)
}

func TestCheckInUnknownClient(t *testing.T) {
	store := newMemStore()
	store.addSpace("A-01")
	eng := newEngine(store)

	_, err := eng.CheckIn(context.Background(), checkInInput("52998224725"))
	assert.ErrorIs(t, err, repository.ErrClientNotFound)
}

func TestCheckInFullLot(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	eng := newEngine(store)

	_, err := eng.CheckIn(context.Background(), checkInInput(client.CPF))
	assert.ErrorIs(t, err, repository.ErrNoFreeSpace)
}

func TestLastSpaceRace(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	store.addSpace("A-01")
	eng := newEngine(store)
	ctx := context.Background()

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.CheckIn(ctx, checkInInput(client.CPF))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, full int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrNoFreeSpace):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one claim must win the last space")
	assert.Equal(t, 1, full, "the loser must observe a full lot")
}

func TestLoyaltyDiscountEveryTenthVisit(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	store.addSpace("A-01")
	eng := newEngine(store)
	ctx := context.Background()

	// Nine completed stays on record: the tenth earns 30%.
	store.addClosedVisits(client.ID, 9)

	rec, err := eng.CheckIn(ctx, checkInInput(client.CPF))
	require.NoError(t, err)
	tenth, err := eng.CheckOut(ctx, rec.Receipt)
	require.NoError(t, err)
	require.NotNil(t, tenth.Discount)
	assert.Equal(t, "1.50", tenth.Discount.StringFixed(2)) // 30% of 5.00

	// The eleventh visit earns nothing.
	rec, err = eng.CheckIn(ctx, checkInInput(client.CPF))
	require.NoError(t, err)
	eleventh, err := eng.CheckOut(ctx, rec.Receipt)
	require.NoError(t, err)
	require.NotNil(t, eleventh.Discount)
	assert.True(t, eleventh.Discount.IsZero())
}

func TestCheckInRollsBackClaimWhenLedgerFails(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	spaceID := store.addSpace("A-01")
	store.failOpen = true
	eng := newEngine(store)

	_, err := eng.CheckIn(context.Background(), checkInInput(client.CPF))
	require.Error(t, err)
	assert.Equal(t, model.SpaceFree, store.spaceStatus(spaceID),
		"a failed check-in must not leave the space occupied")

	store.failOpen = false
	_, err = eng.CheckIn(context.Background(), checkInInput(client.CPF))
	assert.NoError(t, err)
}

func TestGetByReceipt(t *testing.T) {
	store := newMemStore()
	client := store.addClient("Ana Souza", "52998224725")
	store.addSpace("A-01")
	eng := newEngine(store)
	ctx := context.Background()

	_, err := eng.GetByReceipt(ctx, "20250313-101158")
	assert.ErrorIs(t, err, repository.ErrReceiptNotFound)

	rec, err := eng.CheckIn(ctx, checkInInput(client.CPF))
	require.NoError(t, err)

	open, err := eng.GetByReceipt(ctx, rec.Receipt)
	require.NoError(t, err)
	assert.True(t, open.Open())

	_, err = eng.CheckOut(ctx, rec.Receipt)
	require.NoError(t, err)

	closed, err := eng.GetByReceipt(ctx, rec.Receipt)
	require.NoError(t, err)
	assert.False(t, closed.Open())
	require.NotNil(t, closed.Value)
	assert.Equal(t, "5.00", closed.Value.StringFixed(2))
}
