// Package engine owns the in-memory holdings snapshot for a user's
// session and reconciles three inputs over it: optimistic local
// mutations, simulated price ticks, and change notifications from the
// durable store.
package engine

import (
	"sync"
	"time"

	apperrors "github.com/OM-MUDDAPUR/Stock-broker-app/internal/errors"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/logger"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/models"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/portfolio"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/pricesim"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/store"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/uuid"
)

// ViewState is what the presentation layer receives on every snapshot
// change: the holdings, the instruments the user does not hold (set
// difference against the catalog), aggregate stats, and a loading flag.
type ViewState struct {
	Holdings  []models.Holding    `json:"holdings"`
	Available []models.Instrument `json:"available"`
	Stats     portfolio.Stats     `json:"stats"`
	Loading   bool                `json:"loading"`
}

// Engine is the reconciliation engine for one user session.
//
// All snapshot mutation is serialized under mu: user intents apply their
// optimistic transform synchronously, then dispatch the matching remote
// call on a goroutine whose outcome re-enters under the same lock. A
// failed remote call is never undone locally (other mutations may have
// interleaved); instead the whole snapshot is re-fetched from the store.
// Remote change notifications likewise trigger a wholesale re-list:
// last fetch wins, with no per-row versioning.
type Engine struct {
	store  store.HoldingStore
	sim    *pricesim.Simulator
	userID string
	tick   time.Duration

	mu       sync.Mutex
	catalog  []models.Instrument
	holdings []models.Holding
	loaded   bool

	inflight sync.WaitGroup

	lmu       sync.Mutex
	listeners map[uint64]chan ViewState
	nextSub   uint64

	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

// New creates an engine for userID. Call Load before Start.
func New(st store.HoldingStore, sim *pricesim.Simulator, userID string, tick time.Duration) *Engine {
	return &Engine{
		store:     st,
		sim:       sim,
		userID:    userID,
		tick:      tick,
		listeners: make(map[uint64]chan ViewState),
		done:      make(chan struct{}),
	}
}

// UserID returns the session owner.
func (e *Engine) UserID() string { return e.userID }

// Load fetches the instrument catalog and the user's holdings from the
// store. On any failure prior state is left untouched and LOAD_FAILED
// is returned; the caller decides whether to retry.
func (e *Engine) Load() error {
	catalog, err := e.store.ListInstruments()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrLoadFailed, err)
	}
	holdings, err := e.store.ListHoldings(e.userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrLoadFailed, err)
	}

	e.mu.Lock()
	e.catalog = catalog
	e.holdings = holdings
	e.loaded = true
	e.mu.Unlock()

	e.publish()
	return nil
}

// Start begins the price tick loop and the remote change subscription.
// Both live until Close.
func (e *Engine) Start() {
	e.unsubscribe = e.store.SubscribeChanges(e.userID, func(store.Change) {
		e.onRemoteChange()
	})
	go e.tickLoop()
}

// Close tears down the ticker, the change subscription, and every view
// subscriber. In-flight store calls are left to resolve on their own; a
// hung call simply never reconciles its delta.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		if e.unsubscribe != nil {
			e.unsubscribe()
		}

		e.lmu.Lock()
		for _, ch := range e.listeners {
			close(ch)
		}
		e.listeners = nil
		e.lmu.Unlock()
	})
}

// Wait blocks until all in-flight remote calls have resolved.
func (e *Engine) Wait() { e.inflight.Wait() }

// Buy handles the buy intent for an instrument. An already-held
// instrument gets one more share; an unheld one gets a provisional
// holding with a simulator-drawn initial price, replaced by the
// authoritative store record once the insert confirms.
func (e *Engine) Buy(instrumentID string) error {
	e.mu.Lock()

	if h := e.findByInstrument(instrumentID); h != nil {
		h.Shares++
		holdingID, shares := h.ID, h.Shares
		e.mu.Unlock()
		e.publish()

		e.dispatch("buy", func() error {
			return e.store.UpdateShares(holdingID, shares)
		})
		return nil
	}

	instrument := e.findInstrument(instrumentID)
	if instrument == nil {
		e.mu.Unlock()
		return apperrors.ErrInstrumentNotFound
	}

	provisional := models.Holding{
		Base:         models.Base{ID: uuid.NewProvisional(), CreatedAt: time.Now()},
		UserID:       e.userID,
		InstrumentID: instrument.ID,
		Price:        e.sim.InitialPrice(),
		Shares:       1,
		Instrument:   *instrument,
	}
	e.holdings = append(e.holdings, provisional)
	price := provisional.Price
	e.mu.Unlock()
	e.publish()

	e.dispatch("buy", func() error {
		created, err := e.store.InsertHolding(e.userID, instrumentID, price, 1)
		if err != nil {
			return err
		}
		// Swap in the authoritative record, matched by instrument id
		// because the provisional id never reached the store.
		e.mu.Lock()
		for i := range e.holdings {
			if e.holdings[i].InstrumentID == instrumentID {
				e.holdings[i] = *created
				break
			}
		}
		e.mu.Unlock()
		e.publish()
		return nil
	})
	return nil
}

// Sell handles the sell intent. currentShares must be the count read
// from the same snapshot that rendered the action; selling the last
// share removes the holding entirely.
func (e *Engine) Sell(holdingID string, currentShares int) error {
	e.mu.Lock()
	h := e.findByID(holdingID)
	if h == nil {
		e.mu.Unlock()
		return apperrors.ErrHoldingNotFound
	}

	if currentShares <= 1 {
		e.removeByID(holdingID)
		e.mu.Unlock()
		e.publish()

		e.dispatch("sell", func() error {
			return e.store.DeleteHolding(holdingID)
		})
		return nil
	}

	h.Shares--
	e.mu.Unlock()
	e.publish()

	e.dispatch("sell", func() error {
		return e.store.UpdateShares(holdingID, currentShares-1)
	})
	return nil
}

// AddShares handles the add-shares intent, incrementing by one.
func (e *Engine) AddShares(holdingID string, currentShares int) error {
	e.mu.Lock()
	h := e.findByID(holdingID)
	if h == nil {
		e.mu.Unlock()
		return apperrors.ErrHoldingNotFound
	}

	h.Shares++
	e.mu.Unlock()
	e.publish()

	e.dispatch("add_shares", func() error {
		return e.store.UpdateShares(holdingID, currentShares+1)
	})
	return nil
}

// ApplyPriceTick advances every holding's simulated price one step.
// The store is never written: simulated prices are display state, and a
// later resynchronization overwrites accumulated drift with the price
// the store last confirmed.
func (e *Engine) ApplyPriceTick() {
	e.mu.Lock()
	for i := range e.holdings {
		t := e.sim.Next(e.holdings[i].Price)
		e.holdings[i].Price = t.Price
		e.holdings[i].PriceDelta = t.Delta
		e.holdings[i].PriceDeltaPct = t.DeltaPct
	}
	e.mu.Unlock()

	e.publish()
}

// Snapshot returns the current view state.
func (e *Engine) Snapshot() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()

	holdings := make([]models.Holding, len(e.holdings))
	copy(holdings, e.holdings)

	held := make(map[string]bool, len(e.holdings))
	for _, h := range e.holdings {
		held[h.InstrumentID] = true
	}
	available := make([]models.Instrument, 0, len(e.catalog))
	for _, instrument := range e.catalog {
		if !held[instrument.ID] {
			available = append(available, instrument)
		}
	}

	return ViewState{
		Holdings:  holdings,
		Available: available,
		Stats:     portfolio.Summarize(holdings),
		Loading:   !e.loaded,
	}
}

// Subscribe returns a channel receiving the view state after every
// snapshot change, and an unsubscribe function. Slow consumers drop
// frames rather than stalling the engine. The channel closes when the
// session closes.
func (e *Engine) Subscribe() (<-chan ViewState, func()) {
	e.lmu.Lock()
	defer e.lmu.Unlock()

	if e.listeners == nil {
		// Session already closed.
		ch := make(chan ViewState)
		close(ch)
		return ch, func() {}
	}

	e.nextSub++
	id := e.nextSub
	ch := make(chan ViewState, 8)
	e.listeners[id] = ch

	return ch, func() {
		e.lmu.Lock()
		defer e.lmu.Unlock()
		if l, ok := e.listeners[id]; ok {
			delete(e.listeners, id)
			close(l)
		}
	}
}

func (e *Engine) tickLoop() {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.ApplyPriceTick()
		case <-e.done:
			return
		}
	}
}

// onRemoteChange reacts to a store change notification: any event means
// "re-list". Last fetch wins; an in-flight optimistic edit may be
// overwritten by the re-list.
func (e *Engine) onRemoteChange() {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.resync()
	}()
}

// dispatch runs a remote store call off the reducer path. On failure
// the optimistic delta is not undone locally; the snapshot is re-fetched
// wholesale instead, since other mutations may have interleaved.
func (e *Engine) dispatch(op string, call func() error) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := call(); err != nil {
			logger.Get().Warnw("remote mutation failed, resynchronizing",
				"code", apperrors.ErrMutationFailed.Code,
				"op", op,
				"user_id", e.userID,
				"error", err,
			)
			e.resync()
		}
	}()
}

// resync replaces the local snapshot with the store's current list. A
// failed fetch is logged and the current snapshot kept.
func (e *Engine) resync() {
	holdings, err := e.store.ListHoldings(e.userID)
	if err != nil {
		logger.Get().Errorw("resynchronization failed",
			"user_id", e.userID,
			"error", err,
		)
		return
	}

	e.mu.Lock()
	e.holdings = holdings
	e.mu.Unlock()

	e.publish()
}

// publish pushes the current view state to every subscriber. Callers
// must not hold e.mu.
func (e *Engine) publish() {
	state := e.Snapshot()

	e.lmu.Lock()
	defer e.lmu.Unlock()
	for _, ch := range e.listeners {
		select {
		case ch <- state:
		default:
		}
	}
}

// findByInstrument returns the holding for instrumentID, if held.
// Caller must hold e.mu.
func (e *Engine) findByInstrument(instrumentID string) *models.Holding {
	for i := range e.holdings {
		if e.holdings[i].InstrumentID == instrumentID {
			return &e.holdings[i]
		}
	}
	return nil
}

// findByID returns the holding with the given id. Caller must hold e.mu.
func (e *Engine) findByID(holdingID string) *models.Holding {
	for i := range e.holdings {
		if e.holdings[i].ID == holdingID {
			return &e.holdings[i]
		}
	}
	return nil
}

// removeByID deletes the holding with the given id from the snapshot.
// Caller must hold e.mu.
func (e *Engine) removeByID(holdingID string) {
	for i := range e.holdings {
		if e.holdings[i].ID == holdingID {
			e.holdings = append(e.holdings[:i], e.holdings[i+1:]...)
			return
		}
	}
}

// findInstrument returns the catalog entry for instrumentID. Caller
// must hold e.mu.
func (e *Engine) findInstrument(instrumentID string) *models.Instrument {
	for i := range e.catalog {
		if e.catalog[i].ID == instrumentID {
			return &e.catalog[i]
		}
	}
	return nil
}
