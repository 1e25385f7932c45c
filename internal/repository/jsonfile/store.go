// internal/repository/jsonfile/store.go
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

// document is the on-disk shape of the whole datastore: one JSON file
// holding every record collection.
type document struct {
	Products    []*domain.Product         `json:"products"`
	Countries   []*domain.Country         `json:"countries"`
	AdSpend     []*domain.AdSpend         `json:"ad_spend"`
	Remittances []*domain.Remittance      `json:"remittances"`
	Influencers []*domain.InfluencerSpend `json:"influencer_spend"`
	Shipments   []*domain.Shipment        `json:"shipments"`
	Finance     []*domain.FinanceEntry    `json:"finance_entries"`
}

func newDocument() *document {
	return &document{
		Products:    []*domain.Product{},
		Countries:   []*domain.Country{},
		AdSpend:     []*domain.AdSpend{},
		Remittances: []*domain.Remittance{},
		Influencers: []*domain.InfluencerSpend{},
		Shipments:   []*domain.Shipment{},
		Finance:     []*domain.FinanceEntry{},
	}
}

// Store is a flat-file JSON datastore. All reads and writes go through a
// single RWMutex, and every mutation is persisted with a
// write-temp-then-rename so the live file is never half-written.
//
// Mutations are staged on a copy of the document and committed to memory
// only after the disk write succeeds, so a failed persist leaves the
// in-memory state exactly matching the file.
type Store struct {
	path string

	mu  sync.RWMutex
	doc *document

	// Composite-key indexes for idempotent upserts.
	adIndex  map[string]*domain.AdSpend
	remIndex map[string]*domain.Remittance
}

var _ repository.Datastore = (*Store)(nil)

// Open loads the datastore at path, creating an empty one if the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: newDocument()}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		doc := newDocument()
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, &domain.StorageError{Op: "open", Err: errors.Wrapf(err, "parse %s", path)}
		}
		s.doc = doc
	case os.IsNotExist(err):
		if err := s.persistDocLocked(s.doc); err != nil {
			return nil, err
		}
	default:
		return nil, &domain.StorageError{Op: "open", Err: errors.Wrapf(err, "read %s", path)}
	}

	s.rebuildIndexes()
	return s, nil
}

func (s *Store) rebuildIndexes() {
	s.adIndex = make(map[string]*domain.AdSpend, len(s.doc.AdSpend))
	for _, a := range s.doc.AdSpend {
		s.adIndex[adKey(a)] = a
	}
	s.remIndex = make(map[string]*domain.Remittance, len(s.doc.Remittances))
	for _, r := range s.doc.Remittances {
		s.remIndex[remKey(r)] = r
	}
}

func adKey(a *domain.AdSpend) string {
	return strings.Join([]string{a.Date, domain.NormalizeCountry(a.Country), string(a.Platform), a.ProductID}, "|")
}

func remKey(r *domain.Remittance) string {
	return strings.Join([]string{r.StartDate, r.EndDate, domain.NormalizeCountry(r.Country), r.ProductID}, "|")
}

// persistDocLocked writes doc to disk atomically. Callers must hold the
// write lock.
func (s *Store) persistDocLocked(doc *document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &domain.StorageError{Op: "persist", Err: errors.Wrap(err, "encode datastore")}
	}
	return s.writeAtomic(payload)
}

func (s *Store) writeAtomic(payload []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".db-*.tmp")
	if err != nil {
		return &domain.StorageError{Op: "persist", Err: errors.Wrap(err, "create temp file")}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.StorageError{Op: "persist", Err: errors.Wrap(err, "write temp file")}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "persist", Err: errors.Wrap(err, "close temp file")}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "persist", Err: errors.Wrap(err, "replace datastore")}
	}
	return nil
}

// without returns a copy of src with every element matching drop removed.
func without[T any](src []T, drop func(T) bool) []T {
	out := make([]T, 0, len(src))
	for _, v := range src {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out
}

// Export returns a consistent serialization of the whole datastore.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return nil, &domain.StorageError{Op: "export", Err: errors.Wrap(err, "encode datastore")}
	}
	return payload, nil
}

// Swap atomically replaces the whole datastore with payload and returns the
// serialized state it displaced. Parsing, the capture of the previous state,
// the disk write and the memory swap all happen under one write lock, so no
// concurrent write can land between the capture and the replacement. On any
// failure the store is left exactly as it was.
func (s *Store) Swap(ctx context.Context, payload []byte) ([]byte, error) {
	doc := newDocument()
	if err := json.Unmarshal(payload, doc); err != nil {
		return nil, errors.Wrap(domain.ErrCorruptSnapshot, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return nil, &domain.StorageError{Op: "swap", Err: errors.Wrap(err, "encode datastore")}
	}

	if err := s.writeAtomic(payload); err != nil {
		return nil, err
	}
	s.doc = doc
	s.rebuildIndexes()
	return previous, nil
}

// Import replaces the whole datastore with payload, discarding the previous
// state.
func (s *Store) Import(ctx context.Context, payload []byte) error {
	_, err := s.Swap(ctx, payload)
	return err
}

// Path returns the live datastore file path.
func (s *Store) Path() string {
	return s.path
}

// --- products ---

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	staged := *s.doc
	staged.Products = append(slices.Clone(s.doc.Products), p)
	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.doc.Products {
		if existing.ID != p.ID {
			continue
		}
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = time.Now().UTC()

		staged := *s.doc
		staged.Products = slices.Clone(s.doc.Products)
		staged.Products[i] = p
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "product", ID: p.ID}
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.doc.Products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "product", ID: id}
}

func (s *Store) ListProducts(ctx context.Context, includePaused bool) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Product, 0, len(s.doc.Products))
	for _, p := range s.doc.Products {
		if p.Paused && !includePaused {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) SetProductPaused(ctx context.Context, id string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.doc.Products {
		if p.ID != id {
			continue
		}
		updated := *p
		updated.Paused = paused
		updated.UpdatedAt = time.Now().UTC()

		staged := *s.doc
		staged.Products = slices.Clone(s.doc.Products)
		staged.Products[i] = &updated
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "product", ID: id}
}

// DeleteProduct removes the product together with every dependent record in
// one locked mutation, so no orphan ever survives.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.doc.Products, func(p *domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}

	staged := *s.doc
	staged.Products = slices.Delete(slices.Clone(s.doc.Products), idx, idx+1)
	staged.AdSpend = without(s.doc.AdSpend, func(a *domain.AdSpend) bool { return a.ProductID == id })
	staged.Remittances = without(s.doc.Remittances, func(r *domain.Remittance) bool { return r.ProductID == id })
	staged.Influencers = without(s.doc.Influencers, func(spend *domain.InfluencerSpend) bool { return spend.ProductID == id })
	staged.Shipments = without(s.doc.Shipments, func(sh *domain.Shipment) bool { return sh.ProductID == id })

	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	s.rebuildIndexes()
	return nil
}

// --- countries ---

func (s *Store) AddCountry(ctx context.Context, name string) (*domain.Country, error) {
	normalized := domain.NormalizeCountry(name)
	if normalized == "" {
		return nil, domain.NewValidationError("name", "country name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.doc.Countries {
		if c.Name == normalized {
			return nil, &domain.ConflictError{Reason: "country already exists: " + normalized}
		}
	}

	country := &domain.Country{Name: normalized, CreatedAt: time.Now().UTC()}
	staged := *s.doc
	staged.Countries = append(slices.Clone(s.doc.Countries), country)
	if err := s.persistDocLocked(&staged); err != nil {
		return nil, err
	}
	s.doc = &staged
	cp := *country
	return &cp, nil
}

func (s *Store) ListCountries(ctx context.Context) ([]*domain.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Country, 0, len(s.doc.Countries))
	for _, c := range s.doc.Countries {
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) DeleteCountry(ctx context.Context, name string) error {
	normalized := domain.NormalizeCountry(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.doc.Countries {
		if c.Name != normalized {
			continue
		}
		staged := *s.doc
		staged.Countries = slices.Delete(slices.Clone(s.doc.Countries), i, i+1)
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "country", ID: normalized}
}

// --- ad spend ---

func (s *Store) UpsertAdSpend(ctx context.Context, a *domain.AdSpend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.Country = domain.NormalizeCountry(a.Country)
	a.UpdatedAt = time.Now().UTC()

	if existing, ok := s.adIndex[adKey(a)]; ok {
		updated := *existing
		updated.Amount = a.Amount
		updated.UpdatedAt = a.UpdatedAt

		idx := slices.Index(s.doc.AdSpend, existing)
		staged := *s.doc
		staged.AdSpend = slices.Clone(s.doc.AdSpend)
		staged.AdSpend[idx] = &updated
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		s.adIndex[adKey(&updated)] = &updated
		a.ID = updated.ID
		return nil
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	staged := *s.doc
	staged.AdSpend = append(slices.Clone(s.doc.AdSpend), a)
	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	s.adIndex[adKey(a)] = a
	return nil
}

func (s *Store) ListAdSpend(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.AdSpend, error) {
	start, end := filter.Window()
	country := domain.NormalizeCountry(filter.Country)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AdSpend, 0)
	for _, a := range s.doc.AdSpend {
		if a.Date < start || a.Date > end {
			continue
		}
		if country != "" && a.Country != country {
			continue
		}
		if filter.ProductID != "" && a.ProductID != filter.ProductID {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) DeleteAdSpend(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.doc.AdSpend {
		if a.ID != id {
			continue
		}
		staged := *s.doc
		staged.AdSpend = slices.Delete(slices.Clone(s.doc.AdSpend), i, i+1)
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		delete(s.adIndex, adKey(a))
		return nil
	}
	return &domain.NotFoundError{Entity: "ad spend", ID: id}
}

// --- remittances ---

func (s *Store) UpsertRemittance(ctx context.Context, r *domain.Remittance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Country = domain.NormalizeCountry(r.Country)
	r.UpdatedAt = time.Now().UTC()

	if existing, ok := s.remIndex[remKey(r)]; ok {
		updated := *r
		updated.ID = existing.ID

		idx := slices.Index(s.doc.Remittances, existing)
		staged := *s.doc
		staged.Remittances = slices.Clone(s.doc.Remittances)
		staged.Remittances[idx] = &updated
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		s.remIndex[remKey(&updated)] = &updated
		r.ID = updated.ID
		return nil
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	staged := *s.doc
	staged.Remittances = append(slices.Clone(s.doc.Remittances), r)
	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	s.remIndex[remKey(r)] = r
	return nil
}

func (s *Store) ListRemittances(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.Remittance, error) {
	start, end := filter.Window()
	country := domain.NormalizeCountry(filter.Country)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Remittance, 0)
	for _, r := range s.doc.Remittances {
		// Range records match when they overlap the window, bounds inclusive.
		if r.EndDate < start || r.StartDate > end {
			continue
		}
		if country != "" && r.Country != country {
			continue
		}
		if filter.ProductID != "" && r.ProductID != filter.ProductID {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) DeleteRemittance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.doc.Remittances {
		if r.ID != id {
			continue
		}
		staged := *s.doc
		staged.Remittances = slices.Delete(slices.Clone(s.doc.Remittances), i, i+1)
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		delete(s.remIndex, remKey(r))
		return nil
	}
	return &domain.NotFoundError{Entity: "remittance", ID: id}
}

// --- influencer spend ---

func (s *Store) AddInfluencerSpend(ctx context.Context, spend *domain.InfluencerSpend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spend.ID == "" {
		spend.ID = uuid.NewString()
	}
	spend.Country = domain.NormalizeCountry(spend.Country)

	staged := *s.doc
	staged.Influencers = append(slices.Clone(s.doc.Influencers), spend)
	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	return nil
}

func (s *Store) ListInfluencerSpend(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.InfluencerSpend, error) {
	start, end := filter.Window()
	country := domain.NormalizeCountry(filter.Country)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.InfluencerSpend, 0)
	for _, spend := range s.doc.Influencers {
		if spend.Date < start || spend.Date > end {
			continue
		}
		if country != "" && spend.Country != country {
			continue
		}
		if filter.ProductID != "" && spend.ProductID != filter.ProductID {
			continue
		}
		cp := *spend
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) DeleteInfluencerSpend(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, spend := range s.doc.Influencers {
		if spend.ID != id {
			continue
		}
		staged := *s.doc
		staged.Influencers = slices.Delete(slices.Clone(s.doc.Influencers), i, i+1)
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "influencer spend", ID: id}
}

// --- shipments ---

func (s *Store) CreateShipment(ctx context.Context, sh *domain.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	sh.FromCountry = domain.NormalizeCountry(sh.FromCountry)
	sh.ToCountry = domain.NormalizeCountry(sh.ToCountry)

	staged := *s.doc
	staged.Shipments = append(slices.Clone(s.doc.Shipments), sh)
	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	return nil
}

func (s *Store) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sh := range s.doc.Shipments {
		if sh.ID == id {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "shipment", ID: id}
}

func (s *Store) ListShipments(ctx context.Context, productID string) ([]*domain.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Shipment, 0)
	for _, sh := range s.doc.Shipments {
		if productID != "" && sh.ProductID != productID {
			continue
		}
		cp := *sh
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) MarkShipmentArrived(ctx context.Context, id string, arrivedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sh := range s.doc.Shipments {
		if sh.ID != id {
			continue
		}
		if sh.ArrivedAt != "" {
			return &domain.ConflictError{Reason: "shipment already arrived"}
		}
		updated := *sh
		updated.ArrivedAt = arrivedAt

		staged := *s.doc
		staged.Shipments = slices.Clone(s.doc.Shipments)
		staged.Shipments[i] = &updated
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "shipment", ID: id}
}

func (s *Store) FinalizeShippingCost(ctx context.Context, id string, cost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sh := range s.doc.Shipments {
		if sh.ID != id {
			continue
		}
		updated := *sh
		updated.ShippingCost = cost

		staged := *s.doc
		staged.Shipments = slices.Clone(s.doc.Shipments)
		staged.Shipments[i] = &updated
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "shipment", ID: id}
}

func (s *Store) DeleteShipment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sh := range s.doc.Shipments {
		if sh.ID != id {
			continue
		}
		staged := *s.doc
		staged.Shipments = slices.Delete(slices.Clone(s.doc.Shipments), i, i+1)
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "shipment", ID: id}
}

// --- finance ---

func (s *Store) AddFinanceEntry(ctx context.Context, e *domain.FinanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	staged := *s.doc
	staged.Finance = append(slices.Clone(s.doc.Finance), e)
	if err := s.persistDocLocked(&staged); err != nil {
		return err
	}
	s.doc = &staged
	return nil
}

func (s *Store) ListFinanceEntries(ctx context.Context, period string) ([]*domain.FinanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FinanceEntry, 0)
	for _, e := range s.doc.Finance {
		if period != "" && e.Period != period {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) DeleteFinanceEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.doc.Finance {
		if e.ID != id {
			continue
		}
		staged := *s.doc
		staged.Finance = slices.Delete(slices.Clone(s.doc.Finance), i, i+1)
		if err := s.persistDocLocked(&staged); err != nil {
			return err
		}
		s.doc = &staged
		return nil
	}
	return &domain.NotFoundError{Entity: "finance entry", ID: id}
}
