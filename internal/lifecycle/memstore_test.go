package lifecycle

import (
	"context"
	"errors"
	"sort"
	"time"

	"outreach/internal/models"
)

var errInjected = errors.New("injected failure")

// memState is the full contents of the in-memory store.
type memState struct {
	cart      []models.CartEntry
	prospects map[int64]models.ProspectingRecord
	archive   []models.ArchiveRecord
	blacklist map[string]bool
	nextID    int64
}

func (s memState) clone() memState {
	c := memState{
		cart:      append([]models.CartEntry(nil), s.cart...),
		prospects: make(map[int64]models.ProspectingRecord, len(s.prospects)),
		archive:   append([]models.ArchiveRecord(nil), s.archive...),
		blacklist: make(map[string]bool, len(s.blacklist)),
		nextID:    s.nextID,
	}
	for k, v := range s.prospects {
		c.prospects[k] = v
	}
	for k, v := range s.blacklist {
		c.blacklist[k] = v
	}
	return c
}

// memStore is a transactional in-memory Store. Each transaction works on a
// copy of the state that replaces the committed state only on success.
type memStore struct {
	state memState
	// failAt names a Tx method that fails when called.
	failAt string
	txs    int
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		prospects: map[int64]models.ProspectingRecord{},
		blacklist: map[string]bool{},
		nextID:    1,
	}}
}

func (m *memStore) CartSize(_ context.Context, sessionID string) (int64, error) {
	var n int64
	for _, e := range m.state.cart {
		if e.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) InTx(_ context.Context, fn func(Tx) error) error {
	m.txs++
	working := m.state.clone()
	if err := fn(&memTx{state: &working, failAt: m.failAt}); err != nil {
		return err
	}
	m.state = working
	return nil
}

func (m *memStore) addCart(sessionID, domain string, campaignID *int64) {
	m.state.cart = append(m.state.cart, models.CartEntry{
		ID:         m.state.nextID,
		SessionID:  sessionID,
		Domain:     domain,
		CampaignID: campaignID,
		AddedAt:    time.Now(),
	})
	m.state.nextID++
}

func (m *memStore) addProspect(domain string, campaignID int64) int64 {
	id := m.state.nextID
	m.state.nextID++
	now := time.Now()
	m.state.prospects[id] = models.ProspectingRecord{
		ID:               id,
		Domain:           domain,
		CampaignID:       &campaignID,
		ProcessingStatus: models.ProcessingCompleted,
		TopByCountry:     []byte(`[["us", 100]]`),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return id
}

func (m *memStore) prospectKeys() []models.ProspectKey {
	var keys []models.ProspectKey
	for _, p := range m.state.prospects {
		keys = append(keys, models.ProspectKey{Domain: p.Domain, CampaignID: *p.CampaignID})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CampaignID != keys[j].CampaignID {
			return keys[i].CampaignID < keys[j].CampaignID
		}
		return keys[i].Domain < keys[j].Domain
	})
	return keys
}

type memTx struct {
	state  *memState
	failAt string
}

func (t *memTx) fail(op string) error {
	if t.failAt == op {
		return errInjected
	}
	return nil
}

func (t *memTx) CartEntries(_ context.Context, sessionID string) ([]models.CartEntry, error) {
	if err := t.fail("CartEntries"); err != nil {
		return nil, err
	}
	var out []models.CartEntry
	for _, e := range t.state.cart {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *memTx) has(k models.ProspectKey) bool {
	for _, p := range t.state.prospects {
		if p.CampaignID != nil && *p.CampaignID == k.CampaignID && p.Domain == k.Domain {
			return true
		}
	}
	return false
}

func (t *memTx) ExistingProspects(_ context.Context, keys []models.ProspectKey) ([]models.ProspectKey, error) {
	if err := t.fail("ExistingProspects"); err != nil {
		return nil, err
	}
	var out []models.ProspectKey
	for _, k := range keys {
		if t.has(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (t *memTx) InsertProspects(_ context.Context, keys []models.ProspectKey) ([]models.ProspectKey, error) {
	if err := t.fail("InsertProspects"); err != nil {
		return nil, err
	}
	var created []models.ProspectKey
	for _, k := range keys {
		if t.has(k) {
			continue
		}
		id := t.state.nextID
		t.state.nextID++
		campaignID := k.CampaignID
		t.state.prospects[id] = models.ProspectingRecord{
			ID:               id,
			Domain:           k.Domain,
			CampaignID:       &campaignID,
			ProcessingStatus: models.ProcessingPending,
		}
		created = append(created, k)
	}
	return created, nil
}

func (t *memTx) ClearCart(_ context.Context, sessionID string) (int64, error) {
	if err := t.fail("ClearCart"); err != nil {
		return 0, err
	}
	var kept []models.CartEntry
	var n int64
	for _, e := range t.state.cart {
		if e.SessionID == sessionID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	t.state.cart = kept
	return n, nil
}

func (t *memTx) ProspectsByIDs(_ context.Context, ids []int64) ([]models.ProspectingRecord, error) {
	if err := t.fail("ProspectsByIDs"); err != nil {
		return nil, err
	}
	var out []models.ProspectingRecord
	for _, id := range ids {
		if p, ok := t.state.prospects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memTx) InsertArchive(_ context.Context, rec *models.ArchiveRecord) error {
	if err := t.fail("InsertArchive"); err != nil {
		return err
	}
	rec.ID = t.state.nextID
	t.state.nextID++
	rec.ArchivedAt = time.Now()
	t.state.archive = append(t.state.archive, *rec)
	return nil
}

func (t *memTx) BlacklistDomain(_ context.Context, domain string) (bool, error) {
	if err := t.fail("BlacklistDomain"); err != nil {
		return false, err
	}
	if t.state.blacklist[domain] {
		return false, nil
	}
	t.state.blacklist[domain] = true
	return true, nil
}

func (t *memTx) DeleteProspects(_ context.Context, ids []int64) (int64, error) {
	if err := t.fail("DeleteProspects"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		if _, ok := t.state.prospects[id]; ok {
			delete(t.state.prospects, id)
			n++
		}
	}
	return n, nil
}
