package analysis_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"skinscan-backend/internal/models"
)

type fakeModel struct {
	mu        sync.Mutex
	content   string
	err       error
	imageURLs []string
}

func (m *fakeModel) Complete(_ context.Context, imageURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageURLs = append(m.imageURLs, imageURL)
	return m.content, m.err
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.imageURLs)
}

type ownedScan struct {
	userID    string
	analysis  *models.Analysis
	riskLevel string
	updates   int
}

// fakeScans mimics the id AND user_id filter of the real update.
type fakeScans struct {
	mu    sync.Mutex
	scans map[uuid.UUID]*ownedScan
}

func newFakeScans() *fakeScans {
	return &fakeScans{scans: make(map[uuid.UUID]*ownedScan)}
}

func (f *fakeScans) add(userID string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.scans[id] = &ownedScan{userID: userID}
	return id
}

func (f *fakeScans) get(id uuid.UUID) ownedScan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.scans[id]
}

func (f *fakeScans) UpdateScanAnalysis(_ context.Context, scanID uuid.UUID, userID string, a *models.Analysis, riskLevel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.scans[scanID]
	if !ok || s.userID != userID {
		return models.ErrScanNotFound
	}
	s.analysis = a
	s.riskLevel = riskLevel
	s.updates++
	return nil
}
