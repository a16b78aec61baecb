package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"skinscan-backend/internal/models"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
	uploads int
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string][]byte)}
}

func (m *memoryObjects) Upload(_ context.Context, path string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.err != nil {
		return m.err
	}
	if _, exists := m.objects[path]; exists {
		return errors.New("the resource already exists")
	}
	m.objects[path] = data
	return nil
}

func (m *memoryObjects) PublicURL(path string) string {
	return "https://project.supabase.co/storage/v1/object/public/skin-scans/" + path
}

func (m *memoryObjects) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memoryObjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// memoryScans is an in-memory skin_scans table. Every change is published
// the way the database trigger would.
type memoryScans struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Scan
	clock     time.Time
	createErr error
	listErr   error
	inserts   int
	publisher interface{ Publish(models.ChangeEvent) }
}

func newMemoryScans() *memoryScans {
	return &memoryScans{
		rows:  make(map[uuid.UUID]*models.Scan),
		clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryScans) publish(t models.ChangeType, s *models.Scan) {
	if m.publisher != nil {
		m.publisher.Publish(models.ChangeEvent{Type: t, Table: "skin_scans", ScanID: s.ID, UserID: s.UserID})
	}
}

func (m *memoryScans) CreateScan(_ context.Context, userID, imageURL string) (*models.Scan, error) {
	m.mu.Lock()
	m.inserts++
	if m.createErr != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", models.ErrPersistence, m.createErr)
	}
	m.clock = m.clock.Add(time.Second)
	s := &models.Scan{ID: uuid.New(), UserID: userID, ImageURL: imageURL, CreatedAt: m.clock}
	m.rows[s.ID] = s
	out := *s
	m.mu.Unlock()

	m.publish(models.ChangeInsert, s)
	return &out, nil
}

func (m *memoryScans) ListScans(_ context.Context, userID string) ([]models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Scan, 0)
	for _, s := range m.rows {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryScans) UpdateScanAnalysis(_ context.Context, scanID uuid.UUID, userID string, a *models.Analysis, riskLevel string) error {
	m.mu.Lock()
	s, ok := m.rows[scanID]
	if !ok || s.UserID != userID {
		m.mu.Unlock()
		return models.ErrScanNotFound
	}
	s.AnalysisResult = a
	s.RiskLevel = &riskLevel
	s.Recommendations = a.Recommendations
	m.mu.Unlock()

	m.publish(models.ChangeUpdate, s)
	return nil
}

func (m *memoryScans) get(id uuid.UUID) models.Scan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memoryScans) all() []models.Scan {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Scan, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, *s)
	}
	return out
}

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

func (m *fakeModel) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.imageURLs...)
}

type recordingAnalyzer struct {
	mu    sync.Mutex
	calls []models.AnalyzeRequest
}

func (r *recordingAnalyzer) Analyze(_ context.Context, _ models.Principal, req models.AnalyzeRequest) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	return &models.Analysis{RiskLevel: "low"}, nil
}

// tickingClock returns a strictly increasing time per call.
func tickingClock() func() time.Time {
	var n atomic.Int64
	base := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Millisecond)
	}
}
