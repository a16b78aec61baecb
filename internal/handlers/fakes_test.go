package handlers_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skinscan-backend/internal/middleware"
	"skinscan-backend/internal/models"
)

// fakeAuth stands in for AuthMiddleware: the caller is taken from X-Test-User.
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(middleware.UserIDKey, user)
			c.Set(middleware.TokenKey, "token-"+user)
		}
		c.Next()
	}
}

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string]string
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string]string)}
}

func (m *memoryObjects) Upload(_ context.Context, path string, _ []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; ok {
		return errors.New("the resource already exists")
	}
	m.objects[path] = contentType
	return nil
}

func (m *memoryObjects) PublicURL(path string) string {
	return "https://project.supabase.co/storage/v1/object/public/skin-scans/" + path
}

func (m *memoryObjects) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memoryObjects) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type memoryScans struct {
	mu      sync.Mutex
	rows    []models.Scan
	listErr error
	onEvent func(models.ChangeEvent)
	clock   time.Time
}

func newMemoryScans() *memoryScans {
	return &memoryScans{clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memoryScans) CreateScan(_ context.Context, userID, imageURL string) (*models.Scan, error) {
	m.mu.Lock()
	m.clock = m.clock.Add(time.Second)
	scan := models.Scan{
		ID:              uuid.New(),
		UserID:          userID,
		ImageURL:        imageURL,
		Recommendations: []string{},
		CreatedAt:       m.clock,
	}
	m.rows = append(m.rows, scan)
	m.mu.Unlock()

	m.publish(models.ChangeInsert, scan)
	return &scan, nil
}

func (m *memoryScans) ListScans(_ context.Context, userID string) ([]models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Scan
	for _, s := range m.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryScans) UpdateScanAnalysis(_ context.Context, scanID uuid.UUID, userID string, a *models.Analysis, riskLevel string) error {
	m.mu.Lock()
	var updated *models.Scan
	for i := range m.rows {
		if m.rows[i].ID == scanID && m.rows[i].UserID == userID {
			m.rows[i].AnalysisResult = a
			m.rows[i].RiskLevel = &riskLevel
			m.rows[i].Recommendations = a.Recommendations
			updated = &m.rows[i]
			break
		}
	}
	m.mu.Unlock()

	if updated == nil {
		return models.ErrScanNotFound
	}
	m.publish(models.ChangeUpdate, *updated)
	return nil
}

func (m *memoryScans) publish(t models.ChangeType, s models.Scan) {
	if m.onEvent != nil {
		m.onEvent(models.ChangeEvent{Type: t, Table: "skin_scans", ScanID: s.ID, UserID: s.UserID})
	}
}

// storeAnalyzer writes a fixed analysis through the store, like the
// in-process analyze handler.
type storeAnalyzer struct {
	scans    *memoryScans
	analysis models.Analysis
	err      error
	calls    []models.AnalyzeRequest
	callers  []models.Principal
}

func (a *storeAnalyzer) Analyze(ctx context.Context, caller models.Principal, req models.AnalyzeRequest) (*models.Analysis, error) {
	a.calls = append(a.calls, req)
	a.callers = append(a.callers, caller)
	if a.err != nil {
		return nil, a.err
	}
	out := a.analysis
	if a.scans != nil {
		if err := a.scans.UpdateScanAnalysis(ctx, req.ScanID, caller.UserID, &out, models.NormalizeRiskLevel(out.RiskLevel)); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

type fakeSessions struct {
	user      *models.SessionResponse
	err       error
	signedOut []string
}

func (f *fakeSessions) CurrentUser(_ context.Context, token string) (*models.SessionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeSessions) SignOut(_ context.Context, token string) error {
	if f.err != nil {
		return f.err
	}
	f.signedOut = append(f.signedOut, token)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func benignAnalysis() models.Analysis {
	return models.Analysis{
		Description:     "Symmetric brown mole with even borders.",
		RiskLevel:       models.RiskLow,
		Recommendations: []string{"Monitor monthly", "Use SPF 30+"},
		Disclaimer:      "This is not a medical diagnosis.",
	}
}
