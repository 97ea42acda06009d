package services_test

import (
	"context"
	"sync"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// stubBackend implements providers.BackendAPI with overridable functions
type stubBackend struct {
	fetchProperties   func(ctx context.Context, q providers.PropertyQuery) ([]entities.Property, error)
	fetchProperty     func(ctx context.Context, id string) (*entities.Property, error)
	fetchCounties     func(ctx context.Context) ([]entities.County, error)
	fetchSubCounties  func(ctx context.Context, countyID int) ([]entities.SubCounty, error)
	fetchMyProperties func(ctx context.Context, token string) ([]entities.Property, error)
	createProperty    func(ctx context.Context, input *entities.PropertyInput, token string) (*entities.Property, error)
	uploadImages      func(ctx context.Context, id string, files []entities.ImageUpload, token string) ([]entities.PropertyImage, error)
	login             func(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error)
	register          func(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error)
	logout            func(ctx context.Context, token string) error
	pendingAgents     func(ctx context.Context, token string) ([]entities.User, error)

	mu    sync.Mutex
	calls []string
}

func (s *stubBackend) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubBackend) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubBackend) FetchProperties(ctx context.Context, q providers.PropertyQuery) ([]entities.Property, error) {
	s.record("FetchProperties")
	if s.fetchProperties == nil {
		return []entities.Property{}, nil
	}
	return s.fetchProperties(ctx, q)
}

func (s *stubBackend) FetchProperty(ctx context.Context, id string) (*entities.Property, error) {
	s.record("FetchProperty")
	return s.fetchProperty(ctx, id)
}

func (s *stubBackend) FetchCounties(ctx context.Context) ([]entities.County, error) {
	s.record("FetchCounties")
	if s.fetchCounties == nil {
		return []entities.County{}, nil
	}
	return s.fetchCounties(ctx)
}

func (s *stubBackend) FetchSubCounties(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
	s.record("FetchSubCounties")
	if s.fetchSubCounties == nil {
		return []entities.SubCounty{}, nil
	}
	return s.fetchSubCounties(ctx, countyID)
}

func (s *stubBackend) FetchMyProperties(ctx context.Context, token string) ([]entities.Property, error) {
	s.record("FetchMyProperties")
	return s.fetchMyProperties(ctx, token)
}

func (s *stubBackend) CreateProperty(ctx context.Context, input *entities.PropertyInput, token string) (*entities.Property, error) {
	s.record("CreateProperty")
	return s.createProperty(ctx, input, token)
}

func (s *stubBackend) UpdateProperty(ctx context.Context, id string, input *entities.PropertyInput, token string) (*entities.Property, error) {
	s.record("UpdateProperty")
	return &entities.Property{ID: id, Title: input.Title}, nil
}

func (s *stubBackend) DeleteProperty(ctx context.Context, id string, token string) error {
	s.record("DeleteProperty")
	return nil
}

func (s *stubBackend) UploadImages(ctx context.Context, id string, files []entities.ImageUpload, token string) ([]entities.PropertyImage, error) {
	s.record("UploadImages")
	return s.uploadImages(ctx, id, files, token)
}

func (s *stubBackend) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	s.record("Login")
	return s.login(ctx, req)
}

func (s *stubBackend) Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error) {
	s.record("Register")
	return s.register(ctx, req)
}

func (s *stubBackend) Logout(ctx context.Context, token string) error {
	s.record("Logout")
	if s.logout == nil {
		return nil
	}
	return s.logout(ctx, token)
}

func (s *stubBackend) FetchProfile(ctx context.Context, token string) (*entities.User, error) {
	s.record("FetchProfile")
	return &entities.User{ID: "u-1", Email: "agent@example.com", UserType: entities.UserTypeAgent, FirstName: "Refreshed"}, nil
}

func (s *stubBackend) RequestPasswordReset(ctx context.Context, email string) error {
	s.record("RequestPasswordReset")
	return nil
}

func (s *stubBackend) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	s.record("ConfirmPasswordReset")
	return nil
}

func (s *stubBackend) PendingAgents(ctx context.Context, token string) ([]entities.User, error) {
	s.record("PendingAgents")
	return s.pendingAgents(ctx, token)
}

func (s *stubBackend) Agents(ctx context.Context, token string) ([]entities.User, error) {
	s.record("Agents")
	return nil, nil
}

func (s *stubBackend) ApproveAgent(ctx context.Context, agentID string, token string) (string, error) {
	s.record("ApproveAgent")
	return "Agent approved successfully", nil
}

// memoryStorage is an in-process providers.SessionStorage
type memoryStorage struct {
	mu      sync.Mutex
	stored  *providers.StoredSession
	saveErr error
	clears  int
}

func (m *memoryStorage) Load(ctx context.Context) (providers.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return providers.StoredSession{}, providers.ErrNoSession
	}
	return *m.stored, nil
}

func (m *memoryStorage) Save(ctx context.Context, session providers.StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = &session
	return nil
}

func (m *memoryStorage) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.stored = nil
	return nil
}

func (m *memoryStorage) snapshot() *providers.StoredSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil
	}
	copied := *m.stored
	return &copied
}

func sampleProperties() []entities.Property {
	return []entities.Property{
		{ID: "p1", Title: "Kilimani studio", PropertyType: entities.PropertyTypeStudio, RentAmount: 10000, CountyID: 47, SubCountyID: 301},
		{ID: "p2", Title: "Westlands flat", PropertyType: entities.PropertyTypeApartment, RentAmount: 30000, CountyID: 47, SubCountyID: 302},
		{ID: "p3", Title: "Nyali villa", PropertyType: entities.PropertyTypeVilla, RentAmount: 150000, CountyID: 1, SubCountyID: 11},
		{ID: "p4", Title: "Karen house", PropertyType: entities.PropertyTypeHouse, RentAmount: 100000, CountyID: 47, SubCountyID: 303},
		{ID: "p5", Title: "Ruaka apartment", PropertyType: entities.PropertyTypeApartment, RentAmount: 50000, CountyID: 22, SubCountyID: 220},
		{ID: "p6", Title: "Unpriced plot", PropertyType: entities.PropertyTypeLand, CountyID: 22},
	}
}

func ids(properties []entities.Property) []string {
	out := make([]string, 0, len(properties))
	for _, p := range properties {
		out = append(out, p.ID)
	}
	return out
}
