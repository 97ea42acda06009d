package handlers_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/adapters/storage"
	"github.com/realtorspace/realtor-space/internal/api/middleware"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

type stubBackend struct {
	mu    sync.Mutex
	calls []string

	properties  []entities.Property
	counties    []entities.County
	subCounties map[int][]entities.SubCounty

	fetchErr    error
	loginResp   *entities.AuthResponse
	loginErr    error
	logoutErr   error
	created     *entities.PropertyInput
	uploaded    []entities.ImageUpload
	lastToken   string
	pending     []entities.User
	resetToken  string
	resetPasswd string
}

var _ providers.BackendAPI = (*stubBackend)(nil)

func (s *stubBackend) record(name, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	if token != "" {
		s.lastToken = token
	}
}

func (s *stubBackend) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubBackend) FetchProperties(ctx context.Context, query providers.PropertyQuery) ([]entities.Property, error) {
	s.record("FetchProperties", "")
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := s.properties
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (s *stubBackend) FetchProperty(ctx context.Context, id string) (*entities.Property, error) {
	s.record("FetchProperty:"+id, "")
	for i := range s.properties {
		if s.properties[i].ID == id {
			p := s.properties[i]
			return &p, nil
		}
	}
	return nil, apperrors.NewHTTPError(http.StatusNotFound, "Property not found")
}

func (s *stubBackend) FetchCounties(ctx context.Context) ([]entities.County, error) {
	s.record("FetchCounties", "")
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.counties, nil
}

func (s *stubBackend) FetchSubCounties(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
	s.record("FetchSubCounties", "")
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.subCounties[countyID], nil
}

func (s *stubBackend) FetchMyProperties(ctx context.Context, token string) ([]entities.Property, error) {
	s.record("FetchMyProperties", token)
	return s.properties, nil
}

func (s *stubBackend) CreateProperty(ctx context.Context, input *entities.PropertyInput, token string) (*entities.Property, error) {
	s.record("CreateProperty", token)
	s.created = input
	return &entities.Property{ID: "new-1", Title: input.Title, RentAmount: input.RentAmount}, nil
}

func (s *stubBackend) UpdateProperty(ctx context.Context, id string, input *entities.PropertyInput, token string) (*entities.Property, error) {
	s.record("UpdateProperty", token)
	return &entities.Property{ID: id, Title: input.Title}, nil
}

func (s *stubBackend) DeleteProperty(ctx context.Context, id string, token string) error {
	s.record("DeleteProperty", token)
	return nil
}

func (s *stubBackend) UploadImages(ctx context.Context, id string, files []entities.ImageUpload, token string) ([]entities.PropertyImage, error) {
	s.record("UploadImages", token)
	s.uploaded = files
	images := make([]entities.PropertyImage, 0, len(files))
	for i, f := range files {
		images = append(images, entities.PropertyImage{ID: f.Filename, DisplayOrder: i})
	}
	return images, nil
}

func (s *stubBackend) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	s.record("Login", "")
	return s.loginResp, s.loginErr
}

func (s *stubBackend) Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error) {
	s.record("Register", "")
	user := entities.User{ID: "u-new", Email: req.Email, FirstName: req.FirstName, LastName: req.LastName, UserType: req.UserType}
	return &entities.AuthResponse{Token: "tok-new", User: &user}, nil
}

func (s *stubBackend) Logout(ctx context.Context, token string) error {
	s.record("Logout", token)
	return s.logoutErr
}

func (s *stubBackend) FetchProfile(ctx context.Context, token string) (*entities.User, error) {
	s.record("FetchProfile", token)
	return &entities.User{ID: "u1", UserType: entities.UserTypeAgent}, nil
}

func (s *stubBackend) RequestPasswordReset(ctx context.Context, email string) error {
	s.record("RequestPasswordReset", "")
	return nil
}

func (s *stubBackend) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	s.record("ConfirmPasswordReset", "")
	s.resetToken, s.resetPasswd = token, password
	return nil
}

func (s *stubBackend) PendingAgents(ctx context.Context, token string) ([]entities.User, error) {
	s.record("PendingAgents", token)
	return s.pending, nil
}

func (s *stubBackend) Agents(ctx context.Context, token string) ([]entities.User, error) {
	s.record("Agents", token)
	return s.pending, nil
}

func (s *stubBackend) ApproveAgent(ctx context.Context, agentID string, token string) (string, error) {
	s.record("ApproveAgent:"+agentID, token)
	return "Agent approved successfully", nil
}

func sampleProperties() []entities.Property {
	return []entities.Property{
		{ID: "p1", Title: "Studio in Kilimani", PropertyType: entities.PropertyTypeStudio, RentAmount: 10000, CountyID: 47, SubCountyID: 301},
		{ID: "p2", Title: "Westlands flat", PropertyType: entities.PropertyTypeApartment, RentAmount: 30000, CountyID: 47, SubCountyID: 302},
		{ID: "p3", Title: "Nyali villa", PropertyType: entities.PropertyTypeVilla, RentAmount: 150000, CountyID: 1, SubCountyID: 11},
		{ID: "p4", Title: "Karen house", PropertyType: entities.PropertyTypeHouse, RentAmount: 100000, CountyID: 47, SubCountyID: 303},
	}
}

func newBackend() *stubBackend {
	return &stubBackend{
		properties: sampleProperties(),
		counties:   []entities.County{{ID: 1, Name: "Mombasa"}, {ID: 47, Name: "Nairobi"}},
		subCounties: map[int][]entities.SubCounty{
			47: {
				{ID: 301, CountyID: 47, Name: "Dagoretti North"},
				{ID: 302, CountyID: 47, Name: "Westlands"},
				{ID: 303, CountyID: 47, Name: "Lang'ata"},
			},
		},
	}
}

// newSession returns a session store, logged in as userType unless it is empty
func newSession(t *testing.T, userType entities.UserType) *services.SessionStore {
	t.Helper()
	store := services.NewSessionStore(storage.NewMemorySessions(time.Hour).Storage("test"), nil)
	if userType != "" {
		require.NoError(t, store.Login(context.Background(), entities.User{ID: "u1", Email: "a@b.co", UserType: userType}, "tok-1"))
	}
	return store
}

func withSession(r *http.Request, store *services.SessionStore) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), store))
}
