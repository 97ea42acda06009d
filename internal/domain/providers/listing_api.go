package providers

import (
	"context"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

// PropertyQuery holds the server-side listing parameters
type PropertyQuery struct {
	Page   int
	Limit  int
	Search string
}

// ListingAPI defines the public read operations of the listing backend
type ListingAPI interface {
	// FetchProperties returns one page of public listings
	FetchProperties(ctx context.Context, query PropertyQuery) ([]entities.Property, error)

	// FetchProperty returns a single listing
	FetchProperty(ctx context.Context, id string) (*entities.Property, error)

	// FetchCounties returns every county
	FetchCounties(ctx context.Context) ([]entities.County, error)

	// FetchSubCounties returns the sub-counties of a county
	FetchSubCounties(ctx context.Context, countyID int) ([]entities.SubCounty, error)
}

// AgentAPI defines the listing management operations available to agents
type AgentAPI interface {
	FetchMyProperties(ctx context.Context, token string) ([]entities.Property, error)
	CreateProperty(ctx context.Context, input *entities.PropertyInput, token string) (*entities.Property, error)
	UpdateProperty(ctx context.Context, id string, input *entities.PropertyInput, token string) (*entities.Property, error)
	DeleteProperty(ctx context.Context, id string, token string) error
	UploadImages(ctx context.Context, id string, files []entities.ImageUpload, token string) ([]entities.PropertyImage, error)
}

// AuthAPI defines the account operations of the listing backend
type AuthAPI interface {
	Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error)
	Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error)

	// Logout tells the backend the token is no longer in use
	Logout(ctx context.Context, token string) error

	// FetchProfile returns the account behind token
	FetchProfile(ctx context.Context, token string) (*entities.User, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

// AdminAPI defines agent moderation operations
type AdminAPI interface {
	PendingAgents(ctx context.Context, token string) ([]entities.User, error)
	Agents(ctx context.Context, token string) ([]entities.User, error)
	ApproveAgent(ctx context.Context, agentID string, token string) (string, error)
}

// BackendAPI is the full remote data client
type BackendAPI interface {
	ListingAPI
	AgentAPI
	AuthAPI
	AdminAPI
}
