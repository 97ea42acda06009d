package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

func warmingBackend() *stubBackend {
	return &stubBackend{
		fetchCounties: func(ctx context.Context) ([]entities.County, error) {
			return []entities.County{{ID: 1, Name: "Mombasa"}, {ID: 47, Name: "Nairobi"}}, nil
		},
		fetchSubCounties: func(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
			if countyID == 47 {
				return []entities.SubCounty{{ID: 1, CountyID: 47, Name: "Westlands"}, {ID: 2, CountyID: 47, Name: "Kasarani"}}, nil
			}
			return []entities.SubCounty{{ID: 3, CountyID: 1, Name: "Nyali"}}, nil
		},
		fetchProperties: func(ctx context.Context, q providers.PropertyQuery) ([]entities.Property, error) {
			return []entities.Property{{ID: "p1"}, {ID: "p2"}}, nil
		},
		fetchProperty: func(ctx context.Context, id string) (*entities.Property, error) {
			return &entities.Property{ID: id}, nil
		},
	}
}

func TestCacheWarmingService_WarmsHierarchyAndFeatured(t *testing.T) {
	backend := warmingBackend()
	svc := services.NewCacheWarmingService(backend)

	result, err := svc.WarmCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.WarmResult{Counties: 2, SubCounties: 3, Properties: 2}, result)
	assert.Equal(t, []string{
		"FetchCounties",
		"FetchSubCounties", "FetchSubCounties",
		"FetchProperties",
		"FetchProperty", "FetchProperty",
	}, backend.Calls())
}

func TestCacheWarmingService_CountiesFailureStopsPass(t *testing.T) {
	backend := warmingBackend()
	backend.fetchCounties = func(ctx context.Context) ([]entities.County, error) {
		return nil, errors.New("backend down")
	}
	svc := services.NewCacheWarmingService(backend)

	_, err := svc.WarmCache(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"FetchCounties"}, backend.Calls())
}

func TestCacheWarmingService_PartialFailuresContinue(t *testing.T) {
	backend := warmingBackend()
	backend.fetchSubCounties = func(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
		if countyID == 1 {
			return nil, errors.New("timeout")
		}
		return []entities.SubCounty{{ID: 1, CountyID: 47, Name: "Westlands"}}, nil
	}
	svc := services.NewCacheWarmingService(backend)

	result, err := svc.WarmCache(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "county 1")
	assert.Equal(t, services.WarmResult{Counties: 2, SubCounties: 1, Properties: 2}, result)
}

func TestCacheWarmingService_StartWithoutIntervalWarmsOnce(t *testing.T) {
	backend := warmingBackend()
	svc := services.NewCacheWarmingService(backend)

	svc.StartPeriodicWarming(context.Background(), 0)
	assert.Len(t, backend.Calls(), 6)
}
