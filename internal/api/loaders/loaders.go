package loaders

import (
	"context"
	"net/http"
	"sync"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// maxConcurrentFetches bounds the backend calls one batch issues at a time
const maxConcurrentFetches = 4

// Loaders contains the per-request dataloaders. The backend has no batch
// endpoints, so a batch fans out to single calls; the loaders still collapse
// duplicate keys and cache results for the lifetime of the request.
type Loaders struct {
	PropertyLoader  *dataloader.Loader[string, *entities.Property]
	SubCountyLoader *dataloader.Loader[int, []entities.SubCounty]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(api providers.ListingAPI) *Loaders {
	return &Loaders{
		PropertyLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Property] {
			return fetchEach(ctx, keys, api.FetchProperty)
		}),
		SubCountyLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []int) []*dataloader.Result[[]entities.SubCounty] {
			return fetchEach(ctx, keys, api.FetchSubCounties)
		}),
	}
}

// For returns the loaders for a given context, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request
func Middleware(api providers.ListingAPI) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(api))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func fetchEach[K comparable, V any](ctx context.Context, keys []K, fetch func(context.Context, K) (V, error)) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	sem := make(chan struct{}, maxConcurrentFetches)

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			data, err := fetch(ctx, key)
			results[i] = &dataloader.Result[V]{Data: data, Error: err}
		}()
	}
	wg.Wait()
	return results
}
