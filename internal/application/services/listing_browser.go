package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// SelectorState is the position of the county/sub-county cascade
type SelectorState int

const (
	// NoCountySelected means the county selector is at "all"
	NoCountySelected SelectorState = iota
	// AwaitingSubCounties means a county is chosen and its sub-counties are loading
	AwaitingSubCounties
	// WithSubCounties means the sub-county options of the chosen county are known
	WithSubCounties
)

func (s SelectorState) String() string {
	switch s {
	case NoCountySelected:
		return "no_county_selected"
	case AwaitingSubCounties:
		return "awaiting_sub_counties"
	case WithSubCounties:
		return "with_sub_counties"
	}
	return fmt.Sprintf("selector_state(%d)", int(s))
}

// BrowseSnapshot is a consistent copy of a browse session. Filters holds
// the current selections and Applied the selections Visible was computed from.
type BrowseSnapshot struct {
	Filters     entities.FilterState
	Applied     entities.FilterState
	Pending     bool
	Selector    SelectorState
	Properties  []entities.Property
	Visible     []entities.Property
	Counties    []entities.County
	SubCounties []entities.SubCounty
	Loading     bool
	Error       string
}

// DefaultPageSize is the number of listings requested per load
const DefaultPageSize = 50

// ListingBrowser holds the state of one browse session: the unfiltered data
// set, the filter selections and the visible result. Selections only change
// the visible result when Apply is called. Every mutation notifies
// subscribers with a snapshot.
type ListingBrowser struct {
	api      providers.ListingAPI
	pageSize int

	mu          sync.Mutex
	filters     entities.FilterState
	applied     entities.FilterState
	selector    SelectorState
	all         []entities.Property
	visible     []entities.Property
	counties    []entities.County
	subCounties []entities.SubCounty
	loading     bool
	errMsg      string

	// countySeq and loadSeq discard responses of superseded requests
	countySeq uint64
	loadSeq   uint64

	observers    map[int]func(BrowseSnapshot)
	nextObserver int
}

// NewListingBrowser starts a browse session with every filter at "all"
func NewListingBrowser(api providers.ListingAPI, pageSize int) *ListingBrowser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ListingBrowser{
		api:       api,
		pageSize:  pageSize,
		filters:   entities.NewFilterState(),
		applied:   entities.NewFilterState(),
		visible:   []entities.Property{},
		observers: make(map[int]func(BrowseSnapshot)),
	}
}

// Subscribe registers fn for every committed change and returns a function
// that removes it.
func (b *ListingBrowser) Subscribe(fn func(BrowseSnapshot)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextObserver
	b.nextObserver++
	b.observers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// Load fetches the listings and counties and filters them with the last
// applied selections, so the first load shows every listing. On failure the
// previous data set is kept and the error message is recorded.
func (b *ListingBrowser) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loadSeq++
	seq := b.loadSeq
	b.loading = true
	b.errMsg = ""
	search := b.filters.SearchText
	b.commitLocked()

	var (
		wg          sync.WaitGroup
		properties  []entities.Property
		counties    []entities.County
		propsErr    error
		countiesErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		properties, propsErr = b.api.FetchProperties(ctx, providers.PropertyQuery{Page: 1, Limit: b.pageSize, Search: search})
	}()
	go func() {
		defer wg.Done()
		counties, countiesErr = b.api.FetchCounties(ctx)
	}()
	wg.Wait()

	b.mu.Lock()
	if seq != b.loadSeq {
		b.mu.Unlock()
		return nil
	}
	b.loading = false
	err := propsErr
	if err == nil {
		err = countiesErr
	}
	if err != nil {
		b.errMsg = apperrors.UserMessage(err)
		b.commitLocked()
		return err
	}

	b.all = properties
	b.counties = counties
	b.visible = ApplyFilters(b.all, b.applied)
	b.commitLocked()
	return nil
}

// SetSearchText changes the server-side search and reloads the data set
func (b *ListingBrowser) SetSearchText(ctx context.Context, text string) error {
	b.mu.Lock()
	b.filters.SearchText = text
	b.mu.Unlock()
	return b.Load(ctx)
}

// SetPropertyType selects a property type or entities.All
func (b *ListingBrowser) SetPropertyType(t entities.PropertyType) {
	b.mu.Lock()
	if entities.IsAllValue(string(t)) {
		t = entities.All
	}
	b.filters.PropertyType = t
	b.commitLocked()
}

// SetPriceRange selects a price bracket key or entities.All
func (b *ListingBrowser) SetPriceRange(key string) error {
	if entities.IsAllValue(key) {
		key = entities.All
	} else if _, err := entities.ParsePriceBracket(key); err != nil {
		return apperrors.NewValidationError("price_range", err.Error())
	}

	b.mu.Lock()
	b.filters.PriceRange = key
	b.commitLocked()
	return nil
}

// SelectCounty changes the county, resets the sub-county and, for a concrete
// county, loads its sub-counties. A failed sub-county fetch leaves an empty
// option list; the county filter stays in effect. A response arriving after a
// newer SelectCounty call is discarded.
func (b *ListingBrowser) SelectCounty(ctx context.Context, county entities.IDSelection) {
	b.mu.Lock()
	b.countySeq++
	seq := b.countySeq
	b.filters = b.filters.WithCounty(county)
	b.subCounties = nil
	id, concrete := county.ID()
	if concrete {
		b.selector = AwaitingSubCounties
	} else {
		b.selector = NoCountySelected
	}
	b.commitLocked()

	if !concrete {
		return
	}

	subCounties, err := b.api.FetchSubCounties(ctx, id)

	b.mu.Lock()
	if seq != b.countySeq {
		b.mu.Unlock()
		observability.LoggerFromContext(ctx).Debug().
			Int("county_id", id).
			Msg("discarding stale sub-county response")
		return
	}
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Int("county_id", id).
			Msg("failed to load sub-counties")
		subCounties = []entities.SubCounty{}
	}
	b.subCounties = subCounties
	b.selector = WithSubCounties
	b.commitLocked()
}

// SelectSubCounty selects a sub-county of the current county, or
// entities.AnyID(). It reports false and changes nothing when no option list
// is loaded or the id is not one of the options.
func (b *ListingBrowser) SelectSubCounty(subCounty entities.IDSelection) bool {
	b.mu.Lock()
	if b.selector != WithSubCounties {
		b.mu.Unlock()
		return false
	}
	if id, concrete := subCounty.ID(); concrete {
		found := slices.ContainsFunc(b.subCounties, func(sc entities.SubCounty) bool {
			return sc.ID == id
		})
		if !found {
			b.mu.Unlock()
			return false
		}
	}
	b.filters.SubCounty = subCounty
	b.commitLocked()
	return true
}

// Apply runs the filter engine over the data set with the current
// selections and makes the result visible
func (b *ListingBrowser) Apply() {
	b.mu.Lock()
	b.applied = b.filters
	b.visible = ApplyFilters(b.all, b.applied)
	b.commitLocked()
}

// ResetFilters returns every selector to "all" and shows the whole data set
func (b *ListingBrowser) ResetFilters() {
	b.mu.Lock()
	b.countySeq++
	search := b.filters.SearchText
	b.filters = entities.NewFilterState()
	b.filters.SearchText = search
	b.selector = NoCountySelected
	b.subCounties = nil
	b.applied = b.filters
	b.visible = ApplyFilters(b.all, b.applied)
	b.commitLocked()
}

// Snapshot returns a copy of the current session
func (b *ListingBrowser) Snapshot() BrowseSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *ListingBrowser) snapshotLocked() BrowseSnapshot {
	return BrowseSnapshot{
		Filters:     b.filters,
		Applied:     b.applied,
		Pending:     !sameSelections(b.filters, b.applied),
		Selector:    b.selector,
		Properties:  slices.Clone(b.all),
		Visible:     slices.Clone(b.visible),
		Counties:    slices.Clone(b.counties),
		SubCounties: slices.Clone(b.subCounties),
		Loading:     b.loading,
		Error:       b.errMsg,
	}
}

// commitLocked releases b.mu and notifies observers with the committed state
func (b *ListingBrowser) commitLocked() {
	snap := b.snapshotLocked()
	observers := make([]func(BrowseSnapshot), 0, len(b.observers))
	for _, fn := range b.observers {
		observers = append(observers, fn)
	}
	b.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// sameSelections compares the locally applied fields; the search text is
// applied by the backend on Load.
func sameSelections(a, b entities.FilterState) bool {
	return a.PropertyType == b.PropertyType &&
		a.County == b.County &&
		a.SubCounty == b.SubCounty &&
		a.PriceRange == b.PriceRange
}
