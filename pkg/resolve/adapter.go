package resolve

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Adapter resolves attributes for a recognised family of inputs.
type Adapter struct {
	// Condition reports whether the adapter handles this input.
	Condition func(input any) bool
	// Resolve reads name from input. Use Missing for the not-found case so
	// that safe lookups are honoured.
	Resolve func(input any, name string, safe bool, cache Cache) (any, error)
}

// CacheFactory builds the cache handed to a newly registered adapter.
type CacheFactory func(adapterName string) Cache

type registeredAdapter struct {
	name    string
	adapter *Adapter
	cache   Cache
}

var (
	adaptersMu   sync.RWMutex
	adapters     = orderedmap.New[string, *registeredAdapter]()
	cacheFactory CacheFactory = func(string) Cache { return NewMemoryCache() }
)

// SetCacheFactory changes how adapter caches are built. It affects adapters
// registered afterwards. A nil factory restores in-memory caches.
func SetCacheFactory(f CacheFactory) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	if f == nil {
		f = func(string) Cache { return NewMemoryCache() }
	}
	cacheFactory = f
}

// RegisterAdapter adds or replaces the adapter registered under name.
// Registration order decides priority; replacing keeps the original slot.
// Every registration gets a fresh, empty cache. A nil adapter removes name.
func RegisterAdapter(name string, a *Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	if a == nil {
		adapters.Delete(name)
		logger().Debug("adapter removed", "adapter", name)
		return
	}
	cache := cacheFactory(name)
	cache.Reset()
	adapters.Set(name, &registeredAdapter{name: name, adapter: a, cache: cache})
	logger().Debug("adapter registered", "adapter", name)
}

// AdapterCache returns the cache owned by the adapter registered under name.
func AdapterCache(name string) (Cache, bool) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	ra, ok := adapters.Get(name)
	if !ok {
		return nil, false
	}
	return ra.cache, true
}

// Adapters lists registered adapter names in priority order.
func Adapters() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	names := make([]string, 0, adapters.Len())
	for pair := adapters.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func snapshotAdapters() []*registeredAdapter {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	list := make([]*registeredAdapter, 0, adapters.Len())
	for pair := adapters.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Value)
	}
	return list
}

// AdapterStrategy hands the lookup to the first adapter whose condition matches.
type AdapterStrategy struct{}

// TryResolve implements Strategy.
func (AdapterStrategy) TryResolve(in Input) (any, bool, error) {
	for _, ra := range snapshotAdapters() {
		if ra.adapter.Condition == nil || !ra.adapter.Condition(in.Value) {
			continue
		}
		v, err := ra.adapter.Resolve(in.Value, in.Name, in.Safe, ra.cache)
		return v, true, err
	}
	return nil, false, nil
}
