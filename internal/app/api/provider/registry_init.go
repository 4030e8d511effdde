package provider

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ProviderCreator builds an engine from configuration.
type ProviderCreator func(settings Settings, logger *zap.Logger) (TranscriptionProvider, error)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a provider creator function
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, fmt.Errorf("provider type %s not registered", providerType)
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types, sorted
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	var providers []string
	for providerType := range providerRegistry {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// New creates the engine named by settings.Type.
func New(settings Settings, logger *zap.Logger) (TranscriptionProvider, error) {
	creator, err := GetProviderCreator(settings.Type)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, ListRegisteredProviders())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return creator(settings, logger.With(zap.String("engine", settings.Type)))
}
