// Package providers defines the narrow interface the compliance engine
// and executor use to reach the cloud control plane.
package providers

import (
	"context"
	"fmt"

	"github.com/wakethelight/driftaudit/types"
)

// CloudProvider is the boundary to the cloud control plane. Listing calls
// return objects in provider order; no ordering is guaranteed.
type CloudProvider interface {
	// Enumeration
	ListResources(ctx context.Context) ([]types.Resource, error)
	ListSecurityGroups(ctx context.Context) ([]types.SecurityGroup, error)
	ListRecordSets(ctx context.Context, zone string) ([]types.RecordSet, error)
	ListAppCredentials(ctx context.Context) ([]types.AppCredential, error)

	// Mutation (remediate mode only)
	SetResourceTag(ctx context.Context, resourceID, key, value string) error
	ReplaceSecurityRule(ctx context.Context, resourceGroup, groupName string, rule types.SecurityRule) error
	CreateRecordSet(ctx context.Context, record types.RecordSet) error

	// Provider info
	Name() string
}

// ProviderConfig holds provider configuration.
type ProviderConfig struct {
	SubscriptionID   string
	TenantID         string
	DNSResourceGroup string // resource group holding the DNS zones
}

// ProviderFactory creates a provider instance.
type ProviderFactory func(ctx context.Context, config ProviderConfig) (CloudProvider, error)

// Registry of available providers.
var factories = make(map[string]ProviderFactory)

// Register registers a new provider factory.
func Register(name string, factory ProviderFactory) {
	factories[name] = factory
}

// Get creates a provider instance by name.
func Get(ctx context.Context, name string, config ProviderConfig) (CloudProvider, error) {
	factory, exists := factories[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return factory(ctx, config)
}

// List returns available provider names.
func List() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
