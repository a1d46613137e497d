// Package azure implements the CloudProvider interface on top of the
// Azure SDK: ARM resources for tagging, armnetwork for NSG rules, armdns
// for zone replication, and Microsoft Graph for app credentials.
package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	"github.com/wakethelight/driftaudit/providers"
	"github.com/wakethelight/driftaudit/telemetry"
)

func init() {
	providers.Register("azure", New)
}

// Provider talks to one Azure subscription.
type Provider struct {
	config        providers.ProviderConfig
	resClient     *armresources.Client
	tagsClient    *armresources.TagsClient
	nsgClient     *armnetwork.SecurityGroupsClient
	rulesClient   *armnetwork.SecurityRulesClient
	recordsClient *armdns.RecordSetsClient
	graphClient   *msgraphsdk.GraphServiceClient
	logger        *telemetry.Logger
}

// New authenticates with the default credential chain and builds the
// service clients.
func New(ctx context.Context, config providers.ProviderConfig) (providers.CloudProvider, error) {
	if config.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription ID is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	resClient, err := armresources.NewClient(config.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource client: %w", err)
	}

	tagsClient, err := armresources.NewTagsClient(config.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags client: %w", err)
	}

	networkFactory, err := armnetwork.NewClientFactory(config.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create network client factory: %w", err)
	}

	recordsClient, err := armdns.NewRecordSetsClient(config.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create DNS record sets client: %w", err)
	}

	graphClient, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{"https://graph.microsoft.com/.default"})
	if err != nil {
		return nil, fmt.Errorf("failed to create Graph client: %w", err)
	}

	return &Provider{
		config:        config,
		resClient:     resClient,
		tagsClient:    tagsClient,
		nsgClient:     networkFactory.NewSecurityGroupsClient(),
		rulesClient:   networkFactory.NewSecurityRulesClient(),
		recordsClient: recordsClient,
		graphClient:   graphClient,
		logger:        telemetry.NewLogger("azure-provider"),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return "azure" }

// resourceGroupFromID extracts the resource group from an ARM resource ID
// (/subscriptions/<sub>/resourceGroups/<rg>/providers/...).
func resourceGroupFromID(id string) string {
	parts := strings.Split(id, "/")
	for i := 0; i < len(parts)-1; i++ {
		if strings.EqualFold(parts[i], "resourceGroups") {
			return parts[i+1]
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
