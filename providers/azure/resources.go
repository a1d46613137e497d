package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/wakethelight/driftaudit/types"
)

// ListResources enumerates every resource in the subscription.
func (p *Provider) ListResources(ctx context.Context) ([]types.Resource, error) {
	var resources []types.Resource

	pager := p.resClient.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resources: %w", err)
		}

		for _, res := range page.Value {
			if res == nil {
				continue
			}
			resources = append(resources, types.Resource{
				ID:            deref(res.ID),
				Name:          deref(res.Name),
				Type:          deref(res.Type),
				ResourceGroup: resourceGroupFromID(deref(res.ID)),
				Location:      deref(res.Location),
				Tags:          derefTags(res.Tags),
			})
		}
	}

	return resources, nil
}

// SetResourceTag merges a single tag onto the resource, leaving existing
// tags untouched.
func (p *Provider) SetResourceTag(ctx context.Context, resourceID, key, value string) error {
	patch := armresources.TagsPatchResource{
		Operation: to.Ptr(armresources.TagsPatchOperationMerge),
		Properties: &armresources.Tags{
			Tags: map[string]*string{key: to.Ptr(value)},
		},
	}

	if _, err := p.tagsClient.UpdateAtScope(ctx, resourceID, patch, nil); err != nil {
		return fmt.Errorf("failed to set tag %s on %s: %w", key, resourceID, err)
	}
	return nil
}

func derefTags(tags map[string]*string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = deref(v)
	}
	return out
}
