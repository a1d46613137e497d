package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"

	"github.com/wakethelight/driftaudit/types"
)

// ListSecurityGroups enumerates every NSG in the subscription with its
// custom rules.
func (p *Provider) ListSecurityGroups(ctx context.Context) ([]types.SecurityGroup, error) {
	var groups []types.SecurityGroup

	pager := p.nsgClient.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list security groups: %w", err)
		}

		for _, sg := range page.Value {
			if sg == nil {
				continue
			}
			group := types.SecurityGroup{
				Name:          deref(sg.Name),
				ResourceGroup: resourceGroupFromID(deref(sg.ID)),
				Location:      deref(sg.Location),
			}
			if sg.Properties != nil {
				for _, rule := range sg.Properties.SecurityRules {
					if rule == nil || rule.Properties == nil {
						continue
					}
					group.Rules = append(group.Rules, fromSDKRule(rule))
				}
			}
			groups = append(groups, group)
		}
	}

	return groups, nil
}

// ReplaceSecurityRule deletes the named rule and recreates it from the
// given replacement at the same priority. If the add fails after the
// delete succeeded, the original rule is restored so the group is never
// left with a hole; the original failure is still returned.
func (p *Provider) ReplaceSecurityRule(ctx context.Context, resourceGroup, groupName string, rule types.SecurityRule) error {
	original, err := p.rulesClient.Get(ctx, resourceGroup, groupName, rule.Name, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch rule %s: %w", rule.Name, err)
	}

	if err := p.deleteRule(ctx, resourceGroup, groupName, rule.Name); err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", rule.Name, err)
	}

	if err := p.createRule(ctx, resourceGroup, groupName, rule.Name, toSDKRule(rule)); err != nil {
		if restoreErr := p.createRule(ctx, resourceGroup, groupName, rule.Name, original.SecurityRule); restoreErr != nil {
			return fmt.Errorf("failed to add replacement rule %s: %w (restore also failed: %v)", rule.Name, err, restoreErr)
		}
		return fmt.Errorf("failed to add replacement rule %s (original restored): %w", rule.Name, err)
	}

	return nil
}

func (p *Provider) deleteRule(ctx context.Context, resourceGroup, groupName, ruleName string) error {
	poller, err := p.rulesClient.BeginDelete(ctx, resourceGroup, groupName, ruleName, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

func (p *Provider) createRule(ctx context.Context, resourceGroup, groupName, ruleName string, rule armnetwork.SecurityRule) error {
	poller, err := p.rulesClient.BeginCreateOrUpdate(ctx, resourceGroup, groupName, ruleName, rule, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

func fromSDKRule(rule *armnetwork.SecurityRule) types.SecurityRule {
	props := rule.Properties

	portRange := deref(props.DestinationPortRange)
	if portRange == "" && len(props.DestinationPortRanges) > 0 {
		parts := make([]string, 0, len(props.DestinationPortRanges))
		for _, pr := range props.DestinationPortRanges {
			parts = append(parts, deref(pr))
		}
		portRange = strings.Join(parts, ",")
	}

	out := types.SecurityRule{
		Name:              deref(rule.Name),
		SourcePrefix:      deref(props.SourceAddressPrefix),
		DestinationPrefix: deref(props.DestinationAddressPrefix),
		PortRange:         portRange,
	}
	if props.Priority != nil {
		out.Priority = *props.Priority
	}
	if props.Direction != nil {
		out.Direction = string(*props.Direction)
	}
	if props.Access != nil {
		out.Access = string(*props.Access)
	}
	if props.Protocol != nil {
		out.Protocol = string(*props.Protocol)
	}
	return out
}

func toSDKRule(rule types.SecurityRule) armnetwork.SecurityRule {
	props := &armnetwork.SecurityRulePropertiesFormat{
		Priority:                 to.Ptr(rule.Priority),
		Direction:                to.Ptr(armnetwork.SecurityRuleDirection(rule.Direction)),
		Access:                   to.Ptr(armnetwork.SecurityRuleAccess(rule.Access)),
		Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocol(rule.Protocol)),
		SourceAddressPrefix:      to.Ptr(rule.SourcePrefix),
		DestinationAddressPrefix: to.Ptr(rule.DestinationPrefix),
		SourcePortRange:          to.Ptr("*"),
	}

	if strings.Contains(rule.PortRange, ",") {
		ranges := make([]*string, 0)
		for _, part := range strings.Split(rule.PortRange, ",") {
			ranges = append(ranges, to.Ptr(strings.TrimSpace(part)))
		}
		props.DestinationPortRanges = ranges
	} else {
		props.DestinationPortRange = to.Ptr(rule.PortRange)
	}

	return armnetwork.SecurityRule{
		Name:       to.Ptr(rule.Name),
		Properties: props,
	}
}
