package azure

import (
	"context"
	"fmt"

	"github.com/microsoftgraph/msgraph-sdk-go/models"

	"github.com/wakethelight/driftaudit/types"
)

// applicationPage is one page of a Graph application listing.
type applicationPage interface {
	GetValue() []models.Applicationable
	GetOdataNextLink() *string
}

// ListAppCredentials enumerates password credentials across the tenant's
// application registrations via Microsoft Graph, following the next link
// until every page is consumed.
func (p *Provider) ListAppCredentials(ctx context.Context) ([]types.AppCredential, error) {
	apps, err := p.graphClient.Applications().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return collectAppCredentials(ctx, apps, func(ctx context.Context, link string) (applicationPage, error) {
		return p.graphClient.Applications().WithUrl(link).Get(ctx, nil)
	})
}

// collectAppCredentials walks every page of an application listing. Graph
// caps page size, so stopping at the first page would silently drop any
// registration beyond it.
func collectAppCredentials(ctx context.Context, page applicationPage, next func(ctx context.Context, link string) (applicationPage, error)) ([]types.AppCredential, error) {
	var creds []types.AppCredential
	for {
		for _, app := range page.GetValue() {
			creds = append(creds, fromGraphApplication(app)...)
		}

		nextLink := page.GetOdataNextLink()
		if nextLink == nil || *nextLink == "" {
			return creds, nil
		}

		var err error
		page, err = next(ctx, *nextLink)
		if err != nil {
			return nil, fmt.Errorf("failed to list applications (next page): %w", err)
		}
	}
}

func fromGraphApplication(app models.Applicationable) []types.AppCredential {
	appID := deref(app.GetAppId())
	appName := deref(app.GetDisplayName())

	var creds []types.AppCredential
	for _, pc := range app.GetPasswordCredentials() {
		cred := types.AppCredential{
			AppID:       appID,
			AppName:     appName,
			DisplayName: deref(pc.GetDisplayName()),
		}
		if keyID := pc.GetKeyId(); keyID != nil {
			cred.KeyID = keyID.String()
		}
		if end := pc.GetEndDateTime(); end != nil {
			cred.EndDate = *end
		}
		creds = append(creds, cred)
	}
	return creds
}
