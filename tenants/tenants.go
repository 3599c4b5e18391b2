// tenants/tenants.go
// Tenant enumeration for the appliance management API.
package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/httpclient"
)

// GeneralTenantID is the appliance's built-in all-zeros tenant. Some
// resource endpoints are not available in its context.
const GeneralTenantID = "00000000-0000-0000-0000-000000000000"

// Tenant is one isolated customer context within the managed appliance.
// Extra fields the appliance returns are ignored.
type Tenant struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Label returns the best human-readable identifier for the tenant.
func (t Tenant) Label() string {
	if t.Name != "" {
		return t.Name
	}
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.ID
}

// Slug returns a filesystem-safe form of the tenant label.
func (t Tenant) Slug() string {
	return Slugify(t.Label())
}

// tenantItems is the enveloped shape of the tenants listing.
type tenantItems struct {
	Items []Tenant `json:"items"`
}

// List fetches the tenants visible to the current account. The appliance
// returns either a bare list or an {items: [...]} envelope depending on
// version; both shapes are accepted.
func List(ctx context.Context, client *httpclient.Client) ([]Tenant, error) {
	var raw json.RawMessage
	if err := client.GetJSON(ctx, config.EndpointTenants, "", &raw); err != nil {
		return nil, fmt.Errorf("fetch tenants: %w", err)
	}

	list, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	client.Logger().Info("Fetched tenants", zap.Int("count", len(list)))
	return list, nil
}

func normalize(raw json.RawMessage) ([]Tenant, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []Tenant
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("unsupported tenants response format: %w", err)
		}
		return list, nil
	}

	var envelope tenantItems
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unsupported tenants response format: %w", err)
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf("unsupported tenants response format: missing items")
	}
	return envelope.Items, nil
}

// Filter applies the configured only/skip name filters. Matching is
// case-insensitive against the tenant label. An empty only-list admits all
// tenants not skipped.
func Filter(list []Tenant, only, skip []string) []Tenant {
	if len(only) == 0 && len(skip) == 0 {
		return list
	}

	contains := func(names []string, label string) bool {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(name), label) {
				return true
			}
		}
		return false
	}

	var out []Tenant
	for _, tenant := range list {
		label := tenant.Label()
		if contains(skip, label) {
			continue
		}
		if len(only) > 0 && !contains(only, label) {
			continue
		}
		out = append(out, tenant)
	}
	return out
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9._-]+`)
	slugCollapse = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases a label and reduces it to filesystem-safe characters.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugInvalid.ReplaceAllString(value, "-")
	value = slugCollapse.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	if value == "" {
		return "tenant"
	}
	return value
}
