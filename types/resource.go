package types

import (
	"strings"
	"time"
)

// Resource is a cloud resource under compliance evaluation.
type Resource struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	ResourceGroup string            `json:"resource_group"`
	Location      string            `json:"location"`
	Tags          map[string]string `json:"tags"`
}

// HasTag reports whether the tag key is present, regardless of value.
// The engine only ever adds missing keys, it never corrects values.
func (r *Resource) HasTag(key string) bool {
	_, ok := r.Tags[key]
	return ok
}

// SecurityGroup is a network security group with its rules.
type SecurityGroup struct {
	Name          string         `json:"name"`
	ResourceGroup string         `json:"resource_group"`
	Location      string         `json:"location"`
	Rules         []SecurityRule `json:"rules"`
}

// SecurityRule is a single NSG rule.
type SecurityRule struct {
	Name              string `json:"name"`
	Priority          int32  `json:"priority"`
	Direction         string `json:"direction"` // Inbound or Outbound
	Access            string `json:"access"`    // Allow or Deny
	Protocol          string `json:"protocol"`
	SourcePrefix      string `json:"source_prefix"`
	DestinationPrefix string `json:"destination_prefix"`
	PortRange         string `json:"port_range"` // single port, "*", or comma-separated list
}

// IsInboundAllow reports whether the rule is in scope for evaluation.
// Everything else is skipped without a finding.
func (sr *SecurityRule) IsInboundAllow() bool {
	return strings.EqualFold(sr.Direction, "Inbound") && strings.EqualFold(sr.Access, "Allow")
}

// Ports splits the destination port range into individual entries.
// Each entry is evaluated independently.
func (sr *SecurityRule) Ports() []string {
	parts := strings.Split(sr.PortRange, ",")
	ports := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			ports = append(ports, p)
		}
	}
	return ports
}

// RecordSet is a DNS record set in a zone.
type RecordSet struct {
	Zone   string   `json:"zone"`
	Name   string   `json:"name"`
	Type   string   `json:"type"` // A, AAAA, CNAME, TXT, MX
	TTL    int64    `json:"ttl"`
	Values []string `json:"values"`
}

// Key identifies a record set within a zone (name + type).
func (rs *RecordSet) Key() string {
	return rs.Name + "/" + rs.Type
}

// AppCredential is a service-principal password credential.
type AppCredential struct {
	AppID       string    `json:"app_id"`
	AppName     string    `json:"app_name"`
	KeyID       string    `json:"key_id"`
	DisplayName string    `json:"display_name,omitempty"`
	EndDate     time.Time `json:"end_date"`
}
