package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasTag(t *testing.T) {
	r := Resource{
		ID:   "/subscriptions/s/resourceGroups/rg-app1-dev/providers/x/vm1",
		Name: "vm1",
		Tags: map[string]string{"Environment": "staging"},
	}

	// Presence matters, value does not
	assert.True(t, r.HasTag("Environment"))
	assert.False(t, r.HasTag("Owner"))
}

func TestHasTag_NilTags(t *testing.T) {
	r := Resource{ID: "x", Name: "x"}
	assert.False(t, r.HasTag("Environment"))
}

func TestSecurityRule_IsInboundAllow(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		access    string
		want      bool
	}{
		{"inbound allow", "Inbound", "Allow", true},
		{"case insensitive", "inbound", "allow", true},
		{"inbound deny", "Inbound", "Deny", false},
		{"outbound allow", "Outbound", "Allow", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := SecurityRule{Direction: tt.direction, Access: tt.access}
			assert.Equal(t, tt.want, sr.IsInboundAllow())
		})
	}
}

func TestSecurityRule_Ports(t *testing.T) {
	tests := []struct {
		name  string
		ports string
		want  []string
	}{
		{"single port", "22", []string{"22"}},
		{"multiple ports", "80,443", []string{"80", "443"}},
		{"spaces trimmed", "80, 443, 8080", []string{"80", "443", "8080"}},
		{"wildcard", "*", []string{"*"}},
		{"empty entries dropped", "22,,3389", []string{"22", "3389"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := SecurityRule{PortRange: tt.ports}
			assert.Equal(t, tt.want, sr.Ports())
		})
	}
}

func TestRecordSet_Key(t *testing.T) {
	rs := RecordSet{Name: "www", Type: "A"}
	assert.Equal(t, "www/A", rs.Key())
}
