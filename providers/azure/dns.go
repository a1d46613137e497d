package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"

	"github.com/wakethelight/driftaudit/types"
)

// ListRecordSets enumerates the record sets in a zone. Only record types
// the replication check understands are returned; SOA/NS and anything
// else is zone infrastructure and skipped.
func (p *Provider) ListRecordSets(ctx context.Context, zone string) ([]types.RecordSet, error) {
	var records []types.RecordSet

	pager := p.recordsClient.NewListByDNSZonePager(p.config.DNSResourceGroup, zone, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list record sets in zone %s: %w", zone, err)
		}

		for _, rs := range page.Value {
			if rs == nil || rs.Properties == nil {
				continue
			}
			record, ok := fromSDKRecordSet(zone, rs)
			if !ok {
				continue
			}
			records = append(records, record)
		}
	}

	return records, nil
}

// CreateRecordSet creates a record set in its zone. Used to mirror a
// missing record into the secondary zone; never called for records that
// already exist there.
func (p *Provider) CreateRecordSet(ctx context.Context, record types.RecordSet) error {
	recordType, params, err := toSDKRecordSet(record)
	if err != nil {
		return err
	}

	_, err = p.recordsClient.CreateOrUpdate(ctx, p.config.DNSResourceGroup, record.Zone, record.Name, recordType, params, nil)
	if err != nil {
		return fmt.Errorf("failed to create record %s %s in zone %s: %w", record.Name, record.Type, record.Zone, err)
	}
	return nil
}

func fromSDKRecordSet(zone string, rs *armdns.RecordSet) (types.RecordSet, bool) {
	// SDK type is "Microsoft.Network/dnszones/<TYPE>"
	fullType := deref(rs.Type)
	recordType := fullType[strings.LastIndex(fullType, "/")+1:]

	record := types.RecordSet{
		Zone: zone,
		Name: deref(rs.Name),
		Type: recordType,
	}
	if rs.Properties.TTL != nil {
		record.TTL = *rs.Properties.TTL
	}

	switch recordType {
	case "A":
		for _, r := range rs.Properties.ARecords {
			record.Values = append(record.Values, deref(r.IPv4Address))
		}
	case "AAAA":
		for _, r := range rs.Properties.AaaaRecords {
			record.Values = append(record.Values, deref(r.IPv6Address))
		}
	case "CNAME":
		if rs.Properties.CnameRecord != nil {
			record.Values = append(record.Values, deref(rs.Properties.CnameRecord.Cname))
		}
	case "TXT":
		for _, r := range rs.Properties.TxtRecords {
			for _, v := range r.Value {
				record.Values = append(record.Values, deref(v))
			}
		}
	default:
		return types.RecordSet{}, false
	}

	return record, true
}

func toSDKRecordSet(record types.RecordSet) (armdns.RecordType, armdns.RecordSet, error) {
	props := &armdns.RecordSetProperties{TTL: to.Ptr(record.TTL)}

	var recordType armdns.RecordType
	switch record.Type {
	case "A":
		recordType = armdns.RecordTypeA
		for _, v := range record.Values {
			props.ARecords = append(props.ARecords, &armdns.ARecord{IPv4Address: to.Ptr(v)})
		}
	case "AAAA":
		recordType = armdns.RecordTypeAAAA
		for _, v := range record.Values {
			props.AaaaRecords = append(props.AaaaRecords, &armdns.AaaaRecord{IPv6Address: to.Ptr(v)})
		}
	case "CNAME":
		recordType = armdns.RecordTypeCNAME
		if len(record.Values) > 0 {
			props.CnameRecord = &armdns.CnameRecord{Cname: to.Ptr(record.Values[0])}
		}
	case "TXT":
		recordType = armdns.RecordTypeTXT
		for _, v := range record.Values {
			props.TxtRecords = append(props.TxtRecords, &armdns.TxtRecord{Value: []*string{to.Ptr(v)}})
		}
	default:
		return "", armdns.RecordSet{}, fmt.Errorf("unsupported record type %s", record.Type)
	}

	return recordType, armdns.RecordSet{Properties: props}, nil
}
