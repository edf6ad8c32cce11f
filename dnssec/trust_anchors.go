package dnssec

import (
	"fmt"
	"io"

	"github.com/miekg/dns"
)

func trustAnchorsFromDS(records []*dns.DS) []DsData {
	anchors := make([]DsData, 0, len(records))
	for _, ds := range records {
		d, err := DsDataFromRR(ds)
		if err != nil {
			Warn(fmt.Sprintf("skipping root trust anchor %d: %s", ds.KeyTag, err))
			continue
		}
		anchors = append(anchors, d)
	}
	return anchors
}

// ParseTrustAnchors reads root DS records in zone file presentation format.
func ParseTrustAnchors(r io.Reader) ([]DsData, error) {
	zp := dns.NewZoneParser(r, rootName, "")

	anchors := make([]DsData, 0)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		ds, isDS := rr.(*dns.DS)
		if !isDS || ds.Hdr.Name != rootName {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedTrustAnchor, rr.String())
		}
		d, err := DsDataFromRR(ds)
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, d)
	}
	if err := zp.Err(); err != nil {
		return nil, err
	}
	return anchors, nil
}
