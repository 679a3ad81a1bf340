package report

import (
	"github.com/tinylib/msgp/msgp"

	"github.com/synqronlabs/mailhealth"
)

// MessagePack encoding of Document. Keys match the JSON field names so both
// formats describe the same document.

var (
	_ msgp.Marshaler   = Document{}
	_ msgp.Unmarshaler = (*Document)(nil)
)

// AppendMsgpack appends the MessagePack encoding of r to b.
func AppendMsgpack(b []byte, r *mailhealth.Report) ([]byte, error) {
	return NewDocument(r).MarshalMsg(b)
}

// MarshalMsg implements msgp.Marshaler.
func (d Document) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, d.Msgsize())

	o = msgp.AppendMapHeader(o, 7)
	o = msgp.AppendString(o, "domain")
	o = msgp.AppendString(o, d.Domain)
	o = msgp.AppendString(o, "organizational_domain")
	o = msgp.AppendString(o, d.OrganizationalDomain)
	o = msgp.AppendString(o, "mail_provider")
	o = msgp.AppendString(o, d.MailProvider)

	// spf
	o = msgp.AppendString(o, "spf")
	o = msgp.AppendMapHeader(o, 5)
	o = msgp.AppendString(o, "status")
	o = msgp.AppendString(o, d.SPF.Status)
	o = msgp.AppendString(o, "summary")
	o = msgp.AppendString(o, d.SPF.Summary)
	o = msgp.AppendString(o, "records")
	o = appendStrings(o, d.SPF.Records)
	o = msgp.AppendString(o, "trusted_senders")
	o = appendStrings(o, d.SPF.TrustedSenders)
	o = msgp.AppendString(o, "ignored_records")
	o = msgp.AppendInt(o, d.SPF.Ignored)

	// dmarc
	o = msgp.AppendString(o, "dmarc")
	o = msgp.AppendMapHeader(o, 6)
	o = msgp.AppendString(o, "status")
	o = msgp.AppendString(o, d.DMARC.Status)
	o = msgp.AppendString(o, "summary")
	o = msgp.AppendString(o, d.DMARC.Summary)
	o = msgp.AppendString(o, "policy")
	o = msgp.AppendString(o, d.DMARC.Policy)
	o = msgp.AppendString(o, "records")
	o = appendStrings(o, d.DMARC.Records)
	o = msgp.AppendString(o, "tags")
	o = appendStrings(o, d.DMARC.Tags)
	o = msgp.AppendString(o, "ignored_records")
	o = msgp.AppendInt(o, d.DMARC.Ignored)

	// dkim
	o = msgp.AppendString(o, "dkim")
	o = msgp.AppendMapHeader(o, 2)
	o = msgp.AppendString(o, "summary")
	o = msgp.AppendString(o, d.DKIM.Summary)
	o = msgp.AppendString(o, "selectors")
	o = msgp.AppendArrayHeader(o, uint32(len(d.DKIM.Selectors)))
	for _, s := range d.DKIM.Selectors {
		o = msgp.AppendMapHeader(o, 3)
		o = msgp.AppendString(o, "selector")
		o = msgp.AppendString(o, s.Selector)
		o = msgp.AppendString(o, "record")
		o = msgp.AppendString(o, s.Record)
		o = msgp.AppendString(o, "display")
		o = msgp.AppendString(o, s.Display)
	}

	// health
	o = msgp.AppendString(o, "health")
	o = msgp.AppendMapHeader(o, 6)
	o = msgp.AppendString(o, "score")
	o = msgp.AppendInt(o, d.Health.Score)
	o = msgp.AppendString(o, "max_score")
	o = msgp.AppendInt(o, d.Health.MaxScore)
	o = msgp.AppendString(o, "percent")
	o = msgp.AppendFloat64(o, d.Health.Percent)
	o = msgp.AppendString(o, "grade")
	o = msgp.AppendString(o, d.Health.Grade)
	o = msgp.AppendString(o, "breakdown")
	o = msgp.AppendArrayHeader(o, uint32(len(d.Health.Breakdown)))
	for _, c := range d.Health.Breakdown {
		o = msgp.AppendMapHeader(o, 3)
		o = msgp.AppendString(o, "name")
		o = msgp.AppendString(o, c.Name)
		o = msgp.AppendString(o, "points")
		o = msgp.AppendInt(o, c.Points)
		o = msgp.AppendString(o, "weight")
		o = msgp.AppendInt(o, c.Weight)
	}
	o = msgp.AppendString(o, "suggestions")
	o = appendStrings(o, d.Health.Suggestions)

	return o, nil
}

// Msgsize returns an upper bound estimate of the encoded size.
func (d Document) Msgsize() int {
	s := msgp.MapHeaderSize*5 + 128 +
		msgp.StringPrefixSize*3 + len(d.Domain) + len(d.OrganizationalDomain) + len(d.MailProvider) +
		msgp.StringPrefixSize*4 + len(d.SPF.Status) + len(d.SPF.Summary) + len(d.DMARC.Summary) + len(d.DMARC.Policy) +
		len(d.DKIM.Summary) + len(d.Health.Grade) + msgp.Float64Size + msgp.IntSize*5 +
		stringsSize(d.SPF.Records) + stringsSize(d.SPF.TrustedSenders) +
		stringsSize(d.DMARC.Records) + stringsSize(d.DMARC.Tags) +
		stringsSize(d.Health.Suggestions)
	for _, sel := range d.DKIM.Selectors {
		s += msgp.MapHeaderSize + 32 + msgp.StringPrefixSize*3 + len(sel.Selector) + len(sel.Record) + len(sel.Display)
	}
	s += len(d.Health.Breakdown) * (msgp.MapHeaderSize + 24 + msgp.StringPrefixSize + 8 + msgp.IntSize*2)
	return s
}

func appendStrings(o []byte, list []string) []byte {
	o = msgp.AppendArrayHeader(o, uint32(len(list)))
	for _, s := range list {
		o = msgp.AppendString(o, s)
	}
	return o
}

func stringsSize(list []string) int {
	s := msgp.ArrayHeaderSize
	for _, v := range list {
		s += msgp.StringPrefixSize + len(v)
	}
	return s
}

// UnmarshalMsg implements msgp.Unmarshaler. Unknown keys are skipped.
func (d *Document) UnmarshalMsg(bts []byte) (o []byte, err error) {
	err = readMap(&bts, func(key string, b *[]byte) (err error) {
		switch key {
		case "domain":
			d.Domain, *b, err = msgp.ReadStringBytes(*b)
		case "organizational_domain":
			d.OrganizationalDomain, *b, err = msgp.ReadStringBytes(*b)
		case "mail_provider":
			d.MailProvider, *b, err = msgp.ReadStringBytes(*b)
		case "spf":
			err = d.SPF.unmarshal(b)
		case "dmarc":
			err = d.DMARC.unmarshal(b)
		case "dkim":
			err = d.DKIM.unmarshal(b)
		case "health":
			err = d.Health.unmarshal(b)
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
	return bts, err
}

func (s *SPFSection) unmarshal(b *[]byte) error {
	return readMap(b, func(key string, b *[]byte) (err error) {
		switch key {
		case "status":
			s.Status, *b, err = msgp.ReadStringBytes(*b)
		case "summary":
			s.Summary, *b, err = msgp.ReadStringBytes(*b)
		case "records":
			s.Records, err = readStrings(b)
		case "trusted_senders":
			s.TrustedSenders, err = readStrings(b)
		case "ignored_records":
			s.Ignored, *b, err = msgp.ReadIntBytes(*b)
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
}

func (s *DMARCSection) unmarshal(b *[]byte) error {
	return readMap(b, func(key string, b *[]byte) (err error) {
		switch key {
		case "status":
			s.Status, *b, err = msgp.ReadStringBytes(*b)
		case "summary":
			s.Summary, *b, err = msgp.ReadStringBytes(*b)
		case "policy":
			s.Policy, *b, err = msgp.ReadStringBytes(*b)
		case "records":
			s.Records, err = readStrings(b)
		case "tags":
			s.Tags, err = readStrings(b)
		case "ignored_records":
			s.Ignored, *b, err = msgp.ReadIntBytes(*b)
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
}

func (s *DKIMSection) unmarshal(b *[]byte) error {
	return readMap(b, func(key string, b *[]byte) (err error) {
		switch key {
		case "summary":
			s.Summary, *b, err = msgp.ReadStringBytes(*b)
		case "selectors":
			var n uint32
			if n, err = readArrayHeader(b); err != nil {
				break
			}
			s.Selectors = make([]SelectorSection, n)
			for i := range s.Selectors {
				if err = s.Selectors[i].unmarshal(b); err != nil {
					break
				}
			}
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
}

func (s *SelectorSection) unmarshal(b *[]byte) error {
	return readMap(b, func(key string, b *[]byte) (err error) {
		switch key {
		case "selector":
			s.Selector, *b, err = msgp.ReadStringBytes(*b)
		case "record":
			s.Record, *b, err = msgp.ReadStringBytes(*b)
		case "display":
			s.Display, *b, err = msgp.ReadStringBytes(*b)
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
}

func (s *HealthSection) unmarshal(b *[]byte) error {
	return readMap(b, func(key string, b *[]byte) (err error) {
		switch key {
		case "score":
			s.Score, *b, err = msgp.ReadIntBytes(*b)
		case "max_score":
			s.MaxScore, *b, err = msgp.ReadIntBytes(*b)
		case "percent":
			s.Percent, *b, err = msgp.ReadFloat64Bytes(*b)
		case "grade":
			s.Grade, *b, err = msgp.ReadStringBytes(*b)
		case "breakdown":
			var n uint32
			if n, err = readArrayHeader(b); err != nil {
				break
			}
			s.Breakdown = make([]CategorySection, n)
			for i := range s.Breakdown {
				if err = s.Breakdown[i].unmarshal(b); err != nil {
					break
				}
			}
		case "suggestions":
			s.Suggestions, err = readStrings(b)
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
}

func (c *CategorySection) unmarshal(b *[]byte) error {
	return readMap(b, func(key string, b *[]byte) (err error) {
		switch key {
		case "name":
			c.Name, *b, err = msgp.ReadStringBytes(*b)
		case "points":
			c.Points, *b, err = msgp.ReadIntBytes(*b)
		case "weight":
			c.Weight, *b, err = msgp.ReadIntBytes(*b)
		default:
			*b, err = msgp.Skip(*b)
		}
		return wrapField(err, key)
	})
}

func wrapField(err error, key string) error {
	if err == nil {
		return nil
	}
	return msgp.WrapError(err, key)
}

// readMap reads a map header from *b and calls field for every key.
// field must consume the value.
func readMap(b *[]byte, field func(key string, b *[]byte) error) error {
	n, rest, err := msgp.ReadMapHeaderBytes(*b)
	if err != nil {
		return err
	}
	*b = rest
	for ; n > 0; n-- {
		var key string
		key, *b, err = msgp.ReadStringBytes(*b)
		if err != nil {
			return err
		}
		if err := field(key, b); err != nil {
			return err
		}
	}
	return nil
}

// readArrayHeader reads an array header from *b. Every element takes at least
// one byte, so a length beyond the remaining input is rejected before the
// caller allocates for it.
func readArrayHeader(b *[]byte) (uint32, error) {
	n, rest, err := msgp.ReadArrayHeaderBytes(*b)
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(len(rest)) {
		return 0, msgp.ErrShortBytes
	}
	*b = rest
	return n, nil
}

func readStrings(b *[]byte) ([]string, error) {
	n, err := readArrayHeader(b)
	if err != nil {
		return nil, err
	}
	list := make([]string, n)
	for i := range list {
		list[i], *b, err = msgp.ReadStringBytes(*b)
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}
