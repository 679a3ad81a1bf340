package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/synqronlabs/mailhealth"
	"github.com/synqronlabs/mailhealth/dns"
	"github.com/synqronlabs/mailhealth/score"
)

func checkReport(t *testing.T, resolver dns.Resolver) *mailhealth.Report {
	t.Helper()
	r, err := mailhealth.Check(context.Background(), "example.com",
		mailhealth.WithResolver(resolver),
		mailhealth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return r
}

func emptyReport(t *testing.T) *mailhealth.Report {
	return checkReport(t, dns.MockResolver{})
}

func fullReport(t *testing.T) *mailhealth.Report {
	return checkReport(t, dns.MockResolver{
		TXT: map[string][]string{
			"example.com.":                   {"v=spf1 ip4:192.0.2.0/24 include:_spf.google.com -all"},
			"_dmarc.example.com.":            {"v=DMARC1; p=reject; rua=mailto:dmarc@example.com"},
			"google._domainkey.example.com.": {"v=DKIM1; k=rsa; p=MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA"},
		},
		MX: map[string][]*net.MX{
			"example.com.": {{Host: "aspmx.l.google.com.", Pref: 1}},
		},
	})
}

func TestWriteTableNothingPublished(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, emptyReport(t), false))

	want := strings.Join([]string{
		"Domain Health Check  example.com",
		"Mail Provider        No MX records found",
		"SPF Check            No SPF records found",
		"DMARC Check          No DMARC record found",
		"DKIM Check           No DKIM records found for common selectors",
		"SPF Trusted Senders  None",
		"DMARC Tags           None",
		"DKIM Records         None",
		"Health Score         0/100 (0%)",
		"  SPF                0/33",
		"  DMARC              0/34",
		"  DKIM               0/33",
		"Suggestions          " + score.SuggestSPFImplement,
		"                     " + score.SuggestDMARCImplement,
		"                     " + score.SuggestDKIMSetup,
	}, "\n") + "\n"

	assert.Equal(t, want, buf.String())
}

func TestWriteTableFullMarks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, fullReport(t), false))
	out := buf.String()

	assert.Contains(t, out, "Mail Provider        Google\n")
	assert.Contains(t, out, "SPF Trusted Senders  ip4:192.0.2.0/24\n                     include:_spf.google.com\n                     -all\n")
	assert.Contains(t, out, "DMARC Tags           v=DMARC1\n                     p=reject\n")
	assert.Contains(t, out, "DKIM Records         google: v=DKIM1; k=rsa; p=MIIBIjAN...CgKCAQEA\n")
	assert.Contains(t, out, "Health Score         100/100 (100%)\n")
	assert.Contains(t, out, "Suggestions          None\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteTableColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, fullReport(t), true))
	out := buf.String()

	assert.Contains(t, out, "\x1b[32mValid SPF records\x1b[0m")
	assert.Contains(t, out, "\x1b[32m100/100 (100%)\x1b[0m")
	assert.NotContains(t, out, "[green]")

	buf.Reset()
	require.NoError(t, WriteTable(&buf, emptyReport(t), true))
	assert.Contains(t, buf.String(), "\x1b[31mNo SPF records found\x1b[0m")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, emptyReport(t)))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "example.com", doc["domain"])
	assert.Equal(t, "No MX records found", doc["mail_provider"])

	spfSection := doc["spf"].(map[string]any)
	assert.Equal(t, "absent", spfSection["status"])
	assert.Equal(t, []any{}, spfSection["trusted_senders"])

	health := doc["health"].(map[string]any)
	assert.EqualValues(t, 0, health["score"])
	assert.EqualValues(t, 100, health["max_score"])
	assert.Equal(t, "poor", health["grade"])
	assert.Len(t, health["suggestions"], 3)
	assert.Len(t, health["breakdown"], 3)
}

func TestWriteJSONMatchesDocument(t *testing.T) {
	r := fullReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var got Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, NewDocument(r), got)
	assert.Equal(t, "reject", got.DMARC.Policy)
	require.Len(t, got.DKIM.Selectors, 1)
	assert.Equal(t, "google", got.DKIM.Selectors[0].Selector)
}

func TestMsgpackRoundTrip(t *testing.T) {
	for name, r := range map[string]*mailhealth.Report{
		"empty": emptyReport(t),
		"full":  fullReport(t),
	} {
		t.Run(name, func(t *testing.T) {
			b, err := AppendMsgpack(nil, r)
			require.NoError(t, err)

			var got Document
			rest, err := got.UnmarshalMsg(b)
			require.NoError(t, err)
			assert.Empty(t, rest)
			assert.Equal(t, NewDocument(r), got)
		})
	}
}

func TestMsgpackTruncated(t *testing.T) {
	b, err := AppendMsgpack(nil, fullReport(t))
	require.NoError(t, err)

	var got Document
	_, err = got.UnmarshalMsg(b[:len(b)/2])
	assert.Error(t, err)
}

func TestMsgpackOversizedArray(t *testing.T) {
	oversized := func(section, field string) []byte {
		b := msgp.AppendMapHeader(nil, 1)
		b = msgp.AppendString(b, section)
		b = msgp.AppendMapHeader(b, 1)
		b = msgp.AppendString(b, field)
		return msgp.AppendArrayHeader(b, math.MaxUint32)
	}

	tests := []struct{ section, field string }{
		{"spf", "records"},
		{"dmarc", "tags"},
		{"dkim", "selectors"},
		{"health", "breakdown"},
		{"health", "suggestions"},
	}

	for _, tt := range tests {
		t.Run(tt.section+"/"+tt.field, func(t *testing.T) {
			var got Document
			_, err := got.UnmarshalMsg(oversized(tt.section, tt.field))
			assert.ErrorIs(t, err, msgp.ErrShortBytes)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" JSON ", FormatJSON, false},
		{"msgpack", FormatMsgpack, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWrite(t *testing.T) {
	r := emptyReport(t)

	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, r, f, Options{}), "format %s", f)
		assert.NotZero(t, buf.Len(), "format %s", f)
	}

	assert.ErrorIs(t, Write(io.Discard, r, Format("xml"), Options{}), ErrUnknownFormat)
}
