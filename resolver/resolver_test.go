package resolver

import (
	"context"
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startFakeESNIServer runs an in-process UDP DNS server that answers any
// TXT query for `_esni.<domain>` with the base64 encoding of payload, and
// fails (no answer) for anything else. Returns the "host:port" address; the
// server is shut down via t.Cleanup.
func startFakeESNIServer(t *testing.T, domain string, payload []byte) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString(payload)
	want := dns.Fqdn(esniLabelPrefix + domain)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		msg := new(dns.Msg)
		msg.SetReply(r)

		if len(r.Question) == 1 && r.Question[0].Name == want && r.Question[0].Qtype == dns.TypeTXT {
			msg.Answer = append(msg.Answer, &dns.TXT{
				Hdr: dns.RR_Header{Name: want, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 60},
				Txt: []string{encoded},
			})
		}

		_ = w.WriteMsg(msg)
	})

	srv := &dns.Server{PacketConn: pc, Handler: mux}
	go srv.ActivateAndServe()
	t.Cleanup(func() {
		srv.Shutdown()
	})

	return pc.LocalAddr().String()
}

func TestFetchESNIKeys(t *testing.T) {
	t.Parallel()

	payload := []byte{0x01, 0x02, 0x03, 0x04}
	addr := startFakeESNIServer(t, "example.com", payload)

	r := New(Config{Servers: []string{addr}, Timeout: 2 * time.Second})

	got, err := r.FetchESNIKeys(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %x, want %x", got, payload)
	}
}

func TestFetchESNIKeysCached(t *testing.T) {
	t.Parallel()

	payload := []byte{0xaa, 0xbb}
	addr := startFakeESNIServer(t, "example.org", payload)

	r := New(Config{Servers: []string{addr}, Timeout: 2 * time.Second, CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		got, err := r.FetchESNIKeys(context.Background(), "example.org")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if string(got) != string(payload) {
			t.Fatalf("fetch %d: got %x, want %x", i, got, payload)
		}
	}

	if len(r.cache) != 1 {
		t.Fatalf("cache has %d entries, want 1", len(r.cache))
	}
}

func TestFetchESNIKeysNoAnswer(t *testing.T) {
	t.Parallel()

	addr := startFakeESNIServer(t, "example.net", []byte{0x01})

	r := New(Config{Servers: []string{addr}, Timeout: 2 * time.Second})

	if _, err := r.FetchESNIKeys(context.Background(), "other-domain.net"); err == nil {
		t.Fatal("expected an error for a domain with no TXT answer")
	}
}
