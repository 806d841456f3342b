package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDescribe(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:4433"
	req.Header.Set("X-Forwarded-For", " 203.0.113.9, 10.0.0.1 ")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept-Language", "en-GB;q=0.9, fr")

	c := Describe(req)
	if c.RemoteIP != "::1" {
		t.Fatalf("remote ip = %q", c.RemoteIP)
	}
	if c.ForwardedFor != "203.0.113.9, 10.0.0.1" {
		t.Fatalf("forwarded = %q", c.ForwardedFor)
	}
	if c.UA.PrimaryLang != "en-gb" {
		t.Fatalf("lang = %q", c.UA.PrimaryLang)
	}
	if c.UA.Browser != "Safari" || c.UA.OS != "macOS" {
		t.Fatalf("ua = %+v", c.UA)
	}
	if c.Geo != (Geo{}) {
		t.Fatalf("geo without a DB should be empty: %+v", c.Geo)
	}
}

func TestPrimaryLang(t *testing.T) {
	for in, want := range map[string]string{
		"":                  "",
		"DE":                "de",
		"fr-CA;q=0.8, en":   "fr-ca",
		" es , en;q=0.5":    "es",
	} {
		if got := primaryLang(in); got != want {
			t.Errorf("primaryLang(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitGeo_MissingFile(t *testing.T) {
	if err := InitGeo(t.TempDir() + "/missing.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}
