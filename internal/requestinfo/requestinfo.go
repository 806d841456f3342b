//
//  internal/requestinfo/requestinfo.go
//
//  Caller description for the diagnostics panel: user-agent fingerprint,
//  addresses, and best-effort geolocation.  These structs are inert and
//  safe to JSON-encode.
//
//  Nothing here decides access.  The debug-mode gate uses the raw remote
//  address only (see internal/debugmode); the forwarded chain shown here
//  is informational.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup)
//

package requestinfo

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string `json:"raw"`
	Browser     string `json:"browser"`
	Version     string `json:"version"`
	OS          string `json:"os"`
	Device      string `json:"device"`
	IsBot       bool   `json:"is_bot"`
	PrimaryLang string `json:"primary_lang"`
}

// Geo holds IP-based geolocation hints, empty when no DB is loaded.
type Geo struct {
	CountryISO string `json:"country_iso,omitempty"`
	City       string `json:"city,omitempty"`
}

// Caller describes who made a request.
type Caller struct {
	RemoteIP     string `json:"remote_ip"`
	ForwardedFor string `json:"forwarded_for,omitempty"`
	UA           UA     `json:"ua"`
	Geo          Geo    `json:"geo"`
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

var (
	geoMu     sync.RWMutex
	geoReader *geoip2.Reader
)

// InitGeo opens a GeoLite2-City database.  Lookups stay empty until it
// succeeds.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoMu.Lock()
	geoReader = r
	geoMu.Unlock()
	return nil
}

// Describe builds a Caller from r.
func Describe(r *http.Request) Caller {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return Caller{
		RemoteIP:     host,
		ForwardedFor: strings.TrimSpace(r.Header.Get("X-Forwarded-For")),
		UA:           parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
		Geo:          lookupGeo(net.ParseIP(host)),
	}
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader, acceptLang string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Raw:         uaHeader,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     trimVersion(u.Browser.Version),
		OS:          osName,
		Device:      deviceTypeToString(u.DeviceType),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}
}

// trimVersion builds "major.minor.patch" and removes trailing ".0".
func trimVersion(v uasurfer.Version) string {
	out := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	for strings.HasSuffix(out, ".0") {
		out = strings.TrimSuffix(out, ".0")
	}
	return out
}

// deviceTypeToString maps uasurfer.DeviceType to a display string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	geoMu.RLock()
	r := geoReader
	geoMu.RUnlock()
	if r == nil || ip == nil {
		return Geo{}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{}
	}
	return Geo{
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
