// Package setting holds the user configurable options of the tunnel client and turns them into the command line
// of the iodine binary.
package setting

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"golang.org/x/exp/slices"
	"howett.net/plist"
)

// RecordTypes are the DNS request types iodine can use for the upstream.
var RecordTypes = []string{"NULL", "PRIVATE", "TXT", "SRV", "MX", "CNAME", "A"}

// Encodings are the downstream encodings iodine can be forced to use.
var Encodings = []string{"Base32", "Base64", "Base64u", "Base128", "Raw"}

var topDomainPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)+$`)

// Setting describes one tunnel configuration. Zero values mean "let iodine decide".
type Setting struct {
	// TopDomain is the domain delegated to the iodine server.
	TopDomain string `plist:"TopDomain"`
	Password  string `plist:"Password,omitempty"`
	// Nameserver to send the DNS queries to. Empty means the system resolver.
	Nameserver string `plist:"Nameserver,omitempty"`
	// DisableRaw skips the attempt to talk to the server directly over UDP.
	DisableRaw bool `plist:"DisableRaw"`
	// DisableLazyMode makes iodine send a query for every packet.
	DisableLazyMode bool `plist:"DisableLazyMode"`
	// MaxDownstreamFragment limits the downstream fragment size, 0 probes for the best size.
	MaxDownstreamFragment int `plist:"MaxDownstreamFragment,omitempty"`
	// MaxHostnameLength limits the length of the upstream hostnames, 0 uses the default of 255.
	MaxHostnameLength  int    `plist:"MaxHostnameLength,omitempty"`
	RecordType         string `plist:"RecordType,omitempty"`
	DownstreamEncoding string `plist:"DownstreamEncoding,omitempty"`
	// SelectInterval is the maximum interval between requests in seconds, 0 uses the default.
	SelectInterval int `plist:"SelectInterval,omitempty"`
	// Device is the name of the tun device to use.
	Device string `plist:"Device,omitempty"`
}

// Validate checks the setting before it is handed to the tunnel binary.
func (s Setting) Validate() error {
	if s.TopDomain == "" {
		return errors.New("Validate: top domain is missing")
	}
	if len(s.TopDomain) > 128 || !topDomainPattern.MatchString(s.TopDomain) {
		return fmt.Errorf("Validate: invalid top domain '%s'", s.TopDomain)
	}
	if s.MaxDownstreamFragment < 0 || s.MaxDownstreamFragment > 65535 {
		return fmt.Errorf("Validate: max downstream fragment size %d out of range", s.MaxDownstreamFragment)
	}
	if s.MaxHostnameLength != 0 && (s.MaxHostnameLength < 100 || s.MaxHostnameLength > 255) {
		return fmt.Errorf("Validate: max hostname length %d must be between 100 and 255", s.MaxHostnameLength)
	}
	if s.RecordType != "" && !slices.Contains(RecordTypes, s.RecordType) {
		return fmt.Errorf("Validate: unknown DNS record type '%s'", s.RecordType)
	}
	if s.DownstreamEncoding != "" && !slices.Contains(Encodings, s.DownstreamEncoding) {
		return fmt.Errorf("Validate: unknown downstream encoding '%s'", s.DownstreamEncoding)
	}
	if s.SelectInterval < 0 {
		return fmt.Errorf("Validate: negative select interval %d", s.SelectInterval)
	}
	return nil
}

// CommandArray returns the iodine arguments for this setting, without the binary itself. iodine always runs in
// the foreground so its output can be supervised.
func (s Setting) CommandArray() []string {
	args := []string{"-f"}
	if s.DisableRaw {
		args = append(args, "-r")
	}
	if s.DisableLazyMode {
		args = append(args, "-L0")
	}
	if s.Password != "" {
		args = append(args, "-P", s.Password)
	}
	if s.MaxDownstreamFragment > 0 {
		args = append(args, "-m", strconv.Itoa(s.MaxDownstreamFragment))
	}
	if s.MaxHostnameLength > 0 {
		args = append(args, "-M", strconv.Itoa(s.MaxHostnameLength))
	}
	if s.RecordType != "" {
		args = append(args, "-T", s.RecordType)
	}
	if s.DownstreamEncoding != "" {
		args = append(args, "-O", s.DownstreamEncoding)
	}
	if s.SelectInterval > 0 {
		args = append(args, "-I", strconv.Itoa(s.SelectInterval))
	}
	if s.Device != "" {
		args = append(args, "-d", s.Device)
	}
	if s.Nameserver != "" {
		args = append(args, s.Nameserver)
	}
	return append(args, s.TopDomain)
}

// Load reads a setting from a plist file.
func Load(path string) (Setting, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Setting{}, fmt.Errorf("Load: failed reading '%s': %w", path, err)
	}
	var s Setting
	if _, err := plist.Unmarshal(b, &s); err != nil {
		return Setting{}, fmt.Errorf("Load: failed parsing '%s': %w", path, err)
	}
	return s, nil
}

// Save writes the setting as XML plist to path.
func (s Setting) Save(path string) error {
	b, err := plist.MarshalIndent(s, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("Save: failed encoding setting: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("Save: failed writing '%s': %w", path, err)
	}
	return nil
}
