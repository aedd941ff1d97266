package setting

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArrayMinimal(t *testing.T) {
	s := Setting{TopDomain: "t.example.com"}
	assert.Equal(t, []string{"-f", "t.example.com"}, s.CommandArray())
}

func TestCommandArrayAllOptions(t *testing.T) {
	s := Setting{
		TopDomain:             "t.example.com",
		Password:              "secret",
		Nameserver:            "8.8.8.8",
		DisableRaw:            true,
		DisableLazyMode:       true,
		MaxDownstreamFragment: 1200,
		MaxHostnameLength:     200,
		RecordType:            "TXT",
		DownstreamEncoding:    "Base64",
		SelectInterval:        4,
		Device:                "dns0",
	}
	assert.Equal(t, []string{
		"-f", "-r", "-L0",
		"-P", "secret",
		"-m", "1200",
		"-M", "200",
		"-T", "TXT",
		"-O", "Base64",
		"-I", "4",
		"-d", "dns0",
		"8.8.8.8", "t.example.com",
	}, s.CommandArray())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Setting{TopDomain: "t.example.com"}.Validate())
	assert.Error(t, Setting{}.Validate())
	assert.Error(t, Setting{TopDomain: "localhost"}.Validate())
	assert.Error(t, Setting{TopDomain: "t.example.com; reboot"}.Validate())
	assert.Error(t, Setting{TopDomain: "t.example.com", RecordType: "AAAA"}.Validate())
	assert.Error(t, Setting{TopDomain: "t.example.com", DownstreamEncoding: "hex"}.Validate())
	assert.Error(t, Setting{TopDomain: "t.example.com", MaxHostnameLength: 20}.Validate())
	assert.Error(t, Setting{TopDomain: "t.example.com", MaxDownstreamFragment: -1}.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setting.plist")
	s := Setting{TopDomain: "t.example.com", Password: "secret", DisableRaw: true, RecordType: "NULL"}
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.plist"))
	assert.Error(t, err)
}
