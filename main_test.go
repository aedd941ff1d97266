package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageParsesEveryCommand(t *testing.T) {
	for _, argv := range [][]string{
		{"connect", "t.example.com"},
		{"connect", "--config=/tmp/a.plist"},
		{"save-config", "/tmp/a.plist", "t.example.com"},
		{"check", "--binary=/usr/sbin/iodine"},
		{"status", "--nojson"},
		{"stop", "--api-port=28201"},
		{"version"},
	} {
		arguments := parse(t, argv...)
		b, _ := arguments.Bool(argv[0])
		assert.True(t, b, argv[0])
	}
}

func TestConvertToJSONString(t *testing.T) {
	assert.Equal(t, `{"version":"local-build"}`, convertToJSONString(map[string]interface{}{"version": version}))
}
