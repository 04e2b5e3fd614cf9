package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())
	base, err := conf.Device.BaseAddr()
	require.NoError(t, err)
	assert.Equal(t, int64(0x43C10000), base)
	assert.Nil(t, conf.Radio.FakeHz)
}

func TestLoadWithoutFile(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConf(t, `
device {
  base     = "0x43C20000"
  simulate = true
}
radio {
  fake_hz = 2500000.0
}
stream {
  port       = 9000
  byte_order = "big"
}
`)
	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0x43C20000", conf.Device.Base)
	assert.True(t, conf.Device.Simulate)
	assert.Equal(t, "/dev/mem", conf.Device.Path)
	require.NotNil(t, conf.Radio.FakeHz)
	assert.Equal(t, 2.5e6, *conf.Radio.FakeHz)
	assert.Nil(t, conf.Radio.TuneHz)
	assert.Equal(t, 9000, conf.Stream.Port)
	assert.Equal(t, "big", conf.Stream.ByteOrder)
	assert.Equal(t, 256, conf.Stream.SamplesPerPacket)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConf(t, "stream {\n  port = 9000\n}\n")
	t.Setenv("IQBRIDGE_STREAM_PORT", "9001")
	t.Setenv("IQBRIDGE_STREAM_SAMPLES_PER_PACKET", "64")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, conf.Stream.Port)
	assert.Equal(t, 64, conf.Stream.SamplesPerPacket)
}

func TestLoadEnvWithoutFile(t *testing.T) {
	t.Setenv("IQBRIDGE_STREAM_START", "true")
	t.Setenv("IQBRIDGE_DEVICE_SIMULATE", "true")
	t.Setenv("IQBRIDGE_STREAM_BYTE_ORDER", "big")

	conf, err := Load("")
	require.NoError(t, err)
	assert.True(t, conf.Stream.Start)
	assert.True(t, conf.Device.Simulate)
	assert.Equal(t, "big", conf.Stream.ByteOrder)
	assert.Equal(t, 25344, conf.Stream.Port)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Conf){
		"clock":     func(c *Conf) { c.Device.ClockHz = 0 },
		"port":      func(c *Conf) { c.Stream.Port = 70000 },
		"samples":   func(c *Conf) { c.Stream.SamplesPerPacket = 0 },
		"oversized": func(c *Conf) { c.Stream.SamplesPerPacket = 9000 },
		"order":     func(c *Conf) { c.Stream.ByteOrder = "middle" },
		"base":      func(c *Conf) { c.Device.Base = "nowhere" },
		"idle":      func(c *Conf) { c.Stream.IdleBackoffMs = -1 },
		"underrun":  func(c *Conf) { c.Stream.UnderrunBackoffMs = -1 },
		"drop":      func(c *Conf) { c.Stream.DropBackoffMs = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			conf := Default()
			mutate(&conf)
			assert.Error(t, conf.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}
