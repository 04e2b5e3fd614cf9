package config

import (
	"fmt"
	"strconv"
	"time"
)

type DeviceConf struct {
	Path          string  `koanf:"path"`
	Base          string  `koanf:"base"`
	MapBytes      int     `koanf:"map_bytes"`
	ClockHz       float64 `koanf:"clock_hz"`
	Simulate      bool    `koanf:"simulate"`
	SimSampleRate float64 `koanf:"sim_sample_rate"`
	SimFifoDepth  int     `koanf:"sim_fifo_depth"`
	ClearTimer    bool    `koanf:"clear_timer"`
	ResetOnExit   bool    `koanf:"reset_on_exit"`
}

// BaseAddr parses Base, which may carry a 0x prefix.
func (d DeviceConf) BaseAddr() (int64, error) {
	v, err := strconv.ParseUint(d.Base, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("device.base %q: %w", d.Base, err)
	}
	return int64(v), nil
}

// RadioConf holds optional start-up oscillator settings; nil leaves the
// register untouched.
type RadioConf struct {
	FakeHz *float64 `koanf:"fake_hz"`
	TuneHz *float64 `koanf:"tune_hz"`
}

type StreamConf struct {
	Port              int    `koanf:"port"`
	SamplesPerPacket  int    `koanf:"samples_per_packet"`
	IdleBackoffMs     int    `koanf:"idle_backoff_ms"`
	UnderrunBackoffMs int    `koanf:"underrun_backoff_ms"`
	DropBackoffMs     int    `koanf:"drop_backoff_ms"`
	ByteOrder         string `koanf:"byte_order"`
	SocketBuffer      int    `koanf:"socket_buffer"`
	Start             bool   `koanf:"start"`
}

func (s StreamConf) IdleBackoff() time.Duration {
	return time.Duration(s.IdleBackoffMs) * time.Millisecond
}

func (s StreamConf) UnderrunBackoff() time.Duration {
	return time.Duration(s.UnderrunBackoffMs) * time.Millisecond
}

func (s StreamConf) DropBackoff() time.Duration {
	return time.Duration(s.DropBackoffMs) * time.Millisecond
}

type LogConf struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

type TuiConf struct {
	RefreshMs       int  `koanf:"refresh_ms"`
	EnableLogOutput bool `koanf:"enable_log_output"`
	EnableSpectrum  bool `koanf:"enable_spectrum"`
}

type Conf struct {
	Device DeviceConf `koanf:"device"`
	Radio  RadioConf  `koanf:"radio"`
	Stream StreamConf `koanf:"stream"`
	Log    LogConf    `koanf:"log"`
	Tui    TuiConf    `koanf:"tui"`
}

// Default returns the reference configuration of the Zynq radio build.
func Default() Conf {
	return Conf{
		Device: DeviceConf{
			Path:          "/dev/mem",
			Base:          "0x43C10000",
			MapBytes:      0x1000,
			ClockHz:       125e6,
			SimSampleRate: 1e6,
			SimFifoDepth:  16384,
		},
		Stream: StreamConf{
			Port:              25344,
			SamplesPerPacket:  256,
			IdleBackoffMs:     10,
			UnderrunBackoffMs: 2,
			DropBackoffMs:     10,
			ByteOrder:         "little",
		},
		Log: LogConf{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 4,
			MaxAgeDays: 180,
			Compress:   true,
		},
		Tui: TuiConf{
			RefreshMs:       500,
			EnableLogOutput: true,
			EnableSpectrum:  true,
		},
	}
}

// Validate rejects settings the stream loop cannot run with.
func (c Conf) Validate() error {
	switch {
	case c.Device.ClockHz <= 0:
		return fmt.Errorf("device.clock_hz must be positive, got %v", c.Device.ClockHz)
	case c.Stream.Port <= 0 || c.Stream.Port > 65535:
		return fmt.Errorf("stream.port out of range: %d", c.Stream.Port)
	case c.Stream.IdleBackoffMs < 0, c.Stream.UnderrunBackoffMs < 0, c.Stream.DropBackoffMs < 0:
		return fmt.Errorf("stream backoffs must not be negative, got idle=%d underrun=%d drop=%d",
			c.Stream.IdleBackoffMs, c.Stream.UnderrunBackoffMs, c.Stream.DropBackoffMs)
	case c.Stream.SamplesPerPacket <= 0:
		return fmt.Errorf("stream.samples_per_packet must be positive, got %d", c.Stream.SamplesPerPacket)
	case 2+8*c.Stream.SamplesPerPacket > 65507:
		return fmt.Errorf("stream.samples_per_packet %d does not fit in a UDP datagram", c.Stream.SamplesPerPacket)
	case c.Stream.ByteOrder != "little" && c.Stream.ByteOrder != "big":
		return fmt.Errorf("stream.byte_order must be \"little\" or \"big\", got %q", c.Stream.ByteOrder)
	}
	if _, err := c.Device.BaseAddr(); err != nil {
		return err
	}
	return nil
}
