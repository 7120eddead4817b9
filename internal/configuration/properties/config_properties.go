package properties

import (
	"net"
	"time"
)

type ApplicationConfigProperties struct {
	Profile  string `yaml:"profile"`
	LogLevel string `yaml:"log-level"`
}

type TransportConfigProperties struct {
	Network              string `yaml:"network"`
	Address              string `yaml:"address"`
	Port                 string `yaml:"port"`
	MaxConcurrentStreams uint32 `yaml:"max-concurrent-streams"`
	MaxRecvMsgSize       int    `yaml:"max-recv-msg-size"`
}

type WriteAheadLogProperties struct {
	NoSync      bool `yaml:"no-sync"`
	SegmentSize int  `yaml:"segment-size"`
}

type CoordinatorConfigProperties struct {
	TempDir          string                  `yaml:"temp-dir"`
	SnapCount        int64                   `yaml:"snap-count"`
	PlaybackInterval uint64                  `yaml:"playback-interval"`
	PlaybackBatch    int64                   `yaml:"playback-batch"`
	Wal              WriteAheadLogProperties `yaml:"wal"`
}

type ProcessingConfigProperties struct {
	HeatmapSize  int     `yaml:"heatmap-size"`
	WeightFactor float32 `yaml:"weight-factor"`
}

type MetricsConfigProperties struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type InstanceConfigProperties struct {
	Path string `yaml:"path"`
}

type Config struct {
	Application ApplicationConfigProperties `yaml:"app"`
	Transport   TransportConfigProperties   `yaml:"transport"`
	Coordinator CoordinatorConfigProperties `yaml:"coordinator"`
	Processing  ProcessingConfigProperties  `yaml:"processing"`
	Metrics     MetricsConfigProperties     `yaml:"metrics"`
	Instance    InstanceConfigProperties    `yaml:"instance"`
}

func (c *TransportConfigProperties) ListenAddr() string {
	return net.JoinHostPort(c.Address, c.Port)
}

func (c *CoordinatorConfigProperties) PlaybackDuration() time.Duration {
	return time.Duration(c.PlaybackInterval) * time.Millisecond
}
