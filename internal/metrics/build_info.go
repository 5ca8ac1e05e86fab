package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// buildInfoCollector 输出服务版本信息，值恒为1
type buildInfoCollector struct {
	desc    *prometheus.Desc
	service string
	version string
}

func newBuildInfoCollector(config *MetricsConfig) *buildInfoCollector {
	return &buildInfoCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(config.Namespace, "", "build_info"),
			"Build information about the service",
			[]string{"service", "version", "go_version", "os", "arch"},
			nil,
		),
		service: config.ServiceName,
		version: config.ServiceVersion,
	}
}

// Describe 实现prometheus.Collector接口
func (c *buildInfoCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect 实现prometheus.Collector接口
func (c *buildInfoCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		c.desc,
		prometheus.GaugeValue,
		1,
		c.service,
		c.version,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}
