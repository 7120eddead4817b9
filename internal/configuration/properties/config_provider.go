package properties

type ConfigProvider interface {
	GetApplication() *ApplicationConfigProperties
	GetTransport() *TransportConfigProperties
	GetCoordinator() *CoordinatorConfigProperties
	GetProcessing() *ProcessingConfigProperties
	GetMetrics() *MetricsConfigProperties
	GetInstance() *InstanceConfigProperties
}

type AppConfigProvider struct {
	config *Config
}

func NewProvider(cfg *Config) *AppConfigProvider {
	return &AppConfigProvider{config: cfg}
}

func (c *AppConfigProvider) GetApplication() *ApplicationConfigProperties {
	return &c.config.Application
}

func (c *AppConfigProvider) GetTransport() *TransportConfigProperties {
	return &c.config.Transport
}

func (c *AppConfigProvider) GetCoordinator() *CoordinatorConfigProperties {
	return &c.config.Coordinator
}

func (c *AppConfigProvider) GetProcessing() *ProcessingConfigProperties {
	return &c.config.Processing
}

func (c *AppConfigProvider) GetMetrics() *MetricsConfigProperties {
	return &c.config.Metrics
}

func (c *AppConfigProvider) GetInstance() *InstanceConfigProperties {
	return &c.config.Instance
}
