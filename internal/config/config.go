// internal/config/config.go

package config

type Config struct {
	Driver    DriverConfig   `yaml:"driver"`
	Sequences SequenceConfig `yaml:"sequences"`
	SPI       SPIConfig      `yaml:"spi"`
	Process   ProcessConfig  `yaml:"process"`
	Logs      LogConfig      `yaml:"logs"`
	API       APIConfig      `yaml:"api"`
}

// ---- DRIVER ----

type DriverConfig struct {
	Path              string `yaml:"path"`        // kernel module artifact (.ko)
	ModuleName        string `yaml:"module_name"` // as listed by lsmod
	DeviceRoot        string `yaml:"device_root"`
	DefaultDeviceName string `yaml:"default_device_name"`
	Permissions       string `yaml:"permissions"` // octal chmod mode

	DevicePollMs int `yaml:"device_poll_ms"`
	DeviceWaitMs int `yaml:"device_wait_ms"`
}

// ---- SEQUENCES ----

type SequenceConfig struct {
	Path string `yaml:"path"`
}

// ---- SPI EXCHANGE ----

type SPIConfig struct {
	TimeoutMs int  `yaml:"timeout_ms"`
	BackoffMs int  `yaml:"backoff_ms"`
	ReadChunk int  `yaml:"read_chunk"`
	Serialize bool `yaml:"serialize"`
}

// ---- EXTERNAL COMMANDS ----

type ProcessConfig struct {
	TimeoutMs int  `yaml:"timeout_ms"`
	Sudo      bool `yaml:"sudo"`
}

// ---- LOGS ----

type LogConfig struct {
	Capacity int    `yaml:"capacity"`
	Level    string `yaml:"level"` // debug | info | warn | error
}

// ---- API ----

type APIConfig struct {
	Listen string `yaml:"listen"`
}
