package option

type AppConfig struct {
	PartsDirectory string `json:"parts-directory" yaml:"parts-directory" mapstructure:"parts-directory"`
	Parts          Parts  `json:"parts" yaml:"parts" mapstructure:"parts"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		PartsDirectory: "parts",
		Parts: Parts{
			DefaultPartName: {},
		},
	}
}
