package config

const (
	appName        = "size-check"
	configFileName = "config.toml"

	defaultPath     = "/Volumes/3To"
	defaultOutput   = "output.txt"
	defaultFormat   = "txt"
	defaultSort     = "file"
	defaultDecimals = 2
	maxDecimals     = 10
)

// Default returns the configuration used when no file and no flags say
// otherwise.
func Default() Config {
	return Config{
		Path:   defaultPath,
		Output: defaultOutput,
		Format: defaultFormat,
		Sort:   defaultSort,
		Filters: Filters{
			SkipHidden:     true,
			SkipOSMetadata: true,
		},
		Units: Units{
			Binary:   true,
			Decimals: defaultDecimals,
		},
	}
}
