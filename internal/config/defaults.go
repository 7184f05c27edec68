package config

const (
	defaultFormat        = "woff2"
	defaultOutputDir     = "."
	defaultArchiveName   = "converted-fonts.zip"
	defaultWOFFLevel     = 6
	defaultWOFF2Level    = 9
	defaultConcurrency   = 1
	defaultMaxEvents     = 500
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	maxConcurrency       = 64
	minCompressionLevel  = -1
	maxCompressionLevel  = 9
	defaultConfigPath    = "~/.config/woffsmith/config.toml"
	projectConfigName    = "woffsmith.toml"
	defaultLockFileName  = ".woffsmith.lock"
	defaultLogFileName   = "woffsmith.log"
	defaultValidateInput = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Convert: Convert{
			DefaultFormat: defaultFormat,
			OutputDir:     defaultOutputDir,
			ArchiveName:   defaultArchiveName,
		},
		Encoder: Encoder{
			WOFFLevel:    defaultWOFFLevel,
			WOFF2Level:   defaultWOFF2Level,
			ValidateSfnt: defaultValidateInput,
		},
		Workflow: Workflow{
			Concurrency: defaultConcurrency,
			MaxEvents:   defaultMaxEvents,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
