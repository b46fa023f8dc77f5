package config

type LogConfig interface {
	GetLogLevel() string
	GetLogFormat() string
}

type Logging struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

var _ LogConfig = Logging{}

func (l Logging) GetLogLevel() string {
	return l.Level
}

func (l Logging) GetLogFormat() string {
	return l.Format
}
