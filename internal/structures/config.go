package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type ChannelsConfig struct {
	LastSeen    string `yaml:"lastSeen" validate:"required"`
	OnlineSince string `yaml:"onlineSince" validate:"required"`
	Other       string `yaml:"other" validate:"required"`
	Watchlist   string `yaml:"watchlist" validate:"required"`
	Status      string `yaml:"status" validate:"required"`
	Ping        string `yaml:"ping" validate:"required"`
	Ops         string `yaml:"ops" validate:"required"`
}

type RolesConfig struct {
	Conductor string `yaml:"conductor" validate:"required"`
	Mod       string `yaml:"mod" validate:"required"`
	Admin     string `yaml:"admin" validate:"required"`
}

type DiscordConfig struct {
	Token    string         `yaml:"token" validate:"required"`
	Guild    string         `yaml:"guild" validate:"required"`
	Channels ChannelsConfig `yaml:"channels"`
	Roles    RolesConfig    `yaml:"roles"`
}

type RosterConfig struct {
	URL           string `yaml:"url" validate:"required|fullUrl"`
	SpreadsheetID string `yaml:"spreadsheetId" validate:"required"`
	SheetName     string `yaml:"sheetName" validate:"required"`
	MemberListURL string `yaml:"memberListUrl"`
}

type PresenceConfig struct {
	MapFeedURL string        `yaml:"mapFeedUrl" validate:"required|fullUrl"`
	ProbeURL   string        `yaml:"probeUrl" validate:"required|fullUrl"`
	ProfileURL string        `yaml:"profileUrl" validate:"required|fullUrl"`
	LookupURL  string        `yaml:"lookupUrl" validate:"required|fullUrl"`
	Timeout    time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type DeadzonesConfig struct {
	Conductor time.Duration `yaml:"conductor" validate:"required|min:1"`
	Mod       time.Duration `yaml:"mod" validate:"required|min:1"`
	Admin     time.Duration `yaml:"admin" validate:"required|min:1"`
}

type MonitorConfig struct {
	Interval  time.Duration   `yaml:"interval" validate:"required|min:1"`
	Deadzones DeadzonesConfig `yaml:"deadzones"`
}

type Persistence struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Discord     DiscordConfig  `yaml:"discord"`
	Roster      RosterConfig   `yaml:"roster"`
	Presence    PresenceConfig `yaml:"presence"`
	Monitor     MonitorConfig  `yaml:"monitor"`
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}
