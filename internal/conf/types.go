package conf

import "time"

type Config struct {
	Client Client
	Server Server
	Auth   Auth
	Robot  Robot
}

// Client configures the watch side.
type Client struct {
	URL            string
	Token          string
	Path           string
	Namespace      string
	Attempts       int
	Delay          time.Duration
	Timeout        time.Duration
	PollInterval   time.Duration
	PageInterval   time.Duration
	RenderInterval time.Duration
	RefreshDelay   time.Duration
	PageSize       int
}

// Server configures the panel backend.
type Server struct {
	Listen    string
	Path      string
	Namespace string
	LogDB     string
	LogLimit  int
	PageSize  int
	PluginDir string
	Root      string // framework directory measured for disk usage
}

// Auth maps token names to bcrypt hashes.
type Auth struct {
	Tokens map[string]string
}

// Robot is the profile served by /web/api/robot_info.
type Robot struct {
	QQ          string
	Name        string
	Description string
	Avatar      string
	Developer   string
	Link        string
	QRCodeAPI   string
	// QRProvider is a URL with one %s for the escaped link, used to render
	// share QR codes.
	QRProvider string
}
