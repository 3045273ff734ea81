package conf

import (
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"botpanel/internal/errors"
)

// Environment overrides for the client section.
const (
	EnvToken = "PANEL_TOKEN"
	EnvURL   = "PANEL_URL"
)

var (
	Path string       // Config path
	mu   sync.RWMutex // Protects access to Conf
	Conf = Default()
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Client: Client{
			URL:            "http://127.0.0.1:5001",
			Path:           "/web/socket.io",
			Namespace:      "/web",
			Attempts:       10,
			Delay:          1000 * time.Millisecond,
			Timeout:        20000 * time.Millisecond,
			PollInterval:   5000 * time.Millisecond,
			PageInterval:   3000 * time.Millisecond,
			RenderInterval: 500 * time.Millisecond,
			RefreshDelay:   200 * time.Millisecond,
			PageSize:       20,
		},
		Server: Server{
			Listen:    "127.0.0.1:5001",
			Path:      "/web/socket.io",
			Namespace: "/web",
			LogLimit:  1000,
			PageSize:  20,
			PluginDir: "plugins",
			Root:      ".",
		},
		Auth: Auth{Tokens: map[string]string{}},
		Robot: Robot{
			Name:        "OneBot 机器人",
			Description: "基于 OneBot v11 协议的机器人",
			Developer:   "Elaina Framework",
			QRProvider:  "https://api.2dcode.biz/v1/create-qr-code?data=%s",
		},
	}
}

// LoadConfig Set Path and load config into memory
// Run this at start. A missing file is created empty.
func LoadConfig(path string) error {
	Path = path
	err := Update()
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		f, cerr := os.OpenFile(path, os.O_CREATE, 0644)
		if cerr == nil {
			f.Close()
			return nil
		}
		return errors.WrapWithCode(cerr, errors.ErrConfig,
			"failed to create config file "+path, "Check the directory exists and is writable")
	}
	return err
}

// Update reads the config file and loads it into the global Conf variable
func Update() error {
	mu.Lock()
	defer mu.Unlock()

	if _, err := os.Stat(Path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "config file does not exist: "+Path, "")
	}
	next := Default()
	if _, err := toml.DecodeFile(Path, &next); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "failed to parse config "+Path,
			"Durations are strings such as \"5s\" or \"500ms\"")
	}
	if next.Auth.Tokens == nil {
		next.Auth.Tokens = map[string]string{}
	}
	Conf = next
	return nil
}

// LoadEnv reads .env from the working directory, when present, and applies
// PANEL_TOKEN and PANEL_URL to the client section.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrConfig, "failed to read "+f, "")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if v := os.Getenv(EnvToken); v != "" {
		Conf.Client.Token = v
	}
	if v := os.Getenv(EnvURL); v != "" {
		Conf.Client.URL = v
	}
	return nil
}

// Write saves the provided config to the TOML file at the global Path
func Write(conf Config) error {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.Create(Path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "failed to create config file", "")
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(conf); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "failed to write config file", "")
	}

	// Update global config after successful write
	Conf = conf
	return nil
}

// Set replaces the in-memory configuration without touching the file.
func Set(conf Config) {
	mu.Lock()
	defer mu.Unlock()
	Conf = conf
}

// Read returns a copy of the current configuration
func Read() Config {
	mu.RLock()
	defer mu.RUnlock()

	conf := Conf
	conf.Auth.Tokens = make(map[string]string, len(Conf.Auth.Tokens))
	for k, v := range Conf.Auth.Tokens {
		conf.Auth.Tokens[k] = v
	}
	return conf
}

// GetClient returns the client config in a thread-safe manner
func GetClient() Client {
	mu.RLock()
	defer mu.RUnlock()
	return Conf.Client
}

// GetServer returns the server config in a thread-safe manner
func GetServer() Server {
	mu.RLock()
	defer mu.RUnlock()
	return Conf.Server
}

// GetRobot returns the robot profile in a thread-safe manner
func GetRobot() Robot {
	mu.RLock()
	defer mu.RUnlock()
	return Conf.Robot
}

// GetTokens returns a copy of the token hashes in a thread-safe manner
func GetTokens() map[string]string {
	mu.RLock()
	defer mu.RUnlock()

	tokens := make(map[string]string, len(Conf.Auth.Tokens))
	for k, v := range Conf.Auth.Tokens {
		tokens[k] = v
	}
	return tokens
}
