package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hoshinonyaruko/snake-grid/snake"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	Port      string `json:"port"`
	Blocksize int    `json:"blocksize"`
	GridSize  int    `json:"gridsize"`
	TickMs    int    `json:"tickms"`
	Foods     string `json:"foods"`
	FoodIcon  string `json:"foodicon"`
	Frontend  string `json:"frontend"`
	LogLevel  string `json:"loglevel"`
	LogFile   string `json:"logfile"`
}

var (
	instance *AppConfig
	loadErr  error
	once     sync.Once
)

// Default returns the built-in settings.
func Default() *AppConfig {
	return &AppConfig{
		Port:      "38870",
		Blocksize: 20,
		GridSize:  20,
		TickMs:    150,
		Foods:     "./foods",
		FoodIcon:  "",
		Frontend:  "web",
		LogLevel:  "info",
		LogFile:   "snake.log",
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) (*AppConfig, error) {
	once.Do(func() {
		instance, loadErr = Load(filePath)
	})
	return instance, loadErr
}

// Load reads filePath over the defaults. A missing file is created with the
// defaults.
func Load(filePath string) (*AppConfig, error) {
	cfg := Default()
	// Load the config file if it exists, otherwise create one
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := saveConfig(filePath, cfg); err != nil {
			return nil, err
		}
	} else if err := loadConfig(filePath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filePath, err)
	}
	return cfg, nil
}

// loadConfig loads the settings from the file
func loadConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", filePath, err)
	}
	return nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("write config %s: %w", filePath, err)
	}
	return nil
}

// Validate checks that the settings can start a game.
func (c *AppConfig) Validate() error {
	// 初始食物必须在地图内
	minGrid := snake.InitialFood.X + 1
	if snake.InitialFood.Y+1 > minGrid {
		minGrid = snake.InitialFood.Y + 1
	}
	if c.GridSize < minGrid {
		return fmt.Errorf("gridsize %d is smaller than %d", c.GridSize, minGrid)
	}
	if c.Blocksize <= 0 {
		return fmt.Errorf("blocksize must be positive, got %d", c.Blocksize)
	}
	if c.TickMs <= 0 {
		return fmt.Errorf("tickms must be positive, got %d", c.TickMs)
	}
	switch c.Frontend {
	case "web", "tui":
	default:
		return fmt.Errorf("frontend must be \"web\" or \"tui\", got %q", c.Frontend)
	}
	if c.Frontend == "web" && c.Port == "" {
		return fmt.Errorf("port is required for the web frontend")
	}
	return nil
}

// TickInterval is the fixed period between game ticks.
func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	if instance == nil {
		return ""
	}
	switch key {
	case "port":
		return instance.Port
	case "blocksize":
		return instance.Blocksize
	case "gridsize":
		return instance.GridSize
	case "tickms":
		return instance.TickMs
	case "foods":
		return instance.Foods
	case "foodicon":
		return instance.FoodIcon
	case "frontend":
		return instance.Frontend
	case "loglevel":
		return instance.LogLevel
	case "logfile":
		return instance.LogFile
	default:
		return ""
	}
}
