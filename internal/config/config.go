package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type SchedulerConfig struct {
	// Intervalo entre escaneos de vencimientos ("1h", "15m"...).
	ScanInterval string `yaml:"scan_interval"`
	// Tope de duración de un escaneo.
	ScanTimeout string `yaml:"scan_timeout"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Files     FilesConfig     `yaml:"files"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

func LoadConfig() *Config {
	// .env es opcional; si existe, sus variables pisan el yaml
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	// secretos desde el entorno
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	return &cfg
}

// ScanInterval devuelve el intervalo configurado o una hora por defecto.
func (c *Config) ScanInterval() time.Duration {
	if d, err := time.ParseDuration(c.Scheduler.ScanInterval); err == nil && d > 0 {
		return d
	}
	return time.Hour
}

// ScanTimeout devuelve el tope por escaneo o cinco minutos por defecto.
func (c *Config) ScanTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Scheduler.ScanTimeout); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}
