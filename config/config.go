package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// SmtpConfig configures outbound alert mail. An empty ManagerEmail disables
// inventory alerting entirely.
type SmtpConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	From         string `yaml:"from" json:"from"`
	ManagerEmail string `yaml:"manager_email" json:"manager_email"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system" json:"system"`
	Web      WebConfig  `yaml:"web" json:"web"`
	Database DBConfig   `yaml:"database" json:"database"`
	Smtp     SmtpConfig `yaml:"smtp" json:"smtp"`
	Logger   LogConfig  `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetUploadDir() string {
	return filepath.Join(c.System.Workdir, "uploads")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "uploads"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Stocker",
		Location: "Asia/Riyadh",
		Workdir:  "/var/stocker",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		JwtSecret: "9b6bc6a4-8d86-2b6c-c613-1e52a2ccf0a5",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "stocker",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Smtp: SmtpConfig{
		Host:         "",
		Port:         587,
		Username:     "",
		Password:     "",
		From:         "stocker@localhost",
		ManagerEmail: "",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/stocker/stocker.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the yaml configuration file if one exists at cfile and
// then applies STOCKER_* environment overrides on top of it.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("STOCKER_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = cast.ToBool(v) })
	setEnvValue("STOCKER_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("STOCKER_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("STOCKER_WEB_PORT", func(v string) { cfg.Web.Port = cast.ToInt(v) })
	setEnvValue("STOCKER_WEB_JWT_SECRET", func(v string) { cfg.Web.JwtSecret = v })
	setEnvValue("STOCKER_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("STOCKER_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("STOCKER_DB_PORT", func(v string) { cfg.Database.Port = cast.ToInt(v) })
	setEnvValue("STOCKER_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("STOCKER_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("STOCKER_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("STOCKER_DB_DEBUG", func(v string) { cfg.Database.Debug = cast.ToBool(v) })
	setEnvValue("STOCKER_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvValue("STOCKER_SMTP_PORT", func(v string) { cfg.Smtp.Port = cast.ToInt(v) })
	setEnvValue("STOCKER_SMTP_USERNAME", func(v string) { cfg.Smtp.Username = v })
	setEnvValue("STOCKER_SMTP_PASSWORD", func(v string) { cfg.Smtp.Password = v })
	setEnvValue("STOCKER_SMTP_FROM", func(v string) { cfg.Smtp.From = v })
	setEnvValue("STOCKER_MANAGER_EMAIL", func(v string) { cfg.Smtp.ManagerEmail = v })

	cfg.initDirs()
	return cfg
}
