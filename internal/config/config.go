package config

import (
	"log"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`
	DatabasePath  string `mapstructure:"DATABASE_PATH"`

	AllowedEmailDomain string `mapstructure:"ALLOWED_EMAIL_DOMAIN"`
	DefaultCapacity    int    `mapstructure:"DEFAULT_CAPACITY"`
	DayCapacity        int    `mapstructure:"DAY_CAPACITY"`
	EventDays          string `mapstructure:"EVENT_DAYS"`
	EventTime          string `mapstructure:"EVENT_TIME"`
	EventDescription   string `mapstructure:"EVENT_DESCRIPTION"`

	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`

	EmailService     string        `mapstructure:"EMAIL_SERVICE"`
	EmailHost        string        `mapstructure:"EMAIL_HOST"`
	EmailPort        int           `mapstructure:"EMAIL_PORT"`
	EmailUser        string        `mapstructure:"EMAIL_USER"`
	EmailPassword    string        `mapstructure:"EMAIL_PASSWORD"`
	EmailFrom        string        `mapstructure:"EMAIL_FROM"`
	EmailFromName    string        `mapstructure:"EMAIL_FROM_NAME"`
	SendGridAPIKey   string        `mapstructure:"SENDGRID_API_KEY"`
	SendGridAPIURL   string        `mapstructure:"SENDGRID_API_URL"`
	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`

	AdmissionLock string `mapstructure:"ADMISSION_LOCK"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`

	EnableCORS            bool     `mapstructure:"ENABLE_CORS"`
	TrustProxy            bool     `mapstructure:"TRUST_PROXY"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	RegisterRatePerMinute int      `mapstructure:"REGISTER_RATE_PER_MINUTE"`
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", "mongo")
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE", "d79-crawls")
	viper.SetDefault("DATABASE_PATH", "crawls.db")
	viper.SetDefault("ALLOWED_EMAIL_DOMAIN", "@schools.nyc.gov")
	viper.SetDefault("DEFAULT_CAPACITY", 20)
	viper.SetDefault("DAY_CAPACITY", 20)
	viper.SetDefault("EVENT_DAYS", "2024-10-28=tuesday,2024-10-30=thursday")
	viper.SetDefault("EVENT_TIME", "10:00 AM - 12:00 PM")
	viper.SetDefault("EVENT_DESCRIPTION", "Join us for an information session and a site visit to a Referral Center and D79 site")
	viper.SetDefault("ADMIN_PASSWORD", "district79admin")
	viper.SetDefault("EMAIL_SERVICE", "smtp")
	viper.SetDefault("EMAIL_HOST", "smtp.gmail.com")
	viper.SetDefault("EMAIL_PORT", 587)
	viper.SetDefault("EMAIL_FROM_NAME", "District 79 Fall Crawls")
	viper.SetDefault("SENDGRID_API_URL", "https://api.sendgrid.com/v3/mail/send")
	viper.SetDefault("REMINDER_INTERVAL", "100ms")
	viper.SetDefault("ADMISSION_LOCK", "local")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CORS_ORIGINS", []string{"*"})
	viper.SetDefault("REGISTER_RATE_PER_MINUTE", 10)

	viper.BindEnv("ADMIN_EMAIL")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("EMAIL_USER")
	viper.BindEnv("EMAIL_PASSWORD")
	viper.BindEnv("EMAIL_FROM")
	viper.BindEnv("SENDGRID_API_KEY")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("ENABLE_CORS")
	viper.SetDefault("TRUST_PROXY", false)

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}

// Schedule parses EVENT_DAYS, falling back to the built-in fall schedule.
func (c *Config) Schedule() models.Schedule {
	if c.EventDays == "" {
		return models.DefaultSchedule()
	}
	s, err := models.ParseSchedule(c.EventDays)
	if err != nil {
		log.Printf("Invalid EVENT_DAYS %q, using default schedule: %v", c.EventDays, err)
		return models.DefaultSchedule()
	}
	return s
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Sender is the From address used by every transport.
func (c *Config) Sender() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	if c.EmailUser != "" {
		return c.EmailUser
	}
	return "noreply@schools.nyc.gov"
}
