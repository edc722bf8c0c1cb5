package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string
	// "postgres" or "memory"
	Store string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration
	BcryptCost         int

	OwnerEmail    string
	CORSOrigins   []string
	MaxBodyBytes   int64
	MaxUploadBytes int64
	UploadTmpDir   string
	DefaultAvatar  string
	// link mailed to candidates once they are certificate eligible
	CertificateFormURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	ContactInbox string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OTPTTL        time.Duration

	OTELEndpoint string
	LogFile      string

	ReconcileInterval time.Duration
	ReconcilerPort    int
}

func Load() Config {
	// a missing .env is fine, real deployments use the environment
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8000)

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbURL = buildDBURL()
	}

	// SALT is the name the first deployments used for the cost factor.
	cost := getEnvInt("BCRYPT_COST", getEnvInt("SALT", 10))

	return Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,
		Store: getEnv("STORE", "postgres"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		AccessTokenTTL:     getEnvDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		RefreshTokenTTL:    getEnvDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		BcryptCost:         cost,

		OwnerEmail:    strings.ToLower(strings.TrimSpace(getEnv("OWNER_EMAIL", ""))),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 16*1024)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 100*1024*1024)),
		UploadTmpDir:       getEnv("UPLOAD_TMP_DIR", os.TempDir()),
		DefaultAvatar:      getEnv("DEFAULT_AVATAR_URL", "https://cvhrma.org/wp-content/uploads/2015/07/default-profile-photo.jpg"),
		CertificateFormURL: getEnv("CERTIFICATE_FORM_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),
		MailFrom:     getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),
		ContactInbox: getEnv("CONTACT_INBOX", getEnv("SMTP_USER", "")),

		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		OTPTTL:        getEnvDuration("OTP_TTL", 10*time.Minute),

		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogFile:      getEnv("LOG_FILE", ""),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 15*time.Minute),
		ReconcilerPort:    getEnvInt("RECONCILER_PORT", 8081),
	}
}

// Validate checks the settings the API cannot start without.
func (c Config) Validate() error {
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token expiries must be positive")
	}

	switch c.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "drivingschool")
	pass := getEnv("DB_PASSWORD", "drivingschool")
	name := getEnv("DB_NAME", "drivingschool")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not a number, using %d\n", key, v, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

// getEnvDuration accepts Go durations ("15m") and the "10d" day form.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s=%q is not a duration, using %s\n", key, v, fallback)
		return fallback
	}

	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
