package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Lots      LotsConfig
	Reconcile ReconcileConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// Enabled indica si hay una base de datos configurada. Sin ella la app usa el almacén en memoria.
func (c DBConfig) Enabled() bool {
	return c.DatabaseURL != "" || c.Host != ""
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma el connection string escapando usuario y contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig configuración de Redis (contador de números de lote entre procesos).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Backends del contador de números de lote.
const (
	SequenceBackendPostgres = "postgres"
	SequenceBackendRedis    = "redis"
	SequenceBackendMemory   = "memory"
)

// LotsConfig parámetros del motor de lotes.
type LotsConfig struct {
	SequenceBackend   string
	BatchSize         int
	BatchWorkers      int
	BatchTimeout      time.Duration
	BatchMaxRetries   int
	MaxQuantity       int
	AllocationRetries int
}

// ReconcileConfig job periódico de conciliación de stock. Interval 0 lo desactiva.
type ReconcileConfig struct {
	Interval  time.Duration
	CompanyID string // vacío = todas las empresas
	Repair    bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde .env / config.env).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // opcional

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "lotes-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", ""),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "lotes"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "lotes-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Lots: LotsConfig{
			SequenceBackend:   strings.ToLower(getString(v, "LOT_SEQUENCE_BACKEND", "")),
			BatchSize:         getInt(v, "LOTS_BATCH_SIZE", 1000),
			BatchWorkers:      getInt(v, "LOTS_BATCH_WORKERS", 4),
			BatchTimeout:      getDuration(v, "LOTS_BATCH_TIMEOUT", 30*time.Second),
			BatchMaxRetries:   getInt(v, "LOTS_BATCH_MAX_RETRIES", 3),
			MaxQuantity:       getInt(v, "LOTS_MAX_QUANTITY", 100000),
			AllocationRetries: getInt(v, "LOTS_ALLOCATION_RETRIES", 3),
		},
		Reconcile: ReconcileConfig{
			Interval:  getDuration(v, "RECONCILE_INTERVAL", 0),
			CompanyID: getString(v, "RECONCILE_COMPANY_ID", ""),
			Repair:    getBool(v, "RECONCILE_REPAIR", false),
		},
	}

	if cfg.Lots.SequenceBackend == "" {
		cfg.Lots.SequenceBackend = defaultSequenceBackend(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultSequenceBackend(cfg *Config) string {
	switch {
	case cfg.Redis.Addr != "":
		return SequenceBackendRedis
	case cfg.DB.Enabled():
		return SequenceBackendPostgres
	default:
		return SequenceBackendMemory
	}
}

func (c *Config) validate() error {
	if c.Lots.BatchSize <= 0 || c.Lots.BatchWorkers <= 0 || c.Lots.MaxQuantity <= 0 {
		return fmt.Errorf("config: LOTS_BATCH_SIZE, LOTS_BATCH_WORKERS y LOTS_MAX_QUANTITY deben ser positivos")
	}
	switch c.Lots.SequenceBackend {
	case SequenceBackendPostgres:
		if !c.DB.Enabled() {
			return fmt.Errorf("config: LOT_SEQUENCE_BACKEND=postgres requiere DATABASE_URL o DB_HOST")
		}
	case SequenceBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: LOT_SEQUENCE_BACKEND=redis requiere REDIS_ADDR")
		}
	case SequenceBackendMemory:
	default:
		return fmt.Errorf("config: LOT_SEQUENCE_BACKEND desconocido %q", c.Lots.SequenceBackend)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return d
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	return v.GetBool(key)
}
