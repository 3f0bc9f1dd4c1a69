package database

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/public-forge/go-tower-api/retry"
)

// Supported drivers, named after their gorm dialects.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds the settings required to create the connection pool.
// It is read once at startup and never modified afterwards.
type Config struct {
	Driver            string        `long:"driver" env:"DRIVER" default:"mysql" choice:"mysql" choice:"postgres" choice:"sqlite3" description:"Database driver"`
	Host              string        `long:"host" env:"HOST" description:"Database server address"`
	Port              int           `long:"port" env:"PORT" description:"Database server port"`
	User              string        `long:"user" env:"USER" description:"User to authenticate as"`
	Password          string        `long:"password" env:"PASSWORD" description:"Password of User"`
	Name              string        `long:"name" env:"NAME" description:"Database name (file path for sqlite3)"`
	Schema            string        `long:"schema" env:"SCHEMA" description:"Schema search path (postgres only)"`
	PoolSize          int           `long:"pool-size" env:"POOL_SIZE" required:"true" description:"Maximum number of open connections"`
	ConnectionTimeout time.Duration `long:"connection-timeout" env:"CONNECTION_TIMEOUT" required:"true" description:"Bound on obtaining a connection, e.g. 300s"`
	ConnMaxLifetime   time.Duration `long:"conn-max-lifetime" env:"CONN_MAX_LIFETIME" default:"1h" description:"Maximum time a connection may be reused"`
	QueryTimeout      time.Duration `long:"query-timeout" env:"QUERY_TIMEOUT" default:"30s" description:"Deadline of a single table query"`
	LogMode           bool          `long:"log-mode" env:"LOG_MODE" description:"Log every SQL statement at debug level"`
	SSLMode           string        `long:"ssl-mode" env:"SSL_MODE" default:"disable" choice:"disable" choice:"require" choice:"verify-full" description:"Transport security of the database connection"`

	Retry retry.Policy `group:"Retry" namespace:"retry" env-namespace:"RETRY"`
}

// Validate checks the fields required by the configured driver.
func (c Config) Validate() error {
	var missing []string
	var check = func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}

	switch c.Driver {
	case DriverMySQL, DriverPostgres:
		check("host", c.Host != "")
		check("user", c.User != "")
		check("password", c.Password != "")
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535, got %d", c.Port)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	check("name", c.Name != "")

	if len(missing) != 0 {
		return fmt.Errorf("missing database settings: %s", strings.Join(missing, ", "))
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("database pool size must be positive, got %d", c.PoolSize)
	}
	if c.ConnectionTimeout <= 0 {
		return fmt.Errorf("database connection timeout must be positive, got %s", c.ConnectionTimeout)
	}
	if c.Retry.Attempts < 0 || c.Retry.Delay < 0 {
		return fmt.Errorf("database retry policy must not be negative")
	}
	return nil
}

// Address returns host:port, or the database file for sqlite3.
func (c Config) Address() string {
	if c.Driver == DriverSQLite {
		return c.Name
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RetryPolicy returns the configured retry policy, or retry.Default when none was set.
func (c Config) RetryPolicy() retry.Policy {
	if c.Retry.Attempts == 0 {
		return retry.Default
	}
	return c.Retry
}

// DSN renders the data source name understood by the configured driver.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		return c.mysqlDSN(), nil
	case DriverPostgres:
		return c.postgresDSN(), nil
	case DriverSQLite:
		return fmt.Sprintf("file:%s?_busy_timeout=%d", c.Name, c.ConnectionTimeout.Milliseconds()), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func (c Config) mysqlDSN() string {
	var cfg = mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Address()
	cfg.DBName = c.Name
	cfg.Timeout = c.ConnectionTimeout
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	switch c.SSLMode {
	case "require":
		cfg.TLSConfig = "skip-verify"
	case "verify-full":
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}

func (c Config) postgresDSN() string {
	var sslMode = c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	var parts = []string{
		pqOption("host", c.Host),
		pqOption("port", strconv.Itoa(c.Port)),
		pqOption("user", c.User),
		pqOption("password", c.Password),
		pqOption("dbname", c.Name),
		pqOption("sslmode", sslMode),
		pqOption("connect_timeout", strconv.Itoa(int(c.ConnectionTimeout.Seconds()))),
	}
	if c.Schema != "" {
		parts = append(parts, pqOption("search_path", c.Schema))
	}
	return strings.Join(parts, " ")
}

// pqOption renders key='value' in lib/pq's key/value syntax, escaping
// backslashes and single quotes within the value.
func pqOption(key, value string) string {
	return key + "='" + pqEscaper.Replace(value) + "'"
}

var pqEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
