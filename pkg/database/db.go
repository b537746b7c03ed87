package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config selects and locates the backing database
type Config struct {
	Driver   string
	URL      string
	DataPath string
	// Verbose enables gorm's SQL logging
	Verbose bool
}

// ResolveDriver infers the driver from the URL when none was configured
func (c Config) ResolveDriver() string {
	if c.Driver != "" {
		return strings.ToLower(c.Driver)
	}
	switch {
	case c.URL == "":
		return DriverSQLite
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"), strings.Contains(c.URL, "host="):
		return DriverPostgres
	case strings.Contains(c.URL, "@tcp("), strings.Contains(c.URL, "@unix("):
		return DriverMySQL
	}
	return DriverPostgres
}

// MySQLDSN forces the options the labour tables rely on: DATETIME columns
// scanned into time.Time and stored in UTC.
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Open connects to the configured database and migrates the schema
func Open(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		PrepareStmt: false,
		Logger:      logger.Default.LogMode(logger.Silent),
		NowFunc:     func() time.Time { return time.Now().UTC() },
	}
	if cfg.Verbose {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch driver := cfg.ResolveDriver(); driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		})
	case DriverMySQL:
		dsn, err := MySQLDSN(cfg.URL)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		path := cfg.DataPath
		if path == "" {
			path = "labour.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.ResolveDriver() == DriverSQLite {
		// A single connection keeps in-memory databases and write locks coherent.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the labour tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
