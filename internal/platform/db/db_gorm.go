// Package db はgormによるデータベース接続（Postgres、またはSQLiteへのフォールバック）を提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	// connectTimeout はPostgresへの接続を諦めるまでの時間です。
	connectTimeout = 60 * time.Second
	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second
)

// ErrNotConfigured はPostgresもSQLiteも設定されていない場合に返されます。
var ErrNotConfigured = errors.New("database is not configured")

// Config はデータベースの接続設定を保持します。
type Config struct {
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	InstanceName  string // Cloud SQLのインスタンス接続名（設定時はUnixソケットで接続）
	SSLMode       string
	SQLitePath    string // Postgresが未設定の場合に使うSQLiteファイル
	RunMigrations bool
}

// Opener はDSNからDBを開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		InstanceName:  os.Getenv("INSTANCE_CONNECTION_NAME"),
		SSLMode:       os.Getenv("DB_SSLMODE"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// usePostgres はPostgresの接続先が設定されているかを返します。
func (c Config) usePostgres() bool {
	return c.Host != "" || c.InstanceName != ""
}

// BuildDSN はPostgres用のDSN文字列を生成します。InstanceNameが設定されていればCloud SQLのUnixソケットを使います。
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{}
	if cfg.InstanceName != "" {
		parts = append(parts, "host="+quoteDSNValue("/cloudsql/"+cfg.InstanceName))
	} else {
		parts = append(parts, "host="+quoteDSNValue(cfg.Host))
		if cfg.Port != "" {
			parts = append(parts, "port="+quoteDSNValue(cfg.Port))
		}
	}
	parts = append(parts,
		"user="+quoteDSNValue(cfg.User),
		"password="+quoteDSNValue(cfg.Password),
		"dbname="+quoteDSNValue(cfg.Name),
		"sslmode="+quoteDSNValue(sslmode),
		"TimeZone=UTC",
	)
	return strings.Join(parts, " ")
}

// quoteDSNValue はkeyword/value形式のDSNで値が1トークンとして解釈されるようにします。
// 空文字・空白・引用符・バックスラッシュを含む場合のみシングルクォートで囲み、' と \ をエスケープします。
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// ConnectWithRetry は接続できるまでretryInterval間隔で再試行し、timeoutを過ぎたらエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に応じてPostgresまたはSQLiteに接続し、必要ならmodelsをマイグレーションします。
// どちらも設定されていなければ ErrNotConfigured を返します。
func Open(cfg Config, models ...any) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch {
	case cfg.usePostgres():
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		})
		if err != nil {
			return nil, err
		}
		slog.Info("connected to postgres", "host", cfg.Host, "instance", cfg.InstanceName, "db", cfg.Name)
	case cfg.SQLitePath != "":
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		// SQLiteはローカル用途なので常にスキーマを合わせる
		cfg.RunMigrations = true
		slog.Info("using sqlite database", "path", cfg.SQLitePath)
	default:
		return nil, ErrNotConfigured
	}

	if cfg.RunMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}
