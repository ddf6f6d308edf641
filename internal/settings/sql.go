package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// settingsRow is the database shape of Settings. Only the row with the
// highest id is ever read.
type settingsRow struct {
	ID                 uint   `gorm:"primaryKey"`
	EnablePackets      bool   `gorm:"not null"`
	PacketStartPattern string `gorm:"not null"`
	PacketEndPattern   string `gorm:"not null"`
	PacketIDPattern    string `gorm:"not null"`
	Strategy           string `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (settingsRow) TableName() string { return "settings" }

func (r settingsRow) settings() Settings {
	return Settings{
		ID:                 r.ID,
		EnablePackets:      r.EnablePackets,
		PacketStartPattern: r.PacketStartPattern,
		PacketEndPattern:   r.PacketEndPattern,
		PacketIDPattern:    r.PacketIDPattern,
		Strategy:           r.Strategy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// SQLStore keeps settings in a relational table through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL connects to sqlite (path) or postgres (dsn), migrates the
// settings table and seeds it when empty.
func OpenSQL(driver, path, dsn string, seed Settings) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create settings dir: %w", err)
			}
		}
		dialector = sqlite.Open(path)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres settings store requires a dsn")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s settings store: %w", driver, err)
	}
	if err := db.AutoMigrate(&settingsRow{}); err != nil {
		return nil, fmt.Errorf("migrate settings table: %w", err)
	}

	s := &SQLStore{db: db}
	if err := s.seed(seed); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Debug().Str("driver", driver).Msg("settings store ready")
	return s, nil
}

func (s *SQLStore) seed(seed Settings) error {
	var count int64
	if err := s.db.Model(&settingsRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	row := settingsRow{
		EnablePackets:      seed.EnablePackets,
		PacketStartPattern: seed.PacketStartPattern,
		PacketEndPattern:   seed.PacketEndPattern,
		PacketIDPattern:    seed.PacketIDPattern,
		Strategy:           seed.Strategy,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	log.Info().Msg("seeded default settings")
	return nil
}

// Get returns the most recent settings row.
func (s *SQLStore) Get(ctx context.Context) (Settings, error) {
	row, err := latest(s.db.WithContext(ctx))
	if err != nil {
		return Settings{}, err
	}
	return row.settings(), nil
}

// Update validates u and applies it to the most recent row.
func (s *SQLStore) Update(ctx context.Context, u Update) (Settings, error) {
	if err := u.Validate(); err != nil {
		return Settings{}, err
	}

	var out Settings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := latest(tx)
		if err != nil {
			return err
		}
		next := u.Apply(row.settings())
		row.EnablePackets = next.EnablePackets
		row.PacketStartPattern = next.PacketStartPattern
		row.PacketEndPattern = next.PacketEndPattern
		row.PacketIDPattern = next.PacketIDPattern
		row.Strategy = next.Strategy
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		out = row.settings()
		return nil
	})
	return out, err
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func latest(db *gorm.DB) (settingsRow, error) {
	var row settingsRow
	if err := db.Order("id desc").First(&row).Error; err != nil {
		return settingsRow{}, fmt.Errorf("load settings: %w", err)
	}
	return row, nil
}
