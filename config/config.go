package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/devflow-backend/models"
)

var DB *gorm.DB

const (
	DefaultTagsPageSize         = 20
	DefaultTagQuestionsPageSize = 10
)

type Settings struct {
	Port                 string
	DBDriver             string
	DBPath               string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSSLMode            string
	AuthSecret           string
	AuthIssuer           string
	CORSOrigins          []string
	TagsPageSize         int
	TagQuestionsPageSize int
	LogLevel             string
}

// Load đọc cấu hình từ biến môi trường (sau khi godotenv đã nạp .env)
func Load() Settings {
	s := Settings{
		Port:                 getEnv("PORT", "8080"),
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		DBPath:               getEnv("DB_PATH", "devflow.db"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		AuthSecret:           os.Getenv("AUTH_SECRET"),
		AuthIssuer:           os.Getenv("AUTH_ISSUER"),
		TagsPageSize:         getEnvInt("TAGS_PAGE_SIZE", DefaultTagsPageSize),
		TagQuestionsPageSize: getEnvInt("TAG_QUESTIONS_PAGE_SIZE", DefaultTagQuestionsPageSize),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			s.CORSOrigins = append(s.CORSOrigins, origin)
		}
	}
	return s
}

func (s Settings) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode,
	)
}

// Open mở kết nối theo DB_DRIVER: postgres (mặc định) hoặc sqlite cho môi trường dev/test
func Open(s Settings) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch s.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(s.DBPath)
	case "postgres", "":
		dialector = postgres.Open(s.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pooling
	if s.DBDriver == "sqlite" {
		// mỗi kết nối :memory: là một DB riêng
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("autoMigrate: %w", err)
	}
	return db, nil
}

func InitDB(s Settings) {
	db, err := Open(s)
	if err != nil {
		logrus.WithError(err).WithField("driver", s.DBDriver).Fatal("cannot connect to database")
	}

	DB = db
	logrus.WithField("driver", s.DBDriver).Info("database connected & migrated successfully")
}

// Migrate tạo bảng users, questions, tags và bảng nối question_tags
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Question{},
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
