package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// InitLogger cấu hình logrus toàn cục; level sai thì dùng info
func InitLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logrus.WithField("level", level).Warn("unknown LOG_LEVEL, falling back to info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
