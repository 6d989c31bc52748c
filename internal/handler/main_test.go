package handler

import (
	"os"
	"testing"

	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       "error",
		Environment: "test",
		ServiceName: "shoptrack-admin-test",
	}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
