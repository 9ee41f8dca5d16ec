package db

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStartHealthCheck_Success(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	for i := 0; i < 100; i++ {
		mock.ExpectPing()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := StartHealthCheck(ctx, dbMock, 10*time.Millisecond, zap.NewNop())

	time.Sleep(50 * time.Millisecond)
	cancel()

	if !h.Healthy() {
		t.Error("expected store to be healthy")
	}
}

func TestStartHealthCheck_ErrorLogged(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing().WillReturnError(fmt.Errorf("db fail"))

	var buf bytes.Buffer
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(&buf),
		zapcore.ErrorLevel,
	)
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := StartHealthCheck(ctx, dbMock, 10*time.Millisecond, logger)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	if h.Healthy() {
		t.Error("expected store to be reported unhealthy")
	}
	if out := buf.String(); !strings.Contains(out, "store ping failed") {
		t.Errorf("expected error log, got:\n%s", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStartHealthCheck_CancelBeforeTicker(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	ctx, cancel := context.WithCancel(context.Background())

	h := StartHealthCheck(ctx, dbMock, 100*time.Millisecond, zap.NewNop())
	cancel()

	time.Sleep(50 * time.Millisecond)

	if !h.Healthy() {
		t.Error("expected initial state to be healthy")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls: %v", err)
	}
}
