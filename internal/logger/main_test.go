package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PagodaAdmin/PagodaAdmin/internal/logger"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name       string
		cfg        logger.Log
		wantErr    error
		wantErrMsg string
		wantOutput bool
		wantJSON   bool
	}{
		{
			name:    "unknown level",
			cfg:     logger.Log{LogLevel: "loud", ServiceName: "test", AppName: "test"},
			wantErrMsg: "loglevel loud is not supported",
		},
		{
			name:    "service name missing",
			cfg:     logger.Log{LogLevel: "info", AppName: "test"},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name:    "app name missing",
			cfg:     logger.Log{LogLevel: "info", ServiceName: "test"},
			wantErr: logger.ErrAppNameIsEmpty,
		},
		{
			name: "nothing enabled",
			cfg:  logger.Log{LogLevel: "", ServiceName: "test", AppName: "test"},
		},
		{
			name:       "console json",
			cfg:        logger.Log{LogLevel: "info", ServiceName: "test", AppName: "test", Console: logger.Console{Enabled: true}},
			wantOutput: true,
			wantJSON:   true,
		},
		{
			name: "console writer",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "test",
				Console: logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			wantOutput: true,
		},
		{
			name: "trace with caller",
			cfg: logger.Log{
				LogLevel: "trace", ServiceName: "test", AppName: "test", ReportCaller: true,
				Console: logger.Console{Enabled: true},
			},
			wantOutput: true,
			wantJSON:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := capture(t, tc.cfg)

			if tc.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErrMsg)

				return
			}

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)

			if !tc.wantOutput {
				assert.Empty(t, out)

				return
			}

			require.NotEmpty(t, out)

			if tc.wantJSON {
				for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
					var entry map[string]any
					require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
					assert.Equal(t, "test", entry["app"])
				}
			}
		})
	}
}

func TestInitFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	cfg := logger.Log{
		LogLevel:    "debug",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Error:   logger.RollingFile{Name: "error.log", MaxSize: 1},
			Info:    logger.RollingFile{Name: "info.log", MaxSize: 1},
			Trace:   logger.RollingFile{Name: "trace.log", MaxSize: 1},
			Warn:    logger.RollingFile{Name: "warn.log", MaxSize: 1},
		},
	}

	require.NoError(t, logger.Init(cfg))
	t.Cleanup(func() { log.Logger = zerolog.Nop() })

	log.Info().Msg("info line")
	log.Warn().Msg("warn line")
	log.Error().Err(errors.New("boom")).Msg("error line") //nolint:err113

	for file, want := range map[string]string{
		"info.log":  "info line",
		"warn.log":  "warn line",
		"error.log": "error line",
	} {
		b, err := os.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err, file)
		assert.Contains(t, string(b), want, file)
	}
}

func TestLevelWriter(t *testing.T) {
	var trace, info, warn, errs bytes.Buffer

	lw := &logger.LevelWriter{
		ErrorWriter: &errs,
		InfoWriter:  &info,
		TraceWriter: &trace,
		WarnWriter:  &warn,
	}

	levels := map[zerolog.Level]*bytes.Buffer{
		zerolog.TraceLevel: &trace,
		zerolog.DebugLevel: &info,
		zerolog.InfoLevel:  &info,
		zerolog.NoLevel:    &info,
		zerolog.WarnLevel:  &warn,
		zerolog.ErrorLevel: &errs,
		zerolog.FatalLevel: &errs,
		zerolog.PanicLevel: &errs,
	}

	for level, buf := range levels {
		buf.Reset()

		n, err := lw.WriteLevel(level, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, "x", buf.String(), level.String())
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("x"))
	require.NoError(t, err)
	assert.Zero(t, n)

	// missing writers swallow output
	n, err = (&logger.LevelWriter{}).WriteLevel(zerolog.ErrorLevel, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func capture(t *testing.T, cfg logger.Log) (string, error) {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	os.Stderr = w

	initErr := logger.Init(cfg)
	if initErr == nil {
		log.Info().Msg("this info message should be seen")
		log.Error().Err(errors.New("a test error")).Msg("this error message should be seen") //nolint:err113
	}

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	t.Cleanup(func() { log.Logger = zerolog.Nop() })

	return <-outC, initErr
}
