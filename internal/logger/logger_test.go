package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG": DEBUG, "debug": DEBUG, "WARN": WARN, "warning": WARN,
		"ERROR": ERROR, "": INFO, "chatty": INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLoggerWritesFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: INFO, Output: &buf})
	if err != nil {
		t.Fatalf("new logger failed: %v", err)
	}

	l.Debug("hidden")
	l.WithFields(F("request", "r1")).Info("Task created", F("id", 7))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry written at INFO level: %s", out)
	}
	if !strings.Contains(out, "INFO logger_test.go:") {
		t.Fatalf("expected caller to be the test file: %s", out)
	}
	if !strings.Contains(out, "Task created | request=r1 id=7") {
		t.Fatalf("fields missing: %s", out)
	}
}

func TestLoggerWritesFileAndRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bizflow.log")
	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 64, MaxBackups: 2})
	if err != nil {
		t.Fatalf("new logger failed: %v", err)
	}
	defer l.Close()

	for i := 0; i < 5; i++ {
		l.Info("a line long enough to push the file past its limit")
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated backup: %v", err)
	}
	if _, err := os.Stat(path + ".3"); err == nil {
		t.Fatal("rotation kept more backups than configured")
	}
}

func TestGlobalFunctionsAreNoopsWithoutInit(t *testing.T) {
	SetGlobal(nil)
	Info("nobody listens")
	if WithFields(F("k", "v")) != nil {
		t.Fatal("expected nil logger without global")
	}

	var buf bytes.Buffer
	l, _ := New(Config{Level: DEBUG, Output: &buf})
	SetGlobal(l)
	defer SetGlobal(nil)

	Warn("now visible", F("n", 1))
	if !strings.Contains(buf.String(), "WARN logger_test.go:") {
		t.Fatalf("global entry missing or wrong caller: %s", buf.String())
	}
}
