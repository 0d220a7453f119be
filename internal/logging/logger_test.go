package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLoggingState() {
	CloseAll()
	CloseAudit()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
	configLoaded = false
	auditLogger = nil
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".folengine")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true, "session": true, "parse": true, "normalize": true,
				"clausify": true, "unify": true, "prolog": true, "sat": true,
				"smt": true, "asp": true, "dispatch": true, "model": true, "tools": true
			}
		}
	}`
	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Error("expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategorySession, CategoryParse, CategoryNormalize,
		CategoryClausify, CategoryUnify, CategoryProlog, CategorySAT,
		CategorySMT, CategoryASP, CategoryDispatch, CategoryModel, CategoryTools,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("info message for %s", cat)
		logger.Debug("debug message for %s", cat)
		logger.Warn("warn message for %s", cat)
		logger.Error("error message for %s", cat)
	}

	Boot("convenience boot log")
	Session("convenience session log")
	Parse("convenience parse log")
	Dispatch("convenience dispatch log")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".folengine", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("no log file found for category: %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_disabled")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".folengine")
	os.MkdirAll(configDir, 0755)
	configContent := `{"logging": {"level": "debug", "debug_mode": false, "categories": {"boot": true}}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("expected debug mode to be disabled (production mode)")
	}

	for _, cat := range []Category{CategoryBoot, CategoryParse, CategorySAT} {
		if IsCategoryEnabled(cat) {
			t.Errorf("category %s should be disabled when debug_mode=false", cat)
		}
	}

	Boot("should not be logged")
	logger := Get(CategoryBoot)
	logger.Info("should not be logged")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".folengine", "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("expected no log files in production mode, found %d", len(entries))
		}
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".folengine")
	os.MkdirAll(configDir, 0755)
	configContent := `{
		"logging": {
			"level": "debug", "debug_mode": true,
			"categories": {"boot": true, "sat": true, "asp": false, "model": false}
		}
	}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !IsCategoryEnabled(CategorySAT) {
		t.Error("sat should be enabled")
	}
	if IsCategoryEnabled(CategoryASP) {
		t.Error("asp should be disabled")
	}
	if IsCategoryEnabled(CategoryModel) {
		t.Error("model should be disabled")
	}
	if !IsCategoryEnabled(CategoryProlog) {
		t.Error("prolog (not in config) should default to enabled")
	}

	Boot("should be logged")
	SAT("should be logged")
	ASP("should not be logged")
	Model("should not be logged")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".folengine", "logs")
	entries, _ := os.ReadDir(logsPath)

	var hasBoot, hasSAT, hasASP, hasModel bool
	for _, e := range entries {
		name := e.Name()
		hasBoot = hasBoot || strings.Contains(name, "_boot.log")
		hasSAT = hasSAT || strings.Contains(name, "_sat.log")
		hasASP = hasASP || strings.Contains(name, "_asp.log")
		hasModel = hasModel || strings.Contains(name, "_model.log")
	}
	if !hasBoot {
		t.Error("expected boot log file")
	}
	if !hasSAT {
		t.Error("expected sat log file")
	}
	if hasASP {
		t.Error("should not have asp log file (disabled)")
	}
	if hasModel {
		t.Error("should not have model log file (disabled)")
	}
}

func TestTimerLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_timer")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".folengine")
	os.MkdirAll(configDir, 0755)
	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetLoggingState()
	Initialize(tempDir)

	timer := StartTimer(CategoryDispatch, "testOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("timer should have recorded non-zero duration")
	}

	CloseAll()
	CloseAudit()
}
