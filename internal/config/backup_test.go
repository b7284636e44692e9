package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBackupUserConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "amanignore")
	configPath := filepath.Join(configDir, "config.yaml")

	t.Run("no config exists", func(t *testing.T) {
		backupPath, err := BackupUserConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath != "" {
			t.Errorf("expected empty backup path for non-existent config, got %s", backupPath)
		}
	})

	t.Run("backup existing config", func(t *testing.T) {
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		content := "version: 1\nrules:\n  file: .ignore\n"
		if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		backupPath, err := BackupUserConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(filepath.Base(backupPath), "config.yaml.bak.") {
			t.Errorf("unexpected backup name: %s", backupPath)
		}

		got, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("failed to read backup: %v", err)
		}
		if string(got) != content {
			t.Errorf("backup content mismatch:\ngot: %s\nwant: %s", got, content)
		}
	})
}

func TestListUserConfigBackups_NoDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "missing"))

	backups, err := ListUserConfigBackups()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %v", backups)
	}
}

func TestBackupUserConfig_Prunes(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "amanignore")
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(configPath, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	// Given: older backups already on disk
	for _, ts := range []string{"20240101-000000.000", "20240102-000000.000", "20240103-000000.000", "20240104-000000.000"} {
		if err := os.WriteFile(configPath+BackupSuffix+"."+ts, []byte("old"), 0o644); err != nil {
			t.Fatalf("failed to write backup: %v", err)
		}
	}

	// When: a new backup is taken
	newest, err := BackupUserConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Then: only the newest MaxBackups remain, newest first
	backups, err := ListUserConfigBackups()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("expected %d backups, got %d: %v", MaxBackups, len(backups), backups)
	}
	if backups[0] != newest {
		t.Errorf("expected newest backup first, got %s", backups[0])
	}
	if strings.HasSuffix(backups[len(backups)-1], "20240102-000000.000") == false {
		t.Errorf("unexpected oldest kept backup: %s", backups[len(backups)-1])
	}
}
