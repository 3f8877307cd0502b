package systemd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// installUnit writes the daemon template as the installed unit file and
// points the package paths at a temp directory for the test's duration.
func installUnit(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	unitFile := filepath.Join(tmpDir, "shellgate.service")
	if err := os.WriteFile(unitFile, []byte(DaemonTemplate()), 0644); err != nil {
		t.Fatal(err)
	}

	oldPaths := UnitFilePaths
	oldHash := UnitHashPath
	UnitFilePaths = []string{unitFile}
	UnitHashPath = filepath.Join(tmpDir, "state", "unit-file.sha256")
	t.Cleanup(func() {
		UnitFilePaths = oldPaths
		UnitHashPath = oldHash
	})
	return unitFile
}

func TestRecordThenCheckMatches(t *testing.T) {
	installUnit(t)

	if err := RecordUnitFileHash(); err != nil {
		t.Fatalf("RecordUnitFileHash: %v", err)
	}
	if msg := CheckUnitFileIntegrity(); msg != "" {
		t.Errorf("freshly recorded unit should verify clean, got %q", msg)
	}
}

func TestRecordCreatesStateDir(t *testing.T) {
	installUnit(t)

	if err := RecordUnitFileHash(); err != nil {
		t.Fatalf("RecordUnitFileHash: %v", err)
	}
	data, err := os.ReadFile(UnitHashPath)
	if err != nil {
		t.Fatalf("baseline not written: %v", err)
	}
	if got := strings.TrimSpace(string(data)); len(got) != 64 {
		t.Errorf("baseline = %q, want 64-char hex", got)
	}
}

func TestCheckDetectsStrippedHardening(t *testing.T) {
	unitFile := installUnit(t)
	if err := RecordUnitFileHash(); err != nil {
		t.Fatal(err)
	}

	// Simulate an attacker relaxing the sandbox after install.
	weakened := strings.Replace(DaemonTemplate(), "NoNewPrivileges=true", "NoNewPrivileges=false", 1)
	if weakened == DaemonTemplate() {
		t.Fatal("hardening directive missing from template")
	}
	if err := os.WriteFile(unitFile, []byte(weakened), 0644); err != nil {
		t.Fatal(err)
	}

	msg := CheckUnitFileIntegrity()
	if msg == "" {
		t.Fatal("expected warning for modified unit file")
	}
	if !strings.Contains(msg, "modified since installation") {
		t.Errorf("warning = %q", msg)
	}
}

func TestCheckDetectsRedirectedExecStart(t *testing.T) {
	unitFile := installUnit(t)
	if err := RecordUnitFileHash(); err != nil {
		t.Fatal(err)
	}

	hijacked := strings.Replace(DaemonTemplate(),
		"ExecStart=/usr/local/bin/shellgate serve",
		"ExecStart=/tmp/evil serve", 1)
	if err := os.WriteFile(unitFile, []byte(hijacked), 0644); err != nil {
		t.Fatal(err)
	}

	if msg := CheckUnitFileIntegrity(); msg == "" {
		t.Error("expected warning for redirected ExecStart")
	}
}

func TestCheckSkipsWhenNoUnitInstalled(t *testing.T) {
	oldPaths := UnitFilePaths
	UnitFilePaths = []string{filepath.Join(t.TempDir(), "absent.service")}
	defer func() { UnitFilePaths = oldPaths }()

	if msg := CheckUnitFileIntegrity(); msg != "" {
		t.Errorf("no unit installed should skip, got %q", msg)
	}
}

func TestCheckSkipsWithoutBaseline(t *testing.T) {
	installUnit(t)

	// No RecordUnitFileHash call: first boot after install.
	if msg := CheckUnitFileIntegrity(); msg != "" {
		t.Errorf("missing baseline should skip, got %q", msg)
	}
}

func TestCheckSkipsGarbledBaseline(t *testing.T) {
	installUnit(t)

	if err := os.MkdirAll(filepath.Dir(UnitHashPath), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(UnitHashPath, []byte("not-a-hash\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if msg := CheckUnitFileIntegrity(); msg != "" {
		t.Errorf("garbled baseline should skip, got %q", msg)
	}
}

func TestRecordWithoutUnitFails(t *testing.T) {
	oldPaths := UnitFilePaths
	UnitFilePaths = []string{filepath.Join(t.TempDir(), "absent.service")}
	defer func() { UnitFilePaths = oldPaths }()

	if err := RecordUnitFileHash(); err == nil {
		t.Error("expected error when no unit file exists")
	}
}
