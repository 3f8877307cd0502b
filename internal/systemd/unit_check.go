package systemd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnitFilePaths are where the daemon unit is looked for, in order.
var UnitFilePaths = []string{
	"/etc/systemd/system/shellgate.service",
	"/etc/systemd/system/shellgate-daemon.service",
}

// UnitHashPath stores the install-time baseline hash of the unit file,
// alongside the daemon's other state under ~/.shellgate.
var UnitHashPath = "/home/shellgate/.shellgate/unit-file.sha256"

// CheckUnitFileIntegrity compares the installed daemon unit against the
// baseline recorded at install time. A modified unit file can strip the
// hardening directives or redirect ExecStart away from the gate, so the
// daemon warns about it at startup. Returns "" when the unit matches,
// when no unit is installed, or when no baseline was ever recorded.
func CheckUnitFileIntegrity() string {
	unitPath, ok := installedUnit()
	if !ok {
		return ""
	}
	baseline, ok := baselineHash()
	if !ok {
		return ""
	}

	data, err := os.ReadFile(unitPath)
	if err != nil {
		return fmt.Sprintf("cannot read unit file %s: %v", unitPath, err)
	}
	if actual := hashBytes(data); actual != baseline {
		return fmt.Sprintf("systemd unit file %s has been modified since installation (expected %s, got %s)",
			unitPath, baseline[:16], actual[:16])
	}
	return ""
}

// RecordUnitFileHash hashes the installed unit file and stores the
// baseline, creating the state directory on first install.
func RecordUnitFileHash() error {
	unitPath, ok := installedUnit()
	if !ok {
		return fmt.Errorf("no unit file found at expected paths")
	}
	data, err := os.ReadFile(unitPath)
	if err != nil {
		return fmt.Errorf("read unit file %s: %w", unitPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(UnitHashPath), 0700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return os.WriteFile(UnitHashPath, []byte(hashBytes(data)+"\n"), 0600)
}

// installedUnit returns the first existing unit file path.
func installedUnit() (string, bool) {
	for _, p := range UnitFilePaths {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// baselineHash loads the recorded baseline. A missing or garbled
// baseline disables checking rather than producing false alarms.
func baselineHash() (string, bool) {
	data, err := os.ReadFile(UnitHashPath)
	if err != nil {
		return "", false
	}
	h := strings.TrimSpace(string(data))
	if len(h) != 64 {
		return "", false
	}
	return h, true
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
