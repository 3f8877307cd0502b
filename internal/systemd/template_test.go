package systemd

import (
	"strings"
	"testing"
)

func TestDaemonTemplate(t *testing.T) {
	tmpl := DaemonTemplate()

	// Must be a valid systemd unit with required sections.
	for _, section := range []string{"[Unit]", "[Service]", "[Install]"} {
		if !strings.Contains(tmpl, section) {
			t.Errorf("template missing section %s", section)
		}
	}

	// Must run as the shellgate user.
	if !strings.Contains(tmpl, "User=shellgate") {
		t.Error("template missing User=shellgate")
	}

	// Must launch the daemon.
	if !strings.Contains(tmpl, "shellgate serve") {
		t.Error("template missing shellgate serve command")
	}

	// Must allow writes to the state and tamper log directories.
	for _, dir := range []string{"/home/shellgate/.shellgate", "/var/log/shellgate"} {
		if !strings.Contains(tmpl, "ReadWritePaths="+dir) {
			t.Errorf("template missing ReadWritePaths for %s", dir)
		}
	}

	// Must have security hardening directives.
	for _, directive := range []string{
		"NoNewPrivileges=true",
		"PrivateTmp=true",
		"ProtectSystem=strict",
		"ProtectHome=read-only",
		"ProtectKernelTunables=true",
		"RestrictNamespaces=true",
	} {
		if !strings.Contains(tmpl, directive) {
			t.Errorf("template missing security directive %s", directive)
		}
	}
}
