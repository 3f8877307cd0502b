package systemd

// DaemonTemplate returns the systemd unit for the shellgate daemon.
// Installed as shellgate.service; the daemon serves the HTTP API and
// SSE confirmation stream on the configured listen address.
func DaemonTemplate() string {
	return `[Unit]
Description=Shellgate command safety daemon
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
User=shellgate
ExecStart=/usr/local/bin/shellgate serve
Restart=on-failure
RestartSec=2
NoNewPrivileges=true
PrivateTmp=true
ProtectSystem=strict
ProtectHome=read-only
ProtectKernelTunables=true
RestrictNamespaces=true
ReadWritePaths=/home/shellgate/.shellgate
ReadWritePaths=/var/log/shellgate

[Install]
WantedBy=multi-user.target
`
}
