package rules

// DefaultSets are the built-in command rule sets. The dangerous set wins
// over the safe set when a token appears in both (wget and curl do).
var DefaultSets = Sets{
	Safe: []string{
		// File system operations
		"ls", "dir", "pwd", "cd", "mkdir", "rmdir", "touch",
		// File viewing and searching
		"cat", "head", "tail", "less", "more", "grep", "find", "locate",
		"awk", "sed",
		// System information
		"whoami", "hostname", "uname", "uptime", "ps", "top", "htop",
		// Network related
		"ping", "curl", "wget", "netstat", "ss", "ip", "ifconfig",
		// Package management (read-only operations)
		"dpkg", "rpm", "pacman", "apt", "yum", "brew",
		// Debug and development tools
		"file", "stat", "du", "diff", "cmp", "hexdump", "od", "strings",
		"tree", "ldd", "nm", "objdump", "readelf", "size",
		"md5sum", "sha256sum", "sha1sum",
		// Text processing
		"sort", "uniq", "cut", "tr", "column", "paste", "join", "comm",
		"tac", "rev",
		// Other safe commands
		"echo", "date", "cal", "bc", "wc", "which", "whereis", "type",
		"alias", "history", "clear",
		// Environment variables
		"env", "export", "set", "printenv",
		// Compression and decompression
		"tar", "gzip", "gunzip", "zip", "unzip",
		// Language tools considered safe for debugging
		"python3", "python", "node", "npm", "pip",
	},
	Dangerous: []string{
		"rm", "del", "format", "dd", "mkfs", "fdisk", "parted",
		"shutdown", "reboot", "halt", "poweroff",
		"useradd", "userdel", "usermod", "groupadd", "groupdel",
		"chmod", "chown", "chgrp",
		"sudo", "su",
		"kill", "killall", "pkill", "xkill",
		"mount", "umount", "fstab",
		"iptables", "firewall-cmd", "ufw",
		"crontab", "at", "systemctl", "service",
		"passwd", "ssh-keygen", "openssl",
		"mysql", "psql", "sqlite3",
		// Version control may modify code
		"git", "svn", "hg",
		// Downloads may be unsafe
		"wget", "curl",
		// File transfer
		"scp", "rsync", "sftp",
		// Network connections
		"ssh", "telnet", "nc", "netcat",
		// Shell execution
		"bash", "sh", "zsh", "fish",
		// Editors
		"vim", "nano", "emacs",
		// Network probing
		"nmap", "traceroute", "dig", "nslookup",
	},
}
