/*
Package systemd installs vigil as a systemd service.

Install renders a unit file for one watched service and brings it up
with systemctl. The unit runs `vigil monitor` in the foreground and
relies on systemd for process supervision of vigil itself, while vigil
supervises the container. Both restart layers are append-only: systemd
restarts a crashed vigil, vigil recovers a crashed service, and neither
interferes with the other.

# Unit Layout

One unit per watched service, named vigil-<service>.service:

	[Unit]
	Description=vigil watchdog for llm-server
	After=network-online.target docker.service
	Wants=network-online.target

	[Service]
	Type=simple
	ExecStart=/usr/local/bin/vigil monitor --config /etc/vigil/config.yaml
	Restart=always
	RestartSec=5
	StandardOutput=append:/var/log/vigil/vigil-llm-server.service.log
	StandardError=append:/var/log/vigil/vigil-llm-server.service.log

	[Install]
	WantedBy=multi-user.target

Install overwrites any existing unit file, so reinstalling after a
config change is the supported upgrade path. All systemctl invocations
go through a swappable CommandRunner, which tests replace with a
recorder.

Install and Uninstall require root and return ErrPermission otherwise;
callers map that to a non-zero exit.
*/
package systemd
