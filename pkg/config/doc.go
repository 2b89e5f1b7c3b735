/*
Package config loads and persists Vigil's on-disk configuration.

One watchdog instance owns one config file, /etc/vigil/config.yaml by
default. The file carries the watched service spec plus log, metrics, and
supervisor tuning. The install command writes it from CLI flags; monitor
and the one-shot commands read it back.

# Usage

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	spec := cfg.Service

# File Format

	service:
	  name: llm-server
	  image: ghcr.io/example/llm-server:latest
	  port: 8000
	  gpus: all
	  checkInterval: 30s
	log:
	  level: info
	  json: true
	  file: /var/log/vigil/llm-server.log
	metrics:
	  addr: 127.0.0.1:9090
	supervisor:
	  backoffEnabled: false

Durations use Go notation ("30s", "2m"). Unset fields take package
defaults via Normalize; Load normalizes before returning.

# See Also

  - pkg/types for the service spec fields and their defaults
  - cmd/vigil for the flags that override file values
*/
package config
