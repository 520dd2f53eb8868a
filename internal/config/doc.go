// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every field is optional; LoadWithDefaults fills in the engine's defaults.
//
//	instance:
//	  id: picks-local
//	feed:
//	  interval: 1s
//	  seed: 0
//	flash:
//	  ttl: 500ms
//	selection:
//	  default_stake: 10
//	odds:
//	  horizon: 168h
//	server:
//	  port: 8080
//	  stream_buffer: 16
//	  stream_max_buffer: 1024
//	log:
//	  level: info
//	assets: []   # empty = built-in catalog
package config
