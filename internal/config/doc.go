// Package config loads the ov7670 CLI configuration from YAML.
//
//	serial:
//	  port: /dev/ttyUSB0
//	  baud_rate: 1500000
//	  read_timeout: 1s
//	camera:
//	  resolution: qvga
//	  init_registers: qvga_rgb565.regs
//	stream:
//	  min_interval: 50ms
//	server:
//	  listen: ":8080"
//	  format: jpeg
//
// Command-line flags override file values.
package config
