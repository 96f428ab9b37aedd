// Package config loads the optional ifconf configuration file.
//
// # Overview
//
// The file is HCL. Every setting has a default, so a missing file is not an
// error. String attributes may reference the environment through the env
// object:
//
//	log_level = "info"
//	log_json  = false
//
//	autoconf {
//	  socket         = "${env.RUNTIME_DIRECTORY}/autoconf.sock"
//	  timeout        = "30s"
//	  metrics_listen = ":9109"
//	  dhcp_timeout   = "15s"
//	  ra_timeout     = "10s"
//	}
//
//	output {
//	  format = "text" # text, json or yaml
//	  color  = "auto" # auto, always or never
//	}
package config
