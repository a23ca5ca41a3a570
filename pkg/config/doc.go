// Package config loads the supply configuration from YAML.
//
// A configuration describes the channels and their static limits, the
// storage medium used for list files, the list file format and the
// real-time loop period:
//
//	channels:
//	  - voltage_limit: 40
//	    current_limit: 5
//	    power_limit: 155
//	storage:
//	  root: /var/lib/psu/lists
//	  separator: ","
//	  no_value: "="
//	tick_period: 1ms
//	event_log: /var/log/psu/lists.elog
//	state_file: /var/lib/psu/state.json
//
// An empty storage root means the storage option is not installed.
package config
