/*
Package config loads the process configuration from an optional YAML or JSON
file overlaid by AXON_* environment variables.

	AXON_TIMELINE_OUTPUT        timeline file; empty disables capture
	AXON_TIMELINE_MODE          overwrite | append | rotate
	AXON_TIMELINE_SAMPLE_RATE   0..1, default 1
	AXON_TIMELINE_ADAPTIVE      off | fault_only | fault_branch_emit | default
	AXON_TIMELINE_MAX_EVENTS    append-mode truncation
	AXON_TIMELINE_ROTATE_KEEP   rotated files kept
	AXON_TIMELINE_STATS_OUTPUT  sampling stats JSON file
	AXON_TIMELINE_PROJECTIONS   projection output directory
	AXON_SERVICE                service name in projections
	AXON_INSPECTOR              enables the read-only inspector
	AXON_INSPECTOR_ADDR         inspector listen address
	AXON_LOG_LEVEL              debug | info | warn | error
	AXON_LOG_FORMAT             text | json
	AXON_REDIS_URL              mirrors exported timelines to Redis
	AXON_SQLITE_PATH            archives exported timelines in SQLite
*/
package config
