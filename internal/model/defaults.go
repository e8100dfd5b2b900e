package model

import "time"

// Shared defaults used by both the dashboard and stub binaries.
const (
	DefaultBackendURL    = "http://localhost:5000"
	DefaultPerPage       = 10
	DefaultPollInterval  = 5 * time.Second
	DefaultPollTimeout   = 5 * time.Minute
	DefaultToastDuration = 5 * time.Second
	DefaultQuery         = "is:pr is:open archived:false author:openshift-pr-manager[bot]"
)
