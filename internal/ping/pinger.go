package ping

import (
	"fmt"

	"latency-monitor/internal/config"
	"latency-monitor/internal/models"
)

// New returns the executor for the configured probe method
func New(method string, privileged bool) (models.Executor, error) {
	switch method {
	case config.MethodCommand, "":
		return NewCommandPinger(), nil
	case config.MethodICMP:
		return NewICMPPinger(privileged), nil
	default:
		return nil, fmt.Errorf("unknown probe method %q", method)
	}
}
