package ping

import (
	"context"
	"errors"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"latency-monitor/internal/models"
)

const defaultICMPSize = 56 // 64 bytes - 8 byte ICMP header

// ICMPPinger sends a single echo request in-process instead of running the
// ping binary
type ICMPPinger struct {
	privileged bool
}

// NewICMPPinger creates an in-process pinger. Unprivileged mode uses UDP
// "ping sockets" where the kernel allows them.
func NewICMPPinger(privileged bool) *ICMPPinger {
	return &ICMPPinger{privileged: privileged}
}

// Probe sends one echo request and waits up to timeout for the reply
func (p *ICMPPinger) Probe(ctx context.Context, target string, timeout time.Duration) (outcome models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.Failed(fmt.Sprintf("icmp probe panicked: %v", r))
		}
	}()

	pinger, err := probing.NewPinger(target)
	if err != nil {
		return models.Failed(fmt.Sprintf("failed to create pinger: %v", err))
	}
	defer pinger.Stop()

	pinger.SetPrivileged(p.privileged)
	pinger.Count = 1
	pinger.Size = defaultICMPSize
	pinger.Timeout = timeout

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pinger.RunWithContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Lost()
		}
		return models.Failed(err.Error())
	}

	return outcomeFromStats(pinger.Statistics())
}

func outcomeFromStats(stats *probing.Statistics) models.Outcome {
	if stats == nil {
		return models.Failed("no statistics from pinger")
	}
	if stats.PacketsRecv == 0 {
		return models.Lost()
	}
	return models.Success(float64(stats.AvgRtt) / float64(time.Millisecond))
}
