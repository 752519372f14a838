package ping

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"latency-monitor/internal/models"
)

// runFunc runs a command and returns its combined output
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandPinger measures latency by running the system ping binary once per probe
type CommandPinger struct {
	goos string
	run  runFunc
}

// NewCommandPinger creates a pinger for the current platform
func NewCommandPinger() *CommandPinger {
	return &CommandPinger{
		goos: runtime.GOOS,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

var rttPatterns = []*regexp.Regexp{
	// Linux/Mac: "time=XX.X ms", Windows: "time=XXms" or "time<1ms"
	regexp.MustCompile(`time[=<]\s*([0-9.]+)\s*ms`),
	regexp.MustCompile(`(?:round-trip|rtt) min/avg/max(?:/(?:stddev|mdev))? = [0-9.]+/([0-9.]+)/`),
}

var lostMarkers = []string{
	"request timed out",
	"destination host unreachable",
	"destination net unreachable",
	"100% packet loss",
	"100.0% packet loss",
	"100% loss",
}

var resolveMarkers = []string{
	"unknown host",
	"cannot resolve",
	"name or service not known",
	"could not find host",
	"temporary failure in name resolution",
	"nodename nor servname",
}

// Probe executes one ping to the target and classifies the result
func (p *CommandPinger) Probe(ctx context.Context, target string, timeout time.Duration) (outcome models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.Failed(fmt.Sprintf("ping panicked: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := p.command(target, timeout)
	output, err := p.run(ctx, name, args...)
	return classify(ctx, string(output), err)
}

// command builds the platform-specific ping invocation
func (p *CommandPinger) command(target string, timeout time.Duration) (string, []string) {
	if p.goos == "windows" {
		ms := max(timeout.Milliseconds(), 1)
		return "ping", []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), target}
	}
	secs := max(int(math.Ceil(timeout.Seconds())), 1)
	return "ping", []string{"-c", "1", "-W", strconv.Itoa(secs), target}
}

func classify(ctx context.Context, output string, err error) models.Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.Lost()
	}

	lower := strings.ToLower(output)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return models.Failed(err.Error())
		}
		if containsAny(lower, resolveMarkers) {
			return models.Failed(firstLine(output))
		}
		return models.Lost()
	}

	if rtt, ok := parsePingOutput(output); ok {
		return models.Success(rtt)
	}
	if containsAny(lower, lostMarkers) {
		return models.Lost()
	}
	if strings.TrimSpace(output) == "" {
		return models.Failed("empty ping output")
	}
	return models.Failed("unparsable ping output: " + firstLine(output))
}

// parsePingOutput parses RTT from ping output
func parsePingOutput(output string) (float64, bool) {
	for _, re := range rttPatterns {
		matches := re.FindStringSubmatch(output)
		if len(matches) > 1 {
			if rtt, err := strconv.ParseFloat(matches[1], 64); err == nil {
				return rtt, true
			}
		}
	}
	return 0, false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
