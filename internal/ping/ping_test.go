package ping

import (
	"context"
	"os/exec"
	"testing"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/stretchr/testify/require"

	"latency-monitor/internal/config"
	"latency-monitor/internal/models"
)

func TestParsePingOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected float64
		ok       bool
	}{
		{
			name:     "macOS individual response",
			output:   "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms",
			expected: 44.347,
			ok:       true,
		},
		{
			name:     "macOS summary line",
			output:   "round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms",
			expected: 44.347,
			ok:       true,
		},
		{
			name:     "Linux summary line",
			output:   "rtt min/avg/max/mdev = 12.3/12.3/12.3/0.000 ms",
			expected: 12.3,
			ok:       true,
		},
		{
			name:     "BusyBox summary line",
			output:   "round-trip min/avg/max = 12.3/12.3/12.3 ms",
			expected: 12.3,
			ok:       true,
		},
		{
			name:     "Windows response",
			output:   "Reply from 8.8.8.8: bytes=32 time=15ms TTL=118",
			expected: 15,
			ok:       true,
		},
		{
			name:     "Windows sub-millisecond",
			output:   "Reply from 8.8.8.8: bytes=32 time<1ms TTL=118",
			expected: 1,
			ok:       true,
		},
		{
			name:   "No match",
			output: "ping: unknown host example.invalid",
		},
		{
			name:   "Empty output",
			output: "",
		},
		{
			name: "Multiple lines with macOS output",
			output: `PING 8.8.8.8 (8.8.8.8): 56 data bytes
64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms

--- 8.8.8.8 ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms`,
			expected: 44.347,
			ok:       true,
		},
		{
			name:     "High precision RTT",
			output:   "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=123.456 ms",
			expected: 123.456,
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := parsePingOutput(tt.output)
			if ok != tt.ok || result != tt.expected {
				t.Errorf("parsePingOutput(%q) = %v, %v, want %v, %v", tt.output, result, ok, tt.expected, tt.ok)
			}
		})
	}
}

// exitError produces a real *exec.ExitError with the given code
func exitError(t *testing.T, code string) error {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	err = exec.Command(sh, "-c", "exit "+code).Run()
	require.Error(t, err)
	return err
}

func TestCommandPingerClassification(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		err     func(t *testing.T) error
		kind    models.OutcomeKind
		latency float64
	}{
		{
			name:    "reply",
			output:  "64 bytes from 1.1.1.1: icmp_seq=1 ttl=57 time=9.81 ms",
			kind:    models.OutcomeSuccess,
			latency: 9.81,
		},
		{
			name:   "no reply exits non-zero",
			output: "1 packets transmitted, 0 received, 100% packet loss",
			err:    func(t *testing.T) error { return exitError(t, "1") },
			kind:   models.OutcomeLost,
		},
		{
			name:   "unresolvable host",
			output: "ping: nosuch.invalid: Name or service not known",
			err:    func(t *testing.T) error { return exitError(t, "2") },
			kind:   models.OutcomeError,
		},
		{
			name: "binary missing",
			err:  func(t *testing.T) error { return exec.ErrNotFound },
			kind: models.OutcomeError,
		},
		{
			name: "empty output with success exit",
			kind: models.OutcomeError,
		},
		{
			name:   "windows timeout with success exit",
			output: "Request timed out.",
			kind:   models.OutcomeLost,
		},
		{
			name:   "garbage output",
			output: "something unexpected",
			kind:   models.OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var runErr error
			if tt.err != nil {
				runErr = tt.err(t)
			}
			p := &CommandPinger{
				goos: "linux",
				run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
					return []byte(tt.output), runErr
				},
			}

			got := p.Probe(context.Background(), "1.1.1.1", time.Second)
			require.Equal(t, tt.kind, got.Kind, "outcome: %+v", got)
			require.Equal(t, tt.latency, got.LatencyMS)
		})
	}
}

func TestCommandPingerTimeoutIsLost(t *testing.T) {
	p := &CommandPinger{
		goos: "linux",
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	start := time.Now()
	got := p.Probe(context.Background(), "192.0.2.1", 20*time.Millisecond)
	require.Equal(t, models.OutcomeLost, got.Kind)
	require.Less(t, time.Since(start), time.Second)
}

func TestCommandPingerRecoversPanics(t *testing.T) {
	p := &CommandPinger{
		goos: "linux",
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			panic("boom")
		},
	}

	got := p.Probe(context.Background(), "1.1.1.1", time.Second)
	require.Equal(t, models.OutcomeError, got.Kind)
	require.Contains(t, got.Message, "boom")
}

func TestCommandArguments(t *testing.T) {
	unix := &CommandPinger{goos: "linux"}
	name, args := unix.command("8.8.8.8", 1500*time.Millisecond)
	require.Equal(t, "ping", name)
	require.Equal(t, []string{"-c", "1", "-W", "2", "8.8.8.8"}, args)

	_, args = unix.command("8.8.8.8", 100*time.Millisecond)
	require.Equal(t, []string{"-c", "1", "-W", "1", "8.8.8.8"}, args)

	windows := &CommandPinger{goos: "windows"}
	_, args = windows.command("8.8.8.8", 1500*time.Millisecond)
	require.Equal(t, []string{"-n", "1", "-w", "1500", "8.8.8.8"}, args)
}

func TestOutcomeFromStats(t *testing.T) {
	require.Equal(t, models.OutcomeError, outcomeFromStats(nil).Kind)
	require.Equal(t, models.OutcomeLost, outcomeFromStats(&probing.Statistics{PacketsSent: 1}).Kind)

	got := outcomeFromStats(&probing.Statistics{PacketsSent: 1, PacketsRecv: 1, AvgRtt: 12500 * time.Microsecond})
	require.Equal(t, models.OutcomeSuccess, got.Kind)
	require.InDelta(t, 12.5, got.LatencyMS, 1e-9)
}

func TestNew(t *testing.T) {
	e, err := New(config.MethodCommand, false)
	require.NoError(t, err)
	require.IsType(t, &CommandPinger{}, e)

	e, err = New(config.MethodICMP, true)
	require.NoError(t, err)
	require.IsType(t, &ICMPPinger{}, e)

	_, err = New("carrier-pigeon", false)
	require.Error(t, err)
}

func TestCommandPingerLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ping integration test in short mode")
	}

	if _, err := exec.LookPath("ping"); err != nil {
		t.Skip("ping binary not available on PATH")
	}

	result := NewCommandPinger().Probe(context.Background(), "127.0.0.1", 2*time.Second)
	t.Logf("Ping result: %+v", result)

	if result.Kind != models.OutcomeSuccess {
		t.Skipf("loopback ping not permitted in this environment: %v", result)
	}
	require.GreaterOrEqual(t, result.LatencyMS, 0.0)

	result = NewCommandPinger().Probe(context.Background(), "invalid.host.that.does.not.exist", 2*time.Second)
	require.NotEqual(t, models.OutcomeSuccess, result.Kind)
	require.Zero(t, result.LatencyMS)
}
