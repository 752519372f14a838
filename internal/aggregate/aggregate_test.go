package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"latency-monitor/internal/models"
)

func TestAggregateExample(t *testing.T) {
	records := []models.Outcome{models.Success(10), models.Lost(), models.Success(30)}

	got := Aggregate(records, 3)
	require.Len(t, got, 1)
	require.Equal(t, 1.5, got[0].MidpointSec)
	require.Equal(t, 20.0, got[0].MeanLatencyMS)
	require.InDelta(t, 100.0/3, got[0].PacketLossPct, 1e-9)
	require.Equal(t, 3, got[0].Count)
	require.Equal(t, 2, got[0].Successes)
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, 60)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAggregateInvalidSize(t *testing.T) {
	require.Nil(t, Aggregate([]models.Outcome{models.Lost()}, 0))

	_, err := AggregateChecked([]models.Outcome{models.Lost()}, -1)
	require.ErrorIs(t, err, ErrInvalidIntervalSize)

	got, err := AggregateChecked([]models.Outcome{models.Lost()}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestAggregateAllLostChunk(t *testing.T) {
	records := []models.Outcome{
		models.Success(5), models.Success(7),
		models.Lost(), models.Failed("no route"),
	}

	got := Aggregate(records, 2)
	require.Len(t, got, 2)
	require.Equal(t, 6.0, got[0].MeanLatencyMS)
	require.Equal(t, 0.0, got[0].PacketLossPct)
	require.Equal(t, 0.0, got[1].MeanLatencyMS)
	require.Equal(t, 100.0, got[1].PacketLossPct)
}

func TestAggregateTrailingPartialChunk(t *testing.T) {
	records := make([]models.Outcome, 7)
	for i := range records {
		records[i] = models.Success(float64(i))
	}

	got := Aggregate(records, 3)
	require.Len(t, got, 3)
	require.Equal(t, []int{0, 3, 6}, []int{got[0].Start, got[1].Start, got[2].Start})
	require.Equal(t, 1, got[2].Count)
	require.Equal(t, 6.5, got[2].MidpointSec)
	require.Equal(t, 6.0, got[2].MeanLatencyMS)
}

func randomLog(r *rand.Rand, n int) []models.Outcome {
	out := make([]models.Outcome, n)
	for i := range out {
		switch r.Intn(4) {
		case 0:
			out[i] = models.Lost()
		case 1:
			out[i] = models.Failed("x")
		default:
			out[i] = models.Success(r.Float64() * 300)
		}
	}
	return out
}

func TestAggregateCoversEveryRecordOnce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 0; n < 130; n += 13 {
		for _, size := range []int{1, 2, 5, 60, 200} {
			records := randomLog(r, n)
			got := Aggregate(records, size)

			next := 0
			for _, iv := range got {
				require.Equal(t, next, iv.Start, "gap or overlap at n=%d size=%d", n, size)
				require.Positive(t, iv.Count)
				require.LessOrEqual(t, iv.Count, size)
				if iv.Successes == 0 {
					require.Equal(t, 0.0, iv.MeanLatencyMS)
					require.Equal(t, 100.0, iv.PacketLossPct)
				}
				next += iv.Count
			}
			require.Equal(t, n, next)
		}
	}
}

func TestAggregateDeterministic(t *testing.T) {
	records := randomLog(rand.New(rand.NewSource(42)), 500)
	first := Aggregate(records, 60)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Aggregate(records, 60))
	}
}

func TestScaleMidpoints(t *testing.T) {
	in := Aggregate([]models.Outcome{models.Success(1), models.Success(2)}, 2)
	out := ScaleMidpoints(in, 500*time.Millisecond)
	require.Equal(t, 0.5, out[0].MidpointSec)
	require.Equal(t, 1.0, in[0].MidpointSec, "input must not be modified")
}

func TestSummarize(t *testing.T) {
	records := []models.Outcome{
		models.Success(10), models.Success(20), models.Success(30), models.Success(250),
		models.Lost(), models.Failed("boom"),
	}

	s := Summarize("1.1.1.1", records, 200)
	require.Equal(t, "1.1.1.1", s.Target)
	require.Equal(t, 6, s.Total)
	require.Equal(t, 4, s.Successes)
	require.Equal(t, 1, s.Lost)
	require.Equal(t, 1, s.Errors)
	require.Equal(t, 10.0, s.MinRTT)
	require.Equal(t, 250.0, s.MaxRTT)
	require.Equal(t, 77.5, s.AvgRTT)
	require.Equal(t, 25.0, s.MedianRTT)
	require.InDelta(t, 217.0, s.P95RTT, 1e-9)
	require.InDelta(t, 100.0/3, s.LossPct, 1e-9)
	require.Equal(t, 1, s.AboveThreshold)
}

func TestSummarizeNoSuccesses(t *testing.T) {
	s := Summarize("x", []models.Outcome{models.Lost(), models.Lost()}, 0)
	require.Equal(t, 100.0, s.LossPct)
	require.Zero(t, s.AvgRTT)

	s = Summarize("x", nil, 0)
	require.Zero(t, s.Total)
	require.Zero(t, s.LossPct)
}

func TestAggregateNonFiniteLogLinesCountAsErrors(t *testing.T) {
	records := []models.Outcome{models.ParseOutcome("10"), models.ParseOutcome("NaN")}

	got := Aggregate(records, 2)
	require.Len(t, got, 1)
	require.Equal(t, 10.0, got[0].MeanLatencyMS)
	require.Equal(t, 50.0, got[0].PacketLossPct)
}
