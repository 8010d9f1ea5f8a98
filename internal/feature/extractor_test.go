package feature

import (
	"math"
	"testing"

	"wfguard/internal/model"
)

// session builds n records with the given size and direction, one second
// apart.
func session(n, size, direction int) []model.PacketRecord {
	records := make([]model.PacketRecord, n)
	for i := 0; i < n; i++ {
		records[i] = model.PacketRecord{
			Timestamp: float64(i),
			Size:      size,
			Direction: direction,
		}
	}
	return records
}

func TestExtractVectorLengthIsConstant(t *testing.T) {
	opts := Options{MaxPackets: 20, IncludeIAT: true, NormalizeSizes: true, NormalizeTimes: true}

	for _, n := range []int{1, 5, 20, 100} {
		vec := Extract(session(n, 100, 1), opts)
		if len(vec) != opts.VectorLength() {
			t.Errorf("Session length %d: expected vector length %d, got %d", n, opts.VectorLength(), len(vec))
		}
	}
	if opts.VectorLength() != 3*20 {
		t.Errorf("Expected vector length 60, got %d", opts.VectorLength())
	}

	opts.IncludeIAT = false
	if got := len(Extract(session(5, 100, 1), opts)); got != 2*20 {
		t.Errorf("Without IAT channel: expected length 40, got %d", got)
	}
}

func TestExtractPadsAtTheTail(t *testing.T) {
	opts := Options{MaxPackets: 10, IncludeIAT: true, NormalizeSizes: true, NormalizeTimes: true}

	// 1. Extract a 4-packet session into 10-packet channels.
	vec := Extract(session(4, 500, -1), opts)

	// 2. The first 4 slots of each channel are populated, the rest are zero.
	for ch := 0; ch < 3; ch++ {
		channel := vec[ch*10 : (ch+1)*10]
		for i := 4; i < 10; i++ {
			if channel[i] != 0 {
				t.Errorf("Channel %d position %d: expected zero pad, got %f", ch, i, channel[i])
			}
		}
	}
	// Direction channel keeps its raw values in the populated region.
	if vec[10] != -1 {
		t.Errorf("Expected direction -1 at first slot, got %f", vec[10])
	}
}

func TestExtractTruncatesToFirstN(t *testing.T) {
	opts := Options{MaxPackets: 3, IncludeIAT: false, NormalizeSizes: false}

	records := []model.PacketRecord{
		{Timestamp: 0, Size: 1, Direction: 1},
		{Timestamp: 1, Size: 2, Direction: 1},
		{Timestamp: 2, Size: 3, Direction: 1},
		{Timestamp: 3, Size: 9999, Direction: -1},
	}
	vec := Extract(records, opts)

	want := []float32{1, 2, 3}
	for i, w := range want {
		if vec[i] != w {
			t.Errorf("Size channel position %d: expected %f, got %f", i, w, vec[i])
		}
	}
	// The fourth record must not contribute anywhere.
	for _, v := range vec {
		if v == 9999 {
			t.Fatalf("Truncated record leaked into the vector")
		}
	}
}

func TestExtractSessionExactlyN(t *testing.T) {
	opts := Options{MaxPackets: 8, IncludeIAT: true, NormalizeSizes: false, NormalizeTimes: false}

	vec := Extract(session(8, 7, 1), opts)
	sizes := vec[:8]
	for i, v := range sizes {
		if v != 7 {
			t.Errorf("Position %d: expected 7 (no pad, no truncate), got %f", i, v)
		}
	}
}

func TestExtractConstantTrafficNormalizesToOnes(t *testing.T) {
	// A 100-packet session with constant size and outbound direction,
	// truncated to 10 packets.
	opts := Options{MaxPackets: 10, IncludeIAT: true, NormalizeSizes: true, NormalizeTimes: true}
	vec := Extract(session(100, 100, 1), opts)

	sizes := vec[:10]
	directions := vec[10:20]
	iat := vec[20:30]

	for i := 0; i < 10; i++ {
		if sizes[i] != 1.0 {
			t.Errorf("Size position %d: expected 1.0 after self-normalization, got %f", i, sizes[i])
		}
		if directions[i] != 1.0 {
			t.Errorf("Direction position %d: expected +1.0, got %f", i, directions[i])
		}
	}
	// Gaps are uniformly one second; the first element is defined as 0 and
	// the rest normalize to the maximum observed gap.
	if iat[0] != 0 {
		t.Errorf("First inter-arrival element: expected 0, got %f", iat[0])
	}
	for i := 1; i < 10; i++ {
		if iat[i] != 1.0 {
			t.Errorf("IAT position %d: expected 1.0, got %f", i, iat[i])
		}
	}
}

func TestExtractExplicitScale(t *testing.T) {
	opts := Options{MaxPackets: 2, IncludeIAT: false, NormalizeSizes: true, SizeScale: 2000}

	vec := Extract(session(2, 500, 1), opts)
	if vec[0] != 0.25 {
		t.Errorf("Expected 500/2000 = 0.25, got %f", vec[0])
	}
}

func TestExtractAllZeroChannelIsNoOp(t *testing.T) {
	opts := Options{MaxPackets: 4, IncludeIAT: true, NormalizeSizes: true, NormalizeTimes: true}

	// Zero sizes and identical timestamps: both normalized channels have a
	// non-positive maximum and must pass through unchanged, never NaN.
	records := []model.PacketRecord{
		{Timestamp: 5, Size: 0, Direction: 1},
		{Timestamp: 5, Size: 0, Direction: -1},
	}
	vec := Extract(records, opts)
	for i, v := range vec {
		if math.IsNaN(float64(v)) {
			t.Fatalf("Position %d: normalization produced NaN", i)
		}
	}
	if vec[0] != 0 || vec[1] != 0 {
		t.Errorf("All-zero size channel should stay zero, got %v", vec[:4])
	}
}

func TestExtractZeroTargetLength(t *testing.T) {
	opts := Options{MaxPackets: 0, IncludeIAT: true, NormalizeSizes: true, NormalizeTimes: true}

	vec := Extract(session(5, 100, 1), opts)
	if len(vec) != 0 {
		t.Errorf("Expected degenerate zero-length vector, got length %d", len(vec))
	}
}

func TestInterArrivalFirstElementIsZero(t *testing.T) {
	records := []model.PacketRecord{
		{Timestamp: 10.0},
		{Timestamp: 10.5},
		{Timestamp: 12.0},
	}
	gaps := InterArrival(records)
	if gaps[0] != 0 {
		t.Errorf("Expected first gap 0, got %f", gaps[0])
	}
	if gaps[1] != 0.5 || gaps[2] != 1.5 {
		t.Errorf("Unexpected gaps: %v", gaps)
	}
}
