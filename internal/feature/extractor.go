// Package feature maps variable-length packet-record sequences to the
// fixed-length numeric vectors consumed by a website-fingerprinting
// classifier.
package feature

import "wfguard/internal/model"

// DefaultMaxPackets is the canonical sequence length: sessions are padded
// or truncated to this many packets per channel.
const DefaultMaxPackets = 2000

// Options control how a session is turned into one vector.
type Options struct {
	// MaxPackets is the per-channel target length N. Sessions longer than N
	// are truncated to their first N packets; shorter ones are zero-padded
	// at the tail.
	MaxPackets int

	// IncludeIAT selects whether the inter-arrival-time channel is produced.
	IncludeIAT bool

	// NormalizeSizes and NormalizeTimes enable normalization of the size and
	// inter-arrival channels. The direction channel is never normalized.
	NormalizeSizes bool
	NormalizeTimes bool

	// SizeScale and TimeScale are explicit per-channel divisors. A value
	// <= 0 means the channel is divided by its own in-session maximum
	// instead, with a non-positive maximum treated as 1.
	SizeScale float64
	TimeScale float64
}

// DefaultOptions returns the extraction settings used by the standard build.
func DefaultOptions() Options {
	return Options{
		MaxPackets:     DefaultMaxPackets,
		IncludeIAT:     true,
		NormalizeSizes: true,
		NormalizeTimes: true,
	}
}

// Channels returns the number of channels the options produce.
func (o Options) Channels() int {
	if o.IncludeIAT {
		return 3
	}
	return 2
}

// VectorLength returns the fixed output length: channels x MaxPackets. It
// is constant across a corpus regardless of raw session lengths.
func (o Options) VectorLength() int {
	return o.Channels() * o.MaxPackets
}

// InterArrival returns the gaps between consecutive timestamps in seconds.
// The first element is 0: there is no prior packet.
func InterArrival(records []model.PacketRecord) []float64 {
	gaps := make([]float64, len(records))
	for i := 1; i < len(records); i++ {
		gaps[i] = records[i].Timestamp - records[i-1].Timestamp
	}
	return gaps
}

// Extract maps one session to a fixed-length float32 vector laid out as
// [size, direction, inter-arrival?] channels, in that order.
func Extract(records []model.PacketRecord, opts Options) []float32 {
	n := len(records)
	if n > opts.MaxPackets {
		n = opts.MaxPackets
	}

	sizes := make([]float64, opts.MaxPackets)
	directions := make([]float64, opts.MaxPackets)
	for i := 0; i < n; i++ {
		sizes[i] = float64(records[i].Size)
		directions[i] = float64(records[i].Direction)
	}

	var iat []float64
	if opts.IncludeIAT {
		iat = make([]float64, opts.MaxPackets)
		gaps := InterArrival(records)
		for i := 0; i < n; i++ {
			iat[i] = gaps[i]
		}
	}

	if opts.NormalizeSizes {
		normalize(sizes, opts.SizeScale)
	}
	if opts.IncludeIAT && opts.NormalizeTimes {
		normalize(iat, opts.TimeScale)
	}

	vector := make([]float32, 0, opts.VectorLength())
	vector = appendChannel(vector, sizes)
	vector = appendChannel(vector, directions)
	if opts.IncludeIAT {
		vector = appendChannel(vector, iat)
	}
	return vector
}

// normalize divides the channel in place by scale when it is positive, and
// otherwise by the channel's own maximum. A non-positive maximum leaves the
// channel untouched, so an all-zero channel normalizes to itself.
func normalize(values []float64, scale float64) {
	if scale <= 0 {
		for _, v := range values {
			if v > scale {
				scale = v
			}
		}
		if scale <= 0 {
			return
		}
	}
	for i := range values {
		values[i] /= scale
	}
}

func appendChannel(vector []float32, channel []float64) []float32 {
	for _, v := range channel {
		vector = append(vector, float32(v))
	}
	return vector
}
