package parse

import (
	"wfguard/internal/model"
	"wfguard/pkg/pcap"
)

// clientEndpoint pins the client side of a session from verified connection
// roles: the source of the first TCP SYN-without-ACK is the connection
// initiator. Sessions with no visible handshake fall back to the first
// packet's source.
func clientEndpoint(packets []pcap.Packet) (pcap.Endpoint, bool) {
	for _, p := range packets {
		if p.SYN && !p.ACK {
			return p.Src, true
		}
	}
	if len(packets) > 0 {
		return packets[0].Src, true
	}
	return pcap.Endpoint{}, false
}

// ResolveDirections converts decoded packets into session records, labeling
// each packet +1 (outbound) when its source is the client endpoint and -1
// (inbound) otherwise. Timestamps are epoch seconds.
func ResolveDirections(packets []pcap.Packet) []model.PacketRecord {
	client, ok := clientEndpoint(packets)
	if !ok {
		return nil
	}

	records := make([]model.PacketRecord, len(packets))
	for i, p := range packets {
		direction := -1
		if p.Src == client {
			direction = 1
		}
		records[i] = model.PacketRecord{
			Timestamp: float64(p.Timestamp.UnixNano()) / 1e9,
			Size:      p.Size,
			Direction: direction,
		}
	}
	return records
}
