// Package pcap reads capture files into the decoded packet form the parse
// stage consumes.
package pcap

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Endpoint is one side of a transport connection.
type Endpoint struct {
	IP   string
	Port uint16
}

// Packet is one decoded packet: capture time, frame size and the transport
// endpoints. SYN/ACK carry the TCP handshake flags and stay false for UDP.
type Packet struct {
	Timestamp time.Time
	Size      int
	Src       Endpoint
	Dst       Endpoint
	SYN       bool
	ACK       bool
}

// Reader reads packets from a pcap file.
type Reader struct {
	handle *pcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadAll decodes every packet in the file, in capture order. Packets that
// are not IPv4 TCP/UDP are skipped; the skip count is returned alongside
// the decoded packets.
func (r *Reader) ReadAll() ([]Packet, int, error) {
	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())

	var packets []Packet
	skipped := 0
	for raw := range packetSource.Packets() {
		pkt, err := decode(raw)
		if err != nil {
			// Unsupported packet types or corrupt data; keep going.
			skipped++
			continue
		}
		packets = append(packets, pkt)
	}
	return packets, skipped, nil
}

// decode extracts timestamp, size and transport endpoints from one packet.
func decode(raw gopacket.Packet) (Packet, error) {
	pkt := Packet{Timestamp: time.Now(), Size: len(raw.Data())}
	if meta := raw.Metadata(); meta != nil {
		pkt.Timestamp = meta.Timestamp
		if meta.Length > 0 {
			pkt.Size = meta.Length
		}
	}

	ipLayer := raw.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return Packet{}, fmt.Errorf("not an IPv4 packet")
	}
	ip := ipLayer.(*layers.IPv4)
	pkt.Src.IP = ip.SrcIP.String()
	pkt.Dst.IP = ip.DstIP.String()

	if l := raw.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		pkt.Src.Port = uint16(tcp.SrcPort)
		pkt.Dst.Port = uint16(tcp.DstPort)
		pkt.SYN = tcp.SYN
		pkt.ACK = tcp.ACK
	} else if l := raw.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		pkt.Src.Port = uint16(udp.SrcPort)
		pkt.Dst.Port = uint16(udp.DstPort)
	} else {
		return Packet{}, fmt.Errorf("not a TCP or UDP packet")
	}

	return pkt, nil
}
