package music

import (
	"bufio"
	"io"
)

const oggPageHeaderRest = 23

type oggPage struct {
	isHeader bool
	packets  [][]byte
}

// oggReader splits an Ogg/Opus byte stream into Opus packets. Packets that
// continue across a page boundary are joined before being returned.
type oggReader struct {
	r       *bufio.Reader
	partial []byte
}

func newOggReader(r io.Reader) *oggReader {
	return &oggReader{r: bufio.NewReaderSize(r, 65536)}
}

func (o *oggReader) Next() (*oggPage, error) {
	if err := o.syncToPage(); err != nil {
		return nil, err
	}

	headerRest := make([]byte, oggPageHeaderRest)
	if _, err := io.ReadFull(o.r, headerRest); err != nil {
		return nil, err
	}

	headerType := headerRest[1]
	pageSegments := headerRest[22]

	segmentTable := make([]byte, pageSegments)
	if _, err := io.ReadFull(o.r, segmentTable); err != nil {
		return nil, err
	}

	pageSize := 0
	for _, seg := range segmentTable {
		pageSize += int(seg)
	}

	pageData := make([]byte, pageSize)
	if _, err := io.ReadFull(o.r, pageData); err != nil {
		return nil, err
	}

	// 0x02 marks the beginning of a logical stream
	isHeader := headerType&0x02 != 0
	if len(pageData) >= 8 {
		magic := string(pageData[:8])
		if magic == "OpusHead" || magic == "OpusTags" {
			isHeader = true
		}
	}

	continued := headerType&0x01 != 0
	if !continued {
		o.partial = nil
	}

	return &oggPage{
		isHeader: isHeader,
		packets:  o.splitPackets(segmentTable, pageData),
	}, nil
}

func (o *oggReader) syncToPage() error {
	for {
		b, err := o.r.ReadByte()
		if err != nil {
			return err
		}

		if b != 'O' {
			continue
		}

		peek, err := o.r.Peek(3)
		if err != nil {
			return err
		}

		if string(peek) == "ggS" {
			_, _ = o.r.Discard(3)
			return nil
		}
	}
}

func (o *oggReader) splitPackets(segmentTable []byte, pageData []byte) [][]byte {
	var packets [][]byte
	current := o.partial
	o.partial = nil
	offset := 0

	for _, segSize := range segmentTable {
		size := int(segSize)
		if offset+size > len(pageData) {
			break
		}

		current = append(current, pageData[offset:offset+size]...)
		offset += size

		if segSize < 255 {
			if len(current) > 0 {
				packet := make([]byte, len(current))
				copy(packet, current)
				packets = append(packets, packet)
			}
			current = current[:0]
		}
	}

	if len(current) > 0 {
		o.partial = append([]byte(nil), current...)
	}

	return packets
}
