package reedsolomon

import (
	"fmt"

	"github.com/sourcegraph/conc/iter"
)

type chunk struct {
	offset   int
	data     []byte
	erasures []int // chunk-local
	out      []byte
	errPos   []int // chunk-local
}

// BlockReport describes the repairs applied to one chunk during decoding.
// Positions are offsets in the encoded payload.
type BlockReport struct {
	Index    int   `json:"index"`
	Offset   int   `json:"offset"`
	Length   int   `json:"length"`
	Erasures []int `json:"erasures,omitempty"`
	Errors   []int `json:"errors,omitempty"`
}

// Repaired returns the number of bytes the decoder rewrote in this chunk.
func (r BlockReport) Repaired() int {
	return len(r.Erasures) + len(r.Errors)
}

func split(payload []byte, size int) []chunk {
	chunks := make([]chunk, 0, (len(payload)+size-1)/size)
	for off := 0; off < len(payload); off += size {
		end := min(off+size, len(payload))
		chunks = append(chunks, chunk{offset: off, data: payload[off:end]})
	}
	return chunks
}

// each runs fn on every chunk, concurrently when the codec has more than
// one worker. The returned error belongs to the lowest-index failing chunk.
func (c *Codec) each(chunks []chunk, fn func(int, *chunk) error) error {
	errs := make([]error, len(chunks))
	work := func(i int, ch *chunk) {
		errs[i] = fn(i, ch)
	}

	if c.cfg.Workers > 1 && len(chunks) > 1 {
		iter.Iterator[chunk]{MaxGoroutines: c.cfg.Workers}.ForEachIdx(chunks, work)
	} else {
		for i := range chunks {
			work(i, &chunks[i])
		}
	}

	for i, err := range errs {
		if err != nil {
			return inChunk(err, i)
		}
	}
	return nil
}

// DecodeWithReport decodes payload like Decode and also returns one report
// per chunk that needed repair.
func (c *Codec) DecodeWithReport(payload []byte, erasures ...int) ([]byte, []BlockReport, error) {
	nsym := c.cfg.Symbols
	chunks := split(payload, BlockSize)

	for _, p := range erasures {
		if p < 0 || p >= len(payload) {
			return nil, nil, contractError("decode",
				fmt.Errorf("%w: position %d, payload length %d", ErrErasureOutOfRange, p, len(payload)))
		}
		i := p / BlockSize
		chunks[i].erasures = append(chunks[i].erasures, p-chunks[i].offset)
	}

	err := c.each(chunks, func(_ int, ch *chunk) error {
		codeword, errPos, err := CorrectBlock(ch.data, nsym, ch.erasures...)
		if err != nil {
			return err
		}
		ch.out = codeword[:len(codeword)-nsym]
		ch.errPos = errPos
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	decoded := make([]byte, 0, len(payload))
	var reports []BlockReport
	for i, ch := range chunks {
		decoded = append(decoded, ch.out...)

		if len(ch.erasures) == 0 && len(ch.errPos) == 0 {
			continue
		}
		report := BlockReport{
			Index:    i,
			Offset:   ch.offset,
			Length:   len(ch.data),
			Erasures: globalPositions(normalizeErasures(ch.erasures), ch.offset),
			Errors:   globalPositions(ch.errPos, ch.offset),
		}
		reports = append(reports, report)
		c.logger.Debug("repaired chunk",
			"chunk", i,
			"offset", ch.offset,
			"erasures", len(report.Erasures),
			"errors", len(report.Errors))
	}

	return decoded, reports, nil
}

func globalPositions(local []int, offset int) []int {
	if len(local) == 0 {
		return nil
	}
	global := make([]int, len(local))
	for i, p := range local {
		global[i] = p + offset
	}
	return global
}
