package aldl

// Frame is a validated span located in a capture window.
type Frame struct {
	// Offset is the window index where the preamble starts.
	Offset int
	// Bytes holds the data bytes in wire order.
	Bytes []byte
}

// FindFrame searches window for the earliest valid frame.
// A candidate needs PreambleLen Ones followed by FrameBytes bytes, each
// a Zero start bit and 8 data bits MSB first, with no Ambiguous symbol
// anywhere in the span. Rejected candidates don't stop the search.
//
// When nothing is found, ErrNoSync is returned if no preamble was seen,
// otherwise the *FrameError of the last rejected candidate.
func (c *Config) FindFrame(window []Symbol) (Frame, error) {
	span := c.FrameSpan()
	var lastErr error
	for i := 0; i+span <= len(window); i++ {
		if !c.preambleAt(window, i) {
			continue
		}
		if err := c.validate(window, i); err != nil {
			lastErr = err
			continue
		}
		return Frame{Offset: i, Bytes: c.extract(window, i)}, nil
	}
	if lastErr != nil {
		return Frame{}, lastErr
	}
	return Frame{}, ErrNoSync
}

func (c *Config) preambleAt(window []Symbol, offset int) bool {
	for j := 0; j < c.PreambleLen; j++ {
		if window[offset+j] != One {
			return false
		}
	}
	return true
}

func (c *Config) validate(window []Symbol, offset int) error {
	span := c.FrameSpan()
	for k := offset; k < offset+span; k++ {
		if window[k] == Ambiguous {
			return &FrameError{Offset: offset, Index: k, Symbol: Ambiguous}
		}
	}
	for b := 0; b < c.FrameBytes; b++ {
		pos := offset + c.PreambleLen + b*BitsPerByte
		if window[pos] != Zero {
			return &FrameError{Offset: offset, Index: pos, Symbol: window[pos], StartBit: true}
		}
	}
	return nil
}

func (c *Config) extract(window []Symbol, offset int) []byte {
	data := make([]byte, c.FrameBytes)
	for b := range data {
		pos := offset + c.PreambleLen + b*BitsPerByte + 1
		var v byte
		for bit := 0; bit < 8; bit++ {
			v <<= 1
			if window[pos+bit] == One {
				v |= 1
			}
		}
		data[b] = v
	}
	return data
}

// EncodeFrame is the inverse of FindFrame: it renders the preamble and
// data bytes as symbols.
func (c *Config) EncodeFrame(data []byte) []Symbol {
	syms := make([]Symbol, 0, c.PreambleLen+len(data)*BitsPerByte)
	for j := 0; j < c.PreambleLen; j++ {
		syms = append(syms, One)
	}
	for _, v := range data {
		syms = append(syms, Zero)
		for bit := 7; bit >= 0; bit-- {
			if v&(1<<uint(bit)) != 0 {
				syms = append(syms, One)
			} else {
				syms = append(syms, Zero)
			}
		}
	}
	return syms
}
