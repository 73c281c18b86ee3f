package config

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding so that the same record always
// produces the same bytes on the hand-off pipe
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("config: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// the record is a fixed shape, duplicated keys point at corruption
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("config: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode writes the record to w as a single CBOR item
func (c *Config) Encode(w io.Writer) error {
	b, err := encMode.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Decode reads r until EOF and decodes the record written by Encode
func Decode(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := new(Config)
	if err := decMode.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
