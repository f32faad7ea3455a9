package cache

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Output is what a run produced.
type Output struct {
	Result   string
	Progress string
	// Err is the text of the error that stopped the run, if any.
	Err string
}

// Outputs is the run output cache.
type Outputs struct {
	cache *Cache[Output]
}

// NewOutputs creates a new run output cache.
func NewOutputs(dir string) (*Outputs, error) {
	cache, err := New[Output](dir, OutputCache)
	if err != nil {
		return nil, err
	}
	return &Outputs{
		cache: cache,
	}, nil
}

func (c *Outputs) Read(id string, out *Output) error {
	return c.cache.Read(id, func(r io.Reader) error {
		return decode(r, out)
	})
}

func (c *Outputs) Write(id string, out *Output) error {
	return c.cache.Write(id, func(w io.Writer) error {
		return encode(w, out)
	})
}

// Delete a run output.
func (c *Outputs) Delete(id string) error {
	return c.cache.Delete(id)
}

func encode(w io.Writer, out *Output) error {
	if err := gob.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func decode(r io.Reader, out *Output) error {
	if err := gob.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
