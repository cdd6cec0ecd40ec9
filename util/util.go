package util

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// GetSortedKeys is GetKeys in ascending order.
func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	slices.Sort(keys)
	return keys
}

// Mod is the floor modulo, so the result always has the sign of n.
func Mod[A constraints.Signed](a A, n A) A {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func CreateBinary(filename string, data any) error {
	buf := new(bytes.Buffer)
	encoder := gob.NewEncoder(buf)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding %v: %w", filename, err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0777); err != nil {
		return err
	}

	// write next to the target first so readers never see half a file
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %v: %w", filename, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %v: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %v: %w", filename, err)
	}
	return os.Rename(tmp.Name(), filename)
}

func ReadBinary[A any](path string) (A, error) {
	var data A
	f, err := os.Open(path)
	if err != nil {
		return data, err
	}
	defer f.Close()

	decoder := gob.NewDecoder(f)
	if err := decoder.Decode(&data); err != nil {
		return data, fmt.Errorf("decoding %v: %w", path, err)
	}
	return data, nil
}
