package scan

import (
	"fmt"
	"strconv"
	"strings"
)

// Sample is one polar measurement.
type Sample struct {
	Angle float64 // radians
	Range float64 // meters; zero means no return
}

// NoReturn reports whether the sample carries no range reading.
func (s Sample) NoReturn() bool {
	return s.Range == 0
}

// Key identifies an entry by source label and block sequence.
type Key struct {
	Label string
	Seq   uint32
}

// String formats the key as "label:seq".
func (k Key) String() string {
	return k.Label + ":" + strconv.FormatUint(uint64(k.Seq), 10)
}

// FileStem is the output file name stem, "label-seq".
func (k Key) FileStem() string {
	return k.Label + "-" + strconv.FormatUint(uint64(k.Seq), 10)
}

// ParseKey builds a Key from the two tokens a user types, label and seq.
func ParseKey(label, seq string) (Key, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Key{}, fmt.Errorf("empty label")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(seq), 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("parse sequence %q: %w", seq, err)
	}
	return Key{Label: label, Seq: uint32(n)}, nil
}

// Entry is a decoded scan. Samples must not be modified once the entry has
// been handed to a catalog.
type Entry struct {
	Key     Key
	Samples []Sample
}

// NewEntry copies samples into a new entry.
func NewEntry(key Key, samples []Sample) Entry {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return Entry{Key: key, Samples: cp}
}

// Len returns the number of samples.
func (e Entry) Len() int {
	return len(e.Samples)
}

// Returns counts samples with a non-zero range.
func (e Entry) Returns() int {
	n := 0
	for _, s := range e.Samples {
		if !s.NoReturn() {
			n++
		}
	}
	return n
}
