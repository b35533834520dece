// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
)

// FeedIDLength is the length of an encoded feed id: one category byte followed by
// the zero padded feed name.
const FeedIDLength = 21

// FeedID identifies a price feed.
type FeedID [FeedIDLength]byte

// NewFeedID builds a feed id from category and name, e.g. (1, "BTC/USD").
func NewFeedID(category byte, name string) (FeedID, error) {
	var id FeedID
	if len(name) > FeedIDLength-1 {
		return id, errors.New("feed name too long")
	}
	id[0] = category
	copy(id[1:], name)
	return id, nil
}

func (f FeedID) String() string {
	return "0x" + hex.EncodeToString(f[:])
}

// Name returns the human readable part of the feed id.
func (f FeedID) Name() string {
	return string(bytes.TrimRight(f[1:], "\x00"))
}

// Compare orders feed ids by bytes.
func (f FeedID) Compare(o FeedID) int {
	return bytes.Compare(f[:], o[:])
}

// MarshalText implements encoding.TextMarshaler.
func (f FeedID) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FeedID) UnmarshalText(text []byte) error {
	parsed, err := ParseFeedID(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFeedID parses the hex form of a feed id.
func ParseFeedID(s string) (FeedID, error) {
	var f FeedID
	if len(s) == FeedIDLength*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return f, errors.New("invalid prefix")
		}
		s = s[2:]
	} else if len(s) != FeedIDLength*2 {
		return f, errors.New("invalid length")
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return f, err
	}
	return f, nil
}
