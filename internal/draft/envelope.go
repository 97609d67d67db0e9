package draft

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/pstuifzand/subtasks/internal/codec"
)

const envelopeVersion = 1

// draftDomainKey separates draft checksums from any other BLAKE3 use
var draftDomainKey = [32]byte{
	's', 'u', 'b', 't', 'a', 's', 'k', 's', '.', 'd', 'r', 'a', 'f', 't',
}

var errChecksum = errors.New("draft checksum mismatch")

// envelope is the stored form of a draft: the CBOR payload plus a keyed
// BLAKE3 checksum over it.
type envelope struct {
	Version  int    `json:"v"`
	Checksum []byte `json:"sum"`
	Payload  []byte `json:"payload"`
}

func checksum(payload []byte) []byte {
	hasher, err := blake3.NewKeyed(draftDomainKey[:])
	if err != nil {
		panic("draft: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	return hasher.Sum(nil)
}

func encode(d Draft) ([]byte, error) {
	payload, err := codec.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}
	data, err := codec.Marshal(envelope{Version: envelopeVersion, Checksum: checksum(payload), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

func decode(data []byte) (Draft, error) {
	var env envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return Draft{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return Draft{}, fmt.Errorf("unsupported draft version %d", env.Version)
	}
	if !bytes.Equal(env.Checksum, checksum(env.Payload)) {
		return Draft{}, errChecksum
	}
	var d Draft
	if err := codec.Unmarshal(env.Payload, &d); err != nil {
		return Draft{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	return d, nil
}
