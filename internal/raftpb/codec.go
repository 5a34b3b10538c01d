package raftpb

import (
	"bytes"
	"encoding/gob"
	"sync"

	"google.golang.org/grpc/encoding"
)

// gobCodec replaces grpc's default "proto" codec so the hand-written
// messages in this package (plain structs, not proto.Message) can ride
// a real grpc.Server / grpc.ClientConn without a protoc-generated
// protobuf runtime. grpc negotiates codecs by name and falls back to
// "proto" when a call sets no content-subtype, so registering under
// that name makes every call in this module use gob transparently.
type gobCodec struct{}

func (gobCodec) Name() string { return "proto" }

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

var registerOnce sync.Once

// RegisterCodec installs the gob codec as the grpc default. Call once
// per process before dialing or serving; cmd/node and cmd/client do
// this in their init paths.
func RegisterCodec() {
	registerOnce.Do(func() {
		encoding.RegisterCodec(gobCodec{})
	})
}
