package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/gate.go/pkg/l0/terminal"
)

// TerminalState is published on every state transition.
type TerminalState struct {
	ID      string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	State   string `protobuf:"bytes,2,opt,name=state,proto3" json:"state,omitempty"`
	From    string `protobuf:"bytes,3,opt,name=from,proto3" json:"from,omitempty"`
	Event   string `protobuf:"bytes,4,opt,name=event,proto3" json:"event,omitempty"`
	Payload string `protobuf:"bytes,5,opt,name=payload,proto3" json:"payload,omitempty"`
	Tick    uint32 `protobuf:"varint,6,opt,name=tick,proto3" json:"tick,omitempty"`
	Seq     uint64 `protobuf:"varint,7,opt,name=seq,proto3" json:"seq,omitempty"`
}

// NewTerminalState converts a transition.
func NewTerminalState(id string, seq uint64, tr terminal.Transition) *TerminalState {
	return &TerminalState{
		ID:      id,
		State:   tr.To.String(),
		From:    tr.From.String(),
		Event:   tr.Event.String(),
		Payload: tr.Payload,
		Tick:    uint32(tr.Tick),
		Seq:     seq,
	}
}

// ProtoMessage implements proto.Message.
func (m *TerminalState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TerminalState) Reset() { *m = TerminalState{} }

// String implements proto.Message.
func (m *TerminalState) String() string { return proto.CompactTextString(m) }

// TerminalMeta is retained on the meta topic while a terminal is online.
type TerminalMeta struct {
	Type        string            `protobuf:"bytes,1,opt,name=type,proto3" json:"type,omitempty"`
	ID          string            `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
	Description string            `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Labels      map[string]string `protobuf:"bytes,4,rep,name=labels,proto3" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"bytes,2,opt,name=value,proto3" json:"labels,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *TerminalMeta) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TerminalMeta) Reset() { *m = TerminalMeta{} }

// String implements proto.Message.
func (m *TerminalMeta) String() string { return proto.CompactTextString(m) }

// Encode marshals a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// DecodeState unmarshals a TerminalState.
func DecodeState(data []byte) (*TerminalState, error) {
	var m TerminalState
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DecodeMeta unmarshals a TerminalMeta.
func DecodeMeta(data []byte) (*TerminalMeta, error) {
	var m TerminalMeta
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
