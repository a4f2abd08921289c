package document

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON renders the node as JSON with mapping keys in insertion order.
// Used to put snapshots into a canonical form for structural diffing.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case KindNull:
		return []byte("null"), nil

	case KindBoolean, KindNumber, KindString:
		return json.Marshal(n.value)

	case KindSequence:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, el := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := el.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	case KindMapping:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, key := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyData, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(keyData)
			buf.WriteByte(':')
			data, err := n.fields[key].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	return []byte("null"), nil
}
