package latex

import (
	"encoding/json"
	"fmt"
)

// Wire format shared with the external preprocessor and the document
// store payloads: a forest is a JSON array whose elements are either a
// bare string (text token) or {"cmd": name, "args": [...]}.

type commandJSON struct {
	Cmd  string `json:"cmd"`
	Args Forest `json:"args,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f Forest) MarshalJSON() ([]byte, error) {
	items := make([]interface{}, len(f))
	for i, t := range f {
		if t.Args() == nil {
			items[i] = t.Label()
		} else {
			items[i] = commandJSON{Cmd: t.Label(), Args: t.Args()}
		}
	}
	return json.Marshal(items)
}

// UnmarshalJSON implements json.Unmarshaler. Tokens are rebuilt through
// the constructors so hashes and costs are always populated.
func (f *Forest) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Forest, 0, len(raw))
	for _, r := range raw {
		tok, err := unmarshalToken(r)
		if err != nil {
			return err
		}
		out = append(out, tok)
	}
	*f = out
	return nil
}

func unmarshalToken(data []byte) (Token, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return NewText(s), nil
	}
	var c commandJSON
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("latex: token must be a string or a command object: %w", err)
	}
	if c.Cmd == "" {
		return nil, fmt.Errorf("latex: command token missing cmd field")
	}
	if c.Args == nil {
		c.Args = Forest{}
	}
	return NewCommand(c.Cmd, c.Args), nil
}

// GobEncode implements gob.GobEncoder for snapshot persistence by
// delegating to the JSON wire codec.
func (f Forest) GobEncode() ([]byte, error) {
	return f.MarshalJSON()
}

// GobDecode implements gob.GobDecoder.
func (f *Forest) GobDecode(data []byte) error {
	return f.UnmarshalJSON(data)
}
