package fastrpc

// Member is a named member of a [Struct].
type Member struct {
	Name  string
	Value any
}

// Struct is a FastRPC struct: an ordered list of uniquely named
// members.
type Struct []Member

// Get returns the value of the member with the given name.
func (s Struct) Get(name string) (any, bool) {
	for _, m := range s {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Message is a decoded top-level FastRPC message, either a [*Call] or
// a [*Response].
type Message interface {
	isMessage()
}

// Call is a method call message.
type Call struct {
	Method string
	Params []any
}

// Response is a method response message.
type Response struct {
	Value any
}

func (*Call) isMessage()     {}
func (*Response) isMessage() {}
