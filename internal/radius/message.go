package radius

// Attribute is one typed attribute from the linear attribute array of a
// RADIUS message.
type Attribute struct {
	Type  AttributeType
	Value []byte
}

// Message is a parsed RADIUS message: fixed header plus a linear array of
// attributes. Translation marks attributes consumed one by one; any attribute
// left unconsumed after the plugin chain ran means the translation is
// incomplete.
type Message struct {
	Code          Code
	Identifier    uint8
	Authenticator [16]byte
	Attributes    []Attribute

	consumed []bool
	raw      []byte
}

// New builds an in-memory message, typically an answer under construction.
func New(code Code, identifier uint8) *Message {
	return &Message{Code: code, Identifier: identifier}
}

// AddAttribute appends an attribute. The value is not copied.
func (m *Message) AddAttribute(t AttributeType, value []byte) {
	m.Attributes = append(m.Attributes, Attribute{Type: t, Value: value})
	m.consumed = append(m.consumed, false)
}

// Lookup returns the first attribute of the given type, or nil.
func (m *Message) Lookup(t AttributeType) *Attribute {
	for i := range m.Attributes {
		if m.Attributes[i].Type == t {
			return &m.Attributes[i]
		}
	}
	return nil
}

// Consume marks the attribute at index i as handled by translation.
func (m *Message) Consume(i int) {
	if i >= 0 && i < len(m.consumed) {
		m.consumed[i] = true
	}
}

// Consumed reports whether the attribute at index i was handled.
func (m *Message) Consumed(i int) bool {
	return i >= 0 && i < len(m.consumed) && m.consumed[i]
}

// Unconsumed returns the indices of attributes no plugin handled.
func (m *Message) Unconsumed() []int {
	var out []int
	for i := range m.Attributes {
		if !m.consumed[i] {
			out = append(out, i)
		}
	}
	return out
}

// Raw returns the original wire buffer the message was parsed from, or nil
// for messages built in memory.
func (m *Message) Raw() []byte { return m.raw }
