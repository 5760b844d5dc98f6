package mimeparser

import "mimekiln/email/mimehead"

// Consumer is the set of callbacks a caller receives while pushing bytes
// through a Parser (spec §6). All methods are optional in spirit: embed
// BaseConsumer to get no-op defaults and override only what you need.
type Consumer interface {
	StartMessage()
	EndMessage()
	StartPart(partNum string, headers *mimehead.StructuredHeaders)
	EndPart(partNum string)
	// DeliverPartData's data is either []byte (binary/typed-array modes)
	// or string (unicode mode for text parts), matching spec §6's
	// "data: bytes | string".
	DeliverPartData(partNum string, data interface{})
}

// BaseConsumer implements Consumer with no-op methods, so a caller can
// embed it and only override the callbacks it cares about.
type BaseConsumer struct{}

func (BaseConsumer) StartMessage()                                 {}
func (BaseConsumer) EndMessage()                                    {}
func (BaseConsumer) StartPart(string, *mimehead.StructuredHeaders) {}
func (BaseConsumer) EndPart(string)                                 {}
func (BaseConsumer) DeliverPartData(string, interface{})           {}
