package kafka

import "github.com/segmentio/kafka-go"

// HeaderCarrier adapts kafka message headers to propagation.TextMapCarrier so
// W3C trace context travels with published events.
type HeaderCarrier struct {
	headers *[]kafka.Header
}

// NewHeaderCarrier wraps the given header slice. Set appends to it in place.
func NewHeaderCarrier(headers *[]kafka.Header) *HeaderCarrier {
	return &HeaderCarrier{headers: headers}
}

// Get returns the value of the first header with the given key.
func (c *HeaderCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set overwrites the header with the given key, or appends it.
func (c *HeaderCarrier) Set(key, value string) {
	for i := range *c.headers {
		if (*c.headers)[i].Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

// Keys lists all header keys.
func (c *HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
