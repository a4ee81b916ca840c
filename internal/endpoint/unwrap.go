package endpoint

import (
	"bytes"
	"errors"
	"fmt"
)

// Unwrap extracts a JSON document from a response body.
type Unwrap func(body []byte) ([]byte, error)

// Plain treats the whole body as JSON.
func Plain(body []byte) ([]byte, error) {
	return body, nil
}

// Callback strips a JSONP wrapper of the form prefix(JSON)suffix by taking
// everything between the first '(' and the last ')'.
func Callback(body []byte) ([]byte, error) {
	open := bytes.IndexByte(body, '(')
	closing := bytes.LastIndexByte(body, ')')
	if open < 0 || closing < 0 || closing <= open {
		return nil, errors.New("no callback wrapper")
	}
	return body[open+1 : closing], nil
}

// FixedPadding drops a header of head bytes and a trailer of tail bytes,
// e.g. FixedPadding(8, 2) for `jsonpgz({...});`.
func FixedPadding(head, tail int) Unwrap {
	return func(body []byte) ([]byte, error) {
		if len(body) <= head+tail {
			return nil, fmt.Errorf("body too short: %d bytes", len(body))
		}
		return body[head : len(body)-tail], nil
	}
}
