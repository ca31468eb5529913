// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package noderpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

const jsonrpcVersion = "2.0"

var errNotReply = errors.New("not a JSON-RPC reply")

// legacyReplyTransport rewrites JSON-RPC 1.0 replies into the 2.0 shape.
// Nodes derived from Bitcoin Core omit the version marker, send a null
// "error" on success, send a null "result" on failure, and report failures
// with a non-200 HTTP status.
type legacyReplyTransport struct {
	base http.RoundTripper
}

func (t *legacyReplyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rsp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rsp.Body)
	_ = rsp.Body.Close()
	if err != nil {
		return nil, err
	}
	if fixed, err := upgradeReply(data); err == nil {
		data = fixed
		// The JSON body carries any call failure
		if rsp.StatusCode != http.StatusOK {
			rsp.StatusCode = http.StatusOK
			rsp.Status = "200 OK"
		}
	}
	rsp.Body = io.NopCloser(bytes.NewReader(data))
	rsp.ContentLength = int64(len(data))
	rsp.Header.Set("Content-Length", strconv.Itoa(len(data)))
	return rsp, nil
}

// upgradeReply converts a single reply or a batch of replies
func upgradeReply(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errNotReply
	}
	if data[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return nil, errNotReply
		}
		for i, item := range batch {
			fixed, err := upgradeReply(item)
			if err != nil {
				return nil, err
			}
			batch[i] = fixed
		}
		return json.Marshal(batch)
	}
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, ok := msg["id"]; !ok {
		return nil, errNotReply
	}
	if _, ok := msg["method"]; ok {
		return nil, errNotReply
	}
	_, hasResult := msg["result"]
	_, hasError := msg["error"]
	if !hasResult && !hasError {
		return nil, errNotReply
	}
	if isNullJSON(msg["error"]) {
		delete(msg, "error")
	} else if hasError {
		delete(msg, "result")
	}
	if _, ok := msg["jsonrpc"]; !ok {
		msg["jsonrpc"] = json.RawMessage(strconv.Quote(jsonrpcVersion))
	}
	return json.Marshal(msg)
}

func isNullJSON(val json.RawMessage) bool {
	return val != nil && bytes.Equal(bytes.TrimSpace(val), []byte("null"))
}
