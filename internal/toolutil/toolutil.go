// Package toolutil provides helpers shared by the MCP tools and the REST
// handlers: request normalization and error classification.
package toolutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine/playlist"
)

// PlaylistRequest converts tool input into a service request.
func PlaylistRequest(in engine.PlaylistInput) playlist.Request {
	return playlist.Request{
		StudyTopic: in.StudyTopic,
		Duration:   in.Duration,
		FunTheme:   in.FunTheme,
		Level:      in.Level,
	}
}

// Code returns the stable error code reported to clients.
func Code(err error) string {
	if k := engine.KindOf(err); k != "" {
		return string(k)
	}
	return "internal_error"
}

// HTTPStatus maps an error kind to a response status.
func HTTPStatus(err error) int {
	switch engine.KindOf(err) {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ToolError prefixes err with its code so MCP clients can tell a bad
// request from a failed collaborator.
func ToolError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", Code(err), err)
}

// FlexInt decodes a JSON number, a numeric string, or null/"" (zero).
// The web client sends the level slider as either.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	if n != float64(int(n)) {
		return fmt.Errorf("not an integer: %s", data)
	}
	*f = FlexInt(n)
	return nil
}

// FlexString decodes a JSON string or number as text. The web client sends
// the duration button index as a number or a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %s", data)
	}
	*f = FlexString(n.String())
	return nil
}
