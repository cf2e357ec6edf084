// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides utility functions for working with HTTP.
package httputils

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultTraceLines   = 200
	defaultTraceLineLen = 512
)

// LoggingRoundTripper writes every exchange to Writer: request lines prefixed
// with "> ", response lines with "< ". A nil Writer disables the trace.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool

	// MaxLines and MaxLineLen bound each dump. Zero means 200 lines of 512
	// runes.
	MaxLines   int
	MaxLineLen int
}

// quote prefixes each line of dump, cutting the dump to maxLines lines and
// each line to maxLen runes.
func quote(dump []byte, prefix string, maxLines, maxLen int) string {
	var sb strings.Builder

	lines := strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n")
	for i, line := range lines {
		if i == maxLines {
			fmt.Fprintf(&sb, "%s… (%d more lines)\n", prefix, len(lines)-maxLines)

			break
		}

		line = strings.TrimRight(line, "\r")
		if utf8.RuneCountInString(line) > maxLen {
			line = string([]rune(line)[:maxLen]) + "…"
		}

		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (t *LoggingRoundTripper) limits() (int, int) {
	lines, lineLen := t.MaxLines, t.MaxLineLen
	if lines <= 0 {
		lines = defaultTraceLines
	}

	if lineLen <= 0 {
		lineLen = defaultTraceLineLen
	}

	return lines, lineLen
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	maxLines, maxLen := t.limits()

	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	fmt.Fprint(t.Writer, quote(dump, "> ", maxLines, maxLen))

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	elapsed := time.Since(start)

	dump, err = httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		resp.Body.Close()

		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n%s", elapsed, quote(dump, "< ", maxLines, maxLen))

	return resp, nil
}

// AppendRequestHeadersRoundTripper sets Headers on a copy of each request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   http.Header
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.Headers) == 0 {
		return t.Transport.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	for k, vs := range t.Headers {
		out.Header[k] = append([]string(nil), vs...)
	}

	return t.Transport.RoundTrip(out)
}

// IsSuccess reports whether the status code is a 2xx.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// MediaType returns the lowercased media type of the response, without parameters.
func MediaType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}

	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}

	return media
}

// ReadSnippet reads at most n bytes of the body, for diagnostics.
func ReadSnippet(r io.Reader, n int64) string {
	b, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil && len(b) == 0 {
		return ""
	}

	return string(b)
}
