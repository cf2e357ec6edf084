// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The USIG services are inconsistent about numbers: the same field comes back as
// 1130, "1130" or null depending on the endpoint. The Flex types accept all of
// them; anything that cannot be read as a number decodes as the zero value.

var jsonNull = []byte("null")

// FlexFloat handles JSON values that can be either string or number.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = 0

	v, ok := parseFlex(data)
	if ok {
		*f = FlexFloat(v)
	}

	return nil
}

// FlexInt handles integer JSON values that can be either string or number.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	*i = 0

	v, ok := parseFlex(data)
	if ok {
		*i = FlexInt(int(v))
	}

	return nil
}

// FlexString handles JSON values that can be either string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = ""

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(strings.TrimSpace(str))

		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = FlexString(num.String())
	}

	return nil
}

func parseFlex(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		return num, true
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return 0, false
	}

	str = strings.TrimSpace(str)
	if str == "" {
		return 0, false
	}

	return parseFinite(str)
}

// parseFinite parses s as a float, rejecting NaN and infinities.
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// AsFloat reads a decoded JSON value (number or numeric string) as a float.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case json.Number:
		return parseFinite(n.String())
	case string:
		return parseFinite(strings.TrimSpace(n))
	default:
		return 0, false
	}
}
