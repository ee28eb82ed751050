package steamdt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelope is the common SteamDT response wrapper.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	ErrorCode interface{}     `json:"errorCode"`
	ErrorMsg  string          `json:"errorMsg"`
}

// APIError is returned when upstream answers without success=true.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "未知错误"
	}
	if e.Code == "" {
		return "steamdt: " + msg
	}
	return fmt.Sprintf("steamdt: %s (错误码: %s)", msg, e.Code)
}

// Item is one entry of the CS2 base item list.
type Item struct {
	MarketHashName string        `json:"marketHashName"`
	Name           string        `json:"name,omitempty"`
	PlatformList   []PlatformRef `json:"platformList"`
}

// PlatformRef is an item's id on one marketplace.
type PlatformRef struct {
	Name   string     `json:"name"`
	ItemID FlexString `json:"itemId"`
}

// PriceItem is the batch price answer for one item.
type PriceItem struct {
	MarketHashName string          `json:"marketHashName"`
	DataList       []PlatformPrice `json:"dataList"`
}

// PlatformPrice is one platform's quote.
type PlatformPrice struct {
	Platform       string     `json:"platform"`
	PlatformItemID FlexString `json:"platformItemId"`
	SellPrice      FlexFloat  `json:"sellPrice"`
	SellCount      FlexFloat  `json:"sellCount"`
	BiddingPrice   FlexFloat  `json:"biddingPrice"`
	BiddingCount   FlexFloat  `json:"biddingCount"`
	UpdateTime     FlexFloat  `json:"updateTime"`
}

// FlexFloat accepts a JSON number, a numeric string, "" or null.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	v, _, err := decodeNumber(b)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(raw)
	return nil
}

// decodeNumber parses a JSON number or numeric string. present is false for null and "".
func decodeNumber(raw json.RawMessage) (v float64, present bool, err error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false, err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, false, nil
		}
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, true, nil
}

// decodeTimestamp parses an integer timestamp given as number or string.
func decodeTimestamp(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	v, present, err := decodeNumber(raw)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, fmt.Errorf("missing timestamp")
	}
	return int64(v), nil
}
