package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TopicStatus represents whether a collected topic was used for generation
type TopicStatus string

const (
	TopicStatusPending TopicStatus = ""
	TopicStatusUsed    TopicStatus = "used"
)

// StringSlice is a custom type for storing string arrays in JSON
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSlice) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported StringSlice source %T", value)
	}
}

// RawTopic represents a topic before it is written to the topics tab (from sources)
type RawTopic struct {
	Title       string
	Description string
	URL         string
	SourceType  string
	SourceName  string
	Keywords    []string
	PublishedAt time.Time
}

// TopicHeaders is the column order of the topics tab
var TopicHeaders = []string{
	ColTopicID,
	ColTimestamp,
	ColTopic,
	ColDescription,
	ColSource,
	ColURL,
	ColStatus,
}
