package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray 字符串数组类型，以 JSON 文本存储 tags
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	// 关闭 HTML 转义，保证 LIKE 检索与原文一致
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode([]string(s)); err != nil {
		return nil, err
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*s = StringArray{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// SEO 文章的 SEO 元数据，原样透传
type SEO struct {
	MetaTitle          string   `json:"metaTitle,omitempty"`
	MetaDescription    string   `json:"metaDescription,omitempty"`
	OGImage            string   `json:"ogImage,omitempty"`
	OGTitle            string   `json:"ogTitle,omitempty"`
	OGDescription      string   `json:"ogDescription,omitempty"`
	TwitterTitle       string   `json:"twitterTitle,omitempty"`
	TwitterDescription string   `json:"twitterDescription,omitempty"`
	TwitterImage       string   `json:"twitterImage,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	CanonicalURL       string   `json:"canonicalUrl,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (s SEO) Value() (driver.Value, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 实现 sql.Scanner 接口
func (s *SEO) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*s = SEO{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// Author 文章作者
type Author struct {
	Name   string `gorm:"type:varchar(255)" json:"name"`
	Avatar string `gorm:"type:varchar(1024)" json:"avatar,omitempty"`
}

// UnmarshalJSON 兼容纯字符串与 {name, avatar} 两种写法
func (a *Author) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*a = Author{Name: name}
		return nil
	}
	type plain Author
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*a = Author(decoded)
	return nil
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
