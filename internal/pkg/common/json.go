package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// StripCodeFence 去除模型回應外層的 ``` 或 ```json 包裹，
// 並擷取第一個 { 到最後一個 } 之間的內容
func StripCodeFence(raw string) string {
	txt := strings.TrimSpace(raw)
	if strings.HasPrefix(txt, "```") {
		txt = strings.TrimPrefix(txt, "```")
		if len(txt) >= 4 && strings.EqualFold(txt[:4], "json") {
			txt = txt[4:]
		}
	}
	txt = strings.TrimSuffix(strings.TrimSpace(txt), "```")
	txt = strings.TrimSpace(txt)

	if start, end := strings.Index(txt, "{"), strings.LastIndex(txt, "}"); start != -1 && end != -1 && end > start {
		txt = txt[start : end+1]
	}
	return txt
}

