package repository

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// ConvertValue 转换数据库值为JSON友好的格式
// 文本类型的 []byte（mysql 驱动的默认返回）转为字符串，二进制数据转为base64
func ConvertValue(value any) any {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		if utf8.Valid(v) {
			return string(v)
		}
		return fmt.Sprintf("base64:%s", base64.StdEncoding.EncodeToString(v))
	case json.Number:
		return v.String()
	default:
		return value
	}
}
