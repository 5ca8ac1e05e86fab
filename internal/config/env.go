// 环境变量配置加载器
// 支持从.env文件加载配置

package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadEnv 从.env文件加载环境变量
// 已存在的环境变量不会被覆盖；文件不存在时返回 0, nil
func LoadEnv(filepath string) (int, error) {
	file, err := os.Open(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open %s: %w", filepath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	loaded := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return loaded, fmt.Errorf("invalid line %d in %s: %s", lineNum, filepath, line)
		}

		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return loaded, fmt.Errorf("set %s: %w", key, err)
		}
		loaded++
	}

	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("error reading %s: %w", filepath, err)
	}

	return loaded, nil
}

// unquote 去掉成对的单引号或双引号
func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
