package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"nlquery-go/internal/repository"
)

// SQLSecurityValidatorTestSuite SQL安全验证器测试套件
type SQLSecurityValidatorTestSuite struct {
	suite.Suite
	validator *SQLSecurityValidator
}

// SetupTest 每个用例使用新的验证器
func (s *SQLSecurityValidatorTestSuite) SetupTest() {
	s.validator = NewSQLSecurityValidator(zaptest.NewLogger(s.T()))
}

func (s *SQLSecurityValidatorTestSuite) TestAllowsSelect() {
	valid := []string{
		"SELECT * FROM users",
		"  select name, age from users where age > 30  ",
		"SELECT city, COUNT(*) as count FROM users GROUP BY city",
		"SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id",
	}
	for _, sql := range valid {
		s.NoError(s.validator.Validate(sql), sql)
	}
}

func (s *SQLSecurityValidatorTestSuite) TestRejectsForbiddenKeywords() {
	tests := []struct {
		sql     string
		keyword string
	}{
		{"DROP TABLE users", "DROP"},
		{"DELETE FROM users", "DELETE"},
		{"UPDATE users SET age = 1", "UPDATE"},
		{"INSERT INTO users VALUES (1)", "INSERT"},
		{"ALTER TABLE users ADD x INT", "ALTER"},
		{"CREATE TABLE t (id INT)", "CREATE"},
		{"TRUNCATE users", "TRUNCATE"},
		{"SELECT * FROM users; DROP TABLE users", "DROP"},
		// 子串匹配，字符串字面量和列名中出现也会被拒绝
		{"SELECT * FROM users WHERE note = 'please delete me'", "DELETE"},
		{"SELECT created_at FROM orders", "CREATE"},
	}

	for _, tt := range tests {
		err := s.validator.Validate(tt.sql)
		s.Require().Error(err, tt.sql)

		var rejected *SQLRejectedError
		s.Require().ErrorAs(err, &rejected)
		s.Equal(RejectForbiddenKeyword, rejected.Reason)
		s.Equal(tt.keyword, rejected.Keyword)
		s.Contains(err.Error(), tt.keyword)
	}
}

func (s *SQLSecurityValidatorTestSuite) TestRejectsNonSelect() {
	for _, sql := range []string{"SHOW TABLES", "PRAGMA table_info(users)", "WITH t AS (SELECT 1) SELECT * FROM t", ""} {
		err := s.validator.Validate(sql)
		s.Require().Error(err, sql)

		var rejected *SQLRejectedError
		s.Require().ErrorAs(err, &rejected)
		s.Equal(RejectNotSelect, rejected.Reason)
		s.Equal("只允许执行SELECT查询语句", err.Error())
	}
}

func TestSQLSecurityValidatorSuite(t *testing.T) {
	suite.Run(t, new(SQLSecurityValidatorTestSuite))
}

func TestValidateSQL_KeywordCheckedBeforePrefix(t *testing.T) {
	err := ValidateSQL("drop table users")
	require.Error(t, err)
	assert.Equal(t, "不允许执行包含 DROP 的SQL语句", err.Error())
	assert.True(t, IsSQLRejected(err))
	assert.False(t, IsStorageError(err))
}

func TestNormalizeSQL(t *testing.T) {
	assert.Equal(t, "SELECT * FROM users WHERE name = %s", NormalizeSQL("SELECT *\n  FROM users\tWHERE name = %s"))
	assert.Equal(t, "SELECT 1", NormalizeSQL("  SELECT 1  "))
}

func TestBindPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		dialect  string
		argCount int
		want     string
	}{
		{"sqlite单参数", "SELECT * FROM users WHERE name = %s", repository.DialectSQLite, 1, "SELECT * FROM users WHERE name = ?"},
		{"mysql多参数", "SELECT * FROM users WHERE age > %s AND city = %s", repository.DialectMySQL, 2, "SELECT * FROM users WHERE age > ? AND city = ?"},
		{"postgres编号占位符", "SELECT * FROM users WHERE age > %s AND city = %s", repository.DialectPostgres, 2, "SELECT * FROM users WHERE age > $1 AND city = $2"},
		{"无参数时保留LIKE字面量", "SELECT * FROM users WHERE name LIKE '%smith%'", repository.DialectSQLite, 0, "SELECT * FROM users WHERE name LIKE '%smith%'"},
		{"只替换参数个数个占位符", "SELECT * FROM users WHERE city = %s AND name LIKE '%s%'", repository.DialectSQLite, 1, "SELECT * FROM users WHERE city = ? AND name LIKE '%s%'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BindPlaceholders(tt.sql, tt.dialect, tt.argCount))
		})
	}
}
