package database

import "embed"

// EmbedMigrations 内嵌的各方言SQL迁移文件
//
//go:embed migrations
var EmbedMigrations embed.FS
