package config

import _ "embed"

// DefaultConfigYAML 内置默认配置，未提供外部配置文件时使用
//
//go:embed default.yaml
var DefaultConfigYAML []byte
