// Package api はOpenAPI定義（api/openapi.yaml）から生成したリクエスト/レスポンス型を提供します。
package api

//go:generate go tool oapi-codegen -config ../../api/oapi-codegen.yaml ../../api/openapi.yaml
