// migrations содержит SQL-миграции схемы PostgreSQL (формат goose).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
